package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renta-rw/renta-backend/shared/models"
)

func TestCreatePaymentChecksScopeBeforeValidation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db)
	tenants := NewTenantRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	intruder := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	unit := seedUnit(t, db, property.ID)
	scope := ownerScope(owner, property.ID)

	tenant := &models.Tenant{UserID: owner.ID, FullName: "Payer"}
	require.NoError(t, tenants.Create(scope, tenant))

	// Invalid payload against an out-of-scope unit must report not found,
	// never reveal the validation failure.
	badPayment := &models.Payment{
		TenantID:      tenant.ID,
		UnitID:        unit.ID,
		Amount:        decimal.NewFromInt(-5),
		PaymentMethod: "goats",
		PeriodMonth:   13,
	}
	err := repo.Create(ownerScope(intruder), badPayment)
	assert.ErrorIs(t, err, ErrNotFound)

	// Same payload in scope surfaces the validation error.
	err = repo.Create(scope, badPayment)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreatePaymentFieldValidation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db)
	tenants := NewTenantRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	unit := seedUnit(t, db, property.ID)
	scope := ownerScope(owner, property.ID)

	tenant := &models.Tenant{UserID: owner.ID, FullName: "Payer"}
	require.NoError(t, tenants.Create(scope, tenant))

	base := func() *models.Payment {
		return &models.Payment{
			TenantID:      tenant.ID,
			UnitID:        unit.ID,
			Amount:        decimal.NewFromInt(250000),
			PaymentMethod: models.PayMomo,
			PeriodMonth:   3,
			PeriodYear:    2026,
			PaymentDate:   time.Now(),
		}
	}

	p := base()
	p.Amount = decimal.Zero
	assert.ErrorIs(t, repo.Create(scope, p), ErrValidation)

	p = base()
	p.PaymentMethod = "cheque"
	assert.ErrorIs(t, repo.Create(scope, p), ErrValidation)

	p = base()
	p.PeriodMonth = 0
	assert.ErrorIs(t, repo.Create(scope, p), ErrValidation)

	require.NoError(t, repo.Create(scope, base()))
}

func TestPaymentDetailSurvivesPropertyDeletion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db)
	properties := NewPropertyRepository(db)
	tenants := NewTenantRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	unit := seedUnit(t, db, property.ID)
	scope := ownerScope(owner, property.ID)

	tenant := &models.Tenant{UserID: owner.ID, FullName: "History Tenant"}
	require.NoError(t, tenants.Create(scope, tenant))

	payment := &models.Payment{
		TenantID:      tenant.ID,
		UnitID:        unit.ID,
		Amount:        decimal.NewFromInt(250000),
		PaymentMethod: models.PayCash,
		PeriodMonth:   1,
		PeriodYear:    2026,
		PaymentDate:   time.Now(),
	}
	require.NoError(t, repo.Create(scope, payment))

	require.NoError(t, properties.SoftDelete(scope, property.ID, owner.ID))

	detail, err := repo.Detail(scope, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kacyiru Heights", detail.PropertyName)
	assert.Equal(t, "KG 7 Ave, Kigali", detail.PropertyAddress)
	assert.True(t, detail.PropertyDeleted)
	assert.Equal(t, "History Tenant", detail.TenantName)
}

func TestManagerPaymentCapabilities(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db)
	tenants := NewTenantRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	manager := seedUser(t, db, models.RoleManager)
	property := seedProperty(t, db, owner.ID)
	unit := seedUnit(t, db, property.ID)
	scope := ownerScope(owner, property.ID)

	tenant := &models.Tenant{UserID: owner.ID, FullName: "Payer"}
	require.NoError(t, tenants.Create(scope, tenant))

	payment := &models.Payment{
		TenantID:      tenant.ID,
		UnitID:        unit.ID,
		Amount:        decimal.NewFromInt(100000),
		PaymentMethod: models.PayBank,
		PeriodMonth:   2,
		PeriodYear:    2026,
		PaymentDate:   time.Now(),
	}

	// Default permissions can view but not record.
	viewOnly := managerScope(manager, property.ID, models.DefaultManagerPermissions())
	assert.ErrorIs(t, repo.Create(viewOnly, payment), ErrForbidden)

	recorder := managerScope(manager, property.ID, models.ManagerPermissions{
		CanViewPayments:   true,
		CanRecordPayments: true,
	})
	require.NoError(t, repo.Create(recorder, payment))

	payments, _, err := repo.List(viewOnly, PaymentFilter{})
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}
