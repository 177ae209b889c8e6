package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/renta-rw/renta-backend/shared/authz"
	"github.com/renta-rw/renta-backend/shared/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Unit{},
		&models.PropertyManager{},
		&models.Tenant{},
		&models.Payment{},
		&models.MaintenanceTicket{},
		&models.AgentApplication{},
		&models.CommissionRule{},
		&models.AgentTransaction{},
		&models.AgentCommission{},
		&models.Document{},
		&models.Notification{},
		&models.ReminderLog{},
		&models.AuditLog{},
	)
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	user := &models.User{
		FullName:     "Test " + string(role),
		Email:        string(role) + "-" + uuid.New().String() + "@example.rw",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProperty(t *testing.T, db *gorm.DB, ownerID uuid.UUID) *models.Property {
	property := &models.Property{
		UserID:   ownerID,
		Name:     "Kacyiru Heights",
		Address:  "KG 7 Ave, Kigali",
		District: "Gasabo",
	}
	require.NoError(t, db.Create(property).Error)
	return property
}

func seedUnit(t *testing.T, db *gorm.DB, propertyID uuid.UUID) *models.Unit {
	unit := &models.Unit{
		PropertyID:  propertyID,
		Label:       "A-" + uuid.New().String()[:4],
		Status:      models.UnitVacant,
		MonthlyRent: decimal.NewFromInt(250000),
	}
	require.NoError(t, db.Create(unit).Error)
	return unit
}

func ownerScope(owner *models.User, propertyIDs ...uuid.UUID) *authz.AccessScope {
	return &authz.AccessScope{
		UserID:      owner.ID,
		Role:        models.RoleOwner,
		PropertyIDs: propertyIDs,
	}
}

func managerScope(manager *models.User, propertyID uuid.UUID, perms models.ManagerPermissions) *authz.AccessScope {
	return &authz.AccessScope{
		UserID:      manager.ID,
		Role:        models.RoleManager,
		PropertyIDs: []uuid.UUID{propertyID},
		Permissions: map[uuid.UUID]models.ManagerPermissions{propertyID: perms},
	}
}

func maintenanceScope(staff *models.User) *authz.AccessScope {
	return &authz.AccessScope{
		UserID: staff.ID,
		Role:   models.RoleMaintenance,
	}
}

func tenantSelfScope(account *models.User, tenant *models.Tenant) *authz.AccessScope {
	id := tenant.ID
	return &authz.AccessScope{
		UserID:   account.ID,
		Role:     models.RoleTenant,
		TenantID: &id,
	}
}

func TestTranslateMapsGormErrors(t *testing.T) {
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), ErrConflict)
	assert.NoError(t, translate(nil))
}

func TestBuildPagination(t *testing.T) {
	p := buildPagination(2, 20, 41)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, int64(41), p.Total)
	assert.Equal(t, 3, p.TotalPages)
}

func TestNormalizePageClampsBadInput(t *testing.T) {
	page, limit := normalizePage(0, 5000)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)
}
