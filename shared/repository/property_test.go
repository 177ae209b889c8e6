package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renta-rw/renta-backend/shared/models"
)

func TestSoftDeleteHidesPropertyButKeepsRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPropertyRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	scope := ownerScope(owner, property.ID)

	require.NoError(t, repo.SoftDelete(scope, property.ID, owner.ID))

	// Hidden from default reads.
	_, err := repo.Get(scope, property.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	properties, _, err := repo.List(scope, PropertyFilter{})
	require.NoError(t, err)
	assert.Empty(t, properties)

	// Still resolvable for historical joins, with the audit fields set.
	joined, err := repo.GetForJoin(property.ID)
	require.NoError(t, err)
	assert.True(t, joined.IsDeleted)
	assert.NotNil(t, joined.DeletedAt)
	require.NotNil(t, joined.DeletedBy)
	assert.Equal(t, owner.ID, *joined.DeletedBy)
}

func TestGetOutOfScopePropertyIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPropertyRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	intruder := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)

	_, err := repo.Get(ownerScope(intruder), property.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerNeedsEditPropertyForUpdates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPropertyRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	manager := seedUser(t, db, models.RoleManager)
	property := seedProperty(t, db, owner.ID)

	viewOnly := managerScope(manager, property.ID, models.DefaultManagerPermissions())
	_, err := repo.Update(viewOnly, property.ID, map[string]interface{}{"name": "New Name"})
	assert.ErrorIs(t, err, ErrForbidden)

	editor := managerScope(manager, property.ID, models.ManagerPermissions{CanEditProperty: true})
	updated, err := repo.Update(editor, property.ID, map[string]interface{}{"name": "New Name"})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
}

func TestCreateUnitValidation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPropertyRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	scope := ownerScope(owner, property.ID)

	err := repo.CreateUnit(scope, &models.Unit{PropertyID: property.ID, MonthlyRent: decimal.NewFromInt(100)})
	assert.ErrorIs(t, err, ErrValidation)

	err = repo.CreateUnit(scope, &models.Unit{PropertyID: property.ID, Label: "B1", MonthlyRent: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, ErrValidation)

	unit := &models.Unit{PropertyID: property.ID, Label: "B1", MonthlyRent: decimal.NewFromInt(180000)}
	require.NoError(t, repo.CreateUnit(scope, unit))
	assert.Equal(t, models.UnitVacant, unit.Status)
}

func TestDeleteUnitDetachesTenants(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPropertyRepository(db)
	tenants := NewTenantRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	unit := seedUnit(t, db, property.ID)
	scope := ownerScope(owner, property.ID)

	tenant := &models.Tenant{UserID: owner.ID, FullName: "Detached"}
	require.NoError(t, tenants.Create(scope, tenant))
	_, err := tenants.AssignToUnit(scope, tenant.ID, unit.ID)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteUnit(scope, unit.ID))

	var stored models.Tenant
	require.NoError(t, db.First(&stored, "id = ?", tenant.ID).Error)
	assert.Nil(t, stored.UnitID)
}

func TestListPropertiesFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPropertyRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	p1 := seedProperty(t, db, owner.ID)
	p2 := &models.Property{UserID: owner.ID, Name: "Nyarutarama Flats", Address: "KG 9 Ave", District: "Kicukiro"}
	require.NoError(t, db.Create(p2).Error)
	scope := ownerScope(owner, p1.ID, p2.ID)

	properties, pagination, err := repo.List(scope, PropertyFilter{District: "Kicukiro"})
	require.NoError(t, err)
	require.Len(t, properties, 1)
	assert.Equal(t, p2.ID, properties[0].ID)
	assert.Equal(t, int64(1), pagination.Total)

	properties, _, err = repo.List(scope, PropertyFilter{Search: "Kacyiru"})
	require.NoError(t, err)
	require.Len(t, properties, 1)
	assert.Equal(t, p1.ID, properties[0].ID)
}
