package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renta-rw/renta-backend/shared/models"
)

func TestAssignToUnitUpdatesBothRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTenantRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	unit := seedUnit(t, db, property.ID)
	scope := ownerScope(owner, property.ID)

	tenant := &models.Tenant{UserID: owner.ID, FullName: "Claudine Uwase"}
	require.NoError(t, repo.Create(scope, tenant))

	assigned, err := repo.AssignToUnit(scope, tenant.ID, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TenantActive, assigned.Status)
	require.NotNil(t, assigned.UnitID)
	assert.Equal(t, unit.ID, *assigned.UnitID)
	assert.NotNil(t, assigned.MoveInDate)

	var storedUnit models.Unit
	require.NoError(t, db.First(&storedUnit, "id = ?", unit.ID).Error)
	assert.Equal(t, models.UnitOccupied, storedUnit.Status)
}

func TestAssignToOccupiedUnitFails(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTenantRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	unit := seedUnit(t, db, property.ID)
	scope := ownerScope(owner, property.ID)

	first := &models.Tenant{UserID: owner.ID, FullName: "First Tenant"}
	require.NoError(t, repo.Create(scope, first))
	second := &models.Tenant{UserID: owner.ID, FullName: "Second Tenant"}
	require.NoError(t, repo.Create(scope, second))

	_, err := repo.AssignToUnit(scope, first.ID, unit.ID)
	require.NoError(t, err)

	_, err = repo.AssignToUnit(scope, second.ID, unit.ID)
	assert.ErrorIs(t, err, ErrValidation)

	// Neither side of the failed assignment changed.
	var storedTenant models.Tenant
	require.NoError(t, db.First(&storedTenant, "id = ?", second.ID).Error)
	assert.Nil(t, storedTenant.UnitID)
}

func TestVacateClearsUnitAndMarksExited(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTenantRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	unit := seedUnit(t, db, property.ID)
	scope := ownerScope(owner, property.ID)

	tenant := &models.Tenant{UserID: owner.ID, FullName: "Jean Bosco"}
	require.NoError(t, repo.Create(scope, tenant))
	_, err := repo.AssignToUnit(scope, tenant.ID, unit.ID)
	require.NoError(t, err)

	vacated, err := repo.Vacate(scope, tenant.ID)
	require.NoError(t, err)
	assert.Nil(t, vacated.UnitID)
	assert.Equal(t, models.TenantExited, vacated.Status)

	var storedUnit models.Unit
	require.NoError(t, db.First(&storedUnit, "id = ?", unit.ID).Error)
	assert.Equal(t, models.UnitVacant, storedUnit.Status)

	// The tenant row survives for history.
	var storedTenant models.Tenant
	require.NoError(t, db.First(&storedTenant, "id = ?", tenant.ID).Error)
	assert.Equal(t, models.TenantExited, storedTenant.Status)
}

func TestManagerWithoutViewTenantsSeesEmptyList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTenantRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	manager := seedUser(t, db, models.RoleManager)
	property := seedProperty(t, db, owner.ID)
	unit := seedUnit(t, db, property.ID)
	scope := ownerScope(owner, property.ID)

	tenant := &models.Tenant{UserID: owner.ID, FullName: "Hidden Tenant"}
	require.NoError(t, repo.Create(scope, tenant))
	_, err := repo.AssignToUnit(scope, tenant.ID, unit.ID)
	require.NoError(t, err)

	// Active assignment but no canViewTenants flag.
	blind := managerScope(manager, property.ID, models.ManagerPermissions{CanViewPayments: true})
	tenants, _, err := repo.List(blind, TenantFilter{})
	require.NoError(t, err)
	assert.Empty(t, tenants)

	// With the flag the tenant appears.
	sighted := managerScope(manager, property.ID, models.ManagerPermissions{CanViewTenants: true})
	tenants, _, err = repo.List(sighted, TenantFilter{})
	require.NoError(t, err)
	assert.Len(t, tenants, 1)
}

func TestManagerWithoutEditTenantsCannotVacate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTenantRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	manager := seedUser(t, db, models.RoleManager)
	property := seedProperty(t, db, owner.ID)
	unit := seedUnit(t, db, property.ID)
	scope := ownerScope(owner, property.ID)

	tenant := &models.Tenant{UserID: owner.ID, FullName: "Protected Tenant"}
	require.NoError(t, repo.Create(scope, tenant))
	_, err := repo.AssignToUnit(scope, tenant.ID, unit.ID)
	require.NoError(t, err)

	viewOnly := managerScope(manager, property.ID, models.DefaultManagerPermissions())
	_, err = repo.Vacate(viewOnly, tenant.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTenantRoleSeesOnlyOwnRecord(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTenantRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	scope := ownerScope(owner, property.ID)

	mine := &models.Tenant{UserID: owner.ID, FullName: "Me"}
	require.NoError(t, repo.Create(scope, mine))
	other := &models.Tenant{UserID: owner.ID, FullName: "Someone Else"}
	require.NoError(t, repo.Create(scope, other))

	account := seedUser(t, db, models.RoleTenant)
	selfScope := tenantSelfScope(account, mine)

	tenants, _, err := repo.List(selfScope, TenantFilter{})
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, mine.ID, tenants[0].ID)

	// The other tenant's id resolves to not found, not forbidden.
	_, err = repo.Get(selfScope, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLinkAccountTwiceIsConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTenantRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	scope := ownerScope(owner, property.ID)

	tenant := &models.Tenant{UserID: owner.ID, FullName: "Linked"}
	require.NoError(t, repo.Create(scope, tenant))

	account := seedUser(t, db, models.RoleTenant)
	_, err := repo.LinkAccount(scope, tenant.ID, account.ID)
	require.NoError(t, err)

	second := seedUser(t, db, models.RoleTenant)
	_, err = repo.LinkAccount(scope, tenant.ID, second.ID)
	assert.ErrorIs(t, err, ErrConflict)
}
