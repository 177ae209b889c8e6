package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/renta-rw/renta-backend/shared/models"
)

func setupResolver(t *testing.T) (*Resolver, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.PropertyManager{},
		&models.Tenant{},
		&models.Unit{},
	))
	return NewResolver(db), db
}

func createUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
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

func info(u *models.User) *models.UserInfo {
	return &models.UserInfo{ID: u.ID, Email: u.Email, Role: u.Role}
}

func TestOwnerScopeExcludesSoftDeletedProperties(t *testing.T) {
	resolver, db := setupResolver(t)
	owner := createUser(t, db, models.RoleOwner)

	alive := &models.Property{UserID: owner.ID, Name: "Alive", Address: "KG 1", District: "Gasabo"}
	require.NoError(t, db.Create(alive).Error)
	dead := &models.Property{UserID: owner.ID, Name: "Dead", Address: "KG 2", District: "Gasabo", IsDeleted: true}
	require.NoError(t, db.Create(dead).Error)

	scope, err := resolver.Resolve(info(owner))
	require.NoError(t, err)
	assert.False(t, scope.IsSuperAdmin)
	require.Len(t, scope.PropertyIDs, 1)
	assert.Equal(t, alive.ID, scope.PropertyIDs[0])
}

func TestAgencyScopeIncludesManagedPortfolio(t *testing.T) {
	resolver, db := setupResolver(t)
	agency := createUser(t, db, models.RoleAgency)
	owner := createUser(t, db, models.RoleOwner)

	own := &models.Property{UserID: agency.ID, Name: "Own", Address: "KG 3", District: "Gasabo"}
	require.NoError(t, db.Create(own).Error)
	managed := &models.Property{UserID: owner.ID, AgencyID: &agency.ID, Name: "Managed", Address: "KG 4", District: "Gasabo"}
	require.NoError(t, db.Create(managed).Error)
	unrelated := &models.Property{UserID: owner.ID, Name: "Unrelated", Address: "KG 5", District: "Gasabo"}
	require.NoError(t, db.Create(unrelated).Error)

	scope, err := resolver.Resolve(info(agency))
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{own.ID, managed.ID}, scope.PropertyIDs)
}

func TestManagerScopeCountsOnlyActiveAssignments(t *testing.T) {
	resolver, db := setupResolver(t)
	owner := createUser(t, db, models.RoleOwner)
	manager := createUser(t, db, models.RoleManager)

	active := &models.Property{UserID: owner.ID, Name: "Active", Address: "KG 6", District: "Gasabo"}
	pending := &models.Property{UserID: owner.ID, Name: "Pending", Address: "KG 7", District: "Gasabo"}
	revoked := &models.Property{UserID: owner.ID, Name: "Revoked", Address: "KG 8", District: "Gasabo"}
	require.NoError(t, db.Create(active).Error)
	require.NoError(t, db.Create(pending).Error)
	require.NoError(t, db.Create(revoked).Error)

	perms := models.DefaultManagerPermissions()
	perms.CanRecordPayments = true
	require.NoError(t, db.Create(&models.PropertyManager{
		PropertyID: active.ID, ManagerID: manager.ID, InvitedBy: owner.ID,
		Permissions: perms, Status: models.ManagerActive,
	}).Error)
	require.NoError(t, db.Create(&models.PropertyManager{
		PropertyID: pending.ID, ManagerID: manager.ID, InvitedBy: owner.ID,
		Permissions: models.DefaultManagerPermissions(), Status: models.ManagerPending,
	}).Error)
	require.NoError(t, db.Create(&models.PropertyManager{
		PropertyID: revoked.ID, ManagerID: manager.ID, InvitedBy: owner.ID,
		Permissions: models.DefaultManagerPermissions(), Status: models.ManagerRevoked,
	}).Error)

	scope, err := resolver.Resolve(info(manager))
	require.NoError(t, err)
	require.Len(t, scope.PropertyIDs, 1)
	assert.Equal(t, active.ID, scope.PropertyIDs[0])

	assert.True(t, scope.HasCapability(active.ID, models.CapViewTenants))
	assert.True(t, scope.HasCapability(active.ID, models.CapRecordPayments))
	assert.False(t, scope.HasCapability(active.ID, models.CapEditProperty))
	// Pending assignment grants nothing.
	assert.False(t, scope.HasCapability(pending.ID, models.CapViewTenants))
}

func TestTenantScopeLinksOwnRecord(t *testing.T) {
	resolver, db := setupResolver(t)
	owner := createUser(t, db, models.RoleOwner)
	account := createUser(t, db, models.RoleTenant)

	tenant := &models.Tenant{UserID: owner.ID, FullName: "Linked", UserAccountID: &account.ID}
	require.NoError(t, db.Create(tenant).Error)

	scope, err := resolver.Resolve(info(account))
	require.NoError(t, err)
	require.NotNil(t, scope.TenantID)
	assert.Equal(t, tenant.ID, *scope.TenantID)
	assert.Empty(t, scope.PropertyIDs)
}

func TestUnlinkedTenantAccountGetsEmptyScope(t *testing.T) {
	resolver, db := setupResolver(t)
	account := createUser(t, db, models.RoleTenant)

	scope, err := resolver.Resolve(info(account))
	require.NoError(t, err)
	assert.Nil(t, scope.TenantID)
	assert.Empty(t, scope.PropertyIDs)
}

func TestSuperAdminScopeIsUnrestricted(t *testing.T) {
	resolver, db := setupResolver(t)
	admin := createUser(t, db, models.RoleSuperAdmin)

	scope, err := resolver.Resolve(info(admin))
	require.NoError(t, err)
	assert.True(t, scope.IsSuperAdmin)
	assert.True(t, scope.ContainsProperty(uuid.New()))
	assert.True(t, scope.HasCapability(uuid.New(), models.CapEditProperty))
}

func TestHasCapabilityForNonManagerRolesFollowsScope(t *testing.T) {
	inScope := uuid.New()
	scope := &AccessScope{
		UserID:      uuid.New(),
		Role:        models.RoleOwner,
		PropertyIDs: []uuid.UUID{inScope},
	}
	assert.True(t, scope.HasCapability(inScope, models.CapRecordPayments))
	assert.False(t, scope.HasCapability(uuid.New(), models.CapRecordPayments))
}
