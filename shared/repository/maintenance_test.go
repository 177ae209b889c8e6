package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renta-rw/renta-backend/shared/models"
)

func TestTicketStatusTransitions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMaintenanceRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	unit := seedUnit(t, db, property.ID)
	scope := ownerScope(owner, property.ID)

	ticket := &models.MaintenanceTicket{UnitID: unit.ID, Title: "Leaking tap"}
	require.NoError(t, repo.Create(scope, ticket))
	assert.Equal(t, models.TicketPending, ticket.Status)

	// pending cannot jump straight to completed.
	_, err := repo.UpdateStatus(scope, ticket.ID, models.TicketCompleted)
	assert.ErrorIs(t, err, ErrValidation)

	inProgress, err := repo.UpdateStatus(scope, ticket.ID, models.TicketInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.TicketInProgress, inProgress.Status)

	completed, err := repo.UpdateStatus(scope, ticket.ID, models.TicketCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.TicketCompleted, completed.Status)

	// completed is terminal.
	_, err = repo.UpdateStatus(scope, ticket.ID, models.TicketCancelled)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTicketCancellableFromBothActiveStates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMaintenanceRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	unit := seedUnit(t, db, property.ID)
	scope := ownerScope(owner, property.ID)

	first := &models.MaintenanceTicket{UnitID: unit.ID, Title: "One"}
	require.NoError(t, repo.Create(scope, first))
	_, err := repo.UpdateStatus(scope, first.ID, models.TicketCancelled)
	require.NoError(t, err)

	second := &models.MaintenanceTicket{UnitID: unit.ID, Title: "Two"}
	require.NoError(t, repo.Create(scope, second))
	_, err = repo.UpdateStatus(scope, second.ID, models.TicketInProgress)
	require.NoError(t, err)
	_, err = repo.UpdateStatus(scope, second.ID, models.TicketCancelled)
	require.NoError(t, err)
}

func TestTenantCanOnlyRaiseTicketsForOwnUnit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMaintenanceRepository(db)
	tenants := NewTenantRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	myUnit := seedUnit(t, db, property.ID)
	otherUnit := seedUnit(t, db, property.ID)
	scope := ownerScope(owner, property.ID)

	tenant := &models.Tenant{UserID: owner.ID, FullName: "Reporter"}
	require.NoError(t, tenants.Create(scope, tenant))
	_, err := tenants.AssignToUnit(scope, tenant.ID, myUnit.ID)
	require.NoError(t, err)

	account := seedUser(t, db, models.RoleTenant)
	selfScope := tenantSelfScope(account, tenant)

	// Another unit in the same building is still off limits.
	err = repo.Create(selfScope, &models.MaintenanceTicket{UnitID: otherUnit.ID, Title: "Nope"})
	assert.ErrorIs(t, err, ErrNotFound)

	ticket := &models.MaintenanceTicket{UnitID: myUnit.ID, Title: "Broken lock"}
	require.NoError(t, repo.Create(selfScope, ticket))
	require.NotNil(t, ticket.TenantID)
	assert.Equal(t, tenant.ID, *ticket.TenantID)
}

func TestMaintenanceRoleSeesOnlyAssignedTickets(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMaintenanceRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	staff := seedUser(t, db, models.RoleMaintenance)
	property := seedProperty(t, db, owner.ID)
	unit := seedUnit(t, db, property.ID)
	scope := ownerScope(owner, property.ID)

	assigned := &models.MaintenanceTicket{UnitID: unit.ID, Title: "Assigned"}
	require.NoError(t, repo.Create(scope, assigned))
	_, err := repo.Assign(scope, assigned.ID, staff.ID)
	require.NoError(t, err)

	unassigned := &models.MaintenanceTicket{UnitID: unit.ID, Title: "Unassigned"}
	require.NoError(t, repo.Create(scope, unassigned))

	scopeStaff := maintenanceScope(staff)
	tickets, _, err := repo.List(scopeStaff, MaintenanceFilter{})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, assigned.ID, tickets[0].ID)

	// Staff can progress their own ticket.
	_, err = repo.UpdateStatus(scopeStaff, assigned.ID, models.TicketInProgress)
	require.NoError(t, err)

	// But not somebody else's.
	_, err = repo.UpdateStatus(scopeStaff, unassigned.ID, models.TicketInProgress)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignRequiresMaintenanceRole(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMaintenanceRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	notStaff := seedUser(t, db, models.RoleTenant)
	property := seedProperty(t, db, owner.ID)
	unit := seedUnit(t, db, property.ID)
	scope := ownerScope(owner, property.ID)

	ticket := &models.MaintenanceTicket{UnitID: unit.ID, Title: "Needs hands"}
	require.NoError(t, repo.Create(scope, ticket))

	_, err := repo.Assign(scope, ticket.ID, notStaff.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestManagerMaintenanceCapabilities(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMaintenanceRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	manager := seedUser(t, db, models.RoleManager)
	property := seedProperty(t, db, owner.ID)
	unit := seedUnit(t, db, property.ID)
	scope := ownerScope(owner, property.ID)

	ticket := &models.MaintenanceTicket{UnitID: unit.ID, Title: "Gated"}
	require.NoError(t, repo.Create(scope, ticket))

	viewOnly := managerScope(manager, property.ID, models.DefaultManagerPermissions())
	_, err := repo.UpdateStatus(viewOnly, ticket.ID, models.TicketInProgress)
	assert.ErrorIs(t, err, ErrForbidden)

	managing := managerScope(manager, property.ID, models.ManagerPermissions{
		CanViewMaintenance:   true,
		CanManageMaintenance: true,
	})
	_, err = repo.UpdateStatus(managing, ticket.ID, models.TicketInProgress)
	require.NoError(t, err)
}
