package repository

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renta-rw/renta-backend/shared/authz"
	"github.com/renta-rw/renta-backend/shared/models"
)

// MaintenanceRepository scopes tickets through their unit's property.
// Maintenance-role callers see only tickets assigned to them, tenant-role
// callers only tickets they raised.
type MaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

type MaintenanceFilter struct {
	PropertyID *uuid.UUID
	Status     string
	Priority   string
	Page       int
	Limit      int
}

func (r *MaintenanceRepository) viewableProperties(scope *authz.AccessScope) []uuid.UUID {
	if scope.Role != models.RoleManager {
		return scope.PropertyIDs
	}
	ids := make([]uuid.UUID, 0, len(scope.PropertyIDs))
	for _, pid := range scope.PropertyIDs {
		if scope.HasCapability(pid, models.CapViewMaintenance) {
			ids = append(ids, pid)
		}
	}
	return ids
}

func (r *MaintenanceRepository) scoped(scope *authz.AccessScope) *gorm.DB {
	q := r.db.Model(&models.MaintenanceTicket{})
	if scope.IsSuperAdmin {
		return q
	}
	switch scope.Role {
	case models.RoleMaintenance:
		return q.Where("assigned_to = ?", scope.UserID)
	case models.RoleTenant:
		if scope.TenantID == nil {
			return q.Where("1 = 0")
		}
		return q.Where("tenant_id = ?", *scope.TenantID)
	}

	propertyIDs := r.viewableProperties(scope)
	if len(propertyIDs) == 0 {
		return q.Where("1 = 0")
	}
	sub := r.db.Model(&models.Unit{}).Select("id").Where("property_id IN ?", propertyIDs)
	return q.Where("unit_id IN (?)", sub)
}

func (r *MaintenanceRepository) List(scope *authz.AccessScope, filter MaintenanceFilter) ([]models.MaintenanceTicket, *Pagination, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)

	q := r.scoped(scope)
	if filter.PropertyID != nil {
		sub := r.db.Model(&models.Unit{}).Select("id").Where("property_id = ?", *filter.PropertyID)
		q = q.Where("unit_id IN (?)", sub)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count tickets: %w", err)
	}

	var tickets []models.MaintenanceTicket
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tickets).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, buildPagination(page, limit, total), nil
}

func (r *MaintenanceRepository) Get(scope *authz.AccessScope, id uuid.UUID) (*models.MaintenanceTicket, error) {
	var ticket models.MaintenanceTicket
	err := r.scoped(scope).Where("id = ?", id).First(&ticket).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ticket, nil
}

// Create opens a ticket on a unit. Tenants may only raise tickets for their
// own unit; managers need canManageMaintenance on the unit's property.
func (r *MaintenanceRepository) Create(scope *authz.AccessScope, ticket *models.MaintenanceTicket) error {
	var unit models.Unit
	if err := r.db.Where("id = ?", ticket.UnitID).First(&unit).Error; err != nil {
		return translate(err)
	}

	switch scope.Role {
	case models.RoleTenant:
		if scope.TenantID == nil {
			return ErrNotFound
		}
		var tenant models.Tenant
		if err := r.db.Where("id = ?", *scope.TenantID).First(&tenant).Error; err != nil {
			return translate(err)
		}
		if tenant.UnitID == nil || *tenant.UnitID != ticket.UnitID {
			return ErrNotFound
		}
		ticket.TenantID = scope.TenantID
	default:
		if !scope.ContainsProperty(unit.PropertyID) {
			return ErrNotFound
		}
		if scope.Role == models.RoleManager && !scope.HasCapability(unit.PropertyID, models.CapManageMaintenance) {
			return ErrForbidden
		}
	}

	if ticket.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if ticket.Priority == "" {
		ticket.Priority = models.PriorityMedium
	} else if !models.ValidTicketPriority(string(ticket.Priority)) {
		return fmt.Errorf("%w: unknown priority", ErrValidation)
	}
	ticket.Status = models.TicketPending

	return translate(r.db.Create(ticket).Error)
}

// requireManage gates mutating ticket verbs. Assigned maintenance staff may
// progress their own tickets; managers need canManageMaintenance.
func (r *MaintenanceRepository) requireManage(scope *authz.AccessScope, ticket *models.MaintenanceTicket) error {
	if scope.IsSuperAdmin {
		return nil
	}
	if scope.Role == models.RoleMaintenance {
		if ticket.AssignedTo != nil && *ticket.AssignedTo == scope.UserID {
			return nil
		}
		return ErrNotFound
	}
	if scope.Role == models.RoleManager {
		var unit models.Unit
		if err := r.db.Where("id = ?", ticket.UnitID).First(&unit).Error; err != nil {
			return translate(err)
		}
		if !scope.HasCapability(unit.PropertyID, models.CapManageMaintenance) {
			return ErrForbidden
		}
	}
	return nil
}

// UpdateStatus advances the ticket state machine. Invalid transitions are
// a validation failure, reported after scope and capability checks.
func (r *MaintenanceRepository) UpdateStatus(scope *authz.AccessScope, id uuid.UUID, next models.TicketStatus) (*models.MaintenanceTicket, error) {
	ticket, err := r.Get(scope, id)
	if err != nil {
		return nil, err
	}
	if err := r.requireManage(scope, ticket); err != nil {
		return nil, err
	}
	if !ticket.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: cannot transition ticket from %s to %s", ErrValidation, ticket.Status, next)
	}

	// The status precondition in the WHERE clause makes concurrent
	// transitions race-safe without row locks.
	res := r.db.Model(&models.MaintenanceTicket{}).
		Where("id = ? AND status = ?", id, ticket.Status).
		Update("status", next)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: ticket status changed concurrently", ErrConflict)
	}
	ticket.Status = next
	return ticket, nil
}

// Assign hands the ticket to a maintenance-role user.
func (r *MaintenanceRepository) Assign(scope *authz.AccessScope, id, staffID uuid.UUID) (*models.MaintenanceTicket, error) {
	ticket, err := r.Get(scope, id)
	if err != nil {
		return nil, err
	}
	if err := r.requireManage(scope, ticket); err != nil {
		return nil, err
	}

	var staff models.User
	if err := r.db.Where("id = ?", staffID).First(&staff).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: staff user not found", ErrValidation)
		}
		return nil, err
	}
	if staff.Role != models.RoleMaintenance {
		return nil, fmt.Errorf("%w: user does not have the maintenance role", ErrValidation)
	}

	if err := r.db.Model(ticket).Update("assigned_to", staffID).Error; err != nil {
		return nil, translate(err)
	}
	ticket.AssignedTo = &staffID
	return ticket, nil
}
