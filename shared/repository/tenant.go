package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renta-rw/renta-backend/shared/authz"
	"github.com/renta-rw/renta-backend/shared/models"
)

// TenantRepository scopes tenant records. A tenant is in scope when its
// unit sits inside a scoped property, or when the caller owns the record
// directly. Tenant-role callers see exactly their own linked row.
type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

type TenantFilter struct {
	PropertyID *uuid.UUID
	Status     string
	Search     string
	Page       int
	Limit      int
}

// viewableProperties returns the property ids the caller may read tenants
// for. Managers are narrowed to assignments carrying canViewTenants.
func (r *TenantRepository) viewableProperties(scope *authz.AccessScope) []uuid.UUID {
	if scope.Role != models.RoleManager {
		return scope.PropertyIDs
	}
	ids := make([]uuid.UUID, 0, len(scope.PropertyIDs))
	for _, pid := range scope.PropertyIDs {
		if scope.HasCapability(pid, models.CapViewTenants) {
			ids = append(ids, pid)
		}
	}
	return ids
}

func (r *TenantRepository) unitSubquery(propertyIDs []uuid.UUID) *gorm.DB {
	return r.db.Model(&models.Unit{}).Select("id").Where("property_id IN ?", propertyIDs)
}

func (r *TenantRepository) scoped(scope *authz.AccessScope) *gorm.DB {
	q := r.db.Model(&models.Tenant{})
	if scope.IsSuperAdmin {
		return q
	}
	if scope.Role == models.RoleTenant {
		if scope.TenantID == nil {
			return q.Where("1 = 0")
		}
		return q.Where("id = ?", *scope.TenantID)
	}

	propertyIDs := r.viewableProperties(scope)
	switch {
	case len(propertyIDs) > 0 && scope.Role != models.RoleManager:
		// Owners and agencies also see tenants not yet assigned to a unit.
		return q.Where("unit_id IN (?) OR user_id = ?", r.unitSubquery(propertyIDs), scope.UserID)
	case len(propertyIDs) > 0:
		return q.Where("unit_id IN (?)", r.unitSubquery(propertyIDs))
	case scope.Role == models.RoleOwner || scope.Role == models.RoleAgency:
		return q.Where("user_id = ?", scope.UserID)
	default:
		return q.Where("1 = 0")
	}
}

func (r *TenantRepository) List(scope *authz.AccessScope, filter TenantFilter) ([]models.Tenant, *Pagination, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)

	q := r.scoped(scope)
	if filter.PropertyID != nil {
		q = q.Where("unit_id IN (?)", r.unitSubquery([]uuid.UUID{*filter.PropertyID}))
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("full_name LIKE ? OR phone LIKE ? OR email LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count tenants: %w", err)
	}

	var tenants []models.Tenant
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tenants).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, buildPagination(page, limit, total), nil
}

func (r *TenantRepository) Get(scope *authz.AccessScope, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.scoped(scope).Where("id = ?", id).First(&tenant).Error
	if err != nil {
		return nil, translate(err)
	}
	return &tenant, nil
}

// propertyOf resolves the property a tenant's unit belongs to. Tenants with
// no unit have no property context.
func (r *TenantRepository) propertyOf(tenant *models.Tenant) (*uuid.UUID, error) {
	if tenant.UnitID == nil {
		return nil, nil
	}
	var unit models.Unit
	if err := r.db.Where("id = ?", *tenant.UnitID).First(&unit).Error; err != nil {
		return nil, translate(err)
	}
	return &unit.PropertyID, nil
}

// requireEditCapability enforces canEditTenants for manager callers against
// the tenant's current property.
func (r *TenantRepository) requireEditCapability(scope *authz.AccessScope, tenant *models.Tenant) error {
	if scope.Role != models.RoleManager {
		return nil
	}
	propertyID, err := r.propertyOf(tenant)
	if err != nil {
		return err
	}
	if propertyID == nil || !scope.HasCapability(*propertyID, models.CapEditTenants) {
		return ErrForbidden
	}
	return nil
}

func (r *TenantRepository) Create(scope *authz.AccessScope, tenant *models.Tenant) error {
	if tenant.FullName == "" {
		return fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if tenant.Status == "" {
		tenant.Status = models.TenantActive
	}
	if err := r.db.Create(tenant).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *TenantRepository) Update(scope *authz.AccessScope, id uuid.UUID, updates map[string]interface{}) (*models.Tenant, error) {
	tenant, err := r.Get(scope, id)
	if err != nil {
		return nil, err
	}
	if err := r.requireEditCapability(scope, tenant); err != nil {
		return nil, err
	}
	if err := r.db.Model(tenant).Updates(updates).Error; err != nil {
		return nil, translate(err)
	}
	return tenant, nil
}

// AssignToUnit moves a tenant into a vacant unit. The tenant row and the
// unit row change in one transaction so their statuses can never diverge.
func (r *TenantRepository) AssignToUnit(scope *authz.AccessScope, tenantID, unitID uuid.UUID) (*models.Tenant, error) {
	tenant, err := r.Get(scope, tenantID)
	if err != nil {
		return nil, err
	}

	var unit models.Unit
	if err := r.db.Where("id = ?", unitID).First(&unit).Error; err != nil {
		return nil, translate(err)
	}
	if !scope.ContainsProperty(unit.PropertyID) {
		return nil, ErrNotFound
	}
	if scope.Role == models.RoleManager && !scope.HasCapability(unit.PropertyID, models.CapEditTenants) {
		return nil, ErrForbidden
	}

	if tenant.UnitID != nil {
		return nil, fmt.Errorf("%w: tenant is already assigned to a unit", ErrValidation)
	}
	if unit.Status != models.UnitVacant {
		return nil, fmt.Errorf("%w: unit is not vacant", ErrValidation)
	}

	now := time.Now()
	err = r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Unit{}).
			Where("id = ? AND status = ?", unitID, models.UnitVacant).
			Update("status", models.UnitOccupied)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: unit is not vacant", ErrValidation)
		}
		return tx.Model(&models.Tenant{}).
			Where("id = ?", tenantID).
			Updates(map[string]interface{}{
				"unit_id":      unitID,
				"status":       models.TenantActive,
				"move_in_date": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	tenant.UnitID = &unitID
	tenant.Status = models.TenantActive
	tenant.MoveInDate = &now
	return tenant, nil
}

// Vacate clears the tenant's unit and marks them exited; the unit returns
// to vacant in the same transaction.
func (r *TenantRepository) Vacate(scope *authz.AccessScope, tenantID uuid.UUID) (*models.Tenant, error) {
	tenant, err := r.Get(scope, tenantID)
	if err != nil {
		return nil, err
	}
	if err := r.requireEditCapability(scope, tenant); err != nil {
		return nil, err
	}
	if tenant.UnitID == nil {
		return nil, fmt.Errorf("%w: tenant has no unit assignment", ErrValidation)
	}

	unitID := *tenant.UnitID
	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Tenant{}).
			Where("id = ?", tenantID).
			Updates(map[string]interface{}{
				"unit_id": nil,
				"status":  models.TenantExited,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Unit{}).
			Where("id = ?", unitID).
			Update("status", models.UnitVacant).Error
	})
	if err != nil {
		return nil, err
	}

	tenant.UnitID = nil
	tenant.Status = models.TenantExited
	return tenant, nil
}

// LinkAccount connects a tenant record to a login-capable user account.
// The unique index on user_account_id rejects a second link.
func (r *TenantRepository) LinkAccount(scope *authz.AccessScope, tenantID, userAccountID uuid.UUID) (*models.Tenant, error) {
	tenant, err := r.Get(scope, tenantID)
	if err != nil {
		return nil, err
	}
	if err := r.requireEditCapability(scope, tenant); err != nil {
		return nil, err
	}
	if tenant.UserAccountID != nil {
		return nil, fmt.Errorf("%w: tenant is already linked to an account", ErrConflict)
	}
	if err := r.db.Model(tenant).Update("user_account_id", userAccountID).Error; err != nil {
		return nil, translate(err)
	}
	tenant.UserAccountID = &userAccountID
	return tenant, nil
}
