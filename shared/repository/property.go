package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renta-rw/renta-backend/shared/authz"
	"github.com/renta-rw/renta-backend/shared/models"
)

// PropertyRepository serves every property and unit query through the
// caller's resolved scope. Out-of-scope rows surface as ErrNotFound.
type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// PropertyFilter narrows a property listing after scoping.
type PropertyFilter struct {
	District string
	Search   string
	Page     int
	Limit    int
}

// scoped restricts a property query to the caller's scope and hides
// soft-deleted rows.
func (r *PropertyRepository) scoped(scope *authz.AccessScope) *gorm.DB {
	q := r.db.Model(&models.Property{}).Where("is_deleted = ?", false)
	if scope.IsSuperAdmin {
		return q
	}
	if len(scope.PropertyIDs) == 0 {
		// Forces an empty result set instead of an unscoped query.
		return q.Where("1 = 0")
	}
	return q.Where("id IN ?", scope.PropertyIDs)
}

func (r *PropertyRepository) List(scope *authz.AccessScope, filter PropertyFilter) ([]models.Property, *Pagination, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)

	q := r.scoped(scope)
	if filter.District != "" {
		q = q.Where("district = ?", filter.District)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR address LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count properties: %w", err)
	}

	var properties []models.Property
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&properties).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, buildPagination(page, limit, total), nil
}

func (r *PropertyRepository) Get(scope *authz.AccessScope, id uuid.UUID) (*models.Property, error) {
	var property models.Property
	err := r.scoped(scope).Preload("Units").Where("id = ?", id).First(&property).Error
	if err != nil {
		return nil, translate(err)
	}
	return &property, nil
}

// GetForJoin resolves a property without the soft-delete filter. Used by
// historical surfaces (payment detail) where a deleted property must still
// render its name and address.
func (r *PropertyRepository) GetForJoin(id uuid.UUID) (*models.Property, error) {
	var property models.Property
	err := r.db.Where("id = ?", id).First(&property).Error
	if err != nil {
		return nil, translate(err)
	}
	return &property, nil
}

func (r *PropertyRepository) Create(scope *authz.AccessScope, property *models.Property) error {
	if property.Name == "" || property.Address == "" {
		return fmt.Errorf("%w: name and address are required", ErrValidation)
	}
	if err := r.db.Create(property).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Update applies field changes to an in-scope property. Managers need the
// canEditProperty capability on this specific property.
func (r *PropertyRepository) Update(scope *authz.AccessScope, id uuid.UUID, updates map[string]interface{}) (*models.Property, error) {
	property, err := r.Get(scope, id)
	if err != nil {
		return nil, err
	}
	if !scope.HasCapability(id, models.CapEditProperty) {
		return nil, ErrForbidden
	}
	if err := r.db.Model(property).Updates(updates).Error; err != nil {
		return nil, translate(err)
	}
	return property, nil
}

// SoftDelete marks the property deleted, recording who and when. The row
// stays joinable for payment and tenancy history.
func (r *PropertyRepository) SoftDelete(scope *authz.AccessScope, id uuid.UUID, deletedBy uuid.UUID) error {
	property, err := r.Get(scope, id)
	if err != nil {
		return err
	}
	now := time.Now()
	return translate(r.db.Model(property).Updates(map[string]interface{}{
		"is_deleted": true,
		"deleted_at": now,
		"deleted_by": deletedBy,
	}).Error)
}

// resolveUnit loads a unit and verifies its property is inside the scope.
func (r *PropertyRepository) resolveUnit(scope *authz.AccessScope, unitID uuid.UUID) (*models.Unit, error) {
	var unit models.Unit
	if err := r.db.Where("id = ?", unitID).First(&unit).Error; err != nil {
		return nil, translate(err)
	}
	if !scope.ContainsProperty(unit.PropertyID) {
		return nil, ErrNotFound
	}
	return &unit, nil
}

func (r *PropertyRepository) ListUnits(scope *authz.AccessScope, propertyID uuid.UUID) ([]models.Unit, error) {
	if _, err := r.Get(scope, propertyID); err != nil {
		return nil, err
	}
	var units []models.Unit
	err := r.db.Where("property_id = ?", propertyID).Order("label ASC").Find(&units).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return units, nil
}

func (r *PropertyRepository) CreateUnit(scope *authz.AccessScope, unit *models.Unit) error {
	if _, err := r.Get(scope, unit.PropertyID); err != nil {
		return err
	}
	if !scope.HasCapability(unit.PropertyID, models.CapEditProperty) {
		return ErrForbidden
	}
	if unit.Label == "" {
		return fmt.Errorf("%w: unit label is required", ErrValidation)
	}
	if unit.MonthlyRent.IsNegative() {
		return fmt.Errorf("%w: monthly rent must not be negative", ErrValidation)
	}
	if unit.Status == "" {
		unit.Status = models.UnitVacant
	}
	return translate(r.db.Create(unit).Error)
}

func (r *PropertyRepository) GetUnit(scope *authz.AccessScope, unitID uuid.UUID) (*models.Unit, error) {
	return r.resolveUnit(scope, unitID)
}

func (r *PropertyRepository) UpdateUnit(scope *authz.AccessScope, unitID uuid.UUID, updates map[string]interface{}) (*models.Unit, error) {
	unit, err := r.resolveUnit(scope, unitID)
	if err != nil {
		return nil, err
	}
	if !scope.HasCapability(unit.PropertyID, models.CapEditProperty) {
		return nil, ErrForbidden
	}
	if err := r.db.Model(unit).Updates(updates).Error; err != nil {
		return nil, translate(err)
	}
	return unit, nil
}

// DeleteUnit removes a unit and clears the unit reference on any tenant
// still pointing at it, in one transaction.
func (r *PropertyRepository) DeleteUnit(scope *authz.AccessScope, unitID uuid.UUID) error {
	unit, err := r.resolveUnit(scope, unitID)
	if err != nil {
		return err
	}
	if !scope.HasCapability(unit.PropertyID, models.CapEditProperty) {
		return ErrForbidden
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Tenant{}).
			Where("unit_id = ?", unitID).
			Update("unit_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Unit{}, "id = ?", unitID).Error
	})
}
