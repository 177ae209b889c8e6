package repository

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renta-rw/renta-backend/shared/authz"
	"github.com/renta-rw/renta-backend/shared/models"
)

// PaymentRepository records and lists rent payments. Payments scope through
// their unit's property; tenant-role callers see only their own rows.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

type PaymentFilter struct {
	PropertyID  *uuid.UUID
	TenantID    *uuid.UUID
	PeriodMonth int
	PeriodYear  int
	Method      string
	Page        int
	Limit       int
}

// PaymentDetail is a payment joined with its surrounding context. The
// property is resolved without the soft-delete filter so history stays
// readable after a property is removed.
type PaymentDetail struct {
	models.Payment
	TenantName      string `json:"tenant_name"`
	UnitLabel       string `json:"unit_label"`
	PropertyID      uuid.UUID `json:"property_id"`
	PropertyName    string `json:"property_name"`
	PropertyAddress string `json:"property_address"`
	PropertyDeleted bool   `json:"property_deleted"`
}

func (r *PaymentRepository) viewableProperties(scope *authz.AccessScope) []uuid.UUID {
	if scope.Role != models.RoleManager {
		return scope.PropertyIDs
	}
	ids := make([]uuid.UUID, 0, len(scope.PropertyIDs))
	for _, pid := range scope.PropertyIDs {
		if scope.HasCapability(pid, models.CapViewPayments) {
			ids = append(ids, pid)
		}
	}
	return ids
}

func (r *PaymentRepository) scoped(scope *authz.AccessScope) *gorm.DB {
	q := r.db.Model(&models.Payment{})
	if scope.IsSuperAdmin {
		return q
	}
	if scope.Role == models.RoleTenant {
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

func (r *PaymentRepository) List(scope *authz.AccessScope, filter PaymentFilter) ([]models.Payment, *Pagination, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)

	q := r.scoped(scope)
	if filter.PropertyID != nil {
		sub := r.db.Model(&models.Unit{}).Select("id").Where("property_id = ?", *filter.PropertyID)
		q = q.Where("unit_id IN (?)", sub)
	}
	if filter.TenantID != nil {
		q = q.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.PeriodMonth != 0 {
		q = q.Where("period_month = ?", filter.PeriodMonth)
	}
	if filter.PeriodYear != 0 {
		q = q.Where("period_year = ?", filter.PeriodYear)
	}
	if filter.Method != "" {
		q = q.Where("payment_method = ?", filter.Method)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count payments: %w", err)
	}

	var payments []models.Payment
	err := q.Order("payment_date DESC, created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, buildPagination(page, limit, total), nil
}

// Create records a payment against a tenant's unit. Checks run in order:
// scope on the unit's property, then the recording capability, then field
// validation.
func (r *PaymentRepository) Create(scope *authz.AccessScope, payment *models.Payment) error {
	var unit models.Unit
	if err := r.db.Where("id = ?", payment.UnitID).First(&unit).Error; err != nil {
		return translate(err)
	}
	if !scope.ContainsProperty(unit.PropertyID) {
		return ErrNotFound
	}
	if scope.Role == models.RoleManager && !scope.HasCapability(unit.PropertyID, models.CapRecordPayments) {
		return ErrForbidden
	}

	var tenant models.Tenant
	if err := r.db.Where("id = ?", payment.TenantID).First(&tenant).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: tenant not found", ErrValidation)
		}
		return err
	}
	if payment.Amount.IsZero() || payment.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if !models.ValidPaymentMethod(string(payment.PaymentMethod)) {
		return fmt.Errorf("%w: unknown payment method", ErrValidation)
	}
	if payment.PeriodMonth < 1 || payment.PeriodMonth > 12 {
		return fmt.Errorf("%w: period month must be between 1 and 12", ErrValidation)
	}
	if payment.PeriodYear < 2000 || payment.PeriodYear > 2100 {
		return fmt.Errorf("%w: period year is out of range", ErrValidation)
	}
	if payment.PaymentDate.IsZero() {
		return fmt.Errorf("%w: payment date is required", ErrValidation)
	}

	return translate(r.db.Create(payment).Error)
}

// Detail fetches one payment with tenant, unit and property context.
func (r *PaymentRepository) Detail(scope *authz.AccessScope, id uuid.UUID) (*PaymentDetail, error) {
	var payment models.Payment
	err := r.scoped(scope).Where("id = ?", id).First(&payment).Error
	if err != nil {
		return nil, translate(err)
	}

	detail := &PaymentDetail{Payment: payment}

	var tenant models.Tenant
	if err := r.db.Where("id = ?", payment.TenantID).First(&tenant).Error; err == nil {
		detail.TenantName = tenant.FullName
	}

	var unit models.Unit
	if err := r.db.Where("id = ?", payment.UnitID).First(&unit).Error; err != nil {
		return nil, translate(err)
	}
	detail.UnitLabel = unit.Label

	// Deliberately no is_deleted filter: a payment on a deleted property
	// must still show where the money went.
	var property models.Property
	if err := r.db.Where("id = ?", unit.PropertyID).First(&property).Error; err != nil {
		return nil, translate(err)
	}
	detail.PropertyID = property.ID
	detail.PropertyName = property.Name
	detail.PropertyAddress = property.Address
	detail.PropertyDeleted = property.IsDeleted

	return detail, nil
}
