package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renta-rw/renta-backend/shared/authz"
	"github.com/renta-rw/renta-backend/shared/commission"
	"github.com/renta-rw/renta-backend/shared/models"
)

// AgentRepository covers the agent program: applications and their review,
// commission rules, and commission payout. Rules and review are
// super_admin surfaces; the route layer enforces that and the repository
// enforces row-level constraints.
type AgentRepository struct {
	db *gorm.DB
}

func NewAgentRepository(db *gorm.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

// CreateApplication is the one unauthenticated write in the system. The
// unique email index rejects duplicate applications.
func (r *AgentRepository) CreateApplication(app *models.AgentApplication) error {
	if app.FullName == "" || app.Email == "" {
		return fmt.Errorf("%w: full name and email are required", ErrValidation)
	}
	app.Status = models.ApplicationPending
	if err := r.db.Create(app).Error; err != nil {
		if translated := translate(err); translated == ErrConflict {
			return fmt.Errorf("%w: an application with this email already exists", ErrConflict)
		}
		return err
	}
	return nil
}

func (r *AgentRepository) ListApplications(status string, page, limit int) ([]models.AgentApplication, *Pagination, error) {
	page, limit = normalizePage(page, limit)

	q := r.db.Model(&models.AgentApplication{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count applications: %w", err)
	}

	var apps []models.AgentApplication
	err := q.Order("created_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&apps).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, buildPagination(page, limit, total), nil
}

// Approve accepts a pending application and provisions the agent's user
// account in the same transaction. passwordHash comes from the handler,
// which generates and delivers the initial credential.
func (r *AgentRepository) Approve(id, reviewedBy uuid.UUID, passwordHash string) (*models.AgentApplication, *models.User, error) {
	var app models.AgentApplication
	if err := r.db.Where("id = ?", id).First(&app).Error; err != nil {
		return nil, nil, translate(err)
	}
	if app.Status != models.ApplicationPending {
		return nil, nil, fmt.Errorf("%w: application is not pending", ErrValidation)
	}

	now := time.Now()
	user := &models.User{
		FullName:     app.FullName,
		Email:        app.Email,
		Phone:        app.Phone,
		PasswordHash: passwordHash,
		Role:         models.RoleAgent,
		IsActive:     true,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return translate(err)
		}
		res := tx.Model(&models.AgentApplication{}).
			Where("id = ? AND status = ?", id, models.ApplicationPending).
			Updates(map[string]interface{}{
				"status":      models.ApplicationApproved,
				"reviewed_by": reviewedBy,
				"reviewed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: application was reviewed concurrently", ErrConflict)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	app.Status = models.ApplicationApproved
	app.ReviewedBy = &reviewedBy
	app.ReviewedAt = &now
	return &app, user, nil
}

func (r *AgentRepository) RejectApplication(id, reviewedBy uuid.UUID, notes string) (*models.AgentApplication, error) {
	var app models.AgentApplication
	if err := r.db.Where("id = ?", id).First(&app).Error; err != nil {
		return nil, translate(err)
	}
	if app.Status != models.ApplicationPending {
		return nil, fmt.Errorf("%w: application is not pending", ErrValidation)
	}

	now := time.Now()
	res := r.db.Model(&models.AgentApplication{}).
		Where("id = ? AND status = ?", id, models.ApplicationPending).
		Updates(map[string]interface{}{
			"status":      models.ApplicationRejected,
			"reviewed_by": reviewedBy,
			"reviewed_at": now,
			"notes":       notes,
		})
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: application was reviewed concurrently", ErrConflict)
	}

	app.Status = models.ApplicationRejected
	app.ReviewedBy = &reviewedBy
	app.ReviewedAt = &now
	app.Notes = notes
	return &app, nil
}

// Commission rule administration.

func (r *AgentRepository) ListRules() ([]models.CommissionRule, error) {
	var rules []models.CommissionRule
	err := r.db.Order("action_type ASC").Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list commission rules: %w", err)
	}
	return rules, nil
}

func (r *AgentRepository) CreateRule(rule *models.CommissionRule) error {
	if err := commission.ValidateRule(rule); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := r.db.Create(rule).Error; err != nil {
		if translated := translate(err); translated == ErrConflict {
			return fmt.Errorf("%w: a rule for this action type already exists", ErrConflict)
		}
		return err
	}
	return nil
}

func (r *AgentRepository) UpdateRule(id uuid.UUID, updates map[string]interface{}) (*models.CommissionRule, error) {
	var rule models.CommissionRule
	if err := r.db.Where("id = ?", id).First(&rule).Error; err != nil {
		return nil, translate(err)
	}
	if err := r.db.Model(&rule).Updates(updates).Error; err != nil {
		return nil, translate(err)
	}
	if err := commission.ValidateRule(&rule); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return &rule, nil
}

// Transactions and commissions.

func (r *AgentRepository) ListTransactions(scope *authz.AccessScope, agentID *uuid.UUID, page, limit int) ([]models.AgentTransaction, *Pagination, error) {
	page, limit = normalizePage(page, limit)

	q := r.db.Model(&models.AgentTransaction{})
	if scope.Role == models.RoleAgent {
		// Agents only ever see their own ledger.
		q = q.Where("agent_id = ?", scope.UserID)
	} else if agentID != nil {
		q = q.Where("agent_id = ?", *agentID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	var txns []models.AgentTransaction
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, buildPagination(page, limit, total), nil
}

func (r *AgentRepository) ListCommissions(scope *authz.AccessScope, agentID *uuid.UUID, status string, page, limit int) ([]models.AgentCommission, *Pagination, error) {
	page, limit = normalizePage(page, limit)

	q := r.db.Model(&models.AgentCommission{})
	if scope.Role == models.RoleAgent {
		q = q.Where("agent_id = ?", scope.UserID)
	} else if agentID != nil {
		q = q.Where("agent_id = ?", *agentID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count commissions: %w", err)
	}

	var commissions []models.AgentCommission
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&commissions).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list commissions: %w", err)
	}
	return commissions, buildPagination(page, limit, total), nil
}

// PayCommission settles a pending commission. The status precondition in
// the UPDATE makes a concurrent double-payout impossible.
func (r *AgentRepository) PayCommission(id, paidBy uuid.UUID) (*models.AgentCommission, error) {
	return r.settleCommission(id, models.CommissionPaid, &paidBy)
}

// CancelCommission voids a pending commission without payment.
func (r *AgentRepository) CancelCommission(id uuid.UUID) (*models.AgentCommission, error) {
	return r.settleCommission(id, models.CommissionCancelled, nil)
}

func (r *AgentRepository) settleCommission(id uuid.UUID, next models.CommissionStatus, paidBy *uuid.UUID) (*models.AgentCommission, error) {
	var com models.AgentCommission
	if err := r.db.Where("id = ?", id).First(&com).Error; err != nil {
		return nil, translate(err)
	}
	if com.Status != models.CommissionPending {
		return nil, fmt.Errorf("%w: commission is not pending", ErrValidation)
	}

	updates := map[string]interface{}{"status": next}
	var now time.Time
	if next == models.CommissionPaid {
		now = time.Now()
		updates["paid_at"] = now
		updates["paid_by"] = paidBy
	}

	res := r.db.Model(&models.AgentCommission{}).
		Where("id = ? AND status = ?", id, models.CommissionPending).
		Updates(updates)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: commission was settled concurrently", ErrConflict)
	}

	com.Status = next
	if next == models.CommissionPaid {
		com.PaidAt = &now
		com.PaidBy = paidBy
	}
	return &com, nil
}
