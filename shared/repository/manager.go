package repository

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renta-rw/renta-backend/shared/authz"
	"github.com/renta-rw/renta-backend/shared/models"
	"github.com/renta-rw/renta-backend/shared/utils"
)

// ManagerRepository handles the manager assignment lifecycle:
// invite (pending) -> accept (active) -> revoke. The (property_id,
// manager_id) unique constraint is the authoritative duplicate guard;
// a concurrent second invite surfaces here as ErrConflict.
type ManagerRepository struct {
	db *gorm.DB
}

func NewManagerRepository(db *gorm.DB) *ManagerRepository {
	return &ManagerRepository{db: db}
}

// Invite creates a pending assignment with minimum-privilege default
// permissions. The invited user must hold the manager role.
func (r *ManagerRepository) Invite(scope *authz.AccessScope, propertyID, managerID, invitedBy uuid.UUID) (*models.PropertyManager, error) {
	if !scope.ContainsProperty(propertyID) {
		return nil, ErrNotFound
	}

	var manager models.User
	if err := r.db.Where("id = ?", managerID).First(&manager).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: manager user not found", ErrValidation)
		}
		return nil, err
	}
	if manager.Role != models.RoleManager {
		return nil, fmt.Errorf("%w: user does not have the manager role", ErrValidation)
	}

	assignment := &models.PropertyManager{
		PropertyID:  propertyID,
		ManagerID:   managerID,
		Permissions: models.DefaultManagerPermissions(),
		InvitedBy:   invitedBy,
		Status:      models.ManagerPending,
	}
	if err := r.db.Create(assignment).Error; err != nil {
		if translated := translate(err); translated == ErrConflict {
			return nil, fmt.Errorf("%w: manager is already assigned to this property", ErrConflict)
		}
		return nil, err
	}
	return assignment, nil
}

// Accept transitions a pending invitation to active. Only the invited
// manager can accept; anyone else sees ErrNotFound.
func (r *ManagerRepository) Accept(managerID, assignmentID uuid.UUID) (*models.PropertyManager, error) {
	var assignment models.PropertyManager
	err := r.db.Where("id = ? AND manager_id = ?", assignmentID, managerID).First(&assignment).Error
	if err != nil {
		return nil, translate(err)
	}
	if assignment.Status != models.ManagerPending {
		return nil, fmt.Errorf("%w: invitation is not pending", ErrValidation)
	}

	err = r.db.Model(&assignment).Update("status", models.ManagerActive).Error
	if err != nil {
		return nil, translate(err)
	}
	utils.InvalidateManagerScope(managerID.String())
	return &assignment, nil
}

// Revoke deactivates an assignment. The row is kept for audit history.
func (r *ManagerRepository) Revoke(scope *authz.AccessScope, assignmentID uuid.UUID) error {
	assignment, err := r.get(scope, assignmentID)
	if err != nil {
		return err
	}
	if assignment.Status == models.ManagerRevoked {
		return fmt.Errorf("%w: assignment is already revoked", ErrValidation)
	}

	err = r.db.Model(assignment).Update("status", models.ManagerRevoked).Error
	if err != nil {
		return translate(err)
	}
	utils.InvalidateManagerScope(assignment.ManagerID.String())
	return nil
}

// UpdatePermissions replaces the capability flags wholesale. Missing flags
// in the incoming struct are false; permissions never widen implicitly.
func (r *ManagerRepository) UpdatePermissions(scope *authz.AccessScope, assignmentID uuid.UUID, perms models.ManagerPermissions) (*models.PropertyManager, error) {
	assignment, err := r.get(scope, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.Status == models.ManagerRevoked {
		return nil, fmt.Errorf("%w: assignment is revoked", ErrValidation)
	}

	err = r.db.Model(assignment).Update("permissions", perms).Error
	if err != nil {
		return nil, translate(err)
	}
	assignment.Permissions = perms
	utils.InvalidateManagerScope(assignment.ManagerID.String())
	return assignment, nil
}

func (r *ManagerRepository) ListForProperty(scope *authz.AccessScope, propertyID uuid.UUID) ([]models.PropertyManager, error) {
	if !scope.ContainsProperty(propertyID) {
		return nil, ErrNotFound
	}
	var assignments []models.PropertyManager
	err := r.db.Where("property_id = ?", propertyID).Order("created_at ASC").Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list manager assignments: %w", err)
	}
	return assignments, nil
}

// ListInvitations returns a manager's own assignments across all statuses.
func (r *ManagerRepository) ListInvitations(managerID uuid.UUID) ([]models.PropertyManager, error) {
	var assignments []models.PropertyManager
	err := r.db.Where("manager_id = ?", managerID).Order("created_at DESC").Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return assignments, nil
}

func (r *ManagerRepository) get(scope *authz.AccessScope, assignmentID uuid.UUID) (*models.PropertyManager, error) {
	var assignment models.PropertyManager
	if err := r.db.Where("id = ?", assignmentID).First(&assignment).Error; err != nil {
		return nil, translate(err)
	}
	if !scope.ContainsProperty(assignment.PropertyID) {
		return nil, ErrNotFound
	}
	return &assignment, nil
}
