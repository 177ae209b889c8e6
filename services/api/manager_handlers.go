package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/renta-rw/renta-backend/shared/authz"
	"github.com/renta-rw/renta-backend/shared/models"
	"github.com/renta-rw/renta-backend/shared/repository"
	"github.com/renta-rw/renta-backend/shared/utils"
)

type InviteManagerRequest struct {
	ManagerID uuid.UUID `json:"manager_id" binding:"required"`
}

type UpdatePermissionsRequest struct {
	Permissions models.ManagerPermissions `json:"permissions" binding:"required"`
}

func handleInviteManager(repo *repository.ManagerRepository, resolver *authz.Resolver, audit *repository.AuditRepository, producer *NotificationProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResManager, authz.ActionCreate) {
			return
		}
		propertyID, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		var req InviteManagerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		assignment, err := repo.Invite(scope, propertyID, req.ManagerID, user.ID)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "manager.invite", "property_manager", &assignment.ID, map[string]interface{}{
			"property_id": propertyID,
			"manager_id":  req.ManagerID,
		})
		producer.Publish(NotificationEvent{
			UserID: req.ManagerID,
			Type:   "manager_invitation",
			Title:  "Property management invitation",
			Body:   "You have been invited to manage a property. Accept the invitation to begin.",
		})
		utils.CreatedResponse(c, "Manager invited successfully", assignment)
	}
}

func handleListManagers(repo *repository.ManagerRepository, resolver *authz.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResManager, authz.ActionRead) {
			return
		}
		propertyID, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		assignments, err := repo.ListForProperty(scope, propertyID)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Managers retrieved successfully", assignments)
	}
}

// handleListInvitations lets a manager see their own assignments.
func handleListInvitations(repo *repository.ManagerRepository, resolver *authz.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if user.Role != models.RoleManager && !user.IsSuperAdmin() {
			utils.ForbiddenResponse(c, "Only managers have invitations")
			return
		}

		assignments, err := repo.ListInvitations(user.ID)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Invitations retrieved successfully", assignments)
	}
}

func handleAcceptInvitation(repo *repository.ManagerRepository, resolver *authz.Resolver, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		assignmentID, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		assignment, err := repo.Accept(user.ID, assignmentID)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "manager.accept", "property_manager", &assignmentID, nil)
		utils.OKResponse(c, "Invitation accepted", assignment)
	}
}

func handleRevokeManager(repo *repository.ManagerRepository, resolver *authz.Resolver, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResManager, authz.ActionDelete) {
			return
		}
		assignmentID, ok := uuidParam(c, "assignment_id")
		if !ok {
			return
		}

		if err := repo.Revoke(scope, assignmentID); err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "manager.revoke", "property_manager", &assignmentID, nil)
		utils.OKResponse(c, "Manager assignment revoked", nil)
	}
}

func handleUpdateManagerPermissions(repo *repository.ManagerRepository, resolver *authz.Resolver, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResManager, authz.ActionUpdate) {
			return
		}
		if user.Role == models.RoleManager {
			// Managers may never grant themselves capabilities.
			utils.ForbiddenResponse(c, "Managers cannot edit assignment permissions")
			return
		}
		assignmentID, ok := uuidParam(c, "assignment_id")
		if !ok {
			return
		}

		var req UpdatePermissionsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		assignment, err := repo.UpdatePermissions(scope, assignmentID, req.Permissions)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "manager.permissions", "property_manager", &assignmentID, map[string]interface{}{
			"permissions": req.Permissions,
		})
		utils.OKResponse(c, "Permissions updated successfully", assignment)
	}
}
