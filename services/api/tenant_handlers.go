package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/renta-rw/renta-backend/shared/authz"
	"github.com/renta-rw/renta-backend/shared/commission"
	"github.com/renta-rw/renta-backend/shared/models"
	"github.com/renta-rw/renta-backend/shared/repository"
	"github.com/renta-rw/renta-backend/shared/utils"
)

type CreateTenantRequest struct {
	FullName   string     `json:"full_name" binding:"required"`
	Phone      string     `json:"phone"`
	Email      string     `json:"email"`
	MoveInDate *time.Time `json:"move_in_date"`
	OwnerID    *uuid.UUID `json:"owner_id"`
}

type UpdateTenantRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Status   *string `json:"status"`
}

type AssignUnitRequest struct {
	UnitID uuid.UUID `json:"unit_id" binding:"required"`
}

type LinkAccountRequest struct {
	UserAccountID uuid.UUID `json:"user_account_id" binding:"required"`
}

func handleListTenants(repo *repository.TenantRepository, resolver *authz.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResTenant, authz.ActionRead) {
			return
		}
		propertyID, ok := uuidQuery(c, "property_id")
		if !ok {
			return
		}

		filter := repository.TenantFilter{
			PropertyID: propertyID,
			Status:     c.Query("status"),
			Search:     c.Query("search"),
			Page:       intQuery(c, "page", 1),
			Limit:      intQuery(c, "limit", 20),
		}
		tenants, pagination, err := repo.List(scope, filter)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Tenants retrieved successfully", listPayload("tenants", tenants, pagination))
	}
}

func handleGetTenant(repo *repository.TenantRepository, resolver *authz.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResTenant, authz.ActionRead) {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		tenant, err := repo.Get(scope, id)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Tenant retrieved successfully", tenant)
	}
}

func handleCreateTenant(repo *repository.TenantRepository, resolver *authz.Resolver, audit *repository.AuditRepository, engine *commission.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResTenant, authz.ActionCreate) {
			return
		}

		var req CreateTenantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		tenant := &models.Tenant{
			UserID:     user.ID,
			FullName:   req.FullName,
			Phone:      req.Phone,
			Email:      req.Email,
			MoveInDate: req.MoveInDate,
			Status:     models.TenantActive,
		}
		if user.Role == models.RoleAgent {
			if req.OwnerID == nil {
				utils.BadRequestResponse(c, "owner_id is required for agent-assisted registration")
				return
			}
			tenant.UserID = *req.OwnerID
			tenant.PerformedByAgentID = &user.ID
		}

		if err := repo.Create(scope, tenant); err != nil {
			writeRepoError(c, err)
			return
		}
		if tenant.PerformedByAgentID != nil {
			creditAgentAction(engine, *tenant.PerformedByAgentID, ActionTenantPlacement, &tenant.UserID, &tenant.ID, nil)
		}
		audit.Record(user.ID, "tenant.create", "tenant", &tenant.ID, map[string]interface{}{
			"full_name": tenant.FullName,
		})
		utils.CreatedResponse(c, "Tenant created successfully", tenant)
	}
}

func handleUpdateTenant(repo *repository.TenantRepository, resolver *authz.Resolver, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResTenant, authz.ActionUpdate) {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		var req UpdateTenantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		updates := map[string]interface{}{}
		if req.FullName != nil {
			updates["full_name"] = *req.FullName
		}
		if req.Phone != nil {
			updates["phone"] = *req.Phone
		}
		if req.Email != nil {
			updates["email"] = *req.Email
		}
		if req.Status != nil {
			switch models.TenantStatus(*req.Status) {
			case models.TenantActive, models.TenantLate, models.TenantExited:
				updates["status"] = *req.Status
			default:
				utils.BadRequestResponse(c, "Unknown tenant status")
				return
			}
		}
		if len(updates) == 0 {
			utils.BadRequestResponse(c, "No fields to update")
			return
		}

		tenant, err := repo.Update(scope, id, updates)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "tenant.update", "tenant", &id, updates)
		utils.OKResponse(c, "Tenant updated successfully", tenant)
	}
}

func handleAssignUnit(repo *repository.TenantRepository, resolver *authz.Resolver, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResTenant, authz.ActionUpdate) {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		var req AssignUnitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		tenant, err := repo.AssignToUnit(scope, id, req.UnitID)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "tenant.assign_unit", "tenant", &id, map[string]interface{}{
			"unit_id": req.UnitID,
		})
		utils.OKResponse(c, "Tenant assigned to unit", tenant)
	}
}

func handleVacateTenant(repo *repository.TenantRepository, resolver *authz.Resolver, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResTenant, authz.ActionUpdate) {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		tenant, err := repo.Vacate(scope, id)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "tenant.vacate", "tenant", &id, nil)
		utils.OKResponse(c, "Tenant vacated", tenant)
	}
}

func handleLinkTenantAccount(repo *repository.TenantRepository, resolver *authz.Resolver, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResTenant, authz.ActionUpdate) {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		var req LinkAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		tenant, err := repo.LinkAccount(scope, id, req.UserAccountID)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "tenant.link_account", "tenant", &id, map[string]interface{}{
			"user_account_id": req.UserAccountID,
		})
		utils.OKResponse(c, "Tenant account linked", tenant)
	}
}
