package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/renta-rw/renta-backend/shared/authz"
	"github.com/renta-rw/renta-backend/shared/commission"
	"github.com/renta-rw/renta-backend/shared/models"
	"github.com/renta-rw/renta-backend/shared/repository"
	"github.com/renta-rw/renta-backend/shared/utils"
)

type CreatePropertyRequest struct {
	Name     string     `json:"name" binding:"required"`
	Address  string     `json:"address" binding:"required"`
	District string     `json:"district"`
	AgencyID *uuid.UUID `json:"agency_id"`
}

type UpdatePropertyRequest struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	District *string `json:"district"`
}

type CreateUnitRequest struct {
	Label       string          `json:"label" binding:"required"`
	MonthlyRent decimal.Decimal `json:"monthly_rent" binding:"required"`
}

type UpdateUnitRequest struct {
	Label       *string          `json:"label"`
	Status      *string          `json:"status"`
	MonthlyRent *decimal.Decimal `json:"monthly_rent"`
}

func handleListProperties(repo *repository.PropertyRepository, resolver *authz.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResProperty, authz.ActionRead) {
			return
		}

		filter := repository.PropertyFilter{
			District: c.Query("district"),
			Search:   c.Query("search"),
			Page:     intQuery(c, "page", 1),
			Limit:    intQuery(c, "limit", 20),
		}
		properties, pagination, err := repo.List(scope, filter)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Properties retrieved successfully", listPayload("properties", properties, pagination))
	}
}

func handleGetProperty(repo *repository.PropertyRepository, resolver *authz.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResProperty, authz.ActionRead) {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		property, err := repo.Get(scope, id)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Property retrieved successfully", property)
	}
}

func handleCreateProperty(repo *repository.PropertyRepository, resolver *authz.Resolver, audit *repository.AuditRepository, engine *commission.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResProperty, authz.ActionCreate) {
			return
		}

		var req CreatePropertyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		property := &models.Property{
			UserID:   user.ID,
			AgencyID: req.AgencyID,
			Name:     req.Name,
			Address:  req.Address,
			District: req.District,
		}
		if user.Role == models.RoleAgency {
			property.AgencyID = &user.ID
		}
		if user.Role == models.RoleAgent {
			// Agent-assisted registration: the property belongs to the
			// owner, the agent is credited for commission.
			ownerID, ok := uuidQuery(c, "owner_id")
			if !ok {
				return
			}
			if ownerID == nil {
				utils.BadRequestResponse(c, "owner_id is required for agent-assisted registration")
				return
			}
			property.UserID = *ownerID
			property.PerformedByAgentID = &user.ID
		}

		if err := repo.Create(scope, property); err != nil {
			writeRepoError(c, err)
			return
		}
		if property.PerformedByAgentID != nil {
			creditAgentAction(engine, *property.PerformedByAgentID, ActionPropertyRegistration, &property.UserID, nil, nil)
		}
		audit.Record(user.ID, "property.create", "property", &property.ID, map[string]interface{}{
			"name": property.Name,
		})
		utils.CreatedResponse(c, "Property created successfully", property)
	}
}

func handleUpdateProperty(repo *repository.PropertyRepository, resolver *authz.Resolver, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResProperty, authz.ActionUpdate) {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		var req UpdatePropertyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		updates := map[string]interface{}{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Address != nil {
			updates["address"] = *req.Address
		}
		if req.District != nil {
			updates["district"] = *req.District
		}
		if len(updates) == 0 {
			utils.BadRequestResponse(c, "No fields to update")
			return
		}

		property, err := repo.Update(scope, id, updates)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "property.update", "property", &id, updates)
		utils.OKResponse(c, "Property updated successfully", property)
	}
}

func handleDeleteProperty(repo *repository.PropertyRepository, resolver *authz.Resolver, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResProperty, authz.ActionDelete) {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		if err := repo.SoftDelete(scope, id, user.ID); err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "property.delete", "property", &id, nil)
		utils.OKResponse(c, "Property deleted successfully", nil)
	}
}

func handleListUnits(repo *repository.PropertyRepository, resolver *authz.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResUnit, authz.ActionRead) {
			return
		}
		propertyID, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		units, err := repo.ListUnits(scope, propertyID)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Units retrieved successfully", units)
	}
}

func handleCreateUnit(repo *repository.PropertyRepository, resolver *authz.Resolver, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResUnit, authz.ActionCreate) {
			return
		}
		propertyID, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		var req CreateUnitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		unit := &models.Unit{
			PropertyID:  propertyID,
			Label:       req.Label,
			MonthlyRent: req.MonthlyRent,
			Status:      models.UnitVacant,
		}
		if err := repo.CreateUnit(scope, unit); err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "unit.create", "unit", &unit.ID, map[string]interface{}{
			"property_id": propertyID,
			"label":       unit.Label,
		})
		utils.CreatedResponse(c, "Unit created successfully", unit)
	}
}

func handleUpdateUnit(repo *repository.PropertyRepository, resolver *authz.Resolver, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResUnit, authz.ActionUpdate) {
			return
		}
		unitID, ok := uuidParam(c, "unit_id")
		if !ok {
			return
		}

		var req UpdateUnitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		updates := map[string]interface{}{}
		if req.Label != nil {
			updates["label"] = *req.Label
		}
		if req.Status != nil {
			switch models.UnitStatus(*req.Status) {
			case models.UnitVacant, models.UnitOccupied, models.UnitMaintenance:
				updates["status"] = *req.Status
			default:
				utils.BadRequestResponse(c, "Unknown unit status")
				return
			}
		}
		if req.MonthlyRent != nil {
			if req.MonthlyRent.IsNegative() {
				utils.BadRequestResponse(c, "Monthly rent must not be negative")
				return
			}
			updates["monthly_rent"] = *req.MonthlyRent
		}
		if len(updates) == 0 {
			utils.BadRequestResponse(c, "No fields to update")
			return
		}

		unit, err := repo.UpdateUnit(scope, unitID, updates)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "unit.update", "unit", &unitID, updates)
		utils.OKResponse(c, "Unit updated successfully", unit)
	}
}

func handleDeleteUnit(repo *repository.PropertyRepository, resolver *authz.Resolver, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResUnit, authz.ActionDelete) {
			return
		}
		unitID, ok := uuidParam(c, "unit_id")
		if !ok {
			return
		}

		if err := repo.DeleteUnit(scope, unitID); err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "unit.delete", "unit", &unitID, nil)
		utils.OKResponse(c, "Unit deleted successfully", nil)
	}
}
