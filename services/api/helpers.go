package main

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/renta-rw/renta-backend/shared/authz"
	"github.com/renta-rw/renta-backend/shared/commission"
	"github.com/renta-rw/renta-backend/shared/middleware"
	"github.com/renta-rw/renta-backend/shared/models"
	"github.com/renta-rw/renta-backend/shared/repository"
	"github.com/renta-rw/renta-backend/shared/utils"
)

// requireScope loads identity and resolved access scope for the request.
// Writes the error response itself and returns ok=false on failure.
func requireScope(c *gin.Context, resolver *authz.Resolver) (*models.UserInfo, *authz.AccessScope, bool) {
	user, ok := middleware.GetUserInfo(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return nil, nil, false
	}
	scope, err := resolver.Resolve(user)
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to resolve access scope")
		return nil, nil, false
	}
	return user, scope, true
}

// requirePolicy enforces the role-level policy table before any database
// work happens.
func requirePolicy(c *gin.Context, user *models.UserInfo, resource authz.Resource, action authz.Action) bool {
	if authz.Allow(user.Role, resource, action) {
		return true
	}
	utils.ForbiddenResponse(c, "Operation not permitted for this role")
	return false
}

// writeRepoError maps repository sentinel errors onto the response
// envelope. Error messages travel verbatim.
func writeRepoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.NotFoundResponse(c, "Resource not found")
	case errors.Is(err, repository.ErrForbidden):
		utils.ForbiddenResponse(c, "You do not have permission for this operation")
	case errors.Is(err, repository.ErrConflict):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, repository.ErrValidation):
		utils.BadRequestResponse(c, err.Error())
	default:
		utils.InternalServerErrorResponse(c, "Internal server error")
	}
}

// uuidParam parses a path parameter as a UUID.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name+" parameter")
		return uuid.Nil, false
	}
	return id, true
}

// uuidQuery parses an optional UUID query parameter.
func uuidQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name+" parameter")
		return nil, false
	}
	return &id, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// Agent action types credited through the commission engine.
const (
	ActionPropertyRegistration = "property_registration"
	ActionTenantPlacement      = "tenant_placement"
	ActionPaymentCollection    = "payment_collection"
)

// creditAgentAction records an agent-assisted action and its commission.
// Best effort: a failure here never rolls back the business operation.
func creditAgentAction(engine *commission.Engine, agentID uuid.UUID, actionType string, ownerID, tenantID *uuid.UUID, amount *decimal.Decimal) {
	txn := &models.AgentTransaction{
		AgentID:           agentID,
		ActionType:        actionType,
		OwnerID:           ownerID,
		TenantID:          tenantID,
		TransactionAmount: amount,
		Metadata:          "{}",
	}
	if _, err := engine.Record(txn); err != nil {
		logrus.WithError(err).WithField("agent_id", agentID).Error("Failed to record agent transaction")
	}
}

// listPayload wraps items and pagination for list endpoints.
func listPayload(key string, items interface{}, pagination *repository.Pagination) gin.H {
	return gin.H{
		key:          items,
		"pagination": pagination,
	}
}
