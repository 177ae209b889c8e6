package main

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/renta-rw/renta-backend/shared/authz"
	"github.com/renta-rw/renta-backend/shared/models"
	"github.com/renta-rw/renta-backend/shared/repository"
	"github.com/renta-rw/renta-backend/shared/utils"
)

type AgentApplicationRequest struct {
	FullName   string `json:"full_name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
	Motivation string `json:"motivation"`
}

type RejectApplicationRequest struct {
	Notes string `json:"notes"`
}

type CommissionRuleRequest struct {
	ActionType      string           `json:"action_type" binding:"required"`
	CommissionType  string           `json:"commission_type" binding:"required"`
	CommissionValue decimal.Decimal  `json:"commission_value" binding:"required"`
	MinAmount       *decimal.Decimal `json:"min_amount"`
	MaxAmount       *decimal.Decimal `json:"max_amount"`
	IsActive        *bool            `json:"is_active"`
}

// handleApplyAsAgent is public: prospective agents have no account yet.
func handleApplyAsAgent(repo *repository.AgentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AgentApplicationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		app := &models.AgentApplication{
			FullName:   req.FullName,
			Email:      req.Email,
			Phone:      req.Phone,
			Motivation: req.Motivation,
		}
		if err := repo.CreateApplication(app); err != nil {
			writeRepoError(c, err)
			return
		}
		utils.CreatedResponse(c, "Application submitted successfully", app)
	}
}

func handleListApplications(repo *repository.AgentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		apps, pagination, err := repo.ListApplications(
			c.Query("status"),
			intQuery(c, "page", 1),
			intQuery(c, "limit", 20),
		)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Applications retrieved successfully", listPayload("applications", apps, pagination))
	}
}

func handleApproveApplication(repo *repository.AgentRepository, resolver *authz.Resolver, audit *repository.AuditRepository, producer *NotificationProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		// Initial credential; delivered out of band and rotated on first
		// login.
		password, err := generatePassword()
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to generate credentials")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to generate credentials")
			return
		}

		app, agent, err := repo.Approve(id, user.ID, string(hash))
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "agent.approve", "agent_application", &id, map[string]interface{}{
			"agent_user_id": agent.ID,
		})
		producer.Publish(NotificationEvent{
			UserID:    agent.ID,
			Type:      "application_approved",
			Title:     "Agent application approved",
			Body:      "Welcome aboard. Your agent account is ready.",
			Channel:   "sms",
			Recipient: agent.Phone,
		})
		utils.OKResponse(c, "Application approved", gin.H{
			"application":      app,
			"agent":            agent,
			"initial_password": password,
		})
	}
}

func handleRejectApplication(repo *repository.AgentRepository, resolver *authz.Resolver, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		var req RejectApplicationRequest
		_ = c.ShouldBindJSON(&req)

		app, err := repo.RejectApplication(id, user.ID, req.Notes)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "agent.reject", "agent_application", &id, nil)
		utils.OKResponse(c, "Application rejected", app)
	}
}

func handleListCommissionRules(repo *repository.AgentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		rules, err := repo.ListRules()
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Commission rules retrieved successfully", rules)
	}
}

func handleCreateCommissionRule(repo *repository.AgentRepository, resolver *authz.Resolver, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, ok := requireScope(c, resolver)
		if !ok {
			return
		}

		var req CommissionRuleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		rule := &models.CommissionRule{
			ActionType:      req.ActionType,
			CommissionType:  models.CommissionType(req.CommissionType),
			CommissionValue: req.CommissionValue,
			MinAmount:       req.MinAmount,
			MaxAmount:       req.MaxAmount,
			IsActive:        true,
		}
		if req.IsActive != nil {
			rule.IsActive = *req.IsActive
		}
		if err := repo.CreateRule(rule); err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "commission_rule.create", "commission_rule", &rule.ID, map[string]interface{}{
			"action_type": rule.ActionType,
		})
		utils.CreatedResponse(c, "Commission rule created", rule)
	}
}

func handleUpdateCommissionRule(repo *repository.AgentRepository, resolver *authz.Resolver, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		var req struct {
			CommissionType  *string          `json:"commission_type"`
			CommissionValue *decimal.Decimal `json:"commission_value"`
			MinAmount       *decimal.Decimal `json:"min_amount"`
			MaxAmount       *decimal.Decimal `json:"max_amount"`
			IsActive        *bool            `json:"is_active"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		updates := map[string]interface{}{}
		if req.CommissionType != nil {
			updates["commission_type"] = *req.CommissionType
		}
		if req.CommissionValue != nil {
			updates["commission_value"] = *req.CommissionValue
		}
		if req.MinAmount != nil {
			updates["min_amount"] = *req.MinAmount
		}
		if req.MaxAmount != nil {
			updates["max_amount"] = *req.MaxAmount
		}
		if req.IsActive != nil {
			updates["is_active"] = *req.IsActive
		}
		if len(updates) == 0 {
			utils.BadRequestResponse(c, "No fields to update")
			return
		}

		rule, err := repo.UpdateRule(id, updates)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "commission_rule.update", "commission_rule", &id, updates)
		utils.OKResponse(c, "Commission rule updated", rule)
	}
}

func handleListAgentTransactions(repo *repository.AgentRepository, resolver *authz.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResAgentTransaction, authz.ActionRead) {
			return
		}
		agentID, ok := uuidQuery(c, "agent_id")
		if !ok {
			return
		}

		txns, pagination, err := repo.ListTransactions(scope, agentID, intQuery(c, "page", 1), intQuery(c, "limit", 20))
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Transactions retrieved successfully", listPayload("transactions", txns, pagination))
	}
}

func handleListCommissions(repo *repository.AgentRepository, resolver *authz.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResCommission, authz.ActionRead) {
			return
		}
		agentID, ok := uuidQuery(c, "agent_id")
		if !ok {
			return
		}

		commissions, pagination, err := repo.ListCommissions(scope, agentID, c.Query("status"), intQuery(c, "page", 1), intQuery(c, "limit", 20))
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Commissions retrieved successfully", listPayload("commissions", commissions, pagination))
	}
}

func handlePayCommission(repo *repository.AgentRepository, resolver *authz.Resolver, audit *repository.AuditRepository, producer *NotificationProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		com, err := repo.PayCommission(id, user.ID)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "commission.pay", "agent_commission", &id, map[string]interface{}{
			"amount": com.Amount.String(),
		})
		producer.Publish(NotificationEvent{
			UserID: com.AgentID,
			Type:   "commission_paid",
			Title:  "Commission paid",
			Body:   "A commission of " + com.Amount.StringFixed(2) + " RWF has been paid out.",
		})
		utils.OKResponse(c, "Commission paid", com)
	}
}

func handleCancelCommission(repo *repository.AgentRepository, resolver *authz.Resolver, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		com, err := repo.CancelCommission(id)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "commission.cancel", "agent_commission", &id, nil)
		utils.OKResponse(c, "Commission cancelled", com)
	}
}

func generatePassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
