package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/renta-rw/renta-backend/shared/authz"
	"github.com/renta-rw/renta-backend/shared/commission"
	"github.com/renta-rw/renta-backend/shared/models"
	"github.com/renta-rw/renta-backend/shared/repository"
	"github.com/renta-rw/renta-backend/shared/utils"
)

type CreatePaymentRequest struct {
	TenantID      uuid.UUID       `json:"tenant_id" binding:"required"`
	UnitID        uuid.UUID       `json:"unit_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
	PeriodMonth   int             `json:"period_month" binding:"required"`
	PeriodYear    int             `json:"period_year" binding:"required"`
	PaymentDate   *time.Time      `json:"payment_date"`
	Notes         string          `json:"notes"`
}

func handleListPayments(repo *repository.PaymentRepository, resolver *authz.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResPayment, authz.ActionRead) {
			return
		}
		propertyID, ok := uuidQuery(c, "property_id")
		if !ok {
			return
		}
		tenantID, ok := uuidQuery(c, "tenant_id")
		if !ok {
			return
		}

		filter := repository.PaymentFilter{
			PropertyID:  propertyID,
			TenantID:    tenantID,
			PeriodMonth: intQuery(c, "period_month", 0),
			PeriodYear:  intQuery(c, "period_year", 0),
			Method:      c.Query("method"),
			Page:        intQuery(c, "page", 1),
			Limit:       intQuery(c, "limit", 20),
		}
		payments, pagination, err := repo.List(scope, filter)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Payments retrieved successfully", listPayload("payments", payments, pagination))
	}
}

func handleGetPayment(repo *repository.PaymentRepository, resolver *authz.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResPayment, authz.ActionRead) {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		detail, err := repo.Detail(scope, id)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Payment retrieved successfully", detail)
	}
}

func handleCreatePayment(db *gorm.DB, repo *repository.PaymentRepository, resolver *authz.Resolver, audit *repository.AuditRepository, engine *commission.Engine, producer *NotificationProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResPayment, authz.ActionCreate) {
			return
		}

		var req CreatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		paymentDate := time.Now()
		if req.PaymentDate != nil {
			paymentDate = *req.PaymentDate
		}

		payment := &models.Payment{
			TenantID:      req.TenantID,
			UnitID:        req.UnitID,
			Amount:        req.Amount,
			PaymentMethod: models.PaymentMethod(req.PaymentMethod),
			PeriodMonth:   req.PeriodMonth,
			PeriodYear:    req.PeriodYear,
			PaymentDate:   paymentDate,
			ReceivedBy:    &user.ID,
			Notes:         req.Notes,
		}
		if user.Role == models.RoleAgent {
			payment.PerformedByAgentID = &user.ID
		}

		if err := repo.Create(scope, payment); err != nil {
			writeRepoError(c, err)
			return
		}
		if payment.PerformedByAgentID != nil {
			amount := payment.Amount
			creditAgentAction(engine, *payment.PerformedByAgentID, ActionPaymentCollection, nil, &payment.TenantID, &amount)
		}
		audit.Record(user.ID, "payment.create", "payment", &payment.ID, map[string]interface{}{
			"amount": payment.Amount.String(),
			"period": map[string]int{"month": payment.PeriodMonth, "year": payment.PeriodYear},
		})
		// Notify the tenant only when their record is linked to a login
		// account.
		var tenant models.Tenant
		if err := db.Where("id = ?", payment.TenantID).First(&tenant).Error; err == nil && tenant.UserAccountID != nil {
			producer.Publish(NotificationEvent{
				UserID:    *tenant.UserAccountID,
				Type:      "payment_recorded",
				Title:     "Payment recorded",
				Body:      "A rent payment of " + payment.Amount.StringFixed(2) + " RWF was recorded on your account.",
				Channel:   "sms",
				Recipient: tenant.Phone,
			})
		}
		utils.CreatedResponse(c, "Payment recorded successfully", payment)
	}
}
