package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod values are rendered verbatim by the frontend.
type PaymentMethod string

const (
	PayCash PaymentMethod = "cash"
	PayMomo PaymentMethod = "momo"
	PayBank PaymentMethod = "bank"
)

func ValidPaymentMethod(s string) bool {
	switch PaymentMethod(s) {
	case PayCash, PayMomo, PayBank:
		return true
	}
	return false
}

// Payment records money received against a rent period. PeriodMonth and
// PeriodYear name the rent liability the payment discharges, which is
// distinct from PaymentDate, the date money changed hands.
type Payment struct {
	ID                 uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID           uuid.UUID       `json:"tenant_id" gorm:"type:uuid;not null;index"`
	UnitID             uuid.UUID       `json:"unit_id" gorm:"type:uuid;not null;index"`
	Amount             decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
	PaymentMethod      PaymentMethod   `json:"payment_method" gorm:"type:varchar(10);not null"`
	PeriodMonth        int             `json:"period_month" gorm:"not null"`
	PeriodYear         int             `json:"period_year" gorm:"not null"`
	PaymentDate        time.Time       `json:"payment_date" gorm:"not null"`
	ReceivedBy         *uuid.UUID      `json:"received_by,omitempty" gorm:"type:uuid"`
	PerformedByAgentID *uuid.UUID      `json:"performed_by_agent_id,omitempty" gorm:"type:uuid;index"`
	Notes              string          `json:"notes,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
