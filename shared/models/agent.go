package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// AgentApplication is a prospective agent awaiting review. Approval
// provisions a user account with role=agent.
type AgentApplication struct {
	ID         uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FullName   string            `json:"full_name" gorm:"not null"`
	Email      string            `json:"email" gorm:"uniqueIndex;not null"`
	Phone      string            `json:"phone"`
	Motivation string            `json:"motivation" gorm:"type:text"`
	Status     ApplicationStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	ReviewedBy *uuid.UUID        `json:"reviewed_by,omitempty" gorm:"type:uuid"`
	ReviewedAt *time.Time        `json:"reviewed_at,omitempty"`
	Notes      string            `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (AgentApplication) TableName() string {
	return "agent_applications"
}

type CommissionType string

const (
	CommissionPercentage CommissionType = "percentage"
	CommissionFixed      CommissionType = "fixed"
)

// CommissionRule maps an agent action type to a commission formula. At most
// one rule exists per action type; inactive rules are ignored by the engine.
type CommissionRule struct {
	ID              uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ActionType      string           `json:"action_type" gorm:"uniqueIndex;not null"`
	CommissionType  CommissionType   `json:"commission_type" gorm:"type:varchar(10);not null"`
	CommissionValue decimal.Decimal  `json:"commission_value" gorm:"type:decimal(18,2);not null"`
	MinAmount       *decimal.Decimal `json:"min_amount,omitempty" gorm:"type:decimal(18,2)"`
	MaxAmount       *decimal.Decimal `json:"max_amount,omitempty" gorm:"type:decimal(18,2)"`
	IsActive        bool             `json:"is_active" gorm:"default:true;index"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (CommissionRule) TableName() string {
	return "commission_rules"
}

// AgentTransaction is one record per agent-assisted action.
type AgentTransaction struct {
	ID                uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AgentID           uuid.UUID        `json:"agent_id" gorm:"type:uuid;not null;index"`
	ActionType        string           `json:"action_type" gorm:"not null;index"`
	OwnerID           *uuid.UUID       `json:"owner_id,omitempty" gorm:"type:uuid"`
	TenantID          *uuid.UUID       `json:"tenant_id,omitempty" gorm:"type:uuid"`
	TransactionAmount *decimal.Decimal `json:"transaction_amount,omitempty" gorm:"type:decimal(18,2)"`
	Metadata          string           `json:"metadata" gorm:"type:jsonb;default:'{}'"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func (AgentTransaction) TableName() string {
	return "agent_transactions"
}

type CommissionStatus string

const (
	CommissionPending   CommissionStatus = "pending"
	CommissionPaid      CommissionStatus = "paid"
	CommissionCancelled CommissionStatus = "cancelled"
)

// AgentCommission is the commission owed for one agent transaction.
// CommissionRuleID is nullable: the schema permits a manually recorded
// commission with no matching rule.
type AgentCommission struct {
	ID                 uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AgentTransactionID uuid.UUID        `json:"agent_transaction_id" gorm:"type:uuid;not null;uniqueIndex"`
	AgentID            uuid.UUID        `json:"agent_id" gorm:"type:uuid;not null;index"`
	CommissionRuleID   *uuid.UUID       `json:"commission_rule_id,omitempty" gorm:"type:uuid"`
	Amount             decimal.Decimal  `json:"amount" gorm:"type:decimal(18,2);not null"`
	Status             CommissionStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaidAt             *time.Time       `json:"paid_at,omitempty"`
	PaidBy             *uuid.UUID       `json:"paid_by,omitempty" gorm:"type:uuid"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func (AgentCommission) TableName() string {
	return "agent_commissions"
}
