package models

import (
	"time"

	"github.com/google/uuid"
)

// TenantStatus tracks rent standing; exited tenants retain history.
type TenantStatus string

const (
	TenantActive TenantStatus = "active"
	TenantLate   TenantStatus = "late"
	TenantExited TenantStatus = "exited"
)

// Tenant is a renter record owned by a landlord user. It occupies at most
// one unit; vacated tenants keep their row with unit_id cleared. A tenant
// may optionally be linked one-to-one to a login-capable user account.
type Tenant struct {
	ID                 uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID             uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;index"`
	UnitID             *uuid.UUID   `json:"unit_id,omitempty" gorm:"type:uuid;index;constraint:OnDelete:SET NULL"`
	UserAccountID      *uuid.UUID   `json:"user_account_id,omitempty" gorm:"type:uuid;uniqueIndex"`
	PerformedByAgentID *uuid.UUID   `json:"performed_by_agent_id,omitempty" gorm:"type:uuid;index"`
	FullName           string       `json:"full_name" gorm:"not null"`
	Phone              string       `json:"phone"`
	Email              string       `json:"email"`
	Status             TenantStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
	MoveInDate         *time.Time   `json:"move_in_date,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}
