package models

import (
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketPending    TicketStatus = "pending"
	TicketInProgress TicketStatus = "in_progress"
	TicketCompleted  TicketStatus = "completed"
	TicketCancelled  TicketStatus = "cancelled"
)

// CanTransitionTo enforces pending -> in_progress -> completed, with
// cancellation allowed from any non-terminal state.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	switch s {
	case TicketPending:
		return next == TicketInProgress || next == TicketCancelled
	case TicketInProgress:
		return next == TicketCompleted || next == TicketCancelled
	}
	return false
}

// TicketPriority is informational only; it does not drive an SLA engine.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

func ValidTicketPriority(s string) bool {
	switch TicketPriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// MaintenanceTicket belongs to one unit, optionally raised by a tenant and
// optionally assigned to a maintenance staff user.
type MaintenanceTicket struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UnitID      uuid.UUID      `json:"unit_id" gorm:"type:uuid;not null;index"`
	TenantID    *uuid.UUID     `json:"tenant_id,omitempty" gorm:"type:uuid;index"`
	AssignedTo  *uuid.UUID     `json:"assigned_to,omitempty" gorm:"type:uuid;index"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description" gorm:"type:text"`
	Status      TicketStatus   `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Priority    TicketPriority `json:"priority" gorm:"type:varchar(10);default:'medium'"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (MaintenanceTicket) TableName() string {
	return "maintenance_tickets"
}
