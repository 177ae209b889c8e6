package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is append-only: rows are never mutated after creation, so the
// model carries no UpdatedAt column.
type AuditLog struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ActorID    uuid.UUID  `json:"actor_id" gorm:"type:uuid;not null;index"`
	Action     string     `json:"action" gorm:"not null;index"`
	EntityType string     `json:"entity_type" gorm:"not null"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty" gorm:"type:uuid"`
	Details    string     `json:"details" gorm:"type:jsonb;default:'{}'"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
