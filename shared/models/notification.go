package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a fire-and-forget per-user message. IsRead and ReadAt are
// mutated by the recipient only.
type Notification struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Type       string     `json:"type" gorm:"not null"`
	Title      string     `json:"title" gorm:"not null"`
	Body       string     `json:"body" gorm:"type:text"`
	EntityType *string    `json:"entity_type,omitempty"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty" gorm:"type:uuid"`
	IsRead     bool       `json:"is_read" gorm:"default:false;index"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

type ReminderStatus string

const (
	ReminderPending ReminderStatus = "pending"
	ReminderSent    ReminderStatus = "sent"
	ReminderFailed  ReminderStatus = "failed"
)

// ReminderLog records each outbound SMS/email dispatch attempt. Failed rows
// are retried with exponential backoff until max retries.
type ReminderLog struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	Channel      string         `json:"channel" gorm:"type:varchar(10);not null"`
	Recipient    string         `json:"recipient" gorm:"not null"`
	Body         string         `json:"body" gorm:"type:text"`
	Status       ReminderStatus `json:"status" gorm:"type:varchar(10);default:'pending';index"`
	ErrorMessage string         `json:"error_message,omitempty"`
	RetryCount   int            `json:"retry_count" gorm:"default:0"`
	NextRetryAt  *time.Time     `json:"next_retry_at,omitempty"`
	SentAt       *time.Time     `json:"sent_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (ReminderLog) TableName() string {
	return "reminder_logs"
}
