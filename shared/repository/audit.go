package repository

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/renta-rw/renta-backend/shared/models"
)

// AuditRepository is the append-only audit trail. Recording failures are
// logged but never fail the business operation that triggered them.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record appends one audit row. details is serialized to JSON; a nil map
// writes an empty object.
func (r *AuditRepository) Record(actorID uuid.UUID, action, entityType string, entityID *uuid.UUID, details map[string]interface{}) {
	payload := "{}"
	if details != nil {
		if data, err := json.Marshal(details); err == nil {
			payload = string(data)
		}
	}

	entry := &models.AuditLog{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    payload,
	}
	if err := r.db.Create(entry).Error; err != nil {
		logrus.WithFields(logrus.Fields{
			"actor_id": actorID,
			"action":   action,
		}).WithError(err).Error("Failed to write audit log entry")
	}
}

type AuditFilter struct {
	ActorID    *uuid.UUID
	Action     string
	EntityType string
	Page       int
	Limit      int
}

// List is a super_admin surface; the route layer gates it.
func (r *AuditRepository) List(filter AuditFilter) ([]models.AuditLog, *Pagination, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)

	q := r.db.Model(&models.AuditLog{})
	if filter.ActorID != nil {
		q = q.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		q = q.Where("entity_type = ?", filter.EntityType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count audit entries: %w", err)
	}

	var entries []models.AuditLog
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, buildPagination(page, limit, total), nil
}
