package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renta-rw/renta-backend/shared/models"
)

// NotificationRepository serves a user's own notification feed. There is no
// cross-user read path; the recipient id always comes from the token.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) List(userID uuid.UUID, unreadOnly bool, page, limit int) ([]models.Notification, *Pagination, error) {
	page, limit = normalizePage(page, limit)

	q := r.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notifications []models.Notification
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, buildPagination(page, limit, total), nil
}

func (r *NotificationRepository) UnreadCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead flags one notification read. Another user's notification id
// behaves exactly like a missing one.
func (r *NotificationRepository) MarkRead(userID, id uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&notification).Error
	if err != nil {
		return nil, translate(err)
	}
	if notification.IsRead {
		return &notification, nil
	}

	now := time.Now()
	err = r.db.Model(&notification).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": now,
	}).Error
	if err != nil {
		return nil, translate(err)
	}
	notification.IsRead = true
	notification.ReadAt = &now
	return &notification, nil
}

func (r *NotificationRepository) MarkAllRead(userID uuid.UUID) (int64, error) {
	now := time.Now()
	res := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Create inserts a notification row directly. The API path normally goes
// through Kafka and the notifier service; this is the fallback used by
// tests and by the notifier consumer itself.
func (r *NotificationRepository) Create(notification *models.Notification) error {
	if notification.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	return translate(r.db.Create(notification).Error)
}
