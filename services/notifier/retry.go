package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/renta-rw/renta-backend/shared/models"
)

const (
	maxRetries    = 5
	batchSize     = 100
	checkInterval = 30 * time.Second
	baseDelay     = time.Minute
)

// RetryLoop re-dispatches failed reminders with exponential backoff:
// 1m, 2m, 4m, 8m, 16m, then the row is left failed for good.
type RetryLoop struct {
	db      *gorm.DB
	gateway *SMSGateway
}

func NewRetryLoop(db *gorm.DB, gateway *SMSGateway) *RetryLoop {
	return &RetryLoop{db: db, gateway: gateway}
}

func (rl *RetryLoop) Run(ctx context.Context) {
	logrus.Info("Reminder retry loop started")
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.processBatch()
		}
	}
}

func (rl *RetryLoop) processBatch() {
	var reminders []models.ReminderLog
	err := rl.db.Where("status = ? AND retry_count < ? AND next_retry_at <= ?",
		models.ReminderFailed, maxRetries, time.Now()).
		Order("next_retry_at ASC").
		Limit(batchSize).
		Find(&reminders).Error
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch reminders for retry")
		return
	}
	if len(reminders) == 0 {
		return
	}

	logrus.Infof("Retrying %d failed reminders", len(reminders))
	for i := range reminders {
		reminder := &reminders[i]
		if err := rl.gateway.Send(reminder.Channel, reminder.Recipient, reminder.Body); err != nil {
			scheduleRetry(rl.db, reminder, err)
			continue
		}
		markSent(rl.db, reminder)
	}
}

// scheduleRetry bumps the retry counter and computes the next attempt time.
// Rows at the retry ceiling keep status failed with no next_retry_at.
func scheduleRetry(db *gorm.DB, reminder *models.ReminderLog, cause error) {
	reminder.RetryCount++
	reminder.Status = models.ReminderFailed
	reminder.ErrorMessage = cause.Error()

	if reminder.RetryCount >= maxRetries {
		reminder.NextRetryAt = nil
		reminder.ErrorMessage = fmt.Sprintf("max retries reached: %s", cause.Error())
	} else {
		next := time.Now().Add(baseDelay * time.Duration(1<<(reminder.RetryCount-1)))
		reminder.NextRetryAt = &next
	}

	if err := db.Save(reminder).Error; err != nil {
		logrus.WithError(err).Error("Failed to update reminder retry state")
	}
}

func markSent(db *gorm.DB, reminder *models.ReminderLog) {
	now := time.Now()
	reminder.Status = models.ReminderSent
	reminder.SentAt = &now
	reminder.ErrorMessage = ""
	reminder.NextRetryAt = nil

	if err := db.Save(reminder).Error; err != nil {
		logrus.WithError(err).Error("Failed to mark reminder sent")
	}
}
