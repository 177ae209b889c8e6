package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/renta-rw/renta-backend/shared/models"
)

func setupReminderDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ReminderLog{}))
	return db
}

func TestScheduleRetryBacksOffExponentially(t *testing.T) {
	db := setupReminderDB(t)

	reminder := &models.ReminderLog{
		Channel:   "sms",
		Recipient: "+250788000000",
		Body:      "Rent due",
		Status:    models.ReminderPending,
	}
	require.NoError(t, db.Create(reminder).Error)

	expected := []time.Duration{
		time.Minute,
		2 * time.Minute,
		4 * time.Minute,
		8 * time.Minute,
	}
	for i, delay := range expected {
		before := time.Now()
		scheduleRetry(db, reminder, errors.New("gateway down"))

		assert.Equal(t, i+1, reminder.RetryCount)
		assert.Equal(t, models.ReminderFailed, reminder.Status)
		require.NotNil(t, reminder.NextRetryAt)
		assert.WithinDuration(t, before.Add(delay), *reminder.NextRetryAt, 2*time.Second)
	}
}

func TestScheduleRetryStopsAtCeiling(t *testing.T) {
	db := setupReminderDB(t)

	reminder := &models.ReminderLog{
		Channel:    "sms",
		Recipient:  "+250788000000",
		Body:       "Rent due",
		Status:     models.ReminderFailed,
		RetryCount: maxRetries - 1,
	}
	require.NoError(t, db.Create(reminder).Error)

	scheduleRetry(db, reminder, errors.New("gateway down"))

	assert.Equal(t, maxRetries, reminder.RetryCount)
	assert.Nil(t, reminder.NextRetryAt)
	assert.Contains(t, reminder.ErrorMessage, "max retries reached")

	// The row no longer matches the retry batch query.
	var due []models.ReminderLog
	err := db.Where("status = ? AND retry_count < ? AND next_retry_at <= ?",
		models.ReminderFailed, maxRetries, time.Now().Add(time.Hour)).
		Find(&due).Error
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestMarkSentClearsFailureState(t *testing.T) {
	db := setupReminderDB(t)

	next := time.Now().Add(time.Minute)
	reminder := &models.ReminderLog{
		Channel:      "sms",
		Recipient:    "+250788000000",
		Body:         "Rent due",
		Status:       models.ReminderFailed,
		RetryCount:   2,
		ErrorMessage: "gateway down",
		NextRetryAt:  &next,
	}
	require.NoError(t, db.Create(reminder).Error)

	markSent(db, reminder)

	var stored models.ReminderLog
	require.NoError(t, db.First(&stored, "id = ?", reminder.ID).Error)
	assert.Equal(t, models.ReminderSent, stored.Status)
	assert.NotNil(t, stored.SentAt)
	assert.Empty(t, stored.ErrorMessage)
	assert.Nil(t, stored.NextRetryAt)
}
