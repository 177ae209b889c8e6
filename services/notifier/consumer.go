package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/renta-rw/renta-backend/shared/models"
)

// NotificationEvent mirrors the payload published by the API service.
type NotificationEvent struct {
	UserID     uuid.UUID  `json:"user_id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	EntityType *string    `json:"entity_type,omitempty"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty"`
	Channel    string     `json:"channel,omitempty"`
	Recipient  string     `json:"recipient,omitempty"`
}

// Consumer reads notification events from Kafka, persists the in-app row
// and queues an outbound reminder when the event names a channel.
type Consumer struct {
	reader  *kafka.Reader
	db      *gorm.DB
	gateway *SMSGateway
}

func NewConsumer(broker, topic, groupID string, db *gorm.DB, gateway *SMSGateway) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
	return &Consumer{reader: reader, db: db, gateway: gateway}
}

// Run consumes until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	logrus.Info("Notification consumer started")
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logrus.WithError(err).Error("Failed to read notification message")
			continue
		}

		var event NotificationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logrus.WithError(err).Warn("Skipping malformed notification event")
			continue
		}
		c.handle(event)
	}
}

func (c *Consumer) handle(event NotificationEvent) {
	notification := &models.Notification{
		UserID:     event.UserID,
		Type:       event.Type,
		Title:      event.Title,
		Body:       event.Body,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
	}
	if err := c.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithField("user_id", event.UserID).Error("Failed to persist notification")
		return
	}

	if event.Channel == "" || event.Recipient == "" {
		return
	}

	reminder := &models.ReminderLog{
		UserID:    event.UserID,
		Channel:   event.Channel,
		Recipient: event.Recipient,
		Body:      event.Body,
		Status:    models.ReminderPending,
	}
	if err := c.db.Create(reminder).Error; err != nil {
		logrus.WithError(err).Error("Failed to queue reminder")
		return
	}

	// First attempt inline; the retry loop picks up failures.
	if err := c.gateway.Send(reminder.Channel, reminder.Recipient, reminder.Body); err != nil {
		scheduleRetry(c.db, reminder, err)
		return
	}
	markSent(c.db, reminder)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
