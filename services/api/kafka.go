package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// NotificationEvent is the message published for every user-facing event.
// The notifier service consumes these and fans out to in-app rows and
// SMS/email reminders.
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

// NotificationProducer publishes notification events through a worker pool
// so request handlers never block on the broker.
type NotificationProducer struct {
	writer       *kafka.Writer
	topic        string
	eventChan    chan NotificationEvent
	workerCount  int
	shutdownChan chan struct{}
	wg           sync.WaitGroup
}

func NewNotificationProducer(broker, topic string) *NotificationProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	np := &NotificationProducer{
		writer:       writer,
		topic:        topic,
		eventChan:    make(chan NotificationEvent, 1000),
		workerCount:  4,
		shutdownChan: make(chan struct{}),
	}
	np.startWorkers()
	return np
}

func (np *NotificationProducer) startWorkers() {
	for i := 0; i < np.workerCount; i++ {
		np.wg.Add(1)
		go np.eventWorker(i)
	}
	logrus.Infof("Started %d notification workers", np.workerCount)
}

func (np *NotificationProducer) eventWorker(id int) {
	defer np.wg.Done()

	for {
		select {
		case event := <-np.eventChan:
			if err := np.sendSync(event); err != nil {
				logrus.WithError(err).Errorf("Notification worker %d failed to publish event", id)
			}
		case <-np.shutdownChan:
			return
		}
	}
}

// Publish queues an event without blocking. A full queue drops the event;
// notifications are best-effort and never fail the business operation.
func (np *NotificationProducer) Publish(event NotificationEvent) {
	select {
	case np.eventChan <- event:
	default:
		logrus.Warn("Notification queue full, event dropped")
	}
}

func (np *NotificationProducer) sendSync(event NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	msg := kafka.Message{
		Topic: np.topic,
		Key:   []byte(event.UserID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := np.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write notification event: %w", err)
	}
	return nil
}

// Close drains the worker pool and closes the writer.
func (np *NotificationProducer) Close() error {
	close(np.shutdownChan)
	np.wg.Wait()
	close(np.eventChan)

	if err := np.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}
