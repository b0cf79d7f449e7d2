package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// ===== EVENT TYPES =====

const (
	EventDoubtCreated  = "doubt.created"
	EventDoubtAnswered = "doubt.answered"
	EventDoubtResolved = "doubt.resolved"
	EventDoubtDeleted  = "doubt.deleted"
)

// Event is the envelope for all domain events published to the bus
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an event envelope for this service
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    "doubt-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// ===== EVENT PAYLOADS =====

type DoubtCreatedEvent struct {
	DoubtID  string `json:"doubt_id"`
	Title    string `json:"title"`
	AuthorID string `json:"author_id"`
}

type DoubtAnsweredEvent struct {
	DoubtID      string `json:"doubt_id"`
	AnswerID     string `json:"answer_id"`
	InstructorID string `json:"instructor_id"`
	AuthorID     string `json:"author_id"` // doubt author, for notification routing
}

type DoubtResolvedEvent struct {
	DoubtID    string `json:"doubt_id"`
	ResolvedBy string `json:"resolved_by"`
	AuthorID   string `json:"author_id"`
}

type DoubtDeletedEvent struct {
	DoubtID   string `json:"doubt_id"`
	DeletedBy string `json:"deleted_by"`
}

// ===== PUBLISHER =====

// EventPublisher publishes domain events to the message bus
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}

// KafkaEventPublisher publishes events to Kafka via watermill
type KafkaEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewKafkaEventPublisher creates a Kafka-backed event publisher
func NewKafkaEventPublisher(brokers []string, logger *slog.Logger) (*KafkaEventPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true

	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:               brokers,
			Marshaler:             kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: saramaConfig,
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		logger:    logger,
	}, nil
}

// Publish sends an event to the given topic
func (p *KafkaEventPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("source", event.Source)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.logger.Info("Event published", "topic", topic, "event_type", event.Type, "event_id", event.ID)
	return nil
}

// Close shuts down the underlying publisher
func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// ===== MOCK PUBLISHER =====

// MockEventPublisher records events in memory for tests
type MockEventPublisher struct {
	logger *slog.Logger

	mu     sync.Mutex
	events []*Event
}

// NewMockEventPublisher creates an in-memory event publisher
func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	m.logger.Debug("Mock event recorded", "topic", topic, "event_type", event.Type)
	return nil
}

func (m *MockEventPublisher) Close() error {
	return nil
}

// GetPublishedEvents returns a snapshot of all recorded events
func (m *MockEventPublisher) GetPublishedEvents() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Event, len(m.events))
	copy(out, m.events)
	return out
}

// ClearEvents drops all recorded events
func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
