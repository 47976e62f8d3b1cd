// Package events publishes fleet lifecycle events to Kafka and consumes them
// for the audit trail.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

type EventType string

const (
	ClientCreated  EventType = "client_created"
	ClientUpdated  EventType = "client_updated"
	ClientDeleted  EventType = "client_deleted"
	ClientRestored EventType = "client_restored"

	DriverCreated  EventType = "driver_created"
	DriverUpdated  EventType = "driver_updated"
	DriverDeleted  EventType = "driver_deleted"
	DriverRestored EventType = "driver_restored"
	DriverMigrated EventType = "driver_migrated"

	VehicleCreated  EventType = "vehicle_created"
	VehicleUpdated  EventType = "vehicle_updated"
	VehicleDeleted  EventType = "vehicle_deleted"
	VehicleRestored EventType = "vehicle_restored"

	RentalCreated   EventType = "rental_created"
	RentalUpdated   EventType = "rental_updated"
	RentalReturned  EventType = "rental_returned"
	RentalCancelled EventType = "rental_cancelled"
	RentalDeleted   EventType = "rental_deleted"
)

// Entity returns the entity name prefix of the event type, e.g. "rental".
func (t EventType) Entity() string {
	entity, _, _ := strings.Cut(string(t), "_")
	return entity
}

// Event is the envelope written to the topic. Payload holds the JSON snapshot
// of the entity at the time the event was produced.
type Event struct {
	Type       EventType       `json:"type"`
	Entity     string          `json:"entity"`
	EntityID   uuid.UUID       `json:"entity_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer    KafkaWriter
	events    chan Event
	logger    *zap.Logger
	closeChan chan struct{}
	wg        sync.WaitGroup
}

// EnsureTopic creates the topic if it does not exist yet.
func EnsureTopic(ctx context.Context, brokers []string, topic string, partitions int, logger *zap.Logger) error {
	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err), zap.String("topic", topic))
	}
	return nil
}

// NewProducer starts a producer writing to topic. Events are queued in a
// bounded buffer and dropped when it is full, so Produce never blocks callers.
func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	p := &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.Hash{},
			Topic:    topic,
		},
		events:    make(chan Event, 1000),
		logger:    logger.Named("kafka_producer"),
		closeChan: make(chan struct{}),
	}

	p.wg.Add(1)
	go p.eventLoop()
	return p
}

// Produce snapshots payload and queues the event.
func (p *Producer) Produce(eventType EventType, entityID uuid.UUID, payload interface{}) {
	event := Event{
		Type:       eventType,
		Entity:     eventType.Entity(),
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
	if payload != nil {
		data, err := jsonMarshal(payload)
		if err != nil {
			p.logger.Error("Failed to serialize event",
				zap.Error(err),
				zap.String("event_type", string(eventType)),
				zap.String("entity_id", entityID.String()),
			)
			return
		}
		event.Payload = data
	}

	select {
	case p.events <- event:
	default:
		p.logger.Warn("Kafka producer queue full, dropping event",
			zap.String("event_type", string(eventType)),
			zap.String("entity_id", entityID.String()),
		)
	}
}

func (p *Producer) eventLoop() {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.events:
			p.sendEvent(context.Background(), event)
		case <-p.closeChan:
			p.drain()
			return
		}
	}
}

// drain flushes events queued before Close.
func (p *Producer) drain() {
	for {
		select {
		case event := <-p.events:
			p.sendEvent(context.Background(), event)
		default:
			return
		}
	}
}

func (p *Producer) sendEvent(ctx context.Context, event Event) {
	value, err := jsonMarshal(event)
	if err != nil {
		p.logger.Error("Failed to serialize event",
			zap.Error(err),
			zap.String("entity_id", event.EntityID.String()),
		)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EntityID.String()),
		Value: value,
	})
	if err != nil {
		p.logger.Error("Failed to produce event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.String("entity_id", event.EntityID.String()),
		)
		return
	}
}

func (p *Producer) Close() {
	close(p.closeChan)
	p.wg.Wait()
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.Error(err))
	}
}
