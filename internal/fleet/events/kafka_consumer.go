package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes one event. A failing event is retried until it succeeds
// or the consumer stops, and later messages wait behind it. Wrap the error
// with backoff.Permanent to drop an event that can never succeed.
type Handler func(context.Context, Event) error

type Consumer struct {
	reader     KafkaReader
	logger     *zap.Logger
	handler    Handler
	newBackOff func() backoff.BackOff
	done       chan struct{}
}

// NewConsumer reads the topic as part of groupID.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
			Dialer:  kafka.DefaultDialer,
		}),
		logger:     logger.Named("kafka_consumer"),
		newBackOff: defaultBackOff,
		done:       make(chan struct{}),
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return b
}

func (c *Consumer) RegisterHandler(fn Handler) {
	c.handler = fn
}

// Start consumes in the background until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		c.run(ctx)
	}()
}

// Done is closed once the consume loop has returned.
func (c *Consumer) Done() <-chan struct{} {
	return c.done
}

func (c *Consumer) backOff(ctx context.Context) backoff.BackOff {
	newBackOff := c.newBackOff
	if newBackOff == nil {
		newBackOff = defaultBackOff
	}
	return backoff.WithContext(newBackOff(), ctx)
}

func (c *Consumer) run(ctx context.Context) {
	fetchBackOff := c.backOff(ctx)
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			wait := fetchBackOff.NextBackOff()
			if wait == backoff.Stop {
				return
			}
			c.logger.Error("Failed to fetch message", zap.Error(err), zap.Duration("retry_in", wait))
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			continue
		}
		fetchBackOff.Reset()

		var event Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Error("Failed to parse event",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			c.commit(ctx, msg, "")
			continue
		}

		if err := c.handle(ctx, event); err != nil {
			// Kafka commits are cumulative, so the offset stays uncommitted
			// and is redelivered to the next group member.
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("Dropping event",
				zap.Error(err),
				zap.String("event_type", string(event.Type)),
				zap.String("entity_id", event.EntityID.String()),
				zap.Int64("offset", msg.Offset),
			)
		}

		c.commit(ctx, msg, event.Type)
	}
}

// handle runs the handler until it succeeds, fails permanently or ctx ends.
func (c *Consumer) handle(ctx context.Context, event Event) error {
	if c.handler == nil {
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Error("Failed to handle event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.String("entity_id", event.EntityID.String()),
			zap.Duration("retry_in", wait),
		)
	}
	return backoff.RetryNotify(func() error {
		return c.handler(ctx, event)
	}, c.backOff(ctx), notify)
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message, eventType EventType) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message",
			zap.Error(err),
			zap.String("event_type", string(eventType)),
		)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", zap.Error(err))
	}
}
