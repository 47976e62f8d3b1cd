package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// fakeReader serves queued messages and then blocks until the context ends.
type fakeReader struct {
	messages  chan kafka.Message
	committed chan kafka.Message
	closed    bool
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{
		messages:  make(chan kafka.Message, len(msgs)),
		committed: make(chan kafka.Message, len(msgs)),
	}
	for _, m := range msgs {
		r.messages <- m
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.messages:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed <- m
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func eventMessage(t *testing.T, event Event) kafka.Message {
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(event.EntityID.String()), Value: value}
}

func TestConsumer_HandlesAndCommits(t *testing.T) {
	id := uuid.New()
	reader := newFakeReader(eventMessage(t, Event{
		Type:     DriverMigrated,
		Entity:   "driver",
		EntityID: id,
		Payload:  json.RawMessage(`{"previous_client_id":null}`),
	}))
	consumer := &Consumer{reader: reader, logger: zaptest.NewLogger(t), done: make(chan struct{})}

	handled := make(chan Event, 1)
	consumer.RegisterHandler(func(_ context.Context, event Event) error {
		handled <- event
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	consumer.Start(ctx)

	select {
	case event := <-handled:
		assert.Equal(t, DriverMigrated, event.Type)
		assert.Equal(t, id, event.EntityID)
		assert.JSONEq(t, `{"previous_client_id":null}`, string(event.Payload))
	case <-time.After(time.Second):
		t.Fatal("event was not handled")
	}
	select {
	case <-reader.committed:
	case <-time.After(time.Second):
		t.Fatal("message was not committed")
	}

	cancel()
	select {
	case <-consumer.Done():
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}

func fastBackOff() backoff.BackOff {
	return backoff.NewConstantBackOff(5 * time.Millisecond)
}

func TestConsumer_FailedEventBlocksLaterOffsets(t *testing.T) {
	core, recorded := observer.New(zap.ErrorLevel)
	failing, next := uuid.New(), uuid.New()
	first := eventMessage(t, Event{Type: RentalCreated, EntityID: failing})
	first.Offset = 10
	second := eventMessage(t, Event{Type: RentalReturned, EntityID: next})
	second.Offset = 11
	reader := newFakeReader(first, second)
	consumer := &Consumer{reader: reader, logger: zap.New(core), newBackOff: fastBackOff, done: make(chan struct{})}

	var mu sync.Mutex
	var seen []uuid.UUID
	consumer.RegisterHandler(func(_ context.Context, event Event) error {
		mu.Lock()
		seen = append(seen, event.EntityID)
		mu.Unlock()
		return errors.New("store down")
	})

	ctx, cancel := context.WithCancel(context.Background())
	consumer.Start(ctx)
	assert.Eventually(t, func() bool {
		return recorded.FilterMessage("Failed to handle event").Len() >= 3
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-consumer.Done()

	assert.Empty(t, reader.committed, "no offset may be committed past a failing event")
	mu.Lock()
	defer mu.Unlock()
	assert.NotContains(t, seen, next, "later messages wait behind the failing one")
	assert.Zero(t, recorded.FilterMessage("Dropping event").Len())
}

func TestConsumer_RetriedEventCommitsInOrder(t *testing.T) {
	flaky, next := uuid.New(), uuid.New()
	first := eventMessage(t, Event{Type: RentalCreated, EntityID: flaky})
	first.Offset = 10
	second := eventMessage(t, Event{Type: RentalReturned, EntityID: next})
	second.Offset = 11
	reader := newFakeReader(first, second)
	consumer := &Consumer{reader: reader, logger: zaptest.NewLogger(t), newBackOff: fastBackOff, done: make(chan struct{})}

	var calls []uuid.UUID
	failures := 2
	consumer.RegisterHandler(func(_ context.Context, event Event) error {
		calls = append(calls, event.EntityID)
		if event.EntityID == flaky && failures > 0 {
			failures--
			return errors.New("store down")
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	consumer.Start(ctx)
	var offsets []int64
	for i := 0; i < 2; i++ {
		select {
		case m := <-reader.committed:
			offsets = append(offsets, m.Offset)
		case <-time.After(time.Second):
			t.Fatal("message was not committed")
		}
	}
	cancel()
	<-consumer.Done()

	assert.Equal(t, []int64{10, 11}, offsets)
	assert.Equal(t, []uuid.UUID{flaky, flaky, flaky, next}, calls)
}

func TestConsumer_PermanentFailureIsDropped(t *testing.T) {
	core, recorded := observer.New(zap.ErrorLevel)
	reader := newFakeReader(eventMessage(t, Event{Type: RentalCreated, EntityID: uuid.New()}))
	consumer := &Consumer{reader: reader, logger: zap.New(core), newBackOff: fastBackOff, done: make(chan struct{})}

	calls := 0
	consumer.RegisterHandler(func(context.Context, Event) error {
		calls++
		return backoff.Permanent(errors.New("payload rejected"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	consumer.Start(ctx)
	select {
	case <-reader.committed:
	case <-time.After(time.Second):
		t.Fatal("dropped event was not committed")
	}
	cancel()
	<-consumer.Done()

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, recorded.FilterMessage("Dropping event").Len())
}

// brokenReader fails every fetch.
type brokenReader struct {
	fetches atomic.Int32
}

func (r *brokenReader) FetchMessage(context.Context) (kafka.Message, error) {
	r.fetches.Add(1)
	return kafka.Message{}, io.EOF
}

func (r *brokenReader) CommitMessages(context.Context, ...kafka.Message) error { return nil }

func (r *brokenReader) Close() error { return nil }

func TestConsumer_FetchErrorsBackOff(t *testing.T) {
	reader := &brokenReader{}
	consumer := &Consumer{
		reader: reader,
		logger: zaptest.NewLogger(t),
		newBackOff: func() backoff.BackOff {
			return backoff.NewConstantBackOff(50 * time.Millisecond)
		},
		done: make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	consumer.Start(ctx)
	time.Sleep(120 * time.Millisecond)
	cancel()
	select {
	case <-consumer.Done():
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop while backing off")
	}

	fetches := reader.fetches.Load()
	assert.GreaterOrEqual(t, fetches, int32(1))
	assert.LessOrEqual(t, fetches, int32(6), "fetch errors must not spin")
}

func TestConsumer_MalformedMessageIsCommitted(t *testing.T) {
	core, recorded := observer.New(zap.ErrorLevel)
	reader := newFakeReader(kafka.Message{Value: []byte("not json")})
	consumer := &Consumer{reader: reader, logger: zap.New(core), done: make(chan struct{})}
	consumer.RegisterHandler(func(context.Context, Event) error {
		t.Error("handler must not be called for malformed messages")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	consumer.Start(ctx)
	select {
	case <-reader.committed:
	case <-time.After(time.Second):
		t.Fatal("malformed message was not committed")
	}
	cancel()
	<-consumer.Done()

	assert.Equal(t, 1, recorded.FilterMessage("Failed to parse event").Len())
}

func TestConsumer_Close(t *testing.T) {
	reader := newFakeReader()
	consumer := &Consumer{reader: reader, logger: zaptest.NewLogger(t)}

	consumer.Close()

	assert.True(t, reader.closed)
}
