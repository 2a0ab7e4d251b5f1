package mq

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbnb/apiserver/config"
	"github.com/hbnb/apiserver/types"
)

// memoryBackend delivers published messages to in-process subscribers.
type memoryBackend struct {
	mu       sync.Mutex
	handlers map[string][]Handler
	sent     []Message
	closed   bool
	ready    chan struct{}
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{handlers: map[string][]Handler{}, ready: make(chan struct{})}
}

func (m *memoryBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	m.mu.Lock()
	msg := Message{ID: newMessageID(), Data: data, Attributes: attrs}
	m.sent = append(m.sent, msg)
	handlers := append([]Handler(nil), m.handlers[channel]...)
	m.mu.Unlock()

	for _, h := range handlers {
		if err := h(ctx, msg); err != nil {
			return msg.ID, err
		}
	}
	return msg.ID, nil
}

func (m *memoryBackend) Subscribe(ctx context.Context, channel string, handler Handler) error {
	m.mu.Lock()
	m.handlers[channel] = append(m.handlers[channel], handler)
	m.mu.Unlock()
	close(m.ready)
	<-ctx.Done()
	return ctx.Err()
}

func (m *memoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func TestEventBus_PublishEncodesEvent(t *testing.T) {
	backend := newMemoryBackend()
	bus := NewEventBus(New(backend), "hbnb.entities")

	event := types.EntityEvent{
		Kind:       "place",
		Action:     types.ActionCreated,
		EntityID:   "place-1",
		ActorID:    "user-1",
		OccurredAt: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
	}
	require.NoError(t, bus.PublishEntityEvent(context.Background(), event))

	require.Len(t, backend.sent, 1)
	msg := backend.sent[0]
	assert.Equal(t, "place", msg.Attributes[AttrKind])
	assert.Equal(t, "created", msg.Attributes[AttrAction])
	assert.Equal(t, "place-1", msg.Attributes[AttrEntityID])
	assert.Equal(t, "application/json", msg.Attributes[AttrContentType])
	assert.JSONEq(t, `{
		"kind": "place",
		"action": "created",
		"entity_id": "place-1",
		"actor_id": "user-1",
		"occurred_at": "2026-03-04T05:06:07Z"
	}`, string(msg.Data))

	decoded, err := DecodeEntityEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, event, decoded)
}

func TestEventBus_Subscribe(t *testing.T) {
	backend := newMemoryBackend()
	bus := NewEventBus(New(backend), "hbnb.entities")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan types.EntityEvent, 1)
	done := make(chan error, 1)
	go func() {
		done <- bus.SubscribeEntityEvents(ctx, func(_ context.Context, e types.EntityEvent) error {
			received <- e
			return nil
		})
	}()
	<-backend.ready

	require.NoError(t, bus.PublishEntityEvent(context.Background(), types.EntityEvent{
		Kind:     "review",
		Action:   types.ActionDeleted,
		EntityID: "review-9",
	}))

	select {
	case e := <-received:
		assert.Equal(t, "review-9", e.EntityID)
		assert.Equal(t, types.ActionDeleted, e.Action)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	_, err := backend.Publish(context.Background(), "hbnb.entities", []byte("not json"), nil)
	assert.Error(t, err, "undecodable messages are rejected")

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	require.NoError(t, bus.Close())
	assert.True(t, backend.closed)
}

func TestConnect(t *testing.T) {
	m, err := Connect(context.Background(), config.EventsConfig{Backend: config.BackendNone})
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = Connect(context.Background(), config.EventsConfig{Backend: "kafka"})
	assert.Error(t, err)

	_, err = Connect(context.Background(), config.EventsConfig{Backend: config.BackendRabbitMQ})
	assert.Error(t, err, "a url is required")

	_, err = Connect(context.Background(), config.EventsConfig{Backend: config.BackendRedis})
	assert.Error(t, err, "an address is required")

	_, err = Connect(context.Background(), config.EventsConfig{Backend: config.BackendPubSub})
	assert.Error(t, err, "a project is required")
}

func TestEventBus_PublishError(t *testing.T) {
	bus := NewEventBus(New(failingBackend{}), "hbnb.entities")
	err := bus.PublishEntityEvent(context.Background(), types.EntityEvent{Kind: "user"})
	assert.ErrorContains(t, err, "broker down")
}

type failingBackend struct{}

func (failingBackend) Publish(context.Context, string, []byte, map[string]string) (string, error) {
	return "", errors.New("broker down")
}

func (failingBackend) Subscribe(context.Context, string, Handler) error {
	return errors.New("broker down")
}

func (failingBackend) Close() error { return nil }

func TestBlankChannelRejected(t *testing.T) {
	m := New(newMemoryBackend())

	_, err := m.Publish(context.Background(), "  ", []byte("x"), nil)
	assert.ErrorIs(t, err, errNoChannel)
	assert.ErrorIs(t, m.Subscribe(context.Background(), "", func(context.Context, Message) error { return nil }), errNoChannel)
}

func TestMessageIDsAreUnique(t *testing.T) {
	a, b := newMessageID(), newMessageID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
