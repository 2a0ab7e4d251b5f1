package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hbnb/apiserver/config"
)

var errNoChannel = errors.New("mq: channel name is required")

// Message is one delivery as seen by a Handler, whatever broker carried it.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a delivery. A non-nil error rejects it where the broker
// supports that.
type Handler func(ctx context.Context, msg Message) error

// Backend is implemented by each broker client.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// MQ fronts a Backend and rejects blank channel names before they reach it.
type MQ struct {
	backend Backend
}

func New(backend Backend) *MQ {
	return &MQ{backend: backend}
}

// Connect dials the broker named by cfg.Backend. Events are optional, so an
// empty or "none" backend yields a nil MQ and no error.
func Connect(ctx context.Context, cfg config.EventsConfig) (*MQ, error) {
	dial, ok := dialers[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("unsupported events backend %q", cfg.Backend)
	}
	if dial == nil {
		return nil, nil
	}
	backend, err := dial(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Backend, err)
	}
	return New(backend), nil
}

type dialer func(context.Context, config.EventsConfig) (Backend, error)

var dialers = map[string]dialer{
	"":                 nil,
	config.BackendNone: nil,
	config.BackendRabbitMQ: func(_ context.Context, cfg config.EventsConfig) (Backend, error) {
		return NewRabbitMQClient(cfg.RabbitMQ)
	},
	config.BackendPubSub: func(ctx context.Context, cfg config.EventsConfig) (Backend, error) {
		return NewPubSubClient(ctx, cfg.PubSub)
	},
	config.BackendRedis: func(ctx context.Context, cfg config.EventsConfig) (Backend, error) {
		return NewRedisClient(ctx, cfg.Redis)
	},
}

func (m *MQ) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errNoChannel
	}
	return m.backend.Publish(ctx, channel, data, attrs)
}

// Subscribe blocks, feeding deliveries on channel to handler until ctx is
// done or the backend fails.
func (m *MQ) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errNoChannel
	}
	return m.backend.Subscribe(ctx, channel, handler)
}

func (m *MQ) Close() error {
	return m.backend.Close()
}

// newMessageID returns a time-ordered id for brokers that do not assign one.
func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
