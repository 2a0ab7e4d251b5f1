package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hbnb/apiserver/types"
)

// Attribute keys set on every entity event message.
const (
	AttrKind        = "kind"
	AttrAction      = "action"
	AttrEntityID    = "entity_id"
	AttrContentType = "content_type"
)

// EventBus publishes and consumes types.EntityEvent as JSON on one channel.
type EventBus struct {
	mq      *MQ
	channel string
}

func NewEventBus(m *MQ, channel string) *EventBus {
	return &EventBus{mq: m, channel: channel}
}

// Channel returns the channel events are published on.
func (b *EventBus) Channel() string {
	return b.channel
}

// PublishEntityEvent encodes event and publishes it.
func (b *EventBus) PublishEntityEvent(ctx context.Context, event types.EntityEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode entity event: %w", err)
	}
	attrs := map[string]string{
		AttrKind:        event.Kind,
		AttrAction:      string(event.Action),
		AttrEntityID:    event.EntityID,
		AttrContentType: "application/json",
	}
	if _, err := b.mq.Publish(ctx, b.channel, data, attrs); err != nil {
		return fmt.Errorf("publish entity event: %w", err)
	}
	return nil
}

// SubscribeEntityEvents decodes messages on the channel and passes them to
// handle until ctx is done. Messages that do not decode are rejected.
func (b *EventBus) SubscribeEntityEvents(ctx context.Context, handle func(context.Context, types.EntityEvent) error) error {
	return b.mq.Subscribe(ctx, b.channel, func(ctx context.Context, msg Message) error {
		event, err := DecodeEntityEvent(msg)
		if err != nil {
			return err
		}
		return handle(ctx, event)
	})
}

// DecodeEntityEvent parses the JSON body of msg.
func DecodeEntityEvent(msg Message) (types.EntityEvent, error) {
	var event types.EntityEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return types.EntityEvent{}, fmt.Errorf("decode entity event %s: %w", msg.ID, err)
	}
	return event, nil
}

// Close closes the underlying broker connection.
func (b *EventBus) Close() error {
	return b.mq.Close()
}
