package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/hbnb/apiserver/config"
)

// RabbitMQClient maps each channel name to a fanout exchange. Subscribers
// bind their own exclusive queue, so every subscriber sees every event.
type RabbitMQClient struct {
	conn *amqp.Connection
	// pub is shared by publishers; each Subscribe opens its own channel.
	pub *amqp.Channel
	cfg config.RabbitMQConfig
}

func NewRabbitMQClient(cfg config.RabbitMQConfig) (*RabbitMQClient, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}
	pub, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &RabbitMQClient{conn: conn, pub: pub, cfg: cfg}, nil
}

func (r *RabbitMQClient) Publish(ctx context.Context, exchange string, data []byte, attrs map[string]string) (string, error) {
	if err := r.declare(r.pub, exchange); err != nil {
		return "", err
	}
	msg := r.publishing(data, attrs)
	if err := r.pub.PublishWithContext(ctx, exchange, "", false, false, msg); err != nil {
		return "", err
	}
	return msg.MessageId, nil
}

func (r *RabbitMQClient) publishing(data []byte, attrs map[string]string) amqp.Publishing {
	msg := amqp.Publishing{
		MessageId:    newMessageID(),
		ContentType:  "application/octet-stream",
		DeliveryMode: amqp.Transient,
		Headers:      make(amqp.Table, len(attrs)),
		Body:         data,
	}
	if ct := attrs[AttrContentType]; ct != "" {
		msg.ContentType = ct
	}
	if r.cfg.QueueDurable {
		msg.DeliveryMode = amqp.Persistent
	}
	for k, v := range attrs {
		msg.Headers[k] = v
	}
	return msg
}

// Subscribe consumes from a server-named queue bound to exchange. Rejected
// deliveries are dropped rather than requeued onto the private queue.
func (r *RabbitMQClient) Subscribe(ctx context.Context, exchange string, handler Handler) error {
	ch, err := r.conn.Channel()
	if err != nil {
		return err
	}
	defer func() {
		_ = ch.Close()
	}()

	if r.cfg.PrefetchCount > 0 {
		if err := ch.Qos(r.cfg.PrefetchCount, 0, false); err != nil {
			return err
		}
	}
	if err := r.declare(ch, exchange); err != nil {
		return err
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return err
	}
	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return err
	}

	deliveries, err := ch.Consume(q.Name, "", false, true, false, false, nil)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.New("rabbitmq consumer closed by broker")
			}
			msg := Message{ID: d.MessageId, Data: d.Body, Attributes: tableToAttributes(d.Headers)}
			if err := handler(ctx, msg); err != nil {
				_ = d.Reject(false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (r *RabbitMQClient) Close() error {
	return errors.Join(r.pub.Close(), r.conn.Close())
}

func (r *RabbitMQClient) declare(ch *amqp.Channel, exchange string) error {
	return ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, r.cfg.QueueDurable, r.cfg.QueueAutoDelete, false, false, nil)
}

func tableToAttributes(table amqp.Table) map[string]string {
	if len(table) == 0 {
		return nil
	}
	out := make(map[string]string, len(table))
	for k, v := range table {
		if b, ok := v.([]byte); ok {
			out[k] = string(b)
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}
