package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Handler processes one delivery body. A returned error rejects the message.
type Handler func(ctx context.Context, body []byte) error

// RabbitMQ publishes and consumes JSON jobs on durable queues
type RabbitMQ struct {
	url    string
	logger zerolog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewRabbitMQ dials the broker once to fail fast on bad configuration
func NewRabbitMQ(url string, logger zerolog.Logger) (*RabbitMQ, error) {
	r := &RabbitMQ{url: url, logger: logger}
	if err := r.connect(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(r.url)
	if err != nil {
		return fmt.Errorf("failed to dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	r.conn = conn
	r.ch = ch
	return nil
}

func (r *RabbitMQ) channel() (*amqp.Channel, error) {
	if r.ch == nil || r.ch.IsClosed() || r.conn == nil || r.conn.IsClosed() {
		if r.conn != nil {
			_ = r.conn.Close()
		}
		if err := r.connect(); err != nil {
			return nil, err
		}
	}
	return r.ch, nil
}

// PublishJSON marshals v and publishes it as a persistent message on queue
func (r *RabbitMQ) PublishJSON(ctx context.Context, queue string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ch, err := r.channel()
	if err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		return fmt.Errorf("publish to %s: %w", queue, err)
	}
	return nil
}

// Consume runs handler for every delivery on queue until ctx is cancelled,
// reconnecting with backoff when the broker connection drops.
func (r *RabbitMQ) Consume(ctx context.Context, queue string, handler Handler) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := amqp.Dial(r.url)
		if err != nil {
			r.logger.Warn().Err(err).Dur("retryIn", backoff).Str("queue", queue).Msg("Consumer failed to dial broker")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = r.consumeLoop(ctx, conn, queue, handler)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		r.logger.Warn().Err(err).Str("queue", queue).Msg("Consume loop ended, reconnecting")
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (r *RabbitMQ) consumeLoop(ctx context.Context, conn *amqp.Connection, queue string, handler Handler) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to set consumer QoS")
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	r.logger.Info().Str("queue", queue).Msg("Consumer started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handler(ctx, d.Body); err != nil {
				r.logger.Error().Err(err).Str("queue", queue).Msg("Job failed")
				// rejected without requeue to avoid a poison message loop
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Close closes the publishing connection
func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
