// Package events publishes notifications about transfer writes. Events are
// informational: the stored transfer is authoritative and a failed publish
// never undoes a write.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/riteshkumar/scheduled-transfers/internal/models"
)

const (
	// queue for transfer events
	TransferEventQueue = "transfer_events"

	TypeTransferScheduled     = "transfer.scheduled"
	TypeTransferStatusChanged = "transfer.status_changed"
)

type TransferEvent struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	OccurredAt time.Time        `json:"occurred_at"`
	Transfer   *models.Transfer `json:"transfer"`
}

func NewTransferEvent(eventType string, transfer *models.Transfer, now time.Time) TransferEvent {
	return TransferEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: now.UTC(),
		Transfer:   transfer,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event TransferEvent) error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, TransferEvent) error { return nil }

// RabbitMQPublisher writes events as persistent JSON messages to a durable queue.
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func NewRabbitMQPublisher(uri string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		TransferEventQueue, // name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	return &RabbitMQPublisher{
		conn:    conn,
		channel: ch,
		queue:   q,
	}, nil
}

func (p *RabbitMQPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, event TransferEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal transfer event: %w", err)
	}

	err = p.channel.Publish(
		"",           // exchange
		p.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.ID,
			Type:         event.Type,
			Timestamp:    event.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		})
	if err != nil {
		return fmt.Errorf("failed to publish transfer event: %w", err)
	}
	return nil
}
