package queue

import (
	"context"
	"fmt"

	"github.com/benvon/card-collection/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultExchangeName is the fanout exchange transition events are published to
const DefaultExchangeName = "session_transitions"

// RabbitMQPublisher implements Publisher and Subscriber using a RabbitMQ fanout exchange
type RabbitMQPublisher struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	exchangeName string
}

var (
	_ Publisher  = (*RabbitMQPublisher)(nil)
	_ Subscriber = (*RabbitMQPublisher)(nil)
)

// NewRabbitMQPublisher connects to RabbitMQ and declares the exchange
func NewRabbitMQPublisher(amqpURL string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p := &RabbitMQPublisher{
		conn:         conn,
		channel:      ch,
		exchangeName: DefaultExchangeName,
	}

	if err := p.setup(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup exchange: %w", err)
	}

	return p, nil
}

func (p *RabbitMQPublisher) setup() error {
	err := p.channel.ExchangeDeclare(
		p.exchangeName,
		"fanout",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	return nil
}

// Publish sends the event to the exchange
func (p *RabbitMQPublisher) Publish(ctx context.Context, event *models.TransitionEvent) error {
	body, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Timestamp:    event.OccurredAt,
		Type:         "session_transition",
		Expiration:   expiration(event),
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchangeName,
		event.CollectionID, // routing key, ignored by fanout but useful for tracing
		false,              // mandatory
		false,              // immediate
		publishing,
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe binds an exclusive, auto-deleted queue to the exchange and streams its events
func (p *RabbitMQPublisher) Subscribe(ctx context.Context) (<-chan *models.TransitionEvent, <-chan error, error) {
	consumeCh, err := p.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open consumer channel: %w", err)
	}

	q, err := consumeCh.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := consumeCh.QueueBind(q.Name, "", p.exchangeName, false, nil); err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := consumeCh.Consume(
		q.Name,
		"",    // consumer tag (empty = auto-generate)
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	events := make(chan *models.TransitionEvent)
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errs)
		defer func() { _ = consumeCh.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					select {
					case errs <- fmt.Errorf("delivery channel closed"):
					default:
					}
					return
				}
				event, err := DecodeEvent(delivery.Body)
				if err != nil {
					select {
					case errs <- err:
					default:
					}
					continue
				}
				select {
				case <-ctx.Done():
					return
				case events <- event:
				}
			}
		}
	}()

	return events, errs, nil
}

// HealthCheck verifies the connection is open
func (p *RabbitMQPublisher) HealthCheck(ctx context.Context) error {
	if p.conn == nil || p.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection is closed")
	}
	if p.channel == nil || p.channel.IsClosed() {
		return fmt.Errorf("rabbitmq channel is closed")
	}
	return nil
}

// Close closes the queue connection
func (p *RabbitMQPublisher) Close() error {
	var err error
	if p.channel != nil {
		err = p.channel.Close()
	}
	if p.conn != nil {
		if closeErr := p.conn.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}
