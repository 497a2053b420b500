// Package orders announces submitted checkouts on a RabbitMQ queue.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/roach88/catalogview/internal/cart"
)

// DefaultQueue is the queue orders are published to.
const DefaultQueue = "orders"

// ErrCodePublish indicates an order could not be published.
const ErrCodePublish = "ORDER_PUBLISH_ERROR"

// Error is returned by AMQPPublisher.
type Error struct {
	Code      string
	SessionID string
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s (session=%s): %v", e.Code, e.SessionID, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsPublishError reports whether err is a failed publish.
func IsPublishError(err error) bool {
	var oe *Error
	return errors.As(err, &oe) && oe.Code == ErrCodePublish
}

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// OrderItem is one line of an OrderMessage.
type OrderItem struct {
	SKU   string `json:"sku"`
	Qty   int    `json:"qty"`
	Price string `json:"price"`
}

// OrderMessage is the JSON body of a published order.
type OrderMessage struct {
	ClientID  string      `json:"client_id"`
	SessionID string      `json:"session_id"`
	Items     []OrderItem `json:"items"`
	Total     string      `json:"total"`
}

// NewOrderMessage converts a checkout order into its wire form.
func NewOrderMessage(order cart.Order) OrderMessage {
	msg := OrderMessage{
		ClientID:  order.ClientID,
		SessionID: order.SessionID,
		Items:     make([]OrderItem, 0, len(order.Lines)),
		Total:     order.Total,
	}
	for _, line := range order.Lines {
		msg.Items = append(msg.Items, OrderItem{SKU: line.SKU, Qty: line.Qty, Price: line.Price})
	}
	return msg
}

// AMQPPublisher publishes orders to a durable queue. It implements
// cart.OrderPublisher.
type AMQPPublisher struct {
	conn  *amqp.Connection
	ch    Channel
	queue string
}

// Dial connects to uri and declares queue.
func Dial(uri, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	p, err := NewPublisher(ch, queue)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewPublisher declares queue on ch. An empty queue means DefaultQueue.
func NewPublisher(ch Channel, queue string) (*AMQPPublisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}

	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue %q: %w", queue, err)
	}
	return &AMQPPublisher{ch: ch, queue: q.Name}, nil
}

// Queue returns the declared queue name.
func (p *AMQPPublisher) Queue() string {
	return p.queue
}

// PublishOrder implements cart.OrderPublisher.
func (p *AMQPPublisher) PublishOrder(ctx context.Context, order cart.Order) error {
	body, err := json.Marshal(NewOrderMessage(order))
	if err != nil {
		return &Error{Code: ErrCodePublish, SessionID: order.SessionID, Err: err}
	}

	if err := p.ch.PublishWithContext(ctx,
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    order.SessionID,
			Body:         body,
		},
	); err != nil {
		return &Error{Code: ErrCodePublish, SessionID: order.SessionID, Err: err}
	}

	slog.Debug("order published", "queue", p.queue, "session_id", order.SessionID, "items", len(order.Lines))
	return nil
}

// Close releases the channel and, when dialled, the connection.
func (p *AMQPPublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
	}
	return err
}
