package sink

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ContentType marks published public values
const ContentType = "application/octet-stream"

// Publisher is the part of *amqp.Channel the queue sink uses
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Queue hands committed public values to a downstream proving worker over AMQP
type Queue struct {
	conn       *amqp.Connection
	channel    Publisher
	exchange   string
	routingKey string
}

// NewQueue publishes through an already opened channel
func NewQueue(ch Publisher, exchange, routingKey string) *Queue {
	return &Queue{channel: ch, exchange: exchange, routingKey: routingKey}
}

// DialQueue connects to the broker and declares a durable direct exchange
func DialQueue(url, exchange, routingKey string) (*Queue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if exchange != "" {
		err = ch.ExchangeDeclare(
			exchange, // name
			"direct", // type
			true,     // durable
			false,    // auto-deleted
			false,    // internal
			false,    // no-wait
			nil,      // arguments
		)
		if err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
		}
	}

	q := NewQueue(ch, exchange, routingKey)
	q.conn = conn
	return q, nil
}

func (q *Queue) Write(ctx context.Context, runID string, publicValues []byte) error {
	err := q.channel.PublishWithContext(ctx,
		q.exchange,
		q.routingKey,
		false, false,
		amqp.Publishing{
			ContentType:  ContentType,
			MessageId:    runID,
			Body:         publicValues,
			Timestamp:    time.Now().UTC(),
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s/%s: %w", q.exchange, q.routingKey, err)
	}
	return nil
}

func (q *Queue) Name() string { return "queue:" + q.exchange + "/" + q.routingKey }

func (q *Queue) Close() error {
	err := q.channel.Close()
	if q.conn != nil {
		if cerr := q.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
