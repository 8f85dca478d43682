package queue

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Suffixes for the companion queues every work queue gets. Messages nacked
// for retry are parked on <queue>.retry with a per-message TTL and
// dead-letter back onto the work queue; messages that exhaust their retry
// budget end up on <queue>.dead.
const (
	RetrySuffix = ".retry"
	DeadSuffix  = ".dead"
)

type Consumer struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	queue    string
}

// NewConsumer declares the work queue, its retry queue, and its dead-letter
// queue, all durable. Delivery is at-least-once: consumers ack manually and
// prefetch at most `prefetch` unacked messages.
func NewConsumer(url, exchange, queue string, prefetch int) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	declare := func(name string, args amqp.Table) error {
		q, err := ch.QueueDeclare(name, true, false, false, false, args)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", name, err)
		}
		if err := ch.QueueBind(q.Name, name, exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s: %w", name, err)
		}
		return nil
	}

	setup := func() error {
		if err := declare(queue, nil); err != nil {
			return err
		}
		if err := declare(queue+RetrySuffix, amqp.Table{
			"x-dead-letter-exchange":    exchange,
			"x-dead-letter-routing-key": queue,
		}); err != nil {
			return err
		}
		if err := declare(queue+DeadSuffix, nil); err != nil {
			return err
		}
		if prefetch > 0 {
			if err := ch.Qos(prefetch, 0, false); err != nil {
				return fmt.Errorf("set qos: %w", err)
			}
		}
		return nil
	}

	if err := setup(); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Consumer{conn: conn, ch: ch, exchange: exchange, queue: queue}, nil
}

func (c *Consumer) Deliveries(ctx context.Context) (<-chan amqp.Delivery, error) {
	return c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
}

func (c *Consumer) Queue() string {
	return c.queue
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
