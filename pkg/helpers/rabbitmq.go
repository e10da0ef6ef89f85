package helpers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitPublisher wraps an AMQP channel and queue for publishing messages.
type RabbitPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
}

// dialQueue connects and declares a durable queue.
func dialQueue(url, queue string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, ch, err := dialQueue(url, queue)
	if err != nil {
		return nil, err
	}
	return &RabbitPublisher{conn: conn, ch: ch, Queue: queue}, nil
}

func (p *RabbitPublisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// PublishJSON publishes a JSON-encoded persistent message to the queue.
func (p *RabbitPublisher) PublishJSON(ctx context.Context, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.Queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         b,
		},
	)
}

// RabbitConsumer delivers messages from a durable queue with manual acks.
type RabbitConsumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
	Tag   string
}

func NewRabbitConsumer(url, queue string, prefetch int) (*RabbitConsumer, error) {
	conn, ch, err := dialQueue(url, queue)
	if err != nil {
		return nil, err
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &RabbitConsumer{conn: conn, ch: ch, Queue: queue, Tag: queue + "-" + uuid.NewString()}, nil
}

func (c *RabbitConsumer) Deliveries() (<-chan amqp.Delivery, error) {
	return c.ch.Consume(c.Queue, c.Tag, false, false, false, false, nil)
}

// Stop cancels the consumer. The deliveries channel closes once the messages
// already received have been handed out, while acks keep working.
func (c *RabbitConsumer) Stop() error {
	return c.ch.Cancel(c.Tag, false)
}

func (c *RabbitConsumer) Close() {
	if c == nil {
		return
	}
	_ = c.ch.Close()
	_ = c.conn.Close()
}
