package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const attemptHeader = "x-attempt"

// AMQPBroker consumes with manual acks. A retry republishes the message with
// an incremented x-attempt header and acks the original.
type AMQPBroker struct {
	conn        *amqp.Connection
	ch          *amqp.Channel
	pollTimeout time.Duration

	mu        sync.Mutex
	declared  map[string]bool
	consumers map[string]<-chan amqp.Delivery
}

func NewAMQPBroker(url string, prefetch int, pollTimeout time.Duration) (*AMQPBroker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	return &AMQPBroker{
		conn:        conn,
		ch:          ch,
		pollTimeout: pollTimeout,
		declared:    make(map[string]bool),
		consumers:   make(map[string]<-chan amqp.Delivery),
	}, nil
}

// declare must be called with b.mu held.
func (b *AMQPBroker) declare(queue string) error {
	if b.declared[queue] {
		return nil
	}
	if _, err := b.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	b.declared[queue] = true
	return nil
}

func (b *AMQPBroker) publish(ctx context.Context, queue string, attempt int, body []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.declare(queue); err != nil {
		return err
	}
	err := b.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/octet-stream",
		Headers:      amqp.Table{attemptHeader: int32(attempt)},
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}
	return nil
}

func (b *AMQPBroker) Publish(ctx context.Context, queue string, body []byte) error {
	return b.publish(ctx, queue, 1, body)
}

func (b *AMQPBroker) consumer(queue string) (<-chan amqp.Delivery, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if msgs, ok := b.consumers[queue]; ok {
		return msgs, nil
	}
	if err := b.declare(queue); err != nil {
		return nil, err
	}
	msgs, err := b.ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to consume the queue %s: %w", queue, err)
	}
	b.consumers[queue] = msgs
	return msgs, nil
}

func (b *AMQPBroker) Receive(ctx context.Context, queue string) (*Delivery, error) {
	msgs, err := b.consumer(queue)
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(b.pollTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, nil
	case msg, ok := <-msgs:
		if !ok {
			return nil, ErrClosed
		}
		return &Delivery{
			Queue:   queue,
			Body:    msg.Body,
			Attempt: headerAttempt(msg.Headers),
			receipt: msg,
		}, nil
	}
}

func headerAttempt(h amqp.Table) int {
	switch v := h[attemptHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 1
}

func (b *AMQPBroker) delivery(d *Delivery) (amqp.Delivery, error) {
	msg, ok := d.receipt.(amqp.Delivery)
	if !ok {
		return amqp.Delivery{}, errors.New("queue: delivery did not come from this broker")
	}
	return msg, nil
}

func (b *AMQPBroker) Ack(_ context.Context, d *Delivery) error {
	msg, err := b.delivery(d)
	if err != nil {
		return err
	}
	return msg.Ack(false)
}

func (b *AMQPBroker) Retry(ctx context.Context, d *Delivery) error {
	msg, err := b.delivery(d)
	if err != nil {
		return err
	}
	if err := b.publish(ctx, d.Queue, d.Attempt+1, d.Body); err != nil {
		msg.Nack(false, true)
		return err
	}
	return msg.Ack(false)
}

// Release requeues the original delivery; its x-attempt header is unchanged.
func (b *AMQPBroker) Release(_ context.Context, d *Delivery) error {
	msg, err := b.delivery(d)
	if err != nil {
		return err
	}
	return msg.Nack(false, true)
}

func (b *AMQPBroker) DeadLetter(ctx context.Context, d *Delivery) error {
	msg, err := b.delivery(d)
	if err != nil {
		return err
	}
	if err := b.publish(ctx, PoisonQueue(d.Queue), d.Attempt, d.Body); err != nil {
		msg.Nack(false, true)
		return err
	}
	return msg.Ack(false)
}

func (b *AMQPBroker) Close() error {
	b.ch.Close()
	return b.conn.Close()
}
