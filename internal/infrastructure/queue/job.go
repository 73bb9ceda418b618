package queue

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrClosed is returned by Receive once the broker has been closed.
var ErrClosed = errors.New("queue: broker closed")

// Delivery is one message taken off a queue. Attempt starts at 1.
type Delivery struct {
	Queue   string
	Body    []byte
	Attempt int

	receipt any
}

// Broker is the transport behind the pipeline queues.
type Broker interface {
	Publish(ctx context.Context, queue string, body []byte) error
	// Receive blocks until a message arrives, the poll timeout elapses
	// (nil, nil) or ctx is done.
	Receive(ctx context.Context, queue string) (*Delivery, error)
	Ack(ctx context.Context, d *Delivery) error
	// Retry schedules the message for another attempt.
	Retry(ctx context.Context, d *Delivery) error
	// Release hands the message back untouched, without spending an attempt.
	Release(ctx context.Context, d *Delivery) error
	// DeadLetter moves the message to the poison queue.
	DeadLetter(ctx context.Context, d *Delivery) error
	Close() error
}

func PoisonQueue(queue string) string {
	return queue + "-poison"
}

// envelope carries the attempt count for transports without native
// redelivery counters.
type envelope struct {
	Attempt int    `json:"attempt"`
	Payload string `json:"payload"`
}

func SerializeEnvelope(attempt int, body []byte) ([]byte, error) {
	return json.Marshal(envelope{Attempt: attempt, Payload: string(body)})
}

// DeserializeEnvelope unwraps an enveloped message. Bodies that were pushed
// by another producer without an envelope are returned as attempt 1.
func DeserializeEnvelope(data []byte) (body []byte, attempt int) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Attempt <= 0 {
		return data, 1
	}
	return []byte(env.Payload), env.Attempt
}
