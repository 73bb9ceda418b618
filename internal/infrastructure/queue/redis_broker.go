package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBroker uses one list per queue: LPUSH to enqueue, BRPOP to dequeue.
type RedisBroker struct {
	rdb         *redis.Client
	pollTimeout time.Duration
}

func NewRedisBroker(rdb *redis.Client, pollTimeout time.Duration) *RedisBroker {
	return &RedisBroker{rdb: rdb, pollTimeout: pollTimeout}
}

func (b *RedisBroker) Publish(ctx context.Context, queue string, body []byte) error {
	return b.push(ctx, queue, 1, body)
}

func (b *RedisBroker) push(ctx context.Context, queue string, attempt int, body []byte) error {
	serialized, err := SerializeEnvelope(attempt, body)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}
	if err := b.rdb.LPush(ctx, queue, serialized).Err(); err != nil {
		return fmt.Errorf("LPUSH %s failed: %w", queue, err)
	}
	return nil
}

func (b *RedisBroker) Receive(ctx context.Context, queue string) (*Delivery, error) {
	val, err := b.rdb.BRPop(ctx, b.pollTimeout, queue).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		if errors.Is(err, redis.ErrClosed) {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("BRPOP %s failed: %w", queue, err)
	}

	body, attempt := DeserializeEnvelope([]byte(val[1]))
	return &Delivery{Queue: queue, Body: body, Attempt: attempt}, nil
}

// Ack is a no-op; BRPOP already removed the message.
func (b *RedisBroker) Ack(context.Context, *Delivery) error {
	return nil
}

func (b *RedisBroker) Retry(ctx context.Context, d *Delivery) error {
	return b.push(ctx, d.Queue, d.Attempt+1, d.Body)
}

// Release puts the message back at the pop end of the list so it is the next
// one served.
func (b *RedisBroker) Release(ctx context.Context, d *Delivery) error {
	serialized, err := SerializeEnvelope(d.Attempt, d.Body)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}
	if err := b.rdb.RPush(ctx, d.Queue, serialized).Err(); err != nil {
		return fmt.Errorf("RPUSH %s failed: %w", d.Queue, err)
	}
	return nil
}

func (b *RedisBroker) DeadLetter(ctx context.Context, d *Delivery) error {
	if err := b.rdb.LPush(ctx, PoisonQueue(d.Queue), d.Body).Err(); err != nil {
		return fmt.Errorf("LPUSH %s failed: %w", PoisonQueue(d.Queue), err)
	}
	return nil
}

func (b *RedisBroker) Close() error {
	return b.rdb.Close()
}
