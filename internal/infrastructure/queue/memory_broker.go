package queue

import (
	"context"
	"sync"
	"time"
)

// MemoryBroker keeps queues in process. Used by tests and local runs.
type MemoryBroker struct {
	pollTimeout time.Duration

	mu     sync.Mutex
	cond   chan struct{}
	queues map[string][]*Delivery
	closed bool
}

func NewMemoryBroker(pollTimeout time.Duration) *MemoryBroker {
	return &MemoryBroker{
		pollTimeout: pollTimeout,
		cond:        make(chan struct{}),
		queues:      make(map[string][]*Delivery),
	}
}

// notify must be called with b.mu held.
func (b *MemoryBroker) notify() {
	close(b.cond)
	b.cond = make(chan struct{})
}

func (b *MemoryBroker) enqueue(queue string, attempt int, body []byte) {
	b.push(queue, attempt, body, false)
}

func (b *MemoryBroker) push(queue string, attempt int, body []byte, front bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := append([]byte(nil), body...)
	d := &Delivery{Queue: queue, Body: cp, Attempt: attempt}
	if front {
		b.queues[queue] = append([]*Delivery{d}, b.queues[queue]...)
	} else {
		b.queues[queue] = append(b.queues[queue], d)
	}
	b.notify()
}

func (b *MemoryBroker) Publish(_ context.Context, queue string, body []byte) error {
	b.enqueue(queue, 1, body)
	return nil
}

func (b *MemoryBroker) Receive(ctx context.Context, queue string) (*Delivery, error) {
	timer := time.NewTimer(b.pollTimeout)
	defer timer.Stop()

	for {
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return nil, ErrClosed
		}
		if q := b.queues[queue]; len(q) > 0 {
			d := q[0]
			b.queues[queue] = q[1:]
			b.mu.Unlock()
			return d, nil
		}
		wait := b.cond
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, nil
		case <-wait:
		}
	}
}

func (b *MemoryBroker) Ack(context.Context, *Delivery) error {
	return nil
}

func (b *MemoryBroker) Retry(_ context.Context, d *Delivery) error {
	b.enqueue(d.Queue, d.Attempt+1, d.Body)
	return nil
}

func (b *MemoryBroker) Release(_ context.Context, d *Delivery) error {
	b.push(d.Queue, d.Attempt, d.Body, true)
	return nil
}

func (b *MemoryBroker) DeadLetter(_ context.Context, d *Delivery) error {
	b.enqueue(PoisonQueue(d.Queue), d.Attempt, d.Body)
	return nil
}

// Messages returns a copy of the bodies currently waiting on queue.
func (b *MemoryBroker) Messages(queue string) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]byte, 0, len(b.queues[queue]))
	for _, d := range b.queues[queue] {
		out = append(out, d.Body)
	}
	return out
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		b.notify()
	}
	return nil
}
