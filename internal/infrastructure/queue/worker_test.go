package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestWorker(b Broker, h HandlerFunc) *Worker {
	return &Worker{Queue: "jobs", Broker: b, Handler: h, MaxAttempts: 3, Logger: zap.NewNop()}
}

// drain runs the worker until the queue is empty.
func drain(t *testing.T, w *Worker, b *MemoryBroker) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		d, err := b.Receive(ctx, w.Queue)
		if err != nil {
			t.Fatalf("Receive: %v", err)
		}
		if d == nil {
			return
		}
		w.process(ctx, w.Logger, d)
	}
	t.Fatalf("queue %s never drained", w.Queue)
}

func TestWorkerAcksOnSuccess(t *testing.T) {
	b := NewMemoryBroker(5 * time.Millisecond)
	var calls int32
	w := newTestWorker(b, func(context.Context, []byte) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	if err := b.Publish(context.Background(), "jobs", []byte("x")); err != nil {
		t.Fatal(err)
	}

	drain(t, w, b)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if n := len(b.Messages("jobs-poison")); n != 0 {
		t.Fatalf("poison messages = %d, want 0", n)
	}
}

func TestWorkerRetriesThenPoisons(t *testing.T) {
	b := NewMemoryBroker(5 * time.Millisecond)
	var attempts []int
	w := newTestWorker(b, nil)
	w.Handler = func(context.Context, []byte) error {
		attempts = append(attempts, len(attempts)+1)
		return errors.New("transient")
	}
	if err := b.Publish(context.Background(), "jobs", []byte("payload")); err != nil {
		t.Fatal(err)
	}

	drain(t, w, b)
	if len(attempts) != 3 {
		t.Fatalf("attempts = %d, want 3", len(attempts))
	}
	poison := b.Messages("jobs-poison")
	if len(poison) != 1 || string(poison[0]) != "payload" {
		t.Fatalf("poison = %q, want [payload]", poison)
	}
}

func TestWorkerPermanentErrorSkipsRetries(t *testing.T) {
	b := NewMemoryBroker(5 * time.Millisecond)
	var calls int
	w := newTestWorker(b, func(context.Context, []byte) error {
		calls++
		return Permanent(errors.New("malformed"))
	})
	if err := b.Publish(context.Background(), "jobs", []byte("{")); err != nil {
		t.Fatal(err)
	}

	drain(t, w, b)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if n := len(b.Messages("jobs-poison")); n != 1 {
		t.Fatalf("poison messages = %d, want 1", n)
	}
}

func TestWorkerRecoversPanics(t *testing.T) {
	b := NewMemoryBroker(5 * time.Millisecond)
	w := newTestWorker(b, func(context.Context, []byte) error {
		panic("boom")
	})
	w.MaxAttempts = 1
	if err := b.Publish(context.Background(), "jobs", []byte("x")); err != nil {
		t.Fatal(err)
	}

	drain(t, w, b)
	if n := len(b.Messages("jobs-poison")); n != 1 {
		t.Fatalf("poison messages = %d, want 1", n)
	}
}

func TestPermanent(t *testing.T) {
	if Permanent(nil) != nil {
		t.Fatalf("Permanent(nil) != nil")
	}
	base := errors.New("bad")
	err := Permanent(base)
	if !IsPermanent(err) || !errors.Is(err, base) {
		t.Fatalf("Permanent lost its cause: %v", err)
	}
	if IsPermanent(base) {
		t.Fatalf("IsPermanent(plain) = true")
	}
}

func TestEnvelope(t *testing.T) {
	data, err := SerializeEnvelope(2, []byte(`{"AssetId":"a"}`))
	if err != nil {
		t.Fatal(err)
	}
	body, attempt := DeserializeEnvelope(data)
	if string(body) != `{"AssetId":"a"}` || attempt != 2 {
		t.Fatalf("DeserializeEnvelope = %s, %d", body, attempt)
	}

	for _, raw := range []string{"asset-1", `{"Properties":{"JobId":"j"}}`, `{"attempt":0,"payload":"x"}`} {
		body, attempt := DeserializeEnvelope([]byte(raw))
		if string(body) != raw || attempt != 1 {
			t.Fatalf("DeserializeEnvelope(%s) = %s, %d; want raw body at attempt 1", raw, body, attempt)
		}
	}
}

func TestMemoryBrokerReceiveTimeoutAndClose(t *testing.T) {
	b := NewMemoryBroker(5 * time.Millisecond)
	d, err := b.Receive(context.Background(), "empty")
	if d != nil || err != nil {
		t.Fatalf("Receive on empty queue = %v, %v; want nil, nil", d, err)
	}

	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Receive(context.Background(), "empty"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Receive after Close err = %v, want ErrClosed", err)
	}
}

func TestWorkerPoolProcessesAndShutsDown(t *testing.T) {
	b := NewMemoryBroker(5 * time.Millisecond)
	pool := NewWorkerPool(b, 2, 3, zap.NewNop())

	done := make(chan string, 4)
	pool.Handle("a", func(_ context.Context, body []byte) error {
		done <- "a:" + string(body)
		return nil
	})
	pool.Handle("b", func(_ context.Context, body []byte) error {
		done <- "b:" + string(body)
		return nil
	})
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	_ = b.Publish(context.Background(), "a", []byte("1"))
	_ = b.Publish(context.Background(), "b", []byte("2"))

	got := map[string]bool{}
	for len(got) < 2 {
		select {
		case s := <-done:
			got[s] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, got %v", got)
		}
	}
	if !got["a:1"] || !got["b:2"] {
		t.Fatalf("processed = %v", got)
	}
	if err := pool.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestWorkerPoolRequiresHandlers(t *testing.T) {
	pool := NewWorkerPool(NewMemoryBroker(time.Millisecond), 1, 1, zap.NewNop())
	if err := pool.Start(context.Background()); err == nil {
		t.Fatalf("Start with no handlers err = nil")
	}
}

// doneContextBroker refuses to settle on a finished context, like go-redis.
type doneContextBroker struct {
	*MemoryBroker
}

func (b doneContextBroker) Ack(ctx context.Context, d *Delivery) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.MemoryBroker.Ack(ctx, d)
}

func (b doneContextBroker) Retry(ctx context.Context, d *Delivery) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.MemoryBroker.Retry(ctx, d)
}

func (b doneContextBroker) Release(ctx context.Context, d *Delivery) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.MemoryBroker.Release(ctx, d)
}

func (b doneContextBroker) DeadLetter(ctx context.Context, d *Delivery) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.MemoryBroker.DeadLetter(ctx, d)
}

func TestShutdownLetsInFlightHandlerFinish(t *testing.T) {
	b := doneContextBroker{NewMemoryBroker(5 * time.Millisecond)}
	pool := NewWorkerPool(b, 1, 3, zap.NewNop())

	started := make(chan struct{})
	release := make(chan struct{})
	var handlerErr atomic.Value
	pool.Handle("jobs", func(ctx context.Context, _ []byte) error {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			handlerErr.Store(err)
			return err
		}
		return nil
	})
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	_ = b.Publish(context.Background(), "jobs", []byte("state-change"))
	<-started

	stopped := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		stopped <- pool.Shutdown(ctx)
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	if err := <-stopped; err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if v := handlerErr.Load(); v != nil {
		t.Fatalf("handler context cancelled during graceful shutdown: %v", v)
	}
	if n := len(b.Messages("jobs")) + len(b.Messages("jobs-poison")); n != 0 {
		t.Fatalf("messages left = %d, want 0 (acked)", n)
	}
}

func TestShutdownDeadlineReleasesMessageWithoutSpendingAttempt(t *testing.T) {
	b := doneContextBroker{NewMemoryBroker(5 * time.Millisecond)}
	pool := NewWorkerPool(b, 1, 3, zap.NewNop())

	var once sync.Once
	started := make(chan struct{})
	pool.Handle("jobs", func(ctx context.Context, _ []byte) error {
		once.Do(func() { close(started) })
		<-ctx.Done()
		return ctx.Err()
	})
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	_ = b.Publish(context.Background(), "jobs", []byte("state-change"))
	<-started

	expired, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pool.Shutdown(expired); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if n := len(b.Messages("jobs-poison")); n != 0 {
		t.Fatalf("poison messages = %d, want 0", n)
	}
	d, err := b.Receive(context.Background(), "jobs")
	if err != nil || d == nil {
		t.Fatalf("message lost on shutdown: %v, %v", d, err)
	}
	if string(d.Body) != "state-change" || d.Attempt != 1 {
		t.Fatalf("released message = %s attempt %d, want state-change attempt 1", d.Body, d.Attempt)
	}
}
