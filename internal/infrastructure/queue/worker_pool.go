package queue

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WorkerPool runs a fixed number of workers per registered queue.
type WorkerPool struct {
	broker      Broker
	concurrency int
	maxAttempts int
	logger      *zap.Logger
	handlers    map[string]HandlerFunc

	group      *errgroup.Group
	stop       context.CancelFunc //graceful shutdown için
	cancelWork context.CancelFunc
}

func NewWorkerPool(broker Broker, concurrency, maxAttempts int, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		broker:      broker,
		concurrency: concurrency,
		maxAttempts: maxAttempts,
		logger:      logger,
		handlers:    make(map[string]HandlerFunc),
	}
}

func (p *WorkerPool) Handle(queue string, h HandlerFunc) {
	p.handlers[queue] = h
}

func (p *WorkerPool) Queues() []string {
	queues := make([]string, 0, len(p.handlers))
	for q := range p.handlers {
		queues = append(queues, q)
	}
	return queues
}

// Start launches the workers and returns immediately.
func (p *WorkerPool) Start(ctx context.Context) error {
	if len(p.handlers) == 0 {
		return fmt.Errorf("worker pool: no queue handlers registered")
	}

	recvCtx, stop := context.WithCancel(ctx)
	work, cancelWork := context.WithCancel(context.WithoutCancel(ctx))
	g, gctx := errgroup.WithContext(recvCtx)
	p.group = g
	p.stop = stop
	p.cancelWork = cancelWork

	id := 0
	for queue, h := range p.handlers {
		for i := 0; i < p.concurrency; i++ {
			w := &Worker{
				ID:          id,
				Queue:       queue,
				Broker:      p.broker,
				Handler:     h,
				MaxAttempts: p.maxAttempts,
				Logger:      p.logger,
			}
			id++
			g.Go(func() error { return w.Run(gctx, work) })
		}
	}

	p.logger.Info("worker pool started", zap.Int("workers", id), zap.Strings("queues", p.Queues()))
	return nil
}

// Shutdown stops receiving and lets in-flight handlers finish. When ctx ends
// first, the handlers are cancelled and their messages released.
func (p *WorkerPool) Shutdown(ctx context.Context) error {
	if p.stop == nil {
		return nil
	}
	p.stop()

	done := make(chan error, 1)
	go func() { done <- p.group.Wait() }()

	select {
	case err := <-done:
		p.cancelWork()
		return err
	case <-ctx.Done():
		p.logger.Warn("shutdown deadline reached, cancelling in-flight handlers")
		p.cancelWork()
		return <-done
	}
}
