package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"media-pipeline/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

// HandlerFunc processes one message body. A returned error sends the message
// back for another attempt.
type HandlerFunc func(ctx context.Context, body []byte) error

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying; the message goes straight to the
// poison queue.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// settleTimeout bounds Ack, Retry, Release and DeadLetter. They run on a
// context detached from shutdown so a stopping worker still settles its
// message.
const settleTimeout = 10 * time.Second

type Worker struct {
	ID          int
	Queue       string
	Broker      Broker
	Handler     HandlerFunc
	MaxAttempts int
	Logger      *zap.Logger
}

// Run consumes until ctx is done or the broker is closed. Handlers get work,
// which outlives ctx so an in-flight message can finish after a stop.
func (w *Worker) Run(ctx, work context.Context) error {
	log := w.Logger.With(zap.Int("worker", w.ID), zap.String("queue", w.Queue))
	log.Debug("worker started")

	for {
		if ctx.Err() != nil {
			log.Debug("worker stopping due to context cancellation")
			return nil
		}

		d, err := w.Broker.Receive(ctx, w.Queue)
		if err != nil {
			if errors.Is(err, ErrClosed) || ctx.Err() != nil {
				return nil
			}
			log.Warn("receive failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}
		if d == nil {
			continue
		}

		w.process(work, log, d)
	}
}

func (w *Worker) process(ctx context.Context, log *zap.Logger, d *Delivery) {
	log = log.With(zap.Int("attempt", d.Attempt))

	start := time.Now()
	err := w.invoke(ctx, d.Body)
	metrics.HandlerDuration.WithLabelValues(w.Queue).Observe(time.Since(start).Seconds())

	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()

	if err != nil && ctx.Err() != nil {
		// Interrupted by shutdown: not the message's fault.
		log.Warn("handler interrupted, releasing message", zap.Error(err))
		if relErr := w.Broker.Release(settleCtx, d); relErr != nil {
			log.Error("release failed", zap.Error(relErr))
		}
		metrics.MessagesProcessed.WithLabelValues(w.Queue, metrics.OutcomeReleased).Inc()
		return
	}

	if err == nil {
		if ackErr := w.Broker.Ack(settleCtx, d); ackErr != nil {
			log.Error("ack failed", zap.Error(ackErr))
		}
		metrics.MessagesProcessed.WithLabelValues(w.Queue, metrics.OutcomeSuccess).Inc()
		return
	}

	if IsPermanent(err) || d.Attempt >= w.MaxAttempts {
		log.Error("message moved to poison queue", zap.Error(err), zap.String("poison", PoisonQueue(w.Queue)))
		if dlErr := w.Broker.DeadLetter(settleCtx, d); dlErr != nil {
			log.Error("dead-letter failed", zap.Error(dlErr))
		}
		metrics.MessagesProcessed.WithLabelValues(w.Queue, metrics.OutcomePoison).Inc()
		return
	}

	log.Warn("handler failed, message will be retried", zap.Error(err))
	if retryErr := w.Broker.Retry(settleCtx, d); retryErr != nil {
		log.Error("retry failed", zap.Error(retryErr))
	}
	metrics.MessagesProcessed.WithLabelValues(w.Queue, metrics.OutcomeRetry).Inc()
}

func (w *Worker) invoke(ctx context.Context, body []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return w.Handler(ctx, body)
}
