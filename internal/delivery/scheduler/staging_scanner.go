package scheduler

import (
	"context"
	"fmt"

	"media-pipeline/internal/domain/repositories"
	"media-pipeline/internal/infrastructure/metrics"
	"media-pipeline/internal/usecases"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StagingScanner lists the staging container on a schedule and hands every
// complete blob to the encoder. Blobs still being copied are left for a later
// scan. A blob that fails maxAttempts submissions is moved to poison.
type StagingScanner struct {
	staging     repositories.StagingStorage
	encoder     usecases.EncodeService
	maxAttempts int
	logger      *zap.Logger

	cron *cron.Cron
}

func NewStagingScanner(staging repositories.StagingStorage, encoder usecases.EncodeService, maxAttempts int, logger *zap.Logger) *StagingScanner {
	return &StagingScanner{
		staging:     staging,
		encoder:     encoder,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

func (s *StagingScanner) Start(schedule string) error {
	s.cron = cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := s.cron.AddFunc(schedule, func() {
		if err := s.Scan(context.Background()); err != nil {
			s.logger.Error("staging scan failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid STAGING_SCAN_SCHEDULE %q: %w", schedule, err)
	}
	s.cron.Start() // cron job'u başlatır
	s.logger.Info("staging scanner started", zap.String("schedule", schedule))
	return nil
}

// Stop waits for a running scan to finish.
func (s *StagingScanner) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Scan runs one pass. A failing blob stays in place for the next pass until it
// runs out of attempts.
func (s *StagingScanner) Scan(ctx context.Context) error {
	blobs, err := s.staging.List(ctx)
	if err != nil {
		return err
	}

	for _, blob := range blobs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !blob.IsComplete() {
			metrics.StagingBlobs.WithLabelValues(metrics.OutcomeSkipped).Inc()
			continue
		}
		if err := s.encoder.EncodeBlob(ctx, blob.Name); err != nil {
			s.recordFailure(ctx, blob.Name, err)
			continue
		}
		metrics.StagingBlobs.WithLabelValues(metrics.OutcomeSuccess).Inc()
	}
	return nil
}

func (s *StagingScanner) recordFailure(ctx context.Context, name string, cause error) {
	log := s.logger.With(zap.String("blob", name), zap.Error(cause))

	attempts, err := s.staging.RecordFailure(ctx, name)
	if err != nil {
		metrics.StagingBlobs.WithLabelValues(metrics.OutcomeError).Inc()
		log.Error("encode submission failed, attempt not recorded", zap.NamedError("recordError", err))
		return
	}
	if attempts < s.maxAttempts {
		metrics.StagingBlobs.WithLabelValues(metrics.OutcomeError).Inc()
		log.Warn("encode submission failed, blob will be retried", zap.Int("attempt", attempts))
		return
	}

	if err := s.staging.MoveToPoison(ctx, name); err != nil {
		metrics.StagingBlobs.WithLabelValues(metrics.OutcomeError).Inc()
		log.Error("failed to move blob to poison", zap.NamedError("poisonError", err))
		return
	}
	metrics.StagingBlobs.WithLabelValues(metrics.OutcomePoison).Inc()
	log.Error("blob moved to poison", zap.Int("attempts", attempts))
}
