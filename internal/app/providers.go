package app

import (
	"context"

	"media-pipeline/internal/domain/repositories"
	"media-pipeline/internal/infrastructure/cms"
	"media-pipeline/internal/infrastructure/logging"
	"media-pipeline/internal/infrastructure/mediaapi"
	"media-pipeline/internal/infrastructure/queue"
	"media-pipeline/internal/infrastructure/storage"
	"media-pipeline/internal/pkg/config"
	"media-pipeline/internal/usecases"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Core wires configuration, infrastructure and usecases shared by the server
// and the worker.
var Core = fx.Options(
	fx.Provide(
		config.LoadConfig,
		logging.New,
		newMediaClient,
		newMediaPlatform,
		newStaging,
		newStagingStorage,
		newSourcePresigner,
		newBroker,
		newPublisher,
		newCMSNotifier,

		newIngestService,
		newEncodeService,
		newJobStatusService,
		newContentProtectionService,
		newPublishService,
		newCMSService,
		newTokenService,
	),
	fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: logger.Named("fx")}
	}),
)

func newMediaClient(cfg *config.Config) *mediaapi.Client {
	return mediaapi.NewClient(cfg.Media)
}

func newMediaPlatform(c *mediaapi.Client) repositories.MediaPlatform {
	return c
}

func newStaging(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*storage.S3Storage, error) {
	s, err := storage.NewS3Storage(context.Background(), cfg.Staging, logger.Named("staging"))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			s.Wait(ctx)
			return nil
		},
	})
	return s, nil
}

func newStagingStorage(s *storage.S3Storage) repositories.StagingStorage {
	return s
}

func newSourcePresigner(cfg *config.Config) (repositories.SourcePresigner, error) {
	return storage.NewMinioSourcePresigner(cfg.Source)
}

func newBroker(lc fx.Lifecycle, cfg *config.Config) (queue.Broker, error) {
	b, err := queue.NewBroker(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return b.Close() },
	})
	return b, nil
}

func newPublisher(b queue.Broker) repositories.MessagePublisher {
	return b
}

func newCMSNotifier(cfg *config.Config) repositories.CMSNotifier {
	return cms.NewClient(cfg.CMS.CallbackURL, cfg.Media.RequestTimeout)
}

func newIngestService(staging repositories.StagingStorage, presigner repositories.SourcePresigner, logger *zap.Logger) usecases.IngestService {
	return usecases.NewIngestService(staging, presigner, logger.Named("ingest"))
}

func newEncodeService(media repositories.MediaPlatform, staging repositories.StagingStorage, cfg *config.Config, logger *zap.Logger) usecases.EncodeService {
	return usecases.NewEncodeService(media, staging, cfg.Encoding, cfg.Queue, logger.Named("encode"))
}

func newJobStatusService(media repositories.MediaPlatform, publisher repositories.MessagePublisher, c *mediaapi.Client, cfg *config.Config, logger *zap.Logger) usecases.JobStatusService {
	return usecases.NewJobStatusService(media, publisher, cfg.Queue, c.Endpoint(), logger.Named("job-status"))
}

func newContentProtectionService(media repositories.MediaPlatform, publisher repositories.MessagePublisher, cfg *config.Config, logger *zap.Logger) usecases.ContentProtectionService {
	return usecases.NewContentProtectionService(media, publisher, cfg.Protection, cfg.Queue, logger.Named("content-protection"))
}

func newPublishService(media repositories.MediaPlatform, publisher repositories.MessagePublisher, cfg *config.Config, logger *zap.Logger) usecases.PublishService {
	return usecases.NewPublishService(media, publisher, cfg.Queue, logger.Named("publish"))
}

func newCMSService(media repositories.MediaPlatform, notifier repositories.CMSNotifier, logger *zap.Logger) usecases.CMSService {
	return usecases.NewCMSService(media, notifier, logger.Named("cms"))
}

func newTokenService(cfg *config.Config) (usecases.TokenService, error) {
	return usecases.NewTokenService(cfg.Token)
}
