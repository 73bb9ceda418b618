package app

import (
	"context"
	"fmt"
	"net"

	deliveryqueue "media-pipeline/internal/delivery/queue"
	"media-pipeline/internal/delivery/scheduler"
	"media-pipeline/internal/domain/repositories"
	"media-pipeline/internal/infrastructure/queue"
	"media-pipeline/internal/pkg/config"
	"media-pipeline/internal/usecases"
	consts "media-pipeline/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Worker is the queue consumer binary; it also runs the staging scanner.
var Worker = fx.Options(
	Core,
	fx.Provide(
		newQueueConfig,
		deliveryqueue.NewHandlers,
		newWorkerPool,
		newStagingScanner,
	),
	fx.Invoke(startWorker, startMetrics),
)

func newWorkerPool(b queue.Broker, h *deliveryqueue.Handlers, cfg *config.Config, log *zap.Logger) *queue.WorkerPool {
	pool := queue.NewWorkerPool(b, cfg.Worker.Concurrency, cfg.Worker.MaxDequeueCount, log.Named("worker"))
	h.Register(pool)
	return pool
}

func newStagingScanner(staging repositories.StagingStorage, encoder usecases.EncodeService, cfg *config.Config, log *zap.Logger) *scheduler.StagingScanner {
	return scheduler.NewStagingScanner(staging, encoder, cfg.Worker.MaxDequeueCount, log.Named("scanner"))
}

func newQueueConfig(cfg *config.Config) config.QueueConfig {
	return cfg.Queue
}

func startWorker(lc fx.Lifecycle, pool *queue.WorkerPool, scanner *scheduler.StagingScanner, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			// Workers outlive the start context.
			if err := pool.Start(context.Background()); err != nil {
				return err
			}
			return scanner.Start(cfg.Worker.ScanSchedule)
		},
		OnStop: func(ctx context.Context) error {
			scanner.Stop()
			return pool.Shutdown(ctx)
		},
	})
}

// startMetrics serves /metrics and /health for the worker process.
func startMetrics(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) {
	if cfg.Worker.MetricsAddr == "" {
		return
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": consts.StatusOK})
	})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", cfg.Worker.MetricsAddr)
			if err != nil {
				return fmt.Errorf("metrics listener: %w", err)
			}
			go func() {
				if err := app.Listener(ln); err != nil {
					log.Error("metrics server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}
