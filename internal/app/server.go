package app

import (
	"context"
	"fmt"
	"net"

	"media-pipeline/internal/delivery/http/handlers"
	"media-pipeline/internal/delivery/http/routers"
	"media-pipeline/internal/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Server is the HTTP binary.
var Server = fx.Options(
	Core,
	fx.Provide(
		handlers.NewIngestHandler,
		handlers.NewJobHandler,
		handlers.NewTokenHandler,
		NewHTTPApp,
	),
	fx.Invoke(startHTTP),
)

// NewHTTPApp builds the fiber app with every route registered.
func NewHTTPApp(cfg *config.Config, ingest *handlers.IngestHandler, job *handlers.JobHandler, token *handlers.TokenHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             cfg.Server.BodyLimit,
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	routers.SetupRoutes(app, cfg, routers.Handlers{
		Ingest: ingest,
		Job:    job,
		Token:  token,
	})
	return app
}

func startHTTP(lc fx.Lifecycle, app *fiber.App, cfg *config.Config, log *zap.Logger) {
	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("server başlatılamadı: %w", err)
			}
			go func() {
				if err := app.Listener(ln); err != nil {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			log.Info("server listening", zap.String("addr", addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutdown sinyali alındı, server kapatılıyor")
			return app.ShutdownWithContext(ctx)
		},
	})
}
