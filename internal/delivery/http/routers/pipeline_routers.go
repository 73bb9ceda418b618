package routers

import (
	"crypto/subtle"

	"media-pipeline/internal/delivery/http/handlers"
	"media-pipeline/internal/pkg/config"
	consts "media-pipeline/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const functionKeyHeader = "x-functions-key"

type Handlers struct {
	Ingest *handlers.IngestHandler
	Job    *handlers.JobHandler
	Token  *handlers.TokenHandler
}

func SetupRoutes(app *fiber.App, cfg *config.Config, h Handlers) {
	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": consts.StatusOK})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Anonymous.
	api.Get("/content-protection-token", h.Token.ContentProtectionToken)
	api.Post("/content-protection-token", h.Token.ContentProtectionToken)

	auth := functionKey(cfg.Server.FunctionKey)
	api.Post("/check-job-status", auth, h.Job.CheckJobStatus)
	api.Post("/submit-job", auth, h.Job.SubmitJob)
	api.Post("/import-external", auth, h.Ingest.ImportExternal)
	api.Post("/ingest/upload", auth, h.Ingest.Upload)
}

// functionKey accepts the key from the x-functions-key header or the code
// query parameter. An empty key disables the check.
func functionKey(key string) fiber.Handler {
	if key == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	auth := keyauth.New(keyauth.Config{
		KeyLookup: "header:" + functionKeyHeader,
		Validator: func(_ *fiber.Ctx, provided string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) == 1 {
				return true, nil
			}
			return false, keyauth.ErrMissingOrMalformedAPIKey
		},
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		},
	})

	return func(c *fiber.Ctx) error {
		if c.Get(functionKeyHeader) == "" {
			if code := c.Query("code"); code != "" {
				c.Request().Header.Set(functionKeyHeader, code)
			}
		}
		return auth(c)
	}
}
