package errors

import (
	stderrors "errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", ErrValidation("bad input"), 400, `{"error":"bad input"}`},
		{"asset not found", ErrAssetNotFound(stderrors.New("404")), 400, `{"error":"Asset not found"}`},
		{"job not found", ErrJobNotFound(stderrors.New("404")), 500, `{"error":"Job not found"}`},
		{"internal", ErrInternal(stderrors.New("disk full")), 500, `{"Error":"disk full"}`},
		{"raw", stderrors.New("boom"), 500, `{"Error":"boom"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return HandleError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			if err != nil {
				t.Fatal(err)
			}
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != tt.status || string(body) != tt.body {
				t.Fatalf("HandleError = %d %s, want %d %s", resp.StatusCode, body, tt.status, tt.body)
			}
		})
	}
}
