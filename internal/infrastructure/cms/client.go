package cms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"media-pipeline/internal/domain/dto"
	"media-pipeline/internal/domain/repositories"

	"github.com/gofiber/fiber/v2"
)

// ErrNoCallback is returned when no callback URL is configured.
var ErrNoCallback = errors.New("cms: callback url is not configured")

type Client struct {
	callbackURL string
	timeout     time.Duration
}

func NewClient(callbackURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{callbackURL: callbackURL, timeout: timeout}
}

var _ repositories.CMSNotifier = (*Client)(nil)

func (c *Client) Notify(ctx context.Context, ref dto.CMSReference) (int, error) {
	if c.callbackURL == "" {
		return 0, ErrNoCallback
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	agent := fiber.Post(c.callbackURL)
	agent.Timeout(c.timeout)
	agent.JSON(ref)
	if err := agent.Parse(); err != nil {
		return 0, fmt.Errorf("cms callback: %w", err)
	}

	code, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return 0, fmt.Errorf("cms callback: %w", errors.Join(errs...))
	}
	return code, nil
}
