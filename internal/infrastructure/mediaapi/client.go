package mediaapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"media-pipeline/internal/domain/repositories"
	"media-pipeline/internal/pkg/config"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Client talks to the media service REST API. It implements
// repositories.MediaPlatform.
type Client struct {
	endpoint string
	tokens   oauth2.TokenSource
	timeout  time.Duration
}

// NewClient builds a client; without client credentials requests are sent
// unauthenticated.
func NewClient(cfg config.MediaConfig) *Client {
	c := &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		timeout:  cfg.RequestTimeout,
	}
	if c.timeout <= 0 {
		c.timeout = 30 * time.Second
	}

	if cfg.ClientID != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenEndpoint(),
		}
		if cfg.Scope != "" {
			cc.Scopes = []string{cfg.Scope}
		}
		c.tokens = cc.TokenSource(context.Background())
	}
	return c
}

var _ repositories.MediaPlatform = (*Client)(nil)

// Endpoint is the REST root, reported in job status extended info.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// APIError is a non-2xx answer from the media service.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("media api %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

func (c *Client) agent(method, target string) *fiber.Agent {
	switch method {
	case fiber.MethodPost:
		return fiber.Post(target)
	case fiber.MethodPatch:
		return fiber.Patch(target)
	case fiber.MethodDelete:
		return fiber.Delete(target)
	default:
		return fiber.Get(target)
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := c.endpoint + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	agent := c.agent(method, target)
	agent.Timeout(timeout)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("media api token: %w", err)
		}
		agent.Set(fiber.HeaderAuthorization, tok.Type()+" "+tok.AccessToken)
	}
	if in != nil {
		agent.JSON(in)
	}
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("media api %s %s: %w", method, path, err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("media api %s %s: %w", method, path, errors.Join(errs...))
	}
	if code == fiber.StatusNotFound {
		return repositories.ErrNotFound
	}
	if code < 200 || code > 299 {
		return &APIError{Method: method, Path: path, Status: code, Body: string(body)}
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("media api %s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

func escape(id string) string {
	return url.PathEscape(id)
}

func byName(name string) url.Values {
	return url.Values{"name": []string{name}}
}
