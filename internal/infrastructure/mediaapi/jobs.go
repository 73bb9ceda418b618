package mediaapi

import (
	"context"
	"fmt"
	"net/url"

	"media-pipeline/internal/domain/entities"
	"media-pipeline/internal/domain/repositories"

	"github.com/gofiber/fiber/v2"
)

func (c *Client) GetJob(ctx context.Context, id string) (*entities.Job, error) {
	var job entities.Job
	if err := c.do(ctx, fiber.MethodGet, "/jobs/"+escape(id), nil, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) SubmitJob(ctx context.Context, spec entities.JobSpec) (*entities.Job, error) {
	var job entities.Job
	if err := c.do(ctx, fiber.MethodPost, "/jobs", nil, spec, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

type countResponse struct {
	Count int `json:"count"`
}

func (c *Client) CountJobs(ctx context.Context, state entities.JobState) (int, error) {
	var out countResponse
	q := url.Values{"state": []string{string(state)}}
	if err := c.do(ctx, fiber.MethodGet, "/jobs/count", q, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) ListProcessors(ctx context.Context, name string) ([]entities.MediaProcessor, error) {
	var processors []entities.MediaProcessor
	if err := c.do(ctx, fiber.MethodGet, "/processors", byName(name), nil, &processors); err != nil {
		return nil, err
	}
	return processors, nil
}

func (c *Client) EncodingReservedUnits(ctx context.Context) (*entities.ReservedUnits, error) {
	var units entities.ReservedUnits
	if err := c.do(ctx, fiber.MethodGet, "/encoding-reserved-units", nil, nil, &units); err != nil {
		return nil, err
	}
	return &units, nil
}

func (c *Client) FindNotificationEndpoint(ctx context.Context, name string) (*entities.NotificationEndpoint, error) {
	var endpoints []entities.NotificationEndpoint
	if err := c.do(ctx, fiber.MethodGet, "/notification-endpoints", byName(name), nil, &endpoints); err != nil {
		return nil, err
	}
	for i := range endpoints {
		if endpoints[i].Name == name {
			return &endpoints[i], nil
		}
	}
	return nil, fmt.Errorf("notification endpoint %q: %w", name, repositories.ErrNotFound)
}

func (c *Client) CreateNotificationEndpoint(ctx context.Context, name, address string) (*entities.NotificationEndpoint, error) {
	req := entities.NotificationEndpoint{
		Name:    name,
		Type:    entities.NotificationEndpointTypeQueue,
		Address: address,
	}
	var endpoint entities.NotificationEndpoint
	if err := c.do(ctx, fiber.MethodPost, "/notification-endpoints", nil, req, &endpoint); err != nil {
		return nil, err
	}
	return &endpoint, nil
}
