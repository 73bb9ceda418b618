package mediaapi

import (
	"context"
	"fmt"

	"media-pipeline/internal/domain/entities"
	"media-pipeline/internal/domain/repositories"

	"github.com/gofiber/fiber/v2"
)

func (c *Client) CreateContentKey(ctx context.Context, key entities.ContentKey) (*entities.ContentKey, error) {
	var created entities.ContentKey
	if err := c.do(ctx, fiber.MethodPost, "/content-keys", nil, key, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

type keyPolicyRequest struct {
	AuthorizationPolicyID string `json:"authorizationPolicyId"`
}

func (c *Client) SetKeyAuthorizationPolicy(ctx context.Context, keyID, policyID string) error {
	return c.do(ctx, fiber.MethodPatch, "/content-keys/"+escape(keyID), nil, keyPolicyRequest{AuthorizationPolicyID: policyID}, nil)
}

func (c *Client) FindAuthorizationPolicy(ctx context.Context, name string) (*entities.Policy, error) {
	return c.findPolicy(ctx, "/authorization-policies", name)
}

func (c *Client) FindDeliveryPolicy(ctx context.Context, name string) (*entities.Policy, error) {
	return c.findPolicy(ctx, "/delivery-policies", name)
}

func (c *Client) findPolicy(ctx context.Context, path, name string) (*entities.Policy, error) {
	if name == "" {
		return nil, fmt.Errorf("policy name is empty: %w", repositories.ErrNotFound)
	}
	var policies []entities.Policy
	if err := c.do(ctx, fiber.MethodGet, path, byName(name), nil, &policies); err != nil {
		return nil, err
	}
	for i := range policies {
		if policies[i].Name == name {
			return &policies[i], nil
		}
	}
	return nil, fmt.Errorf("policy %q: %w", name, repositories.ErrNotFound)
}

type attachPolicyRequest struct {
	PolicyID string `json:"policyId"`
}

func (c *Client) AttachDeliveryPolicy(ctx context.Context, assetID, policyID string) error {
	return c.do(ctx, fiber.MethodPost, "/assets/"+escape(assetID)+"/delivery-policies", nil, attachPolicyRequest{PolicyID: policyID}, nil)
}
