package mediaapi

import (
	"context"
	"fmt"
	"time"

	"media-pipeline/internal/domain/entities"
	"media-pipeline/internal/domain/repositories"

	"github.com/gofiber/fiber/v2"
)

type createAssetRequest struct {
	Name    string `json:"name"`
	BlobURL string `json:"blobUrl"`
}

type updateAssetRequest struct {
	Name        string `json:"name,omitempty"`
	AlternateID string `json:"alternateId"`
}

func (c *Client) GetAsset(ctx context.Context, id string) (*entities.Asset, error) {
	var asset entities.Asset
	if err := c.do(ctx, fiber.MethodGet, "/assets/"+escape(id), nil, nil, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (c *Client) CreateAssetFromBlob(ctx context.Context, name, blobURL string) (*entities.Asset, error) {
	var asset entities.Asset
	req := createAssetRequest{Name: name, BlobURL: blobURL}
	if err := c.do(ctx, fiber.MethodPost, "/assets", nil, req, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (c *Client) UpdateAsset(ctx context.Context, asset *entities.Asset) error {
	req := updateAssetRequest{Name: asset.Name, AlternateID: asset.AlternateID}
	return c.do(ctx, fiber.MethodPatch, "/assets/"+escape(asset.ID), nil, req, nil)
}

func (c *Client) DeleteAsset(ctx context.Context, id string) error {
	return c.do(ctx, fiber.MethodDelete, "/assets/"+escape(id), nil, nil, nil)
}

// GetAssetMetadata returns one entry per bitrate variant. An encode that has
// not produced metadata yet answers with an empty list.
func (c *Client) GetAssetMetadata(ctx context.Context, id string) ([]entities.AssetFileMetadata, error) {
	var files []entities.AssetFileMetadata
	if err := c.do(ctx, fiber.MethodGet, "/assets/"+escape(id)+"/metadata", nil, nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// StreamingURL is the path of the asset's on-demand origin locator.
func (c *Client) StreamingURL(ctx context.Context, id string) (string, error) {
	var locators []entities.Locator
	if err := c.do(ctx, fiber.MethodGet, "/assets/"+escape(id)+"/locators", nil, nil, &locators); err != nil {
		return "", err
	}
	for _, l := range locators {
		if l.Type == entities.LocatorOnDemandOrigin && l.Path != "" {
			return l.Path, nil
		}
	}
	return "", fmt.Errorf("asset %s has no streaming locator: %w", id, repositories.ErrNotFound)
}

type createLocatorRequest struct {
	AssetID        string                    `json:"assetId"`
	Type           entities.LocatorType      `json:"type"`
	Permissions    entities.AccessPermission `json:"permissions"`
	ExpirationTime time.Time                 `json:"expirationDateTime"`
}

func (c *Client) CreateLocator(ctx context.Context, assetID string, permissions entities.AccessPermission, duration time.Duration) (*entities.Locator, error) {
	req := createLocatorRequest{
		AssetID:        assetID,
		Type:           entities.LocatorOnDemandOrigin,
		Permissions:    permissions,
		ExpirationTime: time.Now().UTC().Add(duration),
	}
	var locator entities.Locator
	if err := c.do(ctx, fiber.MethodPost, "/locators", nil, req, &locator); err != nil {
		return nil, err
	}
	return &locator, nil
}
