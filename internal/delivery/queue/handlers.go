package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"media-pipeline/internal/domain/dto"
	infraqueue "media-pipeline/internal/infrastructure/queue"
	"media-pipeline/internal/pkg/config"
	"media-pipeline/internal/usecases"
)

// Handlers decode queue messages at the boundary and hand them to the
// matching usecase. Malformed messages go straight to the poison queue.
type Handlers struct {
	jobStatus  usecases.JobStatusService
	protection usecases.ContentProtectionService
	publish    usecases.PublishService
	cms        usecases.CMSService
	queues     config.QueueConfig
}

func NewHandlers(jobStatus usecases.JobStatusService, protection usecases.ContentProtectionService, publish usecases.PublishService, cms usecases.CMSService, queues config.QueueConfig) *Handlers {
	return &Handlers{
		jobStatus:  jobStatus,
		protection: protection,
		publish:    publish,
		cms:        cms,
		queues:     queues,
	}
}

func (h *Handlers) Register(pool *infraqueue.WorkerPool) {
	pool.Handle(h.queues.EncodeJobs, h.JobStateChanged)
	pool.Handle(h.queues.ContentProtection, h.ContentProtection)
	pool.Handle(h.queues.Publish, h.Publish)
	pool.Handle(h.queues.UpdateCMS, h.UpdateCMS)
}

func (h *Handlers) JobStateChanged(ctx context.Context, body []byte) error {
	var msg dto.JobStateChangeMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return infraqueue.Permanent(fmt.Errorf("decode job state change: %w", err))
	}
	if err := msg.Validate(); err != nil {
		return infraqueue.Permanent(err)
	}
	return h.jobStatus.HandleJobStateChange(ctx, &msg)
}

func (h *Handlers) ContentProtection(ctx context.Context, body []byte) error {
	assetID, err := DecodeAssetID(body)
	if err != nil {
		return infraqueue.Permanent(err)
	}
	return h.protection.AddContentProtection(ctx, assetID)
}

func (h *Handlers) Publish(ctx context.Context, body []byte) error {
	assetID, err := DecodeAssetID(body)
	if err != nil {
		return infraqueue.Permanent(err)
	}
	return h.publish.PublishAsset(ctx, assetID)
}

func (h *Handlers) UpdateCMS(ctx context.Context, body []byte) error {
	var msg dto.UpdateReferenceMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return infraqueue.Permanent(fmt.Errorf("decode update reference: %w", err))
	}
	if err := msg.Validate(); err != nil {
		return infraqueue.Permanent(err)
	}
	return h.cms.NotifyCMS(ctx, &msg)
}

// DecodeAssetID accepts a bare asset id or a JSON string.
func DecodeAssetID(body []byte) (string, error) {
	raw := strings.TrimSpace(string(body))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return "", fmt.Errorf("decode asset id: %w", err)
		}
		raw = strings.TrimSpace(s)
	}
	if raw == "" {
		return "", fmt.Errorf("asset id message is empty")
	}
	return raw, nil
}
