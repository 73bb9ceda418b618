package usecases

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"media-pipeline/internal/domain/dto"
	"media-pipeline/internal/domain/entities"
	"media-pipeline/internal/infrastructure/queue"
	"media-pipeline/internal/pkg/config"
	"media-pipeline/internal/testsupport/mediafake"

	"go.uber.org/zap"
)

func testQueues() config.QueueConfig {
	return config.QueueConfig{
		EncodeJobs:               "encode-jobs",
		ContentProtection:        "content-protection",
		Publish:                  "publish",
		UpdateCMS:                "update-cms",
		NotificationEndpointName: "encode-jobs-endpoint",
	}
}

func testEncoding() config.EncodingConfig {
	return config.EncodingConfig{
		ProcessorName: "Media Encoder Standard",
		PresetName:    "Adaptive Streaming",
		PresetsDir:    "presets",
	}
}

func testProtection() config.ProtectionConfig {
	return config.ProtectionConfig{
		CommonEncryptionAuthPolicy:         "cenc-auth",
		CommonEncryptionDeliveryPolicy:     "cenc-delivery",
		CommonEncryptionCbcsAuthPolicy:     "cbcs-auth",
		CommonEncryptionCbcsDeliveryPolicy: "cbcs-delivery",
	}
}

func newTestPlatform() *mediafake.Platform {
	p := mediafake.New()
	p.Processors = []entities.MediaProcessor{
		{ID: "mp-1", Name: "Media Encoder Standard", Version: "1.2"},
		{ID: "mp-2", Name: "Media Encoder Standard", Version: "1.10"},
		{ID: "mp-3", Name: "Media Encoder Standard", Version: "1.9"},
	}
	return p
}

func newTestBroker() *queue.MemoryBroker {
	return queue.NewMemoryBroker(10 * time.Millisecond)
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}

func decodeUpdate(t *testing.T, body []byte) dto.UpdateReferenceMessage {
	t.Helper()
	var msg dto.UpdateReferenceMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		t.Fatalf("decode update-cms message: %v", err)
	}
	return msg
}

// recordingCMS captures every record posted to the CMS.
type recordingCMS struct {
	mu     sync.Mutex
	status int
	err    error
	posted []dto.CMSReference
}

func (r *recordingCMS) Notify(_ context.Context, ref dto.CMSReference) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.posted = append(r.posted, ref)
	if r.status == 0 {
		return 200, nil
	}
	return r.status, nil
}

func (r *recordingCMS) Posted() []dto.CMSReference {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]dto.CMSReference(nil), r.posted...)
}
