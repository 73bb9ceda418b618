package routers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"media-pipeline/internal/delivery/http/handlers"
	"media-pipeline/internal/domain/entities"
	"media-pipeline/internal/infrastructure/queue"
	"media-pipeline/internal/pkg/config"
	"media-pipeline/internal/testsupport/mediafake"
	"media-pipeline/internal/testsupport/stagingfake"
	"media-pipeline/internal/usecases"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const testKey = "s3cret"

type testEnv struct {
	app     *fiber.App
	media   *mediafake.Platform
	staging *stagingfake.Storage
}

func newTestEnv(t *testing.T, functionKey string) *testEnv {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{FunctionKey: functionKey},
		Queue:  config.QueueConfig{EncodeJobs: "encode-jobs", NotificationEndpointName: "encode-jobs-endpoint"},
		Encoding: config.EncodingConfig{
			ProcessorName: "Media Encoder Standard",
			PresetName:    "Adaptive Streaming",
		},
		Token: config.TokenConfig{PrimaryVerificationKey: base64.StdEncoding.EncodeToString([]byte("verification-key-verification-key"))},
	}
	logger := zap.NewNop()

	media := mediafake.New()
	media.Processors = []entities.MediaProcessor{{ID: "mp-1", Name: "Media Encoder Standard", Version: "1.0"}}
	staging := stagingfake.New()
	broker := queue.NewMemoryBroker(0)

	tokens, err := usecases.NewTokenService(cfg.Token)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	app := fiber.New()
	SetupRoutes(app, cfg, Handlers{
		Ingest: handlers.NewIngestHandler(usecases.NewIngestService(staging, nil, logger)),
		Job: handlers.NewJobHandler(
			usecases.NewEncodeService(media, staging, cfg.Encoding, cfg.Queue, logger),
			usecases.NewJobStatusService(media, broker, cfg.Queue, "", logger),
		),
		Token: handlers.NewTokenHandler(tokens),
	})
	return &testEnv{app: app, media: media, staging: staging}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	var out map[string]any
	_ = json.Unmarshal(body, &out)
	return resp.StatusCode, out
}

func postJSON(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestFunctionKeyRequired(t *testing.T) {
	env := newTestEnv(t, testKey)
	job := env.media.AddJob(entities.Job{State: entities.JobStateFinished})
	body := `{"JobId":"` + job.ID + `"}`

	status, out := env.do(t, postJSON("/api/check-job-status", body))
	if status != http.StatusUnauthorized || out["error"] != "Unauthorized" {
		t.Fatalf("no key: %d %v", status, out)
	}

	req := postJSON("/api/check-job-status", body)
	req.Header.Set("x-functions-key", "wrong")
	if status, _ := env.do(t, req); status != http.StatusUnauthorized {
		t.Fatalf("wrong key: status %d", status)
	}

	req = postJSON("/api/check-job-status", body)
	req.Header.Set("x-functions-key", testKey)
	if status, out := env.do(t, req); status != http.StatusOK || out["jobState"] != "Finished" {
		t.Fatalf("header key: %d %v", status, out)
	}

	if status, _ := env.do(t, postJSON("/api/check-job-status?code="+testKey, body)); status != http.StatusOK {
		t.Fatalf("query code: status %d", status)
	}
}

func TestFunctionKeyDisabledWhenEmpty(t *testing.T) {
	env := newTestEnv(t, "")
	job := env.media.AddJob(entities.Job{State: entities.JobStateError})

	status, out := env.do(t, postJSON("/api/check-job-status", `{"JobId":"`+job.ID+`"}`))
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %v", status, out)
	}
	if out["isSuccessful"] != false || out["isRunning"] != false {
		t.Fatalf("flags = %v", out)
	}
}

func TestTokenRouteIsAnonymous(t *testing.T) {
	env := newTestEnv(t, testKey)
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		resp, err := env.app.Test(httptest.NewRequest(method, "/api/content-protection-token", nil), -1)
		if err != nil {
			t.Fatalf("%s: %v", method, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status = %d", method, resp.StatusCode)
		}
		var token string
		if err := json.Unmarshal(body, &token); err != nil || strings.Count(token, ".") != 2 {
			t.Fatalf("%s body = %s, want a JSON string JWT", method, body)
		}
	}
}

func TestErrorShapes(t *testing.T) {
	env := newTestEnv(t, "")
	asset := env.media.AddAsset(entities.Asset{Name: "clip"})

	tests := []struct {
		name   string
		target string
		body   string
		setup  func()
		status int
		key    string
		want   string
	}{
		{"missing job id", "/api/check-job-status", `{}`, nil, 400, "error", "Please pass the job ID in the input object (JobId)"},
		{"bad json", "/api/check-job-status", `{`, nil, 400, "error", ""},
		{"unknown job", "/api/check-job-status", `{"JobId":"nope"}`, nil, 500, "error", "Job not found"},
		{"missing asset id", "/api/submit-job", `{"MesPreset":"x"}`, nil, 400, "error", "Please pass asset ID in the input object (assetId)"},
		{"unknown asset", "/api/submit-job", `{"AssetId":"nope","MesPreset":"x"}`, nil, 400, "error", "Asset not found"},
		{"media failure", "/api/submit-job", `{"AssetId":"` + asset.ID + `","MesPreset":"x"}`, func() {
			env.media.Errors["SubmitJob"] = errors.New("quota exceeded")
		}, 500, "Error", "quota exceeded"},
		{"missing source", "/api/import-external", `{}`, nil, 400, "error", "The body parameter `source` is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			status, out := env.do(t, postJSON(tt.target, tt.body))
			if status != tt.status {
				t.Fatalf("status = %d, want %d (body %v)", status, tt.status, out)
			}
			got, ok := out[tt.key].(string)
			if !ok {
				t.Fatalf("body %v has no %q", out, tt.key)
			}
			if tt.want != "" && got != tt.want {
				t.Fatalf("%s = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestSubmitJobResponse(t *testing.T) {
	env := newTestEnv(t, "")
	asset := env.media.AddAsset(entities.Asset{Name: "clip"})

	status, out := env.do(t, postJSON("/api/submit-job", `{"AssetId":"`+asset.ID+`","MesPreset":"Adaptive Streaming"}`))
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %v", status, out)
	}
	if out["JobId"] == "" {
		t.Fatalf("JobId missing: %v", out)
	}
	mes, _ := out["Mes"].(map[string]any)
	if mes["TaskId"] == nil || mes["AssetId"] == nil {
		t.Fatalf("Mes = %v", mes)
	}
	ocr, _ := out["Ocr"].(map[string]any)
	if ocr["TaskId"] != nil {
		t.Fatalf("Ocr = %v, want nulls", ocr)
	}
}

func TestImportExternal(t *testing.T) {
	env := newTestEnv(t, "")
	status, out := env.do(t, postJSON("/api/import-external", `{"source":"https://cdn.example.test/a/clip.mp4"}`))
	if status != http.StatusOK || out["name"] != "clip.mp4" {
		t.Fatalf("status %d body %v", status, out)
	}
	if env.staging.Copies["clip.mp4"] != "https://cdn.example.test/a/clip.mp4" {
		t.Fatalf("copies = %v", env.staging.Copies)
	}
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "clip.mp4")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("video bytes"))
	mw.WriteField("id", "video123")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/ingest/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	status, out := env.do(t, req)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %v", status, out)
	}
	name, _ := out["name"].(string)
	if !strings.HasPrefix(name, "video123-") || !strings.HasSuffix(name, ".mp4") {
		t.Fatalf("name = %q", name)
	}
	if data, ok := env.staging.Content(name); !ok || string(data) != "video bytes" {
		t.Fatalf("stored = %q", data)
	}

	status, out = env.do(t, postJSON("/api/ingest/upload", `{}`))
	if status != http.StatusBadRequest {
		t.Fatalf("no file: status %d body %v", status, out)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, testKey)
	status, out := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	if status != http.StatusOK || out["status"] != "ok" {
		t.Fatalf("health = %d %v", status, out)
	}
}
