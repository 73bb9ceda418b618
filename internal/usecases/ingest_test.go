package usecases

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"regexp"
	"testing"
	"time"

	"media-pipeline/internal/domain/dto"
	"media-pipeline/internal/testsupport/stagingfake"
	pkgerrors "media-pipeline/pkg/errors"
)

type fakePresigner struct {
	bucket, key string
	ttl         time.Duration
}

func (f *fakePresigner) PresignGet(_ context.Context, bucket, key string, ttl time.Duration) (string, error) {
	f.bucket, f.key, f.ttl = bucket, key, ttl
	return "https://" + bucket + ".s3.example.test/" + key + "?X-Amz-Signature=abc", nil
}

var generatedName = regexp.MustCompile(`^video123-[0-9a-f-]{36}\.mp4$`)

func TestImportExternalNaming(t *testing.T) {
	tests := []struct {
		name   string
		req    dto.ImportExternalRequest
		want   string
		wantRe *regexp.Regexp
	}{
		{"source file name", dto.ImportExternalRequest{Source: "https://cdn.example.test/media/My%20Clip.mp4?x=1"}, "My Clip.mp4", nil},
		{"id given", dto.ImportExternalRequest{Source: "https://cdn.example.test/media/original.mp4", ID: "video123"}, "", generatedName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			staging := stagingfake.New()
			svc := NewIngestService(staging, &fakePresigner{}, nopLogger())

			resp, err := svc.ImportExternal(context.Background(), &tt.req)
			if err != nil {
				t.Fatalf("ImportExternal: %v", err)
			}
			if tt.wantRe != nil {
				if !tt.wantRe.MatchString(resp.Name) {
					t.Fatalf("name = %q, want match %s", resp.Name, tt.wantRe)
				}
			} else if resp.Name != tt.want {
				t.Fatalf("name = %q, want %q", resp.Name, tt.want)
			}
			if got := staging.Copies[resp.Name]; got != tt.req.Source {
				t.Fatalf("copy source = %q, want %q", got, tt.req.Source)
			}
			blob, err := staging.Stat(context.Background(), resp.Name)
			if err != nil || blob.IsComplete() {
				t.Fatalf("blob = %+v, %v; want pending", blob, err)
			}
		})
	}
}

func TestImportExternalS3SourceIsPresigned(t *testing.T) {
	staging := stagingfake.New()
	presigner := &fakePresigner{}
	svc := NewIngestService(staging, presigner, nopLogger())

	resp, err := svc.ImportExternal(context.Background(), &dto.ImportExternalRequest{Source: "s3://raw-bucket/uploads/clip.mov"})
	if err != nil {
		t.Fatalf("ImportExternal: %v", err)
	}
	if resp.Name != "clip.mov" {
		t.Fatalf("name = %q", resp.Name)
	}
	if presigner.bucket != "raw-bucket" || presigner.key != "uploads/clip.mov" {
		t.Fatalf("presigned %s/%s", presigner.bucket, presigner.key)
	}
	if presigner.ttl != 30*time.Minute {
		t.Fatalf("ttl = %v, want 30m", presigner.ttl)
	}
	if got := staging.Copies["clip.mov"]; got != "https://raw-bucket.s3.example.test/uploads/clip.mov?X-Amz-Signature=abc" {
		t.Fatalf("copy source = %q", got)
	}
}

func TestImportExternalValidation(t *testing.T) {
	svc := NewIngestService(stagingfake.New(), &fakePresigner{}, nopLogger())

	for _, req := range []*dto.ImportExternalRequest{
		{},
		{Source: "ftp://host/file.mp4"},
		{Source: "not a url"},
		{Source: "https://host/"},
	} {
		_, err := svc.ImportExternal(context.Background(), req)
		var pe *pkgerrors.PipelineError
		if !stderrors.As(err, &pe) || pe.Code != pkgerrors.CodeValidation {
			t.Fatalf("ImportExternal(%q) err = %v, want validation error", req.Source, err)
		}
	}
}

func TestUpload(t *testing.T) {
	content := []byte("fake video bytes")
	sum := sha256.Sum256(content)
	staging := stagingfake.New()
	svc := NewIngestService(staging, &fakePresigner{}, nopLogger())

	resp, err := svc.Upload(context.Background(), &dto.UploadRequest{
		ID:       "video123",
		Filename: "clip.mp4",
		Size:     int64(len(content)),
		SHA256:   hex.EncodeToString(sum[:]),
	}, bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !generatedName.MatchString(resp.Name) {
		t.Fatalf("name = %q", resp.Name)
	}
	got, ok := staging.Content(resp.Name)
	if !ok || !bytes.Equal(got, content) {
		t.Fatalf("stored content = %q, want %q", got, content)
	}
	blob, err := staging.Stat(context.Background(), resp.Name)
	if err != nil || !blob.IsComplete() || blob.ContentType != "video/mp4" {
		t.Fatalf("blob = %+v, %v", blob, err)
	}
}

func TestUploadHashMismatch(t *testing.T) {
	staging := stagingfake.New()
	svc := NewIngestService(staging, &fakePresigner{}, nopLogger())

	_, err := svc.Upload(context.Background(), &dto.UploadRequest{Filename: "clip.mp4", SHA256: "00"}, bytes.NewReader([]byte("data")))
	var pe *pkgerrors.PipelineError
	if !stderrors.As(err, &pe) || pe.Code != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
	if blobs, _ := staging.List(context.Background()); len(blobs) != 0 {
		t.Fatalf("blobs stored on hash mismatch: %v", blobs)
	}
}
