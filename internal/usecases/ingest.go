package usecases

import (
	"context"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"media-pipeline/internal/domain/dto"
	"media-pipeline/internal/domain/repositories"
	"media-pipeline/internal/infrastructure/metrics"
	consts "media-pipeline/pkg/constants"
	"media-pipeline/pkg/errors"
	"media-pipeline/pkg/file"
	"media-pipeline/pkg/helper"

	"go.uber.org/zap"
)

type IngestService interface {
	ImportExternal(ctx context.Context, req *dto.ImportExternalRequest) (*dto.IngestResponse, error)
	Upload(ctx context.Context, req *dto.UploadRequest, content io.ReadSeeker) (*dto.IngestResponse, error)
}

type ingestService struct {
	staging   repositories.StagingStorage
	presigner repositories.SourcePresigner
	logger    *zap.Logger
}

func NewIngestService(staging repositories.StagingStorage, presigner repositories.SourcePresigner, logger *zap.Logger) IngestService {
	return &ingestService{
		staging:   staging,
		presigner: presigner,
		logger:    logger,
	}
}

func (s *ingestService) ImportExternal(ctx context.Context, req *dto.ImportExternalRequest) (*dto.IngestResponse, error) {
	if req == nil || strings.TrimSpace(req.Source) == "" {
		return nil, errors.ErrValidation("The body parameter `source` is required")
	}
	source, err := helper.ParseSourceURL(req.Source)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	name := blobNameFor(strings.TrimSpace(req.ID), source.Path)
	if name == "" {
		return nil, errors.ErrValidation("The body parameter `id` is required when the source has no file name")
	}

	copyURL := source.String()
	if strings.EqualFold(source.Scheme, "s3") {
		key := strings.TrimPrefix(source.Path, "/")
		copyURL, err = s.presigner.PresignGet(ctx, source.Host, key, consts.SourcePresignTTL)
		if err != nil {
			return nil, errors.ErrInternal(err)
		}
	}

	if err := s.staging.StartCopy(ctx, copyURL, name); err != nil {
		return nil, errors.ErrInternal(err)
	}

	metrics.IngestRequests.WithLabelValues("import").Inc()
	s.logger.Info("staging copy started", zap.String("blob", name), zap.String("scheme", source.Scheme))
	return &dto.IngestResponse{Name: name}, nil
}

func (s *ingestService) Upload(ctx context.Context, req *dto.UploadRequest, content io.ReadSeeker) (*dto.IngestResponse, error) {
	if req == nil || content == nil || strings.TrimSpace(req.Filename) == "" {
		return nil, errors.ErrValidation("The form field `file` is required")
	}

	if req.SHA256 != "" {
		if err := file.ValidateHash(content, req.SHA256); err != nil {
			return nil, errors.ErrValidation(err.Error())
		}
		if _, err := content.Seek(0, io.SeekStart); err != nil {
			return nil, errors.ErrInternal(err)
		}
	}

	name := blobNameFor(strings.TrimSpace(req.ID), req.Filename)
	if name == "" {
		return nil, errors.ErrValidation("The form field `file` has no file name")
	}
	if !file.IsVideoFile(name) {
		s.logger.Warn("uploaded file does not look like a video", zap.String("blob", name))
	}

	contentType := req.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = helper.GetMimeTypeFromExtension(name)
	}
	if err := s.staging.Put(ctx, name, content, req.Size, contentType); err != nil {
		return nil, errors.ErrInternal(err)
	}

	metrics.IngestRequests.WithLabelValues("upload").Inc()
	s.logger.Info("file uploaded to staging", zap.String("blob", name), zap.Int64("size", req.Size))
	return &dto.IngestResponse{Name: name}, nil
}

// blobNameFor is "<id>-<uuid><ext>" when an id is given, otherwise the last
// segment of the source path.
func blobNameFor(id, sourcePath string) string {
	base := path.Base(filepath.ToSlash(sourcePath))
	if unescaped, err := url.PathUnescape(base); err == nil {
		base = unescaped
	}
	if base == "." || base == "/" {
		base = ""
	}

	if id != "" {
		return file.MakeBlobName(id, path.Ext(base))
	}
	return base
}
