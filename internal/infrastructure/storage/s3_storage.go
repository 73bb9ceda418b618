package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"media-pipeline/internal/domain/entities"
	"media-pipeline/internal/domain/repositories"
	"media-pipeline/internal/pkg/config"
	consts "media-pipeline/pkg/constants"
	"media-pipeline/pkg/helper"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

const (
	copyErrorMetadataKey = "copy-error"

	sourceHeaderTimeout = 30 * time.Second
	markFailedTimeout   = 10 * time.Second
)

// S3Storage is the staging container. Objects carry a copy-status metadata
// entry while a remote copy is in flight.
type S3Storage struct {
	client      *s3.Client
	presign     *s3.PresignClient
	bucketName  string
	httpClient  *http.Client
	copyTimeout time.Duration
	logger      *zap.Logger

	copies       sync.WaitGroup
	copyCtx      context.Context
	cancelCopies context.CancelFunc

	// listed remembers HEAD results between scans, keyed by object name.
	listedMu sync.Mutex
	listed   map[string]listedBlob
}

type listedBlob struct {
	etag     string
	modified time.Time
	blob     entities.StagedBlob
}

func NewS3Storage(ctx context.Context, cfg config.StagingConfig, logger *zap.Logger) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("AWS config yüklenemedi: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = sourceHeaderTimeout

	copyCtx, cancelCopies := context.WithCancel(context.Background())
	return &S3Storage{
		client:       client,
		presign:      s3.NewPresignClient(client),
		bucketName:   cfg.Bucket,
		httpClient:   &http.Client{Transport: transport},
		copyTimeout:  cfg.CopyTimeout,
		logger:       logger,
		copyCtx:      copyCtx,
		cancelCopies: cancelCopies,
		listed:       make(map[string]listedBlob),
	}, nil
}

var _ repositories.StagingStorage = (*S3Storage)(nil)

func (s *S3Storage) Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) error {
	return s.putWithStatus(ctx, name, body, size, contentType, entities.CopyStatusSuccess, "")
}

func (s *S3Storage) putWithStatus(ctx context.Context, name string, body io.Reader, size int64, contentType string, status entities.CopyStatus, copyErr string) error {
	if contentType == "" {
		contentType = helper.GetMimeTypeFromExtension(name)
	}
	metadata := map[string]string{consts.CopyStatusMetadataKey: string(status)}
	if copyErr != "" {
		// User metadata travels as a header and must stay ASCII.
		metadata[copyErrorMetadataKey] = strings.Trim(strconv.QuoteToASCII(copyErr), `"`)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(name),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		Metadata:      metadata,
	})
	if err != nil {
		return fmt.Errorf("S3 upload hatası: %w", err)
	}
	return nil
}

// StartCopy writes a pending placeholder and copies the source in the
// background. The placeholder is overwritten with the content on success or
// marked failed otherwise. A copy that outlives the copy timeout fails.
func (s *S3Storage) StartCopy(ctx context.Context, sourceURL, name string) error {
	if err := s.putWithStatus(ctx, name, strings.NewReader(""), 0, "", entities.CopyStatusPending, ""); err != nil {
		return err
	}

	s.copies.Add(1)
	go func() {
		defer s.copies.Done()
		log := s.logger.With(zap.String("blob", name))

		ctx, cancel := s.copyContext()
		defer cancel()
		if err := s.copy(ctx, sourceURL, name); err != nil {
			log.Error("staging copy failed", zap.Error(err))
			markCtx, markCancel := context.WithTimeout(context.WithoutCancel(ctx), markFailedTimeout)
			defer markCancel()
			if markErr := s.putWithStatus(markCtx, name, strings.NewReader(""), 0, "", entities.CopyStatusFailed, err.Error()); markErr != nil {
				log.Error("failed to mark staging copy as failed", zap.Error(markErr))
			}
			return
		}
		log.Info("staging copy completed")
	}()
	return nil
}

func (s *S3Storage) copyContext() (context.Context, context.CancelFunc) {
	if s.copyTimeout > 0 {
		return context.WithTimeout(s.copyCtx, s.copyTimeout)
	}
	return context.WithCancel(s.copyCtx)
}

func (s *S3Storage) copy(ctx context.Context, sourceURL, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("source download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("source download failed: %s", resp.Status)
	}

	// Spool to disk so PutObject gets a seekable body with a known length.
	tmpFile, err := os.CreateTemp("", "staging-copy-*")
	if err != nil {
		return fmt.Errorf("geçici dosya oluşturulamadı: %w", err)
	}
	defer func() {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
	}()

	size, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		return fmt.Errorf("source dosyası kopyalanamadı: %w", err)
	}
	if _, err := tmpFile.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("dosya başına alınamadı: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = helper.GetMimeTypeFromExtension(name)
	}
	return s.putWithStatus(ctx, name, tmpFile, size, contentType, entities.CopyStatusSuccess, "")
}

// Wait blocks until background copies have finished. Copies still running
// when ctx ends are cancelled and marked failed.
func (s *S3Storage) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.copies.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("cancelling unfinished staging copies")
		s.cancelCopies()
		<-done
	}
}

// List returns the blobs at the top level of the container. Poisoned blobs
// sit under a prefix and are folded away by the delimiter.
func (s *S3Storage) List(ctx context.Context) ([]entities.StagedBlob, error) {
	s.listedMu.Lock()
	prev := s.listed
	s.listedMu.Unlock()

	var blobs []entities.StagedBlob
	next := make(map[string]listedBlob, len(prev))

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucketName),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("staging list failed: %w", err)
		}
		for _, obj := range page.Contents {
			name := aws.ToString(obj.Key)
			if strings.HasPrefix(name, consts.StagingPoisonPrefix) {
				continue
			}
			etag, modified := aws.ToString(obj.ETag), aws.ToTime(obj.LastModified)

			// Listing carries no user metadata; the copy marker needs a HEAD,
			// unless the object is unchanged since the last scan.
			if c, ok := prev[name]; ok && c.etag == etag && c.modified.Equal(modified) {
				next[name] = c
				blobs = append(blobs, c.blob)
				continue
			}
			blob, err := s.Stat(ctx, name)
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			next[name] = listedBlob{etag: etag, modified: modified, blob: *blob}
			blobs = append(blobs, *blob)
		}
	}

	s.listedMu.Lock()
	s.listed = next
	s.listedMu.Unlock()
	return blobs, nil
}

func (s *S3Storage) Stat(ctx context.Context, name string) (*entities.StagedBlob, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(name),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("staging head %s failed: %w", name, err)
	}

	return &entities.StagedBlob{
		Name:        name,
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
		CopyStatus:  entities.CopyStatus(out.Metadata[consts.CopyStatusMetadataKey]),
	}, nil
}

func (s *S3Storage) PresignGet(ctx context.Context, name string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(name),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("staging presign %s failed: %w", name, err)
	}
	return req.URL, nil
}

func (s *S3Storage) DeleteIfExists(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("staging delete %s failed: %w", name, err)
	}
	return nil
}

// RecordFailure bumps the encode-attempts tag. Tags are rewritten in place, so
// large mezzanines are never copied just to count.
func (s *S3Storage) RecordFailure(ctx context.Context, name string) (int, error) {
	out, err := s.client.GetObjectTagging(ctx, &s3.GetObjectTaggingInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(name),
	})
	if err != nil {
		return 0, fmt.Errorf("staging tags %s failed: %w", name, err)
	}

	attempts := 0
	tags := make([]types.Tag, 0, len(out.TagSet)+1)
	for _, tag := range out.TagSet {
		if aws.ToString(tag.Key) == consts.EncodeAttemptsTagKey {
			attempts, _ = strconv.Atoi(aws.ToString(tag.Value))
			continue
		}
		tags = append(tags, tag)
	}
	attempts++
	tags = append(tags, types.Tag{
		Key:   aws.String(consts.EncodeAttemptsTagKey),
		Value: aws.String(strconv.Itoa(attempts)),
	})

	_, err = s.client.PutObjectTagging(ctx, &s3.PutObjectTaggingInput{
		Bucket:  aws.String(s.bucketName),
		Key:     aws.String(name),
		Tagging: &types.Tagging{TagSet: tags},
	})
	if err != nil {
		return 0, fmt.Errorf("staging tag %s failed: %w", name, err)
	}
	return attempts, nil
}

// MoveToPoison copies the blob under the poison prefix and removes the
// original.
func (s *S3Storage) MoveToPoison(ctx context.Context, name string) error {
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucketName),
		Key:        aws.String(consts.StagingPoisonPrefix + name),
		CopySource: aws.String(s.bucketName + "/" + url.PathEscape(name)),
	})
	if err != nil {
		return fmt.Errorf("staging poison copy %s failed: %w", name, err)
	}
	return s.DeleteIfExists(ctx, name)
}
