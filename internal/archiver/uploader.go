package archiver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pixicode/aws-cloud-archiver/internal/metrics"
	"github.com/pixicode/aws-cloud-archiver/internal/models"
)

const defaultUploadConcurrency = 4

// BlobStore is the remote object store archived files are offloaded to.
type BlobStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, key, localPath string) error
}

type UploadSummary struct {
	Bucket        string
	Uploaded      []string
	Failed        []string
	UploadedBytes int64
	Success       bool
}

type Uploader struct {
	store   BlobStore
	bucket  string
	logger  *slog.Logger
	metrics *metrics.Metrics

	// Concurrency bounds the number of uploads in flight.
	Concurrency int
	// Timeout bounds each individual upload. Zero means no limit.
	Timeout time.Duration
}

func NewUploader(store BlobStore, bucket string, logger *slog.Logger, m *metrics.Metrics) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{
		store:       store,
		bucket:      bucket,
		logger:      logger,
		metrics:     m,
		Concurrency: defaultUploadConcurrency,
	}
}

// UploadAll pushes every item to <archiveName>/<relativeKey>. Every item is
// attempted even after a failure; the batch only succeeds if all uploads do.
// Local files are left where they are regardless of the outcome.
func (u *Uploader) UploadAll(ctx context.Context, archiveName string, items []models.ArchiveItem) (*UploadSummary, error) {
	summary := &UploadSummary{Bucket: u.bucket}
	if len(items) == 0 {
		summary.Success = true
		return summary, nil
	}
	if u.store == nil {
		return summary, errors.New("no blob store configured")
	}

	if err := u.store.EnsureBucket(ctx, u.bucket); err != nil {
		u.logger.Error("failed to ensure bucket", "bucket", u.bucket, "error", err)
		for _, item := range items {
			summary.Failed = append(summary.Failed, RemoteKey(archiveName, item.RelativeKey))
		}
		return summary, fmt.Errorf("failed to ensure bucket %s: %w", u.bucket, err)
	}

	limit := u.Concurrency
	if limit <= 0 {
		limit = defaultUploadConcurrency
	}

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(limit)

	for _, item := range items {
		g.Go(func() error {
			key := RemoteKey(archiveName, item.RelativeKey)
			err := u.put(ctx, key, item.FinalPath)

			mu.Lock()
			defer mu.Unlock()

			u.metrics.ObserveUpload(err == nil, item.Size)
			if err != nil {
				u.logger.Error("upload failed", "key", key, "path", item.FinalPath, "error", err)
				summary.Failed = append(summary.Failed, key)
				errs = append(errs, &UploadError{Key: key, LocalPath: item.FinalPath, Err: err})
				return nil
			}
			u.logger.Debug("uploaded file", "key", key, "bytes", item.Size)
			summary.Uploaded = append(summary.Uploaded, key)
			summary.UploadedBytes += item.Size
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(summary.Uploaded)
	sort.Strings(summary.Failed)
	summary.Success = len(errs) == 0

	u.logger.Info("upload finished",
		"bucket", u.bucket,
		"uploaded", len(summary.Uploaded),
		"failed", len(summary.Failed))

	return summary, errors.Join(errs...)
}

func (u *Uploader) put(ctx context.Context, key, localPath string) error {
	if u.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.Timeout)
		defer cancel()
	}
	return u.store.PutObject(ctx, u.bucket, key, localPath)
}
