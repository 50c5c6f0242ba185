package archiver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pixicode/aws-cloud-archiver/internal/models"
	"github.com/pixicode/aws-cloud-archiver/pkg/utils"
)

// ReconcileStore is a BlobStore that can also report whether a key exists.
type ReconcileStore interface {
	BlobStore
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)
}

// Reconciler re-uploads archived files whose remote copy is missing, closing
// the gap left by a run whose upload stage failed.
type Reconciler struct {
	store  ReconcileStore
	bucket string
	logger *slog.Logger
}

func NewReconciler(store ReconcileStore, bucket string, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, bucket: bucket, logger: logger}
}

// Reconcile reads the manifest archiveName left under archiveRoot and makes
// sure every file it lists exists remotely as <archiveName>/<relative key>.
// Files archived by other runs sharing the archive root are never touched.
// A non-empty prefix limits the check to keys beneath it.
func (r *Reconciler) Reconcile(ctx context.Context, archiveName, archiveRoot, prefix string) (*models.ReconcileResult, error) {
	startTime := time.Now()
	result := &models.ReconcileResult{
		ArchiveName:   archiveName,
		ArchiveRoot:   archiveRoot,
		BucketName:    r.bucket,
		Uploaded:      []string{},
		OperationTime: utils.FormatTime(startTime),
	}

	keys, err := ReadManifest(archiveRoot, archiveName)
	if err != nil {
		return result, err
	}
	keys = filterPrefix(keys, prefix)
	if prefix != "" && len(keys) == 0 {
		return result, fmt.Errorf("no files of %s recorded under prefix %s", archiveName, prefix)
	}

	if err := r.store.EnsureBucket(ctx, r.bucket); err != nil {
		return result, fmt.Errorf("failed to ensure bucket %s: %w", r.bucket, err)
	}

	var errs []error
	for _, relKey := range keys {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		key := RemoteKey(archiveName, relKey)
		localPath := filepath.Join(archiveRoot, relKey)
		result.Checked++

		fail := func(err error) {
			result.Failed = append(result.Failed, key)
			errs = append(errs, &UploadError{Key: key, LocalPath: localPath, Err: err})
		}

		exists, err := r.store.ObjectExists(ctx, r.bucket, key)
		if err != nil {
			r.logger.Error("failed to check object", "key", key, "error", err)
			fail(err)
			continue
		}
		if exists {
			result.AlreadyPresent++
			continue
		}

		if _, err := os.Stat(localPath); err != nil {
			r.logger.Error("archived file missing locally", "path", localPath, "error", err)
			fail(err)
			continue
		}
		if err := r.store.PutObject(ctx, r.bucket, key, localPath); err != nil {
			r.logger.Error("failed to re-upload object", "key", key, "error", err)
			fail(err)
			continue
		}
		r.logger.Info("re-uploaded missing object", "key", key)
		result.Uploaded = append(result.Uploaded, key)
	}

	result.Duration = time.Since(startTime).String()
	return result, errors.Join(errs...)
}

func filterPrefix(keys []string, prefix string) []string {
	prefix = filepath.Clean(prefix)
	if prefix == "." {
		return keys
	}
	var kept []string
	for _, key := range keys {
		if key == prefix || strings.HasPrefix(key, prefix+string(filepath.Separator)) {
			kept = append(kept, key)
		}
	}
	return kept
}
