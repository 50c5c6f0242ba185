// Package archiver finds stale entries under a root, moves them into a
// year/month partitioned archive tree, offloads them to a blob store and
// records each run in an append-only log.
package archiver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pixicode/aws-cloud-archiver/internal/metrics"
	"github.com/pixicode/aws-cloud-archiver/internal/models"
	"github.com/pixicode/aws-cloud-archiver/pkg/utils"
)

const DefaultThresholdDays = 1

type Options struct {
	ThresholdDays     int
	Bucket            string
	UploadConcurrency int
	UploadTimeout     time.Duration
	DryRun            bool
	// Report receives the shortlist tables. Nil disables the report.
	Report io.Writer
}

type Archiver struct {
	fs       FileSystem
	store    BlobStore
	sink     LogSink
	opts     Options
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	location *time.Location
}

type Option func(*Archiver)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Archiver) { a.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Archiver) { a.metrics = m }
}

func WithFileSystem(fs FileSystem) Option {
	return func(a *Archiver) { a.fs = fs }
}

func WithClock(now func() time.Time) Option {
	return func(a *Archiver) { a.now = now }
}

// WithLocation sets the time zone archive keys are computed in.
func WithLocation(loc *time.Location) Option {
	return func(a *Archiver) { a.location = loc }
}

func New(store BlobStore, sink LogSink, opts Options, options ...Option) *Archiver {
	a := &Archiver{
		fs:     OSFileSystem{},
		store:  store,
		sink:   sink,
		opts:   opts,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// Archive runs shortlist, move, upload and log in that order. The keys moved
// are recorded in the run's manifest before uploading. Each stage gets
// the complete output of the previous one. A failed move or upload does not
// stop later stages; all stage failures are joined into the returned error
// and reflected in the result.
func (a *Archiver) Archive(ctx context.Context, archiveName, rootPath, archiveRoot string) (*models.ArchiveResult, error) {
	start := a.now()
	logger := a.logger.With("archive", archiveName)

	result := &models.ArchiveResult{
		ArchiveName:   archiveName,
		RootPath:      rootPath,
		ArchiveRoot:   archiveRoot,
		BucketName:    a.opts.Bucket,
		ThresholdDays: a.opts.ThresholdDays,
		DryRun:        a.opts.DryRun,
		OperationTime: utils.FormatTime(start),
	}

	exclude := []string{archiveRoot}
	evaluator := NewStalenessEvaluator(a.fs, a.now)
	evaluator.Exclude = exclude
	shortlister := NewShortlister(a.fs, evaluator, a.opts.ThresholdDays, logger)
	shortlister.Exclude = exclude
	shortlister.Report = a.opts.Report

	list, err := shortlister.Shortlist(rootPath)
	if err != nil {
		a.finish(result, start, false)
		return result, fmt.Errorf("failed to shortlist %s: %w", rootPath, err)
	}
	result.ArchivedEntries = entryAges(list.Archived)
	result.IgnoredEntries = entryAges(list.Ignored)
	result.ShortlistedFiles = len(list.Files)
	a.metrics.SetShortlisted(len(list.Files))

	if a.opts.DryRun {
		logger.Info("dry run, nothing moved", "files", len(list.Files))
		a.finish(result, start, true)
		return result, nil
	}

	var stageErrs []error

	mover := NewMover(a.fs, NewKeyDeriver(a.fs, a.location), logger)
	items, err := mover.MoveToArchive(list.Files, archiveRoot)
	a.metrics.ObserveMoves(len(items), len(list.Files)-len(items))
	if err != nil {
		result.MoveFailures = errorMessages(err)
		stageErrs = append(stageErrs, fmt.Errorf("move stage: %w", err))
	}
	result.Items = items
	result.TotalFiles = len(items)
	for _, item := range items {
		result.TotalSizeBytes += item.Size
	}
	result.TotalSizeHuman = utils.FormatBytes(result.TotalSizeBytes)

	if err := WriteManifest(archiveRoot, archiveName, items); err != nil {
		logger.Error("failed to write run manifest", "error", err)
		stageErrs = append(stageErrs, fmt.Errorf("manifest stage: %w", err))
	}

	uploader := NewUploader(a.store, a.opts.Bucket, logger, a.metrics)
	uploader.Concurrency = a.opts.UploadConcurrency
	uploader.Timeout = a.opts.UploadTimeout
	summary, err := uploader.UploadAll(ctx, archiveName, items)
	result.Uploaded = summary.Success
	if err != nil {
		result.UploadFailures = errorMessages(err)
		stageErrs = append(stageErrs, fmt.Errorf("upload stage: %w", err))
	}

	runLogger := NewRunLogger(a.sink, a.now)
	if err := runLogger.Record(archiveName, rootPath, items); err != nil {
		logger.Error("failed to write run log", "error", err)
		stageErrs = append(stageErrs, fmt.Errorf("log stage: %w", err))
	} else {
		result.LogWritten = len(items) > 0
	}

	runErr := errors.Join(stageErrs...)
	a.finish(result, start, runErr == nil)
	if runErr == nil {
		logger.Info("archive run complete", "items", len(items), "duration", result.Duration)
	}
	return result, runErr
}

func (a *Archiver) finish(result *models.ArchiveResult, start time.Time, success bool) {
	end := a.now()
	duration := end.Sub(start)
	result.Duration = duration.String()
	a.metrics.ObserveRun(duration, success, end)
}

func entryAges(entries []Entry) []models.EntryAge {
	ages := make([]models.EntryAge, 0, len(entries))
	for _, entry := range entries {
		age := models.EntryAge{Path: entry.RelPath, IsDir: entry.IsDir}
		if entry.Age.Present {
			days := entry.Age.Days
			age.AgeDays = &days
		}
		ages = append(ages, age)
	}
	return ages
}
