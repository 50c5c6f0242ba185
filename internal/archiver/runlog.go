package archiver

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pixicode/aws-cloud-archiver/internal/models"
)

// LogSink is an append-only destination for run log lines.
type LogSink interface {
	Append(line string) error
}

// FileLogSink appends to a text file, opening it for each write and closing
// it afterwards.
type FileLogSink struct {
	Path string
}

func (s *FileLogSink) Append(line string) error {
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open archive log %s: %w", s.Path, err)
	}

	if _, err := file.WriteString(line + "\n"); err != nil {
		file.Close()
		return fmt.Errorf("failed to write archive log %s: %w", s.Path, err)
	}
	return file.Close()
}

type RunLogEntry struct {
	Timestamp   time.Time
	ArchiveName string
	ItemCount   int
	RootPath    string
}

func (e RunLogEntry) String() string {
	return fmt.Sprintf("[%s] %s: %d items archived from %s.",
		e.Timestamp.Format(time.RFC3339), e.ArchiveName, e.ItemCount, e.RootPath)
}

type RunLogger struct {
	sink LogSink
	now  func() time.Time
}

func NewRunLogger(sink LogSink, now func() time.Time) *RunLogger {
	if now == nil {
		now = time.Now
	}
	return &RunLogger{sink: sink, now: now}
}

// Record appends one summary line for the run. Runs that archived nothing
// leave the log untouched.
func (l *RunLogger) Record(archiveName, rootPath string, items []models.ArchiveItem) error {
	if len(items) == 0 {
		return nil
	}

	entry := RunLogEntry{
		Timestamp:   l.now(),
		ArchiveName: archiveName,
		ItemCount:   len(items),
		RootPath:    rootPath,
	}
	if err := l.sink.Append(entry.String()); err != nil {
		return &LogWriteError{ArchiveName: archiveName, Err: err}
	}
	return nil
}
