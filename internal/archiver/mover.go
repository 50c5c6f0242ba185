package archiver

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/pixicode/aws-cloud-archiver/internal/models"
)

// Mover relocates shortlisted files into the date-partitioned archive tree.
type Mover struct {
	fs     FileSystem
	keys   *KeyDeriver
	logger *slog.Logger
}

func NewMover(fs FileSystem, keys *KeyDeriver, logger *slog.Logger) *Mover {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mover{fs: fs, keys: keys, logger: logger}
}

// MoveToArchive moves every file to <archiveRoot>/<year>/<month>/<path>.
// Files are handled independently: a failed move is collected and the
// remaining files are still processed. The returned items cover exactly the
// files that moved; the error joins one *MoveError per failure.
func (m *Mover) MoveToArchive(files []string, archiveRoot string) ([]models.ArchiveItem, error) {
	if err := m.fs.MkdirAll(archiveRoot); err != nil {
		return nil, fmt.Errorf("failed to create archive root %s: %w", archiveRoot, err)
	}

	items := make([]models.ArchiveItem, 0, len(files))
	var errs []error

	for _, file := range files {
		item, err := m.moveOne(file, archiveRoot)
		if err != nil {
			m.logger.Error("failed to archive file", "path", file, "error", err)
			errs = append(errs, err)
			continue
		}
		m.logger.Info("moved file to archive", "source", file, "destination", item.FinalPath)
		items = append(items, item)
	}

	return items, errors.Join(errs...)
}

func (m *Mover) moveOne(file, archiveRoot string) (models.ArchiveItem, error) {
	key, err := m.keys.DeriveKey(file)
	if err != nil {
		return models.ArchiveItem{}, &MoveError{Source: file, Err: err}
	}

	relativeKey := RelativeKey(key, file)
	finalPath := filepath.Join(archiveRoot, relativeKey)

	size, err := m.fs.Size(file)
	if err != nil {
		return models.ArchiveItem{}, &MoveError{Source: file, Destination: finalPath, Err: err}
	}

	if err := m.fs.MkdirAll(filepath.Dir(finalPath)); err != nil {
		return models.ArchiveItem{}, &MoveError{Source: file, Destination: finalPath, Err: err}
	}

	if err := m.fs.Move(file, finalPath); err != nil {
		return models.ArchiveItem{}, &MoveError{Source: file, Destination: finalPath, Err: err}
	}

	return models.ArchiveItem{
		RelativeKey:  relativeKey,
		FinalPath:    finalPath,
		OriginalPath: file,
		Size:         size,
	}, nil
}
