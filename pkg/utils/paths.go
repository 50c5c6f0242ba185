package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// GenerateArchiveName builds a unique run name such as
// archive-20240501-101500-1a2b3c4d.
func GenerateArchiveName(now time.Time) string {
	id := uuid.New().String()
	return fmt.Sprintf("archive-%s-%s", now.Format("20060102-150405"), id[:8])
}

func ValidatePaths(paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("path does not exist: %s", path)
			}
			return fmt.Errorf("cannot access path %s: %w", path, err)
		}
	}
	return nil
}

// ValidateDirectory checks that path exists and is a directory.
func ValidateDirectory(path string) error {
	if err := ValidatePaths([]string{path}); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access path %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}
	return nil
}

func CleanupTempFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to cleanup temporary file %s: %w", path, err)
	}
	return nil
}
