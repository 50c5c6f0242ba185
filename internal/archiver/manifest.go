package archiver

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pixicode/aws-cloud-archiver/internal/models"
)

// ManifestDir is the directory under the archive root holding one manifest
// per run. Each manifest lists the relative keys the run moved, one per line.
const ManifestDir = ".manifests"

func ManifestPath(archiveRoot, archiveName string) string {
	return filepath.Join(archiveRoot, ManifestDir, archiveName)
}

// WriteManifest appends the relative keys of items to the run's manifest.
// Nothing is written when items is empty.
func WriteManifest(archiveRoot, archiveName string, items []models.ArchiveItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := ValidateArchiveName(archiveName); err != nil {
		return err
	}

	path := ManifestPath(archiveRoot, archiveName)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open manifest %s: %w", path, err)
	}

	w := bufio.NewWriter(file)
	for _, item := range items {
		fmt.Fprintln(w, filepath.ToSlash(item.RelativeKey))
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("failed to sync manifest %s: %w", path, err)
	}
	return file.Close()
}

// ReadManifest returns the relative keys recorded for a run in the order they
// were written, without duplicates.
func ReadManifest(archiveRoot, archiveName string) ([]string, error) {
	if err := ValidateArchiveName(archiveName); err != nil {
		return nil, err
	}

	path := ManifestPath(archiveRoot, archiveName)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest for %s: %w", archiveName, err)
	}
	defer file.Close()

	var keys []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		keys = append(keys, filepath.FromSlash(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return keys, nil
}

// ValidateArchiveName rejects names that cannot be used as a single manifest
// file name.
func ValidateArchiveName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("invalid archive name %q", name)
	}
	return nil
}
