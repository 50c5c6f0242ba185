package archiver

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// Entry is a direct child of the root with its computed age.
type Entry struct {
	Path    string
	RelPath string
	IsDir   bool
	Age     Age
}

// Shortlist is the outcome of classifying the children of a root.
type Shortlist struct {
	Root     string
	Files    []string
	Archived []Entry
	Ignored  []Entry
}

type Shortlister struct {
	fs        FileSystem
	evaluator *StalenessEvaluator
	logger    *slog.Logger

	// ThresholdDays is the minimum age for an entry to be archived.
	ThresholdDays int
	// Exclude lists paths whose whole subtree is ignored, such as an archive
	// root living anywhere inside the scanned root.
	Exclude []string
	// Report receives the human-readable classification. Nil disables it.
	Report io.Writer
}

func NewShortlister(fs FileSystem, evaluator *StalenessEvaluator, thresholdDays int, logger *slog.Logger) *Shortlister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shortlister{
		fs:            fs,
		evaluator:     evaluator,
		logger:        logger,
		ThresholdDays: thresholdDays,
	}
}

// Shortlist classifies every immediate child of rootPath and expands the
// ones to archive into their files. Any access error aborts the scan.
func (s *Shortlister) Shortlist(rootPath string) (*Shortlist, error) {
	children, err := s.fs.ListChildren(rootPath)
	if err != nil {
		return nil, &AccessReadError{Path: rootPath, Err: err}
	}

	result := &Shortlist{Root: rootPath}

	for _, name := range children {
		path := filepath.Join(rootPath, name)
		isDir, err := s.fs.IsDir(path)
		if err != nil {
			return nil, &AccessReadError{Path: path, Err: err}
		}
		entry := Entry{Path: path, RelPath: name, IsDir: isDir}

		if s.excluded(path) {
			s.logger.Debug("skipping excluded entry", "path", path)
			result.Ignored = append(result.Ignored, entry)
			continue
		}

		entry.Age, err = s.evaluator.DaysSinceLastAccess(path)
		if err != nil {
			return nil, err
		}

		if !s.shouldArchive(entry.Age) {
			result.Ignored = append(result.Ignored, entry)
			continue
		}
		result.Archived = append(result.Archived, entry)

		if !isDir {
			result.Files = append(result.Files, path)
			continue
		}
		files, err := s.collectFiles(path)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, files...)
	}

	s.logger.Info("shortlisted entries",
		"root", rootPath,
		"archive", len(result.Archived),
		"ignore", len(result.Ignored),
		"files", len(result.Files))

	if s.Report != nil {
		if err := WriteReport(s.Report, result); err != nil {
			s.logger.Warn("failed to write shortlist report", "error", err)
		}
	}

	return result, nil
}

func (s *Shortlister) shouldArchive(age Age) bool {
	return age.Present && age.Days >= s.ThresholdDays
}

func (s *Shortlister) excluded(path string) bool {
	return withinAny(path, s.Exclude)
}

// withinAny reports whether path is one of roots or lies beneath one of them.
func withinAny(path string, roots []string) bool {
	if len(roots) == 0 {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, root := range roots {
		rootAbs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(rootAbs, abs)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return true
		}
	}
	return false
}

// collectFiles lists every file beneath dir, depth first, skipping excluded
// subtrees.
func (s *Shortlister) collectFiles(dir string) ([]string, error) {
	children, err := s.fs.ListChildren(dir)
	if err != nil {
		return nil, &AccessReadError{Path: dir, Err: err}
	}

	var files []string
	for _, name := range children {
		path := filepath.Join(dir, name)
		if s.excluded(path) {
			s.logger.Debug("skipping excluded subtree", "path", path)
			continue
		}
		isDir, err := s.fs.IsDir(path)
		if err != nil {
			return nil, &AccessReadError{Path: path, Err: err}
		}
		if !isDir {
			files = append(files, path)
			continue
		}
		nested, err := s.collectFiles(path)
		if err != nil {
			return nil, err
		}
		files = append(files, nested...)
	}
	return files, nil
}
