package archiver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func daysAgo(days int) time.Time {
	return testNow.Add(-time.Duration(days) * 24 * time.Hour)
}

// writeFile creates path with content and sets both its access and
// modification time to accessed.
func writeFile(t *testing.T, path, content string, accessed time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chtimes(path, accessed, accessed))
}

// failingFS wraps OSFileSystem and injects errors for chosen paths.
type failingFS struct {
	OSFileSystem
	accessErr map[string]error
	moveErr   map[string]error
}

func (f *failingFS) AccessTime(path string) (time.Time, error) {
	if err, ok := f.accessErr[path]; ok {
		return time.Time{}, err
	}
	return f.OSFileSystem.AccessTime(path)
}

func (f *failingFS) Move(src, dst string) error {
	if err, ok := f.moveErr[src]; ok {
		return err
	}
	return f.OSFileSystem.Move(src, dst)
}

type memStore struct {
	mu        sync.Mutex
	objects   map[string]string
	ensureErr error
	putErr    map[string]error
	ensured   int
	puts      int
}

func newMemStore() *memStore {
	return &memStore{objects: map[string]string{}, putErr: map[string]error{}}
}

func (s *memStore) EnsureBucket(ctx context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensured++
	return s.ensureErr
}

func (s *memStore) PutObject(ctx context.Context, bucket, key, localPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if err, ok := s.putErr[key]; ok {
		return err
	}
	content, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	s.objects[key] = string(content)
	return nil
}

func (s *memStore) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *memStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type memSink struct {
	lines []string
	err   error
}

func (s *memSink) Append(line string) error {
	if s.err != nil {
		return s.err
	}
	s.lines = append(s.lines, line)
	return nil
}

var errInjected = errors.New("injected failure")

// filesUnder lists every regular file beneath dir relative to dir, leaving
// out run manifests.
func filesUnder(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ManifestDir {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}

func hasSuffixPath(paths []string, suffix string) bool {
	for _, p := range paths {
		if strings.HasSuffix(p, suffix) {
			return true
		}
	}
	return false
}
