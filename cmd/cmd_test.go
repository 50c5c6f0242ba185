package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/pixicode/aws-cloud-archiver/config"
	"github.com/pixicode/aws-cloud-archiver/internal/archiver"
)

type fakeStore struct {
	mu      sync.Mutex
	objects map[string]string
	putErr  error
	calls   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]string{}}
}

func (s *fakeStore) EnsureBucket(ctx context.Context, bucket string) error {
	return nil
}

func (s *fakeStore) PutObject(ctx context.Context, bucket, key, localPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[key] = localPath
	return nil
}

func (s *fakeStore) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		BucketName:          "archive-bucket",
		Region:              "us-east-1",
		LogFile:             filepath.Join(t.TempDir(), "archive.log"),
		AccessThresholdDays: 1,
		UploadConcurrency:   2,
		UploadTimeout:       time.Minute,
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the root command with a fake store and returns what was
// written to stdout and stderr.
func executeCommand(t *testing.T, c *config.Config, store archiver.ReconcileStore, stdin string, args ...string) (string, string, error) {
	t.Helper()

	origStore := newStore
	newStore = func(*config.Config) (archiver.ReconcileStore, error) {
		if store == nil {
			return nil, errors.New("store must not be used")
		}
		return store, nil
	}
	t.Cleanup(func() { newStore = origStore })

	resetFlags(rootCmd)
	cfg = c

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFileWithAccess(t *testing.T, path, content string, accessed time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chtimes(path, accessed, accessed))
}
