package archiver

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixicode/aws-cloud-archiver/internal/models"
)

// archiveFiles writes each relative key under archiveRoot and records them in
// the manifest of archiveName.
func archiveFiles(t *testing.T, archiveRoot, archiveName string, contents map[string]string) {
	t.Helper()
	var items []models.ArchiveItem
	for relKey, content := range contents {
		path := filepath.Join(archiveRoot, filepath.FromSlash(relKey))
		writeFile(t, path, content, daysAgo(1))
		items = append(items, models.ArchiveItem{RelativeKey: filepath.FromSlash(relKey), FinalPath: path})
	}
	require.NoError(t, WriteManifest(archiveRoot, archiveName, items))
}

func TestReconcile_UploadsMissingObjects(t *testing.T) {
	archiveRoot := t.TempDir()
	archiveFiles(t, archiveRoot, "run1", map[string]string{
		"2024/05/a.txt":        "a",
		"2024/05/nested/b.txt": "b",
	})

	store := newMemStore()
	store.objects["run1/2024/05/a.txt"] = "a"

	result, err := NewReconciler(store, "bucket", nil).Reconcile(context.Background(), "run1", archiveRoot, "")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 1, result.AlreadyPresent)
	assert.Equal(t, []string{"run1/2024/05/nested/b.txt"}, result.Uploaded)
	assert.Equal(t, "b", store.objects["run1/2024/05/nested/b.txt"])
	assert.Equal(t, 1, store.puts)
}

func TestReconcile_AfterFailedUpload(t *testing.T) {
	root := t.TempDir()
	archiveRoot := t.TempDir()
	writeFile(t, filepath.Join(root, "old.txt"), "old", daysAgo(10))

	store := newMemStore()
	store.ensureErr = errInjected
	a := New(store, &memSink{}, Options{ThresholdDays: 1, Bucket: "bucket"}, WithClock(fixedClock), WithLocation(time.UTC))
	result, err := a.Archive(context.Background(), "run1", root, archiveRoot)
	require.Error(t, err)
	require.Len(t, result.Items, 1)
	assert.Empty(t, store.objects)

	store.ensureErr = nil
	reconciled, err := NewReconciler(store, "bucket", nil).Reconcile(context.Background(), "run1", archiveRoot, "")
	require.NoError(t, err)

	expected := RemoteKey("run1", result.Items[0].RelativeKey)
	assert.Equal(t, []string{expected}, reconciled.Uploaded)
	assert.Equal(t, "old", store.objects[expected])
}

func TestReconcile_OnlyTouchesFilesOfTheNamedRun(t *testing.T) {
	firstRoot := t.TempDir()
	secondRoot := t.TempDir()
	archiveRoot := t.TempDir()
	writeFile(t, filepath.Join(firstRoot, "a.txt"), "a", daysAgo(10))
	writeFile(t, filepath.Join(secondRoot, "b.txt"), "b", daysAgo(10))

	store := newMemStore()
	a := New(store, &memSink{}, Options{ThresholdDays: 1, Bucket: "bucket"}, WithClock(fixedClock), WithLocation(time.UTC))

	first, err := a.Archive(context.Background(), "run1", firstRoot, archiveRoot)
	require.NoError(t, err)
	require.Len(t, first.Items, 1)

	store.ensureErr = errInjected
	second, err := a.Archive(context.Background(), "run2", secondRoot, archiveRoot)
	require.Error(t, err)
	require.Len(t, second.Items, 1)

	store.ensureErr = nil
	reconciled, err := NewReconciler(store, "bucket", nil).Reconcile(context.Background(), "run2", archiveRoot, "")
	require.NoError(t, err)

	assert.Equal(t, 1, reconciled.Checked)
	assert.Equal(t, []string{RemoteKey("run2", second.Items[0].RelativeKey)}, reconciled.Uploaded)
	assert.Equal(t, []string{
		RemoteKey("run1", first.Items[0].RelativeKey),
		RemoteKey("run2", second.Items[0].RelativeKey),
	}, store.keys())
	assert.NotContains(t, store.objects, RemoteKey("run2", first.Items[0].RelativeKey))
}

func TestReconcile_Prefix(t *testing.T) {
	archiveRoot := t.TempDir()
	archiveFiles(t, archiveRoot, "run1", map[string]string{
		"2024/04/a.txt": "a",
		"2024/05/b.txt": "b",
	})

	store := newMemStore()
	result, err := NewReconciler(store, "bucket", nil).Reconcile(context.Background(), "run1", archiveRoot, filepath.Join("2024", "05"))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Checked)
	assert.Equal(t, []string{"run1/2024/05/b.txt"}, store.keys())
}

func TestReconcile_PutFailure(t *testing.T) {
	archiveRoot := t.TempDir()
	archiveFiles(t, archiveRoot, "run1", map[string]string{
		"2024/05/a.txt": "a",
		"2024/05/b.txt": "b",
	})

	store := newMemStore()
	store.putErr["run1/2024/05/a.txt"] = errInjected

	result, err := NewReconciler(store, "bucket", nil).Reconcile(context.Background(), "run1", archiveRoot, "")

	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, "run1/2024/05/a.txt", uploadErr.Key)
	assert.Equal(t, []string{"run1/2024/05/a.txt"}, result.Failed)
	assert.Equal(t, []string{"run1/2024/05/b.txt"}, result.Uploaded)
}

func TestReconcile_LocalFileMissing(t *testing.T) {
	archiveRoot := t.TempDir()
	items := []models.ArchiveItem{{RelativeKey: filepath.Join("2024", "05", "gone.txt")}}
	require.NoError(t, WriteManifest(archiveRoot, "run1", items))

	store := newMemStore()
	result, err := NewReconciler(store, "bucket", nil).Reconcile(context.Background(), "run1", archiveRoot, "")

	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, []string{"run1/2024/05/gone.txt"}, result.Failed)
	assert.Zero(t, store.puts)
}

func TestReconcile_EnsureBucketFailure(t *testing.T) {
	archiveRoot := t.TempDir()
	archiveFiles(t, archiveRoot, "run1", map[string]string{"2024/05/a.txt": "a"})

	store := newMemStore()
	store.ensureErr = errInjected

	_, err := NewReconciler(store, "bucket", nil).Reconcile(context.Background(), "run1", archiveRoot, "")
	assert.ErrorIs(t, err, errInjected)
	assert.Zero(t, store.puts)
}

func TestReconcile_UnknownRun(t *testing.T) {
	store := newMemStore()
	_, err := NewReconciler(store, "bucket", nil).Reconcile(context.Background(), "run1", t.TempDir(), "")
	assert.Error(t, err)
	assert.Zero(t, store.ensured)
}

func TestReconcile_MissingPrefix(t *testing.T) {
	archiveRoot := t.TempDir()
	archiveFiles(t, archiveRoot, "run1", map[string]string{"2024/05/a.txt": "a"})

	_, err := NewReconciler(newMemStore(), "bucket", nil).Reconcile(context.Background(), "run1", archiveRoot, "1999")
	assert.Error(t, err)
}
