package archiver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysSince(t *testing.T) {
	tests := []struct {
		name     string
		accessed time.Time
		expected int
	}{
		{"just now", testNow, 0},
		{"one second short of a day", testNow.Add(-24*time.Hour + time.Second), 0},
		{"exactly one day", daysAgo(1), 1},
		{"three and a half days", testNow.Add(-84 * time.Hour), 3},
		{"future access time", testNow.Add(48 * time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysSince(tt.accessed, testNow))
		})
	}
}

func TestAgeString(t *testing.T) {
	assert.Equal(t, "-", Absent.String())
	assert.Equal(t, "0d", AgeOf(0).String())
	assert.Equal(t, "12d", AgeOf(12).String())
}

func TestDaysSinceLastAccess_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "a", daysAgo(7))

	age, err := NewStalenessEvaluator(OSFileSystem{}, fixedClock).DaysSinceLastAccess(path)
	require.NoError(t, err)
	assert.Equal(t, AgeOf(7), age)
}

func TestDaysSinceLastAccess_DirectoryUsesYoungestFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "old.txt"), "old", daysAgo(30))
	writeFile(t, filepath.Join(dir, "nested", "deeper", "recent.txt"), "recent", daysAgo(2))
	writeFile(t, filepath.Join(dir, "nested", "mid.txt"), "mid", daysAgo(10))

	age, err := NewStalenessEvaluator(OSFileSystem{}, fixedClock).DaysSinceLastAccess(dir)
	require.NoError(t, err)
	assert.Equal(t, AgeOf(2), age)
}

func TestDaysSinceLastAccess_EmptyDirectoryIsAbsent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b", "c"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "d"), 0755))

	age, err := NewStalenessEvaluator(OSFileSystem{}, fixedClock).DaysSinceLastAccess(dir)
	require.NoError(t, err)
	assert.False(t, age.Present)
}

func TestDaysSinceLastAccess_EmptySubdirectoryDoesNotAffectAge(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0755))
	writeFile(t, filepath.Join(dir, "file.txt"), "f", daysAgo(4))

	age, err := NewStalenessEvaluator(OSFileSystem{}, fixedClock).DaysSinceLastAccess(dir)
	require.NoError(t, err)
	assert.Equal(t, AgeOf(4), age)
}

func TestDaysSinceLastAccess_ExcludedSubtreeDoesNotAffectAge(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "old.txt"), "o", daysAgo(8))
	writeFile(t, filepath.Join(dir, "archive", "2024", "05", "new.txt"), "n", daysAgo(0))

	e := NewStalenessEvaluator(OSFileSystem{}, fixedClock)
	e.Exclude = []string{filepath.Join(dir, "archive")}
	age, err := e.DaysSinceLastAccess(dir)
	require.NoError(t, err)
	assert.Equal(t, AgeOf(8), age)
}

func TestDaysSinceLastAccess_FutureAccessClampsToZero(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skewed.txt")
	writeFile(t, path, "s", testNow.Add(72*time.Hour))

	age, err := NewStalenessEvaluator(OSFileSystem{}, fixedClock).DaysSinceLastAccess(path)
	require.NoError(t, err)
	assert.Equal(t, AgeOf(0), age)
}

func TestDaysSinceLastAccess_ReadError(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "sub", "bad.txt")
	writeFile(t, bad, "b", daysAgo(3))
	writeFile(t, filepath.Join(dir, "sub", "good.txt"), "g", daysAgo(3))

	fs := &failingFS{accessErr: map[string]error{bad: errInjected}}
	_, err := NewStalenessEvaluator(fs, fixedClock).DaysSinceLastAccess(dir)
	require.Error(t, err)

	var accessErr *AccessReadError
	require.ErrorAs(t, err, &accessErr)
	assert.Equal(t, bad, accessErr.Path)
	assert.ErrorIs(t, err, errInjected)
}

func TestDaysSinceLastAccess_MissingPath(t *testing.T) {
	_, err := NewStalenessEvaluator(OSFileSystem{}, fixedClock).DaysSinceLastAccess(filepath.Join(t.TempDir(), "missing"))

	var accessErr *AccessReadError
	require.ErrorAs(t, err, &accessErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
