package archiver

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"syscall"
	"time"

	"github.com/djherbis/times"

	"github.com/pixicode/aws-cloud-archiver/pkg/utils"
)

// FileSystem is the set of filesystem primitives the archiver relies on.
// Symbolic links are treated as plain files and never followed.
type FileSystem interface {
	ListChildren(path string) ([]string, error)
	IsDir(path string) (bool, error)
	AccessTime(path string) (time.Time, error)
	Size(path string) (int64, error)
	MkdirAll(path string) error
	Move(src, dst string) error
}

type OSFileSystem struct{}

var _ FileSystem = OSFileSystem{}

// ListChildren returns the entry names of a directory in lexical order.
func (OSFileSystem) ListChildren(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

func (OSFileSystem) IsDir(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

func (OSFileSystem) AccessTime(path string) (time.Time, error) {
	ts, err := times.Lstat(path)
	if err != nil {
		return time.Time{}, err
	}
	return ts.AccessTime(), nil
}

func (OSFileSystem) Size(path string) (int64, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (OSFileSystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

// Move renames src to dst. An existing dst is never overwritten. When the two
// paths are on different devices the file is copied and the source removed.
func (OSFileSystem) Move(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("destination %s: %w", dst, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	return copyAndRemove(src, dst)
}

func copyAndRemove(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		if err := os.Symlink(target, dst); err != nil {
			return err
		}
	} else {
		if !info.Mode().IsRegular() {
			return fmt.Errorf("cannot move %s across devices: unsupported file type %s", src, info.Mode().Type())
		}
		if err := copyRegularFile(src, dst, info); err != nil {
			return err
		}
	}

	if err := os.Remove(src); err != nil {
		// Keep the file in exactly one place.
		_ = os.Remove(dst)
		return fmt.Errorf("failed to remove source after copy: %w", err)
	}
	return nil
}

func copyRegularFile(src, dst string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	partial := dst + ".partial"
	out, err := os.OpenFile(partial, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		utils.CleanupTempFile(partial)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		utils.CleanupTempFile(partial)
		return fmt.Errorf("failed to sync %s: %w", partial, err)
	}
	if err := out.Close(); err != nil {
		utils.CleanupTempFile(partial)
		return err
	}

	atime := info.ModTime()
	if ts, err := times.Lstat(src); err == nil {
		atime = ts.AccessTime()
	}
	if err := os.Chtimes(partial, atime, info.ModTime()); err != nil {
		utils.CleanupTempFile(partial)
		return err
	}

	if err := os.Rename(partial, dst); err != nil {
		utils.CleanupTempFile(partial)
		return err
	}
	return nil
}
