package archiver

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ArchiveKey is the year/month partition a file is archived under.
type ArchiveKey struct {
	Year  int
	Month string
}

func (k ArchiveKey) String() string {
	return fmt.Sprintf("%d/%s", k.Year, k.Month)
}

// Path returns the key as a relative filesystem path.
func (k ArchiveKey) Path() string {
	return filepath.Join(strconv.Itoa(k.Year), k.Month)
}

func KeyForTime(t time.Time, loc *time.Location) ArchiveKey {
	if loc != nil {
		t = t.In(loc)
	}
	return ArchiveKey{
		Year:  t.Year(),
		Month: fmt.Sprintf("%02d", int(t.Month())),
	}
}

type KeyDeriver struct {
	fs  FileSystem
	loc *time.Location
}

// NewKeyDeriver returns a deriver that reads calendar dates in loc, or in
// local time when loc is nil.
func NewKeyDeriver(fs FileSystem, loc *time.Location) *KeyDeriver {
	if loc == nil {
		loc = time.Local
	}
	return &KeyDeriver{fs: fs, loc: loc}
}

func (d *KeyDeriver) DeriveKey(filePath string) (ArchiveKey, error) {
	accessTime, err := d.fs.AccessTime(filePath)
	if err != nil {
		return ArchiveKey{}, &AccessReadError{Path: filePath, Err: err}
	}
	return KeyForTime(accessTime, d.loc), nil
}

// RelativeKey places the original path of a file beneath its archive key.
// Volume names, leading separators and leading ".." segments are dropped so
// the result always stays inside the key.
func RelativeKey(key ArchiveKey, originalPath string) string {
	return filepath.Join(key.Path(), stripRoot(originalPath))
}

// RemoteKey is the object key of an archived file within a named archive run.
func RemoteKey(archiveName, relativeKey string) string {
	return path.Join(archiveName, filepath.ToSlash(relativeKey))
}

func stripRoot(p string) string {
	p = filepath.Clean(p)
	p = strings.TrimPrefix(p, filepath.VolumeName(p))
	p = strings.TrimLeft(p, string(filepath.Separator))

	parent := ".." + string(filepath.Separator)
	for strings.HasPrefix(p, parent) {
		p = p[len(parent):]
	}
	if p == ".." || p == "." {
		return ""
	}
	return p
}
