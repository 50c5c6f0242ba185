package archiver

import (
	"fmt"
	"math"
	"path/filepath"
	"time"
)

const SecondsPerDay = 86400

// Age is a whole number of days since last access. The zero value is
// Absent: no file was found beneath the path.
type Age struct {
	Days    int
	Present bool
}

var Absent = Age{}

func AgeOf(days int) Age {
	return Age{Days: days, Present: true}
}

func (a Age) String() string {
	if !a.Present {
		return "-"
	}
	return fmt.Sprintf("%dd", a.Days)
}

// DaysSince converts the time elapsed between accessTime and now to whole
// days, rounding down. Access times in the future count as zero days.
func DaysSince(accessTime, now time.Time) int {
	seconds := now.Sub(accessTime).Seconds()
	days := int(math.Floor(seconds / SecondsPerDay))
	if days < 0 {
		return 0
	}
	return days
}

// StalenessEvaluator computes how long ago the most recently used file under
// a path was accessed.
type StalenessEvaluator struct {
	fs  FileSystem
	now func() time.Time

	// Exclude lists subtrees that do not contribute to a directory's age.
	Exclude []string
}

func NewStalenessEvaluator(fs FileSystem, now func() time.Time) *StalenessEvaluator {
	if now == nil {
		now = time.Now
	}
	return &StalenessEvaluator{fs: fs, now: now}
}

// DaysSinceLastAccess returns the age of a file, or for a directory the
// smallest age among everything it contains. Directories' own access times
// are never consulted.
func (e *StalenessEvaluator) DaysSinceLastAccess(path string) (Age, error) {
	isDir, err := e.fs.IsDir(path)
	if err != nil {
		return Absent, &AccessReadError{Path: path, Err: err}
	}

	if !isDir {
		accessTime, err := e.fs.AccessTime(path)
		if err != nil {
			return Absent, &AccessReadError{Path: path, Err: err}
		}
		return AgeOf(DaysSince(accessTime, e.now())), nil
	}

	children, err := e.fs.ListChildren(path)
	if err != nil {
		return Absent, &AccessReadError{Path: path, Err: err}
	}

	youngest := Absent
	for _, name := range children {
		child := filepath.Join(path, name)
		if withinAny(child, e.Exclude) {
			continue
		}
		age, err := e.DaysSinceLastAccess(child)
		if err != nil {
			return Absent, err
		}
		if age.Present && (!youngest.Present || age.Days < youngest.Days) {
			youngest = age
		}
	}
	return youngest, nil
}
