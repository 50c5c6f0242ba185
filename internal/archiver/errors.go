package archiver

import (
	"errors"
	"fmt"
)

// AccessReadError is returned when a path's kind, children or access time
// cannot be read.
type AccessReadError struct {
	Path string
	Err  error
}

func (e *AccessReadError) Error() string {
	return fmt.Sprintf("failed to read access time of %s: %v", e.Path, e.Err)
}

func (e *AccessReadError) Unwrap() error { return e.Err }

// MoveError is returned when a single file could not be relocated. The file
// is left at Source.
type MoveError struct {
	Source      string
	Destination string
	Err         error
}

func (e *MoveError) Error() string {
	if e.Destination == "" {
		return fmt.Sprintf("failed to move %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("failed to move %s to %s: %v", e.Source, e.Destination, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }

// UploadError is returned when an archived file could not be pushed to the
// blob store. The local move is not undone.
type UploadError struct {
	Key       string
	LocalPath string
	Err       error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload %s as %s: %v", e.LocalPath, e.Key, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

type LogWriteError struct {
	ArchiveName string
	Err         error
}

func (e *LogWriteError) Error() string {
	return fmt.Sprintf("failed to record run %s: %v", e.ArchiveName, e.Err)
}

func (e *LogWriteError) Unwrap() error { return e.Err }

// errorMessages flattens a joined error into one message per failure.
func errorMessages(err error) []string {
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var messages []string
		for _, e := range joined.Unwrap() {
			messages = append(messages, errorMessages(e)...)
		}
		return messages
	}
	return []string{err.Error()}
}
