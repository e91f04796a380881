package loader

import (
	"errors"
	"fmt"
)

// Loader errors.
var (
	// ErrNotSupported is returned by Load when the file is not of the
	// loader's format.
	ErrNotSupported = errors.New("format not supported for file")

	// ErrNoFile is returned by New when neither a path nor a view with a
	// file name is given.
	ErrNoFile = errors.New("no file to load")
)

// NotSupportedError reports a file rejected by a format's validity check.
type NotSupportedError struct {
	// Format is the display name of the rejecting format.
	Format string
	// Path is the file that was rejected.
	Path string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("not a %s file: %s", e.Format, e.Path)
}

// Is reports whether target is ErrNotSupported.
func (e *NotSupportedError) Is(target error) bool {
	return target == ErrNotSupported
}
