package style

import (
	"errors"
	"fmt"
)

// ErrResolution matches every ResolutionError via errors.Is.
var ErrResolution = errors.New("style resolution failed")

// ResolutionError reports a style file that could not be parsed.
// Finding no applicable style file is not an error.
type ResolutionError struct {
	// Path is the file whose style was being resolved.
	Path string
	// Err is the underlying parser error.
	Err error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving style for %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrResolution.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}
