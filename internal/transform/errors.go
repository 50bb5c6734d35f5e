package transform

import (
	"errors"
	"fmt"

	"github.com/dshills/stylesync/internal/engine/buffer"
)

// Errors returned by transformations and batches.
var (
	// ErrPolicyConflict matches every PolicyConflictError via errors.Is.
	ErrPolicyConflict = errors.New("host setting conflicts with style")

	// ErrApply matches every ApplyError via errors.Is.
	ErrApply = errors.New("applying edits failed")
)

// PolicyConflictError reports a transformation that declined to act because
// a host setting contradicts the resolved style.
type PolicyConflictError struct {
	// Transformation is the name of the transformation that declined.
	Transformation string
	// HostSetting is the host setting that is active.
	HostSetting string
	// StyleKey is the style property that explicitly disagrees.
	StyleKey string
}

// Error implements the error interface.
func (e *PolicyConflictError) Error() string {
	return fmt.Sprintf("%s: the %s host setting is overriding the %s style setting for this file",
		e.Transformation, e.HostSetting, e.StyleKey)
}

// Is reports whether target is ErrPolicyConflict.
func (e *PolicyConflictError) Is(target error) bool {
	return target == ErrPolicyConflict
}

// ApplyError reports which transformation produced the edit that could not
// be applied.
type ApplyError struct {
	// BatchID identifies the batch.
	BatchID string
	// Transformation is the name of the transformation owning the edit.
	Transformation string
	// Index is the position of the edit in the batch.
	Index int
	// Edit is the failing edit.
	Edit buffer.Edit
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ApplyError) Error() string {
	return fmt.Sprintf("batch %s: %s edit %d %s: %v", e.BatchID, e.Transformation, e.Index, e.Edit, e.Err)
}

// Unwrap returns the underlying error.
func (e *ApplyError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrApply.
func (e *ApplyError) Is(target error) bool {
	return target == ErrApply
}
