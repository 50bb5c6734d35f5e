// Package transform computes the edits a document needs before it is saved
// so that it conforms to its resolved style.
//
// Three transformations run in a fixed order on every save:
//
//  1. SetEndOfLine normalizes every line terminator.
//  2. TrimTrailingWhitespace deletes trailing whitespace on each line.
//  3. InsertFinalNewline adds or removes the final newline.
//
// Each transformation only describes edits; nothing is applied until the
// host applies the combined Batch. End-of-line normalization never moves a
// line/column point, so the edits of the later transformations, computed on
// the same snapshot, stay valid after it.
package transform

import (
	"github.com/dshills/stylesync/internal/engine/buffer"
	"github.com/dshills/stylesync/internal/style"
)

// SaveReason tells why a document is being saved.
type SaveReason uint8

const (
	SaveManual     SaveReason = iota + 1 // Explicit save command
	SaveAfterDelay                       // Auto-save after a delay
	SaveFocusOut                         // Auto-save when focus moved away
)

// String returns the string representation of the save reason.
func (r SaveReason) String() string {
	switch r {
	case SaveManual:
		return "manual"
	case SaveAfterDelay:
		return "afterDelay"
	case SaveFocusOut:
		return "focusOut"
	default:
		return "unknown"
	}
}

// Result is the outcome of one transformation.
// Err is structural: a transformation that declines to act reports why here
// and returns no edits.
type Result struct {
	Edits []buffer.Edit
	Err   error
	Trace string
}

// Transformation is a stateless pre-save policy.
type Transformation interface {
	// Name identifies the transformation in traces and errors.
	Name() string

	// Transform computes the edits doc needs under props.
	Transform(props style.Properties, doc *buffer.Document, reason SaveReason) Result
}

// HostPolicy carries the host's own save-time settings that may contradict
// the resolved style.
type HostPolicy struct {
	// TrimTrailingWhitespace is true when the host trims on save by itself.
	TrimTrailingWhitespace bool

	// InsertFinalNewline is true when the host adds a final newline by itself.
	InsertFinalNewline bool
}
