package transform

import (
	"github.com/dshills/stylesync/internal/engine/buffer"
	"github.com/dshills/stylesync/internal/style"
)

// SetEndOfLine normalizes every terminator to the configured end_of_line.
//
// Only lf and crlf are acted on. The decision comes from Document.LineEndings,
// a count of every terminator: an edit is emitted if at least one of them
// differs from the target, even when most already match.
type SetEndOfLine struct{}

// Name implements Transformation.
func (SetEndOfLine) Name() string { return "setEndOfLine" }

// Transform implements Transformation.
func (t SetEndOfLine) Transform(props style.Properties, doc *buffer.Document, _ SaveReason) Result {
	eol, ok := props.EndOfLine.Get()
	if !ok || (eol != buffer.LineEndingLF && eol != buffer.LineEndingCRLF) {
		return Result{}
	}

	if doc.LineEndings().Uniform(eol) {
		return Result{}
	}

	return Result{
		Edits: []buffer.Edit{buffer.NewSetEndOfLine(eol)},
		Trace: t.Name() + "(" + eol.String() + ")",
	}
}
