package transform

import (
	"github.com/dshills/stylesync/internal/engine/buffer"
	"github.com/dshills/stylesync/internal/style"
)

// InsertFinalNewline makes the document end with exactly the final newline
// policy of insert_final_newline.
//
// When true and the last line has content, the configured terminator
// (end_of_line, default lf) is appended. When false and the document ends
// in blank lines, everything after the last non-blank line is deleted.
type InsertFinalNewline struct {
	Host HostPolicy
}

// Name implements Transformation.
func (InsertFinalNewline) Name() string { return "insertFinalNewline" }

// Transform implements Transformation.
func (t InsertFinalNewline) Transform(props style.Properties, doc *buffer.Document, _ SaveReason) Result {
	last, hasLines := doc.LastLine()
	want, ok := props.InsertFinalNewline.Get()
	if !ok || !hasLines {
		return Result{}
	}

	if want {
		if last.IsBlank() {
			return Result{}
		}
		eol := buffer.LineEndingLF
		if configured, ok := props.EndOfLine.Get(); ok {
			eol = configured
		}
		return Result{
			Edits: []buffer.Edit{buffer.NewInsert(last.End(), eol.Sequence())},
			Trace: t.Name() + "(" + eol.String() + ")",
		}
	}

	if t.Host.InsertFinalNewline {
		return Result{Err: &PolicyConflictError{
			Transformation: t.Name(),
			HostSetting:    "files.insertFinalNewline",
			StyleKey:       style.KeyInsertFinalNewline,
		}}
	}
	if !last.IsBlank() {
		return Result{}
	}

	// Find the nearest line with content; a document of only blank lines
	// is left alone.
	n := last.Number - 1
	for n >= 0 && doc.Line(n).IsBlank() {
		n--
	}
	if n < 0 {
		return Result{}
	}

	r := buffer.NewRange(doc.Line(n).End(), last.End())
	return Result{
		Edits: []buffer.Edit{buffer.NewDelete(r)},
		Trace: "deleteRange(" + r.String() + ")",
	}
}
