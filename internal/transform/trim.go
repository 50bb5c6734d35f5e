package transform

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dshills/stylesync/internal/engine/buffer"
	"github.com/dshills/stylesync/internal/style"
)

// TrimTrailingWhitespace deletes the trailing whitespace of every line when
// trim_trailing_whitespace is true.
type TrimTrailingWhitespace struct {
	Host HostPolicy
}

// Name implements Transformation.
func (TrimTrailingWhitespace) Name() string { return "trimTrailingWhitespace" }

// Transform implements Transformation.
func (t TrimTrailingWhitespace) Transform(props style.Properties, doc *buffer.Document, _ SaveReason) Result {
	trim, ok := props.TrimTrailingWhitespace.Get()

	if t.Host.TrimTrailingWhitespace && ok && !trim {
		return Result{Err: &PolicyConflictError{
			Transformation: t.Name(),
			HostSetting:    "files.trimTrailingWhitespace",
			StyleKey:       style.KeyTrimTrailingWhitespace,
		}}
	}
	if !ok || !trim {
		return Result{}
	}

	var edits []buffer.Edit
	for i := 0; i < doc.LineCount(); i++ {
		line := doc.Line(i)
		trimmed := strings.TrimRightFunc(line.Text, isTrailingSpace)
		if len(trimmed) == len(line.Text) {
			continue
		}
		edits = append(edits, buffer.NewDelete(buffer.NewRange(
			buffer.Point{Line: line.Number, Column: len(trimmed)},
			line.End(),
		)))
	}

	if len(edits) == 0 {
		return Result{}
	}
	return Result{
		Edits: edits,
		Trace: fmt.Sprintf("%s(%d lines)", t.Name(), len(edits)),
	}
}

// isTrailingSpace matches whitespace, including NBSP and the byte order mark.
func isTrailingSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
