package buffer

import "fmt"

// EditKind distinguishes range edits from document-level edits.
type EditKind uint8

const (
	EditReplace      EditKind = iota // Replace the text in Range with NewText
	EditSetEndOfLine                 // Rewrite every terminator to EOL
)

// String returns a string representation of the edit kind.
func (k EditKind) String() string {
	switch k {
	case EditReplace:
		return "replace"
	case EditSetEndOfLine:
		return "setEndOfLine"
	default:
		return "unknown"
	}
}

// Edit represents a text edit operation.
// It specifies a range to replace and the new text, or, for
// EditSetEndOfLine, the terminator every line should use.
type Edit struct {
	Kind    EditKind
	Range   Range      // The range to replace
	NewText string     // The replacement text
	EOL     LineEnding // Target terminator for EditSetEndOfLine
}

// NewEdit creates a new Edit.
func NewEdit(r Range, newText string) Edit {
	return Edit{Kind: EditReplace, Range: r, NewText: newText}
}

// NewInsert creates an Edit that inserts text at a position.
func NewInsert(p Point, text string) Edit {
	return Edit{
		Kind:    EditReplace,
		Range:   Range{Start: p, End: p},
		NewText: text,
	}
}

// NewDelete creates an Edit that deletes a range of text.
func NewDelete(r Range) Edit {
	return Edit{Kind: EditReplace, Range: r}
}

// NewSetEndOfLine creates an Edit that normalizes every terminator to le.
func NewSetEndOfLine(le LineEnding) Edit {
	return Edit{Kind: EditSetEndOfLine, EOL: le}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Kind == EditSetEndOfLine {
		return fmt.Sprintf("SetEndOfLine(%s)", e.EOL)
	}
	if e.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%s, %q)", e.Range.Start, e.NewText)
	}
	if e.NewText == "" {
		return fmt.Sprintf("Delete%s", e.Range.String())
	}
	return fmt.Sprintf("Replace%s with %q", e.Range.String(), e.NewText)
}

// IsInsert returns true if this is a pure insertion (empty range).
func (e Edit) IsInsert() bool {
	return e.Kind == EditReplace && e.Range.IsEmpty() && e.NewText != ""
}

// IsDelete returns true if this is a pure deletion (empty replacement).
func (e Edit) IsDelete() bool {
	return e.Kind == EditReplace && !e.Range.IsEmpty() && e.NewText == ""
}

// IsNoOp returns true if this edit does nothing.
func (e Edit) IsNoOp() bool {
	return e.Kind == EditReplace && e.Range.IsEmpty() && e.NewText == ""
}
