package buffer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Errors returned by document operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
	ErrEditsOverlap     = errors.New("edits overlap")
)

// Line is a single line of a document.
type Line struct {
	Number int        // 0-indexed line number
	Text   string     // Line content without its terminator
	Ending LineEnding // Terminator that follows Text
}

// Len returns the length of the line in bytes (without terminator).
func (l Line) Len() int {
	return len(l.Text)
}

// IsBlank returns true if the line is empty or contains only whitespace.
func (l Line) IsBlank() bool {
	return strings.TrimLeftFunc(l.Text, unicode.IsSpace) == ""
}

// End returns the point just after the last character of the line.
func (l Line) End() Point {
	return Point{Line: l.Number, Column: len(l.Text)}
}

// Document is an immutable snapshot of a text document.
// Lines keep their original terminators.
type Document struct {
	lines []Line
}

// NewDocument splits text into lines. The result always has at least one
// line; a trailing terminator yields a final empty line, matching how
// editors present documents.
func NewDocument(text string) *Document {
	lines := make([]Line, 0, strings.Count(text, "\n")+1)

	start := 0
	i := 0
	for i < len(text) {
		var ending LineEnding
		var width int
		switch {
		case text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n':
			ending, width = LineEndingCRLF, 2
		case text[i] == '\r':
			ending, width = LineEndingCR, 1
		case text[i] == '\n':
			ending, width = LineEndingLF, 1
		default:
			i++
			continue
		}
		lines = append(lines, Line{Number: len(lines), Text: text[start:i], Ending: ending})
		i += width
		start = i
	}
	lines = append(lines, Line{Number: len(lines), Text: text[start:]})

	return &Document{lines: lines}
}

// LineCount returns the number of lines.
// Only the zero Document has no lines.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// Line returns line n. It panics if n is out of range.
func (d *Document) Line(n int) Line {
	return d.lines[n]
}

// LastLine returns the final line and false if the document has no lines.
func (d *Document) LastLine() (Line, bool) {
	if len(d.lines) == 0 {
		return Line{}, false
	}
	return d.lines[len(d.lines)-1], true
}

// Lines returns a copy of all lines.
func (d *Document) Lines() []Line {
	out := make([]Line, len(d.lines))
	copy(out, d.lines)
	return out
}

// Text returns the full document content.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, l := range d.lines {
		sb.WriteString(l.Text)
		sb.WriteString(l.Ending.Sequence())
	}
	return sb.String()
}

// LineEndings counts the terminators of every line.
func (d *Document) LineEndings() LineEndingCounts {
	var c LineEndingCounts
	for _, l := range d.lines {
		switch l.Ending {
		case LineEndingLF:
			c.LF++
		case LineEndingCRLF:
			c.CRLF++
		case LineEndingCR:
			c.CR++
		}
	}
	return c
}

// End returns the point after the last character of the document.
func (d *Document) End() Point {
	last, ok := d.LastLine()
	if !ok {
		return Point{}
	}
	return last.End()
}

// PointToOffset converts a point to a byte offset into Text().
func (d *Document) PointToOffset(p Point) (int, error) {
	if len(d.lines) == 0 {
		if !p.IsZero() {
			return 0, fmt.Errorf("%w: %s", ErrOffsetOutOfRange, p)
		}
		return 0, nil
	}
	if p.Line < 0 || p.Line >= len(d.lines) {
		return 0, fmt.Errorf("%w: line %d", ErrOffsetOutOfRange, p.Line)
	}
	line := d.lines[p.Line]
	if p.Column < 0 || p.Column > len(line.Text) {
		return 0, fmt.Errorf("%w: %s", ErrOffsetOutOfRange, p)
	}

	offset := 0
	for _, l := range d.lines[:p.Line] {
		offset += len(l.Text) + len(l.Ending.Sequence())
	}
	return offset + p.Column, nil
}

// WithEndOfLine returns a copy of the document with every terminator
// replaced by le. Points are unaffected.
func (d *Document) WithEndOfLine(le LineEnding) *Document {
	lines := d.Lines()
	for i := range lines {
		if lines[i].Ending != LineEndingNone {
			lines[i].Ending = le
		}
	}
	return &Document{lines: lines}
}

// EditError reports which edit of a batch could not be applied.
type EditError struct {
	Index int
	Edit  Edit
	Err   error
}

func (e *EditError) Error() string {
	return fmt.Sprintf("edit %d %s: %v", e.Index, e.Edit, e.Err)
}

func (e *EditError) Unwrap() error {
	return e.Err
}

// Apply applies a batch of edits and returns the resulting document.
// Range positions refer to the receiver; set-end-of-line edits are applied
// first and do not move any point. Range edits must not overlap. The
// receiver is never modified; on error no edit takes effect.
func (d *Document) Apply(edits []Edit) (*Document, error) {
	type indexed struct {
		idx  int
		edit Edit
	}

	base := d
	ranged := make([]indexed, 0, len(edits))
	for i, e := range edits {
		switch e.Kind {
		case EditSetEndOfLine:
			if e.EOL == LineEndingNone {
				return nil, &EditError{Index: i, Edit: e, Err: ErrRangeInvalid}
			}
			base = base.WithEndOfLine(e.EOL)
		case EditReplace:
			if !e.Range.IsValid() {
				return nil, &EditError{Index: i, Edit: e, Err: ErrRangeInvalid}
			}
			if e.IsNoOp() {
				continue
			}
			ranged = append(ranged, indexed{idx: i, edit: e})
		default:
			return nil, &EditError{Index: i, Edit: e, Err: fmt.Errorf("unknown edit kind %d", e.Kind)}
		}
	}

	sort.SliceStable(ranged, func(a, b int) bool {
		return ranged[a].edit.Range.Start.Before(ranged[b].edit.Range.Start)
	})
	for i := 1; i < len(ranged); i++ {
		if ranged[i-1].edit.Range.Overlaps(ranged[i].edit.Range) {
			return nil, &EditError{Index: ranged[i].idx, Edit: ranged[i].edit, Err: ErrEditsOverlap}
		}
	}

	text := base.Text()
	type span struct {
		start, end int
		text       string
	}
	spans := make([]span, 0, len(ranged))
	for _, r := range ranged {
		start, err := base.PointToOffset(r.edit.Range.Start)
		if err != nil {
			return nil, &EditError{Index: r.idx, Edit: r.edit, Err: err}
		}
		end, err := base.PointToOffset(r.edit.Range.End)
		if err != nil {
			return nil, &EditError{Index: r.idx, Edit: r.edit, Err: err}
		}
		spans = append(spans, span{start: start, end: end, text: r.edit.NewText})
	}

	// Apply in reverse so earlier offsets stay valid.
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		text = text[:s.start] + s.text + text[s.end:]
	}

	return NewDocument(text), nil
}
