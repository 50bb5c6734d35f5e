package buffer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		lines   []string
		endings []LineEnding
	}{
		{"empty", "", []string{""}, []LineEnding{LineEndingNone}},
		{"no terminator", "foo", []string{"foo"}, []LineEnding{LineEndingNone}},
		{"trailing lf", "foo\n", []string{"foo", ""}, []LineEnding{LineEndingLF, LineEndingNone}},
		{
			"mixed",
			"a\r\nb\rc\nd",
			[]string{"a", "b", "c", "d"},
			[]LineEnding{LineEndingCRLF, LineEndingCR, LineEndingLF, LineEndingNone},
		},
		{"lone cr at end", "a\r", []string{"a", ""}, []LineEnding{LineEndingCR, LineEndingNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument(tt.text)
			require.Equal(t, len(tt.lines), doc.LineCount())
			for i, l := range doc.Lines() {
				assert.Equal(t, i, l.Number)
				assert.Equal(t, tt.lines[i], l.Text)
				assert.Equal(t, tt.endings[i], l.Ending)
			}
			assert.Equal(t, tt.text, doc.Text(), "round trip")
		})
	}
}

func TestLineIsBlank(t *testing.T) {
	assert.True(t, Line{Text: ""}.IsBlank())
	assert.True(t, Line{Text: " \t "}.IsBlank())
	assert.False(t, Line{Text: "  x "}.IsBlank())
}

func TestDocumentLineEndings(t *testing.T) {
	c := NewDocument("a\r\nb\nc\n\rd\r\n").LineEndings()
	assert.Equal(t, LineEndingCounts{LF: 2, CRLF: 2, CR: 1}, c)
	assert.Equal(t, 5, c.Total())
	assert.Equal(t, 1, c.Of(LineEndingCR))
	assert.False(t, c.Uniform(LineEndingLF))

	assert.True(t, NewDocument("no terminators").LineEndings().Uniform(LineEndingCRLF))
	assert.True(t, NewDocument("a\nb\n").LineEndings().Uniform(LineEndingLF))
}

func TestParseLineEnding(t *testing.T) {
	for in, want := range map[string]LineEnding{
		"lf": LineEndingLF, "LF": LineEndingLF, "CrLf": LineEndingCRLF, "cr": LineEndingCR, "\r\n": LineEndingCRLF,
	} {
		got, ok := ParseLineEnding(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseLineEnding("unset")
	assert.False(t, ok)
}

func TestPointToOffset(t *testing.T) {
	doc := NewDocument("ab\r\ncd\nef")

	off, err := doc.PointToOffset(Point{Line: 1, Column: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, off)

	off, err = doc.PointToOffset(doc.End())
	require.NoError(t, err)
	assert.Equal(t, len(doc.Text()), off)

	_, err = doc.PointToOffset(Point{Line: 0, Column: 3})
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)
	_, err = doc.PointToOffset(Point{Line: 9})
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)

	var empty Document
	off, err = empty.PointToOffset(Point{})
	require.NoError(t, err)
	assert.Zero(t, off)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		edits []Edit
		want  string
	}{
		{
			name:  "delete trailing spaces",
			text:  "foo  ",
			edits: []Edit{NewDelete(NewRange(Point{0, 3}, Point{0, 5}))},
			want:  "foo",
		},
		{
			name:  "insert at end",
			text:  "foo",
			edits: []Edit{NewInsert(Point{0, 3}, "\r\n")},
			want:  "foo\r\n",
		},
		{
			name: "delete then touching insert",
			text: "foo  ",
			edits: []Edit{
				NewDelete(NewRange(Point{0, 3}, Point{0, 5})),
				NewInsert(Point{0, 5}, "\n"),
			},
			want: "foo\n",
		},
		{
			name: "eol normalization keeps points valid",
			text: "a \r\nb \r\n",
			edits: []Edit{
				NewSetEndOfLine(LineEndingLF),
				NewDelete(NewRange(Point{0, 1}, Point{0, 2})),
				NewDelete(NewRange(Point{1, 1}, Point{1, 2})),
			},
			want: "a\nb\n",
		},
		{
			name:  "multi-line delete",
			text:  "foo\n\n\n",
			edits: []Edit{NewDelete(NewRange(Point{0, 3}, Point{3, 0}))},
			want:  "foo",
		},
		{
			name:  "no-op edits skipped",
			text:  "x",
			edits: []Edit{NewInsert(Point{0, 0}, "")},
			want:  "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument(tt.text)
			got, err := doc.Apply(tt.edits)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Text())
			assert.Equal(t, tt.text, doc.Text(), "receiver must not change")
		})
	}
}

func TestApplyErrors(t *testing.T) {
	doc := NewDocument("hello\nworld")

	_, err := doc.Apply([]Edit{
		NewDelete(NewRange(Point{0, 0}, Point{0, 3})),
		NewDelete(NewRange(Point{0, 2}, Point{0, 4})),
	})
	require.ErrorIs(t, err, ErrEditsOverlap)
	var editErr *EditError
	require.True(t, errors.As(err, &editErr))
	assert.Equal(t, 1, editErr.Index)

	_, err = doc.Apply([]Edit{NewDelete(NewRange(Point{1, 2}, Point{0, 0}))})
	assert.ErrorIs(t, err, ErrRangeInvalid)

	_, err = doc.Apply([]Edit{NewInsert(Point{5, 0}, "x")})
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)

	_, err = doc.Apply([]Edit{NewSetEndOfLine(LineEndingNone)})
	assert.ErrorIs(t, err, ErrRangeInvalid)
}

func TestRangeOverlaps(t *testing.T) {
	a := NewRange(Point{0, 0}, Point{0, 5})
	assert.True(t, a.Overlaps(NewRange(Point{0, 4}, Point{0, 6})))
	assert.False(t, a.Overlaps(NewRange(Point{0, 5}, Point{0, 6})), "touching")
	assert.False(t, a.Overlaps(NewRange(Point{0, 5}, Point{0, 5})), "insert at end")
	assert.True(t, a.Overlaps(NewRange(Point{0, 2}, Point{0, 2})), "insert inside")
	assert.True(t, NewRange(Point{0, 3}, Point{2, 0}).ContainsRange(NewRange(Point{1, 0}, Point{1, 2})))
}

func TestEditString(t *testing.T) {
	assert.Equal(t, "SetEndOfLine(CRLF)", NewSetEndOfLine(LineEndingCRLF).String())
	assert.Equal(t, `Insert((0:3), "\n")`, NewInsert(Point{0, 3}, "\n").String())
	assert.Equal(t, "Delete[(0:3):(0:5))", NewDelete(NewRange(Point{0, 3}, Point{0, 5})).String())
}
