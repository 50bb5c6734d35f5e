package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/stylesync/internal/engine/buffer"
)

func TestFromRaw(t *testing.T) {
	p := FromRaw(map[string]string{
		"Indent_Style":             "SPACE",
		"indent_size":              "2",
		"tab_width":                "8",
		"end_of_line":              "CRLF",
		"insert_final_newline":     "true",
		"trim_trailing_whitespace": "False",
		"charset":                  "UTF-8",
		"max_line_length":          "100",
	})

	style, ok := p.IndentStyle.Get()
	require.True(t, ok)
	assert.Equal(t, IndentStyleSpace, style)

	size, ok := p.IndentSize.Get()
	require.True(t, ok)
	assert.Equal(t, Width{Size: 2}, size)

	tw, _ := p.TabWidth.Get()
	assert.Equal(t, 8, tw)

	eol, _ := p.EndOfLine.Get()
	assert.Equal(t, buffer.LineEndingCRLF, eol)

	ifn, ok := p.InsertFinalNewline.Get()
	assert.True(t, ok && ifn)

	ttw, ok := p.TrimTrailingWhitespace.Get()
	assert.True(t, ok)
	assert.False(t, ttw)

	cs, _ := p.Charset.Get()
	assert.Equal(t, "utf-8", cs)

	assert.Equal(t, map[string]string{"max_line_length": "100"}, p.Extra())
	assert.True(t, p.HasIndentation())
}

func TestFromRawUnsetAndInvalid(t *testing.T) {
	p := FromRaw(map[string]string{
		"indent_style": "unset",
		"indent_size":  "tab",
		"tab_width":    "x",
		"end_of_line":  "weird",
	})

	assert.True(t, p.IndentStyle.IsUnset())
	assert.False(t, p.IndentStyle.Present())
	_, ok := p.IndentStyle.Get()
	assert.False(t, ok)

	w, ok := p.IndentSize.Get()
	require.True(t, ok)
	assert.True(t, w.Tab)

	assert.True(t, p.TabWidth.IsInvalid())
	assert.True(t, p.TabWidth.Present())
	assert.Equal(t, "x", p.TabWidth.Raw())

	assert.True(t, p.EndOfLine.IsInvalid())
	assert.True(t, p.InsertFinalNewline.IsAbsent())
}

func TestPropertiesRaw(t *testing.T) {
	in := map[string]string{
		"indent_style":         "tab",
		"indent_size":          "tab",
		"tab_width":            "4",
		"end_of_line":          "lf",
		"insert_final_newline": "unset",
		"charset":              "latin1",
		"spelling_language":    "en",
	}
	p := FromRaw(in)
	assert.Equal(t, in, p.Raw())
	assert.Equal(t, []string{
		"charset", "end_of_line", "indent_size", "indent_style",
		"insert_final_newline", "spelling_language", "tab_width",
	}, p.Keys())
	assert.False(t, p.IsEmpty())
	assert.True(t, Properties{}.IsEmpty())
}

func TestWithTabIndentSize(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]string
		want Value[Width]
	}{
		{"tab width number", map[string]string{"indent_size": "tab", "tab_width": "3"}, Set(Width{Size: 3})},
		{"tab width absent", map[string]string{"indent_size": "tab"}, Value[Width]{}},
		{"tab width unset", map[string]string{"indent_size": "tab", "tab_width": "unset"}, Unset[Width]()},
		{"tab width invalid", map[string]string{"indent_size": "tab", "tab_width": "x"}, Invalid[Width]("x")},
		{"numeric untouched", map[string]string{"indent_size": "2", "tab_width": "8"}, FromRaw(map[string]string{"indent_size": "2"}).IndentSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromRaw(tt.raw).withTabIndentSize().IndentSize
			assert.Equal(t, tt.want.IsAbsent(), got.IsAbsent())
			assert.Equal(t, tt.want.IsUnset(), got.IsUnset())
			assert.Equal(t, tt.want.IsInvalid(), got.IsInvalid())
			wantVal, wantOK := tt.want.Get()
			gotVal, gotOK := got.Get()
			assert.Equal(t, wantOK, gotOK)
			assert.Equal(t, wantVal, gotVal)
		})
	}
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "tab", Set(Width{Tab: true}).String())
	assert.Equal(t, "4", Set(4).String())
	assert.Equal(t, "unset", Unset[int]().String())
	assert.Equal(t, "space", Set(IndentStyleSpace).String())
	assert.Equal(t, "", Value[bool]{}.String())
}
