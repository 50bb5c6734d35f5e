package style

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dshills/stylesync/internal/engine/buffer"
)

// Known property keys.
const (
	KeyIndentStyle            = "indent_style"
	KeyIndentSize             = "indent_size"
	KeyTabWidth               = "tab_width"
	KeyEndOfLine              = "end_of_line"
	KeyInsertFinalNewline     = "insert_final_newline"
	KeyTrimTrailingWhitespace = "trim_trailing_whitespace"
	KeyCharset                = "charset"
)

// UnsetToken is the literal value that explicitly removes an opinion.
const UnsetToken = "unset"

// tabToken is the indent_size value that defers to tab_width.
const tabToken = "tab"

// IndentStyle is the value of indent_style.
type IndentStyle uint8

const (
	IndentStyleTab IndentStyle = iota + 1
	IndentStyleSpace
)

// String returns the property spelling of the indent style.
func (s IndentStyle) String() string {
	switch s {
	case IndentStyleTab:
		return "tab"
	case IndentStyleSpace:
		return "space"
	default:
		return "unknown"
	}
}

// Width is the value of indent_size: a column count or the "tab" token.
type Width struct {
	Size int
	Tab  bool
}

// String returns the property spelling of the width.
func (w Width) String() string {
	if w.Tab {
		return tabToken
	}
	return strconv.Itoa(w.Size)
}

// Properties is the style resolved for one path.
// Properties values are immutable; the zero value has no opinion on anything.
type Properties struct {
	IndentStyle            Value[IndentStyle]
	IndentSize             Value[Width]
	TabWidth               Value[int]
	EndOfLine              Value[buffer.LineEnding]
	InsertFinalNewline     Value[bool]
	TrimTrailingWhitespace Value[bool]
	Charset                Value[string]

	extra map[string]string
}

// FromRaw builds Properties from key/value pairs as produced by a
// style-file parser. Keys and values are matched case-insensitively.
// Unknown keys are kept verbatim and are available through Extra.
func FromRaw(raw map[string]string) Properties {
	var p Properties
	for k, v := range raw {
		key := strings.ToLower(strings.TrimSpace(k))
		val := strings.TrimSpace(v)
		lower := strings.ToLower(val)

		switch key {
		case KeyIndentStyle:
			p.IndentStyle = parseValue(val, func() (IndentStyle, bool) {
				switch lower {
				case "tab":
					return IndentStyleTab, true
				case "space":
					return IndentStyleSpace, true
				}
				return 0, false
			})
		case KeyIndentSize:
			p.IndentSize = parseValue(val, func() (Width, bool) {
				if lower == tabToken {
					return Width{Tab: true}, true
				}
				n, err := strconv.Atoi(lower)
				return Width{Size: n}, err == nil
			})
		case KeyTabWidth:
			p.TabWidth = parseValue(val, func() (int, bool) {
				n, err := strconv.Atoi(lower)
				return n, err == nil
			})
		case KeyEndOfLine:
			p.EndOfLine = parseValue(val, func() (buffer.LineEnding, bool) {
				switch lower {
				case "lf", "crlf", "cr":
					return buffer.ParseLineEnding(lower)
				}
				return buffer.LineEndingNone, false
			})
		case KeyInsertFinalNewline:
			p.InsertFinalNewline = parseValue(val, func() (bool, bool) { return parseBool(lower) })
		case KeyTrimTrailingWhitespace:
			p.TrimTrailingWhitespace = parseValue(val, func() (bool, bool) { return parseBool(lower) })
		case KeyCharset:
			p.Charset = parseValue(val, func() (string, bool) { return lower, lower != "" })
		default:
			if p.extra == nil {
				p.extra = make(map[string]string)
			}
			p.extra[key] = val
		}
	}
	return p
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// Extra returns a copy of the properties that have no dedicated field.
func (p Properties) Extra() map[string]string {
	out := make(map[string]string, len(p.extra))
	for k, v := range p.extra {
		out[k] = v
	}
	return out
}

// Raw returns the properties as key/value pairs, the inverse of FromRaw.
// Absent fields are omitted; unset fields carry the unset token.
func (p Properties) Raw() map[string]string {
	out := p.Extra()
	put := func(key string, present bool, raw string) {
		if present {
			out[key] = raw
		}
	}
	put(KeyIndentStyle, !p.IndentStyle.IsAbsent(), p.IndentStyle.String())
	put(KeyIndentSize, !p.IndentSize.IsAbsent(), p.IndentSize.String())
	put(KeyTabWidth, !p.TabWidth.IsAbsent(), p.TabWidth.String())
	put(KeyEndOfLine, !p.EndOfLine.IsAbsent(), strings.ToLower(p.EndOfLine.String()))
	put(KeyInsertFinalNewline, !p.InsertFinalNewline.IsAbsent(), p.InsertFinalNewline.String())
	put(KeyTrimTrailingWhitespace, !p.TrimTrailingWhitespace.IsAbsent(), p.TrimTrailingWhitespace.String())
	put(KeyCharset, !p.Charset.IsAbsent(), p.Charset.String())
	return out
}

// Keys returns the sorted keys of Raw.
func (p Properties) Keys() []string {
	raw := p.Raw()
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsEmpty returns true if no key is present, not even as unset.
func (p Properties) IsEmpty() bool {
	return len(p.Raw()) == 0
}

// HasIndentation returns true if any indentation key expresses an opinion.
func (p Properties) HasIndentation() bool {
	return p.IndentStyle.Present() || p.IndentSize.Present() || p.TabWidth.Present()
}

// withTabIndentSize replaces an indent_size of "tab" with tab_width,
// verbatim: an absent or unset tab_width makes indent_size absent or unset.
func (p Properties) withTabIndentSize() Properties {
	w, ok := p.IndentSize.Get()
	if !ok || !w.Tab {
		return p
	}
	tw := p.TabWidth
	switch {
	case tw.IsAbsent():
		p.IndentSize = Value[Width]{}
	case tw.IsUnset():
		p.IndentSize = Unset[Width]()
	case tw.IsInvalid():
		p.IndentSize = Invalid[Width](tw.Raw())
	default:
		n, _ := tw.Get()
		p.IndentSize = Set(Width{Size: n})
	}
	return p
}
