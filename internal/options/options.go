// Package options turns resolved style properties into the concrete display
// options an editor view understands.
package options

import (
	"fmt"
	"strconv"

	"github.com/dshills/stylesync/internal/style"
)

// WorkspaceDefaults are the host's own indentation settings. Both fields are
// nil while the host auto-detects indentation.
type WorkspaceDefaults struct {
	TabSize      *int
	InsertSpaces *bool
}

// DisplayOptions are applied to an editor view.
// A nil field means the view keeps its current value.
type DisplayOptions struct {
	TabSize      *int
	InsertSpaces *bool
}

// Int returns a pointer to n.
func Int(n int) *int { return &n }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Merge combines resolved style properties with host defaults. It is total
// and pure: every field either ends with a deterministic value or is nil.
//
// The width candidate is tab_width then indent_size for tab indentation, and
// indent_size then tab_width otherwise; a remaining "tab" token defers to
// tab_width once more. Only a positive number is used, anything else falls
// back to the defaults. InsertSpaces is decided by the style only when it
// has an opinion on tabs versus spaces. A style with no indentation keys at
// all keeps the host default; any other style leaves it nil, so a width-only
// style never forces that choice.
func Merge(props style.Properties, defaults WorkspaceDefaults) DisplayOptions {
	indentStyle, hasStyle := props.IndentStyle.Get()
	tabWidth := widthOf(props.TabWidth)

	var candidate style.Value[style.Width]
	if hasStyle && indentStyle == style.IndentStyleTab {
		candidate = firstPresent(tabWidth, props.IndentSize)
	} else {
		candidate = firstPresent(props.IndentSize, tabWidth)
	}
	if w, ok := candidate.Get(); ok && w.Tab {
		candidate = tabWidth
	}

	var out DisplayOptions
	if w, ok := candidate.Get(); ok && !w.Tab && w.Size > 0 {
		out.TabSize = Int(w.Size)
	} else if defaults.TabSize != nil {
		out.TabSize = Int(*defaults.TabSize)
	}

	size, _ := props.IndentSize.Get()
	switch {
	case hasStyle || size.Tab:
		out.InsertSpaces = Bool(hasStyle && indentStyle == style.IndentStyleSpace)
	case !props.HasIndentation() && defaults.InsertSpaces != nil:
		out.InsertSpaces = Bool(*defaults.InsertSpaces)
	}

	return out
}

// widthOf lifts tab_width into an indent_size value, keeping its state.
func widthOf(v style.Value[int]) style.Value[style.Width] {
	switch {
	case v.IsAbsent():
		return style.Value[style.Width]{}
	case v.IsUnset():
		return style.Unset[style.Width]()
	case v.IsInvalid():
		return style.Invalid[style.Width](v.Raw())
	}
	n, _ := v.Get()
	return style.Set(style.Width{Size: n})
}

// firstPresent returns a if it expresses an opinion, else b.
func firstPresent(a, b style.Value[style.Width]) style.Value[style.Width] {
	if a.Present() {
		return a
	}
	return b
}

// AutoTabSize is the width written for a view whose tab size is automatic.
const AutoTabSize = 4

// ToStyle maps display options back to the style keys that would produce
// them. A nil field is the host's automatic setting: automatic indentation
// maps to tabs and an automatic tab size to AutoTabSize.
func ToStyle(o DisplayOptions) map[string]string {
	size := AutoTabSize
	if o.TabSize != nil && *o.TabSize > 0 {
		size = *o.TabSize
	}

	if o.InsertSpaces != nil && *o.InsertSpaces {
		return map[string]string{
			"indent_style": style.IndentStyleSpace.String(),
			"indent_size":  strconv.Itoa(size),
		}
	}
	return map[string]string{
		"indent_style": style.IndentStyleTab.String(),
		"tab_width":    strconv.Itoa(size),
	}
}

// Summary renders options as a short status text such as "Spaces: 4".
func Summary(o DisplayOptions) string {
	indent := "auto"
	if o.InsertSpaces != nil {
		indent = "Tabs"
		if *o.InsertSpaces {
			indent = "Spaces"
		}
	}
	size := "auto"
	if o.TabSize != nil {
		size = fmt.Sprint(*o.TabSize)
	}
	return indent + ": " + size
}

// String implements fmt.Stringer.
func (o DisplayOptions) String() string {
	return Summary(o)
}
