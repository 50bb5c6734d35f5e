// Package style resolves the cascading style properties of a file.
//
// A Parser walks the directory cascade for a single path and returns the
// merged properties; EditorConfigParser is the default implementation. The
// Resolver wraps a Parser with a per-path cache and applies one
// post-processing rule: an indent_size of "tab" is replaced by tab_width.
//
// Properties model every known key as a Value that is absent, unset, valid
// or invalid. Consumers call Get, which only reports valid values, so an
// absent key and an explicit unset are indistinguishable to them:
//
//	props, err := resolver.Resolve(ctx, "/src/main.go")
//	if errors.Is(err, style.ErrResolution) {
//	    // malformed .editorconfig
//	}
//	if trim, ok := props.TrimTrailingWhitespace.Get(); ok && trim {
//	    // ...
//	}
package style
