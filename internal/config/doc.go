// Package config is the host settings store.
//
// Settings come from four layers, lowest precedence first:
//
//  1. Built-in defaults
//  2. The settings file (TOML or YAML)
//  3. [[override]] sections whose glob pattern matches the path being asked about
//  4. STYLESYNC_* environment variables
//
// Example settings file:
//
//	[editor]
//	tabSize = 4
//	insertSpaces = true
//	detectIndentation = false
//
//	[files]
//	trimTrailingWhitespace = true
//	eol = "auto"
//
//	[[override]]
//	pattern = "**/*.go"
//	[override.editor]
//	insertSpaces = false
//
// A pattern without a slash matches the base name; any other pattern
// matches the path relative to the workspace root.
package config
