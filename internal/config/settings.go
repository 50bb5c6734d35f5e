package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/dshills/stylesync/internal/engine/buffer"
)

// Editor holds the indentation settings.
type Editor struct {
	TabSize           int  `mapstructure:"tabSize"`
	InsertSpaces      bool `mapstructure:"insertSpaces"`
	DetectIndentation bool `mapstructure:"detectIndentation"`
}

// Files holds the save-time settings.
type Files struct {
	TrimTrailingWhitespace bool   `mapstructure:"trimTrailingWhitespace"`
	InsertFinalNewline     bool   `mapstructure:"insertFinalNewline"`
	EOL                    string `mapstructure:"eol"`
	Encoding               string `mapstructure:"encoding"`
}

// Logging holds the logger settings.
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Settings are the effective host settings for one path.
type Settings struct {
	Editor  Editor  `mapstructure:"editor"`
	Files   Files   `mapstructure:"files"`
	Logging Logging `mapstructure:"logging"`
}

// EOLAuto leaves line endings as they are.
const EOLAuto = "auto"

// DefaultValues returns the built-in settings layer.
func DefaultValues() map[string]any {
	return map[string]any{
		"editor": map[string]any{
			"tabSize":           4,
			"insertSpaces":      true,
			"detectIndentation": true,
		},
		"files": map[string]any{
			"trimTrailingWhitespace": false,
			"insertFinalNewline":     false,
			"eol":                    EOLAuto,
			"encoding":               "utf8",
		},
		"logging": map[string]any{
			"level":  "info",
			"format": "text",
		},
	}
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	s, _ := decode(DefaultValues())
	return s
}

// LineEnding returns the line ending files.eol asks for, or
// buffer.LineEndingNone for "auto".
func (f Files) LineEnding() buffer.LineEnding {
	le, ok := buffer.ParseLineEnding(f.EOL)
	if !ok {
		return buffer.LineEndingNone
	}
	return le
}

// decode converts a merged settings map into Settings. Environment strings
// such as "8" or "true" are accepted for numeric and boolean fields.
func decode(values map[string]any) (Settings, error) {
	var s Settings
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Settings{}, err
	}
	if err := dec.Decode(values); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return s, nil
}

// Validate checks the settings for unusable values.
func (s Settings) Validate() error {
	if s.Editor.TabSize <= 0 {
		return &ValidationError{Path: "editor.tabSize", Value: s.Editor.TabSize, Message: "must be positive"}
	}
	if eol := strings.ToLower(s.Files.EOL); eol != EOLAuto && s.Files.LineEnding() == buffer.LineEndingNone {
		return &ValidationError{Path: "files.eol", Value: s.Files.EOL, Message: `must be "auto", "lf", "crlf" or "cr"`}
	}
	return nil
}
