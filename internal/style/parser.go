package style

import (
	"github.com/editorconfig/editorconfig-core-go/v2"
)

// DefaultConfigName is the file name of a cascading style file.
const DefaultConfigName = ".editorconfig"

// Parser produces the raw style of a single path by walking the cascade.
type Parser interface {
	// Parse returns the properties that apply to path. It returns empty
	// Properties when no style file applies, and an error only when a style
	// file exists but cannot be parsed.
	Parse(path string) (Properties, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(path string) (Properties, error)

// Parse calls f(path).
func (f ParserFunc) Parse(path string) (Properties, error) {
	return f(path)
}

// EditorConfigParser is the Parser backed by editorconfig-core-go. It walks
// from the file's directory upward, matches section globs, lets the most
// specific section win per key and stops at a file declaring root = true.
type EditorConfigParser struct {
	configName string
}

// NewEditorConfigParser creates a parser reading files named configName.
// An empty name selects DefaultConfigName.
func NewEditorConfigParser(configName string) *EditorConfigParser {
	if configName == "" {
		configName = DefaultConfigName
	}
	return &EditorConfigParser{configName: configName}
}

// ConfigName returns the style file name the parser reads.
func (p *EditorConfigParser) ConfigName() string {
	return p.configName
}

// Parse implements Parser.
func (p *EditorConfigParser) Parse(path string) (Properties, error) {
	def, err := editorconfig.GetDefinitionForFilenameWithConfigname(path, p.configName)
	if err != nil {
		return Properties{}, err
	}
	return FromRaw(def.Raw), nil
}

// Ensure EditorConfigParser implements Parser.
var _ Parser = (*EditorConfigParser)(nil)
