package loader

import (
	"os"
	"strconv"
	"strings"
)

// DefaultEnvPrefix is the prefix of environment overrides.
const DefaultEnvPrefix = "STYLESYNC_"

// EnvLoader loads settings from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "STYLESYNC_")
	mapping map[string]string // Env var -> settings path
	lookup  func() []string
}

// NewEnvLoader creates an environment loader. The prefix should include
// the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		lookup:  os.Environ,
	}
}

// defaultEnvMapping maps the short variable names to settings paths.
func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "TAB_SIZE":                 "editor.tabSize",
		prefix + "INSERT_SPACES":            "editor.insertSpaces",
		prefix + "DETECT_INDENTATION":       "editor.detectIndentation",
		prefix + "TRIM_TRAILING_WHITESPACE": "files.trimTrailingWhitespace",
		prefix + "INSERT_FINAL_NEWLINE":     "files.insertFinalNewline",
		prefix + "EOL":                      "files.eol",
		prefix + "ENCODING":                 "files.encoding",
		prefix + "LOG_LEVEL":                "logging.level",
		prefix + "LOG_FORMAT":               "logging.format",
		prefix + "LOG_FILE":                 "logging.file",
	}
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, settingsPath string) {
	l.mapping[envVar] = settingsPath
}

// Load reads the prefixed environment variables into a settings map.
// Mapped variables use their mapping; any other prefixed variable maps
// PREFIX_SECTION_SOME_NAME to section.someName.
func (l *EnvLoader) Load() (map[string]any, error) {
	settings := make(map[string]any)

	for _, env := range l.lookup() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		SetByPath(settings, path, parseValue(value))
	}

	return settings, nil
}

// envToPath converts STYLESYNC_EDITOR_TAB_SIZE to editor.tabSize.
func (l *EnvLoader) envToPath(env string) string {
	parts := strings.Split(strings.TrimPrefix(env, l.prefix), "_")
	if len(parts) < 2 || parts[0] == "" {
		return ""
	}

	name := strings.ToLower(parts[1])
	for _, part := range parts[2:] {
		if part != "" {
			name += strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
		}
	}
	return strings.ToLower(parts[0]) + "." + name
}

// parseValue converts an environment string to a bool, int or string.
// Digits stay numbers so that a tab size of 1 is not read as true.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return s
}
