package config

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"

	"github.com/dshills/stylesync/internal/config/loader"
	"github.com/dshills/stylesync/internal/options"
	"github.com/dshills/stylesync/internal/transform"
)

// overrideKey is the settings key holding the glob-scoped sections.
const overrideKey = "override"

// Override is a settings layer scoped to paths matching Pattern.
type Override struct {
	Pattern string
	Values  map[string]any
}

// Store holds the loaded settings layers and answers scoped reads.
// It is safe for concurrent use.
type Store struct {
	path      string
	root      string
	fs        loader.FileSystem
	envPrefix string
	logger    logrus.FieldLogger

	mu        sync.RWMutex
	base      map[string]any
	overrides []Override
	env       map[string]any
}

// Option configures a Store.
type Option func(*Store)

// WithRoot sets the workspace root override patterns are relative to.
func WithRoot(dir string) Option {
	return func(s *Store) { s.root = dir }
}

// WithFS sets the file system the settings file is read from.
func WithFS(fsys loader.FileSystem) Option {
	return func(s *Store) { s.fs = fsys }
}

// WithEnvPrefix sets the environment override prefix. An empty prefix
// disables environment overrides.
func WithEnvPrefix(prefix string) Option {
	return func(s *Store) { s.envPrefix = prefix }
}

// WithLogger sets the store logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Load creates a store from the settings file at path. An empty path or a
// missing file yields the defaults plus environment overrides.
func Load(path string, opts ...Option) (*Store, error) {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Store{
		path:      path,
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
		logger:    discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the settings file and the environment. On error the
// previous settings stay in effect.
func (s *Store) Reload() error {
	var file map[string]any
	if s.path != "" {
		l, err := loader.ForPath(s.fs, s.path)
		if err != nil {
			return err
		}
		if file, err = l.Load(); err != nil {
			return err
		}
	}

	var env map[string]any
	if s.envPrefix != "" {
		var err error
		if env, err = loader.NewEnvLoader(s.envPrefix).Load(); err != nil {
			return err
		}
	}

	overrides, err := extractOverrides(file)
	if err != nil {
		return err
	}
	base := loader.DeepMerge(DefaultValues(), file)

	// Every reachable combination must decode and validate.
	if err := check(base, env, ""); err != nil {
		return err
	}
	for _, o := range overrides {
		if err := check(loader.DeepMerge(loader.Clone(base), o.Values), env, o.Pattern); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.base, s.overrides, s.env = base, overrides, env
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"file":      s.path,
		"overrides": len(overrides),
	}).Debug("settings loaded")
	return nil
}

// Settings returns the effective settings for path.
func (s *Store) Settings(path string) Settings {
	s.mu.RLock()
	values := loader.Clone(s.base)
	for _, o := range s.overrides {
		if s.matches(o.Pattern, path) {
			values = loader.DeepMerge(values, o.Values)
		}
	}
	values = loader.DeepMerge(values, s.env)
	s.mu.RUnlock()

	settings, err := decode(values)
	if err != nil {
		// Reload validated every combination.
		s.logger.WithError(err).Error("decoding settings")
		return Defaults()
	}
	return settings
}

// Defaults returns the host indentation defaults for path. Both fields are
// nil while indentation detection is on.
func (s *Store) Defaults(path string) options.WorkspaceDefaults {
	editor := s.Settings(path).Editor
	if editor.DetectIndentation {
		return options.WorkspaceDefaults{}
	}
	return options.WorkspaceDefaults{
		TabSize:      options.Int(editor.TabSize),
		InsertSpaces: options.Bool(editor.InsertSpaces),
	}
}

// Policy returns the host save-time settings for path.
func (s *Store) Policy(path string) transform.HostPolicy {
	files := s.Settings(path).Files
	return transform.HostPolicy{
		TrimTrailingWhitespace: files.TrimTrailingWhitespace,
		InsertFinalNewline:     files.InsertFinalNewline,
	}
}

// matches reports whether pattern applies to path.
func (s *Store) matches(pattern, path string) bool {
	target := filepath.ToSlash(path)
	if !strings.Contains(pattern, "/") {
		target = filepath.Base(path)
	} else if s.root != "" {
		if rel, err := filepath.Rel(s.root, path); err == nil && !strings.HasPrefix(rel, "..") {
			target = filepath.ToSlash(rel)
		}
	}
	ok, err := doublestar.Match(pattern, target)
	return err == nil && ok
}

func check(values, env map[string]any, scope string) error {
	settings, err := decode(loader.DeepMerge(loader.Clone(values), env))
	if err != nil {
		if scope != "" {
			return fmt.Errorf("override %q: %w", scope, err)
		}
		return err
	}
	if err := settings.Validate(); err != nil {
		if verr, ok := err.(*ValidationError); ok {
			verr.Scope = scope
		}
		return err
	}
	return nil
}

// extractOverrides removes the override list from file and returns it.
func extractOverrides(file map[string]any) ([]Override, error) {
	raw, ok := file[overrideKey]
	if !ok {
		return nil, nil
	}
	delete(file, overrideKey)

	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be a list of tables, got %T", ErrInvalidOverride, overrideKey, raw)
	}

	overrides := make([]Override, 0, len(list))
	for i, item := range list {
		values, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d is %T", ErrInvalidOverride, i, item)
		}
		pattern, _ := values["pattern"].(string)
		if pattern == "" {
			return nil, fmt.Errorf("%w: entry %d has no pattern", ErrInvalidOverride, i)
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: entry %d has malformed pattern %q", ErrInvalidOverride, i, pattern)
		}
		values = loader.Clone(values)
		delete(values, "pattern")
		overrides = append(overrides, Override{Pattern: pattern, Values: values})
	}
	return overrides, nil
}
