// Package app is the in-process host for stylesync. It wires the settings
// store, the style resolver and a session to a Workspace of documents, and
// optionally follows style files changed on disk.
package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dshills/stylesync/internal/config"
	"github.com/dshills/stylesync/internal/options"
	"github.com/dshills/stylesync/internal/session"
	"github.com/dshills/stylesync/internal/style"
	"github.com/dshills/stylesync/internal/transform"
	"github.com/dshills/stylesync/internal/watcher"
)

// Options configures the application.
type Options struct {
	// SettingsPath is the host settings file. Empty uses the defaults.
	SettingsPath string

	// WorkspacePath is the workspace directory. Defaults to the current
	// directory.
	WorkspacePath string

	// ConfigName is the style file name. Defaults to ".editorconfig".
	ConfigName string

	// Files are opened on Start.
	Files []string

	// Logger receives all log output. Defaults to a discarding logger.
	Logger *Logger

	// DebounceDelay coalesces rapid style file changes in Watch.
	DebounceDelay time.Duration
}

// Application owns the host components for one workspace.
type Application struct {
	opts     Options
	root     string
	logger   *Logger
	settings *config.Store
	resolver *style.Resolver
	ws       *Workspace
	session  *session.Session

	running atomic.Bool
	mu      sync.Mutex
	watcher watcher.Watcher
}

// New creates an application. It loads the settings but opens nothing.
func New(opts Options) (*Application, error) {
	logger := opts.Logger
	if logger == nil {
		logger = NewNopLogger()
	}

	root := opts.WorkspacePath
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, NewOperationError("init", opts.WorkspacePath, err)
	}
	if opts.ConfigName == "" {
		opts.ConfigName = style.DefaultConfigName
	}

	settings, err := config.Load(opts.SettingsPath,
		config.WithRoot(root),
		config.WithLogger(logger.Component("config")),
	)
	if err != nil {
		return nil, NewOperationError("init", opts.SettingsPath, err).WithContext("loading settings")
	}

	a := &Application{
		opts:     opts,
		root:     root,
		logger:   logger,
		settings: settings,
		resolver: style.NewResolver(
			style.NewEditorConfigParser(opts.ConfigName),
			style.WithLogger(logger.Component("resolver")),
		),
	}
	a.ws = NewWorkspace(root,
		WithWorkspaceLogger(logger.Component("workspace")),
		WithHostCharset(func(path string) string {
			return settings.Settings(path).Files.Encoding
		}),
		WithStyleCharset(a.styleCharset),
	)
	a.session = session.New(a.resolver, settings, a.ws, a.ws,
		session.WithLogger(logger.Component("session")),
		session.WithWorkspaceRoot(root),
		session.WithConfigName(opts.ConfigName),
	)
	return a, nil
}

// Start starts the session and opens the configured files.
func (a *Application) Start(ctx context.Context) error {
	if err := a.session.Start(ctx); err != nil {
		return err
	}
	a.running.Store(true)

	for _, f := range a.opts.Files {
		if _, err := a.ws.Open(f); err != nil {
			return err
		}
	}
	return nil
}

// Close disposes the session and stops the watcher.
func (a *Application) Close() error {
	a.running.Store(false)
	a.session.Dispose()

	a.mu.Lock()
	w := a.watcher
	a.watcher = nil
	a.mu.Unlock()
	if w != nil {
		return w.Close()
	}
	return nil
}

// Root returns the absolute workspace directory.
func (a *Application) Root() string { return a.root }

// Workspace returns the host workspace.
func (a *Application) Workspace() *Workspace { return a.ws }

// Session returns the document session.
func (a *Application) Session() *session.Session { return a.session }

// Settings returns the host settings store.
func (a *Application) Settings() *config.Store { return a.settings }

// Resolver returns the style resolver.
func (a *Application) Resolver() *style.Resolver { return a.resolver }

// Description is the resolved style of one path and what the host makes
// of it.
type Description struct {
	Path       string
	Properties style.Properties
	Options    options.DisplayOptions
	Policy     transform.HostPolicy
}

// Describe resolves the style of path without opening it.
func (a *Application) Describe(ctx context.Context, path string) (Description, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Description{}, NewOperationError("resolve", path, err)
	}
	props, err := a.resolver.Resolve(ctx, absPath)
	if err != nil {
		return Description{}, NewOperationError("resolve", absPath, err)
	}
	return Description{
		Path:       absPath,
		Properties: props,
		Options:    options.Merge(props, a.settings.Defaults(absPath)),
		Policy:     a.settings.Policy(absPath),
	}, nil
}

// Watch follows style file and settings file changes under the workspace
// until ctx is cancelled. A changed style file is reported to the session
// as a save; a changed settings file is reloaded.
func (a *Application) Watch(ctx context.Context) error {
	if !a.running.Load() {
		return ErrNotStarted
	}

	names := []string{a.opts.ConfigName}
	if a.settings.Path() != "" {
		names = append(names, filepath.Base(a.settings.Path()))
	}
	fsw, err := watcher.NewFSNotifyWatcher(watcher.WithNames(names...))
	if err != nil {
		return NewOperationError("watch", a.root, err)
	}
	w := watcher.NewDebouncedWatcher(fsw, a.opts.DebounceDelay)

	if err := w.WatchRecursive(a.root); err != nil {
		_ = w.Close()
		return NewOperationError("watch", a.root, err)
	}
	if a.settings.Path() != "" {
		dir := filepath.Dir(a.settings.Path())
		if err := w.Watch(dir); err != nil && !errors.Is(err, watcher.ErrAlreadyWatching) && !errors.Is(err, watcher.ErrPathNotExist) {
			_ = w.Close()
			return NewOperationError("watch", dir, err)
		}
	}

	a.mu.Lock()
	a.watcher = w
	a.mu.Unlock()

	log := a.logger.Component("watcher")
	log.WithField("root", a.root).Info("watching for style changes")
	watcher.Run(ctx, w, a.handleFileEvent, func(err error) {
		log.WithError(err).Warn("watcher error")
	})

	a.mu.Lock()
	if a.watcher == w {
		a.watcher = nil
	}
	a.mu.Unlock()
	if err := w.Close(); err != nil {
		log.WithError(err).Warn("closing watcher")
	}
	return ctx.Err()
}

func (a *Application) watching() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.watcher != nil
}

func (a *Application) handleFileEvent(ev watcher.Event) {
	log := a.logger.Component("watcher").WithFields(logrus.Fields{
		"path": ev.Path,
		"op":   ev.Op.String(),
	})

	if a.isSettingsFile(ev.Path) {
		if err := a.settings.Reload(); err != nil {
			log.WithError(err).Error("reloading settings, keeping previous values")
			return
		}
		log.Info("settings reloaded")
		a.ws.NotifyConfigurationChanged()
		return
	}
	if filepath.Base(ev.Path) == a.opts.ConfigName {
		log.Debug("style file changed")
		a.ws.NotifyExternalSave(ev.Path)
	}
}

func (a *Application) isSettingsFile(path string) bool {
	if a.settings.Path() == "" {
		return false
	}
	settingsPath, err := filepath.Abs(a.settings.Path())
	return err == nil && settingsPath == path
}

func (a *Application) styleCharset(ctx context.Context, path string) (string, bool) {
	props, err := a.resolver.Resolve(ctx, path)
	if err != nil {
		return "", false
	}
	return props.Charset.Get()
}
