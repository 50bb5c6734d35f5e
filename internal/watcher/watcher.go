// Package watcher reports style-file changes made outside the host.
//
// A host normally learns about a saved style file through its own did-save
// event. Edits made by other programs (git checkout, another editor) only
// show up on disk, so the watcher follows the workspace directories with
// fsnotify and reports writes to files with the configured base names.
package watcher

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
	ErrNotWatching     = errors.New("path is not being watched")
	ErrPathNotExist    = errors.New("path does not exist")
)

// Op is a set of file system operations.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
)

// String returns the operations joined by "|".
func (op Op) String() string {
	var names []string
	for _, o := range []struct {
		op   Op
		name string
	}{{OpCreate, "CREATE"}, {OpWrite, "WRITE"}, {OpRemove, "REMOVE"}, {OpRename, "RENAME"}} {
		if op.Has(o.op) {
			names = append(names, o.name)
		}
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event is a change to a watched file.
type Event struct {
	// Path is the absolute path of the affected file.
	Path string

	// Op is the operation that occurred.
	Op Op

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Stats provides watcher status information.
type Stats struct {
	WatchedPaths  int
	PendingEvents int
	TotalEvents   int64
	Errors        int64
	LastError     error
	StartTime     time.Time
}

// Watcher monitors directories for file changes.
type Watcher interface {
	// Watch starts watching a single directory.
	Watch(path string) error

	// WatchRecursive starts watching a directory and its subdirectories,
	// skipping the configured directory names.
	WatchRecursive(path string) error

	// Unwatch stops watching a directory.
	Unwatch(path string) error

	// Events returns the channel of change events. It is closed by Close.
	Events() <-chan Event

	// Errors returns the channel of watcher errors. It is closed by Close.
	Errors() <-chan error

	// Close stops the watcher and releases resources.
	Close() error

	// Stats returns watcher statistics.
	Stats() Stats

	// IsWatching returns true if the directory is being watched.
	IsWatching(path string) bool
}

// Config holds watcher configuration options.
type Config struct {
	// BufferSize is the size of the event and error channels.
	BufferSize int

	// Names are the file base names to report. Empty reports every file.
	Names []string

	// SkipDirs are directory base names never descended into.
	SkipDirs []string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BufferSize: 100,
		SkipDirs:   []string{".git", ".hg", ".svn", "node_modules"},
	}
}

// Option configures a watcher.
type Option func(*Config)

// WithBufferSize sets the channel buffer size.
func WithBufferSize(size int) Option {
	return func(c *Config) {
		c.BufferSize = size
	}
}

// WithNames restricts events to files with the given base names.
func WithNames(names ...string) Option {
	return func(c *Config) {
		c.Names = names
	}
}

// WithSkipDirs replaces the skipped directory names.
func WithSkipDirs(names ...string) Option {
	return func(c *Config) {
		c.SkipDirs = names
	}
}

// Run delivers events and errors from w to the handlers until ctx is
// cancelled or w is closed. Handlers run on the caller's goroutine.
func Run(ctx context.Context, w Watcher, onEvent func(Event), onError func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events():
			if !ok {
				return
			}
			onEvent(event)
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
