// Package session coordinates style resolution, display options and
// pre-save transformations for the documents of one workspace.
//
// A Session reacts to host events only. It has three states:
//
//	Uninitialized -> Watching -> Disposed
//
// Start registers the event handlers; Dispose releases them exactly once.
package session

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dshills/stylesync/internal/options"
	"github.com/dshills/stylesync/internal/style"
	"github.com/dshills/stylesync/internal/transform"
)

// Errors returned by Session.
var (
	ErrDisposed       = errors.New("session disposed")
	ErrAlreadyStarted = errors.New("session already started")
)

// State is the lifecycle state of a Session.
type State uint8

const (
	StateUninitialized State = iota
	StateWatching
	StateDisposed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateWatching:
		return "watching"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Session wires host events to the resolver, the options merger and the
// transformation pipeline.
type Session struct {
	id       string
	resolver Resolver
	settings Settings
	view     View
	events   Events
	logger   logrus.FieldLogger
	root     string
	config   string

	mu     sync.Mutex
	state  State
	subs   []Subscription
	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWorkspaceRoot sets the directory untitled documents resolve against.
func WithWorkspaceRoot(dir string) Option {
	return func(s *Session) {
		s.root = dir
	}
}

// WithConfigName sets the style file name whose saves clear the cache.
func WithConfigName(name string) Option {
	return func(s *Session) {
		if name != "" {
			s.config = name
		}
	}
}

// New creates a session in the Uninitialized state.
func New(resolver Resolver, settings Settings, view View, events Events, opts ...Option) *Session {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Session{
		id:       uuid.NewString(),
		resolver: resolver,
		settings: settings,
		view:     view,
		events:   events,
		logger:   discard,
		config:   style.DefaultConfigName,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithField("session", s.id)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start registers the event handlers, resolves every open document and
// applies display options to the active one. ctx bounds the lifetime of
// the handlers' resolutions; Dispose cancels it.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateWatching:
		s.mu.Unlock()
		return ErrAlreadyStarted
	case StateDisposed:
		s.mu.Unlock()
		return ErrDisposed
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.state = StateWatching
	s.subs = []Subscription{
		s.events.OnDidOpen(s.onDocument),
		s.events.OnDidChangeActive(s.onDocument),
		s.events.OnDidChangeFocus(s.onFocus),
		s.events.OnDidChangeConfiguration(s.onConfiguration),
		s.events.OnWillSave(s.WillSave),
		s.events.OnDidSave(s.onDidSave),
	}
	s.mu.Unlock()

	s.logger.Debug("session started")
	return s.refresh(s.ctx)
}

// Activate resolves the style of doc, merges it with the host defaults and
// applies the result to the view.
func (s *Session) Activate(ctx context.Context, doc Document) error {
	if s.disposed() {
		return ErrDisposed
	}
	if doc == nil {
		return nil
	}

	path := s.stylePath(doc)
	log := s.logger.WithField("path", doc.Path())

	props, err := s.resolve(ctx, path)
	if err != nil {
		log.WithError(err).Error("resolving style")
		return err
	}

	opts := options.Merge(props, s.settings.Defaults(path))
	s.view.SetDisplayOptions(doc, opts)
	if r, ok := s.view.(StatusReporter); ok {
		r.ReportStatus(doc, options.Summary(opts))
	}
	log.WithField("options", opts.String()).Debug("applied display options")
	return nil
}

// WillSave computes the pre-save batch for doc. Structural transformation
// errors travel inside the batch; the returned error is reserved for
// resolution failures, cancellation and disposal.
func (s *Session) WillSave(ctx context.Context, doc Document, reason transform.SaveReason) (transform.Batch, error) {
	if s.disposed() {
		return transform.Batch{}, ErrDisposed
	}

	path := s.stylePath(doc)
	log := s.logger.WithField("path", doc.Path())

	props, err := s.resolve(ctx, path)
	if err != nil {
		log.WithError(err).Error("resolving style before save")
		return transform.Batch{}, err
	}

	pipeline := transform.NewPipeline(s.settings.Policy(path), transform.WithLogger(log))
	batch := pipeline.Run(props, doc.Snapshot(), reason)

	// An abandoned save must not see a batch for a snapshot it no longer has.
	if err := ctx.Err(); err != nil {
		return transform.Batch{}, err
	}

	for _, e := range batch.Errors() {
		log.WithError(e).Warn("transformation declined")
	}
	log.WithFields(logrus.Fields{
		"batch":  batch.ID,
		"edits":  len(batch.Entries),
		"reason": reason.String(),
	}).Debug("computed pre-save edits")
	return batch, nil
}

// DidSave reacts to a written document. Saving a style file clears the
// whole cache, re-resolves the open documents and refreshes the active view.
func (s *Session) DidSave(ctx context.Context, doc Document) error {
	if s.disposed() {
		return ErrDisposed
	}
	if doc == nil || doc.Untitled() || filepath.Base(doc.Path()) != s.config {
		return nil
	}

	s.logger.WithField("path", doc.Path()).Info("style file saved, clearing cache")
	s.resolver.Clear()
	return s.refresh(ctx)
}

// ConfigurationChanged re-reads the host defaults for the active document.
func (s *Session) ConfigurationChanged(ctx context.Context) error {
	if s.disposed() {
		return ErrDisposed
	}
	return s.Activate(ctx, s.events.ActiveDocument())
}

// Dispose releases every subscription. Subsequent calls do nothing, and
// events arriving afterwards are ignored.
func (s *Session) Dispose() {
	s.mu.Lock()
	if s.state == StateDisposed {
		s.mu.Unlock()
		return
	}
	s.state = StateDisposed
	subs := s.subs
	s.subs = nil
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, sub := range subs {
		sub.Cancel()
	}
	s.logger.Debug("session disposed")
}

// refresh resolves every open document, then applies options to the
// active one.
func (s *Session) refresh(ctx context.Context) error {
	var errs []error
	failed := make(map[string]bool)
	for _, doc := range s.events.OpenDocuments() {
		if _, err := s.resolve(ctx, s.stylePath(doc)); err != nil {
			s.logger.WithField("path", doc.Path()).WithError(err).Warn("resolving open document")
			failed[doc.Path()] = true
			errs = append(errs, err)
		}
	}

	active := s.events.ActiveDocument()
	if err := s.Activate(ctx, active); err != nil && !failed[active.Path()] {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Session) resolve(ctx context.Context, path string) (style.Properties, error) {
	if path == "" {
		return style.Properties{}, nil
	}
	return s.resolver.Resolve(ctx, path)
}

// stylePath is the path a document's style resolves against. Untitled
// documents resolve as if they lived at the workspace root.
func (s *Session) stylePath(doc Document) string {
	if !doc.Untitled() {
		return doc.Path()
	}
	if s.root == "" {
		return ""
	}
	return filepath.Join(s.root, filepath.Base(doc.Path()))
}

func (s *Session) disposed() bool {
	return s.State() == StateDisposed
}

// handlerContext is the context event handlers run under.
func (s *Session) handlerContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

func (s *Session) onDocument(doc Document) {
	if s.disposed() {
		return
	}
	_ = s.Activate(s.handlerContext(), doc)
}

func (s *Session) onFocus(focused bool) {
	if !focused || s.disposed() {
		return
	}
	_ = s.Activate(s.handlerContext(), s.events.ActiveDocument())
}

func (s *Session) onConfiguration() {
	if s.disposed() {
		return
	}
	_ = s.ConfigurationChanged(s.handlerContext())
}

func (s *Session) onDidSave(doc Document) {
	if s.disposed() {
		return
	}
	if err := s.DidSave(s.handlerContext(), doc); err != nil {
		s.logger.WithError(err).Warn("refreshing after save")
	}
}
