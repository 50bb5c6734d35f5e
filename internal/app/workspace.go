package app

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dshills/stylesync/internal/charset"
	"github.com/dshills/stylesync/internal/engine/buffer"
	"github.com/dshills/stylesync/internal/options"
	"github.com/dshills/stylesync/internal/session"
	"github.com/dshills/stylesync/internal/transform"
)

// Workspace is the in-process host. It owns the open documents, raises the
// lifecycle events a session listens to and records the display options
// and status the session applies. Events are dispatched synchronously on
// the caller's goroutine.
type Workspace struct {
	root    string
	docs    *DocumentManager
	logger  logrus.FieldLogger
	metrics *Metrics

	hostCharset  func(path string) string
	styleCharset func(ctx context.Context, path string) (string, bool)

	didOpen                handlerSet[func(session.Document)]
	didChangeActive        handlerSet[func(session.Document)]
	didChangeFocus         handlerSet[func(bool)]
	didChangeConfiguration handlerSet[func()]
	willSave               handlerSet[session.WillSaveHandler]
	didSave                handlerSet[func(session.Document)]

	mu      sync.RWMutex
	display map[string]options.DisplayOptions
	status  string
	focused bool
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*Workspace)

// WithWorkspaceLogger sets the workspace logger.
func WithWorkspaceLogger(logger logrus.FieldLogger) WorkspaceOption {
	return func(w *Workspace) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithHostCharset sets the charset used to read files without a BOM.
func WithHostCharset(fn func(path string) string) WorkspaceOption {
	return func(w *Workspace) {
		w.hostCharset = fn
	}
}

// WithStyleCharset sets the lookup of the style charset used when writing.
func WithStyleCharset(fn func(ctx context.Context, path string) (string, bool)) WorkspaceOption {
	return func(w *Workspace) {
		w.styleCharset = fn
	}
}

// WithMetrics sets the metrics tracker.
func WithMetrics(m *Metrics) WorkspaceOption {
	return func(w *Workspace) {
		if m != nil {
			w.metrics = m
		}
	}
}

// NewWorkspace creates an empty workspace rooted at root.
func NewWorkspace(root string, opts ...WorkspaceOption) *Workspace {
	w := &Workspace{
		root:    root,
		docs:    NewDocumentManager(),
		logger:  NewNopLogger(),
		metrics: NewMetrics(),
		display: make(map[string]options.DisplayOptions),
		focused: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Root returns the workspace directory.
func (w *Workspace) Root() string {
	return w.root
}

// Documents returns the document manager.
func (w *Workspace) Documents() *DocumentManager {
	return w.docs
}

// Metrics returns the metrics tracker.
func (w *Workspace) Metrics() *Metrics {
	return w.metrics
}

// Open reads a file into a new document. Opening a file that is already
// open makes it active and returns the open document.
func (w *Workspace) Open(path string) (*Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, NewOperationError("open", path, err)
	}
	if doc, ok := w.docs.Get(absPath); ok {
		return doc, w.SetActive(absPath)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, NewOperationError("open", absPath, err)
	}
	cs := w.readCharset(absPath, data)
	text, err := charset.Decode(cs, data)
	if err != nil {
		cs = charset.Detect(data)
		if text, err = charset.Decode(cs, data); err != nil {
			return nil, NewOperationError("open", absPath, err).WithContext("decoding")
		}
	}

	doc := NewDocument(absPath, text, cs)
	if err := w.add(doc); err != nil {
		return nil, NewOperationError("open", absPath, err)
	}
	w.logger.WithFields(logrus.Fields{"path": absPath, "charset": cs}).Debug("opened document")
	return doc, nil
}

// OpenUntitled creates a new untitled document holding text.
func (w *Workspace) OpenUntitled(text string) *Document {
	doc := NewUntitledDocument(w.docs.NextUntitledName(), text)
	// Untitled names come from a counter and cannot collide.
	_ = w.add(doc)
	return doc
}

func (w *Workspace) add(doc *Document) error {
	if err := w.docs.Add(doc); err != nil {
		return err
	}
	w.metrics.RecordOpen()
	for _, fn := range w.didOpen.handlers() {
		fn(doc)
	}
	if w.docs.Active() == doc {
		w.emitActive(doc)
	}
	return nil
}

// Close closes the document at path.
func (w *Workspace) Close(path string) error {
	doc, err := w.lookup(path)
	if err != nil {
		return NewOperationError("close", path, err)
	}
	wasActive := w.docs.Active() == doc
	if err := w.docs.Remove(doc.Path()); err != nil {
		return NewOperationError("close", path, err)
	}

	w.mu.Lock()
	delete(w.display, doc.Path())
	w.mu.Unlock()

	if next := w.docs.Active(); wasActive && next != nil {
		w.emitActive(next)
	}
	return nil
}

// SetActive makes the document at path active.
func (w *Workspace) SetActive(path string) error {
	doc, err := w.lookup(path)
	if err != nil {
		return err
	}
	if _, err := w.docs.SetActive(doc.Path()); err != nil {
		return err
	}
	w.emitActive(doc)
	return nil
}

// SetFocus records whether the host window has focus.
func (w *Workspace) SetFocus(focused bool) {
	w.mu.Lock()
	w.focused = focused
	w.mu.Unlock()

	for _, fn := range w.didChangeFocus.handlers() {
		fn(focused)
	}
}

// Focused reports whether the host window has focus.
func (w *Workspace) Focused() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.focused
}

// NotifyConfigurationChanged tells listeners that host settings changed.
func (w *Workspace) NotifyConfigurationChanged() {
	for _, fn := range w.didChangeConfiguration.handlers() {
		fn()
	}
}

// NotifyExternalSave reports a file written by another program. A file
// that is not open is reported through a transient document.
func (w *Workspace) NotifyExternalSave(path string) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	var target session.Document
	if doc, ok := w.docs.Get(absPath); ok {
		target = doc
	} else {
		target = NewDocument(absPath, "", "")
	}
	w.metrics.RecordExternalSave()
	w.logger.WithField("path", absPath).Debug("external save")
	w.emitSaved(target)
}

// SaveResult describes one save.
type SaveResult struct {
	Path    string
	Batches []transform.Batch
	Before  string
	After   string
	Charset string
	Written bool
}

// Changed reports whether the pre-save edits changed the text.
func (r SaveResult) Changed() bool {
	return r.Before != r.After
}

// Edits returns the number of edits applied across all batches.
func (r SaveResult) Edits() int {
	n := 0
	for _, b := range r.Batches {
		n += len(b.Entries)
	}
	return n
}

// Errors returns the structural errors carried by the batches.
func (r SaveResult) Errors() []error {
	var errs []error
	for _, b := range r.Batches {
		errs = append(errs, b.Errors()...)
	}
	return errs
}

// Save runs the will-save participants, applies their edits, writes the
// document in its charset and raises did-save. If any batch fails to
// apply, nothing is written and the document is unchanged.
func (w *Workspace) Save(ctx context.Context, path string, reason transform.SaveReason) (SaveResult, error) {
	doc, err := w.lookup(path)
	if err != nil {
		return SaveResult{}, NewOperationError("save", path, err)
	}
	if doc.Untitled() {
		return SaveResult{}, NewOperationError("save", doc.Path(), ErrUntitledDocument)
	}

	res, snap, err := w.prepare(ctx, doc, reason)
	if err != nil {
		w.metrics.RecordSaveFailure()
		return res, NewOperationError("save", doc.Path(), err)
	}

	data, err := charset.Encode(res.Charset, res.After)
	if err != nil {
		w.metrics.RecordSaveFailure()
		return res, NewOperationError("save", doc.Path(), err).WithContext("encoding")
	}

	perm := fs.FileMode(0o644)
	if info, err := os.Stat(doc.Path()); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(doc.Path(), data, perm); err != nil {
		w.metrics.RecordSaveFailure()
		return res, NewOperationError("save", doc.Path(), err)
	}

	if res.Changed() {
		doc.replace(snap)
	}
	doc.markSaved(res.Charset)
	res.Written = true
	w.metrics.RecordSave(res.Edits())

	w.logger.WithFields(logrus.Fields{
		"path":    doc.Path(),
		"edits":   res.Edits(),
		"charset": res.Charset,
		"reason":  reason.String(),
	}).Info("saved document")

	w.emitSaved(doc)
	return res, nil
}

// Preview runs the will-save participants without touching the document
// or the disk.
func (w *Workspace) Preview(ctx context.Context, path string, reason transform.SaveReason) (SaveResult, error) {
	doc, err := w.lookup(path)
	if err != nil {
		return SaveResult{}, NewOperationError("preview", path, err)
	}
	res, _, err := w.prepare(ctx, doc, reason)
	if err != nil {
		return res, NewOperationError("preview", doc.Path(), err)
	}
	return res, nil
}

// prepare runs every will-save participant in registration order. Each
// participant sees the content produced by the ones before it.
func (w *Workspace) prepare(ctx context.Context, doc *Document, reason transform.SaveReason) (SaveResult, *buffer.Document, error) {
	target := &pendingSave{Document: doc, snap: doc.Snapshot()}
	res := SaveResult{Path: doc.Path(), Before: target.snap.Text()}

	for _, participant := range w.willSave.handlers() {
		batch, err := participant(ctx, target, reason)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, nil, ctxErr
			}
			if errors.Is(err, session.ErrDisposed) {
				continue
			}
			w.logger.WithField("path", doc.Path()).WithError(err).Warn("save participant failed")
			continue
		}

		next, err := batch.Apply(target.snap)
		if err != nil {
			return res, nil, err
		}
		target.snap = next
		res.Batches = append(res.Batches, batch)
	}

	res.After = target.snap.Text()
	res.Charset = w.writeCharset(ctx, doc)
	return res, target.snap, nil
}

// pendingSave is a document whose snapshot includes the edits of the save
// participants that already ran.
type pendingSave struct {
	*Document
	snap *buffer.Document
}

func (p *pendingSave) Snapshot() *buffer.Document {
	return p.snap
}

func (w *Workspace) readCharset(path string, data []byte) string {
	detected := charset.Detect(data)
	switch detected {
	case charset.UTF8BOM, charset.UTF16BE, charset.UTF16LE:
		return detected
	}
	if w.hostCharset != nil {
		if cs, err := charset.Normalize(w.hostCharset(path)); err == nil {
			return cs
		}
	}
	return detected
}

// writeCharset is the style charset if it names a known charset, else the
// charset the document was read with.
func (w *Workspace) writeCharset(ctx context.Context, doc *Document) string {
	if w.styleCharset != nil && !doc.Untitled() {
		if name, ok := w.styleCharset(ctx, doc.Path()); ok {
			cs, err := charset.Normalize(name)
			if err == nil {
				return cs
			}
			w.logger.WithField("path", doc.Path()).WithError(err).Warn("ignoring style charset")
		}
	}
	return doc.Charset()
}

func (w *Workspace) lookup(path string) (*Document, error) {
	if doc, ok := w.docs.Get(path); ok {
		return doc, nil
	}
	if absPath, err := filepath.Abs(path); err == nil {
		if doc, ok := w.docs.Get(absPath); ok {
			return doc, nil
		}
	}
	return nil, ErrDocumentNotFound
}

func (w *Workspace) emitActive(doc *Document) {
	for _, fn := range w.didChangeActive.handlers() {
		fn(doc)
	}
}

func (w *Workspace) emitSaved(doc session.Document) {
	for _, fn := range w.didSave.handlers() {
		fn(doc)
	}
}

// OnDidOpen registers a handler for opened documents.
func (w *Workspace) OnDidOpen(fn func(session.Document)) session.Subscription {
	return w.didOpen.add(fn)
}

// OnDidChangeActive registers a handler for active document changes.
func (w *Workspace) OnDidChangeActive(fn func(session.Document)) session.Subscription {
	return w.didChangeActive.add(fn)
}

// OnDidChangeFocus registers a handler for window focus changes.
func (w *Workspace) OnDidChangeFocus(fn func(focused bool)) session.Subscription {
	return w.didChangeFocus.add(fn)
}

// OnDidChangeConfiguration registers a handler for host settings changes.
func (w *Workspace) OnDidChangeConfiguration(fn func()) session.Subscription {
	return w.didChangeConfiguration.add(fn)
}

// OnWillSave registers a save participant.
func (w *Workspace) OnWillSave(fn session.WillSaveHandler) session.Subscription {
	return w.willSave.add(fn)
}

// OnDidSave registers a handler for written documents.
func (w *Workspace) OnDidSave(fn func(session.Document)) session.Subscription {
	return w.didSave.add(fn)
}

// Subscribers returns the number of registered handlers.
func (w *Workspace) Subscribers() int {
	return w.didOpen.len() + w.didChangeActive.len() + w.didChangeFocus.len() +
		w.didChangeConfiguration.len() + w.willSave.len() + w.didSave.len()
}

// OpenDocuments lists every open document.
func (w *Workspace) OpenDocuments() []session.Document {
	all := w.docs.All()
	docs := make([]session.Document, len(all))
	for i, d := range all {
		docs[i] = d
	}
	return docs
}

// ActiveDocument returns the active document, or nil.
func (w *Workspace) ActiveDocument() session.Document {
	doc := w.docs.Active()
	if doc == nil {
		return nil
	}
	return doc
}

// SetDisplayOptions records the options applied to a document's view.
func (w *Workspace) SetDisplayOptions(doc session.Document, opts options.DisplayOptions) {
	w.mu.Lock()
	w.display[doc.Path()] = opts
	w.mu.Unlock()
	w.logger.WithFields(logrus.Fields{"path": doc.Path(), "options": opts.String()}).Debug("display options")
}

// DisplayOptions returns the options last applied to the document at path.
func (w *Workspace) DisplayOptions(path string) (options.DisplayOptions, bool) {
	doc, err := w.lookup(path)
	if err != nil {
		return options.DisplayOptions{}, false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	opts, ok := w.display[doc.Path()]
	return opts, ok
}

// ReportStatus records the status text for the active view.
func (w *Workspace) ReportStatus(doc session.Document, text string) {
	w.mu.Lock()
	w.status = text
	w.mu.Unlock()
}

// Status returns the last reported status text.
func (w *Workspace) Status() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}

var (
	_ session.Events         = (*Workspace)(nil)
	_ session.View           = (*Workspace)(nil)
	_ session.StatusReporter = (*Workspace)(nil)
	_ session.Document       = (*Document)(nil)
)
