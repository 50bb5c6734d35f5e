package app

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dshills/stylesync/internal/charset"
	"github.com/dshills/stylesync/internal/engine/buffer"
)

// Document is an open file or an untitled buffer.
type Document struct {
	mu sync.RWMutex

	path     string
	untitled bool
	snapshot *buffer.Document
	charset  string
	modified bool
	version  int64
}

// NewDocument creates a document for a file read from disk.
func NewDocument(path, text, cs string) *Document {
	if cs == "" {
		cs = charset.UTF8
	}
	return &Document{
		path:     path,
		snapshot: buffer.NewDocument(text),
		charset:  cs,
	}
}

// NewUntitledDocument creates a document that has never been saved.
func NewUntitledDocument(name, text string) *Document {
	return &Document{
		path:     name,
		untitled: true,
		snapshot: buffer.NewDocument(text),
		charset:  charset.UTF8,
		modified: text != "",
	}
}

// Path returns the absolute path, or the name of an untitled document.
func (d *Document) Path() string {
	return d.path
}

// Name returns the display name.
func (d *Document) Name() string {
	return filepath.Base(d.path)
}

// Untitled reports whether the document has no file on disk.
func (d *Document) Untitled() bool {
	return d.untitled
}

// Snapshot returns the current content.
func (d *Document) Snapshot() *buffer.Document {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}

// Text returns the current content as a string.
func (d *Document) Text() string {
	return d.Snapshot().Text()
}

// Charset returns the charset the document was read with.
func (d *Document) Charset() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.charset
}

// IsModified reports unsaved changes.
func (d *Document) IsModified() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.modified
}

// Version increases with every content change.
func (d *Document) Version() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// SetText replaces the content and marks the document modified.
func (d *Document) SetText(text string) {
	d.replace(buffer.NewDocument(text))
}

func (d *Document) replace(snap *buffer.Document) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snapshot = snap
	d.modified = true
	d.version++
}

func (d *Document) markSaved(cs string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.charset = cs
	d.modified = false
}

func (d *Document) String() string {
	return fmt.Sprintf("%s (v%d)", d.Name(), d.Version())
}

// DocumentManager tracks open documents in open order.
type DocumentManager struct {
	mu        sync.RWMutex
	documents map[string]*Document
	active    *Document
	order     []string
	counter   int
}

// NewDocumentManager creates an empty document manager.
func NewDocumentManager() *DocumentManager {
	return &DocumentManager{
		documents: make(map[string]*Document),
	}
}

// Add registers a document. The first document added becomes active.
func (dm *DocumentManager) Add(doc *Document) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if _, exists := dm.documents[doc.Path()]; exists {
		return ErrDocumentAlreadyOpen
	}
	dm.documents[doc.Path()] = doc
	dm.order = append(dm.order, doc.Path())
	if dm.active == nil {
		dm.active = doc
	}
	return nil
}

// NextUntitledName returns a fresh name for an untitled document.
func (dm *DocumentManager) NextUntitledName() string {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.counter++
	return fmt.Sprintf("Untitled-%d", dm.counter)
}

// Remove closes a document by path.
func (dm *DocumentManager) Remove(path string) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, exists := dm.documents[path]
	if !exists {
		return ErrDocumentNotFound
	}
	delete(dm.documents, path)
	for i, p := range dm.order {
		if p == path {
			dm.order = append(dm.order[:i], dm.order[i+1:]...)
			break
		}
	}

	if dm.active == doc {
		dm.active = nil
		if len(dm.order) > 0 {
			dm.active = dm.documents[dm.order[len(dm.order)-1]]
		}
	}
	return nil
}

// Active returns the active document, or nil.
func (dm *DocumentManager) Active() *Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.active
}

// SetActive makes the document at path active.
func (dm *DocumentManager) SetActive(path string) (*Document, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, exists := dm.documents[path]
	if !exists {
		return nil, ErrDocumentNotFound
	}
	dm.active = doc
	return doc, nil
}

// Get returns a document by path.
func (dm *DocumentManager) Get(path string) (*Document, bool) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	doc, exists := dm.documents[path]
	return doc, exists
}

// All returns every open document in open order.
func (dm *DocumentManager) All() []*Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	docs := make([]*Document, 0, len(dm.order))
	for _, path := range dm.order {
		docs = append(docs, dm.documents[path])
	}
	return docs
}

// Count returns the number of open documents.
func (dm *DocumentManager) Count() int {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return len(dm.documents)
}

// Dirty returns the documents with unsaved changes, in open order.
func (dm *DocumentManager) Dirty() []*Document {
	var dirty []*Document
	for _, doc := range dm.All() {
		if doc.IsModified() {
			dirty = append(dirty, doc)
		}
	}
	return dirty
}
