package session

import (
	"context"

	"github.com/dshills/stylesync/internal/engine/buffer"
	"github.com/dshills/stylesync/internal/options"
	"github.com/dshills/stylesync/internal/style"
	"github.com/dshills/stylesync/internal/transform"
)

// Document is a host document.
type Document interface {
	// Path is the absolute file path, or the bare name of an untitled document.
	Path() string

	// Untitled reports whether the document has never been saved.
	Untitled() bool

	// Snapshot returns the current content.
	Snapshot() *buffer.Document
}

// View applies display options to the editor showing a document.
type View interface {
	SetDisplayOptions(doc Document, opts options.DisplayOptions)
}

// StatusReporter is implemented by views that can show a short status text.
type StatusReporter interface {
	ReportStatus(doc Document, text string)
}

// Subscription is a registered event handler.
type Subscription interface {
	// Cancel unregisters the handler. Safe to call more than once.
	Cancel()
}

// WillSaveHandler computes the edits to apply before a document is written.
// The host blocks its write until the handler returns and applies the batch
// atomically. ctx is cancelled if the save is abandoned.
type WillSaveHandler func(ctx context.Context, doc Document, reason transform.SaveReason) (transform.Batch, error)

// Events is the host's lifecycle event source.
type Events interface {
	OnDidOpen(fn func(Document)) Subscription
	OnDidChangeActive(fn func(Document)) Subscription
	OnDidChangeFocus(fn func(focused bool)) Subscription
	OnDidChangeConfiguration(fn func()) Subscription
	OnWillSave(fn WillSaveHandler) Subscription
	OnDidSave(fn func(Document)) Subscription

	// OpenDocuments lists every open document.
	OpenDocuments() []Document

	// ActiveDocument returns the focused document, or nil.
	ActiveDocument() Document
}

// Settings is the host's settings store, scoped per path.
type Settings interface {
	// Defaults returns the host indentation settings for path.
	Defaults(path string) options.WorkspaceDefaults

	// Policy returns the host save-time settings for path.
	Policy(path string) transform.HostPolicy
}

// Resolver resolves style properties and owns their cache.
type Resolver interface {
	Resolve(ctx context.Context, path string) (style.Properties, error)
	Clear()
}
