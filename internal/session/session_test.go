package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/stylesync/internal/engine/buffer"
	"github.com/dshills/stylesync/internal/options"
	"github.com/dshills/stylesync/internal/style"
	"github.com/dshills/stylesync/internal/transform"
)

type fakeDoc struct {
	path     string
	untitled bool
	text     string
}

func (d *fakeDoc) Path() string               { return d.path }
func (d *fakeDoc) Untitled() bool             { return d.untitled }
func (d *fakeDoc) Snapshot() *buffer.Document { return buffer.NewDocument(d.text) }

type fakeSub struct {
	cancels *int
}

func (s fakeSub) Cancel() { *s.cancels++ }

type fakeEvents struct {
	open    []Document
	active  Document
	cancels int

	didOpen   []func(Document)
	didActive []func(Document)
	focus     []func(bool)
	config    []func()
	willSave  []WillSaveHandler
	didSave   []func(Document)
}

func (e *fakeEvents) sub() Subscription { return fakeSub{cancels: &e.cancels} }

func (e *fakeEvents) OnDidOpen(fn func(Document)) Subscription {
	e.didOpen = append(e.didOpen, fn)
	return e.sub()
}

func (e *fakeEvents) OnDidChangeActive(fn func(Document)) Subscription {
	e.didActive = append(e.didActive, fn)
	return e.sub()
}

func (e *fakeEvents) OnDidChangeFocus(fn func(bool)) Subscription {
	e.focus = append(e.focus, fn)
	return e.sub()
}

func (e *fakeEvents) OnDidChangeConfiguration(fn func()) Subscription {
	e.config = append(e.config, fn)
	return e.sub()
}

func (e *fakeEvents) OnWillSave(fn WillSaveHandler) Subscription {
	e.willSave = append(e.willSave, fn)
	return e.sub()
}

func (e *fakeEvents) OnDidSave(fn func(Document)) Subscription {
	e.didSave = append(e.didSave, fn)
	return e.sub()
}

func (e *fakeEvents) OpenDocuments() []Document { return e.open }

func (e *fakeEvents) ActiveDocument() Document { return e.active }

type applied struct {
	path string
	opts options.DisplayOptions
}

type fakeView struct {
	applied []applied
	status  []string
}

func (v *fakeView) SetDisplayOptions(doc Document, opts options.DisplayOptions) {
	v.applied = append(v.applied, applied{path: doc.Path(), opts: opts})
}

func (v *fakeView) ReportStatus(_ Document, text string) {
	v.status = append(v.status, text)
}

func (v *fakeView) last() applied {
	if len(v.applied) == 0 {
		return applied{}
	}
	return v.applied[len(v.applied)-1]
}

type fakeSettings struct {
	defaults options.WorkspaceDefaults
	policy   transform.HostPolicy
}

func (s *fakeSettings) Defaults(string) options.WorkspaceDefaults { return s.defaults }
func (s *fakeSettings) Policy(string) transform.HostPolicy        { return s.policy }

// styleTable is a parser returning canned properties per path.
type styleTable struct {
	mu     sync.Mutex
	styles map[string]map[string]string
	calls  map[string]int
	err    error
}

func newStyleTable() *styleTable {
	return &styleTable{styles: make(map[string]map[string]string), calls: make(map[string]int)}
}

func (t *styleTable) set(path string, kv map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.styles[path] = kv
}

func (t *styleTable) Parse(path string) (style.Properties, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls[path]++
	if t.err != nil {
		return style.Properties{}, t.err
	}
	return style.FromRaw(t.styles[path]), nil
}

func (t *styleTable) callsFor(path string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[path]
}

type fixture struct {
	table    *styleTable
	resolver *style.Resolver
	events   *fakeEvents
	view     *fakeView
	settings *fakeSettings
	session  *Session
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		table:    newStyleTable(),
		events:   &fakeEvents{},
		view:     &fakeView{},
		settings: &fakeSettings{defaults: options.WorkspaceDefaults{TabSize: options.Int(4), InsertSpaces: options.Bool(true)}},
	}
	f.resolver = style.NewResolver(f.table)
	f.session = New(f.resolver, f.settings, f.view, f.events, opts...)
	return f
}

func abs(name string) string {
	return filepath.Join(string(filepath.Separator), "ws", name)
}

func TestStartResolvesOpenDocumentsAndAppliesActive(t *testing.T) {
	f := newFixture(t)
	a := &fakeDoc{path: abs("a.go")}
	b := &fakeDoc{path: abs("b.py")}
	f.table.set(a.path, map[string]string{"indent_style": "tab", "tab_width": "8"})
	f.table.set(b.path, map[string]string{"indent_style": "space", "indent_size": "2"})
	f.events.open = []Document{a, b}
	f.events.active = b

	require.NoError(t, f.session.Start(context.Background()))
	assert.Equal(t, StateWatching, f.session.State())

	assert.Equal(t, 1, f.table.callsFor(a.path))
	assert.Equal(t, 1, f.table.callsFor(b.path), "active document must be served from the cache")

	require.Len(t, f.view.applied, 1)
	assert.Equal(t, b.path, f.view.last().path)
	assert.Equal(t, options.DisplayOptions{TabSize: options.Int(2), InsertSpaces: options.Bool(true)}, f.view.last().opts)
	assert.Equal(t, []string{"Spaces: 2"}, f.view.status)
}

func TestStartTwice(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Start(context.Background()))
	assert.ErrorIs(t, f.session.Start(context.Background()), ErrAlreadyStarted)
}

func TestActivationEvents(t *testing.T) {
	f := newFixture(t)
	doc := &fakeDoc{path: abs("main.go")}
	f.table.set(doc.path, map[string]string{"indent_style": "tab", "indent_size": "5"})
	f.settings.defaults = options.WorkspaceDefaults{TabSize: options.Int(4), InsertSpaces: options.Bool(false)}
	require.NoError(t, f.session.Start(context.Background()))

	f.events.didOpen[0](doc)
	assert.Equal(t, options.DisplayOptions{TabSize: options.Int(5), InsertSpaces: options.Bool(false)}, f.view.last().opts)

	f.events.active = doc
	f.events.focus[0](false)
	assert.Len(t, f.view.applied, 1, "losing focus applies nothing")

	f.events.focus[0](true)
	assert.Len(t, f.view.applied, 2)

	f.events.didActive[0](doc)
	assert.Len(t, f.view.applied, 3)
	assert.Equal(t, 1, f.table.callsFor(doc.path))
}

func TestConfigurationChangedRereadsDefaults(t *testing.T) {
	f := newFixture(t)
	doc := &fakeDoc{path: abs("notes.txt")}
	f.events.active = doc
	require.NoError(t, f.session.Start(context.Background()))
	assert.Equal(t, options.DisplayOptions{TabSize: options.Int(4), InsertSpaces: options.Bool(true)}, f.view.last().opts)

	f.settings.defaults = options.WorkspaceDefaults{TabSize: options.Int(8), InsertSpaces: options.Bool(false)}
	f.events.config[0]()

	assert.Equal(t, options.DisplayOptions{TabSize: options.Int(8), InsertSpaces: options.Bool(false)}, f.view.last().opts)
}

func TestWillSave(t *testing.T) {
	f := newFixture(t)
	doc := &fakeDoc{path: abs("x.txt"), text: "foo"}
	f.table.set(doc.path, map[string]string{"insert_final_newline": "true", "end_of_line": "crlf"})
	require.NoError(t, f.session.Start(context.Background()))

	require.Len(t, f.events.willSave, 1)
	batch, err := f.events.willSave[0](context.Background(), doc, transform.SaveManual)
	require.NoError(t, err)
	require.Len(t, batch.Entries, 1)
	assert.Equal(t, buffer.NewInsert(buffer.Point{Line: 0, Column: 3}, "\r\n"), batch.Entries[0].Edit)
	assert.Equal(t, "insertFinalNewline", batch.Entries[0].Source)
}

func TestWillSaveReportsPolicyConflictInBatch(t *testing.T) {
	f := newFixture(t)
	f.settings.policy = transform.HostPolicy{TrimTrailingWhitespace: true}
	doc := &fakeDoc{path: abs("x.txt"), text: "foo  "}
	f.table.set(doc.path, map[string]string{"trim_trailing_whitespace": "false", "insert_final_newline": "true"})

	batch, err := f.session.WillSave(context.Background(), doc, transform.SaveAfterDelay)
	require.NoError(t, err)
	assert.ErrorIs(t, batch.Err(), transform.ErrPolicyConflict)
	assert.Len(t, batch.Entries, 1)
}

func TestWillSaveCancelled(t *testing.T) {
	f := newFixture(t)
	doc := &fakeDoc{path: abs("x.txt"), text: "foo  "}
	f.table.set(doc.path, map[string]string{"trim_trailing_whitespace": "true"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.session.WillSave(ctx, doc, transform.SaveManual)
	assert.ErrorIs(t, err, context.Canceled)

	// The cache is still usable afterwards.
	batch, err := f.session.WillSave(context.Background(), doc, transform.SaveManual)
	require.NoError(t, err)
	assert.Len(t, batch.Entries, 1)
}

func TestWillSaveResolutionError(t *testing.T) {
	f := newFixture(t)
	f.table.err = errors.New("bad section header")

	_, err := f.session.WillSave(context.Background(), &fakeDoc{path: abs("x.txt")}, transform.SaveManual)
	assert.ErrorIs(t, err, style.ErrResolution)
}

func TestStyleFileSaveInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	doc := &fakeDoc{path: abs("main.go")}
	f.table.set(doc.path, map[string]string{"indent_style": "space", "indent_size": "2"})
	f.events.open = []Document{doc}
	f.events.active = doc
	require.NoError(t, f.session.Start(context.Background()))
	require.Equal(t, 1, f.table.callsFor(doc.path))

	// An ordinary save leaves the cache alone.
	f.events.didSave[0](doc)
	assert.Equal(t, 1, f.table.callsFor(doc.path))

	f.table.set(doc.path, map[string]string{"indent_style": "tab", "tab_width": "3"})
	f.events.didSave[0](&fakeDoc{path: abs(".editorconfig")})

	assert.Equal(t, 2, f.table.callsFor(doc.path), "parser must be re-invoked after a style file save")
	assert.Equal(t, options.DisplayOptions{TabSize: options.Int(3), InsertSpaces: options.Bool(false)}, f.view.last().opts)
}

func TestStyleFileNameMatchesExactly(t *testing.T) {
	f := newFixture(t)
	doc := &fakeDoc{path: abs("main.go")}
	f.events.open = []Document{doc}
	require.NoError(t, f.session.Start(context.Background()))

	for _, name := range []string{"x.editorconfig", ".editorconfig.bak", ".EditorConfig"} {
		require.NoError(t, f.session.DidSave(context.Background(), &fakeDoc{path: abs(name)}))
	}
	require.NoError(t, f.session.DidSave(context.Background(), &fakeDoc{path: ".editorconfig", untitled: true}))
	assert.Equal(t, 1, f.table.callsFor(doc.path))
	assert.Equal(t, int64(0), f.resolver.Stats().Clears)
}

func TestCustomConfigName(t *testing.T) {
	f := newFixture(t, WithConfigName(".stylerc"))
	require.NoError(t, f.session.DidSave(context.Background(), &fakeDoc{path: abs(".stylerc")}))
	assert.Equal(t, int64(1), f.resolver.Stats().Clears)
}

func TestUntitledDocuments(t *testing.T) {
	root := abs("")
	f := newFixture(t, WithWorkspaceRoot(root))
	f.table.set(filepath.Join(root, "Untitled-1"), map[string]string{"indent_size": "3"})

	require.NoError(t, f.session.Activate(context.Background(), &fakeDoc{path: "Untitled-1", untitled: true}))
	assert.Equal(t, options.Int(3), f.view.last().opts.TabSize)

	g := newFixture(t)
	require.NoError(t, g.session.Activate(context.Background(), &fakeDoc{path: "Untitled-1", untitled: true}))
	assert.Equal(t, options.Int(4), g.view.last().opts.TabSize)
	assert.Empty(t, g.table.calls, "untitled documents without a workspace root are not resolved")
}

func TestDispose(t *testing.T) {
	f := newFixture(t)
	doc := &fakeDoc{path: abs("main.go")}
	f.events.active = doc
	require.NoError(t, f.session.Start(context.Background()))
	applies := len(f.view.applied)

	f.session.Dispose()
	f.session.Dispose()
	assert.Equal(t, StateDisposed, f.session.State())
	assert.Equal(t, 6, f.events.cancels, "every subscription cancelled exactly once")

	// Late events are ignored.
	f.events.didOpen[0](doc)
	f.events.config[0]()
	f.events.didSave[0](&fakeDoc{path: abs(".editorconfig")})
	assert.Len(t, f.view.applied, applies)
	assert.Equal(t, int64(0), f.resolver.Stats().Clears)

	_, err := f.events.willSave[0](context.Background(), doc, transform.SaveManual)
	assert.ErrorIs(t, err, ErrDisposed)
	assert.ErrorIs(t, f.session.Activate(context.Background(), doc), ErrDisposed)
	assert.ErrorIs(t, f.session.Start(context.Background()), ErrDisposed)
}

func TestDisposeBeforeStart(t *testing.T) {
	f := newFixture(t)
	f.session.Dispose()
	assert.Equal(t, StateDisposed, f.session.State())
	assert.Zero(t, f.events.cancels)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "watching", StateWatching.String())
	assert.Equal(t, "disposed", StateDisposed.String())
}
