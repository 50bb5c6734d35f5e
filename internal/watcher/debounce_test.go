package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockWatcher is a Watcher fed by the test.
type mockWatcher struct {
	mu       sync.Mutex
	events   chan Event
	errors   chan error
	watching map[string]bool
	closed   bool
}

func newMockWatcher() *mockWatcher {
	return &mockWatcher{
		events:   make(chan Event, 100),
		errors:   make(chan error, 100),
		watching: make(map[string]bool),
	}
}

func (m *mockWatcher) Watch(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watching[path] = true
	return nil
}

func (m *mockWatcher) WatchRecursive(path string) error { return m.Watch(path) }

func (m *mockWatcher) Unwatch(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.watching, path)
	return nil
}

func (m *mockWatcher) Events() <-chan Event { return m.events }
func (m *mockWatcher) Errors() <-chan error { return m.errors }

func (m *mockWatcher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
		close(m.errors)
	}
	return nil
}

func (m *mockWatcher) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{WatchedPaths: len(m.watching)}
}

func (m *mockWatcher) IsWatching(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.watching[path]
}

func TestDebouncedWatcher_DefaultDelay(t *testing.T) {
	dw := NewDebouncedWatcher(newMockWatcher(), 0)
	defer dw.Close()
	assert.Equal(t, DefaultDebounceDelay, dw.delay)
}

func TestDebouncedWatcher_PassThrough(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, 50*time.Millisecond)
	defer dw.Close()

	require.NoError(t, dw.Watch("/ws"))
	assert.True(t, dw.IsWatching("/ws"))
	assert.Equal(t, 1, dw.Stats().WatchedPaths)
	require.NoError(t, dw.Unwatch("/ws"))
	assert.False(t, mock.IsWatching("/ws"))
}

func TestDebouncedWatcher_Coalesces(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, 100*time.Millisecond)
	defer dw.Close()

	path := "/ws/.editorconfig"
	now := time.Now()
	mock.events <- Event{Path: path, Op: OpCreate, Timestamp: now}
	mock.events <- Event{Path: path, Op: OpWrite, Timestamp: now.Add(time.Millisecond)}
	mock.events <- Event{Path: path, Op: OpWrite, Timestamp: now.Add(2 * time.Millisecond)}

	select {
	case ev := <-dw.Events():
		assert.Equal(t, path, ev.Path)
		assert.Equal(t, OpCreate|OpWrite, ev.Op)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for debounced event")
	}

	select {
	case ev := <-dw.Events():
		t.Fatalf("unexpected second event %v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDebouncedWatcher_SeparatePaths(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, 30*time.Millisecond)
	defer dw.Close()

	mock.events <- Event{Path: "/a/.editorconfig", Op: OpWrite}
	mock.events <- Event{Path: "/b/.editorconfig", Op: OpWrite}

	seen := map[string]bool{}
	for len(seen) < 2 {
		select {
		case ev := <-dw.Events():
			seen[ev.Path] = true
		case <-time.After(time.Second):
			t.Fatalf("timeout, got %v", seen)
		}
	}
}

func TestDebouncedWatcher_Flush(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, time.Hour)
	defer dw.Close()

	mock.events <- Event{Path: "/ws/.editorconfig", Op: OpWrite}
	require.Eventually(t, func() bool { return dw.PendingCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, dw.Stats().PendingEvents)

	dw.Flush()
	select {
	case ev := <-dw.Events():
		assert.Equal(t, "/ws/.editorconfig", ev.Path)
	default:
		t.Fatal("flush did not deliver the pending event")
	}
	assert.Zero(t, dw.PendingCount())
}

func TestDebouncedWatcher_ForwardsErrors(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, 10*time.Millisecond)
	defer dw.Close()

	boom := errors.New("boom")
	mock.errors <- boom

	select {
	case err := <-dw.Errors():
		assert.Equal(t, boom, err)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for error")
	}
}

func TestDebouncedWatcher_CloseDropsPending(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, time.Hour)

	mock.events <- Event{Path: "/ws/.editorconfig", Op: OpWrite}
	require.Eventually(t, func() bool { return dw.PendingCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, dw.Close())
	require.NoError(t, dw.Close())
	assert.Zero(t, dw.PendingCount())

	_, open := <-dw.Events()
	assert.False(t, open)
	assert.True(t, mock.closed)
}

func TestRun(t *testing.T) {
	mock := newMockWatcher()
	mock.events <- Event{Path: "/ws/.editorconfig", Op: OpWrite}
	mock.errors <- errors.New("overflow")

	var events []Event
	var errs []error
	done := make(chan struct{})
	go func() {
		defer close(done)
		Run(context.Background(), mock, func(e Event) { events = append(events, e) }, func(err error) { errs = append(errs, err) })
	}()

	require.Eventually(t, func() bool {
		return len(mock.events) == 0 && len(mock.errors) == 0
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, mock.Close())
	<-done

	assert.Len(t, events, 1)
	assert.Len(t, errs, 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	Run(ctx, newMockWatcher(), func(Event) { t.Fatal("no events expected") }, nil)
}
