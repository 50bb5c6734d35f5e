package app

import (
	"sync"

	"github.com/dshills/stylesync/internal/session"
)

// handlerSet is an ordered set of registered handlers. Dispatch works on a
// copy, so a handler may cancel subscriptions while it runs.
type handlerSet[F any] struct {
	mu      sync.Mutex
	nextID  uint64
	entries []handlerEntry[F]
}

type handlerEntry[F any] struct {
	id uint64
	fn F
}

func (s *handlerSet[F]) add(fn F) session.Subscription {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.entries = append(s.entries, handlerEntry[F]{id: id, fn: fn})
	s.mu.Unlock()

	return &subscription{cancel: func() { s.remove(id) }}
}

func (s *handlerSet[F]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.id == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

func (s *handlerSet[F]) handlers() []F {
	s.mu.Lock()
	defer s.mu.Unlock()
	fns := make([]F, len(s.entries))
	for i, e := range s.entries {
		fns[i] = e.fn
	}
	return fns
}

func (s *handlerSet[F]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

type subscription struct {
	once   sync.Once
	cancel func()
}

// Cancel unregisters the handler.
func (s *subscription) Cancel() {
	s.once.Do(s.cancel)
}
