package style

import (
	"context"
	"io"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Stats provides resolver cache information.
type Stats struct {
	// Entries is the number of cached paths.
	Entries int
	// Hits is the number of resolutions served from the cache.
	Hits int64
	// Parses is the number of times the parser was invoked.
	Parses int64
	// Clears is the number of times the cache was emptied.
	Clears int64
}

// Resolver resolves and caches Properties per path.
//
// Concurrent requests for a path that is still being parsed share a single
// parse. The cache is only ever emptied wholesale or per directory; each
// clear starts a new generation so a parse begun before the clear never
// writes its now-stale result back.
type Resolver struct {
	parser Parser
	logger logrus.FieldLogger

	mu         sync.Mutex
	cache      map[string]Properties
	generation uint64

	group singleflight.Group

	hits   atomic.Int64
	parses atomic.Int64
	clears atomic.Int64
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(logger logrus.FieldLogger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a resolver delegating to parser.
func NewResolver(parser Parser, opts ...ResolverOption) *Resolver {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	r := &Resolver{
		parser: parser,
		logger: discard,
		cache:  make(map[string]Properties),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the Properties for path.
//
// An empty path resolves to empty Properties. A malformed style file yields a
// *ResolutionError and is not cached. Cancelling ctx abandons the wait; the
// shared parse still completes and caches its result.
func (r *Resolver) Resolve(ctx context.Context, path string) (Properties, error) {
	if path == "" {
		return Properties{}, nil
	}
	if err := ctx.Err(); err != nil {
		return Properties{}, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return Properties{}, &ResolutionError{Path: path, Err: err}
	}

	r.mu.Lock()
	if props, ok := r.cache[absPath]; ok {
		r.mu.Unlock()
		r.hits.Add(1)
		return props, nil
	}
	gen := r.generation
	r.mu.Unlock()

	key := strconv.FormatUint(gen, 10) + "\x00" + absPath
	ch := r.group.DoChan(key, func() (any, error) {
		return r.parse(absPath, gen)
	})

	select {
	case <-ctx.Done():
		return Properties{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Properties{}, res.Err
		}
		return res.Val.(Properties), nil
	}
}

// parse runs the parser once and stores the result if no clear happened
// in the meantime.
func (r *Resolver) parse(absPath string, gen uint64) (Properties, error) {
	// A flight that finished between our cache miss and DoChan already
	// stored the result.
	r.mu.Lock()
	if props, ok := r.cache[absPath]; ok && r.generation == gen {
		r.mu.Unlock()
		r.hits.Add(1)
		return props, nil
	}
	r.mu.Unlock()

	r.parses.Add(1)
	log := r.logger.WithField("path", absPath)
	log.Debug("parsing style")

	props, err := r.parser.Parse(absPath)
	if err != nil {
		log.WithError(err).Warn("style file could not be parsed")
		return Properties{}, &ResolutionError{Path: absPath, Err: err}
	}
	props = props.withTabIndentSize()

	r.mu.Lock()
	if r.generation == gen {
		r.cache[absPath] = props
	} else {
		log.Debug("discarding style parsed before cache clear")
	}
	r.mu.Unlock()

	return props, nil
}

// Cached returns the cached Properties for path without parsing.
func (r *Resolver) Cached(path string) (Properties, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Properties{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	props, ok := r.cache[absPath]
	return props, ok
}

// Clear empties the whole cache.
func (r *Resolver) Clear() {
	r.mu.Lock()
	n := len(r.cache)
	r.cache = make(map[string]Properties)
	r.generation++
	r.mu.Unlock()

	r.clears.Add(1)
	r.logger.WithField("entries", n).Debug("style cache cleared")
}

// Stats returns cache statistics.
func (r *Resolver) Stats() Stats {
	r.mu.Lock()
	entries := len(r.cache)
	r.mu.Unlock()

	return Stats{
		Entries: entries,
		Hits:    r.hits.Load(),
		Parses:  r.parses.Load(),
		Clears:  r.clears.Load(),
	}
}
