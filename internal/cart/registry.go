package cart

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultRegistrySize = 10000
	DefaultIdleTimeout  = 30 * time.Minute
)

// Registry hands out the cart of a session. The blob store is the source of
// truth: every Get reads the session's blob again, after this process's own
// pending writes for that session have landed. The in-memory entries only
// track those writes and expire after the idle timeout.
type Registry struct {
	blobs    BlobStore
	sessions *expirable.LRU[string, *Store]

	// saves of stores that have left the cache
	draining sync.WaitGroup
}

// NewRegistry caps the cache at size sessions and drops a session after idle.
// Zero values select the defaults.
func NewRegistry(blobs BlobStore, size int, idle time.Duration) *Registry {
	if size <= 0 {
		size = DefaultRegistrySize
	}
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}

	r := &Registry{blobs: blobs}
	r.sessions = expirable.NewLRU[string, *Store](size, func(_ string, s *Store) {
		r.drain(s)
	}, idle)
	return r
}

func (r *Registry) Get(ctx context.Context, session string) *Store {
	prev, ok := r.sessions.Peek(session)
	if ok {
		prev.Wait()
	}

	s := Load(ctx, r.blobs, session)
	r.sessions.Add(session, s)
	if ok {
		// a concurrent request may still be writing through prev
		r.drain(prev)
	}
	return s
}

func (r *Registry) Len() int {
	return r.sessions.Len()
}

// Wait drains pending saves of every cart, cached or evicted.
func (r *Registry) Wait() {
	for _, s := range r.sessions.Values() {
		s.Wait()
	}
	r.draining.Wait()
}

func (r *Registry) drain(s *Store) {
	r.draining.Add(1)
	go func() {
		defer r.draining.Done()
		s.Wait()
	}()
}
