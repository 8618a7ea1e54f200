package matchserver

import (
	"sync"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	idempotencyTTL     = 24 * time.Hour
	idempotencyMaxSize = 1000
)

type idempotencyEntry struct {
	response  *structpb.Struct
	createdAt time.Time
}

// IdempotencyCache remembers PlayMatch responses by the caller's request_id,
// so a retried request returns the first result instead of playing again.
type IdempotencyCache struct {
	mu    sync.RWMutex
	cache map[string]*idempotencyEntry
	now   func() time.Time
}

func NewIdempotencyCache() *IdempotencyCache {
	return &IdempotencyCache{
		cache: make(map[string]*idempotencyEntry),
		now:   time.Now,
	}
}

// Check returns a copy of the cached response for key, or nil.
func (ic *IdempotencyCache) Check(key string) *structpb.Struct {
	if key == "" {
		return nil
	}

	ic.mu.RLock()
	defer ic.mu.RUnlock()

	entry, exists := ic.cache[key]
	if !exists || ic.now().Sub(entry.createdAt) > idempotencyTTL {
		return nil
	}
	return proto.Clone(entry.response).(*structpb.Struct)
}

// Store caches resp under key. An empty key is ignored.
func (ic *IdempotencyCache) Store(key string, resp *structpb.Struct) {
	if key == "" {
		return
	}

	ic.mu.Lock()
	defer ic.mu.Unlock()

	ic.cache[key] = &idempotencyEntry{
		response:  proto.Clone(resp).(*structpb.Struct),
		createdAt: ic.now(),
	}
	if len(ic.cache) > idempotencyMaxSize {
		ic.cleanupLocked()
	}
}

// Len reports the number of cached entries.
func (ic *IdempotencyCache) Len() int {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return len(ic.cache)
}

// cleanupLocked drops expired entries. Must be called with mu held.
func (ic *IdempotencyCache) cleanupLocked() {
	cutoff := ic.now().Add(-idempotencyTTL)
	for key, entry := range ic.cache {
		if entry.createdAt.Before(cutoff) {
			delete(ic.cache, key)
		}
	}
}
