package match

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Store persists match records.
type Store interface {
	// Save inserts or replaces the record with the same ID
	Save(ctx context.Context, rec Record) error

	// Get returns the record with id, or ErrNotFound
	Get(ctx context.Context, id string) (Record, error)

	// List returns up to limit records, most recently started first. A
	// limit <= 0 returns everything.
	List(ctx context.Context, limit int) ([]Record, error)

	// Close releases the store's resources
	Close() error
}

// StoreDriver names a Store implementation.
type StoreDriver string

const (
	StoreMemory   StoreDriver = "memory"
	StoreFile     StoreDriver = "file"
	StorePostgres StoreDriver = "postgres"
)

// StoreConfig selects and configures a Store.
type StoreConfig struct {
	Driver      StoreDriver
	Dir         string // file driver
	PostgresDSN string // postgres driver
}

// NewStore creates the store named by cfg.Driver.
func NewStore(ctx context.Context, cfg StoreConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Driver {
	case "", StoreMemory:
		return NewMemoryStore(), nil
	case StoreFile:
		return NewFileStore(cfg.Dir, logger)
	case StorePostgres:
		store, err := NewPostgresStore(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("%q: %w", cfg.Driver, ErrInvalidStoreDriver)
}

// MemoryStore keeps records in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (m *MemoryStore) Save(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return Record{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return rec, nil
}

func (m *MemoryStore) List(_ context.Context, limit int) ([]Record, error) {
	m.mu.RLock()
	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	m.mu.RUnlock()
	return newestFirst(out, limit), nil
}

func (m *MemoryStore) Close() error { return nil }

// newestFirst sorts by start time, newest first with ID as tie break, and
// truncates to limit.
func newestFirst(recs []Record, limit int) []Record {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].StartedAt.Equal(recs[j].StartedAt) {
			return recs[i].StartedAt.After(recs[j].StartedAt)
		}
		return recs[i].ID < recs[j].ID
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}
