package ratefetch

import (
	"context"
	"sync"
	"time"
)

// Entry is what the fetcher keeps in its cache: the raw document and when it
// was fetched.
type Entry struct {
	Source   []byte    `json:"source"`
	SaveTime time.Time `json:"saveTime"`
}

// CacheStore persists entries by key. Load returns (nil, nil) on a miss.
type CacheStore interface {
	Load(ctx context.Context, key string) (*Entry, error)
	Save(ctx context.Context, entry *Entry, key string) error
}

// InMemoryCache is a process-local CacheStore, safe for concurrent use.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{entries: make(map[string]Entry)}
}

func (c *InMemoryCache) Load(_ context.Context, key string) (*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	// copy so callers cannot modify the cached bytes
	e.Source = append([]byte(nil), e.Source...)
	return &e, nil
}

func (c *InMemoryCache) Save(_ context.Context, entry *Entry, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries == nil {
		c.entries = make(map[string]Entry)
	}
	c.entries[key] = Entry{
		Source:   append([]byte(nil), entry.Source...),
		SaveTime: entry.SaveTime,
	}
	return nil
}
