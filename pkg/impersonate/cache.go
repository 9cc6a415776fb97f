package impersonate

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// InMemoryCacheStore implements the CacheStore interface with an in-process
// map. Entries are stored as JSON blobs under the configured namespace key so
// round-trip behavior and key layout match an external key-value backend.
type InMemoryCacheStore struct {
	key     string
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewInMemoryCacheStore creates a new empty cache store. Entries live under
// the given namespace key, normally ImpersonationConfig.CacheKey.
func NewInMemoryCacheStore(key string) *InMemoryCacheStore {
	return &InMemoryCacheStore{
		key:     key,
		entries: make(map[string][]byte),
	}
}

func (c *InMemoryCacheStore) entryKey(devUserID uuid.UUID) string {
	return c.key + ":" + devUserID.String()
}

func (c *InMemoryCacheStore) Get(ctx context.Context, devUserID uuid.UUID) (*Context, error) {
	c.mu.RLock()
	raw, ok := c.entries[c.entryKey(devUserID)]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var ic Context
	if err := json.Unmarshal(raw, &ic); err != nil {
		return nil, fmt.Errorf("failed to decode cached session: %w", err)
	}
	return &ic, nil
}

func (c *InMemoryCacheStore) Set(ctx context.Context, devUserID uuid.UUID, ic *Context) error {
	raw, err := json.Marshal(ic)
	if err != nil {
		return fmt.Errorf("failed to encode session for cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[c.entryKey(devUserID)] = raw
	return nil
}

func (c *InMemoryCacheStore) Remove(ctx context.Context, devUserID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, c.entryKey(devUserID))
	return nil
}
