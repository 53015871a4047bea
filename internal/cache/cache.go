// Package cache stores API responses under tags so a mutation can invalidate
// exactly the views it affects instead of flushing everything.
package cache

import (
	"context"
	"sync"
	"time"
)

// Store is a tagged byte cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error
	InvalidateTags(ctx context.Context, tags ...string) error
}

var _ Store = (*Memory)(nil)

type entry struct {
	value   []byte
	tags    []string
	expires time.Time
}

// Memory is an in-process Store. The zero value is not usable; call NewMemory.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	tags    map[string]map[string]struct{}
	now     func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		tags:    make(map[string]map[string]struct{}),
		now:     time.Now,
	}
}

// Get returns a copy of the cached value. Expired entries are dropped and
// reported as misses.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.deleteLocked(key)
		return nil, false, nil
	}
	return cloneBytes(e.value), true, nil
}

// Set stores value under key. A non-positive ttl keeps the entry until it is
// invalidated.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteLocked(key)
	e := entry{value: cloneBytes(value), tags: append([]string(nil), tags...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e
	for _, tag := range tags {
		keys, ok := m.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			m.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
	return nil
}

// InvalidateTags removes every entry carrying at least one of tags.
func (m *Memory) InvalidateTags(_ context.Context, tags ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tag := range tags {
		for key := range m.tags[tag] {
			m.deleteLocked(key)
		}
		delete(m.tags, tag)
	}
	return nil
}

// Len reports the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) deleteLocked(key string) {
	e, ok := m.entries[key]
	if !ok {
		return
	}
	delete(m.entries, key)
	for _, tag := range e.tags {
		if keys, ok := m.tags[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(m.tags, tag)
			}
		}
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	dup := make([]byte, len(b))
	copy(dup, b)
	return dup
}
