// Package cache provides caching implementations for Verdict check results.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stagewiki/verdict"
)

// Compile-time interface check.
var _ verdict.Cache = (*Memory)(nil)

// Memory is an in-memory cache with TTL-based expiration.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	maxSize int
}

type entry struct {
	result    *verdict.CheckResult
	expiresAt time.Time
}

// MemoryOption configures the memory cache.
type MemoryOption func(*Memory)

// WithTTL sets the cache entry time-to-live.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) { m.ttl = ttl }
}

// WithMaxSize sets the maximum number of cache entries.
func WithMaxSize(n int) MemoryOption {
	return func(m *Memory) { m.maxSize = n }
}

// NewMemory creates a new in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]*entry),
		ttl:     5 * time.Minute,
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a cached check result.
func (m *Memory) Get(_ context.Context, accountID string, req *verdict.CheckRequest) (*verdict.CheckResult, bool) {
	key := cacheKey(accountID, req)
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return e.result, true
}

// Set stores a check result in the cache.
func (m *Memory) Set(_ context.Context, accountID string, req *verdict.CheckRequest, result *verdict.CheckResult) {
	key := cacheKey(accountID, req)
	m.mu.Lock()
	defer m.mu.Unlock()

	// Evict if at capacity.
	if len(m.entries) >= m.maxSize {
		m.evictExpired()
		if len(m.entries) >= m.maxSize {
			// Evict arbitrary entry.
			m.evictOne()
		}
	}

	m.entries[key] = &entry{
		result:    result,
		expiresAt: time.Now().Add(m.ttl),
	}
}

// InvalidateAccount removes all cached results for an account.
func (m *Memory) InvalidateAccount(_ context.Context, accountID string) {
	prefix := accountID + ":"
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			delete(m.entries, k)
		}
	}
}

// InvalidatePrincipal removes all cached results for a specific principal.
func (m *Memory) InvalidatePrincipal(_ context.Context, accountID string, principalID string) {
	subKey := fmt.Sprintf("%s:%s:", accountID, principalID)
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if len(k) >= len(subKey) && k[:len(subKey)] == subKey {
			delete(m.entries, k)
		}
	}
}

func cacheKey(accountID string, req *verdict.CheckRequest) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		accountID,
		req.Principal.ID,
		req.Principal.Role,
		req.Action,
		req.Resource.Type,
		req.Resource.ID,
	)
}

// evictExpired removes all expired entries. Must hold write lock.
func (m *Memory) evictExpired() {
	now := time.Now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

// evictOne removes one arbitrary entry. Must hold write lock.
func (m *Memory) evictOne() {
	for k := range m.entries {
		delete(m.entries, k)
		return
	}
}
