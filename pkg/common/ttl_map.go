package common

import (
	"sync"
	"time"
)

// DefaultTTLMapCapacity bounds each memoization map so repeated unique
// inputs cannot grow memory without limit.
const DefaultTTLMapCapacity = 4096

// TTLEntry represents an entry in TTLMap
type TTLEntry struct {
	Value     interface{}
	ExpiresAt time.Time
}

// TTLMap is a thread-safe, capacity-bounded map with TTL for each entry.
type TTLMap struct {
	Data     map[string]*TTLEntry
	Mu       sync.RWMutex
	TTL      time.Duration
	Capacity int
}

// NewTTLMap creates a new TTLMap with the specified TTL and the default capacity
func NewTTLMap(ttl time.Duration) *TTLMap {
	return NewTTLMapWithCapacity(ttl, DefaultTTLMapCapacity)
}

// NewTTLMapWithCapacity creates a new TTLMap with the specified TTL and capacity
func NewTTLMapWithCapacity(ttl time.Duration, capacity int) *TTLMap {
	if capacity <= 0 {
		capacity = DefaultTTLMapCapacity
	}
	return &TTLMap{
		Data:     make(map[string]*TTLEntry),
		TTL:      ttl,
		Capacity: capacity,
	}
}

// Get retrieves a value from the TTLMap if it hasn't expired
func (m *TTLMap) Get(key string) (interface{}, bool) {
	m.Mu.RLock()
	entry, exists := m.Data[key]
	if !exists {
		m.Mu.RUnlock()
		return nil, false
	}
	isExpired := time.Now().After(entry.ExpiresAt)
	value := entry.Value
	m.Mu.RUnlock()

	if isExpired {
		m.Mu.Lock()
		if current, ok := m.Data[key]; ok && time.Now().After(current.ExpiresAt) {
			delete(m.Data, key)
		}
		m.Mu.Unlock()
		return nil, false
	}

	return value, true
}

// Set adds or updates a value in the TTLMap. When the map is at capacity,
// expired entries are evicted first; if none have expired, the entry
// closest to expiry is dropped.
func (m *TTLMap) Set(key string, value interface{}) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if _, exists := m.Data[key]; !exists && len(m.Data) >= m.Capacity {
		m.evictLocked()
	}

	m.Data[key] = &TTLEntry{
		Value:     value,
		ExpiresAt: time.Now().Add(m.TTL),
	}
}

// Delete removes a key from the TTLMap
func (m *TTLMap) Delete(key string) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	delete(m.Data, key)
}

// Clear removes all entries from the TTLMap
func (m *TTLMap) Clear() {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Data = make(map[string]*TTLEntry)
}

// Len returns the number of live entries
func (m *TTLMap) Len() int {
	m.Mu.RLock()
	defer m.Mu.RUnlock()
	return len(m.Data)
}

func (m *TTLMap) evictLocked() {
	now := time.Now()
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for k, e := range m.Data {
		if now.After(e.ExpiresAt) {
			delete(m.Data, k)
			found = true
			continue
		}
		if oldestKey == "" || e.ExpiresAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.ExpiresAt
		}
	}
	if !found && oldestKey != "" {
		delete(m.Data, oldestKey)
	}
}
