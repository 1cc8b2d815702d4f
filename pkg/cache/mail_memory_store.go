package cache

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

const defaultMaxEntries = 10000

// MemoryStore is an in-process session store used when Redis is not configured.
type MemoryStore struct {
	mu         sync.Mutex
	data       map[string]memEntry
	maxEntries int
	now        func() time.Time
}

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &MemoryStore{
		data:       make(map[string]memEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *MemoryStore) get(key string) ([]byte, bool) {
	e, ok := s.data[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		delete(s.data, key)
		return nil, false
	}
	return e.value, true
}

func (s *MemoryStore) put(key string, value []byte, ttl time.Duration) {
	if _, exists := s.data[key]; !exists && len(s.data) >= s.maxEntries {
		s.evict()
	}
	e := memEntry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.data[key] = e
}

// evict drops expired entries, then the entry closest to expiry if still full.
func (s *MemoryStore) evict() {
	now := s.now()
	var victim string
	var earliest time.Time
	for k, e := range s.data {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(s.data, k)
			continue
		}
		if victim == "" || (!e.expiresAt.IsZero() && (earliest.IsZero() || e.expiresAt.Before(earliest))) {
			victim, earliest = k, e.expiresAt
		}
	}
	if len(s.data) >= s.maxEntries && victim != "" {
		delete(s.data, victim)
	}
}

func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(key, []byte(value), ttl)
	return nil
}

func (s *MemoryStore) Take(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.get(key)
	if !ok {
		return "", false, nil
	}
	delete(s.data, key)
	return string(v), true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	s.mu.Lock()
	v, ok := s.get(key)
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(v, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *MemoryStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(key, data, ttl)
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
