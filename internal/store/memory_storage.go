package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/storage/memory/v2"
)

type counterEntry struct {
	count     int64
	expiresAt time.Time
}

func (e *counterEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// MemoryStorage keeps values in process memory. It backs single-node
// deployments that run without redis; entries do not survive a restart.
type MemoryStorage struct {
	mem      *memory.Storage
	mu       sync.Mutex
	counters map[string]*counterEntry
}

func (s *MemoryStorage) Get(ctx context.Context, key string, val any) error {
	data, err := s.mem.Get(key)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return ErrNotFound
	}
	return json.Unmarshal(data, val)
}

func (s *MemoryStorage) Set(ctx context.Context, key string, val any, expiresIn time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	if expiresIn < 0 {
		expiresIn = 0
	}
	return s.mem.Set(key, data, expiresIn)
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	if entry, ok := s.counters[key]; ok {
		delete(s.counters, key)
		s.mu.Unlock()
		if entry.expired() {
			return ErrNotFound
		}
		return nil
	}
	s.mu.Unlock()

	data, err := s.mem.Get(key)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return ErrNotFound
	}
	return s.mem.Delete(key)
}

// Incr increases the counter stored at key by one. The expiration is fixed
// when the counter is created, matching the redis backend's window.
func (s *MemoryStorage) Incr(ctx context.Context, key string, expiresIn time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.counters[key]
	if !ok || entry.expired() {
		entry = &counterEntry{}
		if expiresIn > 0 {
			entry.expiresAt = time.Now().Add(expiresIn)
		}
		s.counters[key] = entry
	}
	entry.count++
	return entry.count, nil
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		mem:      memory.New(),
		counters: make(map[string]*counterEntry),
	}
}
