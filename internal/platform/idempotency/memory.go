package idempotency

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the ledger in process memory. Used by tests and the memory backend.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) lookup(id string) *Record {
	record, ok := s.records[id]
	if !ok {
		return nil
	}
	return &record
}

func (s *MemoryStore) Reserve(_ context.Context, key, fingerprint string, now time.Time, ttl time.Duration) (Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := documentID(key)
	res, write, err := reserve(s.lookup(id), key, fingerprint, now.UTC(), normalizeTTL(ttl))
	if err != nil {
		return Reservation{}, err
	}
	if write != nil {
		s.records[id] = *write
	}
	return res, nil
}

func (s *MemoryStore) Complete(_ context.Context, key, fingerprint string, result Result, now time.Time, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := documentID(key)
	next, err := complete(s.lookup(id), key, fingerprint, result, now.UTC(), normalizeTTL(ttl))
	if err != nil {
		return err
	}
	s.records[id] = next
	return nil
}

func (s *MemoryStore) Release(_ context.Context, key, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := documentID(key)
	drop, err := release(s.lookup(id), fingerprint)
	if drop {
		delete(s.records, id)
	}
	return err
}

// CleanupExpired drops at most limit expired records; limit <= 0 means all of them.
func (s *MemoryStore) CleanupExpired(_ context.Context, now time.Time, limit int) (int, error) {
	now = now.UTC()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, record := range s.records {
		if limit > 0 && removed == limit {
			break
		}
		if expired(record, now) {
			delete(s.records, id)
			removed++
		}
	}
	return removed, nil
}
