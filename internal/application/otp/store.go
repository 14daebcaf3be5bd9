package otp

import (
	"context"
	"sync"
	"time"

	"github.com/thlight-panel/internal/domain"
)

// MemoryStore is an in-process Store keyed by normalized address.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]domain.OTPRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]domain.OTPRecord)}
}

func (s *MemoryStore) Get(_ context.Context, address string) (domain.OTPRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.m[address]
	return rec, ok, nil
}

// Put replaces the record for rec.Address.
func (s *MemoryStore) Put(_ context.Context, rec domain.OTPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[rec.Address] = rec
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, address)
	return nil
}

// Update runs fn under the store's write lock.
func (s *MemoryStore) Update(_ context.Context, address string, fn func(rec *domain.OTPRecord, found bool) domain.RecordChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, found := s.m[address]
	switch fn(&rec, found) {
	case domain.RecordSave:
		s.m[address] = rec
	case domain.RecordDelete:
		delete(s.m, address)
	}
	return nil
}

func (s *MemoryStore) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for addr, rec := range s.m {
		if rec.Expired(now) {
			delete(s.m, addr)
			n++
		}
	}
	return n, nil
}

// Len returns the number of pending records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
