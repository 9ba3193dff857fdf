package cache

import (
	"context"
	"sync"
	"time"

	domain "github.com/bilal-alaabadi/mahen-b/internal/entity"
	"github.com/bilal-alaabadi/mahen-b/internal/usecase"
)

// MemoryPendingStore is a process-local pending-order store with TTL
// eviction and a bounded entry count. Used for local runs and tests;
// production deployments use the Redis store.
type MemoryPendingStore struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	ttl        time.Duration
	maxEntries int

	now func() time.Time
}

type memoryEntry struct {
	po        domain.PendingOrder
	expiresAt time.Time
}

func NewMemoryPendingStore(ttl time.Duration, maxEntries int) *MemoryPendingStore {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &MemoryPendingStore{
		entries:    make(map[string]memoryEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *MemoryPendingStore) Put(_ context.Context, po domain.PendingOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpiredLocked()
	if len(s.entries) >= s.maxEntries {
		s.evictOldestLocked()
	}
	s.entries[po.CorrelationID] = memoryEntry{
		po:        po,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryPendingStore) Get(_ context.Context, correlationID string) (domain.PendingOrder, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[correlationID]
	if !ok {
		return domain.PendingOrder{}, false, nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, correlationID)
		return domain.PendingOrder{}, false, nil
	}
	return e.po, true, nil
}

func (s *MemoryPendingStore) Delete(_ context.Context, correlationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, correlationID)
	return nil
}

// Len reports live (non-expired) entries.
func (s *MemoryPendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpiredLocked()
	return len(s.entries)
}

func (s *MemoryPendingStore) evictExpiredLocked() {
	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}

// evictOldestLocked drops the entry closest to expiry to make room.
func (s *MemoryPendingStore) evictOldestLocked() {
	var oldest string
	var oldestAt time.Time
	for k, e := range s.entries {
		if oldest == "" || e.expiresAt.Before(oldestAt) {
			oldest = k
			oldestAt = e.expiresAt
		}
	}
	if oldest != "" {
		delete(s.entries, oldest)
	}
}

var _ usecase.PendingOrderStore = (*MemoryPendingStore)(nil)
