package cache

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/retailcrm/backend/internal/domain/integration"
)

// InMemorySyncLogStore keeps one integration.SyncLog ring per user.
// Entries are lost on restart and are not shared across instances.
type InMemorySyncLogStore struct {
	mu       sync.RWMutex
	logs     map[uuid.UUID]*integration.SyncLog
	capacity int
}

// Ensure InMemorySyncLogStore implements SyncLogStore
var _ integration.SyncLogStore = (*InMemorySyncLogStore)(nil)

// NewInMemorySyncLogStore creates a store; capacity <= 0 uses integration.DefaultSyncLogCapacity
func NewInMemorySyncLogStore(capacity int) *InMemorySyncLogStore {
	if capacity <= 0 {
		capacity = integration.DefaultSyncLogCapacity
	}
	return &InMemorySyncLogStore{
		logs:     make(map[uuid.UUID]*integration.SyncLog),
		capacity: capacity,
	}
}

// Append adds the entry to the front of the user's ring
func (s *InMemorySyncLogStore) Append(_ context.Context, entry integration.SyncLogEntry) error {
	s.ring(entry.UserID).Append(entry)
	return nil
}

// List returns up to limit entries, newest first
func (s *InMemorySyncLogStore) List(_ context.Context, userID uuid.UUID, limit int) ([]integration.SyncLogEntry, error) {
	s.mu.RLock()
	log, ok := s.logs[userID]
	s.mu.RUnlock()
	if !ok {
		return []integration.SyncLogEntry{}, nil
	}
	return log.Latest(limit), nil
}

// Clear drops the user's ring
func (s *InMemorySyncLogStore) Clear(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	delete(s.logs, userID)
	s.mu.Unlock()
	return nil
}

func (s *InMemorySyncLogStore) ring(userID uuid.UUID) *integration.SyncLog {
	s.mu.RLock()
	log, ok := s.logs[userID]
	s.mu.RUnlock()
	if ok {
		return log
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if log, ok = s.logs[userID]; !ok {
		log = integration.NewSyncLog(s.capacity)
		s.logs[userID] = log
	}
	return log
}
