package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailcrm/backend/internal/domain/integration"
	"github.com/retailcrm/backend/internal/infrastructure/persistence/models"
)

// GormSyncLogStore persists sync log entries and keeps only the newest
// capacity entries per user. Entries are ordered by the time they were
// appended, not by when their run started.
type GormSyncLogStore struct {
	db       *gorm.DB
	capacity int
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
}

// Ensure GormSyncLogStore implements SyncLogStore
var _ integration.SyncLogStore = (*GormSyncLogStore)(nil)

// NewGormSyncLogStore creates a store; capacity <= 0 uses integration.DefaultSyncLogCapacity
func NewGormSyncLogStore(db *gorm.DB, capacity int) *GormSyncLogStore {
	if capacity <= 0 {
		capacity = integration.DefaultSyncLogCapacity
	}
	return &GormSyncLogStore{db: db, capacity: capacity, now: time.Now}
}

// completionStamp returns a strictly increasing time at the microsecond
// resolution Postgres stores
func (s *GormSyncLogStore) completionStamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp := s.now().UTC().Truncate(time.Microsecond)
	if !stamp.After(s.last) {
		stamp = s.last.Add(time.Microsecond)
	}
	s.last = stamp
	return stamp
}

// Append writes the entry and drops the user's entries beyond capacity
func (s *GormSyncLogStore) Append(ctx context.Context, entry integration.SyncLogEntry) error {
	var model models.SyncLogModel
	if err := model.FromDomain(entry); err != nil {
		return err
	}
	model.CompletedAt = s.completionStamp()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			return err
		}

		keep := tx.Model(&models.SyncLogModel{}).
			Select("id").
			Scopes(ownedBy(entry.UserID)).
			Order("completed_at DESC").
			Limit(s.capacity)

		return tx.Scopes(ownedBy(entry.UserID)).
			Where("id NOT IN (?)", keep).
			Delete(&models.SyncLogModel{}).Error
	})
}

// List returns up to limit entries, newest first; limit <= 0 returns all kept entries
func (s *GormSyncLogStore) List(ctx context.Context, userID uuid.UUID, limit int) ([]integration.SyncLogEntry, error) {
	if limit <= 0 || limit > s.capacity {
		limit = s.capacity
	}

	var logModels []models.SyncLogModel
	if err := s.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Order("completed_at DESC").
		Limit(limit).
		Find(&logModels).Error; err != nil {
		return nil, err
	}

	entries := make([]integration.SyncLogEntry, len(logModels))
	for i := range logModels {
		entries[i] = logModels[i].ToDomain()
	}
	return entries, nil
}

// Clear removes every entry of the user
func (s *GormSyncLogStore) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Scopes(ownedBy(userID)).Delete(&models.SyncLogModel{}).Error
}
