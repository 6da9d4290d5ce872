package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/retailcrm/backend/internal/domain/integration"
)

const defaultSyncLogKeyPrefix = "synclog:"

// RedisSyncLogStore keeps each user's log as a capped Redis list (LPUSH + LTRIM),
// so every instance sees the same newest-first history
type RedisSyncLogStore struct {
	client    *redis.Client
	keyPrefix string
	capacity  int
}

// Ensure RedisSyncLogStore implements SyncLogStore
var _ integration.SyncLogStore = (*RedisSyncLogStore)(nil)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisSyncLogStore connects to Redis and verifies the connection
func NewRedisSyncLogStore(cfg RedisConfig, capacity int) (*RedisSyncLogStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSyncLogStoreWithClient(client, "", capacity), nil
}

// NewRedisSyncLogStoreWithClient creates a store with an existing Redis client
func NewRedisSyncLogStoreWithClient(client *redis.Client, keyPrefix string, capacity int) *RedisSyncLogStore {
	if keyPrefix == "" {
		keyPrefix = defaultSyncLogKeyPrefix
	}
	if capacity <= 0 {
		capacity = integration.DefaultSyncLogCapacity
	}
	return &RedisSyncLogStore{
		client:    client,
		keyPrefix: keyPrefix,
		capacity:  capacity,
	}
}

// Append pushes the entry and trims the list to capacity in one transaction
func (s *RedisSyncLogStore) Append(ctx context.Context, entry integration.SyncLogEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode sync log entry: %w", err)
	}

	key := s.key(entry.UserID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, raw)
		pipe.LTrim(ctx, key, 0, int64(s.capacity-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append sync log entry: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first
func (s *RedisSyncLogStore) List(ctx context.Context, userID uuid.UUID, limit int) ([]integration.SyncLogEntry, error) {
	if limit <= 0 || limit > s.capacity {
		limit = s.capacity
	}

	values, err := s.client.LRange(ctx, s.key(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read sync log: %w", err)
	}

	entries := make([]integration.SyncLogEntry, 0, len(values))
	for _, v := range values {
		var entry integration.SyncLogEntry
		if err := json.Unmarshal([]byte(v), &entry); err != nil {
			return nil, fmt.Errorf("failed to decode sync log entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Clear deletes the user's list
func (s *RedisSyncLogStore) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}

// Close closes the Redis client
func (s *RedisSyncLogStore) Close() error {
	return s.client.Close()
}

func (s *RedisSyncLogStore) key(userID uuid.UUID) string {
	return s.keyPrefix + userID.String()
}
