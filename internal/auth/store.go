package auth

import (
	"context"
	"sync"
	"time"

	"github.com/prismgate/console/internal/infrastructure/redis"
	"github.com/rs/zerolog/log"
)

// RecordStore persists the token record. Get returns nil with no error
// when no record exists.
type RecordStore interface {
	Set(ctx context.Context, record *TokenRecord) error
	Get(ctx context.Context) (*TokenRecord, error)
	Delete(ctx context.Context) error
}

type RedisStore struct {
	redisService *redis.Service
	key          string
}

type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	key    string
}

// NewRecordStore picks Redis when available, falling back to process
// memory otherwise.
func NewRecordStore(redisService *redis.Service) RecordStore {
	if redisService != nil {
		ctx := context.Background()
		if err := redisService.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Redis unreachable, falling back to in-memory token storage")
			return newMemoryStore()
		}
		return &RedisStore{redisService: redisService, key: StorageKey}
	}

	log.Info().Msg("Using in-memory token storage")
	return newMemoryStore()
}

func newMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
		key:    StorageKey,
	}
}

// Redis Store implementation
func (rs *RedisStore) Set(ctx context.Context, record *TokenRecord) error {
	data, err := EncodeRecord(record)
	if err != nil {
		return err
	}

	// The record is useless once the refresh token lapses, so let Redis
	// reap it then
	ttl := time.Until(record.RefreshExpiry())
	if ttl <= 0 {
		ttl = DefaultRefreshTokenLifetime
	}

	return rs.redisService.Set(ctx, rs.key, data, ttl)
}

func (rs *RedisStore) Get(ctx context.Context) (*TokenRecord, error) {
	data, err := rs.redisService.Get(ctx, rs.key)
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, nil
	}

	return DecodeRecord(data)
}

func (rs *RedisStore) Delete(ctx context.Context) error {
	return rs.redisService.Delete(ctx, rs.key)
}

// Memory Store implementation
func (ms *MemoryStore) Set(ctx context.Context, record *TokenRecord) error {
	data, err := EncodeRecord(record)
	if err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.values[ms.key] = data
	return nil
}

func (ms *MemoryStore) Get(ctx context.Context) (*TokenRecord, error) {
	ms.mu.RLock()
	data, exists := ms.values[ms.key]
	ms.mu.RUnlock()

	if !exists {
		return nil, nil
	}
	return DecodeRecord(data)
}

func (ms *MemoryStore) Delete(ctx context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.values, ms.key)
	return nil
}
