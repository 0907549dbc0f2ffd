// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package script

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage is the namespaced key-value store tenant scripts see through
// storefront.storage. Keys arrive already prefixed by the host.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
}

// scriptKeyPrefix separates script storage from the render cache in the
// shared Valkey instance.
const scriptKeyPrefix = "script:"

// DefaultStorageTTL bounds how long tenant values live. Script storage is
// a scratch space, not a database.
const DefaultStorageTTL = 24 * time.Hour

// RedisStorage backs script storage with Valkey so values survive across
// page views and server instances.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStorage creates Valkey-backed script storage.
func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	if ttl == 0 {
		ttl = DefaultStorageTTL
	}
	return &RedisStorage{client: client, ttl: ttl}
}

func (s *RedisStorage) Get(ctx context.Context, key string) (string, bool) {
	val, err := s.client.Get(ctx, scriptKeyPrefix+key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, scriptKeyPrefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("script storage set: %w", err)
	}
	return nil
}

// MemoryStorage is the in-process fallback used when Valkey is not
// configured, and by tests.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (s *MemoryStorage) Get(_ context.Context, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *MemoryStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Keys returns a snapshot of all stored keys. Test helper.
func (s *MemoryStorage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}
