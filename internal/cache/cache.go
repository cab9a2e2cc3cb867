// Package cache provides the response cache for raw provider payloads
// (spec.md §4.3): a content hash keyed by (source, endpoint, params) short-
// circuits re-processing of a payload that has not changed since the last
// sync.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Default TTLs per spec §4.3 — schedules rarely change, box scores for a
// final game never change, live games change every poll.
const (
	TTLSchedule    = 6 * time.Hour
	TTLFinalGame   = 30 * 24 * time.Hour
	TTLLiveGame    = 30 * time.Second
	TTLRosterOrTeam = 24 * time.Hour
)

// Store is the interface both backends satisfy, so the sync orchestrator
// never knows whether it's talking to the in-process map or Redis.
type Store interface {
	// Changed reports whether payload differs from what's stored for key,
	// storing the new hash (not the payload) when it does (or when nothing was
	// cached yet). force bypasses the comparison and always reports changed.
	Changed(ctx context.Context, key string, payload []byte, ttl time.Duration, force bool) (changed bool, contentHash string, err error)
	Stats(ctx context.Context) (map[string]interface{}, error)
}

type entry struct {
	hash      string
	expiresAt time.Time
}

// MemStore is a thread-safe in-process TTL cache, used when Redis is not
// configured — each worker replica keeps its own copy.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	stop    chan struct{}
}

// NewMemStore creates an in-process cache with a background eviction loop.
func NewMemStore() *MemStore {
	s := &MemStore{entries: make(map[string]entry), stop: make(chan struct{})}
	go s.evictLoop()
	return s
}

func (s *MemStore) Changed(_ context.Context, key string, payload []byte, ttl time.Duration, force bool) (bool, string, error) {
	hash := ComputeHash(payload)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	changed := force || !ok || time.Now().After(e.expiresAt) || e.hash != hash
	s.entries[key] = entry{hash: hash, expiresAt: time.Now().Add(ttl)}
	return changed, hash, nil
}

func (s *MemStore) Stats(_ context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := 0
	now := time.Now()
	for _, e := range s.entries {
		if now.Before(e.expiresAt) {
			active++
		}
	}
	return map[string]interface{}{
		"backend":      "memory",
		"total_keys":   len(s.entries),
		"active_keys":  active,
		"expired_keys": len(s.entries) - active,
	}, nil
}

func (s *MemStore) Close() {
	close(s.stop)
}

func (s *MemStore) evictLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.evict()
		case <-s.stop:
			return
		}
	}
}

func (s *MemStore) evict() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// RedisStore backs the response cache with Redis, so every replica of the
// worker shares the same change-detection state.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "hoopsync:cache:"}
}

func (s *RedisStore) Changed(ctx context.Context, key string, payload []byte, ttl time.Duration, force bool) (bool, string, error) {
	hash := ComputeHash(payload)
	redisKey := s.prefix + key

	if !force {
		prev, err := s.client.Get(ctx, redisKey).Result()
		if err == nil && prev == hash {
			// Refresh TTL so a steady stream of unchanged polls doesn't
			// let the key expire and look "changed" on the next poll.
			s.client.Expire(ctx, redisKey, ttl)
			return false, hash, nil
		}
		if err != nil && err != redis.Nil {
			return false, "", fmt.Errorf("cache: redis get failed: %w", err)
		}
	}

	if err := s.client.Set(ctx, redisKey, hash, ttl).Err(); err != nil {
		return false, "", fmt.Errorf("cache: redis set failed: %w", err)
	}
	return true, hash, nil
}

func (s *RedisStore) Stats(ctx context.Context) (map[string]interface{}, error) {
	n, err := s.client.DBSize(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("cache: redis dbsize failed: %w", err)
	}
	return map[string]interface{}{
		"backend":  "redis",
		"key_count": n,
	}, nil
}

// ComputeHash produces the content-hash identity of a payload.
func ComputeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Key builds the cache key for a (source, endpoint, params) tuple.
func Key(source, endpoint, params string) string {
	return fmt.Sprintf("%s:%s:%s", source, endpoint, params)
}
