package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedStore wraps a primary Store with a Redis read-through cache.
// Writes go to the primary store and then refresh the cache; reads check
// Redis first then fall back to the primary. Cache failures never fail a
// call, they only cost a primary round-trip.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// NewRedisClient parses redisURL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func (s *CachedStore) Get(ctx context.Context, slot string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, slotKey(slot)).Bytes()
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, redis.Nil) {
		slog.Debug("redis get failed, reading primary", "slot", slot, "err", err)
	}

	// Cache miss: read from primary.
	data, err = s.primary.Get(ctx, slot)
	if err != nil {
		return nil, err
	}
	s.rdb.Set(ctx, slotKey(slot), data, s.ttl)
	return data, nil
}

func (s *CachedStore) Put(ctx context.Context, slot string, data []byte) error {
	if err := s.primary.Put(ctx, slot, data); err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, slotKey(slot), data, s.ttl).Err(); err != nil {
		// Drop the stale entry so the next read goes to the primary.
		s.rdb.Del(ctx, slotKey(slot))
	}
	return nil
}

func (s *CachedStore) Close() error {
	cerr := s.rdb.Close()
	if err := s.primary.Close(); err != nil {
		return err
	}
	return cerr
}

func slotKey(slot string) string { return fmt.Sprintf("slot:%s", slot) }
