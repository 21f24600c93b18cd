// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string // Redis server address (host:port)
	Password string // Redis password (optional)
	DB       int    // Redis database number
	Prefix   string // Key prefix of page entries
}

// RedisStore keeps the registry in Redis, one string key per page, so several
// jukebox hosts can share it.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// OpenRedisStore connects and pings the server.
func OpenRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &RedisStore{client: client, prefix: cfg.Prefix}, nil
}

func (s *RedisStore) key(name string) string { return s.prefix + name }

func (s *RedisStore) Exists(ctx context.Context, name string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(name)).Result()
	if err != nil {
		return false, fmt.Errorf("state: exists %s: %w", name, err)
	}
	return n > 0, nil
}

func (s *RedisStore) Mark(ctx context.Context, pages ...Page) error {
	if len(pages) == 0 {
		return nil
	}
	pipe := s.client.TxPipeline()
	for _, p := range pages {
		buf, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("state: encode %s: %w", p.Name, err)
		}
		pipe.Set(ctx, s.key(p.Name), buf, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("state: mark: %w", err)
	}
	return nil
}

func (s *RedisStore) Forget(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = s.key(n)
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("state: forget: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
