package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spigell/cv-screener/internal/screening"
)

const (
	defaultPrefix = "cv-screener:session:"
	putAttempts   = 3
)

// Redis stores sessions as JSON strings. Keys are written with SETNX so an id
// is never overwritten.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	newID  func() string
}

// DialRedis connects and pings the server.
func DialRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedis(client, cfg), nil
}

func NewRedis(client *redis.Client, cfg RedisConfig) *Redis {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Redis{client: client, prefix: prefix, ttl: cfg.TTL, newID: newID}
}

func (r *Redis) Kind() string { return KindRedis }

func (r *Redis) key(id string) string { return r.prefix + id }

func (r *Redis) Put(ctx context.Context, s *screening.Session) (string, error) {
	if s == nil {
		return "", errors.New("nil session")
	}

	stored := *s
	for attempt := 0; attempt < putAttempts; attempt++ {
		stored.ID = r.newID()
		data, err := json.Marshal(&stored)
		if err != nil {
			return "", fmt.Errorf("marshal session: %w", err)
		}

		ok, err := r.client.SetNX(ctx, r.key(stored.ID), data, r.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			s.ID = stored.ID
			return stored.ID, nil
		}
	}

	return "", fmt.Errorf("no free session id after %d attempts", putAttempts)
}

func (r *Redis) Get(ctx context.Context, id string) (*screening.Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var s screening.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

func (r *Redis) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
