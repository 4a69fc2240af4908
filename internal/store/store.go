// Package store keeps finished screening sessions so they can be fetched by id.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/cv-screener/internal/screening"
)

// ErrNotFound is returned for unknown, expired and evicted sessions.
var ErrNotFound = errors.New("session not found")

type Store interface {
	// Put assigns a new id to the session, saves it and returns the id.
	Put(ctx context.Context, s *screening.Session) (string, error)
	Get(ctx context.Context, id string) (*screening.Session, error)
	Kind() string
}

const (
	KindMemory = "memory"
	KindRedis  = "redis"
)

type Config struct {
	Kind string `mapstructure:"kind"`
	// Capacity bounds the memory store; zero keeps every session.
	Capacity int         `mapstructure:"capacity"`
	Redis    RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// New builds the configured store. The Redis store is pinged before use.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", KindMemory:
		return NewMemory(cfg.Capacity), nil
	case KindRedis:
		return DialRedis(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Kind)
	}
}

func newID() string {
	return uuid.NewString()
}
