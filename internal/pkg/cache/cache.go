package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	fiberredis "github.com/gofiber/storage/redis"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/SubDesk/internal/pkg/config"
)

// KeyPublicSettings holds the cached GET /api/settings body.
const KeyPublicSettings = "settings:public"

// DatabaseCache is the redis database of the response cache. Sessions and
// the rate limiter use their own databases.
const DatabaseCache = 0

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is a small byte cache. Callers treat every error as a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Storage is a Cache on top of any fiber.Storage.
type Storage struct {
	store fiber.Storage
}

func New(store fiber.Storage) *Storage {
	return &Storage{store: store}
}

// NewMemory returns a process local Cache used when no cache server is configured.
func NewMemory() *Storage {
	return New(memory.New())
}

// NewRedisStorage returns a redis backed fiber.Storage on the given database,
// or nil when no cache server is configured. It panics when the server is
// unreachable.
func NewRedisStorage(cfg config.CacheConfig, database int) fiber.Storage {
	if !cfg.Enabled() {
		return nil
	}
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		port = 6379
	}
	return fiberredis.New(fiberredis.Config{
		Host:     cfg.Host,
		Port:     port,
		Password: cfg.Password,
		Database: database,
		Reset:    false,
	})
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	val, err := s.store.Get(key)
	if err != nil {
		return nil, err
	}
	// fiber storages report a missing key as nil, nil
	if val == nil {
		return nil, ErrMiss
	}
	return val, nil
}

func (s *Storage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.Set(key, value, ttl)
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.Delete(key)
}

// Ping checks the cache server. Storages without a redis connection are
// always up.
func (s *Storage) Ping(ctx context.Context) error {
	conn, ok := s.store.(interface{ Conn() *redis.Client })
	if !ok {
		return nil
	}
	return conn.Conn().Ping(ctx).Err()
}

func (s *Storage) Close() error {
	return s.store.Close()
}

var _ Cache = (*Storage)(nil)
