package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/competence-ledger/internal/platform/logger"
)

type RedisConfig struct {
	Addr      string
	KeyPrefix string
}

type RedisStore struct {
	rdb    *goredis.Client
	prefix string
	log    *logger.Logger
}

// NewRedisStore dials addr and pings it before returning.
func NewRedisStore(log *logger.Logger, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	if log == nil {
		log = logger.Nop()
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreWithClient(rdb, cfg.KeyPrefix, log), nil
}

func NewRedisStoreWithClient(rdb *goredis.Client, prefix string, log *logger.Logger) *RedisStore {
	if log == nil {
		log = logger.Nop()
	}
	return &RedisStore{rdb: rdb, prefix: prefix, log: log.With("repo", "RedisStore")}
}

func (s *RedisStore) Client() *goredis.Client { return s.rdb }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	b, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.rdb.Del(ctx, s.prefix+key).Err()
}

func (s *RedisStore) Close() error { return s.rdb.Close() }
