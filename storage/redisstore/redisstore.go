package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jrsteele09/go-menu-client/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps session values in Redis so several processes can share one login.
type Store struct {
	client *redis.Client
	prefix string
}

// Options mirrors the connection settings read from config.
type Options struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// New connects to Redis. The connection is verified with a PING.
func New(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[redisstore New] unable to reach redis at %s: %w", opts.Addr, err)
	}
	return NewWithClient(client, opts.KeyPrefix), nil
}

func NewWithClient(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("[redisstore Get] %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("[redisstore Set] %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		prefixed = append(prefixed, s.key(k))
	}
	if err := s.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("[redisstore Delete]: %w", err)
	}
	return nil
}

// Take uses GETDEL so concurrent readers never both see the value.
func (s *Store) Take(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.GetDel(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("[redisstore Take] %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
