package redisdb

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"

	"github.com/davicafu/hexatasks/shared/platform/persistence"
)

// RedisSlot guarda el hueco en una clave de Redis sin TTL.
type RedisSlot struct {
	client *redis.Client
	key    string
}

var _ persistence.Slot = (*RedisSlot)(nil)

func NewRedisSlot(client *redis.Client, key string) *RedisSlot {
	return &RedisSlot{client: client, key: key}
}

func (s *RedisSlot) Read(ctx context.Context) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // la clave no existe
		}
		return nil, false, err
	}
	return data, true, nil
}

// Write usa SET sin expiración: el hueco es la fuente de verdad, no una caché.
func (s *RedisSlot) Write(ctx context.Context, data []byte) error {
	return s.client.Set(ctx, s.key, data, 0).Err()
}
