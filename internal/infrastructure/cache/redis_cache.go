package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-stock/internal/application/ports"
	"github.com/jhoicas/inventario-stock/pkg/config"
	"github.com/jhoicas/inventario-stock/pkg/logger"
)

var _ ports.Cache = (*RedisCache)(nil)

const bucketPrefix = "bucket:"

// NewRedisClient crea el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisCache implementa ports.Cache sobre Redis. Cada bucket es un SET con las claves que agrupa.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisCache construye la caché. ttl <= 0 deja las claves sin expiración.
func NewRedisCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, log: log}
}

// Get devuelve (nil, false, nil) si la clave no existe.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		c.log.Warn().Err(err).Str("key", key).Msg("cache: error leyendo clave")
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return data, true, nil
}

// Set guarda la clave con TTL y la registra en el bucket si se indica.
func (c *RedisCache) Set(ctx context.Context, bucket, key string, value []byte) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, value, c.ttl)
		if bucket != "" {
			pipe.SAdd(ctx, bucketPrefix+bucket, key)
			if c.ttl > 0 {
				pipe.Expire(ctx, bucketPrefix+bucket, c.ttl)
			}
		}
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache: error guardando clave")
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate elimina las claves indicadas.
func (c *RedisCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("cache: error invalidando claves")
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// InvalidateAll elimina todas las claves del bucket y el propio bucket.
func (c *RedisCache) InvalidateAll(ctx context.Context, bucket string) error {
	setKey := bucketPrefix + bucket
	members, err := c.client.SMembers(ctx, setKey).Result()
	if err != nil {
		c.log.Warn().Err(err).Str("bucket", bucket).Msg("cache: error leyendo bucket")
		return fmt.Errorf("redis smembers: %w", err)
	}
	if err := c.client.Del(ctx, append(members, setKey)...).Err(); err != nil {
		c.log.Warn().Err(err).Str("bucket", bucket).Msg("cache: error invalidando bucket")
		return fmt.Errorf("redis del bucket: %w", err)
	}
	return nil
}
