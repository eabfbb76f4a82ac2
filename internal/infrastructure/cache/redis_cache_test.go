package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-stock/pkg/logger"
)

func setupRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, 5*time.Minute, logger.NewNop()), mr
}

func TestRedisCache_GetMiss(t *testing.T) {
	c, _ := setupRedisCache(t)

	v, ok, err := c.Get(context.Background(), "products:id:nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestRedisCache_SetGetTTL(t *testing.T) {
	c, mr := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "", "products:id:1", []byte(`{"id":"1"}`)))
	v, ok, err := c.Get(ctx, "products:id:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"id":"1"}`, string(v))
	assert.Equal(t, 5*time.Minute, mr.TTL("products:id:1"))

	mr.FastForward(6 * time.Minute)
	_, ok, err = c.Get(ctx, "products:id:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_InvalidateAll(t *testing.T) {
	c, mr := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "productLists", "productLists:all:20:0", []byte("[]")))
	require.NoError(t, c.Set(ctx, "productLists", "productLists:name:20:0:tor", []byte("[]")))
	require.NoError(t, c.Set(ctx, "", "products:id:1", []byte("{}")))

	require.NoError(t, c.InvalidateAll(ctx, "productLists"))

	assert.False(t, mr.Exists("productLists:all:20:0"))
	assert.False(t, mr.Exists("productLists:name:20:0:tor"))
	assert.False(t, mr.Exists("bucket:productLists"))
	assert.True(t, mr.Exists("products:id:1"), "las claves fuera del bucket se conservan")
}

func TestRedisCache_Invalidate(t *testing.T) {
	c, mr := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "", "products:id:1", []byte("{}")))
	require.NoError(t, c.Set(ctx, "", "products:sku:ABC-1234", []byte("{}")))
	require.NoError(t, c.Invalidate(ctx, "products:id:1", "products:sku:ABC-1234"))

	assert.False(t, mr.Exists("products:id:1"))
	assert.False(t, mr.Exists("products:sku:ABC-1234"))
	assert.NoError(t, c.Invalidate(ctx))
}

func TestRedisCache_ServidorCaido(t *testing.T) {
	c, mr := setupRedisCache(t)
	mr.Close()

	_, ok, err := c.Get(context.Background(), "products:id:1")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.InvalidateAll(context.Background(), "productLists"))
}
