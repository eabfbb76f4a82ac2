package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jhoicas/inventario-stock/internal/application/ports"
)

var _ ports.Cache = (*MemoryCache)(nil)

// DefaultMemoryCacheSize tope de entradas cuando no se configura otro.
const DefaultMemoryCacheSize = 10_000

// MemoryCache caché del proceso, usada cuando no hay REDIS_ADDR. LRU acotado con TTL;
// la pertenencia a buckets se mantiene solo para las claves presentes.
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]

	mu        sync.Mutex
	buckets   map[string]map[string]struct{}
	keyBucket map[string]string
}

// NewMemoryCache construye la caché con a lo sumo size entradas. ttl <= 0 deja las claves
// sin expiración.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = DefaultMemoryCacheSize
	}
	c := &MemoryCache{
		buckets:   make(map[string]map[string]struct{}),
		keyBucket: make(map[string]string),
	}
	// El callback corre con el lock interno del LRU tomado: c.mu nunca se retiene
	// mientras se llama al LRU.
	c.lru = expirable.NewLRU[string, []byte](size, c.onEvict, ttl)
	return c
}

// Get devuelve una copia del valor si existe y no expiró.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set guarda una copia del valor. La clave se registra en el bucket antes de entrar al LRU
// para que una expulsión posterior la saque también del bucket.
func (c *MemoryCache) Set(_ context.Context, bucket, key string, value []byte) error {
	if bucket != "" {
		c.mu.Lock()
		keys, ok := c.buckets[bucket]
		if !ok {
			keys = make(map[string]struct{})
			c.buckets[bucket] = keys
		}
		keys[key] = struct{}{}
		c.keyBucket[key] = bucket
		c.mu.Unlock()
	}
	c.lru.Add(key, append([]byte(nil), value...))
	return nil
}

// Invalidate elimina las claves indicadas.
func (c *MemoryCache) Invalidate(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.lru.Remove(k)
	}
	return nil
}

// InvalidateAll elimina todas las claves del bucket.
func (c *MemoryCache) InvalidateAll(_ context.Context, bucket string) error {
	c.mu.Lock()
	keys := make([]string, 0, len(c.buckets[bucket]))
	for k := range c.buckets[bucket] {
		keys = append(keys, k)
		delete(c.keyBucket, k)
	}
	delete(c.buckets, bucket)
	c.mu.Unlock()

	for _, k := range keys {
		c.lru.Remove(k)
	}
	return nil
}

// Len entradas vivas.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

// onEvict saca la clave de su bucket al expirar, ser expulsada o invalidada.
func (c *MemoryCache) onEvict(key string, _ []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.keyBucket[key]
	if !ok {
		return
	}
	delete(c.keyBucket, key)
	if keys := c.buckets[bucket]; keys != nil {
		delete(keys, key)
		if len(keys) == 0 {
			delete(c.buckets, bucket)
		}
	}
}
