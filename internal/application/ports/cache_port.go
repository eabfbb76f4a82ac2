package ports

import (
	"context"
	"fmt"
)

// BucketProductLists agrupa las entradas de listados/búsquedas de productos.
// Cualquier cambio de catálogo o de existencias la invalida completa.
const BucketProductLists = "productLists"

// Cache puerto de salida para la caché de lecturas de productos.
// Los adaptadores (Redis, memoria) registran sus propios fallos; un error aquí
// nunca debe cambiar el resultado de una operación ya confirmada.
type Cache interface {
	// Get devuelve (valor, true, nil) en acierto y (nil, false, nil) en fallo de caché.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set guarda value bajo key. Con bucket no vacío la clave queda asociada al bucket.
	Set(ctx context.Context, bucket, key string, value []byte) error
	Invalidate(ctx context.Context, keys ...string) error
	InvalidateAll(ctx context.Context, bucket string) error
}

// ProductIDKey clave de caché de un producto por id.
func ProductIDKey(id string) string { return "products:id:" + id }

// ProductSKUKey clave de caché de un producto por SKU.
func ProductSKUKey(sku string) string { return "products:sku:" + sku }

// ProductListKey clave de caché de un listado dentro de BucketProductLists.
func ProductListKey(kind string, limit, offset int, args ...string) string {
	key := fmt.Sprintf("%s:%s:%d:%d", BucketProductLists, kind, limit, offset)
	for _, a := range args {
		key += ":" + a
	}
	return key
}
