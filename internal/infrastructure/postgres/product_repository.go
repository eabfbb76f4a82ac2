package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, sku, name, description, category, price, amount, stock_min, deleted, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto. created_at/updated_at los asigna la BD.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, description, category, price, amount, stock_min)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		p.ID, p.SKU, p.Name, p.Description, p.Category, p.Price, p.Amount, p.StockMin,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, p.SKU)
		}
		return mapError("insert product", err)
	}
	return nil
}

// FindActiveByID obtiene un producto no borrado por ID.
func (r *ProductRepo) FindActiveByID(ctx context.Context, id string) (*entity.Product, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND NOT deleted`
	return r.findOne(ctx, "get product", query, id)
}

// FindActiveByIDForUpdate igual que FindActiveByID pero bloquea la fila hasta el fin de la tx.
func (r *ProductRepo) FindActiveByIDForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND NOT deleted FOR UPDATE`
	return r.findOne(ctx, "lock product", query, id)
}

// FindActiveBySKU obtiene un producto no borrado por SKU.
func (r *ProductRepo) FindActiveBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1 AND NOT deleted`
	return r.findOne(ctx, "get product by sku", query, sku)
}

// ExistsActiveBySKU indica si hay un producto no borrado con ese SKU.
func (r *ProductRepo) ExistsActiveBySKU(ctx context.Context, sku string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE sku = $1 AND NOT deleted)`, sku,
	).Scan(&exists)
	if err != nil {
		return false, mapError("exists product by sku", err)
	}
	return exists, nil
}

// Update actualiza solo metadatos. amount y sku no forman parte de la sentencia.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	if !isUUID(p.ID) {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, p.ID)
	}
	query := `
		UPDATE products
		SET name = $2, description = $3, category = $4, price = $5, stock_min = $6, updated_at = now()
		WHERE id = $1 AND NOT deleted
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query, p.ID, p.Name, p.Description, p.Category, p.Price, p.StockMin).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, p.ID)
		}
		return mapError("update product", err)
	}
	return nil
}

// UpdateAmount actualiza solo la existencia.
func (r *ProductRepo) UpdateAmount(ctx context.Context, p *entity.Product) error {
	if !isUUID(p.ID) {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, p.ID)
	}
	query := `
		UPDATE products SET amount = $2, updated_at = now()
		WHERE id = $1 AND NOT deleted
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query, p.ID, p.Amount).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, p.ID)
		}
		return mapError("update product amount", err)
	}
	return nil
}

// SoftDelete marca el producto como borrado.
func (r *ProductRepo) SoftDelete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	tag, err := r.q.Exec(ctx, `UPDATE products SET deleted = true, updated_at = now() WHERE id = $1 AND NOT deleted`, id)
	if err != nil {
		return mapError("soft delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	return nil
}

// ListActive lista productos no borrados con paginación.
func (r *ProductRepo) ListActive(ctx context.Context, page repository.Page) ([]*entity.Product, int, error) {
	return r.list(ctx, "list products", `NOT deleted`, page)
}

// SearchActiveByName coincidencia parcial del nombre sin distinguir mayúsculas.
func (r *ProductRepo) SearchActiveByName(ctx context.Context, name string, page repository.Page) ([]*entity.Product, int, error) {
	pattern := "%" + likeEscaper.Replace(name) + "%"
	return r.list(ctx, "search products", `NOT deleted AND name ILIKE $1`, page, pattern)
}

// ListActiveByPriceRange productos con minPrice <= price <= maxPrice.
func (r *ProductRepo) ListActiveByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page repository.Page) ([]*entity.Product, int, error) {
	return r.list(ctx, "filter products by price", `NOT deleted AND price BETWEEN $1 AND $2`, page, minPrice, maxPrice)
}

// ListLowStock productos no borrados con amount < stock_min, mayor déficit primero.
func (r *ProductRepo) ListLowStock(ctx context.Context) ([]entity.LowStockItem, error) {
	query := `
		SELECT id, name, sku, amount, stock_min
		FROM products
		WHERE NOT deleted AND amount < stock_min
		ORDER BY (stock_min - amount) DESC, id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, mapError("list low stock", err)
	}
	defer rows.Close()

	var out []entity.LowStockItem
	for rows.Next() {
		var item entity.LowStockItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.SKU, &item.Amount, &item.StockMin); err != nil {
			return nil, mapError("scan low stock", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list low stock", err)
	}
	return out, nil
}

func (r *ProductRepo) findOne(ctx context.Context, op, query string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return p, nil
}

// list ejecuta el conteo y la página con el mismo filtro. Los argumentos del filtro
// ocupan $1..$n; LIMIT/OFFSET van a continuación.
func (r *ProductRepo) list(ctx context.Context, op, where string, page repository.Page, args ...any) ([]*entity.Product, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError(op, err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY created_at, id LIMIT $%d OFFSET $%d`,
		productColumns, where, n+1, n+2)
	rows, err := r.q.Query(ctx, query, append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, mapError(op, err)
	}
	defer rows.Close()

	out := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, mapError(op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(op, err)
	}
	return out, total, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Category, &p.Price,
		&p.Amount, &p.StockMin, &p.Deleted, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
