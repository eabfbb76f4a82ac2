// seed_catalog carga productos desde un CSV a través del caso de uso de catálogo,
// de modo que cada existencia inicial queda registrada como movimiento IN.
//
// Uso: go run ./cmd/seed_catalog [ruta/productos.csv]
// Columnas: sku,name,description,category,price,amount,stock_min (con cabecera).
// Acepta UTF-8 o ISO-8859-1 (exportaciones de hojas de cálculo en Windows).
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/usecase"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-stock/pkg/config"
	"github.com/jhoicas/inventario-stock/pkg/logger"
)

const seedUser = "seed_catalog"

var columns = []string{"sku", "name", "description", "category", "price", "amount", "stock_min"}

func main() {
	csvPath := "productos.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	raw, err := os.ReadFile(csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", csvPath).Msg("abrir CSV")
	}
	rows, err := parseCatalog(bytes.NewReader(raw))
	if err != nil {
		log.Fatal().Err(err).Str("path", csvPath).Msg("leer CSV")
	}

	failed, err := seed(context.Background(), cfg, log, rows)
	if err != nil {
		log.Fatal().Err(err).Msg("carga de catálogo")
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// seed crea los productos y devuelve cuántos se rechazaron. El pool se cierra al volver.
func seed(ctx context.Context, cfg *config.Config, log *logger.Logger, rows []dto.CreateProductRequest) (int, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		return 0, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()
	if cfg.DB.Migrate {
		if err := postgres.RunMigrations(ctx, pool, log); err != nil {
			return 0, fmt.Errorf("migraciones: %w", err)
		}
	}

	uc := usecase.NewProductUseCase(postgres.NewProductRepository(pool), postgres.NewTxRunner(pool), nil)

	var created, skipped, failed int
	for i, in := range rows {
		out, err := uc.Create(ctx, in, seedUser)
		switch {
		case err == nil:
			created++
			log.Debug().Str("sku", out.SKU).Int("amount", out.Amount).Msg("producto creado")
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
			log.Info().Str("sku", in.SKU).Msg("SKU existente, se omite")
		default:
			failed++
			log.Warn().Err(err).Int("fila", i+2).Str("sku", in.SKU).Msg("producto rechazado")
		}
	}
	log.Info().Int("creados", created).Int("omitidos", skipped).Int("rechazados", failed).Msg("carga de catálogo finalizada")
	return failed, nil
}

// parseCatalog lee el CSV completo. Si el contenido no es UTF-8 válido se decodifica como ISO-8859-1.
func parseCatalog(r io.Reader) ([]dto.CreateProductRequest, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("CSV vacío")
	}

	idx := make(map[string]int, len(columns))
	for i, h := range records[0] {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range []string{"sku", "name", "price"} {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("falta la columna %q", c)
		}
	}

	out := make([]dto.CreateProductRequest, 0, len(records)-1)
	for n, rec := range records[1:] {
		field := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		in := dto.CreateProductRequest{
			SKU:         field("sku"),
			Name:        field("name"),
			Description: field("description"),
			Category:    field("category"),
		}
		if in.Price, err = decimal.NewFromString(strings.ReplaceAll(field("price"), ",", ".")); err != nil {
			return nil, fmt.Errorf("fila %d: price inválido: %w", n+2, err)
		}
		if in.Amount, err = atoiDefault(field("amount")); err != nil {
			return nil, fmt.Errorf("fila %d: amount inválido: %w", n+2, err)
		}
		if in.StockMin, err = atoiDefault(field("stock_min")); err != nil {
			return nil, fmt.Errorf("fila %d: stock_min inválido: %w", n+2, err)
		}
		out = append(out, in)
	}
	return out, nil
}

func atoiDefault(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
