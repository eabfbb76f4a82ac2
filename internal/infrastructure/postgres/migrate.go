package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-stock/pkg/logger"
)

//go:embed migrations/*.up.sql
var migrationsFS embed.FS

// MigrationDB lo que necesita el migrador (pool real o pgxmock).
type MigrationDB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RunMigrations aplica en orden los archivos .up.sql embebidos que aún no figuran en
// schema_migrations. Cada archivo y su registro van en la misma transacción.
func RunMigrations(ctx context.Context, db MigrationDB, log *logger.Logger) error {
	return runMigrations(ctx, db, migrationsFS, "migrations", log)
}

func runMigrations(ctx context.Context, db MigrationDB, fsys fs.FS, dir string, log *logger.Logger) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return mapError("create schema_migrations", err)
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("leer migraciones: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}

		var applied bool
		if err := db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, name).Scan(&applied); err != nil {
			return mapError("check migration "+name, err)
		}
		if applied {
			log.Debug().Str("version", name).Msg("migración ya aplicada")
			continue
		}

		content, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return fmt.Errorf("leer migración %s: %w", name, err)
		}
		if err := applyMigration(ctx, db, name, string(content)); err != nil {
			return err
		}
		log.Info().Str("version", name).Msg("migración aplicada")
	}
	return nil
}

func applyMigration(ctx context.Context, db MigrationDB, name, sql string) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return mapTxError("begin migration "+name, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err := tx.Exec(ctx, sql); err != nil {
		return mapError("execute migration "+name, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, name); err != nil {
		return mapError("record migration "+name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapTxError("commit migration "+name, err)
	}
	committed = true
	return nil
}
