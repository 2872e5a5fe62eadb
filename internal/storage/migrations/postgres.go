package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/jackc/pgx/v5"

	"bet-ledger-lab/internal/storage/postgres"
)

// versionTable records which embedded files have been applied.
const versionTable = "bdash_schema_migrations"

// RunPostgresMigrations applies the embedded SQL files not yet recorded in
// bdash_schema_migrations, in lexical order. Each file runs in its own
// transaction together with its version row.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := sqlFiles(PostgresFS, "postgres")
	if err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+versionTable+` (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("create %s: %w", versionTable, err)
	}

	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		return err
	}

	for _, file := range pendingMigrations(files, applied) {
		data, err := fs.ReadFile(PostgresFS, "postgres/"+file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if err := applyPostgresMigration(ctx, pool, file, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}

func appliedVersions(ctx context.Context, pool *postgres.Pool) (map[string]struct{}, error) {
	rows, err := pool.Query(ctx, `SELECT version FROM `+versionTable)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", versionTable, err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", versionTable, err)
	}

	applied := make(map[string]struct{}, len(versions))
	for _, v := range versions {
		applied[v] = struct{}{}
	}
	return applied, nil
}

func applyPostgresMigration(ctx context.Context, pool *postgres.Pool, version, sql string) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if strings.TrimSpace(sql) != "" {
			if _, err := tx.Exec(ctx, sql); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, `INSERT INTO `+versionTable+` (version) VALUES ($1)`, version)
		return err
	})
}

// pendingMigrations returns files not in applied, keeping their order.
func pendingMigrations(files []string, applied map[string]struct{}) []string {
	var pending []string
	for _, f := range files {
		if _, ok := applied[f]; !ok {
			pending = append(pending, f)
		}
	}
	return pending
}
