package db

import (
	"context"
	"fmt"
)

// Migration is one versioned schema step
type Migration struct {
	Version    string
	Statements []string
}

const schemaLogDDL = `CREATE TABLE IF NOT EXISTS schema_log (
	version    TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Migrations are applied in order. Keep statements idempotent so replicas starting together are safe.
var Migrations = []Migration{
	{
		Version: "0001_matches",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS matches (
				id    BIGSERIAL PRIMARY KEY,
				name  VARCHAR(100) NOT NULL,
				state TEXT NOT NULL
			)`,
		},
	},
}

// Migrate applies every migration not yet recorded in schema_log
func Migrate(ctx context.Context, db *DB) error {
	if _, err := db.Exec(ctx, schemaLogDDL); err != nil {
		return fmt.Errorf("failed to create schema_log: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range Migrations {
		if applied[m.Version] {
			continue
		}

		if err := apply(ctx, db, m); err != nil {
			return err
		}
		db.log.Info("migration applied", "version", m.Version)
	}

	return nil
}

func appliedVersions(ctx context.Context, db *DB) (map[string]bool, error) {
	rows, err := db.Query(ctx, `SELECT version FROM schema_log`)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_log: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan schema_log: %w", err)
		}
		applied[version] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schema_log: %w", err)
	}

	return applied, nil
}

func apply(ctx context.Context, db *DB, m Migration) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.Version, err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range m.Statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Version, err)
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO schema_log (version) VALUES ($1) ON CONFLICT (version) DO NOTHING`,
		m.Version,
	); err != nil {
		return fmt.Errorf("record migration %s: %w", m.Version, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %s: %w", m.Version, err)
	}

	return nil
}
