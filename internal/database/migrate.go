package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nutesshop/storefront/internal/logger"
)

// Migrator applies file-ordered SQL migrations from a directory. Files are
// applied in lexicographic order and recorded in schema_migrations; files
// already recorded are skipped.
type Migrator struct {
	db     *sqlx.DB
	dir    string
	logger logger.Logger
}

// NewMigrator creates a migrator reading *.sql files from dir.
func NewMigrator(db *sqlx.DB, dir string, log logger.Logger) *Migrator {
	return &Migrator{db: db, dir: dir, logger: log}
}

// Apply runs all pending migrations. A missing migrations directory is not
// an error; the schema is then expected to be managed externally.
func (m *Migrator) Apply(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id serial PRIMARY KEY,
			name text NOT NULL UNIQUE,
			applied_at timestamptz NOT NULL DEFAULT now()
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Warn("Migrations directory not found, skipping",
				logger.String("dir", m.dir),
			)
			return nil
		}
		return fmt.Errorf("failed to read migrations dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if err := m.applyOne(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) applyOne(ctx context.Context, name string) error {
	var applied int
	if err := m.db.GetContext(ctx, &applied,
		`SELECT count(1) FROM schema_migrations WHERE name = $1`, name); err != nil {
		return fmt.Errorf("failed to check migration %q: %w", name, err)
	}
	if applied > 0 {
		return nil
	}

	sqlText, err := os.ReadFile(filepath.Join(m.dir, name))
	if err != nil {
		return fmt.Errorf("failed to read migration %q: %w", name, err)
	}
	if strings.TrimSpace(string(sqlText)) == "" {
		return nil
	}

	if _, err := m.db.ExecContext(ctx, string(sqlText)); err != nil {
		return fmt.Errorf("failed to apply migration %q: %w", name, err)
	}
	if _, err := m.db.ExecContext(ctx,
		`INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("failed to record migration %q: %w", name, err)
	}

	m.logger.Info("Applied migration", logger.String("name", name))
	return nil
}
