package database

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Repository provides access to the durable content store.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new repository over an open database handle.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Ping verifies the database connection is alive.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the underlying database handle.
func (r *Repository) Close() error {
	return Close(r.db)
}
