package database

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/nutesshop/storefront/internal/models"
)

// productRow adapts models.Product for scanning; badges live in a text[]
// column.
type productRow struct {
	models.Product
	BadgeList pq.StringArray `db:"badges"`
}

const productColumns = `slug, name, description, price_cents, per, image_url, in_stock, featured, badges`

// GetProducts returns the stored catalog in seed order. An unseeded store
// yields an empty slice, not an error.
func (r *Repository) GetProducts(ctx context.Context) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY position, slug`

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		product := row.Product
		product.Badges = []string(row.BadgeList)
		if product.Badges == nil {
			product.Badges = []string{}
		}
		products = append(products, product)
	}
	return products, nil
}

// UpsertProducts writes a normalized catalog batch keyed by slug. Items are
// applied one at a time so a cancellation mid-batch leaves a partial but
// individually-valid set of rows, never a torn record. Re-applying an
// identical batch is a no-op observable-state-wise.
func (r *Repository) UpsertProducts(ctx context.Context, products []models.Product) error {
	query := `
		INSERT INTO products (slug, name, description, price_cents, per, image_url, in_stock, featured, badges, position, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price_cents = EXCLUDED.price_cents,
			per = EXCLUDED.per,
			image_url = EXCLUDED.image_url,
			in_stock = EXCLUDED.in_stock,
			featured = EXCLUDED.featured,
			badges = EXCLUDED.badges,
			position = EXCLUDED.position,
			updated_at = now()
	`

	for i, p := range products {
		_, err := r.db.ExecContext(ctx, query,
			p.Slug, p.Name, p.Description, p.PriceCents, p.Per,
			p.ImageURL, p.InStock, p.Featured, pq.StringArray(p.Badges), i,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert product %q: %w", p.Slug, err)
		}
	}
	return nil
}
