package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nutesshop/storefront/internal/models"
)

// The home page is a singleton row. Its featured-products list is always
// read and replaced together with the text fields, so it is stored as a
// jsonb blob rather than joined from the products table.

// GetHome returns the stored home page content, or nil when the store has
// never been seeded.
func (r *Repository) GetHome(ctx context.Context) (*models.HomePage, error) {
	query := `
		SELECT hero_title, hero_subtitle, promo_text, hero_image_url, featured_products
		FROM home_content WHERE id = 1
	`

	var row struct {
		HeroTitle        string `db:"hero_title"`
		HeroSubtitle     string `db:"hero_subtitle"`
		PromoText        string `db:"promo_text"`
		HeroImageURL     string `db:"hero_image_url"`
		FeaturedProducts []byte `db:"featured_products"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get home content: %w", err)
	}

	home := models.HomePage{
		HeroTitle:        row.HeroTitle,
		HeroSubtitle:     row.HeroSubtitle,
		PromoText:        row.PromoText,
		HeroImageURL:     row.HeroImageURL,
		FeaturedProducts: []models.Product{},
	}
	if len(row.FeaturedProducts) > 0 {
		if err := json.Unmarshal(row.FeaturedProducts, &home.FeaturedProducts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal featured products: %w", err)
		}
	}
	return &home, nil
}

// UpsertHome replaces the home page content wholesale.
func (r *Repository) UpsertHome(ctx context.Context, home models.HomePage) error {
	featured := home.FeaturedProducts
	if featured == nil {
		featured = []models.Product{}
	}
	featuredJSON, err := json.Marshal(featured)
	if err != nil {
		return fmt.Errorf("failed to marshal featured products: %w", err)
	}

	query := `
		INSERT INTO home_content (id, hero_title, hero_subtitle, promo_text, hero_image_url, featured_products, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE SET
			hero_title = EXCLUDED.hero_title,
			hero_subtitle = EXCLUDED.hero_subtitle,
			promo_text = EXCLUDED.promo_text,
			hero_image_url = EXCLUDED.hero_image_url,
			featured_products = EXCLUDED.featured_products,
			updated_at = now()
	`

	if _, err := r.db.ExecContext(ctx, query,
		home.HeroTitle, home.HeroSubtitle, home.PromoText, home.HeroImageURL, featuredJSON,
	); err != nil {
		return fmt.Errorf("failed to upsert home content: %w", err)
	}
	return nil
}
