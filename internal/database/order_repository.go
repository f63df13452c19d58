package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nutesshop/storefront/internal/models"
)

// CreateOrder persists a validated order and its line items, returning the
// new order id.
func (r *Repository) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (uuid.UUID, error) {
	orderID := uuid.New()

	var suburb, addressLine1, addressLine2, postalCode *string
	if req.Delivery != nil {
		suburb = &req.Delivery.Suburb
		addressLine1 = &req.Delivery.AddressLine1
		addressLine2 = &req.Delivery.AddressLine2
		postalCode = &req.Delivery.PostalCode
	}
	var pickupLocation *string
	if req.Pickup != nil {
		pickupLocation = &req.Pickup.LocationID
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	orderQuery := `
		INSERT INTO orders (id, customer_name, customer_email, fulfillment_type, city,
			suburb, address_line1, address_line2, postal_code, pickup_location, total_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
	`
	if _, err := tx.ExecContext(ctx, orderQuery,
		orderID, req.CustomerName, req.CustomerEmail, req.FulfillmentType, req.City,
		suburb, addressLine1, addressLine2, postalCode, pickupLocation, req.TotalCents(),
	); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_slug, product_name, unit_price_cents, quantity)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, item := range req.Items {
		if _, err := tx.ExecContext(ctx, itemQuery,
			orderID, item.ProductSlug, item.ProductName, item.UnitPriceCents, item.Quantity,
		); err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert order item %q: %w", item.ProductSlug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit order: %w", err)
	}
	return orderID, nil
}
