package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nutesshop/storefront/internal/logger"
	"github.com/nutesshop/storefront/internal/models"
)

// Catalog resolves the current product catalog. Implemented by the content
// service so checkout prices come from the same tiered read path clients see.
type Catalog interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
}

// OrderStore persists validated orders. Implemented by database.Repository.
type OrderStore interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (uuid.UUID, error)
}

// Service validates checkout requests and creates orders.
type Service struct {
	catalog Catalog
	store   OrderStore
	logger  logger.Logger
}

// NewService creates a checkout service.
func NewService(catalog Catalog, store OrderStore, log logger.Logger) *Service {
	return &Service{
		catalog: catalog,
		store:   store,
		logger:  log,
	}
}

// Checkout validates the request against the current catalog and persists
// the order. All validation failures wrap models.ErrValidation; unit prices
// are resolved from the catalog, never taken from the client.
func (s *Service) Checkout(ctx context.Context, req models.CheckoutRequest) (uuid.UUID, error) {
	if len(req.Items) == 0 {
		return uuid.Nil, fmt.Errorf("%w: no items", models.ErrValidation)
	}

	switch req.FulfillmentType {
	case "Delivery":
		if req.Delivery == nil {
			return uuid.Nil, fmt.Errorf("%w: delivery details required", models.ErrValidation)
		}
		if !IsAllowedCity(req.Delivery.City) {
			return uuid.Nil, fmt.Errorf("%w: delivery is only available in %s", models.ErrValidation, AllowedCity)
		}
	case "Pickup":
		if req.Pickup == nil {
			return uuid.Nil, fmt.Errorf("%w: pickup details required", models.ErrValidation)
		}
		if !IsPickupLocation(req.Pickup.LocationID) {
			return uuid.Nil, fmt.Errorf("%w: invalid pickup location", models.ErrValidation)
		}
	default:
		return uuid.Nil, fmt.Errorf("%w: fulfillment type must be Delivery or Pickup", models.ErrValidation)
	}

	products, err := s.catalog.GetProducts(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("load catalog for checkout: %w", err)
	}
	bySlug := make(map[string]models.Product, len(products))
	for _, p := range products {
		bySlug[strings.ToLower(p.Slug)] = p
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		product, ok := bySlug[strings.ToLower(item.ProductSlug)]
		if !ok {
			return uuid.Nil, fmt.Errorf("%w: unknown product %q", models.ErrValidation, item.ProductSlug)
		}
		if !product.InStock {
			return uuid.Nil, fmt.Errorf("%w: out of stock: %s", models.ErrValidation, product.Name)
		}
		if item.Quantity <= 0 {
			return uuid.Nil, fmt.Errorf("%w: quantity must be positive", models.ErrValidation)
		}
		items = append(items, models.OrderItem{
			ProductSlug:    product.Slug,
			ProductName:    product.Name,
			UnitPriceCents: product.PriceCents,
			Quantity:       item.Quantity,
		})
	}

	orderID, err := s.store.CreateOrder(ctx, models.CreateOrderRequest{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		FulfillmentType: req.FulfillmentType,
		City:            AllowedCity,
		Delivery:        req.Delivery,
		Pickup:          req.Pickup,
		Items:           items,
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.logger.Info("Order created",
		logger.String("order_id", orderID.String()),
		logger.String("fulfillment_type", req.FulfillmentType),
		logger.Int("item_count", len(items)),
	)
	return orderID, nil
}
