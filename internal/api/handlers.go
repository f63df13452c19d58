package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nutesshop/storefront/internal/logger"
	"github.com/nutesshop/storefront/internal/models"
	"github.com/nutesshop/storefront/internal/orders"
)

// Currency is the display currency for every price returned by the API.
const Currency = "ZAR"

// ContentProvider serves catalog and site content through the tiered
// read path.
type ContentProvider interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, slug string) (*models.Product, error)
	GetHome(ctx context.Context) (models.HomePage, error)
	GetTheme(ctx context.Context) models.Theme
	Resync(ctx context.Context) error
	Invalidate(ctx context.Context) error
}

// CheckoutService places customer orders.
type CheckoutService interface {
	Checkout(ctx context.Context, req models.CheckoutRequest) (uuid.UUID, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds the HTTP handlers for the storefront API.
type Handlers struct {
	content  ContentProvider
	checkout CheckoutService
	db       Pinger
	logger   logger.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(content ContentProvider, checkout CheckoutService, db Pinger, log logger.Logger) *Handlers {
	return &Handlers{
		content:  content,
		checkout: checkout,
		db:       db,
		logger:   log,
	}
}

// GetProducts returns the full catalog.
func (h *Handlers) GetProducts(c *gin.Context) {
	products, err := h.content.GetProducts(c.Request.Context())
	if err != nil {
		h.serverError(c, "load products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"currency": Currency,
		"products": products,
	})
}

// GetProduct returns a single product by slug.
func (h *Handlers) GetProduct(c *gin.Context) {
	slug := c.Param("slug")
	product, err := h.content.GetProduct(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.serverError(c, "load product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"currency": Currency,
		"product":  product,
	})
}

// GetHome returns the home page content.
func (h *Handlers) GetHome(c *gin.Context) {
	home, err := h.content.GetHome(c.Request.Context())
	if err != nil {
		h.serverError(c, "load home content", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"currency": Currency,
		"home":     home,
	})
}

// GetTheme returns the storefront theme tokens. Theme reads never fail;
// the service falls back to the built-in palette when the origin is down.
func (h *Handlers) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, h.content.GetTheme(c.Request.Context()))
}

// GetPickupLocations returns the fixed set of pickup points.
func (h *Handlers) GetPickupLocations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"city":      orders.AllowedCity,
		"locations": orders.PickupLocations,
	})
}

// Checkout validates and places an order.
func (h *Handlers) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	orderID, err := h.checkout.Checkout(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.serverError(c, "place order", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orderId":  orderID.String(),
		"currency": Currency,
	})
}

// StrapiWebhook refreshes durable and hot content after a CMS change. Stale
// hot entries are dropped immediately so reads during the resync fall back
// to the durable store rather than serving outdated content.
func (h *Handlers) StrapiWebhook(c *gin.Context) {
	if err := h.content.Invalidate(c.Request.Context()); err != nil {
		h.logger.Warn("Hot cache invalidation failed", logger.Error(err))
	}
	if err := h.content.Resync(c.Request.Context()); err != nil {
		h.serverError(c, "resync content", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Health reports service and database liveness.
func (h *Handlers) Health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			h.logger.Error("health check failed", logger.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *Handlers) serverError(c *gin.Context, action string, err error) {
	h.logger.Error("failed to "+action, logger.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
