// Package cache implements the volatile hot tier on Redis. Entries carry a
// fixed TTL and expire lazily; redis provides the concurrency safety for
// concurrent get/set from request handlers.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nutesshop/storefront/internal/logger"
	"github.com/nutesshop/storefront/internal/models"
)

const (
	productsKey = "content:products"
	homeKey     = "content:home"
	themeKey    = "content:theme"
)

// ContentCache is the hot cache for normalized storefront content.
type ContentCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger logger.Logger
}

// New creates a content cache with the given fixed entry TTL.
func New(client redis.UniversalClient, ttl time.Duration, log logger.Logger) *ContentCache {
	return &ContentCache{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

// NewRedisClient creates a Redis client and verifies connectivity.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// GetProducts returns the cached catalog. The second return value is false
// on a miss; cache failures are logged and reported as misses.
func (c *ContentCache) GetProducts(ctx context.Context) ([]models.Product, bool) {
	var products []models.Product
	if !c.get(ctx, productsKey, &products) {
		return nil, false
	}
	return products, true
}

// SetProducts stores the catalog under the fixed TTL.
func (c *ContentCache) SetProducts(ctx context.Context, products []models.Product) {
	c.set(ctx, productsKey, products)
}

// GetHome returns the cached home page content.
func (c *ContentCache) GetHome(ctx context.Context) (*models.HomePage, bool) {
	var home models.HomePage
	if !c.get(ctx, homeKey, &home) {
		return nil, false
	}
	return &home, true
}

// SetHome stores the home page content under the fixed TTL.
func (c *ContentCache) SetHome(ctx context.Context, home models.HomePage) {
	c.set(ctx, homeKey, home)
}

// GetTheme returns the cached theme.
func (c *ContentCache) GetTheme(ctx context.Context) (*models.Theme, bool) {
	var theme models.Theme
	if !c.get(ctx, themeKey, &theme) {
		return nil, false
	}
	return &theme, true
}

// SetTheme stores the theme under the fixed TTL.
func (c *ContentCache) SetTheme(ctx context.Context, theme models.Theme) {
	c.set(ctx, themeKey, theme)
}

// Invalidate removes all content keys unconditionally, forcing the next read
// to fall through to the durable store.
func (c *ContentCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, productsKey, homeKey, themeKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate content cache: %w", err)
	}
	c.logger.Debug("Content cache invalidated")
	return nil
}

func (c *ContentCache) get(ctx context.Context, key string, target any) bool {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Cache read failed, treating as miss",
				logger.String("key", key),
				logger.Error(err),
			)
		}
		return false
	}
	if err := json.Unmarshal(payload, target); err != nil {
		c.logger.Warn("Cache entry malformed, treating as miss",
			logger.String("key", key),
			logger.Error(err),
		)
		return false
	}
	return true
}

func (c *ContentCache) set(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Cache entry not serializable",
			logger.String("key", key),
			logger.Error(err),
		)
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed",
			logger.String("key", key),
			logger.Duration("ttl", c.ttl),
			logger.Error(err),
		)
	}
}
