// Package content implements the tiered read path for storefront content:
// redis hot cache, then the durable store, then the CMS origin, with
// write-through to the tiers a read bypassed. It also owns invalidation and
// the resynchronization workflow with its bounded retry.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nutesshop/storefront/internal/logger"
	"github.com/nutesshop/storefront/internal/metrics"
	"github.com/nutesshop/storefront/internal/models"
	"github.com/nutesshop/storefront/internal/strapi"
)

const (
	// resyncAttempts bounds the fetch+normalize cycles of one resync run.
	resyncAttempts = 3
	// resyncRetryDelay is the fixed sleep between resync attempts.
	resyncRetryDelay = 1 * time.Second
)

// Origin issues raw reads against the CMS. Implemented by strapi.Client.
type Origin interface {
	BaseURL() string
	FetchProducts(ctx context.Context) (json.RawMessage, error)
	FetchHome(ctx context.Context) (json.RawMessage, error)
	FetchTheme(ctx context.Context) (json.RawMessage, error)
}

// Store is the durable tier. Implemented by database.Repository. Store
// failures are real faults and propagate to the caller.
type Store interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	UpsertProducts(ctx context.Context, products []models.Product) error
	GetHome(ctx context.Context) (*models.HomePage, error)
	UpsertHome(ctx context.Context, home models.HomePage) error
}

// Cache is the volatile hot tier. Implemented by cache.ContentCache. Cache
// failures surface as misses inside the implementation, never as errors here.
type Cache interface {
	GetProducts(ctx context.Context) ([]models.Product, bool)
	SetProducts(ctx context.Context, products []models.Product)
	GetHome(ctx context.Context) (*models.HomePage, bool)
	SetHome(ctx context.Context, home models.HomePage)
	GetTheme(ctx context.Context) (*models.Theme, bool)
	SetTheme(ctx context.Context, theme models.Theme)
	Invalidate(ctx context.Context) error
}

// Service is the tiered cache orchestrator.
type Service struct {
	origin  Origin
	store   Store
	cache   Cache
	metrics *metrics.Metrics
	logger  logger.Logger
}

// NewService creates the orchestrator over its three tiers.
func NewService(origin Origin, store Store, cache Cache, m *metrics.Metrics, log logger.Logger) *Service {
	return &Service{
		origin:  origin,
		store:   store,
		cache:   cache,
		metrics: m,
		logger:  log,
	}
}

// GetProducts returns the catalog from the first tier that has it: hot
// cache, durable store, then origin. A non-empty store result is treated as
// authoritative; the origin is consulted only when the store has never been
// seeded. Results are written through to the tiers the read bypassed.
func (s *Service) GetProducts(ctx context.Context) ([]models.Product, error) {
	if cached, ok := s.cache.GetProducts(ctx); ok {
		s.metrics.ContentReads.WithLabelValues("products", "hot").Inc()
		return cached, nil
	}

	stored, err := s.store.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("read products from store: %w", err)
	}
	if len(stored) > 0 {
		s.metrics.ContentReads.WithLabelValues("products", "store").Inc()
		s.cache.SetProducts(ctx, stored)
		return stored, nil
	}

	// First run: the store has never been seeded.
	s.metrics.ContentReads.WithLabelValues("products", "origin").Inc()
	fresh, err := s.fetchProducts(ctx)
	if err != nil {
		s.logger.Warn("Origin unavailable on cold start, serving empty catalog",
			logger.Error(err),
		)
		return []models.Product{}, nil
	}

	if err := s.store.UpsertProducts(ctx, fresh); err != nil {
		return nil, fmt.Errorf("seed products: %w", err)
	}
	s.cache.SetProducts(ctx, fresh)
	return fresh, nil
}

// GetProduct returns one catalog item by slug, compared case-insensitively,
// through the same tiering as GetProducts. Returns models.ErrNotFound when
// the catalog has no such item.
func (s *Service) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	products, err := s.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if strings.EqualFold(products[i].Slug, slug) {
			return &products[i], nil
		}
	}
	return nil, models.ErrNotFound
}

// GetHome returns the home page content through the same tiering. "Has
// data" means any populated text field or a non-empty featured list.
func (s *Service) GetHome(ctx context.Context) (models.HomePage, error) {
	if cached, ok := s.cache.GetHome(ctx); ok {
		s.metrics.ContentReads.WithLabelValues("home", "hot").Inc()
		return *cached, nil
	}

	stored, err := s.store.GetHome(ctx)
	if err != nil {
		return models.HomePage{}, fmt.Errorf("read home from store: %w", err)
	}
	if stored != nil && stored.HasData() {
		s.metrics.ContentReads.WithLabelValues("home", "store").Inc()
		s.cache.SetHome(ctx, *stored)
		return *stored, nil
	}

	s.metrics.ContentReads.WithLabelValues("home", "origin").Inc()
	fresh, err := s.fetchHome(ctx)
	if err != nil {
		s.logger.Warn("Origin unavailable on cold start, serving empty home content",
			logger.Error(err),
		)
		return models.HomePage{FeaturedProducts: []models.Product{}}, nil
	}

	if err := s.store.UpsertHome(ctx, fresh); err != nil {
		return models.HomePage{}, fmt.Errorf("seed home: %w", err)
	}
	s.cache.SetHome(ctx, fresh)
	return fresh, nil
}

// GetTheme returns the storefront theme: hot cache, then origin with
// per-token defaults. The theme has no durable tier; a failed fetch yields
// the default theme and is not cached.
func (s *Service) GetTheme(ctx context.Context) models.Theme {
	if cached, ok := s.cache.GetTheme(ctx); ok {
		s.metrics.ContentReads.WithLabelValues("theme", "hot").Inc()
		return *cached
	}

	s.metrics.ContentReads.WithLabelValues("theme", "origin").Inc()
	raw, err := s.origin.FetchTheme(ctx)
	if err != nil {
		s.metrics.OriginFetches.WithLabelValues("theme", "error").Inc()
		s.logger.Warn("Theme fetch failed, using defaults", logger.Error(err))
		return models.DefaultTheme()
	}
	s.metrics.OriginFetches.WithLabelValues("theme", "ok").Inc()

	theme := strapi.MapTheme(raw)
	s.cache.SetTheme(ctx, theme)
	return theme
}

// Resync refreshes the durable store from the origin, bypassing both cache
// tiers. Each entity is fetched and normalized up to resyncAttempts times
// with a fixed delay between attempts, stopping early on the first non-empty
// result. The final attempt's result is upserted even when empty: a fresh
// empty state is deliberately preferred over staleness detection. Stale hot
// entries are dropped and non-empty results written through.
func (s *Service) Resync(ctx context.Context) error {
	startTime := time.Now()
	s.logger.Info("Starting content resync")

	products, err := s.retryProducts(ctx)
	if err != nil {
		return err
	}
	if err := s.store.UpsertProducts(ctx, products); err != nil {
		s.metrics.ResyncRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("resync products: %w", err)
	}

	home, err := s.retryHome(ctx)
	if err != nil {
		return err
	}
	if err := s.store.UpsertHome(ctx, home); err != nil {
		s.metrics.ResyncRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("resync home: %w", err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Cache invalidation after resync failed", logger.Error(err))
	}
	if len(products) > 0 {
		s.cache.SetProducts(ctx, products)
	}
	if home.HasData() {
		s.cache.SetHome(ctx, home)
	}

	if len(products) == 0 && !home.HasData() {
		// Valid terminal state, not a failure: the origin is persistently
		// returning nothing and the store now reflects that.
		s.metrics.ResyncRuns.WithLabelValues("empty").Inc()
		s.logger.Warn("Resync completed with empty content",
			logger.Duration("duration", time.Since(startTime)),
		)
		return nil
	}

	s.metrics.ResyncRuns.WithLabelValues("ok").Inc()
	s.logger.Info("Content resync completed",
		logger.Int("product_count", len(products)),
		logger.Bool("home_has_data", home.HasData()),
		logger.Duration("duration", time.Since(startTime)),
	)
	return nil
}

// Invalidate clears the hot cache unconditionally. The next read falls
// through to the durable store and, if that is still empty, to the origin.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}

// retryProducts runs fetch+normalize cycles until one yields a non-empty
// catalog or the attempt budget runs out, returning the last cycle's result
// either way. Fetch failures count as empty cycles.
func (s *Service) retryProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	for attempt := 1; attempt <= resyncAttempts; attempt++ {
		fetched, err := s.fetchProducts(ctx)
		if err == nil {
			products = fetched
			if len(products) > 0 {
				break
			}
		} else {
			products = []models.Product{}
		}

		if attempt < resyncAttempts {
			s.logger.Debug("Catalog resync attempt yielded no data, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("delay", resyncRetryDelay),
			)
			if err := sleep(ctx, resyncRetryDelay); err != nil {
				return nil, err
			}
		}
	}
	return products, nil
}

// retryHome is retryProducts for the home page record.
func (s *Service) retryHome(ctx context.Context) (models.HomePage, error) {
	var home models.HomePage
	for attempt := 1; attempt <= resyncAttempts; attempt++ {
		fetched, err := s.fetchHome(ctx)
		if err == nil {
			home = fetched
			if home.HasData() {
				break
			}
		} else {
			home = models.HomePage{FeaturedProducts: []models.Product{}}
		}

		if attempt < resyncAttempts {
			s.logger.Debug("Home resync attempt yielded no data, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("delay", resyncRetryDelay),
			)
			if err := sleep(ctx, resyncRetryDelay); err != nil {
				return models.HomePage{}, err
			}
		}
	}
	return home, nil
}

// fetchProducts performs one origin fetch + normalize cycle for the catalog.
func (s *Service) fetchProducts(ctx context.Context) ([]models.Product, error) {
	raw, err := s.origin.FetchProducts(ctx)
	if err != nil {
		s.metrics.OriginFetches.WithLabelValues("products", "error").Inc()
		return nil, err
	}
	s.metrics.OriginFetches.WithLabelValues("products", "ok").Inc()
	return strapi.MapProducts(raw, s.origin.BaseURL()), nil
}

// fetchHome performs one origin fetch + normalize cycle for the home page.
func (s *Service) fetchHome(ctx context.Context) (models.HomePage, error) {
	raw, err := s.origin.FetchHome(ctx)
	if err != nil {
		s.metrics.OriginFetches.WithLabelValues("home", "error").Inc()
		return models.HomePage{}, err
	}
	s.metrics.OriginFetches.WithLabelValues("home", "ok").Inc()
	return strapi.MapHome(raw, s.origin.BaseURL()), nil
}

// sleep waits for the given duration or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
