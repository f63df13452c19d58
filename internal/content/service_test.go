package content_test

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/nutesshop/storefront/internal/content"
	"github.com/nutesshop/storefront/internal/logger"
	"github.com/nutesshop/storefront/internal/metrics"
	"github.com/nutesshop/storefront/internal/models"
)

const catalogPayload = `{"data": [
	{"id": 1, "attributes": {"slug": "macadamia", "name": "Macadamia Nuts", "price": {"amount": 120, "per": "kg"}, "inStock": true}},
	{"id": 2, "attributes": {"slug": "pecan", "name": "Pecan Halves", "price": {"amount": 89, "per": "kg"}, "inStock": true}},
	{"id": 3, "attributes": {"slug": "almond", "name": "Almonds", "price": {"amount": 75, "per": "kg"}, "inStock": true}}
]}`

const emptyCatalogPayload = `{"data": []}`

const homePayload = `{"data": {"id": 1, "attributes": {"heroTitle": "Premium Nuts"}}}`

const emptyHomePayload = `{"data": {"id": 1, "attributes": {}}}`

// fakeOrigin serves queued payloads per entity, repeating the last one, and
// counts fetch invocations.
type fakeOrigin struct {
	productPayloads []string
	homePayloads    []string
	themePayload    string

	productErr error
	homeErr    error
	themeErr   error

	productCalls int
	homeCalls    int
	themeCalls   int
}

func (f *fakeOrigin) BaseURL() string { return "https://cms.example.com" }

func (f *fakeOrigin) FetchProducts(context.Context) (json.RawMessage, error) {
	f.productCalls++
	if f.productErr != nil {
		return nil, f.productErr
	}
	return json.RawMessage(queuedPayload(f.productPayloads, f.productCalls)), nil
}

func (f *fakeOrigin) FetchHome(context.Context) (json.RawMessage, error) {
	f.homeCalls++
	if f.homeErr != nil {
		return nil, f.homeErr
	}
	return json.RawMessage(queuedPayload(f.homePayloads, f.homeCalls)), nil
}

func (f *fakeOrigin) FetchTheme(context.Context) (json.RawMessage, error) {
	f.themeCalls++
	if f.themeErr != nil {
		return nil, f.themeErr
	}
	return json.RawMessage(f.themePayload), nil
}

func queuedPayload(payloads []string, call int) string {
	if len(payloads) == 0 {
		return emptyCatalogPayload
	}
	if call > len(payloads) {
		return payloads[len(payloads)-1]
	}
	return payloads[call-1]
}

// fakeStore is an in-memory durable tier with error injection.
type fakeStore struct {
	products []models.Product
	home     *models.HomePage

	getProductsErr    error
	getHomeErr        error
	upsertProductsErr error
	upsertHomeErr     error

	productUpserts [][]models.Product
	homeUpserts    []models.HomePage
}

func (f *fakeStore) GetProducts(context.Context) ([]models.Product, error) {
	if f.getProductsErr != nil {
		return nil, f.getProductsErr
	}
	return f.products, nil
}

func (f *fakeStore) UpsertProducts(_ context.Context, products []models.Product) error {
	if f.upsertProductsErr != nil {
		return f.upsertProductsErr
	}
	f.products = products
	f.productUpserts = append(f.productUpserts, products)
	return nil
}

func (f *fakeStore) GetHome(context.Context) (*models.HomePage, error) {
	if f.getHomeErr != nil {
		return nil, f.getHomeErr
	}
	return f.home, nil
}

func (f *fakeStore) UpsertHome(_ context.Context, home models.HomePage) error {
	if f.upsertHomeErr != nil {
		return f.upsertHomeErr
	}
	f.home = &home
	f.homeUpserts = append(f.homeUpserts, home)
	return nil
}

// fakeCache is an in-memory hot tier.
type fakeCache struct {
	products []models.Product
	home     *models.HomePage
	theme    *models.Theme

	invalidations int
	invalidateErr error
}

func (f *fakeCache) GetProducts(context.Context) ([]models.Product, bool) {
	return f.products, f.products != nil
}

func (f *fakeCache) SetProducts(_ context.Context, products []models.Product) {
	f.products = products
}

func (f *fakeCache) GetHome(context.Context) (*models.HomePage, bool) {
	return f.home, f.home != nil
}

func (f *fakeCache) SetHome(_ context.Context, home models.HomePage) {
	f.home = &home
}

func (f *fakeCache) GetTheme(context.Context) (*models.Theme, bool) {
	return f.theme, f.theme != nil
}

func (f *fakeCache) SetTheme(_ context.Context, theme models.Theme) {
	f.theme = &theme
}

func (f *fakeCache) Invalidate(context.Context) error {
	f.invalidations++
	if f.invalidateErr != nil {
		return f.invalidateErr
	}
	f.products = nil
	f.home = nil
	f.theme = nil
	return nil
}

func newTestService(origin *fakeOrigin, store *fakeStore, cache *fakeCache) *content.Service {
	return content.NewService(origin, store, cache, metrics.NewNop(), logger.NewNopLogger())
}

func TestGetProducts_HotCacheHit(t *testing.T) {
	origin := &fakeOrigin{}
	store := &fakeStore{}
	cache := &fakeCache{products: []models.Product{{Slug: "macadamia", Name: "Macadamia Nuts"}}}
	service := newTestService(origin, store, cache)

	got, err := service.GetProducts(context.Background())
	if err != nil {
		t.Fatalf("GetProducts() error = %v", err)
	}
	if len(got) != 1 || got[0].Slug != "macadamia" {
		t.Errorf("GetProducts() = %+v, want cached catalog", got)
	}
	if origin.productCalls != 0 {
		t.Errorf("origin fetches = %d, want 0 on hot hit", origin.productCalls)
	}
}

func TestGetProducts_StoreIsAuthoritative(t *testing.T) {
	stored := []models.Product{
		{Slug: "macadamia", Name: "Macadamia Nuts"},
		{Slug: "pecan", Name: "Pecan Halves"},
	}
	origin := &fakeOrigin{productPayloads: []string{catalogPayload}}
	store := &fakeStore{products: stored}
	cache := &fakeCache{}
	service := newTestService(origin, store, cache)

	got, err := service.GetProducts(context.Background())
	if err != nil {
		t.Fatalf("GetProducts() error = %v", err)
	}
	if !reflect.DeepEqual(got, stored) {
		t.Errorf("GetProducts() = %+v, want stored catalog", got)
	}
	if origin.productCalls != 0 {
		t.Errorf("origin fetches = %d, want 0 when store is populated", origin.productCalls)
	}
	if cache.products == nil {
		t.Error("store hit not written through to hot cache")
	}
}

func TestGetProducts_ColdStartSeedsStore(t *testing.T) {
	origin := &fakeOrigin{productPayloads: []string{catalogPayload}}
	store := &fakeStore{}
	cache := &fakeCache{}
	service := newTestService(origin, store, cache)

	got, err := service.GetProducts(context.Background())
	if err != nil {
		t.Fatalf("GetProducts() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("GetProducts() returned %d products, want 3", len(got))
	}
	if origin.productCalls != 1 {
		t.Errorf("origin fetches = %d, want 1", origin.productCalls)
	}
	if len(store.productUpserts) != 1 {
		t.Errorf("store upserts = %d, want 1", len(store.productUpserts))
	}
	if cache.products == nil {
		t.Error("cold-start result not written through to hot cache")
	}
}

func TestGetProducts_OriginDownOnColdStart(t *testing.T) {
	origin := &fakeOrigin{productErr: models.ErrOriginUnavailable}
	store := &fakeStore{}
	cache := &fakeCache{}
	service := newTestService(origin, store, cache)

	got, err := service.GetProducts(context.Background())
	if err != nil {
		t.Fatalf("GetProducts() error = %v, want nil when origin is down", err)
	}
	if len(got) != 0 {
		t.Errorf("GetProducts() = %+v, want empty catalog", got)
	}
	if len(store.productUpserts) != 0 {
		t.Errorf("store upserts = %d, want 0 on origin failure", len(store.productUpserts))
	}
}

func TestGetProducts_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("connection refused")
	origin := &fakeOrigin{}
	store := &fakeStore{getProductsErr: storeErr}
	service := newTestService(origin, store, &fakeCache{})

	_, err := service.GetProducts(context.Background())
	if !errors.Is(err, storeErr) {
		t.Errorf("GetProducts() error = %v, want wrapped store error", err)
	}
	if origin.productCalls != 0 {
		t.Errorf("origin fetches = %d, want 0 on store failure", origin.productCalls)
	}
}

func TestGetProduct_CaseInsensitiveSlug(t *testing.T) {
	store := &fakeStore{products: []models.Product{
		{Slug: "macadamia", Name: "Macadamia Nuts"},
		{Slug: "pecan", Name: "Pecan Halves"},
	}}
	service := newTestService(&fakeOrigin{}, store, &fakeCache{})

	got, err := service.GetProduct(context.Background(), "MACADAMIA")
	if err != nil {
		t.Fatalf("GetProduct() error = %v", err)
	}
	if got.Slug != "macadamia" {
		t.Errorf("GetProduct() slug = %q, want %q", got.Slug, "macadamia")
	}

	_, err = service.GetProduct(context.Background(), "walnut")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetProduct() error = %v, want ErrNotFound", err)
	}
}

func TestGetHome_TierPrecedence(t *testing.T) {
	stored := &models.HomePage{HeroTitle: "Stored Title"}
	origin := &fakeOrigin{homePayloads: []string{homePayload}}
	store := &fakeStore{home: stored}
	cache := &fakeCache{}
	service := newTestService(origin, store, cache)

	got, err := service.GetHome(context.Background())
	if err != nil {
		t.Fatalf("GetHome() error = %v", err)
	}
	if got.HeroTitle != "Stored Title" {
		t.Errorf("HeroTitle = %q, want stored record", got.HeroTitle)
	}
	if origin.homeCalls != 0 {
		t.Errorf("origin fetches = %d, want 0 when store has data", origin.homeCalls)
	}
	if cache.home == nil {
		t.Error("store hit not written through to hot cache")
	}
}

func TestGetHome_EmptyStoredRecordFallsThrough(t *testing.T) {
	origin := &fakeOrigin{homePayloads: []string{homePayload}}
	store := &fakeStore{home: &models.HomePage{}}
	service := newTestService(origin, store, &fakeCache{})

	got, err := service.GetHome(context.Background())
	if err != nil {
		t.Fatalf("GetHome() error = %v", err)
	}
	if got.HeroTitle != "Premium Nuts" {
		t.Errorf("HeroTitle = %q, want origin record", got.HeroTitle)
	}
	if origin.homeCalls != 1 {
		t.Errorf("origin fetches = %d, want 1 for empty stored record", origin.homeCalls)
	}
}

func TestGetHome_OriginDownOnColdStart(t *testing.T) {
	origin := &fakeOrigin{homeErr: models.ErrOriginUnavailable}
	service := newTestService(origin, &fakeStore{}, &fakeCache{})

	got, err := service.GetHome(context.Background())
	if err != nil {
		t.Fatalf("GetHome() error = %v, want nil when origin is down", err)
	}
	if got.HasData() {
		t.Errorf("GetHome() = %+v, want empty record", got)
	}
}

func TestGetTheme(t *testing.T) {
	t.Run("origin success is mapped and cached", func(t *testing.T) {
		origin := &fakeOrigin{themePayload: `{"data": {"id": 1, "attributes": {"accent": "#ff0000"}}}`}
		cache := &fakeCache{}
		service := newTestService(origin, &fakeStore{}, cache)

		got := service.GetTheme(context.Background())
		if got.Accent != "#ff0000" {
			t.Errorf("Accent = %q, want override", got.Accent)
		}
		if cache.theme == nil {
			t.Error("theme not written through to hot cache")
		}
	})

	t.Run("origin failure yields defaults uncached", func(t *testing.T) {
		origin := &fakeOrigin{themeErr: models.ErrOriginUnavailable}
		cache := &fakeCache{}
		service := newTestService(origin, &fakeStore{}, cache)

		got := service.GetTheme(context.Background())
		if !reflect.DeepEqual(got, models.DefaultTheme()) {
			t.Errorf("GetTheme() = %+v, want defaults", got)
		}
		if cache.theme != nil {
			t.Error("failed theme fetch must not be cached")
		}
	})

	t.Run("hot cache hit skips origin", func(t *testing.T) {
		cached := models.DefaultTheme()
		cached.Accent = "#00ff00"
		origin := &fakeOrigin{}
		service := newTestService(origin, &fakeStore{}, &fakeCache{theme: &cached})

		got := service.GetTheme(context.Background())
		if got.Accent != "#00ff00" {
			t.Errorf("Accent = %q, want cached value", got.Accent)
		}
		if origin.themeCalls != 0 {
			t.Errorf("origin fetches = %d, want 0 on hot hit", origin.themeCalls)
		}
	})
}

func TestResync_StopsEarlyOnData(t *testing.T) {
	origin := &fakeOrigin{
		productPayloads: []string{emptyCatalogPayload, catalogPayload},
		homePayloads:    []string{homePayload},
	}
	store := &fakeStore{}
	cache := &fakeCache{products: []models.Product{{Slug: "stale"}}}
	service := newTestService(origin, store, cache)

	if err := service.Resync(context.Background()); err != nil {
		t.Fatalf("Resync() error = %v", err)
	}

	if origin.productCalls != 2 {
		t.Errorf("product fetches = %d, want 2 (empty then populated)", origin.productCalls)
	}
	if origin.homeCalls != 1 {
		t.Errorf("home fetches = %d, want 1", origin.homeCalls)
	}
	if len(store.productUpserts) != 1 || len(store.productUpserts[0]) != 3 {
		t.Errorf("store upserts = %+v, want one upsert with 3 products", store.productUpserts)
	}
	if cache.invalidations != 1 {
		t.Errorf("cache invalidations = %d, want 1", cache.invalidations)
	}
	if len(cache.products) != 3 {
		t.Errorf("cached products = %d, want refreshed catalog of 3", len(cache.products))
	}
	if cache.home == nil || cache.home.HeroTitle != "Premium Nuts" {
		t.Errorf("cached home = %+v, want refreshed record", cache.home)
	}
}

func TestResync_EmptyAfterAllAttempts(t *testing.T) {
	origin := &fakeOrigin{
		productPayloads: []string{emptyCatalogPayload},
		homePayloads:    []string{emptyHomePayload},
	}
	store := &fakeStore{
		products: []models.Product{{Slug: "old", Name: "Old"}},
		home:     &models.HomePage{HeroTitle: "Old"},
	}
	cache := &fakeCache{}
	service := newTestService(origin, store, cache)

	if err := service.Resync(context.Background()); err != nil {
		t.Fatalf("Resync() error = %v, empty content is a valid terminal state", err)
	}

	if origin.productCalls != 3 {
		t.Errorf("product fetches = %d, want full attempt budget of 3", origin.productCalls)
	}
	if origin.homeCalls != 3 {
		t.Errorf("home fetches = %d, want full attempt budget of 3", origin.homeCalls)
	}
	if len(store.products) != 0 {
		t.Errorf("store products = %+v, want replaced by empty result", store.products)
	}
	if store.home.HasData() {
		t.Errorf("store home = %+v, want replaced by empty record", store.home)
	}
	if cache.invalidations != 1 {
		t.Errorf("cache invalidations = %d, want 1", cache.invalidations)
	}
	if cache.products != nil || cache.home != nil {
		t.Error("empty results must not be written to the hot cache")
	}
}

func TestResync_FetchErrorsCountAsEmpty(t *testing.T) {
	origin := &fakeOrigin{
		productErr: models.ErrOriginUnavailable,
		homeErr:    models.ErrOriginUnavailable,
	}
	store := &fakeStore{}
	service := newTestService(origin, store, &fakeCache{})

	if err := service.Resync(context.Background()); err != nil {
		t.Fatalf("Resync() error = %v, origin failures are absorbed", err)
	}
	if len(store.productUpserts) != 1 {
		t.Errorf("store upserts = %d, want final empty result persisted", len(store.productUpserts))
	}
}

func TestResync_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("connection refused")
	origin := &fakeOrigin{productPayloads: []string{catalogPayload}}
	store := &fakeStore{upsertProductsErr: storeErr}
	service := newTestService(origin, store, &fakeCache{})

	if err := service.Resync(context.Background()); !errors.Is(err, storeErr) {
		t.Errorf("Resync() error = %v, want wrapped store error", err)
	}
}

func TestResync_ContextCancellationStopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	origin := &fakeOrigin{productPayloads: []string{emptyCatalogPayload}}
	service := newTestService(origin, &fakeStore{}, &fakeCache{})

	if err := service.Resync(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Resync() error = %v, want context.Canceled", err)
	}
}
