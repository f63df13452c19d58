// Package strapi talks to the CMS origin and normalizes its payloads into
// canonical storefront records. The client does network reads only; mapping
// lives in mapper.go and performs no I/O.
package strapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nutesshop/storefront/internal/httpclient"
	"github.com/nutesshop/storefront/internal/logger"
	"github.com/nutesshop/storefront/internal/models"
)

const (
	productsPath = "/api/products?populate=*"
	homePath     = "/api/home-page?populate=*"
	themePath    = "/api/theme"
)

// Client issues read requests against the CMS origin. It holds no cache and
// performs no retries; retry policy belongs to the content service so it can
// be applied uniformly across fetch and normalization outcomes.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  logger.Logger
}

// NewClient creates a CMS origin client. The timeout bounds each individual
// call and must stay below the content service's overall resync budget.
func NewClient(baseURL, token string, timeout time.Duration, log logger.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("strapi base URL is required")
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  httpclient.New(timeout),
		logger:  log,
	}, nil
}

// BaseURL returns the configured origin base address, used by the mapper to
// resolve origin-relative media paths.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchProducts fetches the raw catalog payload.
func (c *Client) FetchProducts(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, productsPath)
}

// FetchHome fetches the raw home page payload.
func (c *Client) FetchHome(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, homePath)
}

// FetchTheme fetches the raw theme payload.
func (c *Client) FetchTheme(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, themePath)
}

// get performs one GET against the origin. Any transport error, non-2xx
// status or malformed body is reported as models.ErrOriginUnavailable; no
// failure class from this layer propagates as anything else.
func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	endpoint := c.baseURL + path
	startTime := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Warn("Origin request failed",
			logger.String("endpoint", endpoint),
			logger.Duration("duration", time.Since(startTime)),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", models.ErrOriginUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Warn("Origin returned non-success status",
			logger.String("endpoint", endpoint),
			logger.Int("status_code", resp.StatusCode),
			logger.Duration("duration", time.Since(startTime)),
		)
		return nil, fmt.Errorf("%w: status %d", models.ErrOriginUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", models.ErrOriginUnavailable, err)
	}

	if !json.Valid(body) {
		c.logger.Warn("Origin returned malformed body",
			logger.String("endpoint", endpoint),
			logger.Int("body_size", len(body)),
		)
		return nil, fmt.Errorf("%w: malformed body", models.ErrOriginUnavailable)
	}

	c.logger.Debug("Origin request completed",
		logger.String("endpoint", endpoint),
		logger.Int("status_code", resp.StatusCode),
		logger.Int("body_size", len(body)),
		logger.Duration("duration", time.Since(startTime)),
	)

	return body, nil
}
