package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"catsync/internal/store"

	"github.com/go-redis/redis/v8"
)

// Cache TTLs. Brand lists change rarely; product details follow catalog edits.
const (
	brandCacheTTL   = 15 * time.Minute
	productCacheTTL = 5 * time.Minute
)

// APIError represents an error response from the catalog API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog API error (%d): %s", e.StatusCode, e.Message)
}

// Client calls the source catalog HTTP API with a redis read-through cache.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *redis.Client
	logger     *slog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithCache enables the redis read-through cache.
func WithCache(rdb *redis.Client) Option {
	return func(c *Client) {
		c.cache = rdb
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New creates a new catalog client.
func New(baseURL, apiKey string, logger *slog.Logger, opts ...Option) *Client {
	// Ensure no trailing slash
	if len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}

	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListBrands returns every brand visible to the tenant's catalog account.
func (c *Client) ListBrands(ctx context.Context, tenant *store.Tenant) ([]Brand, error) {
	cacheKey := fmt.Sprintf("catalog:brands:%s", tenant.ID)

	var brands []Brand
	if c.cacheGet(ctx, cacheKey, &brands) {
		return brands, nil
	}

	if err := c.get(ctx, tenant, "/v1/brands", nil, &brands); err != nil {
		return nil, err
	}

	c.cacheSet(ctx, cacheKey, brands, brandCacheTTL)
	return brands, nil
}

// ListProductsByBrand returns one page of a brand's products.
// Pages are 1-based. Listings are never cached; they drive pagination decisions.
func (c *Client) ListProductsByBrand(ctx context.Context, tenant *store.Tenant, brandID string, page, pageSize int, filter ProductFilter) (*ProductPage, error) {
	params := url.Values{}
	params.Set("brand_id", brandID)
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))
	if filter.UpdatedSince != nil {
		params.Set("updated_since", filter.UpdatedSince.UTC().Format(time.RFC3339))
	}

	var result ProductPage
	if err := c.get(ctx, tenant, "/v1/products", params, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetProductDetail fetches the full product record.
func (c *Client) GetProductDetail(ctx context.Context, tenant *store.Tenant, productID string) (*Product, error) {
	cacheKey := fmt.Sprintf("catalog:product:%s:%s", tenant.ID, productID)

	var product Product
	if c.cacheGet(ctx, cacheKey, &product) {
		return &product, nil
	}

	if err := c.get(ctx, tenant, "/v1/products/"+url.PathEscape(productID), nil, &product); err != nil {
		return nil, err
	}

	c.cacheSet(ctx, cacheKey, product, productCacheTTL)
	return &product, nil
}

func (c *Client) get(ctx context.Context, tenant *store.Tenant, path string, params url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("X-Account-ID", tenant.ID.String())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse catalog response: %w", err)
	}

	return nil
}

// cacheGet returns true when the key was present and decoded successfully.
func (c *Client) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if c.cache == nil {
		return false
	}

	data, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("catalog cache read failed", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("catalog cache entry corrupt", "key", key, "error", err)
		return false
	}

	return true
}

func (c *Client) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.cache == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := c.cache.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", "key", key, "error", err)
	}
}
