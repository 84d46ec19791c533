package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"catsync/internal/store"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ErrNotFound signals that the storefront no longer has the product,
// e.g. it was deleted by the merchant outside the sync pipeline.
var ErrNotFound = errors.New("storefront product not found")

// APIError represents an error response from the storefront API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront API error (%d): %s", e.StatusCode, e.Message)
}

// retryable reports whether the request should be attempted again.
// Rate-limit and server-side failures are transient; everything else is not.
func retryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

// ClientConfig holds the outbound I/O policy for storefront calls.
type ClientConfig struct {
	BaseURL string
	// Timeout applies per attempt, not per logical call.
	Timeout time.Duration
	// MaxRetries bounds attempts for transient failures (default: 3).
	MaxRetries int
	// RPS caps per-tenant request rate. Zero means unlimited.
	RPS float64
}

// Client calls the storefront platform API. Requests are rate-limited per
// tenant and retried with exponential backoff on transient failures.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	limiters   sync.Map // tenant ID -> *rate.Limiter
	logger     *slog.Logger
}

// New creates a new storefront client.
func New(config ClientConfig, logger *slog.Logger) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}

	// Ensure no trailing slash
	if len(config.BaseURL) > 0 && config.BaseURL[len(config.BaseURL)-1] == '/' {
		config.BaseURL = config.BaseURL[:len(config.BaseURL)-1]
	}

	return &Client{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// GetProduct fetches a storefront product. Returns ErrNotFound when the
// product no longer exists there.
func (c *Client) GetProduct(ctx context.Context, tenant *store.Tenant, id string) (*Product, error) {
	var product Product
	err := c.do(ctx, tenant, http.MethodGet, "/v1/products/"+url.PathEscape(id), nil, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct creates a new storefront product from formatted data.
func (c *Client) CreateProduct(ctx context.Context, tenant *store.Tenant, input *ProductInput) (*Product, error) {
	var product Product
	err := c.do(ctx, tenant, http.MethodPost, "/v1/products", input, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct overwrites an existing storefront product.
func (c *Client) UpdateProduct(ctx context.Context, tenant *store.Tenant, id string, input *ProductInput) (*Product, error) {
	var product Product
	err := c.do(ctx, tenant, http.MethodPut, "/v1/products/"+url.PathEscape(id), input, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes a storefront product.
func (c *Client) DeleteProduct(ctx context.Context, tenant *store.Tenant, id string) error {
	return c.do(ctx, tenant, http.MethodDelete, "/v1/products/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, tenant *store.Tenant, method, path string, in, out interface{}) error {
	if err := c.waitLimiter(ctx, tenant.ID); err != nil {
		return err
	}

	operation := func() (struct{}, error) {
		err := c.doOnce(ctx, tenant, method, path, in, out)
		if err == nil {
			return struct{}{}, nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && !retryable(apiErr.StatusCode) {
			return struct{}{}, backoff.Permanent(err)
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) {
			return struct{}{}, backoff.Permanent(err)
		}

		c.logger.Warn("storefront request retrying",
			"tenant_id", tenant.ID, "method", method, "path", path, "error", err)
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(c.config.MaxRetries)),
	)
	return err
}

func (c *Client) doOnce(ctx context.Context, tenant *store.Tenant, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+tenant.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storefront request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse storefront response: %w", err)
		}
	}

	return nil
}

// waitLimiter blocks until the tenant's rate limiter admits the request.
func (c *Client) waitLimiter(ctx context.Context, tenantID uuid.UUID) error {
	if c.config.RPS <= 0 {
		return nil
	}

	v, _ := c.limiters.LoadOrStore(tenantID, rate.NewLimiter(rate.Limit(c.config.RPS), 1))
	return v.(*rate.Limiter).Wait(ctx)
}
