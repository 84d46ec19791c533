// Package config handles environment variable loading for ports, database strings, etc.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the application.
type Config struct {
	// Database connection string
	DatabaseURL string

	// HTTP server port for the controller
	HTTPPort int

	// Redis address for the catalog cache; empty disables caching
	RedisAddr string

	// Source catalog API
	CatalogURL    string
	CatalogAPIKey string

	// Storefront platform API
	StorefrontURL string

	// Timeout applied to every outbound catalog/storefront call
	HTTPTimeout time.Duration

	// Maximum retry attempts for storefront calls
	MaxRetries int

	// Per-tenant requests-per-second cap against the storefront API.
	// Zero means unlimited.
	StorefrontRPS float64

	// Per-tenant request cap on the controller API. Zero disables the limit.
	APIRateLimitRPS   float64
	APIRateLimitBurst int

	// Products fetched per catalog page
	PageSize int

	// Concurrent product-detail lookups during bulk imports
	DetailBatchSize int

	// OTLP collector endpoint for tracing
	OTELEndpoint string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	catalogURL := os.Getenv("CATALOG_API_URL")
	if catalogURL == "" {
		return nil, fmt.Errorf("CATALOG_API_URL is required")
	}

	storefrontURL := os.Getenv("STOREFRONT_API_URL")
	if storefrontURL == "" {
		return nil, fmt.Errorf("STOREFRONT_API_URL is required")
	}

	port, err := intEnv("PORT", 6161)
	if err != nil {
		return nil, err
	}

	timeout := 30 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
		}
		timeout = d
	}

	maxRetries, err := intEnv("MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}

	rps := 2.0
	if v := os.Getenv("STOREFRONT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid STOREFRONT_RPS: %w", err)
		}
		rps = f
	}

	apiRPS := 10.0
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
		}
		apiRPS = f
	}

	apiBurst, err := intEnv("RATE_LIMIT_BURST", 20)
	if err != nil {
		return nil, err
	}

	pageSize, err := intEnv("PAGE_SIZE", 50)
	if err != nil {
		return nil, err
	}

	detailBatchSize, err := intEnv("DETAIL_BATCH_SIZE", 10)
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:       dbURL,
		HTTPPort:          port,
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		CatalogURL:        catalogURL,
		CatalogAPIKey:     os.Getenv("CATALOG_API_KEY"),
		StorefrontURL:     storefrontURL,
		HTTPTimeout:       timeout,
		MaxRetries:        maxRetries,
		StorefrontRPS:     rps,
		APIRateLimitRPS:   apiRPS,
		APIRateLimitBurst: apiBurst,
		PageSize:          pageSize,
		DetailBatchSize:   detailBatchSize,
		OTELEndpoint:      os.Getenv("OTEL_ENDPOINT"),
	}, nil
}

func intEnv(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return n, nil
}
