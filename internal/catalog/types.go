// Package catalog implements the client for the external source catalog API.
package catalog

import "time"

// Brand is a product manufacturer/line in the source catalog.
type Brand struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ProductCount int    `json:"product_count"`
}

// ProductSummary is the shallow listing entry returned by paginated queries.
type ProductSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	BrandID string `json:"brand_id"`
}

// Product is the full detail record fetched per product before reconciliation.
type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	BrandID     string            `json:"brand_id"`
	BrandName   string            `json:"brand_name"`
	SKU         string            `json:"sku"`
	Description string            `json:"description"`
	Price       string            `json:"price"`
	Currency    string            `json:"currency"`
	Images      []string          `json:"images"`
	Attributes  map[string]string `json:"attributes"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ProductPage is one page of a brand's product listing.
type ProductPage struct {
	Products   []ProductSummary `json:"products"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalCount int              `json:"total_count"`
	HasMore    bool             `json:"has_more"`
}

// ProductFilter narrows brand product listings.
type ProductFilter struct {
	// UpdatedSince limits results to products changed after the given time.
	UpdatedSince *time.Time
}
