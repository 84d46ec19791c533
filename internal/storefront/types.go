// Package storefront implements the client for the storefront platform API.
package storefront

import "time"

// Product is a product record as the storefront platform returns it.
type Product struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	BodyHTML  string    `json:"body_html"`
	Vendor    string    `json:"vendor"`
	SKU       string    `json:"sku"`
	Price     string    `json:"price"`
	Tags      []string  `json:"tags"`
	Images    []string  `json:"images"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductInput is the formatted payload sent on create/update.
type ProductInput struct {
	Title     string   `json:"title"`
	BodyHTML  string   `json:"body_html"`
	Vendor    string   `json:"vendor"`
	SKU       string   `json:"sku"`
	Price     string   `json:"price"`
	Tags      []string `json:"tags"`
	Images    []string `json:"images"`
	Published bool     `json:"published"`
}
