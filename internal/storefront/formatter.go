package storefront

import (
	"fmt"
	"strings"

	"catsync/internal/catalog"
	"catsync/internal/store"
)

// Formatter turns a source catalog product into a storefront payload.
// The engine only owns this seam; the actual transformation rules are
// supplied by the integration.
type Formatter interface {
	Format(tenant *store.Tenant, product *catalog.Product, opts store.SyncOptions) *ProductInput
}

// DefaultFormatter is a direct field mapping with an optional title template.
type DefaultFormatter struct{}

// Format maps catalog fields onto a storefront product payload.
// The title template supports {brand} and {name} placeholders.
func (DefaultFormatter) Format(_ *store.Tenant, product *catalog.Product, opts store.SyncOptions) *ProductInput {
	title := product.Name
	if opts.TitleTemplate != "" {
		title = strings.NewReplacer(
			"{brand}", product.BrandName,
			"{name}", product.Name,
		).Replace(opts.TitleTemplate)
	}

	tags := []string{product.BrandName}
	for k, v := range product.Attributes {
		tags = append(tags, fmt.Sprintf("%s:%s", k, v))
	}

	return &ProductInput{
		Title:     title,
		BodyHTML:  product.Description,
		Vendor:    product.BrandName,
		SKU:       product.SKU,
		Price:     product.Price,
		Tags:      tags,
		Images:    product.Images,
		Published: opts.PublishProducts,
	}
}
