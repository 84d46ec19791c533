package sync

import (
	"context"

	"catsync/internal/catalog"
	"catsync/internal/store"
	"catsync/internal/storefront"
)

// CatalogClient is the slice of the source catalog API the engine consumes.
type CatalogClient interface {
	// ListBrands returns every brand visible to the tenant.
	ListBrands(ctx context.Context, tenant *store.Tenant) ([]catalog.Brand, error)

	// ListProductsByBrand returns one page of a brand's products. Pages are 1-based.
	ListProductsByBrand(ctx context.Context, tenant *store.Tenant, brandID string, page, pageSize int, filter catalog.ProductFilter) (*catalog.ProductPage, error)

	// GetProductDetail fetches the full product record.
	GetProductDetail(ctx context.Context, tenant *store.Tenant, productID string) (*catalog.Product, error)
}

// StorefrontClient is the slice of the storefront platform API the engine consumes.
type StorefrontClient interface {
	// GetProduct returns storefront.ErrNotFound when the product was deleted there.
	GetProduct(ctx context.Context, tenant *store.Tenant, id string) (*storefront.Product, error)

	CreateProduct(ctx context.Context, tenant *store.Tenant, input *storefront.ProductInput) (*storefront.Product, error)

	UpdateProduct(ctx context.Context, tenant *store.Tenant, id string, input *storefront.ProductInput) (*storefront.Product, error)

	DeleteProduct(ctx context.Context, tenant *store.Tenant, id string) error
}
