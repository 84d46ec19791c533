// Package sync contains the catalog synchronization engine: the reconciler,
// the orchestrator that walks brands and products, the job lifecycle manager
// and the per-tenant cron scheduler.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"catsync/internal/catalog"
	"catsync/internal/store"
	"catsync/internal/storefront"

	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testTenant() *store.Tenant {
	return &store.Tenant{
		ID:          uuid.New(),
		Name:        "acme",
		AccessToken: "tok-acme",
		Options:     store.SyncOptions{},
	}
}

// MockCatalogClient implements CatalogClient for testing.
type MockCatalogClient struct {
	// ListBrandsFunc allows customizing ListBrands behavior per test.
	ListBrandsFunc func(ctx context.Context, tenant *store.Tenant) ([]catalog.Brand, error)

	// ListProductsFunc allows customizing ListProductsByBrand behavior per test.
	ListProductsFunc func(ctx context.Context, tenant *store.Tenant, brandID string, page, pageSize int, filter catalog.ProductFilter) (*catalog.ProductPage, error)

	// GetDetailFunc allows customizing GetProductDetail behavior per test.
	GetDetailFunc func(ctx context.Context, tenant *store.Tenant, productID string) (*catalog.Product, error)

	PageFetches atomic.Int64
}

func (m *MockCatalogClient) ListBrands(ctx context.Context, tenant *store.Tenant) ([]catalog.Brand, error) {
	if m.ListBrandsFunc != nil {
		return m.ListBrandsFunc(ctx, tenant)
	}
	return nil, nil
}

func (m *MockCatalogClient) ListProductsByBrand(ctx context.Context, tenant *store.Tenant, brandID string, page, pageSize int, filter catalog.ProductFilter) (*catalog.ProductPage, error) {
	m.PageFetches.Add(1)
	if m.ListProductsFunc != nil {
		return m.ListProductsFunc(ctx, tenant, brandID, page, pageSize, filter)
	}
	return &catalog.ProductPage{Page: page, PageSize: pageSize}, nil
}

func (m *MockCatalogClient) GetProductDetail(ctx context.Context, tenant *store.Tenant, productID string) (*catalog.Product, error) {
	if m.GetDetailFunc != nil {
		return m.GetDetailFunc(ctx, tenant, productID)
	}
	return &catalog.Product{ID: productID, Name: "Product " + productID, SKU: "SKU-" + productID}, nil
}

// pagedCatalog builds ListProductsFunc behavior that serves the given number
// of products per brand in proper pages with pagination metadata.
func pagedCatalog(counts map[string]int) func(ctx context.Context, tenant *store.Tenant, brandID string, page, pageSize int, filter catalog.ProductFilter) (*catalog.ProductPage, error) {
	return func(_ context.Context, _ *store.Tenant, brandID string, page, pageSize int, _ catalog.ProductFilter) (*catalog.ProductPage, error) {
		total := counts[brandID]

		start := (page - 1) * pageSize
		end := start + pageSize
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}

		products := make([]catalog.ProductSummary, 0, end-start)
		for i := start; i < end; i++ {
			id := fmt.Sprintf("%s-p%d", brandID, i+1)
			products = append(products, catalog.ProductSummary{ID: id, Name: "Product " + id, BrandID: brandID})
		}

		return &catalog.ProductPage{
			Products:   products,
			Page:       page,
			PageSize:   pageSize,
			TotalCount: total,
			HasMore:    end < total,
		}, nil
	}
}

// MockStorefrontClient implements StorefrontClient for testing.
type MockStorefrontClient struct {
	mu sync.Mutex

	GetFunc    func(ctx context.Context, tenant *store.Tenant, id string) (*storefront.Product, error)
	CreateFunc func(ctx context.Context, tenant *store.Tenant, input *storefront.ProductInput) (*storefront.Product, error)
	UpdateFunc func(ctx context.Context, tenant *store.Tenant, id string, input *storefront.ProductInput) (*storefront.Product, error)
	DeleteFunc func(ctx context.Context, tenant *store.Tenant, id string) error

	created int
}

func (m *MockStorefrontClient) GetProduct(ctx context.Context, tenant *store.Tenant, id string) (*storefront.Product, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, tenant, id)
	}
	return &storefront.Product{ID: id}, nil
}

func (m *MockStorefrontClient) CreateProduct(ctx context.Context, tenant *store.Tenant, input *storefront.ProductInput) (*storefront.Product, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tenant, input)
	}
	m.mu.Lock()
	m.created++
	id := fmt.Sprintf("sf-%d", m.created)
	m.mu.Unlock()
	return &storefront.Product{ID: id, Title: input.Title, SKU: input.SKU}, nil
}

func (m *MockStorefrontClient) UpdateProduct(ctx context.Context, tenant *store.Tenant, id string, input *storefront.ProductInput) (*storefront.Product, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tenant, id, input)
	}
	return &storefront.Product{ID: id, Title: input.Title, SKU: input.SKU}, nil
}

func (m *MockStorefrontClient) DeleteProduct(ctx context.Context, tenant *store.Tenant, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tenant, id)
	}
	return nil
}

// MockJobStore implements store.SyncJobStore with in-memory snapshots.
type MockJobStore struct {
	mu sync.Mutex

	SaveErr   error
	UpdateErr error

	Saved   []*store.SyncJob
	Updates []store.SyncJob
}

func (m *MockJobStore) SaveJob(_ context.Context, job *store.SyncJob) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.Saved = append(m.Saved, &cp)
	return nil
}

func (m *MockJobStore) UpdateJob(_ context.Context, job *store.SyncJob) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	cp.Errors = append([]store.SyncError(nil), job.Errors...)
	m.Updates = append(m.Updates, cp)
	return nil
}

func (m *MockJobStore) GetJobByID(_ context.Context, id string) (*store.SyncJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Updates) - 1; i >= 0; i-- {
		if m.Updates[i].ID == id {
			cp := m.Updates[i]
			return &cp, nil
		}
	}
	for _, job := range m.Saved {
		if job.ID == id {
			cp := *job
			return &cp, nil
		}
	}
	return nil, errors.New("job not found")
}

func (m *MockJobStore) ListJobs(_ context.Context, tenantID uuid.UUID, _ store.JobFilter) ([]*store.SyncJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var jobs []*store.SyncJob
	for _, job := range m.Saved {
		if job.TenantID == tenantID {
			cp := *job
			jobs = append(jobs, &cp)
		}
	}
	return jobs, nil
}

// SaveCount returns how many initial snapshots were written.
func (m *MockJobStore) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Saved)
}

// LastUpdate returns the most recent persisted snapshot, or nil.
func (m *MockJobStore) LastUpdate() *store.SyncJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Updates) == 0 {
		return nil
	}
	cp := m.Updates[len(m.Updates)-1]
	return &cp
}

// MockTenantStore implements store.TenantStore over a fixed tenant set.
type MockTenantStore struct {
	mu sync.Mutex

	Tenants map[uuid.UUID]*store.Tenant

	GetFunc  func(ctx context.Context, id uuid.UUID) (*store.Tenant, error)
	SaveFunc func(ctx context.Context, tenant *store.Tenant) error

	SavedTenants []*store.Tenant
}

func NewMockTenantStore(tenants ...*store.Tenant) *MockTenantStore {
	m := &MockTenantStore{Tenants: make(map[uuid.UUID]*store.Tenant)}
	for _, t := range tenants {
		m.Tenants[t.ID] = t
	}
	return m
}

func (m *MockTenantStore) CreateTenant(_ context.Context, tenant *store.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tenants[tenant.ID] = tenant
	return nil
}

func (m *MockTenantStore) GetTenantByID(ctx context.Context, id uuid.UUID) (*store.Tenant, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tenant, ok := m.Tenants[id]
	if !ok {
		return nil, errors.New("tenant not found")
	}
	cp := *tenant
	return &cp, nil
}

func (m *MockTenantStore) GetTenantByAPIKeyHash(_ context.Context, hash string) (*store.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tenant := range m.Tenants {
		if tenant.APIKeyHash == hash {
			cp := *tenant
			return &cp, nil
		}
	}
	return nil, errors.New("tenant not found")
}

func (m *MockTenantStore) SaveTenant(ctx context.Context, tenant *store.Tenant) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tenant)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tenant
	m.SavedTenants = append(m.SavedTenants, &cp)
	m.Tenants[tenant.ID] = tenant
	return nil
}

func (m *MockTenantStore) ListTenantsWithSyncEnabled(_ context.Context) ([]*store.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tenants []*store.Tenant
	for _, tenant := range m.Tenants {
		if tenant.SyncEnabled {
			cp := *tenant
			tenants = append(tenants, &cp)
		}
	}
	return tenants, nil
}

// MockMappingStore implements store.ProductMappingStore in memory,
// keyed by source product ID.
type MockMappingStore struct {
	mu sync.Mutex

	GetErr    error
	UpsertErr error

	Mappings map[string]*store.ProductMapping
}

func NewMockMappingStore() *MockMappingStore {
	return &MockMappingStore{Mappings: make(map[string]*store.ProductMapping)}
}

func (m *MockMappingStore) GetMappingBySourceID(_ context.Context, _ uuid.UUID, sourceID string) (*store.ProductMapping, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mapping, ok := m.Mappings[sourceID]
	if !ok {
		return nil, nil
	}
	cp := *mapping
	return &cp, nil
}

func (m *MockMappingStore) UpsertMapping(_ context.Context, mapping *store.ProductMapping) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *mapping
	cp.UpdatedAt = time.Now().UTC()
	m.Mappings[mapping.SourceProductID] = &cp
	return nil
}

func (m *MockMappingStore) ListMappings(_ context.Context, tenantID uuid.UUID, _ store.MappingFilter) ([]*store.ProductMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var mappings []*store.ProductMapping
	for _, mapping := range m.Mappings {
		if mapping.TenantID == tenantID {
			cp := *mapping
			mappings = append(mappings, &cp)
		}
	}
	return mappings, nil
}

func (m *MockMappingStore) GetImportStatistics(_ context.Context, _ uuid.UUID) (*store.ImportStatistics, error) {
	return &store.ImportStatistics{}, nil
}

// Get returns the stored mapping for a source product, or nil.
func (m *MockMappingStore) Get(sourceID string) *store.ProductMapping {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Mappings[sourceID]
}
