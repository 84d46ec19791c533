package store

import (
	"context"

	"github.com/google/uuid"
)

// TenantStore handles tenant identity, credentials and sync settings.
type TenantStore interface {
	// CreateTenant inserts a new tenant to the database
	CreateTenant(ctx context.Context, tenant *Tenant) error

	// GetTenantByID returns a tenant by its ID.
	GetTenantByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// GetTenantByAPIKeyHash returns a tenant by its API key hash.
	GetTenantByAPIKeyHash(ctx context.Context, hash string) (*Tenant, error)

	// SaveTenant persists mutable tenant fields (settings, LastSyncAt).
	SaveTenant(ctx context.Context, tenant *Tenant) error

	// ListTenantsWithSyncEnabled returns every tenant that should have a
	// recurring schedule registered.
	ListTenantsWithSyncEnabled(ctx context.Context) ([]*Tenant, error)
}

// SyncJobStore is the append/update log of job snapshots.
type SyncJobStore interface {
	// SaveJob inserts the initial snapshot of a new job.
	SaveJob(ctx context.Context, job *SyncJob) error

	// UpdateJob overwrites the persisted snapshot of an existing job.
	UpdateJob(ctx context.Context, job *SyncJob) error

	// GetJobByID returns a job by its ID.
	GetJobByID(ctx context.Context, id string) (*SyncJob, error)

	// ListJobs returns a tenant's jobs, newest first.
	ListJobs(ctx context.Context, tenantID uuid.UUID, filter JobFilter) ([]*SyncJob, error)
}

// ProductMappingStore handles (tenant, source product) -> storefront product records.
type ProductMappingStore interface {
	// GetMappingBySourceID returns the mapping for a source product,
	// or (nil, nil) when no mapping exists.
	GetMappingBySourceID(ctx context.Context, tenantID uuid.UUID, sourceID string) (*ProductMapping, error)

	// UpsertMapping creates or overwrites the mapping for
	// (mapping.TenantID, mapping.SourceProductID).
	UpsertMapping(ctx context.Context, mapping *ProductMapping) error

	// ListMappings returns a tenant's mappings, most recently updated first.
	ListMappings(ctx context.Context, tenantID uuid.UUID, filter MappingFilter) ([]*ProductMapping, error)

	// GetImportStatistics returns mapping counts grouped by status.
	GetImportStatistics(ctx context.Context, tenantID uuid.UUID) (*ImportStatistics, error)
}
