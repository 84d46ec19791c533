// Package store contains the database layer for catsync.
package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Tenant represents a storefront integration in the multi-tenant system.
// All operations must be scoped by TenantID.
type Tenant struct {
	ID uuid.UUID
	// Name is the human-readable store name.
	Name string
	// APIKeyHash authenticates calls against the controller API.
	APIKeyHash string
	// AccessToken is the opaque credential used against the storefront platform.
	AccessToken string
	// SyncEnabled controls whether a recurring schedule is registered.
	SyncEnabled bool
	// ScheduleExpression is a five or six field cron expression.
	ScheduleExpression string
	Options            SyncOptions
	LastSyncAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SyncOptions are the per-trigger behavior flags for a sync run.
// Formatting flags are opaque to the engine and passed through to the formatter.
type SyncOptions struct {
	// BrandID restricts the run to a single source brand.
	BrandID string `json:"brand_id,omitempty"`
	// BrandIDs restricts the run to an explicit brand set.
	BrandIDs []string `json:"brand_ids,omitempty"`
	// SkipExisting returns already-mapped products as skipped without any I/O.
	SkipExisting bool `json:"skip_existing,omitempty"`
	// PublishProducts marks created storefront products as published.
	PublishProducts bool `json:"publish_products,omitempty"`
	// TitleTemplate overrides the default product title format.
	TitleTemplate string `json:"title_template,omitempty"`
}

// SyncJobStatus represents the state of a sync job.
type SyncJobStatus string

const (
	JobStatusInitializing SyncJobStatus = "initializing"
	JobStatusInProgress   SyncJobStatus = "in_progress"
	JobStatusCompleted    SyncJobStatus = "completed"
	JobStatusCancelled    SyncJobStatus = "cancelled"
	JobStatusError        SyncJobStatus = "error"
)

// Terminal reports whether the status is final.
func (s SyncJobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled || s == JobStatusError
}

// SyncStats accumulates counters over one job run.
type SyncStats struct {
	Total           int `json:"total"`
	Processed       int `json:"processed"`
	Imported        int `json:"imported"`
	Updated         int `json:"updated"`
	Skipped         int `json:"skipped"`
	Failed          int `json:"failed"`
	TotalBrands     int `json:"total_brands"`
	ProcessedBrands int `json:"processed_brands"`
	FailedBrands    int `json:"failed_brands"`
}

// SyncErrorScope identifies the granularity of a recorded sync error.
type SyncErrorScope string

const (
	ErrorScopeBrand   SyncErrorScope = "brand"
	ErrorScopeProduct SyncErrorScope = "product"
)

// SyncError is one recovered failure recorded on a job.
type SyncError struct {
	Scope     SyncErrorScope `json:"scope"`
	ID        string         `json:"id"`
	Name      string         `json:"name,omitempty"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
}

// SyncJob represents one execution of the full brand/product walk for a tenant.
// At most one non-terminal job exists per tenant at any time.
type SyncJob struct {
	// ID is derived from the tenant ID and creation time.
	ID             string
	TenantID       uuid.UUID
	Status         SyncJobStatus
	Options        SyncOptions
	Stats          SyncStats
	Errors         []SyncError
	CurrentBrand   string
	CurrentProduct string
	CurrentPage    int
	StartedAt      time.Time
	UpdatedAt      time.Time
	CompletedAt    *time.Time
	DurationMs     int64
	// ErrorMessage is set only when the job terminates with status error.
	ErrorMessage *string
}

// MappingStatus represents the latest reconciliation outcome for a product.
type MappingStatus string

const (
	MappingStatusImported   MappingStatus = "imported"
	MappingStatusUpdated    MappingStatus = "updated"
	MappingStatusReimported MappingStatus = "reimported"
	MappingStatusError      MappingStatus = "error"
	MappingStatusDeleted    MappingStatus = "deleted"
)

// ProductMapping links a source catalog product to its storefront counterpart.
// Each reconciliation overwrites the previous mapping state; no history is kept.
type ProductMapping struct {
	TenantID        uuid.UUID
	SourceProductID string
	// StorefrontProductID is nil until the first successful import.
	StorefrontProductID *string
	// PreviousStorefrontID records the vanished product ID after a reimport.
	PreviousStorefrontID *string
	Status               MappingStatus
	Metadata             json.RawMessage
	Error                *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ImportStatistics summarizes the mapping table for a tenant.
type ImportStatistics struct {
	Total    int                   `json:"total"`
	ByStatus map[MappingStatus]int `json:"by_status"`
}

// JobFilter narrows ListJobs results.
type JobFilter struct {
	Status SyncJobStatus
	Limit  int
	Offset int
}

// MappingFilter narrows ListMappings results.
type MappingFilter struct {
	Status MappingStatus
	Limit  int
	Offset int
}
