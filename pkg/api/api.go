// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and Controller.
package api

import (
	"encoding/json"
	"time"
)

// CreateTenantRequest is the request body for creating a new tenant.
type CreateTenantRequest struct {
	Name string `json:"name"`
	// AccessToken is the storefront platform credential for this tenant.
	AccessToken string `json:"access_token"`
	// ScheduleExpression is an optional 5 or 6 field cron expression.
	ScheduleExpression string `json:"schedule_expression,omitempty"`
	SyncEnabled        bool   `json:"sync_enabled,omitempty"`
}

// CreateTenantResponse is the response body after creating a tenant.
type CreateTenantResponse struct {
	ID     string `json:"tenant_id"`
	Name   string `json:"name"`
	ApiKey string `json:"api_key"`
}

// SyncOptions are the per-trigger behavior flags carried in trigger requests.
type SyncOptions struct {
	BrandID         string   `json:"brand_id,omitempty"`
	BrandIDs        []string `json:"brand_ids,omitempty"`
	SkipExisting    bool     `json:"skip_existing,omitempty"`
	PublishProducts bool     `json:"publish_products,omitempty"`
	TitleTemplate   string   `json:"title_template,omitempty"`
}

// TriggerSyncRequest is the request body for starting a full sync.
// A nil Options means the tenant's stored options apply.
type TriggerSyncRequest struct {
	Options *SyncOptions `json:"options,omitempty"`
}

// ImportProductsRequest is the request body for a manual bulk import.
type ImportProductsRequest struct {
	ProductIDs []string    `json:"product_ids"`
	Options    SyncOptions `json:"options"`
}

// CancelSyncResponse reports whether a running job was asked to stop.
type CancelSyncResponse struct {
	Cancelled bool `json:"cancelled"`
}

// SyncStats mirrors the per-job counters.
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

// SyncError is one recovered failure recorded on a job.
type SyncError struct {
	Scope     string    `json:"scope"`
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// JobResponse represents a sync job snapshot in API responses.
type JobResponse struct {
	ID             string      `json:"id"`
	TenantID       string      `json:"tenant_id"`
	Status         string      `json:"status"`
	Options        SyncOptions `json:"options"`
	Stats          SyncStats   `json:"stats"`
	Errors         []SyncError `json:"errors,omitempty"`
	CurrentBrand   string      `json:"current_brand,omitempty"`
	CurrentProduct string      `json:"current_product,omitempty"`
	CurrentPage    int         `json:"current_page,omitempty"`
	StartedAt      time.Time   `json:"started_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	DurationMs     int64       `json:"duration_ms,omitempty"`
	Error          *string     `json:"error,omitempty"`
}

// ListJobsResponse is the response body for job listings.
type ListJobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

// MappingResponse represents a product mapping in API responses.
type MappingResponse struct {
	SourceProductID      string          `json:"source_product_id"`
	StorefrontProductID  *string         `json:"storefront_product_id,omitempty"`
	PreviousStorefrontID *string         `json:"previous_storefront_id,omitempty"`
	Status               string          `json:"status"`
	Metadata             json.RawMessage `json:"metadata,omitempty"`
	Error                *string         `json:"error,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// ListMappingsResponse is the response body for mapping listings.
type ListMappingsResponse struct {
	Mappings []MappingResponse `json:"mappings"`
}

// ImportStatisticsResponse summarizes the mapping table for a tenant.
type ImportStatisticsResponse struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

// UpdateSettingsRequest is the request body for changing sync settings.
// Pointer fields are applied only when present.
type UpdateSettingsRequest struct {
	SyncEnabled        *bool        `json:"sync_enabled,omitempty"`
	ScheduleExpression *string      `json:"schedule_expression,omitempty"`
	Options            *SyncOptions `json:"options,omitempty"`
}

// SettingsResponse is the response body after reading or changing settings.
type SettingsResponse struct {
	SyncEnabled        bool        `json:"sync_enabled"`
	ScheduleExpression string      `json:"schedule_expression,omitempty"`
	Options            SyncOptions `json:"options"`
	LastSyncAt         *time.Time  `json:"last_sync_at,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
