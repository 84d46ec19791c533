// Package handlers contains HTTP handlers for the controller API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"catsync/internal/store"
	"catsync/pkg/api"

	"github.com/google/uuid"
)

// StoreFactory combines the store interfaces the controller needs.
type StoreFactory interface {
	Ping(ctx context.Context) error
	store.TenantStore
	store.SyncJobStore
	store.ProductMappingStore
}

// SyncManager is the slice of the lifecycle manager the handlers consume.
type SyncManager interface {
	StartJob(ctx context.Context, tenantID uuid.UUID, opts store.SyncOptions) (*store.SyncJob, error)
	StartProductImport(ctx context.Context, tenantID uuid.UUID, opts store.SyncOptions, productIDs []string) (*store.SyncJob, error)
	CancelJob(ctx context.Context, tenantID uuid.UUID) bool
	GetStatus(tenantID uuid.UUID) *store.SyncJob
}

// ScheduleRegistry applies tenant schedule changes to the running scheduler.
type ScheduleRegistry interface {
	Reschedule(tenant *store.Tenant) error
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	store     StoreFactory
	manager   SyncManager
	schedules ScheduleRegistry
}

// New creates a new Handlers instance with the given dependencies.
func New(s StoreFactory, manager SyncManager, schedules ScheduleRegistry) *Handlers {
	return &Handlers{store: s, manager: manager, schedules: schedules}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}

func syncOptionsFromAPI(opts api.SyncOptions) store.SyncOptions {
	return store.SyncOptions{
		BrandID:         opts.BrandID,
		BrandIDs:        opts.BrandIDs,
		SkipExisting:    opts.SkipExisting,
		PublishProducts: opts.PublishProducts,
		TitleTemplate:   opts.TitleTemplate,
	}
}

func syncOptionsToAPI(opts store.SyncOptions) api.SyncOptions {
	return api.SyncOptions{
		BrandID:         opts.BrandID,
		BrandIDs:        opts.BrandIDs,
		SkipExisting:    opts.SkipExisting,
		PublishProducts: opts.PublishProducts,
		TitleTemplate:   opts.TitleTemplate,
	}
}

func jobToAPI(job *store.SyncJob) api.JobResponse {
	resp := api.JobResponse{
		ID:             job.ID,
		TenantID:       job.TenantID.String(),
		Status:         string(job.Status),
		Options:        syncOptionsToAPI(job.Options),
		CurrentBrand:   job.CurrentBrand,
		CurrentProduct: job.CurrentProduct,
		CurrentPage:    job.CurrentPage,
		StartedAt:      job.StartedAt,
		UpdatedAt:      job.UpdatedAt,
		CompletedAt:    job.CompletedAt,
		DurationMs:     job.DurationMs,
		Error:          job.ErrorMessage,
		Stats: api.SyncStats{
			Total:           job.Stats.Total,
			Processed:       job.Stats.Processed,
			Imported:        job.Stats.Imported,
			Updated:         job.Stats.Updated,
			Skipped:         job.Stats.Skipped,
			Failed:          job.Stats.Failed,
			TotalBrands:     job.Stats.TotalBrands,
			ProcessedBrands: job.Stats.ProcessedBrands,
			FailedBrands:    job.Stats.FailedBrands,
		},
	}

	for _, e := range job.Errors {
		resp.Errors = append(resp.Errors, api.SyncError{
			Scope:     string(e.Scope),
			ID:        e.ID,
			Name:      e.Name,
			Message:   e.Message,
			Timestamp: e.Timestamp,
		})
	}

	return resp
}

// parseListQuery reads the shared status/limit/offset query parameters.
func parseListQuery(r *http.Request) (status string, limit, offset int) {
	q := r.URL.Query()
	status = q.Get("status")
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	return status, limit, offset
}
