package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"catsync/internal/controller/middleware"
	"catsync/internal/store"
	"catsync/internal/sync"
	"catsync/pkg/api"
)

// TriggerSync handles POST /sync/trigger.
// It starts a full brand/product sync for the authenticated tenant and
// returns the initial job snapshot.
func (h *Handlers) TriggerSync(w http.ResponseWriter, r *http.Request) {
	tenant, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Stored tenant options apply unless the request carries an explicit
	// override; an empty or option-less body is not an override.
	opts := tenant.Options
	if r.Body != nil && r.ContentLength != 0 {
		var req api.TriggerSyncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.httpError(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.Options != nil {
			opts = syncOptionsFromAPI(*req.Options)
		}
	}

	job, err := h.manager.StartJob(r.Context(), tenant.ID, opts)
	if err != nil {
		if errors.Is(err, sync.ErrAlreadyRunning) {
			h.httpError(w, "A sync job is already running", http.StatusConflict)
			return
		}
		h.httpError(w, "Failed to start sync", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusAccepted, jobToAPI(job))
}

// ImportProducts handles POST /sync/products.
// It starts a manual bulk import of explicit product IDs.
func (h *Handlers) ImportProducts(w http.ResponseWriter, r *http.Request) {
	tenant, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.ImportProductsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if len(req.ProductIDs) == 0 {
		h.httpError(w, "product_ids is required", http.StatusBadRequest)
		return
	}

	job, err := h.manager.StartProductImport(r.Context(), tenant.ID, syncOptionsFromAPI(req.Options), req.ProductIDs)
	if err != nil {
		if errors.Is(err, sync.ErrAlreadyRunning) {
			h.httpError(w, "A sync job is already running", http.StatusConflict)
			return
		}
		h.httpError(w, "Failed to start import", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusAccepted, jobToAPI(job))
}

// CancelSync handles POST /sync/cancel.
// Cancellation is cooperative; the job stops at its next checkpoint.
func (h *Handlers) CancelSync(w http.ResponseWriter, r *http.Request) {
	tenant, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cancelled := h.manager.CancelJob(r.Context(), tenant.ID)
	h.respondJson(w, http.StatusOK, api.CancelSyncResponse{Cancelled: cancelled})
}

// GetSyncStatus handles GET /sync/status.
// It prefers the live in-memory snapshot and falls back to the most recent
// persisted job.
func (h *Handlers) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	tenant, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if job := h.manager.GetStatus(tenant.ID); job != nil {
		h.respondJson(w, http.StatusOK, jobToAPI(job))
		return
	}

	jobs, err := h.store.ListJobs(r.Context(), tenant.ID, store.JobFilter{Limit: 1})
	if err != nil {
		h.httpError(w, "Failed to load jobs", http.StatusInternalServerError)
		return
	}
	if len(jobs) == 0 {
		h.httpError(w, "No sync job found", http.StatusNotFound)
		return
	}

	h.respondJson(w, http.StatusOK, jobToAPI(jobs[0]))
}
