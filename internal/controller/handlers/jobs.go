package handlers

import (
	"net/http"

	"catsync/internal/controller/middleware"
	"catsync/internal/store"
	"catsync/pkg/api"
)

// ListJobs handles GET /sync/jobs.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	tenant, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	status, limit, offset := parseListQuery(r)
	jobs, err := h.store.ListJobs(r.Context(), tenant.ID, store.JobFilter{
		Status: store.SyncJobStatus(status),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.httpError(w, "Failed to load jobs", http.StatusInternalServerError)
		return
	}

	resp := api.ListJobsResponse{Jobs: make([]api.JobResponse, 0, len(jobs))}
	for _, job := range jobs {
		resp.Jobs = append(resp.Jobs, jobToAPI(job))
	}
	h.respondJson(w, http.StatusOK, resp)
}

// GetJob handles GET /sync/jobs/{id}.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	tenant, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	job, err := h.store.GetJobByID(r.Context(), r.PathValue("id"))
	if err != nil || job == nil || job.TenantID != tenant.ID {
		h.httpError(w, "Job not found", http.StatusNotFound)
		return
	}

	h.respondJson(w, http.StatusOK, jobToAPI(job))
}
