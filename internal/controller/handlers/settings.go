package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"catsync/internal/controller/middleware"
	"catsync/internal/store"
	"catsync/internal/sync"
	"catsync/pkg/api"
)

// GetSettings handles GET /sync/settings.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	tenant, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	h.respondJson(w, http.StatusOK, settingsToAPI(tenant))
}

// UpdateSettings handles PUT /sync/settings.
// A schedule change is validated, persisted and applied to the running
// scheduler in one go.
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	tenant, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.ScheduleExpression != nil {
		if err := sync.ValidateSchedule(*req.ScheduleExpression); err != nil {
			h.httpError(w, "Invalid schedule expression", http.StatusBadRequest)
			return
		}
		tenant.ScheduleExpression = *req.ScheduleExpression
	}
	if req.SyncEnabled != nil {
		tenant.SyncEnabled = *req.SyncEnabled
	}
	if req.Options != nil {
		tenant.Options = syncOptionsFromAPI(*req.Options)
	}
	if tenant.SyncEnabled && tenant.ScheduleExpression == "" {
		h.httpError(w, "A schedule expression is required to enable sync", http.StatusBadRequest)
		return
	}
	tenant.UpdatedAt = time.Now().UTC()

	if err := h.store.SaveTenant(r.Context(), tenant); err != nil {
		h.httpError(w, "Failed to save settings", http.StatusInternalServerError)
		return
	}

	if err := h.schedules.Reschedule(tenant); err != nil {
		if errors.Is(err, sync.ErrInvalidSchedule) {
			h.httpError(w, "Invalid schedule expression", http.StatusBadRequest)
			return
		}
		h.httpError(w, "Failed to apply schedule", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusOK, settingsToAPI(tenant))
}

func settingsToAPI(tenant *store.Tenant) api.SettingsResponse {
	return api.SettingsResponse{
		SyncEnabled:        tenant.SyncEnabled,
		ScheduleExpression: tenant.ScheduleExpression,
		Options:            syncOptionsToAPI(tenant.Options),
		LastSyncAt:         tenant.LastSyncAt,
	}
}
