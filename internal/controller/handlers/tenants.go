package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"catsync/internal/auth"
	"catsync/internal/store"
	"catsync/internal/sync"
	"catsync/pkg/api"

	"github.com/google/uuid"
)

// CreateTenant handles POST /tenants (Admin Only).
// It generates a new API Key, hashes it for storage, and returns the raw key ONCE.
func (h *Handlers) CreateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		h.httpError(w, "Name is required", http.StatusBadRequest)
		return
	}
	if req.ScheduleExpression != "" {
		if err := sync.ValidateSchedule(req.ScheduleExpression); err != nil {
			h.httpError(w, "Invalid schedule expression", http.StatusBadRequest)
			return
		}
	}

	apiKey, err := auth.GenerateKey()
	if err != nil {
		h.httpError(w, "Entropy failure", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	tenant := &store.Tenant{
		ID:                 uuid.New(),
		Name:               req.Name,
		APIKeyHash:         auth.HashKey(apiKey),
		AccessToken:        req.AccessToken,
		SyncEnabled:        req.SyncEnabled,
		ScheduleExpression: req.ScheduleExpression,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := h.store.CreateTenant(ctx, tenant); err != nil {
		h.httpError(w, "Failed to create tenant", http.StatusInternalServerError)
		return
	}

	if tenant.SyncEnabled && tenant.ScheduleExpression != "" {
		if err := h.schedules.Reschedule(tenant); err != nil {
			h.httpError(w, "Failed to register schedule", http.StatusInternalServerError)
			return
		}
	}

	// Return the Raw Key (This is the only time the user sees it)
	resp := api.CreateTenantResponse{
		ID:     tenant.ID.String(),
		Name:   tenant.Name,
		ApiKey: apiKey,
	}
	h.respondJson(w, http.StatusCreated, resp)
}
