package handlers

import (
	"net/http"

	"catsync/internal/controller/middleware"
	"catsync/internal/store"
	"catsync/pkg/api"
)

// ListMappings handles GET /mappings.
func (h *Handlers) ListMappings(w http.ResponseWriter, r *http.Request) {
	tenant, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	status, limit, offset := parseListQuery(r)
	mappings, err := h.store.ListMappings(r.Context(), tenant.ID, store.MappingFilter{
		Status: store.MappingStatus(status),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.httpError(w, "Failed to load mappings", http.StatusInternalServerError)
		return
	}

	resp := api.ListMappingsResponse{Mappings: make([]api.MappingResponse, 0, len(mappings))}
	for _, m := range mappings {
		resp.Mappings = append(resp.Mappings, api.MappingResponse{
			SourceProductID:      m.SourceProductID,
			StorefrontProductID:  m.StorefrontProductID,
			PreviousStorefrontID: m.PreviousStorefrontID,
			Status:               string(m.Status),
			Metadata:             m.Metadata,
			Error:                m.Error,
			CreatedAt:            m.CreatedAt,
			UpdatedAt:            m.UpdatedAt,
		})
	}
	h.respondJson(w, http.StatusOK, resp)
}

// GetMappingStats handles GET /mappings/stats.
func (h *Handlers) GetMappingStats(w http.ResponseWriter, r *http.Request) {
	tenant, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	stats, err := h.store.GetImportStatistics(r.Context(), tenant.ID)
	if err != nil {
		h.httpError(w, "Failed to load statistics", http.StatusInternalServerError)
		return
	}

	resp := api.ImportStatisticsResponse{
		Total:    stats.Total,
		ByStatus: make(map[string]int, len(stats.ByStatus)),
	}
	for status, count := range stats.ByStatus {
		resp.ByStatus[string(status)] = count
	}
	h.respondJson(w, http.StatusOK, resp)
}
