package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"catsync/internal/auth"
	"catsync/internal/store"

	"github.com/google/uuid"
)

// mockTenantStore implements store.TenantStore for testing
type mockTenantStore struct {
	tenant *store.Tenant
	err    error

	lastHash string
}

func (m *mockTenantStore) CreateTenant(ctx context.Context, tenant *store.Tenant) error {
	return nil
}

func (m *mockTenantStore) GetTenantByID(ctx context.Context, id uuid.UUID) (*store.Tenant, error) {
	return m.tenant, m.err
}

func (m *mockTenantStore) GetTenantByAPIKeyHash(ctx context.Context, hash string) (*store.Tenant, error) {
	m.lastHash = hash
	return m.tenant, m.err
}

func (m *mockTenantStore) SaveTenant(ctx context.Context, tenant *store.Tenant) error {
	return nil
}

func (m *mockTenantStore) ListTenantsWithSyncEnabled(ctx context.Context) ([]*store.Tenant, error) {
	return nil, nil
}

func TestAuthMiddleware_MissingAuthHeader(t *testing.T) {
	mockStore := &mockTenantStore{}
	middleware := AuthMiddleware(mockStore)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_InvalidAuthHeaderFormat(t *testing.T) {
	mockStore := &mockTenantStore{}
	middleware := AuthMiddleware(mockStore)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "api-key-123"},
		{"wrong scheme", "Basic abc123"},
		{"too many parts", "Bearer abc 123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tt.header)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("got status %d, want %d", rr.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestAuthMiddleware_StoreError(t *testing.T) {
	mockStore := &mockTenantStore{err: errors.New("db down")}
	middleware := AuthMiddleware(mockStore)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer cs_key123")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_ValidAuth(t *testing.T) {
	tenant := &store.Tenant{ID: uuid.New(), Name: "acme"}
	mockStore := &mockTenantStore{tenant: tenant}
	middleware := AuthMiddleware(mockStore)

	var gotTenant *store.Tenant
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant, _ = TenantFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer cs_key123")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}
	if gotTenant == nil || gotTenant.ID != tenant.ID {
		t.Error("expected the tenant on the request context")
	}
	// The raw key is never sent to the store.
	if mockStore.lastHash != auth.HashKey("cs_key123") {
		t.Errorf("expected hashed key lookup, got %q", mockStore.lastHash)
	}
}

func TestTenantFromContext_Empty(t *testing.T) {
	if _, ok := TenantFromContext(context.Background()); ok {
		t.Error("expected no tenant on an empty context")
	}
}
