// Package middleware contains HTTP middleware for the controller.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"catsync/internal/auth"
	"catsync/internal/store"
)

// tenantKey is the context key for the authenticated tenant.
type tenantKey struct{}

// AuthMiddleware resolves the Bearer API key to a tenant and puts the tenant
// on the request context. Every operation behind it is scoped by that tenant.
func AuthMiddleware(tenants store.TenantStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}

			tenant, err := tenants.GetTenantByAPIKeyHash(r.Context(), auth.HashKey(parts[1]))
			if err != nil || tenant == nil {
				http.Error(w, "Invalid API key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), tenant)))
		})
	}
}

// WithTenant returns a context carrying the authenticated tenant.
func WithTenant(ctx context.Context, tenant *store.Tenant) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenant)
}

// TenantFromContext extracts the authenticated tenant from the context.
func TenantFromContext(ctx context.Context) (*store.Tenant, bool) {
	tenant, ok := ctx.Value(tenantKey{}).(*store.Tenant)
	return tenant, ok
}
