package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"catsync/internal/store"

	"github.com/google/uuid"
)

func (s *Store) CreateTenant(ctx context.Context, tenant *store.Tenant) error {
	options, err := json.Marshal(tenant.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal sync options: %w", err)
	}

	query := `
		INSERT INTO tenants (id, name, api_key_hash, access_token, sync_enabled, schedule_expression, sync_options, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`

	_, err = s.db.ExecContext(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.APIKeyHash,
		tenant.AccessToken,
		tenant.SyncEnabled,
		tenant.ScheduleExpression,
		options,
		tenant.CreatedAt,
	)
	return err
}

func (s *Store) GetTenantByID(ctx context.Context, id uuid.UUID) (*store.Tenant, error) {
	query := "SELECT id, name, api_key_hash, access_token, sync_enabled, schedule_expression, sync_options, last_sync_at, created_at, updated_at FROM tenants WHERE id = $1"
	return s.scanTenant(s.db.QueryRowContext(ctx, query, id))
}

func (s *Store) GetTenantByAPIKeyHash(ctx context.Context, hash string) (*store.Tenant, error) {
	query := "SELECT id, name, api_key_hash, access_token, sync_enabled, schedule_expression, sync_options, last_sync_at, created_at, updated_at FROM tenants WHERE api_key_hash = $1"
	return s.scanTenant(s.db.QueryRowContext(ctx, query, hash))
}

// SaveTenant persists the mutable tenant fields (settings and LastSyncAt).
func (s *Store) SaveTenant(ctx context.Context, tenant *store.Tenant) error {
	options, err := json.Marshal(tenant.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal sync options: %w", err)
	}

	query := `
		UPDATE tenants
		SET name = $2, access_token = $3, sync_enabled = $4, schedule_expression = $5,
		    sync_options = $6, last_sync_at = $7, updated_at = NOW()
		WHERE id = $1
	`

	_, err = s.db.ExecContext(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.AccessToken,
		tenant.SyncEnabled,
		tenant.ScheduleExpression,
		options,
		tenant.LastSyncAt,
	)
	return err
}

func (s *Store) ListTenantsWithSyncEnabled(ctx context.Context) ([]*store.Tenant, error) {
	query := "SELECT id, name, api_key_hash, access_token, sync_enabled, schedule_expression, sync_options, last_sync_at, created_at, updated_at FROM tenants WHERE sync_enabled = TRUE ORDER BY created_at ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*store.Tenant
	for rows.Next() {
		t, err := s.scanTenantRow(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}

	return tenants, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *Store) scanTenant(row rowScanner) (*store.Tenant, error) {
	return s.scanTenantRow(row)
}

func (s *Store) scanTenantRow(row rowScanner) (*store.Tenant, error) {
	var t store.Tenant
	var options []byte

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.APIKeyHash,
		&t.AccessToken,
		&t.SyncEnabled,
		&t.ScheduleExpression,
		&options,
		&t.LastSyncAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(options) > 0 {
		if err := json.Unmarshal(options, &t.Options); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sync options: %w", err)
		}
	}

	return &t, nil
}
