package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catsync/internal/store"

	"github.com/google/uuid"
)

// GetMappingBySourceID returns the mapping for a source product,
// or (nil, nil) when no mapping exists.
func (s *Store) GetMappingBySourceID(ctx context.Context, tenantID uuid.UUID, sourceID string) (*store.ProductMapping, error) {
	query := "SELECT tenant_id, source_product_id, storefront_product_id, previous_storefront_id, status, metadata, error, created_at, updated_at FROM product_mappings WHERE tenant_id = $1 AND source_product_id = $2"

	m, err := scanMapping(s.db.QueryRowContext(ctx, query, tenantID, sourceID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// UpsertMapping creates or overwrites the mapping for the
// (tenant, source product) pair. History is not retained.
func (s *Store) UpsertMapping(ctx context.Context, mapping *store.ProductMapping) error {
	metadata := mapping.Metadata
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}

	query := `
		INSERT INTO product_mappings (tenant_id, source_product_id, storefront_product_id, previous_storefront_id, status, metadata, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (tenant_id, source_product_id) DO UPDATE SET
			storefront_product_id = EXCLUDED.storefront_product_id,
			previous_storefront_id = EXCLUDED.previous_storefront_id,
			status = EXCLUDED.status,
			metadata = EXCLUDED.metadata,
			error = EXCLUDED.error,
			updated_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query,
		mapping.TenantID,
		mapping.SourceProductID,
		mapping.StorefrontProductID,
		mapping.PreviousStorefrontID,
		mapping.Status,
		metadata,
		mapping.Error,
	)
	return err
}

// ListMappings returns a tenant's mappings, most recently updated first.
func (s *Store) ListMappings(ctx context.Context, tenantID uuid.UUID, filter store.MappingFilter) ([]*store.ProductMapping, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	args := []interface{}{tenantID, limit, filter.Offset}
	statusClause := ""
	if filter.Status != "" {
		statusClause = " AND status = $4"
		args = append(args, filter.Status)
	}

	query := fmt.Sprintf(`
		SELECT tenant_id, source_product_id, storefront_product_id, previous_storefront_id, status, metadata, error, created_at, updated_at
		FROM product_mappings
		WHERE tenant_id = $1%s
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`, statusClause)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []*store.ProductMapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}

	return mappings, rows.Err()
}

// GetImportStatistics returns mapping counts grouped by status.
func (s *Store) GetImportStatistics(ctx context.Context, tenantID uuid.UUID) (*store.ImportStatistics, error) {
	query := "SELECT status, COUNT(*) FROM product_mappings WHERE tenant_id = $1 GROUP BY status"

	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &store.ImportStatistics{ByStatus: make(map[store.MappingStatus]int)}
	for rows.Next() {
		var status store.MappingStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}

	return stats, rows.Err()
}

func scanMapping(row rowScanner) (*store.ProductMapping, error) {
	var m store.ProductMapping
	var metadata []byte

	err := row.Scan(
		&m.TenantID,
		&m.SourceProductID,
		&m.StorefrontProductID,
		&m.PreviousStorefrontID,
		&m.Status,
		&metadata,
		&m.Error,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.Metadata = metadata
	return &m, nil
}
