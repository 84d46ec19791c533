package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"catsync/internal/store"

	"github.com/google/uuid"
)

// SaveJob inserts the initial snapshot of a new job.
func (s *Store) SaveJob(ctx context.Context, job *store.SyncJob) error {
	options, stats, syncErrs, err := marshalJobFields(job)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sync_jobs (id, tenant_id, status, options, stats, errors, current_brand, current_product, current_page, started_at, updated_at, completed_at, duration_ms, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = s.db.ExecContext(ctx, query,
		job.ID, job.TenantID, job.Status,
		options, stats, syncErrs,
		job.CurrentBrand, job.CurrentProduct, job.CurrentPage,
		job.StartedAt, job.UpdatedAt, job.CompletedAt, job.DurationMs, job.ErrorMessage,
	)
	return err
}

// UpdateJob overwrites the persisted snapshot of an existing job.
func (s *Store) UpdateJob(ctx context.Context, job *store.SyncJob) error {
	options, stats, syncErrs, err := marshalJobFields(job)
	if err != nil {
		return err
	}

	query := `
		UPDATE sync_jobs
		SET status = $2, options = $3, stats = $4, errors = $5,
		    current_brand = $6, current_product = $7, current_page = $8,
		    updated_at = $9, completed_at = $10, duration_ms = $11, error_message = $12
		WHERE id = $1
	`

	_, err = s.db.ExecContext(ctx, query,
		job.ID, job.Status,
		options, stats, syncErrs,
		job.CurrentBrand, job.CurrentProduct, job.CurrentPage,
		job.UpdatedAt, job.CompletedAt, job.DurationMs, job.ErrorMessage,
	)
	return err
}

func (s *Store) GetJobByID(ctx context.Context, id string) (*store.SyncJob, error) {
	query := "SELECT id, tenant_id, status, options, stats, errors, current_brand, current_product, current_page, started_at, updated_at, completed_at, duration_ms, error_message FROM sync_jobs WHERE id = $1"
	return scanJob(s.db.QueryRowContext(ctx, query, id))
}

// ListJobs returns a tenant's jobs, newest first.
func (s *Store) ListJobs(ctx context.Context, tenantID uuid.UUID, filter store.JobFilter) ([]*store.SyncJob, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	args := []interface{}{tenantID, limit, filter.Offset}
	statusClause := ""
	if filter.Status != "" {
		statusClause = " AND status = $4"
		args = append(args, filter.Status)
	}

	query := fmt.Sprintf(`
		SELECT id, tenant_id, status, options, stats, errors, current_brand, current_product, current_page, started_at, updated_at, completed_at, duration_ms, error_message
		FROM sync_jobs
		WHERE tenant_id = $1%s
		ORDER BY started_at DESC
		LIMIT $2 OFFSET $3
	`, statusClause)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*store.SyncJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

func marshalJobFields(job *store.SyncJob) (options, stats, syncErrs []byte, err error) {
	if options, err = json.Marshal(job.Options); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal job options: %w", err)
	}
	if stats, err = json.Marshal(job.Stats); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal job stats: %w", err)
	}
	errs := job.Errors
	if errs == nil {
		errs = []store.SyncError{}
	}
	if syncErrs, err = json.Marshal(errs); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal job errors: %w", err)
	}
	return options, stats, syncErrs, nil
}

func scanJob(row rowScanner) (*store.SyncJob, error) {
	var job store.SyncJob
	var options, stats, syncErrs []byte

	err := row.Scan(
		&job.ID, &job.TenantID, &job.Status,
		&options, &stats, &syncErrs,
		&job.CurrentBrand, &job.CurrentProduct, &job.CurrentPage,
		&job.StartedAt, &job.UpdatedAt, &job.CompletedAt, &job.DurationMs, &job.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}

	if len(options) > 0 {
		if err := json.Unmarshal(options, &job.Options); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job options: %w", err)
		}
	}
	if len(stats) > 0 {
		if err := json.Unmarshal(stats, &job.Stats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job stats: %w", err)
		}
	}
	if len(syncErrs) > 0 {
		if err := json.Unmarshal(syncErrs, &job.Errors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job errors: %w", err)
		}
	}

	return &job, nil
}
