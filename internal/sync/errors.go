// Package sync contains the catalog synchronization engine: the reconciler,
// the orchestrator that walks brands and products, the job lifecycle manager
// and the per-tenant cron scheduler.
package sync

import "errors"

var (
	// ErrAlreadyRunning is returned when a job start is rejected because a
	// non-terminal job already exists for the tenant.
	ErrAlreadyRunning = errors.New("a sync job is already running for this tenant")

	// ErrNoBrandsToSync fails a job whose resolved brand set is empty.
	ErrNoBrandsToSync = errors.New("no brands to sync")

	// ErrInvalidSchedule is returned when a cron expression cannot be parsed.
	ErrInvalidSchedule = errors.New("invalid schedule expression")
)
