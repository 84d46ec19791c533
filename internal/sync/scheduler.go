package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"catsync/internal/store"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// scheduleParser accepts both five-field and six-field (with seconds) cron
// expressions, plus descriptors like @hourly.
var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateSchedule checks a cron expression without registering anything.
func ValidateSchedule(expr string) error {
	if _, err := scheduleParser.Parse(expr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	return nil
}

// Scheduler maintains one recurring timer per sync-enabled tenant. Ticks that
// land while a job is still running are skipped outright, never queued.
type Scheduler struct {
	mu      sync.Mutex
	entries map[uuid.UUID]cron.EntryID

	cron    *cron.Cron
	manager *Manager
	tenants store.TenantStore
	logger  *slog.Logger
}

// NewScheduler creates a scheduler.
func NewScheduler(manager *Manager, tenants store.TenantStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		entries: make(map[uuid.UUID]cron.EntryID),
		cron:    cron.New(cron.WithParser(scheduleParser)),
		manager: manager,
		tenants: tenants,
		logger:  logger,
	}
}

// Start registers every sync-enabled tenant and begins ticking. Tenants with
// invalid expressions are logged and skipped; they never block the rest.
func (s *Scheduler) Start(ctx context.Context) error {
	tenants, err := s.tenants.ListTenantsWithSyncEnabled(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sync-enabled tenants: %w", err)
	}

	for _, tenant := range tenants {
		if err := s.Register(tenant); err != nil {
			s.logger.Error("failed to register sync schedule",
				"tenant_id", tenant.ID, "schedule", tenant.ScheduleExpression, "error", err)
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "registered", len(s.entries))
	return nil
}

// Stop halts the cron runner. Running jobs are unaffected.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Register installs (or replaces) the tenant's recurring timer.
func (s *Scheduler) Register(tenant *store.Tenant) error {
	if err := ValidateSchedule(tenant.ScheduleExpression); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.entries[tenant.ID]; ok {
		s.cron.Remove(entryID)
	}

	tenantID := tenant.ID
	entryID, err := s.cron.AddFunc(tenant.ScheduleExpression, func() {
		s.tick(tenantID)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	s.entries[tenantID] = entryID
	s.logger.Info("sync schedule registered", "tenant_id", tenantID, "schedule", tenant.ScheduleExpression)
	return nil
}

// Unregister removes the tenant's timer. A currently-running job is unaffected.
func (s *Scheduler) Unregister(tenantID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.entries[tenantID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, tenantID)
		s.logger.Info("sync schedule removed", "tenant_id", tenantID)
	}
}

// Reschedule applies changed settings: disabling sync drops the timer,
// anything else cancels and reinstalls it.
func (s *Scheduler) Reschedule(tenant *store.Tenant) error {
	if !tenant.SyncEnabled {
		s.Unregister(tenant.ID)
		return nil
	}
	return s.Register(tenant)
}

// tick fires one scheduled trigger.
func (s *Scheduler) tick(tenantID uuid.UUID) {
	ctx := context.Background()

	if s.manager.IsRunning(tenantID) {
		s.logger.Info("scheduled sync skipped, job already running", "tenant_id", tenantID)
		return
	}

	// Re-read the tenant so the tick uses the latest stored options.
	tenant, err := s.tenants.GetTenantByID(ctx, tenantID)
	if err != nil {
		s.logger.Error("scheduled sync aborted, tenant lookup failed", "tenant_id", tenantID, "error", err)
		return
	}

	job, err := s.manager.StartJob(ctx, tenantID, tenant.Options)
	if err != nil {
		// A job that slipped in between the check and the start is fine.
		s.logger.Warn("scheduled sync not started", "tenant_id", tenantID, "error", err)
		return
	}

	s.logger.Info("scheduled sync started", "tenant_id", tenantID, "job_id", job.ID)
}
