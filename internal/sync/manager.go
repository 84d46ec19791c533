package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"catsync/internal/store"

	"github.com/google/uuid"
)

// runningJob couples a tracker with the handle of its background task.
type runningJob struct {
	tracker *tracker
	cancel  context.CancelFunc
	done    chan struct{}
}

// Manager owns the set of currently-running jobs and enforces the
// one-job-per-tenant invariant. The check-and-register happens under a single
// lock so concurrent starts cannot both pass the exclusion check.
type Manager struct {
	mu     sync.Mutex
	active map[uuid.UUID]*runningJob

	jobs    store.SyncJobStore
	tenants store.TenantStore
	orch    *Orchestrator
	logger  *slog.Logger
}

// NewManager creates a lifecycle manager.
func NewManager(jobs store.SyncJobStore, tenants store.TenantStore, orch *Orchestrator, logger *slog.Logger) *Manager {
	return &Manager{
		active:  make(map[uuid.UUID]*runningJob),
		jobs:    jobs,
		tenants: tenants,
		orch:    orch,
		logger:  logger,
	}
}

// StartJob triggers a full sync for the tenant. The caller receives the job
// descriptor immediately; execution continues in the background.
func (m *Manager) StartJob(ctx context.Context, tenantID uuid.UUID, opts store.SyncOptions) (*store.SyncJob, error) {
	return m.start(ctx, tenantID, opts, func(runCtx context.Context, tenant *store.Tenant, t *tracker) {
		m.orch.Run(runCtx, tenant, t)
	})
}

// StartProductImport triggers a manual bulk import of explicit product IDs,
// under the same one-job-per-tenant exclusion as a full sync.
func (m *Manager) StartProductImport(ctx context.Context, tenantID uuid.UUID, opts store.SyncOptions, productIDs []string) (*store.SyncJob, error) {
	return m.start(ctx, tenantID, opts, func(runCtx context.Context, tenant *store.Tenant, t *tracker) {
		m.orch.RunProductImport(runCtx, tenant, t, productIDs)
	})
}

func (m *Manager) start(ctx context.Context, tenantID uuid.UUID, opts store.SyncOptions, run func(context.Context, *store.Tenant, *tracker)) (*store.SyncJob, error) {
	tenant, err := m.tenants.GetTenantByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant %s: %w", tenantID, err)
	}

	m.mu.Lock()
	if rj, ok := m.active[tenantID]; ok && !rj.tracker.status().Terminal() {
		m.mu.Unlock()
		return nil, ErrAlreadyRunning
	}

	now := time.Now().UTC()
	job := &store.SyncJob{
		ID:        fmt.Sprintf("%s-%d", tenantID, now.UnixMilli()),
		TenantID:  tenantID,
		Status:    store.JobStatusInitializing,
		Options:   opts,
		StartedAt: now,
		UpdatedAt: now,
	}

	// The initial snapshot must land before the job is visible as running.
	if err := m.jobs.SaveJob(ctx, job); err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("failed to persist job %s: %w", job.ID, err)
	}

	// The run outlives the triggering request; it gets its own context.
	runCtx, cancel := context.WithCancel(context.Background())
	rj := &runningJob{
		tracker: newTracker(job, m.jobs, m.logger),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	m.active[tenantID] = rj
	m.mu.Unlock()

	go func() {
		defer close(rj.done)
		defer cancel()
		defer m.release(tenantID, rj)
		run(runCtx, tenant, rj.tracker)
	}()

	return rj.tracker.snapshot(), nil
}

// release removes the tenant's active-job entry; the persisted record remains.
// A successor job may already have replaced the entry (a new start is accepted
// as soon as the old tracker is terminal), so only the owning job's entry is
// removed.
func (m *Manager) release(tenantID uuid.UUID, rj *runningJob) {
	m.mu.Lock()
	if m.active[tenantID] == rj {
		delete(m.active, tenantID)
	}
	m.mu.Unlock()
}

// CancelJob requests cooperative cancellation of the tenant's running job.
// In-flight I/O is not interrupted; the orchestrator stops at its next
// checkpoint. Returns false when nothing was running.
func (m *Manager) CancelJob(ctx context.Context, tenantID uuid.UUID) bool {
	m.mu.Lock()
	rj, ok := m.active[tenantID]
	m.mu.Unlock()

	if !ok {
		return false
	}

	if rj.tracker.markCancelled(ctx) {
		m.logger.Info("sync job cancellation requested", "tenant_id", tenantID)
		return true
	}
	return false
}

// IsRunning reports whether the tenant has a job in a non-terminal state.
func (m *Manager) IsRunning(tenantID uuid.UUID) bool {
	m.mu.Lock()
	rj, ok := m.active[tenantID]
	m.mu.Unlock()

	if !ok {
		return false
	}

	status := rj.tracker.status()
	return status == store.JobStatusInitializing || status == store.JobStatusInProgress
}

// RunningCount reports how many jobs are currently registered.
func (m *Manager) RunningCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// GetStatus returns a snapshot of the tenant's active job, or nil.
func (m *Manager) GetStatus(tenantID uuid.UUID) *store.SyncJob {
	m.mu.Lock()
	rj, ok := m.active[tenantID]
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return rj.tracker.snapshot()
}

// Shutdown asks every running job to stop and waits for them to drain.
// Jobs still running when ctx expires are cut off via their run contexts.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	running := make([]*runningJob, 0, len(m.active))
	for _, rj := range m.active {
		running = append(running, rj)
	}
	m.mu.Unlock()

	for _, rj := range running {
		rj.tracker.markCancelled(ctx)
	}

	for _, rj := range running {
		select {
		case <-rj.done:
		case <-ctx.Done():
			// Out of patience; abort in-flight I/O.
			for _, r := range running {
				r.cancel()
			}
			return ctx.Err()
		}
	}

	return nil
}
