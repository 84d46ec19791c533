package sync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"catsync/internal/store"
)

// tracker owns the mutable state of one running job. Every meaningful change
// (status, current position, stat increments) writes a full snapshot to the
// job store so progress is visible in real time. Snapshot writes are
// best-effort: a failed write is logged and never aborts the job.
type tracker struct {
	mu     sync.Mutex
	job    *store.SyncJob
	jobs   store.SyncJobStore
	logger *slog.Logger
}

func newTracker(job *store.SyncJob, jobs store.SyncJobStore, logger *slog.Logger) *tracker {
	return &tracker{job: job, jobs: jobs, logger: logger}
}

// persist writes the current snapshot. Callers must hold t.mu.
func (t *tracker) persist(ctx context.Context) {
	t.job.UpdatedAt = time.Now().UTC()
	if err := t.jobs.UpdateJob(ctx, t.job); err != nil {
		t.logger.Warn("failed to persist job snapshot", "job_id", t.job.ID, "error", err)
	}
}

// snapshot returns a copy of the job safe to hand outside the tracker.
func (t *tracker) snapshot() *store.SyncJob {
	t.mu.Lock()
	defer t.mu.Unlock()

	job := *t.job
	job.Errors = append([]store.SyncError(nil), t.job.Errors...)
	return &job
}

func (t *tracker) status() store.SyncJobStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.job.Status
}

// cancelled is the cooperative checkpoint probe.
func (t *tracker) cancelled() bool {
	return t.status() == store.JobStatusCancelled
}

// begin moves an initializing job to in_progress. A cancel that landed before
// the run started is preserved.
func (t *tracker) begin(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.job.Status == store.JobStatusInitializing {
		t.job.Status = store.JobStatusInProgress
		t.persist(ctx)
	}
}

// markCancelled flips a non-terminal job to cancelled.
// Returns false when the job already reached a terminal state.
func (t *tracker) markCancelled(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.job.Status.Terminal() {
		return false
	}
	t.job.Status = store.JobStatusCancelled
	t.persist(ctx)
	return true
}

func (t *tracker) setCurrentBrand(ctx context.Context, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.job.CurrentBrand = name
	t.job.CurrentPage = 0
	t.job.CurrentProduct = ""
	t.persist(ctx)
}

func (t *tracker) setCurrentPage(ctx context.Context, page int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.job.CurrentPage = page
	t.persist(ctx)
}

func (t *tracker) setCurrentProduct(ctx context.Context, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.job.CurrentProduct = id
	t.persist(ctx)
}

func (t *tracker) setTotalBrands(ctx context.Context, n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.job.Stats.TotalBrands = n
	t.persist(ctx)
}

// addTotal accumulates the brand's reported or observed product count.
func (t *tracker) addTotal(ctx context.Context, n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.job.Stats.Total += n
	t.persist(ctx)
}

// recordAction counts one successfully reconciled product.
func (t *tracker) recordAction(ctx context.Context, action Action) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.job.Stats.Processed++
	switch action {
	case ActionImported:
		t.job.Stats.Imported++
	case ActionUpdated, ActionReimported:
		t.job.Stats.Updated++
	case ActionSkipped:
		t.job.Stats.Skipped++
	}
	t.persist(ctx)
}

// recordProductError counts one failed product; the job continues.
func (t *tracker) recordProductError(ctx context.Context, id, name string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.job.Stats.Processed++
	t.job.Stats.Failed++
	t.job.Errors = append(t.job.Errors, store.SyncError{
		Scope:     store.ErrorScopeProduct,
		ID:        id,
		Name:      name,
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
	})
	t.persist(ctx)
}

// recordBrandError counts one failed brand; the job continues with the next.
func (t *tracker) recordBrandError(ctx context.Context, id, name string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.job.Stats.FailedBrands++
	t.job.Errors = append(t.job.Errors, store.SyncError{
		Scope:     store.ErrorScopeBrand,
		ID:        id,
		Name:      name,
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
	})
	t.persist(ctx)
}

func (t *tracker) brandProcessed(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.job.Stats.ProcessedBrands++
	t.persist(ctx)
}

// finish records the terminal state. When the job was cancelled at a
// checkpoint the cancelled status wins over the requested one.
func (t *tracker) finish(ctx context.Context, status store.SyncJobStatus, errMsg *string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.job.Status != store.JobStatusCancelled {
		t.job.Status = status
		t.job.ErrorMessage = errMsg
	}

	now := time.Now().UTC()
	t.job.CompletedAt = &now
	t.job.DurationMs = now.Sub(t.job.StartedAt).Milliseconds()
	t.job.CurrentProduct = ""
	t.persist(ctx)
}
