package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"catsync/internal/catalog"
	"catsync/internal/observability"
	"catsync/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPageSize        = 50
	defaultDetailBatchSize = 10
)

// OrchestratorConfig tunes the walk over the source catalog.
type OrchestratorConfig struct {
	// PageSize is the fixed product listing page size (default: 50).
	PageSize int
	// DetailBatchSize bounds concurrent detail lookups during bulk imports (default: 10).
	DetailBatchSize int
}

// Orchestrator drives one sync job to completion: it walks brands, paginates
// products, reconciles each one, and isolates per-item and per-brand failures
// so a single bad product never aborts the run.
type Orchestrator struct {
	catalog    CatalogClient
	reconciler *Reconciler
	tenants    store.TenantStore
	config     OrchestratorConfig
	metrics    *observability.SyncMetrics
	logger     *slog.Logger
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(cat CatalogClient, reconciler *Reconciler, tenants store.TenantStore, config OrchestratorConfig, metrics *observability.SyncMetrics, logger *slog.Logger) *Orchestrator {
	if config.PageSize <= 0 {
		config.PageSize = defaultPageSize
	}
	if config.DetailBatchSize <= 0 {
		config.DetailBatchSize = defaultDetailBatchSize
	}

	return &Orchestrator{
		catalog:    cat,
		reconciler: reconciler,
		tenants:    tenants,
		config:     config,
		metrics:    metrics,
		logger:     logger,
	}
}

// Run executes a full brand/product walk. It owns the job's terminal
// transition; the caller only deregisters the tenant afterwards.
func (o *Orchestrator) Run(ctx context.Context, tenant *store.Tenant, t *tracker) {
	job := t.snapshot()
	ctx, span := o.startSpan(ctx, "sync_job", tenant, job.ID)
	defer span.End()

	log := o.logger.With("tenant_id", tenant.ID, "job_id", job.ID)
	log.Info("sync job starting")

	t.begin(ctx)

	brands, err := o.resolveBrands(ctx, tenant, job.Options)
	if err != nil {
		log.Error("brand resolution failed", "error", err)
		o.fail(ctx, t, err)
		return
	}
	t.setTotalBrands(ctx, len(brands))

	for _, brand := range brands {
		if t.cancelled() {
			break
		}

		if err := o.syncBrand(ctx, tenant, t, brand, job.Options); err != nil {
			log.Warn("brand sync failed", "brand_id", brand.ID, "error", err)
			t.recordBrandError(ctx, brand.ID, brand.Name, err)
			continue
		}

		// A cancel that landed mid-brand stops here; the brand is not
		// counted as processed.
		if t.cancelled() {
			break
		}
		t.brandProcessed(ctx)
	}

	o.finishRun(ctx, tenant, t, log)
}

// RunProductImport executes a manual bulk import of explicit product IDs.
// Detail lookups are issued concurrently in bounded batches; reconciliation
// stays sequential in input order.
func (o *Orchestrator) RunProductImport(ctx context.Context, tenant *store.Tenant, t *tracker, productIDs []string) {
	job := t.snapshot()
	ctx, span := o.startSpan(ctx, "bulk_import", tenant, job.ID)
	defer span.End()

	log := o.logger.With("tenant_id", tenant.ID, "job_id", job.ID)
	log.Info("bulk import starting", "product_count", len(productIDs))

	t.begin(ctx)
	t.addTotal(ctx, len(productIDs))

	for start := 0; start < len(productIDs); start += o.config.DetailBatchSize {
		if t.cancelled() {
			break
		}

		end := start + o.config.DetailBatchSize
		if end > len(productIDs) {
			end = len(productIDs)
		}
		batch := productIDs[start:end]

		details := o.fetchDetailBatch(ctx, tenant, batch)

		for i, id := range batch {
			if t.cancelled() {
				break
			}
			t.setCurrentProduct(ctx, id)

			if details[i].err != nil {
				t.recordProductError(ctx, id, "", details[i].err)
				continue
			}

			decision, err := o.reconciler.Decide(ctx, tenant, details[i].product, job.Options)
			if err != nil {
				t.recordProductError(ctx, id, details[i].product.Name, err)
				continue
			}
			t.recordAction(ctx, decision.Action)
			o.metrics.RecordProduct(ctx, string(decision.Action))
		}
	}

	o.finishRun(ctx, tenant, t, log)
}

type detailResult struct {
	product *catalog.Product
	err     error
}

// fetchDetailBatch looks up product details concurrently and waits for the
// whole batch before returning. Results line up with the input slice.
func (o *Orchestrator) fetchDetailBatch(ctx context.Context, tenant *store.Tenant, ids []string) []detailResult {
	results := make([]detailResult, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			p, err := o.catalog.GetProductDetail(ctx, tenant, id)
			results[i] = detailResult{product: p, err: err}
		}(i, id)
	}
	wg.Wait()

	return results
}

// resolveBrands narrows the full brand list to the job's target set.
func (o *Orchestrator) resolveBrands(ctx context.Context, tenant *store.Tenant, opts store.SyncOptions) ([]catalog.Brand, error) {
	brands, err := o.catalog.ListBrands(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}

	switch {
	case opts.BrandID != "":
		for _, b := range brands {
			if b.ID == opts.BrandID {
				return []catalog.Brand{b}, nil
			}
		}
		return nil, ErrNoBrandsToSync

	case len(opts.BrandIDs) > 0:
		wanted := make(map[string]bool, len(opts.BrandIDs))
		for _, id := range opts.BrandIDs {
			wanted[id] = true
		}
		var filtered []catalog.Brand
		for _, b := range brands {
			if wanted[b.ID] {
				filtered = append(filtered, b)
			}
		}
		if len(filtered) == 0 {
			return nil, ErrNoBrandsToSync
		}
		return filtered, nil
	}

	if len(brands) == 0 {
		return nil, ErrNoBrandsToSync
	}
	return brands, nil
}

// syncBrand paginates one brand's products and reconciles each. A returned
// error fails the brand, not the job.
func (o *Orchestrator) syncBrand(ctx context.Context, tenant *store.Tenant, t *tracker, brand catalog.Brand, opts store.SyncOptions) error {
	t.setCurrentBrand(ctx, brand.Name)

	page := 1
	for {
		t.setCurrentPage(ctx, page)

		result, err := o.catalog.ListProductsByBrand(ctx, tenant, brand.ID, page, o.config.PageSize, catalog.ProductFilter{})
		if err != nil {
			return fmt.Errorf("failed to list products for brand %s (page %d): %w", brand.ID, page, err)
		}

		// A reported total counts once; without one, count what each
		// page actually returned so Processed never exceeds Total.
		if result.TotalCount > 0 {
			if page == 1 {
				t.addTotal(ctx, result.TotalCount)
			}
		} else {
			t.addTotal(ctx, len(result.Products))
		}

		for _, summary := range result.Products {
			if t.cancelled() {
				return nil
			}
			o.syncProduct(ctx, tenant, t, summary, opts)
		}

		// Explicit pagination metadata wins; without it a short page
		// ends the walk. An empty page always does.
		if len(result.Products) == 0 {
			return nil
		}
		if result.TotalCount > 0 {
			if !result.HasMore {
				return nil
			}
		} else if len(result.Products) < o.config.PageSize {
			return nil
		}
		page++
	}
}

// syncProduct reconciles one product; failures are recorded and swallowed.
func (o *Orchestrator) syncProduct(ctx context.Context, tenant *store.Tenant, t *tracker, summary catalog.ProductSummary, opts store.SyncOptions) {
	t.setCurrentProduct(ctx, summary.ID)

	detail, err := o.catalog.GetProductDetail(ctx, tenant, summary.ID)
	if err != nil {
		t.recordProductError(ctx, summary.ID, summary.Name, err)
		return
	}

	decision, err := o.reconciler.Decide(ctx, tenant, detail, opts)
	if err != nil {
		t.recordProductError(ctx, summary.ID, summary.Name, err)
		return
	}

	t.recordAction(ctx, decision.Action)
	o.metrics.RecordProduct(ctx, string(decision.Action))
}

// fail records a fatal job error (outside per-brand/per-product isolation).
func (o *Orchestrator) fail(ctx context.Context, t *tracker, err error) {
	msg := err.Error()
	t.finish(ctx, store.JobStatusError, &msg)

	job := t.snapshot()
	o.metrics.RecordJobFinished(ctx, string(job.Status), time.Duration(job.DurationMs)*time.Millisecond)
}

// finishRun records the terminal state for a run that did not fail fatally.
func (o *Orchestrator) finishRun(ctx context.Context, tenant *store.Tenant, t *tracker, log *slog.Logger) {
	t.finish(ctx, store.JobStatusCompleted, nil)

	job := t.snapshot()
	o.metrics.RecordJobFinished(ctx, string(job.Status), time.Duration(job.DurationMs)*time.Millisecond)

	if job.Status == store.JobStatusCompleted {
		now := time.Now().UTC()
		tenant.LastSyncAt = &now
		if err := o.tenants.SaveTenant(ctx, tenant); err != nil {
			log.Warn("failed to record last sync time", "error", err)
		}
	}

	log.Info("sync job finished",
		"status", job.Status,
		"processed", job.Stats.Processed,
		"imported", job.Stats.Imported,
		"updated", job.Stats.Updated,
		"skipped", job.Stats.Skipped,
		"failed", job.Stats.Failed,
		"duration_ms", job.DurationMs)
}

func (o *Orchestrator) startSpan(ctx context.Context, name string, tenant *store.Tenant, jobID string) (context.Context, trace.Span) {
	tracer := otel.Tracer("sync-orchestrator")
	return tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.String("tenant.id", tenant.ID.String()),
			attribute.String("job.id", jobID),
		),
	)
}
