package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetrics holds the instruments recorded during sync job execution.
type SyncMetrics struct {
	productsProcessed metric.Int64Counter
	jobsCompleted     metric.Int64Counter
	jobDuration       metric.Float64Histogram
}

// NewSyncMetrics registers the sync instruments on the global meter provider.
func NewSyncMetrics() (*SyncMetrics, error) {
	meter := otel.Meter("catsync-engine")

	productsProcessed, err := meter.Int64Counter("catsync.products.processed",
		metric.WithDescription("Products processed by reconciliation action"))
	if err != nil {
		return nil, fmt.Errorf("failed to create products counter: %w", err)
	}

	jobsCompleted, err := meter.Int64Counter("catsync.jobs.finished",
		metric.WithDescription("Sync jobs finished by terminal status"))
	if err != nil {
		return nil, fmt.Errorf("failed to create jobs counter: %w", err)
	}

	jobDuration, err := meter.Float64Histogram("catsync.job.duration_seconds",
		metric.WithDescription("Wall-clock duration of completed sync jobs"))
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &SyncMetrics{
		productsProcessed: productsProcessed,
		jobsCompleted:     jobsCompleted,
		jobDuration:       jobDuration,
	}, nil
}

// RecordProduct counts one reconciled product with its action outcome.
func (m *SyncMetrics) RecordProduct(ctx context.Context, action string) {
	if m == nil {
		return
	}
	m.productsProcessed.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}

// RecordJobFinished counts one terminal job and records its duration.
func (m *SyncMetrics) RecordJobFinished(ctx context.Context, status string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.jobsCompleted.Add(ctx, 1, attrs)
	m.jobDuration.Record(ctx, duration.Seconds(), attrs)
}
