package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"catsync/internal/catalog"
	"catsync/internal/store"
	"catsync/internal/storefront"
)

// Action is the outcome of one reconciliation decision.
type Action string

const (
	ActionImported   Action = "imported"
	ActionUpdated    Action = "updated"
	ActionReimported Action = "reimported"
	ActionSkipped    Action = "skipped"
)

// Decision describes what the reconciler did for one source product.
type Decision struct {
	Action       Action
	SourceID     string
	StorefrontID string
}

// Reconciler decides whether a source product is new, already mapped, or
// orphaned relative to the storefront, and performs the matching write.
type Reconciler struct {
	mappings   store.ProductMappingStore
	storefront StorefrontClient
	formatter  storefront.Formatter
	logger     *slog.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(mappings store.ProductMappingStore, sf StorefrontClient, formatter storefront.Formatter, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		mappings:   mappings,
		storefront: sf,
		formatter:  formatter,
		logger:     logger,
	}
}

// Decide reconciles one source product against the tenant's storefront.
// On any I/O failure the mapping is overwritten with status error and the
// failure propagates to the caller for per-item isolation.
func (r *Reconciler) Decide(ctx context.Context, tenant *store.Tenant, product *catalog.Product, opts store.SyncOptions) (*Decision, error) {
	mapping, err := r.mappings.GetMappingBySourceID(ctx, tenant.ID, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping for product %s: %w", product.ID, err)
	}

	// Never imported, or a previous attempt failed before the storefront
	// record was created.
	if mapping == nil || mapping.StorefrontProductID == nil {
		return r.importProduct(ctx, tenant, product, opts)
	}

	// Short-circuit with no I/O at all.
	if opts.SkipExisting {
		return &Decision{Action: ActionSkipped, SourceID: product.ID, StorefrontID: *mapping.StorefrontProductID}, nil
	}

	existing, err := r.storefront.GetProduct(ctx, tenant, *mapping.StorefrontProductID)
	if errors.Is(err, storefront.ErrNotFound) {
		// Deleted externally; re-create and remember the vanished ID.
		return r.reimportProduct(ctx, tenant, product, *mapping.StorefrontProductID, opts)
	}
	if err != nil {
		r.recordError(ctx, tenant, product, mapping.StorefrontProductID, err)
		return nil, fmt.Errorf("failed to fetch storefront product %s: %w", *mapping.StorefrontProductID, err)
	}

	input := r.formatter.Format(tenant, product, opts)
	updated, err := r.storefront.UpdateProduct(ctx, tenant, existing.ID, input)
	if err != nil {
		r.recordError(ctx, tenant, product, mapping.StorefrontProductID, err)
		return nil, fmt.Errorf("failed to update storefront product %s: %w", existing.ID, err)
	}

	if err := r.upsert(ctx, tenant, product, &store.ProductMapping{
		StorefrontProductID: &updated.ID,
		Status:              store.MappingStatusUpdated,
	}); err != nil {
		return nil, err
	}

	return &Decision{Action: ActionUpdated, SourceID: product.ID, StorefrontID: updated.ID}, nil
}

func (r *Reconciler) importProduct(ctx context.Context, tenant *store.Tenant, product *catalog.Product, opts store.SyncOptions) (*Decision, error) {
	input := r.formatter.Format(tenant, product, opts)

	created, err := r.storefront.CreateProduct(ctx, tenant, input)
	if err != nil {
		r.recordError(ctx, tenant, product, nil, err)
		return nil, fmt.Errorf("failed to create storefront product for %s: %w", product.ID, err)
	}

	if err := r.upsert(ctx, tenant, product, &store.ProductMapping{
		StorefrontProductID: &created.ID,
		Status:              store.MappingStatusImported,
	}); err != nil {
		return nil, err
	}

	return &Decision{Action: ActionImported, SourceID: product.ID, StorefrontID: created.ID}, nil
}

func (r *Reconciler) reimportProduct(ctx context.Context, tenant *store.Tenant, product *catalog.Product, previousID string, opts store.SyncOptions) (*Decision, error) {
	input := r.formatter.Format(tenant, product, opts)

	created, err := r.storefront.CreateProduct(ctx, tenant, input)
	if err != nil {
		r.recordError(ctx, tenant, product, &previousID, err)
		return nil, fmt.Errorf("failed to re-create storefront product for %s: %w", product.ID, err)
	}

	if err := r.upsert(ctx, tenant, product, &store.ProductMapping{
		StorefrontProductID:  &created.ID,
		PreviousStorefrontID: &previousID,
		Status:               store.MappingStatusReimported,
	}); err != nil {
		return nil, err
	}

	return &Decision{Action: ActionReimported, SourceID: product.ID, StorefrontID: created.ID}, nil
}

// upsert completes the mapping record and writes it.
func (r *Reconciler) upsert(ctx context.Context, tenant *store.Tenant, product *catalog.Product, mapping *store.ProductMapping) error {
	mapping.TenantID = tenant.ID
	mapping.SourceProductID = product.ID
	mapping.Metadata = mappingMetadata(product)

	if err := r.mappings.UpsertMapping(ctx, mapping); err != nil {
		return fmt.Errorf("failed to upsert mapping for product %s: %w", product.ID, err)
	}
	return nil
}

// recordError overwrites the mapping with the failure. Best-effort: the
// original error is what propagates, not a mapping write failure.
func (r *Reconciler) recordError(ctx context.Context, tenant *store.Tenant, product *catalog.Product, storefrontID *string, cause error) {
	msg := cause.Error()
	mapping := &store.ProductMapping{
		TenantID:            tenant.ID,
		SourceProductID:     product.ID,
		StorefrontProductID: storefrontID,
		Status:              store.MappingStatusError,
		Metadata:            mappingMetadata(product),
		Error:               &msg,
	}

	if err := r.mappings.UpsertMapping(ctx, mapping); err != nil {
		r.logger.Warn("failed to record mapping error",
			"tenant_id", tenant.ID, "product_id", product.ID, "error", err)
	}
}

func mappingMetadata(product *catalog.Product) json.RawMessage {
	meta, err := json.Marshal(map[string]string{
		"name":     product.Name,
		"sku":      product.SKU,
		"brand_id": product.BrandID,
	})
	if err != nil {
		return nil
	}
	return meta
}
