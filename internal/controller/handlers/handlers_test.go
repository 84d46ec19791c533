package handlers

import (
	"context"
	"errors"
	"time"

	"catsync/internal/store"

	"github.com/google/uuid"
)

// mockStoreFactory implements StoreFactory with overridable behavior per test.
type mockStoreFactory struct {
	PingErr error

	CreateTenantFunc func(ctx context.Context, tenant *store.Tenant) error
	SaveTenantFunc   func(ctx context.Context, tenant *store.Tenant) error
	GetJobByIDFunc   func(ctx context.Context, id string) (*store.SyncJob, error)
	ListJobsFunc     func(ctx context.Context, tenantID uuid.UUID, filter store.JobFilter) ([]*store.SyncJob, error)
	ListMappingsFunc func(ctx context.Context, tenantID uuid.UUID, filter store.MappingFilter) ([]*store.ProductMapping, error)
	GetStatsFunc     func(ctx context.Context, tenantID uuid.UUID) (*store.ImportStatistics, error)

	CreatedTenants []*store.Tenant
	SavedTenants   []*store.Tenant
}

func (m *mockStoreFactory) Ping(ctx context.Context) error { return m.PingErr }

func (m *mockStoreFactory) CreateTenant(ctx context.Context, tenant *store.Tenant) error {
	if m.CreateTenantFunc != nil {
		return m.CreateTenantFunc(ctx, tenant)
	}
	m.CreatedTenants = append(m.CreatedTenants, tenant)
	return nil
}

func (m *mockStoreFactory) GetTenantByID(ctx context.Context, id uuid.UUID) (*store.Tenant, error) {
	return nil, errors.New("tenant not found")
}

func (m *mockStoreFactory) GetTenantByAPIKeyHash(ctx context.Context, hash string) (*store.Tenant, error) {
	return nil, errors.New("tenant not found")
}

func (m *mockStoreFactory) SaveTenant(ctx context.Context, tenant *store.Tenant) error {
	if m.SaveTenantFunc != nil {
		return m.SaveTenantFunc(ctx, tenant)
	}
	m.SavedTenants = append(m.SavedTenants, tenant)
	return nil
}

func (m *mockStoreFactory) ListTenantsWithSyncEnabled(ctx context.Context) ([]*store.Tenant, error) {
	return nil, nil
}

func (m *mockStoreFactory) SaveJob(ctx context.Context, job *store.SyncJob) error   { return nil }
func (m *mockStoreFactory) UpdateJob(ctx context.Context, job *store.SyncJob) error { return nil }

func (m *mockStoreFactory) GetJobByID(ctx context.Context, id string) (*store.SyncJob, error) {
	if m.GetJobByIDFunc != nil {
		return m.GetJobByIDFunc(ctx, id)
	}
	return nil, errors.New("job not found")
}

func (m *mockStoreFactory) ListJobs(ctx context.Context, tenantID uuid.UUID, filter store.JobFilter) ([]*store.SyncJob, error) {
	if m.ListJobsFunc != nil {
		return m.ListJobsFunc(ctx, tenantID, filter)
	}
	return nil, nil
}

func (m *mockStoreFactory) GetMappingBySourceID(ctx context.Context, tenantID uuid.UUID, sourceID string) (*store.ProductMapping, error) {
	return nil, nil
}

func (m *mockStoreFactory) UpsertMapping(ctx context.Context, mapping *store.ProductMapping) error {
	return nil
}

func (m *mockStoreFactory) ListMappings(ctx context.Context, tenantID uuid.UUID, filter store.MappingFilter) ([]*store.ProductMapping, error) {
	if m.ListMappingsFunc != nil {
		return m.ListMappingsFunc(ctx, tenantID, filter)
	}
	return nil, nil
}

func (m *mockStoreFactory) GetImportStatistics(ctx context.Context, tenantID uuid.UUID) (*store.ImportStatistics, error) {
	if m.GetStatsFunc != nil {
		return m.GetStatsFunc(ctx, tenantID)
	}
	return &store.ImportStatistics{}, nil
}

// mockManager implements SyncManager for testing.
type mockManager struct {
	StartJobFunc     func(ctx context.Context, tenantID uuid.UUID, opts store.SyncOptions) (*store.SyncJob, error)
	StartImportFunc  func(ctx context.Context, tenantID uuid.UUID, opts store.SyncOptions, productIDs []string) (*store.SyncJob, error)
	CancelJobResult  bool
	GetStatusResult  *store.SyncJob
	CancelledTenants []uuid.UUID
}

func (m *mockManager) StartJob(ctx context.Context, tenantID uuid.UUID, opts store.SyncOptions) (*store.SyncJob, error) {
	if m.StartJobFunc != nil {
		return m.StartJobFunc(ctx, tenantID, opts)
	}
	return newJob(tenantID), nil
}

func (m *mockManager) StartProductImport(ctx context.Context, tenantID uuid.UUID, opts store.SyncOptions, productIDs []string) (*store.SyncJob, error) {
	if m.StartImportFunc != nil {
		return m.StartImportFunc(ctx, tenantID, opts, productIDs)
	}
	return newJob(tenantID), nil
}

func (m *mockManager) CancelJob(ctx context.Context, tenantID uuid.UUID) bool {
	m.CancelledTenants = append(m.CancelledTenants, tenantID)
	return m.CancelJobResult
}

func (m *mockManager) GetStatus(tenantID uuid.UUID) *store.SyncJob {
	return m.GetStatusResult
}

// mockSchedules implements ScheduleRegistry for testing.
type mockSchedules struct {
	RescheduleErr error
	Rescheduled   []*store.Tenant
}

func (m *mockSchedules) Reschedule(tenant *store.Tenant) error {
	if m.RescheduleErr != nil {
		return m.RescheduleErr
	}
	m.Rescheduled = append(m.Rescheduled, tenant)
	return nil
}

func newJob(tenantID uuid.UUID) *store.SyncJob {
	now := time.Now().UTC()
	return &store.SyncJob{
		ID:        tenantID.String() + "-1",
		TenantID:  tenantID,
		Status:    store.JobStatusInitializing,
		StartedAt: now,
		UpdatedAt: now,
	}
}

type fixture struct {
	store     *mockStoreFactory
	manager   *mockManager
	schedules *mockSchedules
	handlers  *Handlers
}

func newFixture() *fixture {
	f := &fixture{
		store:     &mockStoreFactory{},
		manager:   &mockManager{},
		schedules: &mockSchedules{},
	}
	f.handlers = New(f.store, f.manager, f.schedules)
	return f
}
