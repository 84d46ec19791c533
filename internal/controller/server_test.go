package controller

import (
	"context"
	"testing"
	"time"

	"catsync/internal/store"

	"github.com/google/uuid"
)

// stubStore satisfies handlers.StoreFactory; the lifecycle test never
// reaches a route.
type stubStore struct{}

func (stubStore) Ping(context.Context) error { return nil }

func (stubStore) CreateTenant(context.Context, *store.Tenant) error { return nil }
func (stubStore) GetTenantByID(context.Context, uuid.UUID) (*store.Tenant, error) {
	return nil, nil
}
func (stubStore) GetTenantByAPIKeyHash(context.Context, string) (*store.Tenant, error) {
	return nil, nil
}
func (stubStore) SaveTenant(context.Context, *store.Tenant) error { return nil }
func (stubStore) ListTenantsWithSyncEnabled(context.Context) ([]*store.Tenant, error) {
	return nil, nil
}

func (stubStore) SaveJob(context.Context, *store.SyncJob) error   { return nil }
func (stubStore) UpdateJob(context.Context, *store.SyncJob) error { return nil }
func (stubStore) GetJobByID(context.Context, string) (*store.SyncJob, error) {
	return nil, nil
}
func (stubStore) ListJobs(context.Context, uuid.UUID, store.JobFilter) ([]*store.SyncJob, error) {
	return nil, nil
}

func (stubStore) GetMappingBySourceID(context.Context, uuid.UUID, string) (*store.ProductMapping, error) {
	return nil, nil
}
func (stubStore) UpsertMapping(context.Context, *store.ProductMapping) error { return nil }
func (stubStore) ListMappings(context.Context, uuid.UUID, store.MappingFilter) ([]*store.ProductMapping, error) {
	return nil, nil
}
func (stubStore) GetImportStatistics(context.Context, uuid.UUID) (*store.ImportStatistics, error) {
	return nil, nil
}

type stubManager struct{}

func (stubManager) StartJob(context.Context, uuid.UUID, store.SyncOptions) (*store.SyncJob, error) {
	return nil, nil
}
func (stubManager) StartProductImport(context.Context, uuid.UUID, store.SyncOptions, []string) (*store.SyncJob, error) {
	return nil, nil
}
func (stubManager) CancelJob(context.Context, uuid.UUID) bool { return false }
func (stubManager) GetStatus(uuid.UUID) *store.SyncJob        { return nil }

type stubSchedules struct{}

func (stubSchedules) Reschedule(*store.Tenant) error { return nil }

// Run must return once the context it was given is cancelled; the process
// shutdown path relies on this rather than a separate Shutdown call.
func TestRunStopsOnContextCancel(t *testing.T) {
	srv := New(Options{
		Addr:      "127.0.0.1:0",
		Store:     stubStore{},
		Manager:   stubManager{},
		Schedules: stubSchedules{},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	// Give the listener a moment to come up before tearing it down.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error after cancel: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
