package sync

import (
	"context"
	"errors"
	"testing"

	"catsync/internal/catalog"
	"catsync/internal/store"
)

func newSchedulerFixture(t *testing.T) (*Scheduler, *managerFixture) {
	t.Helper()

	f := newManagerFixture(t)
	s := NewScheduler(f.manager, f.tenants, testLogger())
	return s, f
}

func TestValidateSchedule(t *testing.T) {
	valid := []string{
		"0 2 * * *",
		"*/15 * * * *",
		"0 0 2 * * *",
		"@hourly",
	}
	for _, expr := range valid {
		if err := ValidateSchedule(expr); err != nil {
			t.Errorf("expected %q to be valid, got %v", expr, err)
		}
	}

	invalid := []string{
		"",
		"not a schedule",
		"61 * * * *",
		"* * * *",
	}
	for _, expr := range invalid {
		err := ValidateSchedule(expr)
		if !errors.Is(err, ErrInvalidSchedule) {
			t.Errorf("expected ErrInvalidSchedule for %q, got %v", expr, err)
		}
	}
}

func TestRegisterRejectsInvalidExpression(t *testing.T) {
	s, f := newSchedulerFixture(t)
	f.tenant.ScheduleExpression = "every day at noon"

	if err := s.Register(f.tenant); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
	if len(s.entries) != 0 {
		t.Error("no entry must be installed for an invalid expression")
	}
}

func TestRegisterReplacesExistingEntry(t *testing.T) {
	s, f := newSchedulerFixture(t)
	f.tenant.ScheduleExpression = "0 2 * * *"

	if err := s.Register(f.tenant); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	first := s.entries[f.tenant.ID]

	f.tenant.ScheduleExpression = "0 4 * * *"
	if err := s.Register(f.tenant); err != nil {
		t.Fatalf("re-register failed: %v", err)
	}

	if len(s.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(s.entries))
	}
	if s.entries[f.tenant.ID] == first {
		t.Error("expected the entry to be replaced")
	}
}

func TestUnregisterRemovesEntry(t *testing.T) {
	s, f := newSchedulerFixture(t)
	f.tenant.ScheduleExpression = "@daily"

	if err := s.Register(f.tenant); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	s.Unregister(f.tenant.ID)

	if len(s.entries) != 0 {
		t.Error("expected entry to be removed")
	}
	// Unregistering again is a no-op.
	s.Unregister(f.tenant.ID)
}

func TestRescheduleDisabledTenantDropsTimer(t *testing.T) {
	s, f := newSchedulerFixture(t)
	f.tenant.ScheduleExpression = "@daily"
	f.tenant.SyncEnabled = true

	if err := s.Register(f.tenant); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	f.tenant.SyncEnabled = false
	if err := s.Reschedule(f.tenant); err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}
	if len(s.entries) != 0 {
		t.Error("expected timer to be dropped for a disabled tenant")
	}
}

func TestStartRegistersSyncEnabledTenants(t *testing.T) {
	s, f := newSchedulerFixture(t)
	f.tenant.SyncEnabled = true
	f.tenant.ScheduleExpression = "0 3 * * *"

	disabled := testTenant()
	disabled.SyncEnabled = false
	f.tenants.Tenants[disabled.ID] = disabled

	broken := testTenant()
	broken.SyncEnabled = true
	broken.ScheduleExpression = "garbage"
	f.tenants.Tenants[broken.ID] = broken

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	if len(s.entries) != 1 {
		t.Fatalf("expected only the valid enabled tenant registered, got %d", len(s.entries))
	}
	if _, ok := s.entries[f.tenant.ID]; !ok {
		t.Error("expected the sync-enabled tenant to be registered")
	}
}

func TestTickStartsJobWithStoredOptions(t *testing.T) {
	s, f := newSchedulerFixture(t)
	f.tenant.Options = store.SyncOptions{BrandID: "b1"}
	f.tenants.Tenants[f.tenant.ID] = f.tenant
	f.catalog.ListBrandsFunc = func(context.Context, *store.Tenant) ([]catalog.Brand, error) {
		return []catalog.Brand{{ID: "b1", Name: "Brand A"}}, nil
	}
	f.catalog.ListProductsFunc = pagedCatalog(map[string]int{"b1": 1})

	s.tick(f.tenant.ID)
	waitForIdle(t, f.manager, f.tenant.ID)

	if f.jobs.SaveCount() != 1 {
		t.Fatalf("expected 1 job started, got %d", f.jobs.SaveCount())
	}
	if got := f.jobs.Saved[0].Options.BrandID; got != "b1" {
		t.Errorf("expected stored options to be used, got brand %q", got)
	}
}

func TestTickSkipsWhileJobRunning(t *testing.T) {
	s, f := newSchedulerFixture(t)
	release := f.blockBrands()

	if _, err := f.manager.StartJob(context.Background(), f.tenant.ID, store.SyncOptions{}); err != nil {
		t.Fatalf("StartJob failed: %v", err)
	}

	s.tick(f.tenant.ID)

	if f.jobs.SaveCount() != 1 {
		t.Errorf("expected tick to be skipped, got %d jobs", f.jobs.SaveCount())
	}

	release()
	waitForIdle(t, f.manager, f.tenant.ID)
}
