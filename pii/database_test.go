package pii

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hannes/pii-extract/config"
)

func TestInMemoryStoreRoundtrip(t *testing.T) {
	store := NewInMemoryFindingStore()
	ctx := context.Background()

	runID := uuid.New()
	findings := []Finding{
		{PIIType: "name", PIIValue: "John Doe", Private: true},
		{PIIType: "email", PIIValue: "john.doe@example.com", Private: true},
	}

	if err := store.StoreRun(ctx, runID, "doc.md", findings); err != nil {
		t.Fatalf("StoreRun failed: %v", err)
	}

	got, err := store.GetRunFindings(ctx, runID)
	if err != nil {
		t.Fatalf("GetRunFindings failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 findings, got %d", len(got))
	}
	// Longest value first
	if got[0].PIIValue != "john.doe@example.com" {
		t.Errorf("Expected longest value first, got %q", got[0].PIIValue)
	}

	count, err := store.GetRunCount(ctx)
	if err != nil || count != 1 {
		t.Errorf("Expected run count 1, got %d (err %v)", count, err)
	}
}

func TestInMemoryStoreUnknownRun(t *testing.T) {
	store := NewInMemoryFindingStore()
	findings, err := store.GetRunFindings(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetRunFindings failed: %v", err)
	}
	if findings != nil {
		t.Errorf("Expected nil for unknown run, got %v", findings)
	}
}

func TestInMemoryStoreRunIsolation(t *testing.T) {
	store := NewInMemoryFindingStore()
	ctx := context.Background()

	findings := []Finding{{PIIType: "name", PIIValue: "John Doe", Private: true}}
	if err := store.StoreRun(ctx, uuid.New(), "doc.md", findings); err != nil {
		t.Fatalf("StoreRun failed: %v", err)
	}

	// Mutating the caller's slice must not affect the stored copy
	findings[0].PIIValue = "mutated"

	runID := uuid.New()
	if err := store.StoreRun(ctx, runID, "other.md", []Finding{{PIIType: "email", PIIValue: "a@b.com", Private: true}}); err != nil {
		t.Fatalf("StoreRun failed: %v", err)
	}
	got, err := store.GetRunFindings(ctx, runID)
	if err != nil || len(got) != 1 || got[0].PIIValue != "a@b.com" {
		t.Errorf("Run isolation broken: %+v (err %v)", got, err)
	}
}

func TestInMemoryStoreCleanupOldRuns(t *testing.T) {
	store := NewInMemoryFindingStore()
	ctx := context.Background()

	runID := uuid.New()
	if err := store.StoreRun(ctx, runID, "doc.md", []Finding{{PIIType: "name", PIIValue: "x", Private: true}}); err != nil {
		t.Fatalf("StoreRun failed: %v", err)
	}

	// Nothing is older than an hour yet
	removed, err := store.CleanupOldRuns(ctx, time.Hour)
	if err != nil || removed != 0 {
		t.Errorf("Expected no removals, got %d (err %v)", removed, err)
	}

	// Everything is older than a negative cutoff
	removed, err = store.CleanupOldRuns(ctx, -time.Hour)
	if err != nil || removed != 1 {
		t.Errorf("Expected 1 removal, got %d (err %v)", removed, err)
	}

	count, _ := store.GetRunCount(ctx)
	if count != 0 {
		t.Errorf("Expected empty store after cleanup, got %d runs", count)
	}
}

func TestInMemoryStoreMappings(t *testing.T) {
	store := NewInMemoryFindingStore()
	ctx := context.Background()

	if err := store.StoreMapping(ctx, "John Doe", "Alex Smith", "name", 0.9); err != nil {
		t.Fatalf("StoreMapping failed: %v", err)
	}

	dummy, found, err := store.GetDummy(ctx, "John Doe")
	if err != nil || !found || dummy != "Alex Smith" {
		t.Errorf("GetDummy: got %q found=%v err=%v", dummy, found, err)
	}

	original, found, err := store.GetOriginal(ctx, "Alex Smith")
	if err != nil || !found || original != "John Doe" {
		t.Errorf("GetOriginal: got %q found=%v err=%v", original, found, err)
	}

	_, found, err = store.GetDummy(ctx, "unknown")
	if err != nil || found {
		t.Errorf("Expected miss for unknown original, found=%v err=%v", found, err)
	}
}

func TestNewStoreFromConfigDisabled(t *testing.T) {
	cfg := config.DefaultConfig().Database
	cfg.Enabled = false

	store := NewStoreFromConfig(cfg)
	defer store.Close()

	if _, ok := store.(*InMemoryFindingStore); !ok {
		t.Errorf("Expected in-memory store when database is disabled, got %T", store)
	}
}
