package history

import (
	"context"
	"testing"
	"time"
)

func TestStore_AppendAndRecent(t *testing.T) {
	// Use in-memory SQLite with shared cache for testing
	store, err := Open("file:histmem1?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	records := []*Record{
		{Operation: "summary", Status: 200, Duration: 40 * time.Millisecond, CreatedAt: base},
		{Operation: "bias", Status: 422, ErrMessage: "missing column", Duration: 300 * time.Millisecond, CreatedAt: base.Add(time.Minute)},
		{Operation: "report", Status: 200, Duration: 2 * time.Second, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, rec := range records {
		if err := store.Append(context.Background(), rec); err != nil {
			t.Fatalf("Append(%s) error = %v", rec.Operation, err)
		}
		if rec.ID == "" {
			t.Errorf("Append did not assign an ID")
		}
	}

	recent, err := store.Recent(context.Background(), 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}

	if len(recent) != 2 {
		t.Fatalf("Recent() returned %d records, want 2", len(recent))
	}
	if recent[0].Operation != "report" {
		t.Errorf("recent[0] = %s, want newest first", recent[0].Operation)
	}
	if recent[1].Operation != "bias" {
		t.Errorf("recent[1] = %s", recent[1].Operation)
	}
	if recent[1].ErrMessage != "missing column" {
		t.Errorf("ErrMessage = %q", recent[1].ErrMessage)
	}
	if recent[1].Status != 422 {
		t.Errorf("Status = %d, want 422", recent[1].Status)
	}
	if recent[0].Duration != 2*time.Second {
		t.Errorf("Duration = %v, want 2s", recent[0].Duration)
	}
}

func TestStore_AssignsTimestamp(t *testing.T) {
	store, err := Open("file:histmem2?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	rec := &Record{Operation: "trend", Status: 200}
	if err := store.Append(context.Background(), rec); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if rec.CreatedAt.IsZero() {
		t.Error("Append did not assign CreatedAt")
	}
}
