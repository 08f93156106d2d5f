package ingest_test

import (
	"context"
	"testing"

	"loadfinder/internal/ingest"
	"loadfinder/internal/loads"
	"loadfinder/internal/logging"
	"loadfinder/internal/store"
	"loadfinder/internal/testsupport"
)

func newEngine(t *testing.T) (*ingest.Engine, *store.Store) {
	t.Helper()
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	return ingest.NewEngine(st, logging.NewNop()), st
}

func record(city, rate string) loads.Input {
	return loads.Input{
		OriginCity:  city,
		OriginState: "OK",
		DestCity:    "Dallas",
		DestState:   "TX",
		Rate:        rate,
		Pickup:      "2026-08-27",
		Company:     "Acme Logistics",
	}
}

func TestRunInsertsAndReingestUpdates(t *testing.T) {
	engine, st := newEngine(t)
	ctx := context.Background()

	result, err := engine.Run(ctx, []loads.Input{
		record("Tulsa", "1500"),
		record("Enid", "1200"),
		record("Ada", "900"),
	}, ingest.Options{Source: "feed.json"})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if result.Inserted != 3 || result.Updated != 0 || result.Skipped != 0 {
		t.Fatalf("first run counts: %+v", result)
	}
	if result.RunID == "" {
		t.Fatal("run id not assigned")
	}

	// Same descriptive identity means the same key: second pass updates.
	second, err := engine.Run(ctx, []loads.Input{record("Tulsa", "1500")}, ingest.Options{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Inserted != 0 || second.Updated != 1 {
		t.Fatalf("second run counts: %+v", second)
	}

	count, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 loads, got %d", count)
	}
}

func TestRunSkipsMalformedRecords(t *testing.T) {
	engine, st := newEngine(t)
	ctx := context.Background()

	bad := record("", "1000")
	result, err := engine.Run(ctx, []loads.Input{record("Tulsa", "1500"), bad}, ingest.Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Inserted != 1 || result.Skipped != 1 {
		t.Fatalf("counts: %+v", result)
	}

	count, _ := st.Count(ctx)
	if count != 1 {
		t.Fatalf("malformed record must not be stored, count = %d", count)
	}
}

func TestRunLastDuplicateWins(t *testing.T) {
	engine, st := newEngine(t)
	ctx := context.Background()

	first := record("Tulsa", "1500")
	first.Equipment = "V"
	dup := record("Tulsa", "1500")
	dup.Equipment = "R"

	result, err := engine.Run(ctx, []loads.Input{first, dup}, ingest.Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Inserted != 1 || result.Skipped != 1 {
		t.Fatalf("counts: %+v", result)
	}

	key, err := loads.DeriveKey(dup)
	if err != nil {
		t.Fatalf("derive key: %v", err)
	}
	load, err := st.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if load.Equipment != "R" {
		t.Fatalf("last duplicate should win, equipment = %q", load.Equipment)
	}
}

func TestRunOverwriteReplacesTable(t *testing.T) {
	engine, st := newEngine(t)
	ctx := context.Background()

	if _, err := engine.Run(ctx, []loads.Input{record("Tulsa", "1500")}, ingest.Options{}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := engine.Run(ctx, []loads.Input{record("Wichita", "900")}, ingest.Options{Overwrite: true})
	if err != nil {
		t.Fatalf("overwrite run: %v", err)
	}
	if result.Inserted != 1 {
		t.Fatalf("counts: %+v", result)
	}

	count, _ := st.Count(ctx)
	if count != 1 {
		t.Fatalf("overwrite should leave only the new batch, count = %d", count)
	}
}

func TestRunNormalizesPickupDates(t *testing.T) {
	engine, st := newEngine(t)
	ctx := context.Background()

	in := record("Tulsa", "1500")
	in.Pickup = "TODAY"
	result, err := engine.Run(ctx, []loads.Input{in}, ingest.Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Inserted != 1 {
		t.Fatalf("counts: %+v", result)
	}

	// The key is derived from the raw record; the stored pickup is the
	// normalized date.
	key, err := loads.DeriveKey(in)
	if err != nil {
		t.Fatalf("derive key: %v", err)
	}
	load, err := st.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if load.Pickup == "TODAY" || len(load.Pickup) != len("2006-01-02") {
		t.Fatalf("pickup not normalized: %q", load.Pickup)
	}
}

func TestRunRecordsAudit(t *testing.T) {
	engine, st := newEngine(t)
	ctx := context.Background()

	result, err := engine.Run(ctx, []loads.Input{record("Tulsa", "1500")}, ingest.Options{Source: "feed.json"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	runs, err := st.RecentRuns(ctx, 1)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 audit row, got %d", len(runs))
	}
	if runs[0].RunID != result.RunID || runs[0].Mode != "merge" || runs[0].Source != "feed.json" {
		t.Fatalf("audit mismatch: %+v", runs[0])
	}
}
