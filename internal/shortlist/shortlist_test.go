package shortlist_test

import (
	"context"
	"testing"

	"loadfinder/internal/loads"
	"loadfinder/internal/logging"
	"loadfinder/internal/shortlist"
	"loadfinder/internal/store"
	"loadfinder/internal/testsupport"
)

func int64Ptr(v int64) *int64 { return &v }

func newEngine(t *testing.T) (*shortlist.Engine, *store.Store) {
	t.Helper()
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	return shortlist.NewEngine(st, logging.NewNop()), st
}

func seed(t *testing.T, st *store.Store, records ...loads.Input) []string {
	t.Helper()
	batch := make(map[string]loads.Input, len(records))
	keys := make([]string, 0, len(records))
	for _, in := range records {
		key, err := loads.DeriveKey(in)
		if err != nil {
			t.Fatalf("derive key: %v", err)
		}
		batch[key] = in
		keys = append(keys, key)
	}
	if _, err := st.UpsertBatch(context.Background(), batch); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return keys
}

func record(city, state string, deadhead int64) loads.Input {
	return loads.Input{
		OriginCity:     city,
		OriginState:    state,
		DestCity:       "Dallas",
		DestState:      "TX",
		OriginDeadhead: int64Ptr(deadhead),
		Rate:           "1500",
		Pickup:         "2026-08-27",
		Company:        "Acme Logistics",
	}
}

func TestRunDefaultsTag(t *testing.T) {
	engine, st := newEngine(t)
	keys := seed(t, st, record("Tulsa", "OK", 10))

	result, err := engine.Run(context.Background(), shortlist.Request{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Tag != shortlist.DefaultTag {
		t.Fatalf("blank tag should default, got %q", result.Tag)
	}
	if result.Tagged != 1 || result.Total != 1 {
		t.Fatalf("counts: %+v", result)
	}

	load, err := st.Get(context.Background(), keys[0])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if load.ShortlistTag != shortlist.DefaultTag || load.State != loads.StateReady {
		t.Fatalf("tag/state mismatch: %q %s", load.ShortlistTag, load.State)
	}
}

func TestRunFiltersCaseInsensitively(t *testing.T) {
	engine, st := newEngine(t)
	seed(t, st, record("Tulsa", "OK", 10), record("Wichita", "KS", 10))

	result, err := engine.Run(context.Background(), shortlist.Request{
		Filter: loads.FilterSpec{OriginCity: "TULSA", OriginState: "ok"},
		Tag:    "tulsa-run",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Tagged != 1 {
		t.Fatalf("expected 1 tagged, got %d", result.Tagged)
	}
}

func TestRunDeadheadCeilingIsInclusive(t *testing.T) {
	engine, st := newEngine(t)
	seed(t, st, record("Tulsa", "OK", 40), record("Enid", "OK", 41))

	result, err := engine.Run(context.Background(), shortlist.Request{
		Filter: loads.FilterSpec{MaxOriginDeadhead: int64Ptr(40)},
		Tag:    "near",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Tagged != 1 {
		t.Fatalf("ceiling should include 40 and exclude 41, got %d", result.Tagged)
	}
}

func TestRunTotalCountsEarlierPasses(t *testing.T) {
	engine, st := newEngine(t)
	seed(t, st, record("Tulsa", "OK", 10), record("Enid", "OK", 10))

	first, err := engine.Run(context.Background(), shortlist.Request{
		Filter: loads.FilterSpec{OriginCity: "Tulsa"},
		Tag:    "run",
	})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Tagged != 1 || first.Total != 1 {
		t.Fatalf("first counts: %+v", first)
	}

	second, err := engine.Run(context.Background(), shortlist.Request{
		Filter: loads.FilterSpec{OriginCity: "Enid"},
		Tag:    "run",
	})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Tagged != 1 || second.Total != 2 {
		t.Fatalf("second counts: %+v", second)
	}
}

func TestRunRespectsLimit(t *testing.T) {
	engine, st := newEngine(t)
	seed(t, st, record("Tulsa", "OK", 10), record("Enid", "OK", 10), record("Ada", "OK", 10))

	result, err := engine.Run(context.Background(), shortlist.Request{Tag: "run", Limit: 2})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Tagged != 2 {
		t.Fatalf("limit 2 should tag 2, got %d", result.Tagged)
	}
}

func TestRunOnlyUnscoredSkipsScoredRows(t *testing.T) {
	engine, st := newEngine(t)
	keys := seed(t, st, record("Tulsa", "OK", 10), record("Enid", "OK", 10))

	ctx := context.Background()
	if _, err := st.TagMatches(ctx, store.TagOptions{Tag: "first"}); err != nil {
		t.Fatalf("tag: %v", err)
	}
	if _, err := st.ApplyScores(ctx, map[string]float64{keys[0]: 7.5}); err != nil {
		t.Fatalf("score: %v", err)
	}

	result, err := engine.Run(ctx, shortlist.Request{
		Tag:          "retag",
		Replace:      true,
		OnlyUnscored: true,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Tagged != 1 {
		t.Fatalf("scored row should be skipped, got %d tagged", result.Tagged)
	}

	scored, err := st.Get(ctx, keys[0])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if scored.ShortlistTag != "first" {
		t.Fatalf("scored row retagged to %q", scored.ShortlistTag)
	}
}

func TestRunNormalizesDateFilter(t *testing.T) {
	engine, st := newEngine(t)
	seed(t, st, record("Tulsa", "OK", 10))

	result, err := engine.Run(context.Background(), shortlist.Request{
		Filter: loads.FilterSpec{Date: "08/27/2026"},
		Tag:    "dated",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Tagged != 1 {
		t.Fatalf("slash date should match stored ISO pickup, got %d", result.Tagged)
	}
}
