package query_test

import (
	"context"
	"errors"
	"testing"

	"loadfinder/internal/config"
	"loadfinder/internal/loads"
	"loadfinder/internal/logging"
	"loadfinder/internal/query"
	"loadfinder/internal/store"
	"loadfinder/internal/testsupport"
)

func int64Ptr(v int64) *int64 { return &v }

func seed(t *testing.T, st *store.Store, records ...loads.Input) {
	t.Helper()
	batch := make(map[string]loads.Input, len(records))
	for _, in := range records {
		key, err := loads.DeriveKey(in)
		if err != nil {
			t.Fatalf("derive key: %v", err)
		}
		batch[key] = in
	}
	if _, err := st.UpsertBatch(context.Background(), batch); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func record(city, pickup string) loads.Input {
	return loads.Input{
		OriginCity:  city,
		OriginState: "OK",
		DestCity:    "Dallas",
		DestState:   "TX",
		Rate:        "1500",
		Pickup:      pickup,
		Company:     "Acme Logistics",
	}
}

func newEngine(t *testing.T, limits config.Limits) (*query.Engine, *store.Store) {
	t.Helper()
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	return query.NewEngine(st, limits, logging.NewNop()), st
}

func TestRunAppliesDefaultAndMaxLimits(t *testing.T) {
	engine, st := newEngine(t, config.Limits{DefaultLimit: 2, MaxLimit: 3, OpTimeoutSeconds: 30})
	seed(t, st,
		record("Tulsa", "2026-08-27"),
		record("Enid", "2026-08-27"),
		record("Ada", "2026-08-27"),
		record("Miami", "2026-08-27"),
	)

	resp, err := engine.Run(context.Background(), query.Request{})
	if err != nil {
		t.Fatalf("default limit query: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("zero limit should take the default, got %d rows", resp.Count)
	}

	resp, err = engine.Run(context.Background(), query.Request{Limit: 100})
	if err != nil {
		t.Fatalf("capped query: %v", err)
	}
	if resp.Count != 3 {
		t.Fatalf("limit should cap at the configured max, got %d rows", resp.Count)
	}
}

func TestRunRejectsNegativePaging(t *testing.T) {
	engine, _ := newEngine(t, config.Default().Limits)

	if _, err := engine.Run(context.Background(), query.Request{Limit: -1}); !errors.Is(err, loads.ErrValidation) {
		t.Fatalf("negative limit should fail validation, err = %v", err)
	}
	if _, err := engine.Run(context.Background(), query.Request{Offset: -1}); !errors.Is(err, loads.ErrValidation) {
		t.Fatalf("negative offset should fail validation, err = %v", err)
	}
}

func TestRunPagesWithOffset(t *testing.T) {
	engine, st := newEngine(t, config.Default().Limits)
	seed(t, st,
		record("Tulsa", "2026-08-27"),
		record("Enid", "2026-08-28"),
		record("Ada", "2026-08-29"),
	)

	first, err := engine.Run(context.Background(), query.Request{Limit: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	second, err := engine.Run(context.Background(), query.Request{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if first.Count != 2 || second.Count != 1 {
		t.Fatalf("paging mismatch: first %d, second %d", first.Count, second.Count)
	}
	for _, a := range first.Loads {
		for _, b := range second.Loads {
			if a.Key == b.Key {
				t.Fatalf("pages overlap on %s", a.Key)
			}
		}
	}
}

func TestRunNormalizesDateFilter(t *testing.T) {
	engine, st := newEngine(t, config.Default().Limits)
	seed(t, st, record("Tulsa", "2026-08-27"))

	resp, err := engine.Run(context.Background(), query.Request{
		Filter: loads.FilterSpec{Date: "08/27/2026"},
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("slash date should match stored ISO pickup, got %d rows", resp.Count)
	}
}
