// Package ingest merges feed records into the load store under stable keys.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"loadfinder/internal/loads"
	"loadfinder/internal/store"
)

// Options control one ingestion pass.
type Options struct {
	// Overwrite discards the whole table and rebuilds it from the batch
	// instead of merging.
	Overwrite bool
	// Source names where the batch came from, for the audit trail.
	Source string
}

// Result summarizes one ingestion pass.
type Result struct {
	RunID    string
	Inserted int
	Updated  int
	Skipped  int
}

// Engine keys and merges feed records.
type Engine struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine wires an ingest engine over the store.
func NewEngine(st *store.Store, logger *slog.Logger) *Engine {
	return &Engine{store: st, logger: logger, now: time.Now}
}

// Run keys every record, normalizes its pickup date, and merges the batch in
// one transaction. Records missing origin or destination are counted as
// skipped, never stored. When the same key appears twice in a batch the last
// record wins.
func (e *Engine) Run(ctx context.Context, records []loads.Input, opts Options) (Result, error) {
	startedAt := e.now()
	result := Result{RunID: uuid.NewString()}

	batch := make(map[string]loads.Input, len(records))
	for _, record := range records {
		key, err := loads.DeriveKey(record)
		if err != nil {
			if errors.Is(err, loads.ErrMalformedRecord) {
				e.logger.Warn("skipping malformed record",
					"origin_city", record.OriginCity,
					"dest_city", record.DestCity,
					"error", err)
				result.Skipped++
				continue
			}
			return Result{}, err
		}
		record.Pickup = loads.NormalizePickup(record.Pickup, startedAt)
		if _, dup := batch[key]; dup {
			result.Skipped++
		}
		batch[key] = record
	}

	var (
		merged store.UpsertResult
		err    error
		mode   = "merge"
	)
	if opts.Overwrite {
		mode = "overwrite"
		merged, err = e.store.ReplaceAll(ctx, batch)
	} else {
		merged, err = e.store.UpsertBatch(ctx, batch)
	}
	if err != nil {
		return Result{}, err
	}
	result.Inserted = merged.Inserted
	result.Updated = merged.Updated

	if err := e.store.RecordRun(ctx, store.IngestRun{
		RunID:     result.RunID,
		StartedAt: startedAt,
		Mode:      mode,
		Source:    opts.Source,
		Inserted:  result.Inserted,
		Updated:   result.Updated,
		Skipped:   result.Skipped,
	}); err != nil {
		return Result{}, err
	}

	e.logger.Info("ingest complete",
		"run_id", result.RunID,
		"mode", mode,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"skipped", result.Skipped)

	return result, nil
}
