package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"loadfinder/internal/loads"
)

// IngestRun is an audit row describing one feed ingestion.
type IngestRun struct {
	RunID     string
	StartedAt time.Time
	Mode      string
	Source    string
	Inserted  int
	Updated   int
	Skipped   int
}

// RecordRun appends an ingest audit row.
func (s *Store) RecordRun(ctx context.Context, run IngestRun) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO ingest_runs (run_id, started_at, mode, source, inserted, updated, skipped)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, formatTime(run.StartedAt), run.Mode, nullableString(run.Source),
			run.Inserted, run.Updated, run.Skipped)
		if err != nil {
			return fmt.Errorf("%w: record ingest run: %w", loads.ErrStoreUnavailable, err)
		}
		return nil
	})
}

// RecentRuns returns the newest ingest audit rows, most recent first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]IngestRun, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, started_at, mode, source, inserted, updated, skipped
		 FROM ingest_runs ORDER BY started_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list ingest runs: %w", loads.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var runs []IngestRun
	for rows.Next() {
		var run IngestRun
		var startedAt string
		var source sql.NullString
		if err := rows.Scan(&run.RunID, &startedAt, &run.Mode, &source,
			&run.Inserted, &run.Updated, &run.Skipped); err != nil {
			return nil, fmt.Errorf("%w: scan ingest run: %w", loads.ErrStoreUnavailable, err)
		}
		if t, err := parseTimeString(startedAt); err == nil {
			run.StartedAt = t
		}
		run.Source = source.String
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read ingest runs: %w", loads.ErrStoreUnavailable, err)
	}
	return runs, nil
}
