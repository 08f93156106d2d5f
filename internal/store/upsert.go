package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"loadfinder/internal/loads"
)

// UpsertResult reports how an ingest batch changed the table.
type UpsertResult struct {
	Inserted int
	Updated  int
}

const insertLoadSQL = `INSERT INTO loads (
	load_key, origin_city, origin_state, dest_city, dest_state,
	origin_city_fold, origin_state_fold, dest_city_fold, dest_state_fold,
	origin_deadhead, dest_deadhead, distance, rate, rpm, weight, length,
	equipment, mode, pickup, company, updated, d2p, state,
	first_seen_at, last_seen_at, raw_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const updateLoadSQL = `UPDATE loads SET
	origin_city = ?, origin_state = ?, dest_city = ?, dest_state = ?,
	origin_city_fold = ?, origin_state_fold = ?, dest_city_fold = ?, dest_state_fold = ?,
	origin_deadhead = ?, dest_deadhead = ?, distance = ?, rate = ?, rpm = ?,
	weight = ?, length = ?, equipment = ?, mode = ?, pickup = ?, company = ?,
	updated = ?, d2p = ?, last_seen_at = ?, raw_json = ?
WHERE load_key = ?`

func insertLoadArgs(key string, in loads.Input, now time.Time) []any {
	seen := formatTime(now)
	return []any{
		key,
		nullableString(in.OriginCity), nullableString(in.OriginState),
		nullableString(in.DestCity), nullableString(in.DestState),
		nullableString(loads.Fold(in.OriginCity)), nullableString(loads.Fold(in.OriginState)),
		nullableString(loads.Fold(in.DestCity)), nullableString(loads.Fold(in.DestState)),
		nullableInt(in.OriginDeadhead), nullableInt(in.DestDeadhead), nullableInt(in.Distance),
		nullableString(in.Rate), nullableString(in.RPM),
		nullableInt(in.Weight), nullableInt(in.Length),
		nullableString(in.Equipment), nullableString(in.Mode),
		nullableString(in.Pickup), nullableString(in.Company),
		nullableString(in.Updated), nullableString(in.D2P),
		string(loads.StateNew),
		seen, seen,
		nullableString(in.RawJSON),
	}
}

func updateLoadArgs(key string, in loads.Input, now time.Time) []any {
	return []any{
		nullableString(in.OriginCity), nullableString(in.OriginState),
		nullableString(in.DestCity), nullableString(in.DestState),
		nullableString(loads.Fold(in.OriginCity)), nullableString(loads.Fold(in.OriginState)),
		nullableString(loads.Fold(in.DestCity)), nullableString(loads.Fold(in.DestState)),
		nullableInt(in.OriginDeadhead), nullableInt(in.DestDeadhead), nullableInt(in.Distance),
		nullableString(in.Rate), nullableString(in.RPM),
		nullableInt(in.Weight), nullableInt(in.Length),
		nullableString(in.Equipment), nullableString(in.Mode),
		nullableString(in.Pickup), nullableString(in.Company),
		nullableString(in.Updated), nullableString(in.D2P),
		formatTime(now),
		nullableString(in.RawJSON),
		key,
	}
}

// UpsertBatch merges a batch of keyed inputs in one transaction. Existing
// rows keep their state, shortlist tag, match score, and first_seen_at.
func (s *Store) UpsertBatch(ctx context.Context, batch map[string]loads.Input) (UpsertResult, error) {
	var result UpsertResult
	now := time.Now()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result = UpsertResult{}
		for key, in := range batch {
			var exists int
			err := tx.QueryRowContext(ctx, "SELECT 1 FROM loads WHERE load_key = ?", key).Scan(&exists)
			switch {
			case err == sql.ErrNoRows:
				if _, err := tx.ExecContext(ctx, insertLoadSQL, insertLoadArgs(key, in, now)...); err != nil {
					return fmt.Errorf("%w: insert load %s: %w", loads.ErrStoreUnavailable, key, err)
				}
				result.Inserted++
			case err != nil:
				return fmt.Errorf("%w: probe load %s: %w", loads.ErrStoreUnavailable, key, err)
			default:
				if _, err := tx.ExecContext(ctx, updateLoadSQL, updateLoadArgs(key, in, now)...); err != nil {
					return fmt.Errorf("%w: update load %s: %w", loads.ErrStoreUnavailable, key, err)
				}
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return UpsertResult{}, err
	}
	return result, nil
}

// ReplaceAll discards every stored load and inserts the batch fresh.
func (s *Store) ReplaceAll(ctx context.Context, batch map[string]loads.Input) (UpsertResult, error) {
	var result UpsertResult
	now := time.Now()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result = UpsertResult{}
		if _, err := tx.ExecContext(ctx, "DELETE FROM loads"); err != nil {
			return fmt.Errorf("%w: clear loads: %w", loads.ErrStoreUnavailable, err)
		}
		for key, in := range batch {
			if _, err := tx.ExecContext(ctx, insertLoadSQL, insertLoadArgs(key, in, now)...); err != nil {
				return fmt.Errorf("%w: insert load %s: %w", loads.ErrStoreUnavailable, key, err)
			}
			result.Inserted++
		}
		return nil
	})
	if err != nil {
		return UpsertResult{}, err
	}
	return result, nil
}

// DeleteAll removes every stored load.
func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	var removed int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM loads")
		if err != nil {
			return fmt.Errorf("%w: delete loads: %w", loads.ErrStoreUnavailable, err)
		}
		count, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: delete loads: %w", loads.ErrStoreUnavailable, err)
		}
		removed = int(count)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
