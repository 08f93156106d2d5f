package store

import (
	"context"
	"database/sql"
	"fmt"

	"loadfinder/internal/loads"
)

// ScoringSelection narrows which tagged rows a scoring pass reads.
type ScoringSelection struct {
	Tag string
	// OnlyUnscored excludes rows already in SCORED, APPLIED, or IGNORED.
	OnlyUnscored bool
	Limit        int
}

// SelectForScoring returns loads carrying the shortlist tag, in a stable
// order. Unless OnlyUnscored is set, terminal and scored rows are included so
// their scores stay current.
func (s *Store) SelectForScoring(ctx context.Context, sel ScoringSelection) ([]*loads.Load, error) {
	ctx = ensureContext(ctx)

	builder := statementBuilder.Select(loadColumns).From("loads").
		Where("shortlist_tag = ?", sel.Tag).
		OrderBy("pickup", "load_key")
	if sel.OnlyUnscored {
		builder = builder.Where(statesNotIn(loads.PreservedStates()))
	}
	if sel.Limit > 0 {
		builder = builder.Limit(uint64(sel.Limit))
	}

	sqlText, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build scoring query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: select tagged loads: %w", loads.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var results []*loads.Load
	for rows.Next() {
		load, err := scanLoad(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan load: %w", loads.ErrStoreUnavailable, err)
		}
		results = append(results, load)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read tagged loads: %w", loads.ErrStoreUnavailable, err)
	}
	return results, nil
}

// ApplyScores writes computed match scores in one transaction. Rows that were
// READY move to SCORED; any other state is left alone so operator decisions
// survive rescoring.
func (s *Store) ApplyScores(ctx context.Context, scores map[string]float64) (int, error) {
	updateSQL := fmt.Sprintf(`UPDATE loads SET
		match_score = ?,
		state = CASE WHEN state = '%s' THEN '%s' ELSE state END
	WHERE load_key = ?`, loads.StateReady, loads.StateScored)

	var updated int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		updated = 0
		for key, score := range scores {
			res, err := tx.ExecContext(ctx, updateSQL, score, key)
			if err != nil {
				return fmt.Errorf("%w: score load %s: %w", loads.ErrStoreUnavailable, key, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("%w: score load %s: %w", loads.ErrStoreUnavailable, key, err)
			}
			updated += int(affected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}
