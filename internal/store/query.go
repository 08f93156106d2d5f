package store

import (
	"context"
	"fmt"

	"loadfinder/internal/loads"
)

// QueryOptions narrows and pages a load listing.
type QueryOptions struct {
	Filter loads.FilterSpec
	// OnlyUnscored restricts results to rows the scoring engine has not
	// yet touched (state outside SCORED, APPLIED, IGNORED).
	OnlyUnscored bool
	Limit        int
	Offset       int
}

// Query returns the loads matching the options, scored rows first ordered by
// descending score, then by pickup date and key for a stable page order.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]*loads.Load, error) {
	ctx = ensureContext(ctx)

	conds := filterConditions(opts.Filter)
	if opts.OnlyUnscored {
		conds = append(conds, statesNotIn(loads.PreservedStates()))
	}

	builder := applyConditions(
		statementBuilder.Select(loadColumns).From("loads"),
		conds,
	).OrderBy("match_score IS NULL", "match_score DESC", "pickup", "load_key")

	if opts.Limit > 0 {
		builder = builder.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		builder = builder.Offset(uint64(opts.Offset))
	}

	sqlText, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query loads: %w", loads.ErrStoreUnavailable, err)
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
		return nil, fmt.Errorf("%w: read loads: %w", loads.ErrStoreUnavailable, err)
	}
	return results, nil
}
