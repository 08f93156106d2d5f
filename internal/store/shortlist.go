package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"loadfinder/internal/loads"
)

// TagOptions selects the rows a shortlist pass may tag.
type TagOptions struct {
	Filter loads.FilterSpec
	Tag    string
	// Replace re-tags matched rows that already carry a tag. Without it,
	// already-tagged rows are left alone.
	Replace bool
	// OnlyUnscored skips rows the scoring engine has already touched.
	OnlyUnscored bool
	Limit        int
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}

// TagMatches applies a shortlist tag to every load matching the filter.
// Terminal rows are never retagged. Tagging promotes NEW rows to READY so
// the scoring engine will pick them up.
func (s *Store) TagMatches(ctx context.Context, opts TagOptions) (int, error) {
	conds := filterConditions(opts.Filter)
	conds = append(conds, statesNotIn(loads.TerminalStates()))
	if !opts.Replace {
		conds = append(conds, squirrel.Eq{"shortlist_tag": nil})
	}
	if opts.OnlyUnscored {
		conds = append(conds, statesNotIn(loads.PreservedStates()))
	}

	builder := statementBuilder.Select("load_key").From("loads").
		Where(conds).
		OrderBy("pickup", "load_key")
	if opts.Limit > 0 {
		builder = builder.Limit(uint64(opts.Limit))
	}

	selectSQL, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build shortlist query: %w", err)
	}

	var tagged int
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		tagged = 0
		rows, err := tx.QueryContext(ctx, selectSQL, args...)
		if err != nil {
			return fmt.Errorf("%w: select shortlist candidates: %w", loads.ErrStoreUnavailable, err)
		}
		var keys []string
		for rows.Next() {
			var key string
			if err := rows.Scan(&key); err != nil {
				rows.Close()
				return fmt.Errorf("%w: scan candidate key: %w", loads.ErrStoreUnavailable, err)
			}
			keys = append(keys, key)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("%w: read candidates: %w", loads.ErrStoreUnavailable, err)
		}
		if len(keys) == 0 {
			return nil
		}

		updateSQL := fmt.Sprintf(`UPDATE loads SET
			shortlist_tag = ?,
			shortlisted_at = ?,
			state = CASE WHEN state = '%s' THEN '%s' ELSE state END
		WHERE load_key IN (%s)`,
			loads.StateNew, loads.StateReady, makePlaceholders(len(keys)))

		updateArgs := make([]any, 0, len(keys)+2)
		updateArgs = append(updateArgs, opts.Tag, formatTime(time.Now()))
		for _, key := range keys {
			updateArgs = append(updateArgs, key)
		}

		res, err := tx.ExecContext(ctx, updateSQL, updateArgs...)
		if err != nil {
			return fmt.Errorf("%w: tag loads: %w", loads.ErrStoreUnavailable, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: tag loads: %w", loads.ErrStoreUnavailable, err)
		}
		tagged = int(affected)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return tagged, nil
}

// TaggedCount returns how many loads currently carry the tag.
func (s *Store) TaggedCount(ctx context.Context, tag string) (int, error) {
	ctx = ensureContext(ctx)
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM loads WHERE shortlist_tag = ?", tag).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: count tagged loads: %w", loads.ErrStoreUnavailable, err)
	}
	return count, nil
}

// ClearTag removes a shortlist tag from every row carrying it. States are
// left untouched.
func (s *Store) ClearTag(ctx context.Context, tag string) (int, error) {
	var cleared int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE loads SET shortlist_tag = NULL, shortlisted_at = NULL WHERE shortlist_tag = ?", tag)
		if err != nil {
			return fmt.Errorf("%w: clear tag: %w", loads.ErrStoreUnavailable, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: clear tag: %w", loads.ErrStoreUnavailable, err)
		}
		cleared = int(affected)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return cleared, nil
}
