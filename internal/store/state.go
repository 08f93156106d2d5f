package store

import (
	"context"
	"database/sql"
	"fmt"

	"loadfinder/internal/loads"
)

// UpdateState moves a load to the requested state, enforcing the lifecycle
// transition table. Illegal moves return ErrInvariantViolation.
func (s *Store) UpdateState(ctx context.Context, key string, next loads.State) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, "SELECT state FROM loads WHERE load_key = ?", key).Scan(&current)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: load %s", loads.ErrNotFound, key)
		}
		if err != nil {
			return fmt.Errorf("%w: read state for %s: %w", loads.ErrStoreUnavailable, key, err)
		}

		from := loads.State(current)
		if !from.CanTransition(next) {
			return fmt.Errorf("%w: %s -> %s is not a legal transition for load %s",
				loads.ErrInvariantViolation, from, next, key)
		}
		if from == next {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE loads SET state = ? WHERE load_key = ?", string(next), key); err != nil {
			return fmt.Errorf("%w: update state for %s: %w", loads.ErrStoreUnavailable, key, err)
		}
		return nil
	})
}
