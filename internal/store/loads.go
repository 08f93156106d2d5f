package store

import (
	"context"
	"database/sql"
	"fmt"

	"loadfinder/internal/loads"
)

const loadColumns = `load_key, origin_city, origin_state, dest_city, dest_state,
	origin_deadhead, dest_deadhead, distance, rate, rpm, weight, length,
	equipment, mode, pickup, company, updated, d2p, state,
	shortlist_tag, shortlisted_at, match_score, first_seen_at, last_seen_at, raw_json`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoad(scanner rowScanner) (*loads.Load, error) {
	var (
		load          loads.Load
		originCity    sql.NullString
		originState   sql.NullString
		destCity      sql.NullString
		destState     sql.NullString
		originDH      sql.NullInt64
		destDH        sql.NullInt64
		distance      sql.NullInt64
		rate          sql.NullString
		rpm           sql.NullString
		weight        sql.NullInt64
		length        sql.NullInt64
		equipment     sql.NullString
		mode          sql.NullString
		pickup        sql.NullString
		company       sql.NullString
		updated       sql.NullString
		d2p           sql.NullString
		state         string
		shortlistTag  sql.NullString
		shortlistedAt sql.NullString
		matchScore    sql.NullFloat64
		firstSeenAt   string
		lastSeenAt    string
		rawJSON       sql.NullString
	)

	if err := scanner.Scan(
		&load.Key, &originCity, &originState, &destCity, &destState,
		&originDH, &destDH, &distance, &rate, &rpm, &weight, &length,
		&equipment, &mode, &pickup, &company, &updated, &d2p, &state,
		&shortlistTag, &shortlistedAt, &matchScore, &firstSeenAt, &lastSeenAt, &rawJSON,
	); err != nil {
		return nil, err
	}

	load.OriginCity = originCity.String
	load.OriginState = originState.String
	load.DestCity = destCity.String
	load.DestState = destState.String
	if originDH.Valid {
		v := originDH.Int64
		load.OriginDeadhead = &v
	}
	if destDH.Valid {
		v := destDH.Int64
		load.DestDeadhead = &v
	}
	if distance.Valid {
		v := distance.Int64
		load.Distance = &v
	}
	load.Rate = rate.String
	load.RPM = rpm.String
	if weight.Valid {
		v := weight.Int64
		load.Weight = &v
	}
	if length.Valid {
		v := length.Int64
		load.Length = &v
	}
	load.Equipment = equipment.String
	load.Mode = mode.String
	load.Pickup = pickup.String
	load.Company = company.String
	load.Updated = updated.String
	load.D2P = d2p.String
	load.State = loads.State(state)
	load.ShortlistTag = shortlistTag.String
	if shortlistedAt.Valid {
		if t, err := parseTimeString(shortlistedAt.String); err == nil {
			load.ShortlistedAt = &t
		}
	}
	if matchScore.Valid {
		v := matchScore.Float64
		load.MatchScore = &v
	}
	if t, err := parseTimeString(firstSeenAt); err == nil {
		load.FirstSeenAt = t
	}
	if t, err := parseTimeString(lastSeenAt); err == nil {
		load.LastSeenAt = t
	}
	load.RawJSON = rawJSON.String

	return &load, nil
}

// Get returns the load with the given key.
func (s *Store) Get(ctx context.Context, key string) (*loads.Load, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+loadColumns+" FROM loads WHERE load_key = ?", key)
	load, err := scanLoad(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: load %s", loads.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get load: %w", loads.ErrStoreUnavailable, err)
	}
	return load, nil
}

// Count returns the total number of loads.
func (s *Store) Count(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM loads").Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count loads: %w", loads.ErrStoreUnavailable, err)
	}
	return count, nil
}

// Stats returns the number of loads in each lifecycle state.
func (s *Store) Stats(ctx context.Context) (map[loads.State]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT state, COUNT(*) FROM loads GROUP BY state")
	if err != nil {
		return nil, fmt.Errorf("%w: load stats: %w", loads.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	stats := make(map[loads.State]int)
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("%w: scan stats: %w", loads.ErrStoreUnavailable, err)
		}
		stats[loads.State(state)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read stats: %w", loads.ErrStoreUnavailable, err)
	}
	return stats, nil
}
