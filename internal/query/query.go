// Package query validates and runs filtered load listings.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loadfinder/internal/config"
	"loadfinder/internal/loads"
	"loadfinder/internal/store"
)

// Request narrows and pages a listing. A zero filter matches everything.
type Request struct {
	Filter       loads.FilterSpec
	OnlyUnscored bool
	Limit        int
	Offset       int
}

// Response carries one page of results. Count is the number of rows on this
// page, not the total match count.
type Response struct {
	Loads []*loads.Load
	Count int
}

// Engine runs validated queries against the store.
type Engine struct {
	store  *store.Store
	limits config.Limits
	logger *slog.Logger
}

// NewEngine wires a query engine over the store.
func NewEngine(st *store.Store, limits config.Limits, logger *slog.Logger) *Engine {
	return &Engine{store: st, limits: limits, logger: logger}
}

// Run executes the request. A zero limit takes the configured default; the
// configured maximum caps every request.
func (e *Engine) Run(ctx context.Context, req Request) (Response, error) {
	if req.Limit < 0 {
		return Response{}, fmt.Errorf("%w: limit must not be negative", loads.ErrValidation)
	}
	if req.Offset < 0 {
		return Response{}, fmt.Errorf("%w: offset must not be negative", loads.ErrValidation)
	}

	limit := req.Limit
	if limit == 0 {
		limit = e.limits.DefaultLimit
	}
	if limit > e.limits.MaxLimit {
		limit = e.limits.MaxLimit
	}

	filter := req.Filter
	filter.Date = loads.NormalizeDateFilter(filter.Date, time.Now())

	results, err := e.store.Query(ctx, store.QueryOptions{
		Filter:       filter,
		OnlyUnscored: req.OnlyUnscored,
		Limit:        limit,
		Offset:       req.Offset,
	})
	if err != nil {
		return Response{}, err
	}

	e.logger.Debug("query complete", "rows", len(results), "limit", limit, "offset", req.Offset)
	return Response{Loads: results, Count: len(results)}, nil
}
