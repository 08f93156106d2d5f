// Package shortlist tags stored loads that match a filter and promotes them
// into the scoring pipeline.
package shortlist

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"loadfinder/internal/loads"
	"loadfinder/internal/store"
)

// DefaultTag is used when a shortlist pass names no tag of its own.
const DefaultTag = "DEFAULT"

// Request selects and names one shortlist pass.
type Request struct {
	Filter loads.FilterSpec
	Tag    string
	// Replace re-tags matched rows that already carry another tag.
	Replace bool
	// OnlyUnscored skips rows the scoring engine has already touched.
	OnlyUnscored bool
	Limit        int
}

// Result summarizes one shortlist pass. Total counts every row carrying the
// tag after the pass, including rows tagged by earlier passes.
type Result struct {
	Tag    string
	Tagged int
	Total  int
}

// Engine applies shortlist tags through the store.
type Engine struct {
	store  *store.Store
	logger *slog.Logger
}

// NewEngine wires a shortlist engine over the store.
func NewEngine(st *store.Store, logger *slog.Logger) *Engine {
	return &Engine{store: st, logger: logger}
}

// Run tags every load matching the filter. Matching is case-insensitive on
// cities and states; deadhead bounds are inclusive ceilings. Terminal rows
// are never touched.
func (e *Engine) Run(ctx context.Context, req Request) (Result, error) {
	tag := strings.TrimSpace(req.Tag)
	if tag == "" {
		tag = DefaultTag
	}

	filter := req.Filter
	filter.Date = loads.NormalizeDateFilter(filter.Date, time.Now())

	tagged, err := e.store.TagMatches(ctx, store.TagOptions{
		Filter:       filter,
		Tag:          tag,
		Replace:      req.Replace,
		OnlyUnscored: req.OnlyUnscored,
		Limit:        req.Limit,
	})
	if err != nil {
		return Result{}, err
	}

	total, err := e.store.TaggedCount(ctx, tag)
	if err != nil {
		return Result{}, err
	}

	e.logger.Info("shortlist pass complete", "tag", tag, "tagged", tagged, "total", total)
	return Result{Tag: tag, Tagged: tagged, Total: total}, nil
}
