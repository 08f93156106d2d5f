// Package scoring computes match scores for shortlisted loads and promotes
// READY rows to SCORED.
package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"loadfinder/internal/config"
	"loadfinder/internal/loads"
	"loadfinder/internal/store"
)

// Calculator holds the normalization bounds and weights for match scores.
type Calculator struct {
	rateMin        float64
	rateMax        float64
	d2pMin         float64
	d2pMax         float64
	rateWeight     float64
	d2pWeight      float64
	missingPenalty float64
}

// NewCalculator builds a calculator from validated scoring settings.
func NewCalculator(cfg config.Scoring) Calculator {
	return Calculator{
		rateMin:        cfg.RateMin,
		rateMax:        cfg.RateMax,
		d2pMin:         cfg.D2PMin,
		d2pMax:         cfg.D2PMax,
		rateWeight:     cfg.RateWeight,
		d2pWeight:      cfg.D2PWeight,
		missingPenalty: cfg.MissingD2PPenalty,
	}
}

func clamp(value, low, high float64) float64 {
	return math.Max(low, math.Min(high, value))
}

// Score blends a normalized rate and deadhead-to-pickup distance into a
// 0..10 match score, rounded to one decimal. A missing deadhead value costs
// a flat penalty; absence is not the best case.
func (c Calculator) Score(rate, d2p string) float64 {
	rateNorm := 0.0
	if parsed := loads.ParseRate(rate); parsed != nil {
		rateNorm = clamp((*parsed-c.rateMin)/(c.rateMax-c.rateMin), 0, 1)
	}

	d2pNorm := 0.0
	missingD2P := true
	if parsed := loads.ParseD2P(d2p); parsed != nil {
		d2pNorm = clamp(1.0-((*parsed-c.d2pMin)/(c.d2pMax-c.d2pMin)), 0, 1)
		missingD2P = false
	}

	score := (c.rateWeight*rateNorm + c.d2pWeight*d2pNorm) * 10.0
	if missingD2P {
		score -= c.missingPenalty
	}
	return math.Round(clamp(score, 0, 10)*10) / 10
}

// Options narrow one scoring pass.
type Options struct {
	// OnlyUnscored skips rows that already carry a score or an operator
	// decision.
	OnlyUnscored bool
	// Limit bounds how many tagged rows the pass reads.
	Limit int
}

// Result summarizes one scoring pass.
type Result struct {
	Tag    string
	Scored int
}

// Engine scores every load carrying a shortlist tag.
type Engine struct {
	store  *store.Store
	calc   Calculator
	logger *slog.Logger
}

// NewEngine wires a scoring engine over the store.
func NewEngine(st *store.Store, calc Calculator, logger *slog.Logger) *Engine {
	return &Engine{store: st, calc: calc, logger: logger}
}

// Score computes and persists match scores for loads carrying the tag.
// READY rows move to SCORED; rows in other states keep their state but still
// get a fresh score unless opts exclude them.
func (e *Engine) Score(ctx context.Context, tag string, opts Options) (Result, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Result{}, fmt.Errorf("%w: scoring requires a shortlist tag", loads.ErrValidation)
	}

	candidates, err := e.store.SelectForScoring(ctx, store.ScoringSelection{
		Tag:          tag,
		OnlyUnscored: opts.OnlyUnscored,
		Limit:        opts.Limit,
	})
	if err != nil {
		return Result{}, err
	}
	if len(candidates) == 0 {
		e.logger.Info("no loads to score", "tag", tag)
		return Result{Tag: tag}, nil
	}

	scores := make(map[string]float64, len(candidates))
	for _, load := range candidates {
		scores[load.Key] = e.calc.Score(load.Rate, load.D2P)
	}

	updated, err := e.store.ApplyScores(ctx, scores)
	if err != nil {
		return Result{}, err
	}

	e.logger.Info("scoring pass complete", "tag", tag, "scored", updated)
	return Result{Tag: tag, Scored: updated}, nil
}
