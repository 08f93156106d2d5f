package store

import (
	"github.com/Masterminds/squirrel"

	"loadfinder/internal/loads"
)

// filterConditions translates a filter spec into SQL predicates. City and
// state comparisons run against the fold columns so matching stays
// case-insensitive beyond ASCII.
func filterConditions(spec loads.FilterSpec) squirrel.And {
	var conds squirrel.And

	if spec.Tag != "" {
		conds = append(conds, squirrel.Eq{"shortlist_tag": spec.Tag})
	}
	if spec.Date != "" {
		conds = append(conds, squirrel.Eq{"pickup": spec.Date})
	}
	if spec.OriginCity != "" {
		conds = append(conds, squirrel.Eq{"origin_city_fold": loads.Fold(spec.OriginCity)})
	}
	if spec.OriginState != "" {
		conds = append(conds, squirrel.Eq{"origin_state_fold": loads.Fold(spec.OriginState)})
	}
	if spec.DestCity != "" {
		conds = append(conds, squirrel.Eq{"dest_city_fold": loads.Fold(spec.DestCity)})
	}
	if spec.DestState != "" {
		conds = append(conds, squirrel.Eq{"dest_state_fold": loads.Fold(spec.DestState)})
	}
	if spec.MaxOriginDeadhead != nil {
		conds = append(conds, squirrel.LtOrEq{"origin_deadhead": *spec.MaxOriginDeadhead})
	}
	if spec.MaxDestDeadhead != nil {
		conds = append(conds, squirrel.LtOrEq{"dest_deadhead": *spec.MaxDestDeadhead})
	}

	return conds
}

func applyConditions(builder squirrel.SelectBuilder, conds squirrel.And) squirrel.SelectBuilder {
	if len(conds) == 0 {
		return builder
	}
	return builder.Where(conds)
}

func statesNotIn(states []loads.State) squirrel.Sqlizer {
	values := make([]string, len(states))
	for i, state := range states {
		values[i] = string(state)
	}
	return squirrel.NotEq{"state": values}
}
