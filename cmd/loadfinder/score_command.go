package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"loadfinder/internal/config"
	"loadfinder/internal/scoring"
	"loadfinder/internal/shortlist"
	"loadfinder/internal/store"
)

func newScoreCommand(ctx *commandContext) *cobra.Command {
	var tag string
	var onlyUnscored bool
	var limit int

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute match scores for a shortlist tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				engine := scoring.NewEngine(st, scoring.NewCalculator(cfg.Scoring), logger)
				result, err := engine.Score(cmd.Context(), tag, scoring.Options{
					OnlyUnscored: onlyUnscored,
					Limit:        limit,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Scored %d load(s) carrying tag %q\n",
					result.Scored, result.Tag)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&tag, "tag", shortlist.DefaultTag, "Shortlist tag to score")
	cmd.Flags().BoolVar(&onlyUnscored, "only-unscored", false, "Skip rows that already carry a score or decision")
	cmd.Flags().IntVar(&limit, "limit", 0, "Score at most this many loads")
	return cmd
}
