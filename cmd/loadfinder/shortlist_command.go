package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"loadfinder/internal/config"
	"loadfinder/internal/shortlist"
	"loadfinder/internal/store"
)

func newShortlistCommand(ctx *commandContext) *cobra.Command {
	var tag string
	var replace bool
	var onlyUnscored bool
	var limit int
	filters := &filterFlags{}

	cmd := &cobra.Command{
		Use:   "shortlist",
		Short: "Tag loads matching a filter for scoring",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				engine := shortlist.NewEngine(st, logger)
				result, err := engine.Run(cmd.Context(), shortlist.Request{
					Filter:       filters.spec(cmd, ""),
					Tag:          tag,
					Replace:      replace,
					OnlyUnscored: onlyUnscored,
					Limit:        limit,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"Tagged %d load(s) as %q (total carrying tag: %d)\n",
					result.Tagged, result.Tag, result.Total)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "Shortlist tag (defaults to DEFAULT)")
	cmd.Flags().BoolVar(&replace, "replace", false, "Re-tag matched rows that already carry a tag")
	cmd.Flags().BoolVar(&onlyUnscored, "only-unscored", false, "Skip rows that already carry a score or decision")
	cmd.Flags().IntVar(&limit, "limit", 0, "Tag at most this many loads")
	filters.register(cmd)
	return cmd
}
