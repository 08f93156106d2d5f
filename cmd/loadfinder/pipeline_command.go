package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"loadfinder/internal/config"
	"loadfinder/internal/feed"
	"loadfinder/internal/ingest"
	"loadfinder/internal/scoring"
	"loadfinder/internal/shortlist"
	"loadfinder/internal/store"
)

func newPipelineCommand(ctx *commandContext) *cobra.Command {
	var feedPath string
	var overwrite bool
	var tag string
	var replace bool
	var limit int
	filters := &filterFlags{}

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Ingest, shortlist, and score in one pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				out := cmd.OutOrStdout()

				path := strings.TrimSpace(feedPath)
				if path == "" {
					path = cfg.Ingest.FeedPath
				}
				records, err := feed.ReadFile(path)
				if err != nil {
					return err
				}
				ingestResult, err := ingest.NewEngine(st, logger).Run(cmd.Context(), records,
					ingest.Options{Overwrite: overwrite, Source: path})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Ingest %s: inserted %d, updated %d, skipped %d\n",
					ingestResult.RunID, ingestResult.Inserted, ingestResult.Updated, ingestResult.Skipped)

				shortlistResult, err := shortlist.NewEngine(st, logger).Run(cmd.Context(), shortlist.Request{
					Filter:  filters.spec(cmd, ""),
					Tag:     tag,
					Replace: replace,
					Limit:   limit,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Shortlist: tagged %d as %q (total %d)\n",
					shortlistResult.Tagged, shortlistResult.Tag, shortlistResult.Total)

				scoreResult, err := scoring.NewEngine(st, scoring.NewCalculator(cfg.Scoring), logger).
					Score(cmd.Context(), shortlistResult.Tag, scoring.Options{})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Score: scored %d load(s)\n", scoreResult.Scored)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&feedPath, "feed", "", "Feed file path (defaults to the configured feed)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace the whole table instead of merging")
	cmd.Flags().StringVar(&tag, "tag", "", "Shortlist tag (defaults to DEFAULT)")
	cmd.Flags().BoolVar(&replace, "replace", false, "Re-tag matched rows that already carry a tag")
	cmd.Flags().IntVar(&limit, "limit", 0, "Tag at most this many loads")
	filters.register(cmd)
	return cmd
}
