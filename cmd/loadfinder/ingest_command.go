package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"loadfinder/internal/config"
	"loadfinder/internal/feed"
	"loadfinder/internal/ingest"
	"loadfinder/internal/store"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var feedPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Merge a feed file into the load database",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				path := strings.TrimSpace(feedPath)
				if path == "" {
					path = cfg.Ingest.FeedPath
				}
				records, err := feed.ReadFile(path)
				if err != nil {
					return err
				}

				engine := ingest.NewEngine(st, logger)
				result, err := engine.Run(cmd.Context(), records, ingest.Options{
					Overwrite: overwrite,
					Source:    path,
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(),
					"Run %s: inserted %d, updated %d, skipped %d\n",
					result.RunID, result.Inserted, result.Updated, result.Skipped)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&feedPath, "feed", "", "Feed file path (defaults to the configured feed)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace the whole table instead of merging")
	return cmd
}
