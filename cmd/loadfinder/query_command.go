package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"loadfinder/internal/config"
	"loadfinder/internal/loads"
	"loadfinder/internal/query"
	"loadfinder/internal/store"
)

func newQueryCommand(ctx *commandContext) *cobra.Command {
	var tag string
	var onlyUnscored bool
	var limit, offset int
	var asJSON bool
	filters := &filterFlags{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "List loads matching a filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				engine := query.NewEngine(st, cfg.Limits, logger)
				resp, err := engine.Run(cmd.Context(), query.Request{
					Filter:       filters.spec(cmd, tag),
					OnlyUnscored: onlyUnscored,
					Limit:        limit,
					Offset:       offset,
				})
				if err != nil {
					return err
				}

				if asJSON {
					encoder := json.NewEncoder(cmd.OutOrStdout())
					encoder.SetIndent("", "  ")
					return encoder.Encode(resp.Loads)
				}

				if resp.Count == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No loads match.")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderLoadTable(resp.Loads))
				fmt.Fprintf(cmd.OutOrStdout(), "%d load(s)\n", resp.Count)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "Restrict to loads carrying this shortlist tag")
	cmd.Flags().BoolVar(&onlyUnscored, "only-unscored", false, "Only loads the scoring engine has not touched")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (0 for the configured default)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	filters.register(cmd)
	return cmd
}

func renderLoadTable(items []*loads.Load) string {
	headers := []string{"Key", "Origin", "Dest", "Pickup", "Rate", "Score", "State", "Tag"}
	rows := make([][]string, 0, len(items))
	for _, load := range items {
		score := ""
		if load.MatchScore != nil {
			score = strconv.FormatFloat(*load.MatchScore, 'f', 1, 64)
		}
		rows = append(rows, []string{
			load.Key,
			formatPlace(load.OriginCity, load.OriginState),
			formatPlace(load.DestCity, load.DestState),
			load.Pickup,
			load.Rate,
			score,
			string(load.State),
			load.ShortlistTag,
		})
	}
	return renderTable(headers, rows, 5, 6)
}

func formatPlace(city, state string) string {
	switch {
	case city == "":
		return state
	case state == "":
		return city
	default:
		return city + ", " + state
	}
}
