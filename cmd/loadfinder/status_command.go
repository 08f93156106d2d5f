package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"loadfinder/internal/config"
	"loadfinder/internal/loads"
	"loadfinder/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var runs int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show load counts by state and recent ingest runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				out := cmd.OutOrStdout()

				stats, err := st.Stats(cmd.Context())
				if err != nil {
					return err
				}
				total := 0
				rows := make([][]string, 0, len(loads.AllStates()))
				for _, state := range loads.AllStates() {
					count := stats[state]
					total += count
					rows = append(rows, []string{string(state), strconv.Itoa(count)})
				}
				fmt.Fprintln(out, renderTable([]string{"State", "Loads"}, rows, 2))
				fmt.Fprintf(out, "%d load(s) in %s\n\n", total, st.Path())

				recent, err := st.RecentRuns(cmd.Context(), runs)
				if err != nil {
					return err
				}
				if len(recent) == 0 {
					fmt.Fprintln(out, "No ingest runs recorded.")
					return nil
				}
				runRows := make([][]string, 0, len(recent))
				for _, run := range recent {
					runRows = append(runRows, []string{
						run.RunID,
						run.StartedAt.Format("2006-01-02 15:04:05"),
						run.Mode,
						strconv.Itoa(run.Inserted),
						strconv.Itoa(run.Updated),
						strconv.Itoa(run.Skipped),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Started", "Mode", "Inserted", "Updated", "Skipped"},
					runRows, 4, 5, 6))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&runs, "runs", 5, "How many recent ingest runs to show")
	return cmd
}
