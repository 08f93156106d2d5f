package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"loadfinder/internal/config"
	"loadfinder/internal/loads"
	"loadfinder/internal/store"
)

func newStateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state <load-key> <state>",
		Short: "Move a load to a new lifecycle state",
		Long:  "Legal moves follow NEW -> READY -> SCORED -> APPLIED|IGNORED.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			state, ok := loads.ParseState(args[1])
			if !ok {
				return fmt.Errorf("unknown state %q (known: %v)", args[1], loads.AllStates())
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if err := st.UpdateState(cmd.Context(), key, state); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Load %s is now %s\n", key, state)
				return nil
			})
		},
	}
	return cmd
}
