package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"loadfinder/internal/config"
	"loadfinder/internal/server"
	"loadfinder/internal/store"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API server",
		Long:  "Serves the ingest, shortlist, score, and query operations on the configured bind address until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				// One server process per database. The lock lives next to
				// the database file.
				lock := flock.New(cfg.Paths.DBPath + ".lock")
				locked, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire server lock: %w", err)
				}
				if !locked {
					return errors.New("another loadfinder server already holds the database lock")
				}
				defer func() { _ = lock.Unlock() }()

				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				srv := server.New(cfg, st, logger)
				if err := srv.Start(runCtx); err != nil {
					return err
				}
				defer srv.Stop()

				fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s (Ctrl-C to stop)\n", srv.Addr())
				<-runCtx.Done()
				return nil
			})
		},
	}
	return cmd
}
