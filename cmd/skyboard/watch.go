package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-render the board whenever any party's snapshot directory changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := currentApp

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			render := func() {
				_, res, err := loadAndMaterialize(ctx, a)
				if err != nil {
					a.logger.Warn("watch: materialize failed", slog.String("error", err.Error()))
					return
				}
				if a.jsonOut {
					_ = emitJSON(os.Stdout, res)
					return
				}
				renderBoard(os.Stdout, res, a.cfg.Color() && !flagNoColor)
			}

			render()
			return a.loader.Watch(ctx, render)
		},
	}
}
