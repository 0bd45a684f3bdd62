package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the board's columns and tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := currentApp
			_, res, err := loadAndMaterialize(cmd.Context(), a)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return emitJSON(os.Stdout, res)
			}
			renderBoard(os.Stdout, res, a.cfg.Color() && !flagNoColor)
			return nil
		},
	}
}
