package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/disnet/skyboard/internal/opbuilder"
	"github.com/disnet/skyboard/internal/types"
)

func newTrustCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trust <party>",
		Short: "Grant a party trust on the current board (board owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := currentApp
			boardOwner, _, _, err := a.boardURI.Parse()
			if err != nil {
				return err
			}
			if boardOwner != a.viewer {
				return fmt.Errorf("skyboard: trust grants are only honored from the board owner (%s), viewer is %s", boardOwner, a.viewer)
			}

			grant := types.Trust{
				Owner:        a.viewer,
				TrustedParty: types.Party(args[0]),
				BoardURI:     a.boardURI,
				CreatedAt:    clockFor(a).Now(),
			}
			if err := appendTrust(a, grant); err != nil {
				return err
			}
			fmt.Printf("granted trust to %s on %s\n", grant.TrustedParty, a.boardURI)
			return nil
		},
	}
}

func clockFor(a *app) *opbuilder.Clock {
	return a.builder.Clock()
}
