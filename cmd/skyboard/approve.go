package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/disnet/skyboard/internal/types"
)

func newApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <rkey-prefix>",
		Short: "Approve an untrusted author's hidden task so an open board shows it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := currentApp
			boardOwner, _, _, err := a.boardURI.Parse()
			if err != nil {
				return err
			}
			if boardOwner != a.viewer {
				return fmt.Errorf("skyboard: approvals are only honored from the board owner (%s), viewer is %s", boardOwner, a.viewer)
			}

			_, res, err := loadAndMaterialize(cmd.Context(), a)
			if err != nil {
				return err
			}

			var target *types.Task
			for _, t := range res.UntrustedTasks {
				if len(args[0]) >= minRkeyPrefix && hasRkeyPrefix(t.Rkey, args[0]) {
					if target != nil {
						return fmt.Errorf("skyboard: rkey prefix %q is ambiguous among untrusted tasks", args[0])
					}
					t := t
					target = &t
				}
			}
			if target == nil {
				return fmt.Errorf("skyboard: no untrusted task matches rkey prefix %q", args[0])
			}

			approval := types.Approval{
				Owner:     a.viewer,
				TargetURI: target.URI(),
				BoardURI:  a.boardURI,
				CreatedAt: clockFor(a).Now(),
			}
			if err := appendApproval(a, approval); err != nil {
				return err
			}
			fmt.Printf("approved %s\n", target.URI())
			return nil
		},
	}
}

func hasRkeyPrefix(rkey, prefix string) bool {
	return len(rkey) >= len(prefix) && rkey[:len(prefix)] == prefix
}
