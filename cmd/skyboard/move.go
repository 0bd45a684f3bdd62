package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/disnet/skyboard/internal/types"
)

func newMoveCmd() *cobra.Command {
	var afterRkey, beforeRkey string

	cmd := &cobra.Command{
		Use:   "move <rkey-prefix> <column>",
		Short: "Move a task to a different column and/or position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := currentApp
			snap, res, err := loadAndMaterialize(cmd.Context(), a)
			if err != nil {
				return err
			}

			task, err := resolveTaskByRkeyPrefix(res, args[0])
			if err != nil {
				return err
			}
			column, err := resolveColumn(snap.Board.Columns, args[1])
			if err != nil {
				return err
			}

			after, before, err := neighborPositions(res, column.ID, afterRkey, beforeRkey)
			if err != nil {
				return err
			}
			op, err := a.builder.OpMove(a.viewer, task, a.boardURI, column.ID, after, before)
			if err != nil {
				return fmt.Errorf("skyboard: move: %w", err)
			}

			if err := appendOp(a, op); err != nil {
				return err
			}
			fmt.Printf("moved %s to %s\n", task.Rkey, column.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&afterRkey, "after", "", "rkey prefix of the task to place this one immediately after")
	cmd.Flags().StringVar(&beforeRkey, "before", "", "rkey prefix of the task to place this one immediately before")
	return cmd
}

// neighborPositions resolves --after/--before rkey prefixes against the
// target column's current task list into position strings for the
// allocator, using the same §6 rkey-prefix-disambiguation contract as the
// primary task argument. An empty afterRkey leaves the lower bound open and
// an empty beforeRkey leaves the upper bound open; when both are empty and
// the column has tasks, the new position goes after the column's last task.
func neighborPositions(res result, columnID, afterRkey, beforeRkey string) (*string, *string, error) {
	var tasks []types.EffectiveTask
	for _, col := range res.Columns {
		if col.Column.ID == columnID {
			tasks = col.Tasks
			break
		}
	}

	var after, before *string
	if afterRkey != "" {
		task, err := resolveNeighborByRkeyPrefix(tasks, afterRkey)
		if err != nil {
			return nil, nil, err
		}
		after = &task.Position.Value
	}
	if beforeRkey != "" {
		task, err := resolveNeighborByRkeyPrefix(tasks, beforeRkey)
		if err != nil {
			return nil, nil, err
		}
		before = &task.Position.Value
	}
	if after == nil && before == nil && len(tasks) > 0 {
		last := tasks[len(tasks)-1].Position.Value
		after = &last
	}
	return after, before, nil
}

// resolveNeighborByRkeyPrefix finds the single task in tasks whose rkey
// starts with prefix, per §6's disambiguation contract.
func resolveNeighborByRkeyPrefix(tasks []types.EffectiveTask, prefix string) (types.EffectiveTask, error) {
	if len(prefix) < minRkeyPrefix {
		return types.EffectiveTask{}, fmt.Errorf("skyboard: rkey prefix %q is shorter than the minimum %d characters", prefix, minRkeyPrefix)
	}

	var candidates []types.EffectiveTask
	for _, task := range tasks {
		if strings.HasPrefix(task.Rkey, prefix) {
			candidates = append(candidates, task)
		}
	}

	switch len(candidates) {
	case 0:
		return types.EffectiveTask{}, fmt.Errorf("skyboard: no task in this column matches rkey prefix %q", prefix)
	case 1:
		return candidates[0], nil
	default:
		var rkeys []string
		for _, c := range candidates {
			rkeys = append(rkeys, c.Rkey)
		}
		return types.EffectiveTask{}, fmt.Errorf("skyboard: rkey prefix %q is ambiguous, candidates: %s", prefix, strings.Join(rkeys, ", "))
	}
}
