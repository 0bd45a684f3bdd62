package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/disnet/skyboard/internal/types"
)

// minRkeyPrefix is the minimum length a user-supplied rkey prefix must
// have before the CLI will attempt to resolve it, per §6.
const minRkeyPrefix = 4

// resolveTaskByRkeyPrefix finds the single task across all columns (plus
// orphans) whose rkey starts with prefix. Ambiguity yields an error listing
// every matching candidate, per §6's disambiguation contract.
func resolveTaskByRkeyPrefix(res result, prefix string) (types.EffectiveTask, error) {
	if len(prefix) < minRkeyPrefix {
		return types.EffectiveTask{}, fmt.Errorf("skyboard: rkey prefix %q is shorter than the minimum %d characters", prefix, minRkeyPrefix)
	}

	var candidates []types.EffectiveTask
	for _, col := range res.Columns {
		for _, task := range col.Tasks {
			if strings.HasPrefix(task.Rkey, prefix) {
				candidates = append(candidates, task)
			}
		}
	}
	for _, task := range res.Orphaned {
		if strings.HasPrefix(task.Rkey, prefix) {
			candidates = append(candidates, task)
		}
	}

	switch len(candidates) {
	case 0:
		return types.EffectiveTask{}, fmt.Errorf("skyboard: no task matches rkey prefix %q", prefix)
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

// resolveColumn resolves a user-supplied column reference against the
// board's declared columns, by numeric index, exact name, name prefix, or
// name substring, in that priority order, per §6. Each tier must itself be
// unambiguous.
func resolveColumn(columns []types.Column, ref string) (types.Column, error) {
	if idx, err := strconv.Atoi(ref); err == nil {
		if idx < 0 || idx >= len(columns) {
			return types.Column{}, fmt.Errorf("skyboard: column index %d out of range (board has %d columns)", idx, len(columns))
		}
		return columns[idx], nil
	}

	if col, err := matchColumnUnique(columns, ref, func(c types.Column) bool { return c.Name == ref }); err != nil {
		return types.Column{}, err
	} else if col != nil {
		return *col, nil
	}
	if col, err := matchColumnUnique(columns, ref, func(c types.Column) bool { return strings.HasPrefix(c.Name, ref) }); err != nil {
		return types.Column{}, err
	} else if col != nil {
		return *col, nil
	}
	if col, err := matchColumnUnique(columns, ref, func(c types.Column) bool { return strings.Contains(c.Name, ref) }); err != nil {
		return types.Column{}, err
	} else if col != nil {
		return *col, nil
	}

	return types.Column{}, fmt.Errorf("skyboard: no column matches %q", ref)
}

func matchColumn(columns []types.Column, ref string, pred func(types.Column) bool) (types.Column, bool) {
	for _, c := range columns {
		if pred(c) {
			return c, true
		}
	}
	return types.Column{}, false
}

func matchColumnUnique(columns []types.Column, ref string, pred func(types.Column) bool) (*types.Column, error) {
	var matches []types.Column
	for _, c := range columns {
		if pred(c) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		var names []string
		for _, m := range matches {
			names = append(names, m.Name)
		}
		return nil, fmt.Errorf("skyboard: column reference %q is ambiguous, candidates: %s", ref, strings.Join(names, ", "))
	}
}
