// Package resolve implements skyboard's LWW Field Resolver (§4.4): folding
// a base Task plus its applied Ops into an EffectiveTask, where every
// mutable field carries its own independent last-writer-wins timestamp.
package resolve

import (
	"cmp"
	"slices"
	"time"

	"github.com/disnet/skyboard/internal/position"
	"github.com/disnet/skyboard/internal/types"
)

// maxLegacyOrderSteps bounds how many allocator steps the legacy order
// derivation below will take, guarding against pathological pre-fractional-
// index data. The value is not semantic; it only needs to be large and
// consistent across clients (§4.1 Open Questions).
const maxLegacyOrderSteps = 10_000

// DeriveLegacyPosition deterministically maps a pre-fractional-index
// "order" integer to a position string, by taking order+1 sequential tail
// allocations starting from the empty board. order 0 maps to a single
// allocator step, matching §4.1's worked example.
func DeriveLegacyPosition(order int) (string, error) {
	steps := order + 1
	if steps < 1 {
		steps = 1
	}
	if steps > maxLegacyOrderSteps {
		steps = maxLegacyOrderSteps
	}
	var prev *string
	var cur string
	for i := 0; i < steps; i++ {
		next, err := position.Between(prev, nil)
		if err != nil {
			return "", err
		}
		cur = next
		prev = &cur
	}
	return cur, nil
}

// basePosition returns the task's seed position, deriving one from its
// legacy order field when no fractional-index position is stored.
func basePosition(task types.Task) (string, error) {
	if task.Position != nil {
		return *task.Position, nil
	}
	order := 0
	if task.LegacyOrder != nil {
		order = *task.LegacyOrder
	}
	return DeriveLegacyPosition(order)
}

// Resolve folds a base Task with its applied Ops into an EffectiveTask.
// Resolve never fails: a task with an unresolvable legacy position falls
// back to the empty string, which still sorts deterministically (first).
//
// Resolve is idempotent and commutative over the set of applied ops: the
// same set folded in any order, or folded twice, produces the same result.
func Resolve(task types.Task, applied []types.Op) types.EffectiveTask {
	seedPos, err := basePosition(task)
	if err != nil {
		seedPos = ""
	}

	out := types.EffectiveTask{
		Owner:       task.Owner,
		Rkey:        task.Rkey,
		BoardURI:    task.BoardURI,
		CreatedAt:   task.CreatedAt,
		Title:       types.FieldState[string]{Value: task.Title, Timestamp: task.CreatedAt, Author: task.Owner},
		Description: types.FieldState[string]{Value: task.Description, Timestamp: task.CreatedAt, Author: task.Owner},
		ColumnID:    types.FieldState[string]{Value: task.ColumnID, Timestamp: task.CreatedAt, Author: task.Owner},
		Position:    types.FieldState[string]{Value: seedPos, Timestamp: task.CreatedAt, Author: task.Owner},
		LabelIDs:    types.FieldState[[]string]{Value: task.LabelIDs, Timestamp: task.CreatedAt, Author: task.Owner},
	}

	ordered := make([]types.Op, len(applied))
	copy(ordered, applied)
	slices.SortFunc(ordered, func(a, b types.Op) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Owner, b.Owner); c != 0 {
			return c
		}
		return cmp.Compare(a.Rkey, b.Rkey)
	})

	for _, op := range ordered {
		if op.Delta.Has(types.FieldTitle) && op.CreatedAt.After(out.Title.Timestamp) {
			out.Title = types.FieldState[string]{Value: *op.Delta.Title, Timestamp: op.CreatedAt, Author: op.Owner}
		}
		if op.Delta.Has(types.FieldDescription) && op.CreatedAt.After(out.Description.Timestamp) {
			out.Description = types.FieldState[string]{Value: *op.Delta.Description, Timestamp: op.CreatedAt, Author: op.Owner}
		}
		if op.Delta.Has(types.FieldColumnID) && op.CreatedAt.After(out.ColumnID.Timestamp) {
			out.ColumnID = types.FieldState[string]{Value: *op.Delta.ColumnID, Timestamp: op.CreatedAt, Author: op.Owner}
		}
		if op.Delta.Has(types.FieldPosition) && op.CreatedAt.After(out.Position.Timestamp) {
			out.Position = types.FieldState[string]{Value: *op.Delta.Position, Timestamp: op.CreatedAt, Author: op.Owner}
		}
		if op.Delta.Has(types.FieldLabelIDs) && op.CreatedAt.After(out.LabelIDs.Timestamp) {
			out.LabelIDs = types.FieldState[[]string]{Value: *op.Delta.LabelIDs, Timestamp: op.CreatedAt, Author: op.Owner}
		}
	}

	out.LastModifiedAt, out.LastModifiedBy = lastModified(out)
	return out
}

// lastModified computes the record-wide (last_modified_at, last_modified_by)
// pair per §4.4 step 4: the maximum field timestamp, ties broken first by
// lexicographic author id and then by the declared field order.
func lastModified(t types.EffectiveTask) (time.Time, types.Party) {
	type candidate struct {
		ts     time.Time
		author types.Party
		field  types.MutableField
	}
	candidates := []candidate{
		{t.Title.Timestamp, t.Title.Author, types.FieldTitle},
		{t.Description.Timestamp, t.Description.Author, types.FieldDescription},
		{t.ColumnID.Timestamp, t.ColumnID.Author, types.FieldColumnID},
		{t.Position.Timestamp, t.Position.Author, types.FieldPosition},
		{t.LabelIDs.Timestamp, t.LabelIDs.Author, types.FieldLabelIDs},
	}

	// fieldRank breaks a (timestamp, author) tie by MutableFieldOrder, the
	// last tiebreaker named in §4.4 step 4.
	fieldRank := func(f types.MutableField) int {
		for i, mf := range types.MutableFieldOrder {
			if mf == f {
				return i
			}
		}
		return len(types.MutableFieldOrder)
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		switch {
		case c.ts.After(best.ts):
			best = c
		case c.ts.Equal(best.ts) && c.author < best.author:
			best = c
		case c.ts.Equal(best.ts) && c.author == best.author && fieldRank(c.field) < fieldRank(best.field):
			best = c
		}
	}
	return best.ts, best.author
}
