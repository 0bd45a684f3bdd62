// Package opfilter implements skyboard's Op Filter (§4.3): for a given
// task and viewer, it decides which of the task's candidate Ops are
// eligible to contribute to LWW ("applied"), which are ineligible but
// still worth surfacing for owner review ("pending"), and which are
// dropped entirely because their author has no visibility into the task
// at all.
package opfilter

import (
	"github.com/disnet/skyboard/internal/trust"
	"github.com/disnet/skyboard/internal/types"
)

// Input bundles the context the filter needs to classify ops targeting one
// task.
type Input struct {
	TaskURI    types.URI
	TaskOwner  types.Party
	BoardOwner types.Party
	Trusts     trust.Set
	Viewer     types.Party
	BoardOpen  bool
	Approved   trust.URISet
}

// Result is the per-task classification of candidate ops.
type Result struct {
	Applied []types.Op
	Pending []types.Op
}

// isEligible implements the §4.3 merge-eligibility rule: an op's author is
// eligible to contribute to the task's effective state iff they are the
// board owner, the task's own author, the current viewer, or explicitly
// trusted by the board owner.
func isEligible(author types.Party, in Input) bool {
	if author == in.BoardOwner || author == in.TaskOwner || author == in.Viewer {
		return true
	}
	return in.Trusts.Has(author)
}

// Filter classifies candidate ops targeting one task. Ops whose author is
// both ineligible to merge and invisible to the viewer are silently
// dropped from both sets, per §4.3.
func Filter(ops []types.Op, in Input) Result {
	var res Result
	for _, op := range ops {
		if isEligible(op.Owner, in) {
			res.Applied = append(res.Applied, op)
			continue
		}
		if trust.IsContentVisible(op.Owner, in.Viewer, in.BoardOwner, in.Trusts, in.BoardOpen, in.TaskURI, in.Approved) {
			res.Pending = append(res.Pending, op)
		}
	}
	return res
}
