// Package materialize implements skyboard's Materializer (§4.5): the
// end-to-end transformation from raw records into the view the CLI and any
// future server-side API render.
package materialize

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/disnet/skyboard/internal/opfilter"
	"github.com/disnet/skyboard/internal/resolve"
	"github.com/disnet/skyboard/internal/trust"
	"github.com/disnet/skyboard/internal/types"
)

// Input bundles the raw record set a single materialization run needs. It
// is the in-memory shape the sync layer is responsible for assembling as a
// consistent snapshot cut (§5).
type Input struct {
	Board        types.Board
	Tasks        []types.Task
	Ops          []types.Op
	OwnerTrusts  []types.Trust
	Approvals    []types.Approval
	Viewer       types.Party
	Logger       *slog.Logger
}

// Result is the Materializer's output.
type Result struct {
	// Columns holds each declared board column's visible tasks, in the
	// board's declared column order, sorted within the column by
	// (effective_position, owner, rkey).
	Columns []ColumnBucket
	// Orphaned holds visible tasks whose effective column_id does not
	// reference any column on the board.
	Orphaned []types.EffectiveTask
	// PendingProposals are ops from ineligible-but-visible authors, offered
	// up for the board owner's review.
	PendingProposals []types.Op
	// UntrustedTasks are tasks authored by a party with no visibility into
	// the board at all, surfaced for the open-board approval workflow.
	UntrustedTasks []types.Task
}

// ColumnBucket is one column's materialized task list.
type ColumnBucket struct {
	Column types.Column
	Tasks  []types.EffectiveTask
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// Materialize runs the full pipeline described in §4.5. It never fails:
// malformed or dangling records are logged and excluded from the view
// rather than aborting the run.
func Materialize(in Input) Result {
	log := logger(in.Logger)

	tasks := dedupeTasks(in.Tasks, log)
	opsByTarget := bucketOps(in.Ops, tasks, log)
	trusts := trust.NewSet(in.Board.Owner, in.OwnerTrusts)
	approved := approvedSet(in.Approvals, in.Board.Owner)

	res := Result{}
	byColumn := make(map[string][]types.EffectiveTask, len(in.Board.Columns))

	for _, task := range tasks {
		taskURI := task.URI()
		candidateOps := opsByTarget[taskURI]

		visible := trust.IsContentVisible(task.Owner, in.Viewer, in.Board.Owner, trusts, in.Board.Open, taskURI, approved)
		if !visible {
			res.UntrustedTasks = append(res.UntrustedTasks, task)
			log.Debug("materialize: task excluded, author not visible", slog.String("task_uri", string(taskURI)), slog.String("author", string(task.Owner)))
			continue
		}

		filtered := opfilter.Filter(candidateOps, opfilter.Input{
			TaskURI:    taskURI,
			TaskOwner:  task.Owner,
			BoardOwner: in.Board.Owner,
			Trusts:     trusts,
			Viewer:     in.Viewer,
			BoardOpen:  in.Board.Open,
			Approved:   approved,
		})
		res.PendingProposals = append(res.PendingProposals, filtered.Pending...)

		effective := resolve.Resolve(task, filtered.Applied)

		if _, ok := in.Board.ColumnByID(effective.ColumnID.Value); ok {
			byColumn[effective.ColumnID.Value] = append(byColumn[effective.ColumnID.Value], effective)
		} else {
			res.Orphaned = append(res.Orphaned, effective)
			log.Warn("materialize: task has dangling column_id", slog.String("task_uri", string(taskURI)), slog.String("column_id", effective.ColumnID.Value))
		}
	}

	sortedColumns := make([]types.Column, len(in.Board.Columns))
	copy(sortedColumns, in.Board.Columns)
	slices.SortFunc(sortedColumns, func(a, b types.Column) int { return cmp.Compare(a.Order, b.Order) })

	for _, col := range sortedColumns {
		bucket := byColumn[col.ID]
		sortEffectiveTasks(bucket)
		res.Columns = append(res.Columns, ColumnBucket{Column: col, Tasks: bucket})
	}
	sortEffectiveTasks(res.Orphaned)

	return res
}

func sortEffectiveTasks(tasks []types.EffectiveTask) {
	slices.SortFunc(tasks, func(a, b types.EffectiveTask) int {
		if c := cmp.Compare(a.Position.Value, b.Position.Value); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Owner, b.Owner); c != 0 {
			return c
		}
		return cmp.Compare(a.Rkey, b.Rkey)
	})
}

// dedupeTasks keeps the first observed task per (owner, rkey); duplicates
// are expected to be byte-equal by invariant and are logged when they are
// not, but the first occurrence always wins.
func dedupeTasks(tasks []types.Task, log *slog.Logger) []types.Task {
	seen := make(map[types.Key]types.Task, len(tasks))
	order := make([]types.Key, 0, len(tasks))
	for _, task := range tasks {
		key := task.Key()
		if existing, ok := seen[key]; ok {
			if !tasksEqual(existing, task) {
				log.Warn("materialize: duplicate task key with divergent content", slog.String("owner", string(key.Owner)), slog.String("rkey", key.Rkey))
			}
			continue
		}
		seen[key] = task
		order = append(order, key)
	}
	out := make([]types.Task, 0, len(order))
	for _, key := range order {
		out = append(out, seen[key])
	}
	return out
}

// tasksEqual compares two Task records field by field. types.Task carries a
// slice (LabelIDs) and pointer fields (Position, LegacyOrder), so it is not
// comparable with ==.
func tasksEqual(a, b types.Task) bool {
	return a.Owner == b.Owner &&
		a.Rkey == b.Rkey &&
		a.BoardURI == b.BoardURI &&
		a.Title == b.Title &&
		a.Description == b.Description &&
		a.ColumnID == b.ColumnID &&
		equalStringPtr(a.Position, b.Position) &&
		equalIntPtr(a.LegacyOrder, b.LegacyOrder) &&
		slices.Equal(a.LabelIDs, b.LabelIDs) &&
		a.CreatedAt.Equal(b.CreatedAt)
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// bucketOps groups ops by target task URI, dropping ops that reference no
// task known to this materialization run.
func bucketOps(ops []types.Op, tasks []types.Task, log *slog.Logger) map[types.URI][]types.Op {
	known := make(map[types.URI]struct{}, len(tasks))
	for _, t := range tasks {
		known[t.URI()] = struct{}{}
	}

	buckets := make(map[types.URI][]types.Op)
	for _, op := range ops {
		if op.CreatedAt.IsZero() {
			log.Warn("materialize: op missing created_at, dropped", slog.String("op_uri", string(op.URI())))
			continue
		}
		if _, ok := known[op.TargetTaskURI]; !ok {
			log.Debug("materialize: op targets unknown task, dropped for this run", slog.String("op_uri", string(op.URI())), slog.String("target", string(op.TargetTaskURI)))
			continue
		}
		buckets[op.TargetTaskURI] = append(buckets[op.TargetTaskURI], op)
	}
	return buckets
}

// approvedSet collects the target URIs the board owner has explicitly
// approved; approvals from any other party are ignored (mirrors §4.2's
// rule for Trust records).
func approvedSet(approvals []types.Approval, boardOwner types.Party) trust.URISet {
	var uris []types.URI
	for _, a := range approvals {
		if a.Owner != boardOwner {
			continue
		}
		uris = append(uris, a.TargetURI)
	}
	return trust.NewURISet(uris)
}
