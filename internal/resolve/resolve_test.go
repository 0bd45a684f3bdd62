package resolve

import (
	"testing"
	"time"

	"github.com/disnet/skyboard/internal/position"
	"github.com/disnet/skyboard/internal/types"
)

func ts(sec int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, sec, 0, time.UTC)
}

func strp(s string) *string { return &s }

func baseTask() types.Task {
	return types.Task{
		Owner:     "did:alice",
		Rkey:      "t1",
		BoardURI:  "at://did:alice/board/b1",
		Title:     "Original title",
		ColumnID:  "todo",
		CreatedAt: ts(0),
	}
}

func TestResolveNoOpsReturnsBaseFields(t *testing.T) {
	task := baseTask()
	out := Resolve(task, nil)

	if out.Title.Value != "Original title" || out.Title.Author != task.Owner {
		t.Fatalf("expected unmodified title from base task, got %+v", out.Title)
	}
	if out.LastModifiedBy != task.Owner {
		t.Fatalf("expected last_modified_by == task owner with no ops, got %q", out.LastModifiedBy)
	}
	if out.Position.Value == "" {
		t.Fatalf("expected a derived legacy position, got empty string")
	}
}

func TestResolveLaterOpWins(t *testing.T) {
	task := baseTask()
	op := types.Op{
		Owner:         "did:bob",
		Rkey:          "o1",
		TargetTaskURI: task.URI(),
		Delta:         types.Delta{Title: strp("Updated title")},
		CreatedAt:     ts(10),
	}
	out := Resolve(task, []types.Op{op})
	if out.Title.Value != "Updated title" || out.Title.Author != "did:bob" {
		t.Fatalf("expected bob's later op to win, got %+v", out.Title)
	}
}

func TestResolveEarlierOpLoses(t *testing.T) {
	task := baseTask()
	task.CreatedAt = ts(10)
	op := types.Op{
		Owner:         "did:bob",
		Rkey:          "o1",
		TargetTaskURI: task.URI(),
		Delta:         types.Delta{Title: strp("Should lose")},
		CreatedAt:     ts(5),
	}
	out := Resolve(task, []types.Op{op})
	if out.Title.Value != "Original title" {
		t.Fatalf("expected base task title to win over earlier op, got %q", out.Title.Value)
	}
}

func TestResolveEqualTimestampOpLosesToBase(t *testing.T) {
	// Strict '>' comparison (§4.1 Open Questions decision): an op whose
	// timestamp exactly ties the current field timestamp never overwrites.
	task := baseTask()
	op := types.Op{
		Owner:         "did:bob",
		Rkey:          "o1",
		TargetTaskURI: task.URI(),
		Delta:         types.Delta{Title: strp("Tied")},
		CreatedAt:     task.CreatedAt,
	}
	out := Resolve(task, []types.Op{op})
	if out.Title.Value != "Original title" {
		t.Fatalf("expected tie to favor the earlier-folded writer, got %q", out.Title.Value)
	}
}

func TestResolveIndependentFieldsTrackSeparateWriters(t *testing.T) {
	task := baseTask()
	titleOp := types.Op{Owner: "did:bob", Rkey: "o1", CreatedAt: ts(5), Delta: types.Delta{Title: strp("Bob's title")}}
	columnOp := types.Op{Owner: "did:carol", Rkey: "o2", CreatedAt: ts(3), Delta: types.Delta{ColumnID: strp("doing")}}
	out := Resolve(task, []types.Op{titleOp, columnOp})

	if out.Title.Author != "did:bob" || out.Title.Value != "Bob's title" {
		t.Fatalf("expected bob's title to win, got %+v", out.Title)
	}
	if out.ColumnID.Author != "did:carol" || out.ColumnID.Value != "doing" {
		t.Fatalf("expected carol's column move to win, got %+v", out.ColumnID)
	}
}

func TestResolveIsOrderIndependent(t *testing.T) {
	task := baseTask()
	ops := []types.Op{
		{Owner: "did:bob", Rkey: "o1", CreatedAt: ts(5), Delta: types.Delta{Title: strp("v1")}},
		{Owner: "did:carol", Rkey: "o2", CreatedAt: ts(7), Delta: types.Delta{Title: strp("v2")}},
		{Owner: "did:dan", Rkey: "o3", CreatedAt: ts(2), Delta: types.Delta{Title: strp("v0")}},
	}
	forward := Resolve(task, ops)

	reversed := make([]types.Op, len(ops))
	for i, op := range ops {
		reversed[len(ops)-1-i] = op
	}
	backward := Resolve(task, reversed)

	if forward.Title.Value != backward.Title.Value || forward.Title.Value != "v2" {
		t.Fatalf("expected order-independent fold to settle on v2, got forward=%q backward=%q", forward.Title.Value, backward.Title.Value)
	}
}

func TestResolveLegacyPositionDerivationIsStable(t *testing.T) {
	order := 3
	task := baseTask()
	task.Position = nil
	task.LegacyOrder = &order

	a := Resolve(task, nil)
	b := Resolve(task, nil)
	if a.Position.Value != b.Position.Value {
		t.Fatalf("expected deterministic legacy position derivation, got %q and %q", a.Position.Value, b.Position.Value)
	}
}

func TestResolvePositionFieldPreferredOverLegacyOrder(t *testing.T) {
	order := 3
	task := baseTask()
	task.Position = strp("V1")
	task.LegacyOrder = &order

	out := Resolve(task, nil)
	if out.Position.Value != "V1" {
		t.Fatalf("expected explicit Position to take precedence over LegacyOrder, got %q", out.Position.Value)
	}
}

func TestDeriveLegacyPositionOrderZeroIsSingleStep(t *testing.T) {
	p0, err := DeriveLegacyPosition(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	single, err := position.Between(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p0 != single {
		t.Fatalf("expected order 0 position %q to equal one allocator step %q", p0, single)
	}
	p1, err := DeriveLegacyPosition(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !(p0 < p1) {
		t.Fatalf("expected order 0 position %q < order 1 position %q", p0, p1)
	}
}

func TestResolveLastModifiedTracksMostRecentField(t *testing.T) {
	task := baseTask()
	op := types.Op{Owner: "did:bob", Rkey: "o1", CreatedAt: ts(20), Delta: types.Delta{ColumnID: strp("done")}}
	out := Resolve(task, []types.Op{op})

	if !out.LastModifiedAt.Equal(ts(20)) {
		t.Fatalf("expected last_modified_at to track the newest field write, got %v", out.LastModifiedAt)
	}
	if out.LastModifiedBy != "did:bob" {
		t.Fatalf("expected last_modified_by == bob, got %q", out.LastModifiedBy)
	}
}
