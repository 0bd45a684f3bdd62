// Package opbuilder implements skyboard's Op Builder (§4.6): it produces
// well-formed Task and Op records for the sync layer to persist, using a
// monotone process-local clock and the fractional-index allocator to keep
// every emitted record well-ordered.
package opbuilder

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/disnet/skyboard/internal/position"
	"github.com/disnet/skyboard/internal/types"
)

// InvalidMove is returned when a move's requested neighbors are not a valid
// fractional-index interval (e.g. after >= before).
type InvalidMove struct {
	Err error
}

func (e *InvalidMove) Error() string { return fmt.Sprintf("opbuilder: invalid move: %v", e.Err) }
func (e *InvalidMove) Unwrap() error { return e.Err }

// Clock produces monotone non-decreasing timestamps within one process, per
// §4.6: "implementations should clamp backward clock jumps to previous + 1
// tick." It wraps a real wall clock by default but accepts an injected
// source for deterministic tests, the same seam the teacher uses around
// time.Now() throughout its command layer.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewClock returns a Clock backed by time.Now.
func NewClock() *Clock { return &Clock{now: time.Now} }

// NewClockWithSource returns a Clock backed by the given source, for tests.
func NewClockWithSource(now func() time.Time) *Clock { return &Clock{now: now} }

// Now returns the next timestamp, guaranteed to be strictly after the
// previous one returned by this Clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now()
	if !t.After(c.last) {
		t = c.last.Add(time.Millisecond)
	}
	c.last = t
	return t
}

// Builder holds the collaborators the Op Builder needs: a clock and an
// rkey generator. The zero value is not usable; construct with NewBuilder.
type Builder struct {
	clock    *Clock
	newRkey  func() string
	sessionID string
}

// NewBuilder constructs a Builder from the given clock and rkey generator
// (the CLI passes NewClock() and an internal/idgen TID generator). The
// builder's sessionID is a fresh process-local correlation id
// attached to logs around calls into this builder, not to the records
// themselves.
func NewBuilder(clock *Clock, newRkey func() string) *Builder {
	return &Builder{clock: clock, newRkey: newRkey, sessionID: uuid.NewString()}
}

// SessionID returns this builder's process-local correlation id.
func (b *Builder) SessionID() string { return b.sessionID }

// Clock returns the builder's monotone clock, for collaborators that need
// to stamp created_at on records the builder itself doesn't construct
// (e.g. Trust and Approval records).
func (b *Builder) Clock() *Clock { return b.clock }

// NewTask allocates a new rkey and position, and stamps created_at from the
// builder's clock.
func (b *Builder) NewTask(author types.Party, boardURI types.URI, columnID string, after, before *string, title, description string, labelIDs []string) (types.Task, error) {
	pos, err := position.Between(after, before)
	if err != nil {
		return types.Task{}, &InvalidMove{Err: err}
	}
	return types.Task{
		Owner:       author,
		Rkey:        b.newRkey(),
		BoardURI:    boardURI,
		Title:       title,
		Description: description,
		ColumnID:    columnID,
		Position:    &pos,
		LabelIDs:    labelIDs,
		CreatedAt:   b.clock.Now(),
	}, nil
}

// OpUpdate builds a sparse Op carrying the given delta against target.
func (b *Builder) OpUpdate(author types.Party, target types.EffectiveTask, boardURI types.URI, delta types.Delta) types.Op {
	return types.Op{
		Owner:         author,
		Rkey:          b.newRkey(),
		TargetTaskURI: target.URI(),
		BoardURI:      boardURI,
		Delta:         delta,
		CreatedAt:     b.clock.Now(),
	}
}

// OpMove allocates a new position between after and before and bundles it
// with the new column id into one Op, per §4.6.
func (b *Builder) OpMove(author types.Party, target types.EffectiveTask, boardURI types.URI, newColumnID string, after, before *string) (types.Op, error) {
	pos, err := position.Between(after, before)
	if err != nil {
		return types.Op{}, &InvalidMove{Err: err}
	}
	delta := types.Delta{ColumnID: &newColumnID, Position: &pos}
	return b.OpUpdate(author, target, boardURI, delta), nil
}
