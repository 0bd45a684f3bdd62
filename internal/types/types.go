// Package types defines the Skyboard record model: the Board, Task, Op, and
// Trust collections plus the peripheral Comment, Approval, and Reaction
// records, and the EffectiveTask produced by the LWW field resolver.
//
// Records cross repository boundaries as plain structured documents; this
// package is the in-memory shape that the sync layer decodes them into
// before handing them to the materialization core.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Party is an opaque participant identifier, typically a DID.
type Party string

// Collection is one of the record kinds the core understands.
type Collection string

const (
	CollectionBoard    Collection = "board"
	CollectionTask     Collection = "task"
	CollectionOp       Collection = "op"
	CollectionTrust    Collection = "trust"
	CollectionComment  Collection = "comment"
	CollectionApproval Collection = "approval"
	CollectionReaction Collection = "reaction"
)

// URI is a record URI of the form at://<party>/<collection>/<rkey>.
type URI string

// BuildURI constructs a record URI from its parts.
func BuildURI(owner Party, collection Collection, rkey string) URI {
	return URI(fmt.Sprintf("at://%s/%s/%s", owner, collection, rkey))
}

// Parse splits a URI into its owner, collection, and rkey parts.
func (u URI) Parse() (owner Party, collection Collection, rkey string, err error) {
	s := strings.TrimPrefix(string(u), "at://")
	if s == string(u) {
		return "", "", "", fmt.Errorf("types: uri %q missing at:// scheme", u)
	}
	parts := strings.SplitN(s, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("types: uri %q is not at://<party>/<collection>/<rkey>", u)
	}
	return Party(parts[0]), Collection(parts[1]), parts[2], nil
}

// Column is one lane of a Board, identified stably by ID and ordered by
// Order relative to its siblings.
type Column struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Order int    `json:"order" yaml:"order"`
}

// Label is a board-scoped tag that Tasks may reference by ID.
type Label struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Board is the write-once anchor for a kanban board. Its column and label
// configuration is never mutated by Ops and does not participate in LWW.
type Board struct {
	Owner     Party     `json:"owner" yaml:"owner"`
	Rkey      string    `json:"rkey" yaml:"rkey"`
	Columns   []Column  `json:"columns" yaml:"columns"`
	Labels    []Label   `json:"labels,omitempty" yaml:"labels,omitempty"`
	Open      bool      `json:"open" yaml:"open"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// URI returns the board's canonical record URI.
func (b Board) URI() URI { return BuildURI(b.Owner, CollectionBoard, b.Rkey) }

// ColumnByID returns the column with the given id, if the board declares one.
func (b Board) ColumnByID(id string) (Column, bool) {
	for _, c := range b.Columns {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}

// Task is the initial, never-rewritten state of a task card. All subsequent
// changes are carried by Op records that target this Task's URI.
type Task struct {
	Owner       Party     `json:"owner" yaml:"owner"`
	Rkey        string    `json:"rkey" yaml:"rkey"`
	BoardURI    URI       `json:"board_uri" yaml:"board_uri"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	ColumnID    string    `json:"column_id" yaml:"column_id"`
	// Position is the fractional-index string for this task. Pre-fractional-
	// index records may carry LegacyOrder instead; exactly one of the two is
	// authoritative (Position, when present).
	Position   *string   `json:"position,omitempty" yaml:"position,omitempty"`
	LegacyOrder *int     `json:"order,omitempty" yaml:"order,omitempty"`
	LabelIDs   []string  `json:"label_ids,omitempty" yaml:"label_ids,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// URI returns the task's canonical record URI.
func (t Task) URI() URI { return BuildURI(t.Owner, CollectionTask, t.Rkey) }

// Key uniquely identifies a Task for deduplication purposes.
type Key struct {
	Owner Party
	Rkey  string
}

// Key returns the (owner, rkey) identity of this task.
func (t Task) Key() Key { return Key{Owner: t.Owner, Rkey: t.Rkey} }

// MutableField is one of the closed set of Task fields an Op may carry.
type MutableField string

const (
	FieldTitle       MutableField = "title"
	FieldDescription MutableField = "description"
	FieldColumnID    MutableField = "column_id"
	FieldPosition    MutableField = "position"
	FieldLabelIDs    MutableField = "label_ids"
)

// MutableFieldOrder enumerates the mutable fields in the order used to break
// last_modified_by ties (§4.4 step 4).
var MutableFieldOrder = []MutableField{
	FieldTitle, FieldDescription, FieldColumnID, FieldPosition, FieldLabelIDs,
}

// Delta is the sparse field set an Op carries. A nil pointer/slice means the
// field is absent and must not touch the corresponding effective value; an
// empty string or empty-but-non-nil slice is a present value of "".
type Delta struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	ColumnID    *string   `json:"column_id,omitempty"`
	Position    *string   `json:"position,omitempty"`
	LabelIDs    *[]string `json:"label_ids,omitempty"`
}

// Has reports whether the delta carries a value for the given field.
func (d Delta) Has(f MutableField) bool {
	switch f {
	case FieldTitle:
		return d.Title != nil
	case FieldDescription:
		return d.Description != nil
	case FieldColumnID:
		return d.ColumnID != nil
	case FieldPosition:
		return d.Position != nil
	case FieldLabelIDs:
		return d.LabelIDs != nil
	default:
		return false
	}
}

// Op is a sparse, cross-repository mutation targeting a Task. Every edit —
// including self-edits by the task's own author — is carried by an Op; the
// base Task record is never rewritten.
type Op struct {
	Owner         Party     `json:"owner" yaml:"owner"`
	Rkey          string    `json:"rkey" yaml:"rkey"`
	TargetTaskURI URI       `json:"target_task_uri" yaml:"target_task_uri"`
	BoardURI      URI       `json:"board_uri" yaml:"board_uri"`
	Delta         Delta     `json:"delta" yaml:"delta"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// URI returns the op's canonical record URI.
func (o Op) URI() URI { return BuildURI(o.Owner, CollectionOp, o.Rkey) }

// Trust is a board-owner-asserted grant that makes another party's Ops on
// that board eligible to merge.
type Trust struct {
	Owner        Party     `json:"owner" yaml:"owner"` // must equal the board owner to take effect
	TrustedParty Party     `json:"trusted_party" yaml:"trusted_party"`
	BoardURI     URI       `json:"board_uri" yaml:"board_uri"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// Approval grants visibility to a specific Task or Comment URI on an open
// board, without promoting its author to trusted.
type Approval struct {
	Owner     Party     `json:"owner" yaml:"owner"` // must equal the board owner to take effect
	TargetURI URI       `json:"target_uri" yaml:"target_uri"`
	BoardURI  URI       `json:"board_uri" yaml:"board_uri"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Comment is a peripheral record; the core only needs enough of its shape to
// apply the visibility predicate to it.
type Comment struct {
	Owner     Party     `json:"owner" yaml:"owner"`
	Rkey      string    `json:"rkey" yaml:"rkey"`
	TargetURI URI       `json:"target_uri" yaml:"target_uri"`
	Body      string    `json:"body" yaml:"body"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// URI returns the comment's canonical record URI.
func (c Comment) URI() URI { return BuildURI(c.Owner, CollectionComment, c.Rkey) }

// Reaction is a peripheral record; the core only needs enough of its shape
// to apply the visibility predicate to it.
type Reaction struct {
	Owner     Party     `json:"owner" yaml:"owner"`
	Rkey      string    `json:"rkey" yaml:"rkey"`
	TargetURI URI       `json:"target_uri" yaml:"target_uri"`
	Emoji     string    `json:"emoji" yaml:"emoji"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// URI returns the reaction's canonical record URI.
func (r Reaction) URI() URI { return BuildURI(r.Owner, CollectionReaction, r.Rkey) }

// FieldState carries one mutable field's effective value together with the
// provenance that produced it: the op (or base task) timestamp and author
// that won the LWW fold.
type FieldState[T any] struct {
	Value     T
	Timestamp time.Time
	Author    Party
}

// EffectiveTask is the result of folding a base Task with its applied Ops.
type EffectiveTask struct {
	Owner    Party
	Rkey     string
	BoardURI URI

	Title       FieldState[string]
	Description FieldState[string]
	ColumnID    FieldState[string]
	Position    FieldState[string]
	LabelIDs    FieldState[[]string]

	CreatedAt      time.Time
	LastModifiedAt time.Time
	LastModifiedBy Party
}

// URI returns the effective task's canonical record URI.
func (e EffectiveTask) URI() URI { return BuildURI(e.Owner, CollectionTask, e.Rkey) }

// Key returns the (owner, rkey) identity of this effective task.
func (e EffectiveTask) Key() Key { return Key{Owner: e.Owner, Rkey: e.Rkey} }
