package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	isattypkg "github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/disnet/skyboard/internal/idgen"
	"github.com/disnet/skyboard/internal/materialize"
	"github.com/disnet/skyboard/internal/snapshot"
	"github.com/disnet/skyboard/internal/types"
)

// result is the JSON/terminal-rendering projection of materialize.Result.
type result = materialize.Result

// isatty reports whether stdout is an interactive terminal; non-terminal
// output (pipes, redirection) defaults to JSON the way the teacher's CLI
// auto-detects non-interactive output for its own --json fallback.
func isatty() bool {
	fd := os.Stdout.Fd()
	return isattypkg.IsTerminal(fd) || isattypkg.IsCygwinTerminal(fd)
}

// newRkeyFunc returns a fresh TID-style rkey generator for the Op Builder.
func newRkeyFunc() func() string {
	gen := idgen.NewGenerator()
	return gen.Next
}

func materializeSnapshot(snap snapshot.Snapshot, viewer types.Party, logger *slog.Logger) result {
	return materialize.Materialize(materialize.Input{
		Board:       snap.Board,
		Tasks:       snap.Tasks,
		Ops:         snap.Ops,
		OwnerTrusts: snap.Trusts,
		Approvals:   snap.Approvals,
		Viewer:      viewer,
		Logger:      logger,
	})
}

func emitJSON(w io.Writer, res result) error {
	view := struct {
		Columns          []jsonColumn     `json:"columns"`
		Orphaned         []jsonTask       `json:"orphaned"`
		PendingProposals []types.Op       `json:"pending_proposals"`
		UntrustedTasks   []types.Task     `json:"untrusted_tasks"`
	}{}
	for _, col := range res.Columns {
		view.Columns = append(view.Columns, jsonColumn{Column: col.Column, Tasks: toJSONTasks(col.Tasks)})
	}
	view.Orphaned = toJSONTasks(res.Orphaned)
	view.PendingProposals = res.PendingProposals
	view.UntrustedTasks = res.UntrustedTasks

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

type jsonColumn struct {
	Column types.Column `json:"column"`
	Tasks  []jsonTask   `json:"tasks"`
}

// jsonTask flattens an EffectiveTask into plain field values plus the
// record-wide last_modified_at/last_modified_by pair, so --json consumers do
// not have to unwrap FieldState[T]. Per-field timestamps and authors are not
// included.
type jsonTask struct {
	Owner          types.Party `json:"owner"`
	Rkey           string      `json:"rkey"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	ColumnID       string      `json:"column_id"`
	Position       string      `json:"position"`
	LabelIDs       []string    `json:"label_ids"`
	LastModifiedAt string      `json:"last_modified_at"`
	LastModifiedBy types.Party `json:"last_modified_by"`
}

func toJSONTasks(tasks []types.EffectiveTask) []jsonTask {
	out := make([]jsonTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, jsonTask{
			Owner:          t.Owner,
			Rkey:           t.Rkey,
			Title:          t.Title.Value,
			Description:    t.Description.Value,
			ColumnID:       t.ColumnID.Value,
			Position:       t.Position.Value,
			LabelIDs:       t.LabelIDs.Value,
			LastModifiedAt: t.LastModifiedAt.Format("2006-01-02T15:04:05.000Z"),
			LastModifiedBy: t.LastModifiedBy,
		})
	}
	return out
}

var (
	columnHeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	cardStyle         = lipgloss.NewStyle().PaddingLeft(2)
	orphanStyle       = lipgloss.NewStyle().Faint(true)
)

// renderBoard renders the materialized columns as a plain-text kanban
// board, using lipgloss styling when color is enabled.
func renderBoard(w io.Writer, res result, color bool) {
	if !color {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	for _, col := range res.Columns {
		fmt.Fprintln(w, columnHeaderStyle.Render(fmt.Sprintf("%s (%d)", col.Column.Name, len(col.Tasks))))
		for _, task := range col.Tasks {
			fmt.Fprintln(w, cardStyle.Render(fmt.Sprintf("[%s] %s", task.Rkey, task.Title.Value)))
		}
		fmt.Fprintln(w)
	}
	if len(res.Orphaned) > 0 {
		fmt.Fprintln(w, orphanStyle.Render(fmt.Sprintf("orphaned (%d)", len(res.Orphaned))))
		for _, task := range res.Orphaned {
			fmt.Fprintln(w, cardStyle.Render(fmt.Sprintf("[%s] %s (unknown column %q)", task.Rkey, task.Title.Value, task.ColumnID.Value)))
		}
	}
	if len(res.PendingProposals) > 0 {
		fmt.Fprintln(w, strings.TrimSpace(fmt.Sprintf("%d pending proposal(s) awaiting review", len(res.PendingProposals))))
	}
	if len(res.UntrustedTasks) > 0 {
		fmt.Fprintln(w, strings.TrimSpace(fmt.Sprintf("%d untrusted task(s) hidden from this view", len(res.UntrustedTasks))))
	}
}
