package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

const maxDescription = 80

type listDoc struct {
	Todos []model.Item `json:"todos" yaml:"todos"`
}

func writeJSON(w io.Writer, items []model.Item) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(listDoc{Todos: items})
}

func writeYAML(w io.Writer, items []model.Item) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(listDoc{Todos: items}); err != nil {
		return err
	}
	return enc.Close()
}

// panelLines builds the `tada ls` table: header counts, progress, rows.
func panelLines(items []model.Item, group bool) []string {
	t := ui.Current()
	open, inProgress, done := model.Counts(items)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d  %s %d",
		ui.C(t.Title, "Todos"),
		ui.C(t.Pending, t.BoxOpen), open,
		ui.C(t.Progress, t.BoxProgress), inProgress,
		ui.C(t.Success, t.BoxDone), done,
		ui.C(t.Accent, "Total"), len(items),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, ui.C(t.Muted, ui.ProgressBar(done, len(items), 28)))
	lines = append(lines, "")

	rows := ui.Rows(items)
	if group {
		lines = append(lines, groupLines(rows)...)
	} else {
		lines = append(lines, flatLines(rows)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Muted, "Tip: move an item along with `tada advance <index>`"))
	return lines
}

func flatLines(rows []ui.Row) []string {
	t := ui.Current()
	if len(rows) == 0 {
		return []string{ui.C(t.Muted, "no items")}
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		box, color := t.Box(r.Stage)
		out = append(out, fmt.Sprintf("%s %s %s  %s",
			ui.C("\033[2m", fmt.Sprintf("%2s.", r.Index)),
			ui.C(color, box),
			ui.Truncate(r.Description, maxDescription),
			ui.C(t.Muted, r.Status)))
	}
	return out
}

// groupLines splits rows by stage. Indexes stay those of the full list.
func groupLines(rows []ui.Row) []string {
	var open, inProgress, done []ui.Row
	for _, r := range rows {
		switch r.Stage {
		case model.StageInProgress:
			inProgress = append(inProgress, r)
		case model.StageDone:
			done = append(done, r)
		default:
			open = append(open, r)
		}
	}

	t := ui.Current()
	var lines []string
	for i, g := range []struct {
		title string
		rows  []ui.Row
	}{
		{"Open", open},
		{"In progress", inProgress},
		{"Done", done},
	} {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, ui.C(t.Accent, g.title))
		if len(g.rows) == 0 {
			lines = append(lines, ui.C(t.Muted, "(none)"))
			continue
		}
		lines = append(lines, flatLines(g.rows)...)
	}
	return lines
}
