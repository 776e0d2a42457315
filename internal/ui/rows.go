package ui

import (
	"strconv"

	"github.com/Makepad-fr/tada/internal/model"
)

// Row is one rendered line of the todo table: the 1-based position in the
// snapshot, the description and the status label.
type Row struct {
	Index       string
	Description string
	Status      string
	Stage       model.Stage
}

// Rows maps a snapshot to table rows in snapshot order.
func Rows(items []model.Item) []Row {
	out := make([]Row, 0, len(items))
	for i, it := range items {
		out = append(out, Row{
			Index:       strconv.Itoa(i + 1),
			Description: it.Description,
			Status:      it.Status.Label(),
			Stage:       it.Status.Stage(),
		})
	}
	return out
}

// Truncate shortens s to at most n cells, marking the cut with "...".
func Truncate(s string, n int) string {
	if n <= 3 || visibleWidth(s) <= n {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && visibleWidth(string(r))+3 > n {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
