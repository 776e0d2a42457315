package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is the server-assigned identifier of a todo. It is opaque to the
// client: the store may send it as a JSON number or a string.
type ID string

func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts both `7` and `"7"`.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes integer ids as numbers so they round-trip with
// stores that use numeric keys.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// MarshalYAML mirrors MarshalJSON for `tada ls -o yaml`.
func (id ID) MarshalYAML() (any, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return n, nil
	}
	return string(id), nil
}

// Status is whatever the server reports. The client never derives the
// next value from it; Stage only classifies it for display.
type Status string

// StatusOpen is the initial status the store gives a new item.
const StatusOpen Status = "open"

// Stage buckets a Status for rendering.
type Stage int

const (
	StageUnknown Stage = iota
	StageOpen
	StageInProgress
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageOpen:
		return "open"
	case StageInProgress:
		return "in progress"
	case StageDone:
		return "done"
	}
	return "unknown"
}

func (s Status) Stage() Stage {
	switch strings.ToLower(strings.TrimSpace(string(s))) {
	case "", "open":
		return StageOpen
	case "in progress", "in-progress", "in_progress":
		return StageInProgress
	case "done", "finished":
		return StageDone
	}
	return StageUnknown
}

// Label is the text shown in list rows. A missing status reads as open.
func (s Status) Label() string {
	if strings.TrimSpace(string(s)) == "" {
		return string(StatusOpen)
	}
	return string(s)
}

// Action names what "advance" will do next for an item in this stage.
func (s Status) Action() string {
	switch s.Stage() {
	case StageOpen:
		return "Start"
	case StageInProgress:
		return "Finish"
	case StageDone:
		return "Done"
	}
	return "Advance"
}

// Item is the domain model for a todo entry as served by the remote store.
type Item struct {
	ID          ID     `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
	Status      Status `json:"status" yaml:"status"`
}

// IndexOf returns the position of id in items, or -1.
func IndexOf(items []Item, id ID) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Counts tallies items per stage; unknown statuses count as open.
func Counts(items []Item) (open, inProgress, done int) {
	for _, it := range items {
		switch it.Status.Stage() {
		case StageInProgress:
			inProgress++
		case StageDone:
			done++
		default:
			open++
		}
	}
	return
}
