package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalNumberAndString(t *testing.T) {
	var items []Item
	raw := `[{"id":1,"description":"A","status":"open"},{"id":"abc","description":"B","status":"done"}]`

	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	require.Len(t, items, 2)
	assert.Equal(t, ID("1"), items[0].ID)
	assert.Equal(t, ID("abc"), items[1].ID)
}

func TestID_MarshalKeepsNumericShape(t *testing.T) {
	b, err := json.Marshal(Item{ID: "42", Description: "x", Status: StatusOpen})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":42,"description":"x","status":"open"}`, string(b))

	b, err = json.Marshal(Item{ID: "a-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a-1","description":"","status":""}`, string(b))
}

func TestID_UnmarshalRejectsObjects(t *testing.T) {
	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &id))
}

func TestStatus_Stage(t *testing.T) {
	tests := []struct {
		status Status
		want   Stage
	}{
		{"", StageOpen},
		{"open", StageOpen},
		{"in progress", StageInProgress},
		{"in-progress", StageInProgress},
		{"IN_PROGRESS", StageInProgress},
		{"done", StageDone},
		{"finished", StageDone},
		{"archived", StageUnknown},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Stage())
		})
	}
}

func TestStatus_LabelAndAction(t *testing.T) {
	assert.Equal(t, "open", Status("").Label())
	assert.Equal(t, "finished", Status("finished").Label())
	assert.Equal(t, "Start", StatusOpen.Action())
	assert.Equal(t, "Finish", Status("in progress").Action())
	assert.Equal(t, "Done", Status("done").Action())
}

func TestCountsAndIndexOf(t *testing.T) {
	items := []Item{
		{ID: "1", Status: "open"},
		{ID: "2", Status: "in progress"},
		{ID: "3", Status: "finished"},
		{ID: "4", Status: "weird"},
	}
	o, p, d := Counts(items)
	assert.Equal(t, 2, o)
	assert.Equal(t, 1, p)
	assert.Equal(t, 1, d)

	assert.Equal(t, 2, IndexOf(items, "3"))
	assert.Equal(t, -1, IndexOf(items, "9"))
}

func TestID_MarshalLeadingZeroAsString(t *testing.T) {
	b, err := json.Marshal(ID("007"))
	require.NoError(t, err)
	assert.Equal(t, `"007"`, string(b))
}
