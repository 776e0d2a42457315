package tui

import (
	"context"
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/remote"
	"github.com/Makepad-fr/tada/internal/storetest"
	"github.com/Makepad-fr/tada/internal/todosync"
)

func setup(t *testing.T) (*storetest.Store, Model) {
	t.Helper()
	store := storetest.New(
		model.Item{ID: "1", Description: "A", Status: "open"},
		model.Item{ID: "2", Description: "B", Status: "done"},
	)
	t.Cleanup(store.Close)
	client, err := remote.New(store.URL())
	require.NoError(t, err)

	m := New(context.Background(), todosync.New(client, nil))
	return store, settle(t, m, m.Init())
}

func press(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// settle runs a sync command and feeds its message back.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())
	return m
}

func rows(m Model) []model.Item {
	var out []model.Item
	for _, li := range m.list.Items() {
		out = append(out, li.(listItem).item)
	}
	return out
}

func TestInitListsStore(t *testing.T) {
	store, m := setup(t)

	assert.Equal(t, store.Items(), rows(m))
	assert.Contains(t, m.list.Title, "Total 2")
	assert.Empty(t, m.status)
}

func TestAdd(t *testing.T) {
	store, m := setup(t)

	m, _ = step(t, m, press("a"))
	require.Equal(t, adding, m.mode)
	m, _ = step(t, m, press("Buy milk"))
	m, cmd := step(t, m, press("enter"))
	assert.Equal(t, browsing, m.mode)
	m = settle(t, m, cmd)

	got := rows(m)
	require.Len(t, got, 3)
	assert.Equal(t, "Buy milk", got[2].Description)
	assert.Equal(t, model.StatusOpen, got[2].Status)
	assert.Equal(t, 1, store.Count(http.MethodPost))
	assert.Equal(t, 1, store.Count(http.MethodGet), "no refetch after create")
}

func TestAdd_EmptyShowsInlineError(t *testing.T) {
	store, m := setup(t)

	m, _ = step(t, m, press("a"))
	m, _ = step(t, m, press("   "))
	m, cmd := step(t, m, press("enter"))

	assert.Nil(t, cmd)
	assert.Equal(t, adding, m.mode)
	assert.Contains(t, m.View(), "Description cannot be empty")
	assert.Equal(t, 0, store.Count(http.MethodPost))

	m, _ = step(t, m, press("esc"))
	assert.Equal(t, browsing, m.mode)
}

func TestAdvanceSelected(t *testing.T) {
	store, m := setup(t)

	m, cmd := step(t, m, press(" "))
	m = settle(t, m, cmd)

	assert.Equal(t, model.Status("in progress"), rows(m)[0].Status)
	assert.Equal(t, store.Items(), rows(m))
	assert.Equal(t, 1, store.Count(http.MethodPut))
}

func TestDeleteSelected(t *testing.T) {
	store, m := setup(t)

	m, cmd := step(t, m, press("d"))
	m = settle(t, m, cmd)

	assert.Equal(t, []model.Item{{ID: "2", Description: "B", Status: "done"}}, rows(m))
	assert.Equal(t, store.Items(), rows(m))
}

func TestDeleteFailureKeepsRowAndShowsStatus(t *testing.T) {
	store, m := setup(t)
	store.Fail(http.MethodDelete, "", http.StatusInternalServerError, 1)

	m, cmd := step(t, m, press("d"))
	m = settle(t, m, cmd)

	assert.Len(t, rows(m), 2)
	assert.Contains(t, m.status, "delete failed")
	assert.Contains(t, m.View(), "delete failed")

	m, cmd = step(t, m, press("r"))
	m = settle(t, m, cmd)
	assert.Empty(t, m.status)
}

func TestEditFetchesFirst(t *testing.T) {
	store, m := setup(t)
	store.SetItems(
		model.Item{ID: "1", Description: "A changed elsewhere", Status: "open"},
		model.Item{ID: "2", Description: "B", Status: "done"},
	)

	m, cmd := step(t, m, press("e"))
	m = settle(t, m, cmd)
	require.Equal(t, editing, m.mode)
	assert.Equal(t, "A changed elsewhere", m.input.Value())
	assert.Equal(t, model.ID("1"), m.editID)

	m.input.SetValue("A2")
	m, cmd = step(t, m, press("enter"))
	m = settle(t, m, cmd)

	assert.Equal(t, "A2", rows(m)[0].Description)
	assert.Equal(t, 1, store.Count(http.MethodPatch))
}

func TestLateFetchKeepsOpenAddForm(t *testing.T) {
	_, m := setup(t)

	m, fetch := step(t, m, press("e"))
	m, _ = step(t, m, press("a"))
	m, _ = step(t, m, press("new"))
	m = settle(t, m, fetch)

	assert.Equal(t, adding, m.mode)
	assert.Equal(t, "new", m.input.Value())
	assert.Empty(t, m.editID)
}

func TestAddSendsTextAsTyped(t *testing.T) {
	store, m := setup(t)

	m, _ = step(t, m, press("a"))
	m, _ = step(t, m, press(" milk "))
	m, cmd := step(t, m, press("enter"))
	settle(t, m, cmd)

	assert.Equal(t, " milk ", store.Items()[2].Description)
}

func TestEditFetchFailure(t *testing.T) {
	store, m := setup(t)
	store.Fail(http.MethodGet, "/todo/1", http.StatusNotFound, 1)

	m, cmd := step(t, m, press("e"))
	m = settle(t, m, cmd)

	assert.Equal(t, browsing, m.mode)
	assert.Contains(t, m.status, "edit failed")
}

func TestRefreshPicksUpOtherWriters(t *testing.T) {
	store, m := setup(t)
	store.SetItems(model.Item{ID: "9", Description: "Z", Status: "finished"})

	m, cmd := step(t, m, press("r"))
	m = settle(t, m, cmd)

	assert.Equal(t, []model.Item{{ID: "9", Description: "Z", Status: "finished"}}, rows(m))
	assert.Contains(t, m.list.Title, "Total 1")
}

func TestQuit(t *testing.T) {
	_, m := setup(t)

	_, cmd := step(t, m, press("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestWindowSize(t *testing.T) {
	_, m := setup(t)

	m, cmd := step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Nil(t, cmd)
	assert.Equal(t, 116, m.list.Width())
}
