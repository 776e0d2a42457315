// Package tui is the interactive list. Every action runs one sync call in a
// tea.Cmd; its completion message re-renders from the shared State.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/todosync"
	"github.com/Makepad-fr/tada/internal/ui"
)

type mode int

const (
	browsing mode = iota
	adding
	editing
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	item model.Item
}

func (i listItem) Title() string       { return i.item.Description }
func (i listItem) Description() string { return i.item.Status.Label() }
func (i listItem) FilterValue() string { return i.item.Description }

// syncedMsg reports a finished sync call. err is already logged.
type syncedMsg struct {
	op  string
	err error
}

// fetchedMsg carries the fresh copy of an item about to be edited.
type fetchedMsg struct {
	item model.Item
	err  error
}

// Custom delegate to control how items render (single line)
type itemDelegate struct {
	styles ui.Styles
}

func (d itemDelegate) Height() int                         { return 1 }
func (d itemDelegate) Spacing() int                        { return 0 }
func (d itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	stage := it.item.Status.Stage()
	box, _ := ui.Current().Box(stage)

	boxStyled := d.styles.Pending.Render(box)
	text := it.item.Description
	switch stage {
	case model.StageInProgress:
		boxStyled = d.styles.Progress.Render(box)
	case model.StageDone:
		boxStyled = d.styles.Success.Render(box)
		text = d.styles.Done.Render(text)
	case model.StageUnknown:
		boxStyled = d.styles.Muted.Render(box)
	}

	line := fmt.Sprintf("%s %s  %s", boxStyled, text, d.styles.Muted.Render(it.item.Status.Label()))
	prefix := "  "
	if index == m.Index() {
		prefix = d.styles.Selected.Render(">") + " "
		if stage != model.StageDone {
			line += d.styles.Help.Render("  (space: " + it.item.Status.Action() + ")")
		}
	}
	fmt.Fprintln(w, prefix+line)
}

var keys = struct {
	add, edit, advance, remove, refresh key.Binding
}{
	add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	advance: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "advance")),
	remove:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
}

// Model is the Bubble Tea model. It holds no items of its own; the list is
// rebuilt from the State snapshot after every sync call.
type Model struct {
	ctx    context.Context
	syncer *todosync.Syncer
	state  *todosync.State
	styles ui.Styles

	list  list.Model
	input textinput.Model
	mode  mode

	editID   model.ID
	inputErr string // empty add/edit input
	status   string // last failed operation

	width, height int
}

func New(ctx context.Context, syncer *todosync.Syncer) Model {
	styles := ui.LipglossStyles()

	l := list.New(nil, itemDelegate{styles: styles}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = styles.Title
	l.Styles.HelpStyle = styles.Help
	l.Styles.PaginationStyle = styles.Help
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")
	// d pages forward by default; here it deletes
	l.KeyMap.NextPage.SetKeys("right", "l", "pgdown", "f")

	extra := func() []key.Binding {
		return []key.Binding{keys.add, keys.edit, keys.advance, keys.remove, keys.refresh}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := Model{
		ctx:    ctx,
		syncer: syncer,
		state:  todosync.NewState(),
		styles: styles,
		list:   l,
		input:  ti,
		width:  80,
		height: 24,
	}
	m.resize()
	m.rebuild()
	return m
}

// Run starts the program on the alternate screen until the user quits.
func Run(ctx context.Context, syncer *todosync.Syncer) error {
	p := tea.NewProgram(New(ctx, syncer), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd { return m.refresh() }

// ---------------------------------------------------
// Sync commands
// ---------------------------------------------------

func (m Model) refresh() tea.Cmd {
	ctx, s, st := m.ctx, m.syncer, m.state
	return func() tea.Msg {
		_, err := s.ListTodos(ctx, st)
		return syncedMsg{op: "refresh", err: err}
	}
}

func (m Model) create(description string) tea.Cmd {
	ctx, s, st := m.ctx, m.syncer, m.state
	return func() tea.Msg {
		_, err := s.CreateTodo(ctx, st, description)
		return syncedMsg{op: "add", err: err}
	}
}

func (m Model) advance(id model.ID) tea.Cmd {
	ctx, s, st := m.ctx, m.syncer, m.state
	return func() tea.Msg {
		return syncedMsg{op: "advance", err: s.AdvanceStatus(ctx, st, id)}
	}
}

func (m Model) update(id model.ID, description string) tea.Cmd {
	ctx, s, st := m.ctx, m.syncer, m.state
	return func() tea.Msg {
		return syncedMsg{op: "edit", err: s.UpdateDescription(ctx, st, id, description)}
	}
}

func (m Model) remove(id model.ID) tea.Cmd {
	ctx, s, st := m.ctx, m.syncer, m.state
	return func() tea.Msg {
		return syncedMsg{op: "delete", err: s.DeleteTodo(ctx, st, id)}
	}
}

func (m Model) fetch(id model.ID) tea.Cmd {
	ctx, s := m.ctx, m.syncer
	return func() tea.Msg {
		it, err := s.FetchTodo(ctx, id)
		return fetchedMsg{item: it, err: err}
	}
}

// ---------------------------------------------------
// Update
// ---------------------------------------------------

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case syncedMsg:
		if msg.err != nil {
			m.status = msg.op + " failed: " + msg.err.Error()
		} else {
			m.status = ""
		}
		m.resize()
		return m, m.rebuild()

	case fetchedMsg:
		// a form opened meanwhile keeps its input
		if m.mode != browsing {
			return m, nil
		}
		if msg.err != nil {
			m.status = "edit failed: " + msg.err.Error()
			return m, nil
		}
		m.status = ""
		m.mode = editing
		m.editID = msg.item.ID
		m.inputErr = ""
		m.input.SetValue(msg.item.Description)
		m.input.CursorEnd()
		m.input.Placeholder = "Edit description..."
		m.input.Focus()
		m.resize()
		return m, nil
	}

	if m.mode != browsing {
		return m.updateInput(msg)
	}

	k, isKey := msg.(tea.KeyMsg)
	if !isKey || m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case k.String() == "ctrl+c":
		return m, tea.Quit
	case k.String() == "q", k.String() == "esc" && m.list.FilterState() == list.Unfiltered:
		return m, tea.Quit
	case key.Matches(k, keys.add):
		m.mode = adding
		m.inputErr = ""
		m.input.SetValue("")
		m.input.Placeholder = "New item description..."
		m.input.Focus()
		m.resize()
		return m, nil
	case key.Matches(k, keys.refresh):
		return m, m.refresh()
	}

	if it, ok := m.list.SelectedItem().(listItem); ok {
		switch {
		case key.Matches(k, keys.edit):
			return m, m.fetch(it.item.ID)
		case key.Matches(k, keys.advance):
			return m, m.advance(it.item.ID)
		case key.Matches(k, keys.remove):
			return m, m.remove(it.item.ID)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			text := m.input.Value()
			if strings.TrimSpace(text) == "" {
				m.inputErr = "Description cannot be empty"
				return m, nil
			}
			var cmd tea.Cmd
			if m.mode == adding {
				cmd = m.create(text)
			} else {
				cmd = m.update(m.editID, text)
			}
			m.closeInput()
			return m, cmd
		case "esc":
			m.closeInput()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.mode = browsing
	m.editID = ""
	m.inputErr = ""
	m.input.SetValue("")
	m.input.Blur()
	m.resize()
}

// rebuild replaces the list rows with the current snapshot.
func (m *Model) rebuild() tea.Cmd {
	items := m.state.Snapshot()
	li := make([]list.Item, 0, len(items))
	for _, it := range items {
		li = append(li, listItem{item: it})
	}
	m.list.Title = m.header(items)
	return m.list.SetItems(li)
}

func (m *Model) header(items []model.Item) string {
	t := ui.Current()
	open, inProgress, done := model.Counts(items)
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d  %s %d",
		"Todos",
		m.styles.Pending.Render(t.BoxOpen), open,
		m.styles.Progress.Render(t.BoxProgress), inProgress,
		m.styles.Success.Render(t.BoxDone), done,
		m.styles.Accent.Render("Total"), len(items),
	)
}

func (m *Model) resize() {
	h := m.height - 4
	if m.mode != browsing {
		h -= 4
	}
	if m.status != "" {
		h--
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
}

// ---------------------------------------------------
// View
// ---------------------------------------------------

func (m Model) View() string {
	content := m.list.View()
	if m.mode != browsing {
		title := "Add new item"
		if m.mode == editing {
			title = "Edit item"
		}
		if m.inputErr != "" {
			title += ": " + m.styles.Error.Render(m.inputErr)
		}
		content += "\n" + m.styles.Input.Render(title+"\n"+m.input.View())
	}
	if m.status != "" {
		content += "\n" + m.styles.Error.Render(m.status)
	}
	return m.styles.Frame.Render(content)
}
