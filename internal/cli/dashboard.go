package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/tasklists/internal/core"
	"github.com/valter-silva-au/tasklists/internal/render"
	"github.com/valter-silva-au/tasklists/pkg/models"
)

// Focusable regions, in tab order.
const (
	focusLists = iota
	focusItems
	focusNewList
	focusNewItem
	focusCount
)

type dashboardKeyMap struct {
	Quit       key.Binding
	Next       key.Binding
	Prev       key.Binding
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	Toggle     key.Binding
	Delete     key.Binding
	DeleteList key.Binding
	NewList    key.Binding
	NewItem    key.Binding
	Filter     key.Binding
	FilterAll  key.Binding
	FilterAct  key.Binding
	FilterDone key.Binding
	Clear      key.Binding
	Escape     key.Binding
	Yes        key.Binding
}

func defaultDashboardKeys() dashboardKeyMap {
	return dashboardKeyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Next:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev pane")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Toggle:     key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "check")),
		Delete:     key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete task")),
		DeleteList: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete list")),
		NewList:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new list")),
		NewItem:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		Filter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		FilterAll:  key.NewBinding(key.WithKeys("1")),
		FilterAct:  key.NewBinding(key.WithKeys("2")),
		FilterDone: key.NewBinding(key.WithKeys("3")),
		Clear:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear completed")),
		Escape:     key.NewBinding(key.WithKeys("esc")),
		Yes:        key.NewBinding(key.WithKeys("y", "Y")),
	}
}

// screen is the render host for the dashboard. It keeps the latest fragment
// of each kind; model copies share it by pointer.
type screen struct {
	lists   render.ListPanel
	header  render.Header
	filters render.FilterBar
	items   render.ItemPanel

	// Pass counters, per fragment.
	listPasses int
	itemPasses int
}

func (s *screen) ShowLists(p render.ListPanel)   { s.lists = p; s.listPasses++ }
func (s *screen) ShowHeader(h render.Header)     { s.header = h }
func (s *screen) ShowFilters(f render.FilterBar) { s.filters = f }
func (s *screen) ShowItems(p render.ItemPanel)   { s.items = p; s.itemPasses++ }

type dashboardModel struct {
	ctrl   *core.Controller
	screen *screen
	keys   dashboardKeyMap

	focus      int
	listCursor int
	itemCursor int
	newList    textinput.Model
	newItem    textinput.Model

	confirmDelete bool
	confirming    bool
	prompt        string

	width  int
	height int

	// err is a storage fault; it ends the program.
	err error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	activeListStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	cursorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	doneStyle       = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("245"))
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	disabledStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	filterOnStyle   = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("141"))
	confirmStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Width = 40
	return ti
}

// newDashboardModel builds an unattached model; its screen is the view to
// hand to the controller before calling attach.
func newDashboardModel(confirmDelete bool) dashboardModel {
	m := dashboardModel{
		screen:        &screen{},
		keys:          defaultDashboardKeys(),
		focus:         focusLists,
		newList:       newInput("New list name"),
		newItem:       newInput("New task"),
		confirmDelete: confirmDelete,
	}
	return m
}

// attach binds the controller rendering into m.screen and performs the
// startup render.
func (m *dashboardModel) attach(ctrl *core.Controller) {
	m.ctrl = ctrl
	ctrl.Start()
	m.syncCursors()
}

func (m dashboardModel) Init() tea.Cmd {
	return nil
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.confirming {
			return m.updateConfirm(msg)
		}
		if m.focus == focusNewList || m.focus == focusNewItem {
			return m.updateInput(msg)
		}
		return m.updatePanels(msg)
	}

	return m, nil
}

func (m dashboardModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirming = false
	m.prompt = ""
	if key.Matches(msg, m.keys.Yes) {
		return m.apply(m.ctrl.DeleteActiveList(core.AlwaysConfirm))
	}
	return m, nil
}

func (m dashboardModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		return m.setFocus(focusLists)
	case key.Matches(msg, m.keys.Next):
		return m.setFocus(m.nextFocus(1))
	case key.Matches(msg, m.keys.Prev):
		return m.setFocus(m.nextFocus(-1))
	case key.Matches(msg, m.keys.Select):
		return m.submitInput()
	}

	var cmd tea.Cmd
	if m.focus == focusNewList {
		m.newList, cmd = m.newList.Update(msg)
	} else {
		m.newItem, cmd = m.newItem.Update(msg)
	}
	return m, cmd
}

func (m dashboardModel) submitInput() (tea.Model, tea.Cmd) {
	if m.focus == focusNewList {
		name := m.newList.Value()
		if strings.TrimSpace(name) == "" {
			return m, nil
		}
		if err := m.ctrl.AddList(name); err != nil {
			return m.apply(err)
		}
		m.newList.Reset()
		return m.apply(nil)
	}

	text := m.newItem.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	if err := m.ctrl.AddItem(text); err != nil {
		return m.apply(err)
	}
	m.newItem.Reset()
	return m.apply(nil)
}

func (m dashboardModel) updatePanels(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Escape):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		return m.setFocus(m.nextFocus(1))
	case key.Matches(msg, m.keys.Prev):
		return m.setFocus(m.nextFocus(-1))
	case key.Matches(msg, m.keys.NewList):
		return m.setFocus(focusNewList)
	case key.Matches(msg, m.keys.NewItem):
		if m.screen.header.InputDisabled {
			return m, nil
		}
		return m.setFocus(focusNewItem)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil
	case key.Matches(msg, m.keys.Filter):
		return m.apply(m.ctrl.SetFilter(nextFilter(m.ctrl.State().Filter)))
	case key.Matches(msg, m.keys.FilterAll):
		return m.apply(m.ctrl.SetFilter(models.FilterAll))
	case key.Matches(msg, m.keys.FilterAct):
		return m.apply(m.ctrl.SetFilter(models.FilterActive))
	case key.Matches(msg, m.keys.FilterDone):
		return m.apply(m.ctrl.SetFilter(models.FilterDone))
	case key.Matches(msg, m.keys.Clear):
		if m.screen.items.ClearDisabled {
			return m, nil
		}
		return m.apply(m.ctrl.ClearCompleted())
	case key.Matches(msg, m.keys.DeleteList):
		return m.beginDeleteList()
	}

	if m.focus == focusLists && key.Matches(msg, m.keys.Select) {
		if e, ok := m.selectedList(); ok {
			return m.apply(m.ctrl.SetActiveList(e.ID))
		}
		return m, nil
	}

	if m.focus == focusItems {
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Toggle), key.Matches(msg, m.keys.Select):
			return m.apply(m.ctrl.ToggleItem(row.ID))
		case key.Matches(msg, m.keys.Delete):
			return m.apply(m.ctrl.DeleteItem(row.ID))
		}
	}

	return m, nil
}

func (m dashboardModel) beginDeleteList() (tea.Model, tea.Cmd) {
	if m.screen.lists.DeleteDisabled {
		return m, nil
	}
	if !m.confirmDelete {
		return m.apply(m.ctrl.DeleteActiveList(core.AlwaysConfirm))
	}
	name := ""
	if l := m.ctrl.Store().ActiveList(); l != nil {
		name = l.Name
	}
	m.confirming = true
	m.prompt = render.DeleteListPrompt(name)
	return m, nil
}

// apply finishes an action: storage faults end the program, otherwise
// cursors are clamped to the freshly rendered fragments.
func (m dashboardModel) apply(err error) (tea.Model, tea.Cmd) {
	if err != nil {
		m.err = err
		return m, tea.Quit
	}
	m.syncCursors()
	if m.focus == focusNewItem && m.screen.header.InputDisabled {
		return m.setFocus(focusLists)
	}
	return m, nil
}

func (m dashboardModel) setFocus(f int) (tea.Model, tea.Cmd) {
	m.focus = f
	m.newList.Blur()
	m.newItem.Blur()
	switch f {
	case focusNewList:
		return m, m.newList.Focus()
	case focusNewItem:
		return m, m.newItem.Focus()
	}
	return m, nil
}

// nextFocus steps through the focus ring, skipping item entry while no list
// is selected.
func (m dashboardModel) nextFocus(step int) int {
	f := m.focus
	for range focusCount {
		f = (f + step + focusCount) % focusCount
		if f == focusNewItem && m.screen.header.InputDisabled {
			continue
		}
		return f
	}
	return m.focus
}

func (m *dashboardModel) moveCursor(delta int) {
	switch m.focus {
	case focusLists:
		m.listCursor = clamp(m.listCursor+delta, len(m.screen.lists.Lists))
	case focusItems:
		m.itemCursor = clamp(m.itemCursor+delta, len(m.screen.items.Rows))
	}
}

// syncCursors points the list cursor at the active list after a structural
// render and keeps the item cursor inside the visible rows.
func (m *dashboardModel) syncCursors() {
	for i, e := range m.screen.lists.Lists {
		if e.Active {
			m.listCursor = i
			break
		}
	}
	m.listCursor = clamp(m.listCursor, len(m.screen.lists.Lists))
	m.itemCursor = clamp(m.itemCursor, len(m.screen.items.Rows))
}

func (m dashboardModel) selectedList() (render.ListEntry, bool) {
	if m.listCursor < 0 || m.listCursor >= len(m.screen.lists.Lists) {
		return render.ListEntry{}, false
	}
	return m.screen.lists.Lists[m.listCursor], true
}

func (m dashboardModel) selectedRow() (render.ItemRow, bool) {
	if m.itemCursor < 0 || m.itemCursor >= len(m.screen.items.Rows) {
		return render.ItemRow{}, false
	}
	return m.screen.items.Rows[m.itemCursor], true
}

func clamp(v, n int) int {
	if n == 0 || v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

func nextFilter(f models.Filter) models.Filter {
	for i, candidate := range models.Filters {
		if candidate == f {
			return models.Filters[(i+1)%len(models.Filters)]
		}
	}
	return models.FilterAll
}

func (m dashboardModel) View() string {
	title := titleStyle.Render(" Task Lists ")

	listsPanel := m.renderListPanel()
	itemsPanel := m.renderItemPanel()

	listWidth := 28
	itemWidth := 48
	if m.width > 0 {
		avail := m.width - 6
		listWidth = max(avail/3, 20)
		itemWidth = max(avail-listWidth-2, 30)
	}
	listsPanel = m.applyPanelStyle(focusLists, listsPanel, listWidth)
	itemsPanel = m.applyPanelStyle(focusItems, itemsPanel, itemWidth)
	body := lipgloss.JoinHorizontal(lipgloss.Top, listsPanel, itemsPanel)

	var footer string
	if m.confirming {
		footer = confirmStyle.Render(m.prompt + " (y/n)")
	} else {
		footer = helpStyle.Render("tab: pane | j/k: move | enter: select | space: check | x: delete | a: add | n: new list | D: delete list | f/1-3: filter | c: clear done | q: quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, footer)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.focus == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderListPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Lists"))
	b.WriteString("\n\n")

	p := m.screen.lists
	if p.Placeholder != "" {
		b.WriteString(mutedStyle.Render(p.Placeholder))
		b.WriteString("\n")
	}
	for i, e := range p.Lists {
		cursor := "  "
		if m.focus == focusLists && i == m.listCursor {
			cursor = cursorStyle.Render("> ")
		}
		name := e.Name
		if e.Active {
			name = activeListStyle.Render("● " + name)
		} else {
			name = "  " + name
		}
		b.WriteString(cursor + name + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.newList.View())
	b.WriteString("\n")
	if p.DeleteDisabled {
		b.WriteString(disabledStyle.Render("D: delete list"))
	} else {
		b.WriteString(helpStyle.Render("D: delete list"))
	}
	return b.String()
}

func (m dashboardModel) renderItemPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.screen.header.Title))
	b.WriteString("\n")

	labels := make([]string, len(m.screen.filters.Options))
	for i, o := range m.screen.filters.Options {
		if o.Active {
			labels[i] = filterOnStyle.Render(o.Label)
		} else {
			labels[i] = mutedStyle.Render(o.Label)
		}
	}
	b.WriteString(strings.Join(labels, "  "))
	b.WriteString("\n\n")

	p := m.screen.items
	if p.Placeholder != "" {
		b.WriteString(mutedStyle.Render(p.Placeholder))
		b.WriteString("\n")
	}
	for i, r := range p.Rows {
		cursor := "  "
		if m.focus == focusItems && i == m.itemCursor {
			cursor = cursorStyle.Render("> ")
		}
		box := "[ ] "
		text := r.Text
		if r.Done {
			box = "[x] "
			text = doneStyle.Render(text)
		}
		b.WriteString(cursor + box + text + "  " + mutedStyle.Render("✕") + "\n")
	}

	b.WriteString("\n")
	if m.screen.header.InputDisabled {
		b.WriteString(disabledStyle.Render("select a list to add tasks"))
	} else {
		b.WriteString(m.newItem.View())
	}
	b.WriteString("\n")

	clearHint := helpStyle.Render("c: clear completed")
	if p.ClearDisabled {
		clearHint = disabledStyle.Render("c: clear completed")
	}
	b.WriteString(p.RemainingLabel + "  " + clearHint)
	return b.String()
}

var dashboardCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"dashboard"},
	Short:   "Interactive terminal UI for lists and tasks",
	Long: `Launch the interactive task-list manager.

Create lists, add and check tasks, filter by completion and delete
what you no longer need. Every change is saved immediately.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

func runDashboard() error {
	m := newDashboardModel(Config == nil || Config.UI.ConfirmDelete)
	ctrl, err := newController(m.screen)
	if err != nil {
		return err
	}
	defer ctrl.Close()
	m.attach(ctrl)

	var opts []tea.ProgramOption
	if Config == nil || Config.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(dashboardModel); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
