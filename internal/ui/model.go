// Package ui is the terminal tree view. Its Bubble Tea loop is the consumer
// that drains the scan: every tick moves newly walked entries into the tree
// before the frame is drawn.
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hayeah/aicontent/internal/export"
	"github.com/hayeah/aicontent/internal/metrics"
	"github.com/hayeah/aicontent/internal/pathindex"
	"github.com/hayeah/aicontent/internal/selection"
	"github.com/hayeah/aicontent/internal/session"
	"github.com/hayeah/aicontent/internal/tree"
)

// TickInterval is how often the scan queue is drained while scanning.
const TickInterval = 50 * time.Millisecond

// Action is what the user asked for when leaving the UI.
type Action int

const (
	ActionNone  Action = iota // quit
	ActionPrint               // print the export to stdout
)

var (
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dirStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	partialStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	statusStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the Bubble Tea model of the tree view.
type Model struct {
	session *session.Session
	sink    export.Sink

	keys   keyMap
	help   help.Model
	filter textinput.Model
	// filtering is true while the filter input has focus
	filtering bool

	viewport viewport.Model
	height   int
	ready    bool
	// ticking is true while a tick is in flight; at most one chain runs
	ticking bool

	rows     []row
	cursor   int
	expanded map[pathindex.Path]bool
	states   map[pathindex.Path]selection.State

	selectedCount int
	selectedBytes int64
	message       string
	action        Action
}

// New returns a Model over a started session. sink receives copies.
func New(s *session.Session, sink export.Sink) Model {
	ti := textinput.New()
	ti.Placeholder = "Type to fuzzy-search..."
	ti.Prompt = "/ "
	ti.CharLimit = 0

	m := Model{
		session:  s,
		sink:     sink,
		keys:     defaultKeyMap(),
		help:     help.New(),
		filter:   ti,
		viewport: viewport.New(0, 0),
		expanded: make(map[pathindex.Path]bool),
		ticking:  true,
	}
	m.refresh()
	return m
}

// Action is the exit action once the program has finished.
func (m Model) Action() Action {
	return m.action
}

// Init starts draining the scan.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles ticks, resizes and keys.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		res := m.session.Tick()
		if res.Changed() {
			m.refresh()
		}
		if m.session.Scanning() {
			return m, tick()
		}
		m.ticking = false
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.viewport.Width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.render()
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.refresh()
		return m, nil
	case "enter":
		m.filtering = false
		m.filter.Blur()
		m.render()
		return m, nil
	case "up", "down":
		m.filtering = false
		m.filter.Blur()
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.cursor = 0
	m.refresh()
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Expand):
		if n := m.current(); n != nil && n.IsDir {
			m.expanded[n.Path] = true
			m.refresh()
		}

	case key.Matches(msg, m.keys.Collapse):
		m.collapse()

	case key.Matches(msg, m.keys.Toggle):
		if n := m.current(); n != nil {
			m.session.Toggle(n.Path, m.states[n.Path] != selection.Full)
			m.refresh()
		}

	case key.Matches(msg, m.keys.All):
		m.session.SetAll(!m.allSelected())
		m.refresh()

	case key.Matches(msg, m.keys.Print):
		m.action = ActionPrint
		return m, tea.Quit

	case key.Matches(msg, m.keys.Copy):
		m.copy()

	case key.Matches(msg, m.keys.Rescan):
		if err := m.session.Rescan(); err != nil {
			m.message = errorStyle.Render(err.Error())
			return m, nil
		}
		m.cursor = 0
		m.refresh()
		if m.ticking {
			return m, nil
		}
		m.ticking = true
		return m, tick()

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filter.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Clear):
		m.filter.SetValue("")
		m.refresh()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	m.render()
	return m, nil
}

// collapse closes the directory under the cursor, or moves to the parent
// when the cursor is on a file or a closed directory.
func (m *Model) collapse() {
	n := m.current()
	if n == nil {
		return
	}
	if n.IsDir && isExpanded(n, m.expanded, m.states) {
		m.expanded[n.Path] = false
		m.refresh()
		return
	}
	parent := n.Path.Parent()
	for i, r := range m.rows {
		if r.node.Path == parent {
			m.cursor = i
			return
		}
	}
}

func (m *Model) copy() {
	text, err := m.session.ExportText()
	if err == nil {
		err = m.sink.Send(text)
	}
	if err != nil {
		m.message = errorStyle.Render(err.Error())
		return
	}
	m.message = fmt.Sprintf("copied %d files", m.selectedCount)
}

func (m Model) allSelected() bool {
	roots := m.session.Roots()
	if len(roots) == 0 {
		return false
	}
	for _, n := range roots {
		if m.states[n.Path] != selection.Full && !(n.IsDir && len(n.Children) == 0) {
			return false
		}
	}
	return true
}

func (m Model) current() *tree.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].node
}

// refresh recomputes derived state after the tree or the selection changed.
func (m *Model) refresh() {
	m.states = m.session.Engine().States()
	if term := m.filter.Value(); term != "" {
		m.rows = filterRows(m.session.Roots(), term)
	} else {
		m.rows = visibleRows(m.session.Roots(), m.expanded, m.states)
	}
	m.cursor = max(0, min(m.cursor, len(m.rows)-1))

	selected := m.session.SelectedPaths()
	m.selectedCount = len(selected)
	m.selectedBytes = export.TotalBytes(m.session.Root, selected)
	m.render()
}

func (m *Model) chromeHeight() int {
	h := 2 // status line + help
	if m.help.ShowAll {
		h = 1 + lipgloss.Height(m.help.View(m.keys))
	}
	if m.filtering || m.filter.Value() != "" {
		h++
	}
	return h
}

// render rebuilds the viewport content and keeps the cursor in view.
func (m *Model) render() {
	if !m.ready {
		return
	}
	m.viewport.Height = max(1, m.height-m.chromeHeight())

	var sb strings.Builder
	for i, r := range m.rows {
		sb.WriteString(m.renderRow(r, i == m.cursor))
		sb.WriteByte('\n')
	}
	m.viewport.SetContent(sb.String())

	top := m.viewport.YOffset
	bottom := top + m.viewport.Height - 1
	if m.cursor < top {
		m.viewport.SetYOffset(m.cursor)
	} else if m.cursor > bottom {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

func (m Model) renderRow(r row, atCursor bool) string {
	n := r.node
	state := m.states[n.Path]

	check := "[ ]"
	switch state {
	case selection.Full:
		check = "[x]"
	case selection.Partial:
		check = partialStyle.Render("[-]")
	}

	name := n.Name()
	if r.flat {
		name = string(n.Path)
	}
	marker := "  "
	if n.IsDir {
		marker = "▸ "
		if !r.flat && isExpanded(n, m.expanded, m.states) {
			marker = "▾ "
		}
		name = dirStyle.Render(name + "/")
	}

	line := fmt.Sprintf("%s%s %s%s", strings.Repeat("  ", r.depth), check, marker, name)
	if atCursor {
		return cursorStyle.Render("> ") + line
	}
	return "  " + line
}

func (m Model) statusLine() string {
	kb := float64(m.selectedBytes) / 1024
	s := fmt.Sprintf("%d files selected · %.1f KB · ~%d tokens",
		m.selectedCount, kb, metrics.EstimateTokens(int(m.selectedBytes)))
	if m.session.Scanning() {
		s += " · scanning…"
	}
	if m.message != "" {
		s += " · " + m.message
	}
	return statusStyle.Render(s)
}

// View draws the filter input, the tree, the status line and help.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var sb strings.Builder
	if m.filtering || m.filter.Value() != "" {
		sb.WriteString(m.filter.View() + "\n")
	}
	sb.WriteString(m.viewport.View() + "\n")
	sb.WriteString(m.statusLine() + "\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

// Run shows the tree on out until the user quits, and returns what they
// asked for.
func Run(s *session.Session, sink export.Sink, out io.Writer) (Action, error) {
	p := tea.NewProgram(New(s, sink), tea.WithOutput(out), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return ActionNone, err
	}
	fm, ok := final.(Model)
	if !ok {
		return ActionNone, fmt.Errorf("could not get final model state")
	}
	return fm.action, nil
}
