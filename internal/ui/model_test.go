package ui

import (
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/hayeah/aicontent/internal/assert"
	"github.com/hayeah/aicontent/internal/bridge"
	"github.com/hayeah/aicontent/internal/export"
	"github.com/hayeah/aicontent/internal/pathindex"
	"github.com/hayeah/aicontent/internal/selection"
	"github.com/hayeah/aicontent/internal/session"
	"github.com/hayeah/aicontent/internal/tree"
	"github.com/hayeah/aicontent/internal/walker"
)

type nopStore struct{}

func (nopStore) Load() ([]pathindex.Path, error) { return nil, nil }
func (nopStore) Save([]pathindex.Path) error     { return nil }
func (nopStore) Clear() error                    { return nil }

type fakeScanner struct {
	q   *walker.Queue[walker.Message]
	gen uint64
}

func (f *fakeScanner) Start(root string, gen uint64, q *walker.Queue[walker.Message]) error {
	f.q, f.gen = q, gen
	return nil
}

func (f *fakeScanner) push(n *tree.Node) {
	f.q.Push(walker.Message{Generation: f.gen, Node: n})
}

type recordSink struct{ sent []string }

func (r *recordSink) Send(text string) error {
	r.sent = append(r.sent, text)
	return nil
}

func sampleTree() []*tree.Node {
	return []*tree.Node{
		tree.NewDir("a", tree.NewFile("a/x.txt"), tree.NewFile("a/y.txt")),
		tree.NewFile("b.txt"),
	}
}

func rowPaths(rows []row) []pathindex.Path {
	out := make([]pathindex.Path, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.node.Path)
	}
	return out
}

func TestVisibleRows(t *testing.T) {
	a := assert.New(t)
	roots := sampleTree()

	rows := visibleRows(roots, map[pathindex.Path]bool{}, nil)
	a.Equal([]pathindex.Path{"a", "b.txt"}, rowPaths(rows))

	rows = visibleRows(roots, map[pathindex.Path]bool{"a": true}, nil)
	a.Equal([]pathindex.Path{"a", "a/x.txt", "a/y.txt", "b.txt"}, rowPaths(rows))
	a.Equal(1, rows[1].depth)
}

func TestIsExpanded(t *testing.T) {
	a := assert.New(t)
	dir := sampleTree()[0]
	partial := map[pathindex.Path]selection.State{"a": selection.Partial}

	a.False(isExpanded(dir, map[pathindex.Path]bool{}, nil))
	a.True(isExpanded(dir, map[pathindex.Path]bool{}, partial))
	a.False(isExpanded(dir, map[pathindex.Path]bool{"a": false}, partial), "user choice wins")
}

func TestFilterRows(t *testing.T) {
	a := assert.New(t)
	rows := filterRows(sampleTree(), "x.txt")
	a.Equal([]pathindex.Path{"a/x.txt"}, rowPaths(rows))
	a.True(rows[0].flat)
	a.Empty(filterRows(sampleTree(), "zzz"))
}

func newTestModel(t *testing.T) (Model, *fakeScanner, *recordSink, *session.Session) {
	t.Helper()
	root := assert.New(t).TempTree(map[string]string{
		"a/x.txt": "x",
		"a/y.txt": "y",
		"b.txt":   "b",
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sc := &fakeScanner{}
	s := session.New(root, bridge.New(root, sc, logger), nopStore{}, export.NewExporter(root, nil, logger), logger)
	require.NoError(t, s.Start())

	sink := &recordSink{}
	m := New(s, sink)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model), sc, sink, s
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestModel_TickDrainsScan(t *testing.T) {
	a := assert.New(t)
	m, sc, _, _ := newTestModel(t)
	a.Empty(m.rows)

	for _, n := range []*tree.Node{tree.NewFile("a/x.txt"), tree.NewFile("a/y.txt")} {
		sc.push(n)
	}
	sc.push(sampleTree()[0])
	sc.push(tree.NewFile("b.txt"))

	m, cmd := update(t, m, tickMsg{})
	a.NotNil(cmd, "keeps ticking while scanning")
	a.Equal([]pathindex.Path{"a", "b.txt"}, rowPaths(m.rows))
	a.Contains(m.View(), "scanning")

	sc.q.Finish()
	m, cmd = update(t, m, tickMsg{})
	a.Nil(cmd, "stops ticking once complete")
	a.NotContains(m.View(), "scanning")
}

func TestModel_RescanKeepsOneTickChain(t *testing.T) {
	a := assert.New(t)
	m, sc, _, _ := newTestModel(t)
	rescan := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}

	// the tick started by Init is still running
	m, cmd := update(t, m, rescan)
	a.Nil(cmd)
	a.Equal(uint64(2), sc.gen)

	sc.q.Finish()
	m, cmd = update(t, m, tickMsg{})
	a.Nil(cmd)

	m, cmd = update(t, m, rescan)
	a.NotNil(cmd, "a finished scan needs a new tick")
	m, cmd = update(t, m, rescan)
	a.Nil(cmd)

	sc.push(tree.NewFile("b.txt"))
	m, cmd = update(t, m, tickMsg{})
	a.NotNil(cmd)
	a.Equal([]pathindex.Path{"b.txt"}, rowPaths(m.rows))
}

func TestModel_ToggleAndCopy(t *testing.T) {
	a := assert.New(t)
	m, sc, sink, s := newTestModel(t)
	sc.push(sampleTree()[0])
	sc.push(tree.NewFile("b.txt"))
	sc.q.Finish()
	m, _ = update(t, m, tickMsg{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	a.Equal([]pathindex.Path{"a/x.txt", "a/y.txt"}, s.SelectedPaths())
	a.Equal(2, m.selectedCount)
	a.Contains(m.View(), "[x]")

	// expand, move to a/y.txt and clear it: the directory becomes partial
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	a.Equal(pathindex.Path("a/y.txt"), m.current().Path)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	a.Equal(selection.Partial, m.states["a"])

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	require.Len(t, sink.sent, 1)
	a.Contains(sink.sent[0], "===== Start: ./a/x.txt =====")
	a.Contains(m.View(), "copied 1 files")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	a.Len(s.SelectedPaths(), 3)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	a.Empty(s.SelectedPaths())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	a.Equal(ActionPrint, m.Action())
	a.NotNil(cmd)
}

func TestModel_Filter(t *testing.T) {
	a := assert.New(t)
	m, sc, _, _ := newTestModel(t)
	sc.push(sampleTree()[0])
	sc.push(tree.NewFile("b.txt"))
	sc.q.Finish()
	m, _ = update(t, m, tickMsg{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	a.True(m.filtering)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	a.Equal([]pathindex.Path{"a/y.txt"}, rowPaths(m.rows))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	a.False(m.filtering)
	a.Equal([]pathindex.Path{"a", "b.txt"}, rowPaths(m.rows))
}
