// Package session ties one scan root to its selection: it drives the bridge,
// restores and persists the selection, and answers export queries.
//
// A Session is used from a single goroutine, the same one that ticks it.
package session

import (
	"context"
	"io"
	"log/slog"
	"slices"

	"github.com/hayeah/aicontent/internal/bridge"
	"github.com/hayeah/aicontent/internal/export"
	"github.com/hayeah/aicontent/internal/pathindex"
	"github.com/hayeah/aicontent/internal/persist"
	"github.com/hayeah/aicontent/internal/selection"
	"github.com/hayeah/aicontent/internal/tree"
)

// Session is the consumer side of one scan root.
type Session struct {
	Root     string
	Bridge   *bridge.Bridge
	Store    persist.Store
	Exporter *export.Exporter
	Logger   *slog.Logger

	// pending is applied when the running scan completes. Until then it is
	// also merged into what gets persisted, so an early save never drops
	// paths that have not been scanned yet.
	pending []pathindex.Path
	// saved is what the store last held.
	saved []pathindex.Path
}

// New returns a Session. Nothing is read or scanned until Start.
func New(root string, b *bridge.Bridge, store persist.Store, exporter *export.Exporter, logger *slog.Logger) *Session {
	return &Session{
		Root:     root,
		Bridge:   b,
		Store:    store,
		Exporter: exporter,
		Logger:   logger,
	}
}

// Start loads the saved selection and begins the first scan.
func (s *Session) Start() error {
	saved, err := s.Store.Load()
	if err != nil {
		s.Logger.Warn("failed to load saved selection", "err", err)
	}
	s.pending = saved
	s.saved = saved
	return s.Bridge.Start()
}

// Engine returns the selection engine over the current tree.
func (s *Session) Engine() *selection.Engine {
	return selection.New(s.Bridge.Store())
}

// Roots returns the current top-level nodes.
func (s *Session) Roots() []*tree.Node {
	return s.Bridge.Roots()
}

// Scanning reports whether the current scan is still running.
func (s *Session) Scanning() bool {
	return s.Bridge.Scanning()
}

// Tick drains the walker and, on the tick that completes the scan, restores
// the pending selection.
func (s *Session) Tick() bridge.TickResult {
	res := s.Bridge.Tick()
	if res.Completed {
		s.restore()
	}
	return res
}

func (s *Session) restore() {
	want := mergePaths(s.pending, s.Engine().CollectSelectedPaths())
	matched := s.Engine().ApplySavedSelection(want)
	if matched < len(want) {
		s.Logger.Debug("some saved paths are gone", "saved", len(want), "restored", matched)
	}
	s.pending = nil
	s.Save()
}

// Toggle applies a toggle intent from the renderer to the file or directory
// at p and persists the result.
func (s *Session) Toggle(p pathindex.Path, value bool) bool {
	if !s.Engine().ToggleSubtree(p, value) {
		return false
	}
	if !value {
		s.pending = slices.DeleteFunc(s.pending, func(q pathindex.Path) bool {
			return q == p || p.IsAncestorOf(q)
		})
	}
	s.Save()
	return true
}

// SetAll selects or clears every file.
func (s *Session) SetAll(value bool) {
	s.Engine().SetAll(value)
	if !value {
		s.pending = nil
	}
	s.Save()
}

// SelectMatching selects the files matching any of globs and returns how
// many matched.
func (s *Session) SelectMatching(globs ...pathindex.Glob) int {
	n := 0
	for _, g := range globs {
		n += s.Engine().SelectMatching(g)
	}
	s.Save()
	return n
}

// Clear forgets the selection, both in memory and in the store.
func (s *Session) Clear() error {
	s.Engine().SetAll(false)
	s.pending = nil
	s.saved = nil
	return s.Store.Clear()
}

// Rescan discards the tree and walks the root again. The current selection
// is restored when the new scan completes.
func (s *Session) Rescan() error {
	s.pending = s.persistable()
	return s.Bridge.Rescan()
}

// persistable is the selection as it should be stored right now.
func (s *Session) persistable() []pathindex.Path {
	current := s.Engine().CollectSelectedPaths()
	if !s.Scanning() {
		return current
	}
	return mergePaths(s.pending, current)
}

// Save writes the selection when it differs from what was last stored.
// Failures are logged: losing a save never interrupts the session.
func (s *Session) Save() {
	paths := s.persistable()
	if slices.Equal(paths, s.saved) {
		return
	}
	if err := s.Store.Save(paths); err != nil {
		s.Logger.Warn("failed to save selection", "err", err)
		return
	}
	s.saved = paths
}

// SelectedPaths returns the selected files in tree order.
func (s *Session) SelectedPaths() []pathindex.Path {
	return s.Engine().CollectSelectedPaths()
}

// TotalSelectedBytes sums the current on-disk sizes of the selected files.
func (s *Session) TotalSelectedBytes() int64 {
	return export.TotalBytes(s.Root, s.SelectedPaths())
}

// Export writes the export text of the selection to w.
func (s *Session) Export(w io.Writer) (int, error) {
	return s.Exporter.Generate(w, s.SelectedPaths())
}

// ExportText returns the export text of the selection.
func (s *Session) ExportText() (string, error) {
	return s.Exporter.Text(s.SelectedPaths())
}

// WaitScan ticks until the current scan completes. It is for callers with no
// event loop of their own.
func (s *Session) WaitScan(ctx context.Context) error {
	for s.Scanning() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.Bridge.Done():
		case <-s.Bridge.Ready():
		}
		s.Tick()
	}
	return nil
}

// mergePaths returns a followed by the paths of b missing from a.
func mergePaths(a, b []pathindex.Path) []pathindex.Path {
	seen := make(map[pathindex.Path]bool, len(a)+len(b))
	out := make([]pathindex.Path, 0, len(a)+len(b))
	for _, list := range [][]pathindex.Path{a, b} {
		for _, p := range list {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}
