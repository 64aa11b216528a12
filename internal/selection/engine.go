// Package selection applies toggle intents to a tree.Store and answers
// queries about the selection.
//
// Only files carry a selected flag. A directory's state is always computed
// from the files below it:
//
//   - Full: every file below is selected (vacuously true when there are none)
//   - Partial: at least one file below is selected and at least one is not
//   - None: otherwise
package selection

import (
	"github.com/hayeah/aicontent/internal/pathindex"
	"github.com/hayeah/aicontent/internal/tree"
)

// State is the tri-state shown next to a node.
type State int

const (
	None State = iota
	Partial
	Full
)

func (s State) String() string {
	switch s {
	case Full:
		return "full"
	case Partial:
		return "partial"
	default:
		return "none"
	}
}

// Tally counts the files below a node.
type Tally struct {
	Selected int
	Total    int
}

// Engine mutates and queries the selection of one Store.
type Engine struct {
	store *tree.Store
}

// New returns an Engine over store.
func New(store *tree.Store) *Engine {
	return &Engine{store: store}
}

// ToggleLeaf sets the selected flag of the file at p. It reports false, and
// changes nothing, when p is missing or is a directory.
func (e *Engine) ToggleLeaf(p pathindex.Path, value bool) bool {
	n, ok := e.store.Lookup(p)
	if !ok || n.IsDir {
		return false
	}
	n.Selected = value
	return true
}

// ToggleSubtree sets value on the file at p, or on every file below the
// directory at p. It reports false when p is missing.
func (e *Engine) ToggleSubtree(p pathindex.Path, value bool) bool {
	n, ok := e.store.Lookup(p)
	if !ok {
		return false
	}
	setLeaves(n, value)
	return true
}

// SetAll sets value on every file in the store.
func (e *Engine) SetAll(value bool) {
	tree.Walk(e.store.Roots(), func(n *tree.Node) error {
		if !n.IsDir {
			n.Selected = value
		}
		return nil
	})
}

func setLeaves(n *tree.Node, value bool) {
	tree.Walk([]*tree.Node{n}, func(c *tree.Node) error {
		if !c.IsDir {
			c.Selected = value
		}
		return nil
	})
}

// Count tallies the files below n; a file counts itself.
func Count(n *tree.Node) Tally {
	var t Tally
	tree.Walk([]*tree.Node{n}, func(c *tree.Node) error {
		if !c.IsDir {
			t.Total++
			if c.Selected {
				t.Selected++
			}
		}
		return nil
	})
	return t
}

// IsFullySelected reports whether n is a selected file, or a directory whose
// files are all selected.
func IsFullySelected(n *tree.Node) bool {
	if !n.IsDir {
		return n.Selected
	}
	full := true
	tree.Walk(n.Children, func(c *tree.Node) error {
		if !c.IsDir && !c.Selected {
			full = false
			return tree.ErrStop
		}
		return nil
	})
	return full
}

// IsPartiallySelected reports whether n is a directory holding both selected
// and unselected files.
func IsPartiallySelected(n *tree.Node) bool {
	if !n.IsDir {
		return false
	}
	var hasSelected, hasUnselected bool
	tree.Walk(n.Children, func(c *tree.Node) error {
		if c.IsDir {
			return nil
		}
		if c.Selected {
			hasSelected = true
		} else {
			hasUnselected = true
		}
		if hasSelected && hasUnselected {
			return tree.ErrStop
		}
		return nil
	})
	return hasSelected && hasUnselected
}

// StateOf returns the tri-state of n. A directory without files reports
// None, so it is not drawn as checked.
func StateOf(n *tree.Node) State {
	return stateFromTally(Count(n))
}

func stateFromTally(t Tally) State {
	switch {
	case t.Total == 0 || t.Selected == 0:
		return None
	case t.Selected == t.Total:
		return Full
	default:
		return Partial
	}
}

// States computes the state of every node in one post-order pass. Renderers
// call it once per frame instead of calling StateOf per row.
func (e *Engine) States() map[pathindex.Path]State {
	tallies := e.Tallies()
	out := make(map[pathindex.Path]State, len(tallies))
	for p, t := range tallies {
		out[p] = stateFromTally(t)
	}
	return out
}

// Tallies returns the file counts of every node, keyed by path.
func (e *Engine) Tallies() map[pathindex.Path]Tally {
	out := make(map[pathindex.Path]Tally)
	// pre-order list reversed is a valid post-order for accumulation: every
	// node appears after all of its descendants
	var order []*tree.Node
	tree.Walk(e.store.Roots(), func(n *tree.Node) error {
		order = append(order, n)
		return nil
	})
	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		var t Tally
		if n.IsDir {
			for _, c := range n.Children {
				ct := out[c.Path]
				t.Selected += ct.Selected
				t.Total += ct.Total
			}
		} else {
			t.Total = 1
			if n.Selected {
				t.Selected = 1
			}
		}
		out[n.Path] = t
	}
	return out
}

// CollectSelectedPaths returns the paths of all selected files, in tree
// order. Directories never appear.
func (e *Engine) CollectSelectedPaths() []pathindex.Path {
	var out []pathindex.Path
	tree.Walk(e.store.Roots(), func(n *tree.Node) error {
		if !n.IsDir && n.Selected {
			out = append(out, n.Path)
		}
		return nil
	})
	return out
}

// ApplySavedSelection selects exactly the files whose path is in saved and
// clears every other file. Saved paths that are not in the tree are ignored.
// It returns how many files were selected.
func (e *Engine) ApplySavedSelection(saved []pathindex.Path) int {
	want := make(map[pathindex.Path]bool, len(saved))
	for _, p := range saved {
		want[p] = true
	}
	matched := 0
	tree.Walk(e.store.Roots(), func(n *tree.Node) error {
		if n.IsDir {
			return nil
		}
		n.Selected = want[n.Path]
		if n.Selected {
			matched++
		}
		return nil
	})
	return matched
}

// SelectMatching selects every file matching g and returns how many files
// matched.
func (e *Engine) SelectMatching(g pathindex.Glob) int {
	matched := 0
	tree.Walk(e.store.Roots(), func(n *tree.Node) error {
		if !n.IsDir && g.Match(n.Path) {
			n.Selected = true
			matched++
		}
		return nil
	})
	return matched
}
