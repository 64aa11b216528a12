package ui

import (
	"github.com/sahilm/fuzzy"

	"github.com/hayeah/aicontent/internal/pathindex"
	"github.com/hayeah/aicontent/internal/selection"
	"github.com/hayeah/aicontent/internal/tree"
)

// row is one visible line of the tree.
type row struct {
	node  *tree.Node
	depth int
	// flat rows come from a filter and show the full path
	flat bool
}

// isExpanded reports whether the children of dir are shown. A user choice
// wins; otherwise directories with a mixed selection open by themselves so
// the mix is visible.
func isExpanded(dir *tree.Node, expanded map[pathindex.Path]bool, states map[pathindex.Path]selection.State) bool {
	if v, ok := expanded[dir.Path]; ok {
		return v
	}
	return states[dir.Path] == selection.Partial
}

// visibleRows flattens the tree in display order, descending only into
// expanded directories.
func visibleRows(roots []*tree.Node, expanded map[pathindex.Path]bool, states map[pathindex.Path]selection.State) []row {
	var out []row
	type item struct {
		node  *tree.Node
		depth int
	}
	stack := make([]item, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, item{roots[i], 0})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, row{node: it.node, depth: it.depth})

		if !it.node.IsDir || !isExpanded(it.node, expanded, states) {
			continue
		}
		for i := len(it.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.node.Children[i], it.depth + 1})
		}
	}
	return out
}

// nodeSource adapts a node list to fuzzy.Source.
type nodeSource []*tree.Node

func (s nodeSource) String(i int) string { return string(s[i].Path) }
func (s nodeSource) Len() int            { return len(s) }

// filterRows matches term against every path in the tree. Queries in the
// exact syntax keep tree order; anything else is fuzzy-matched, best first.
func filterRows(roots []*tree.Node, term string) []row {
	var all nodeSource
	tree.Walk(roots, func(n *tree.Node) error {
		all = append(all, n)
		return nil
	})

	var out []row
	if isTermQuery(term) {
		if q, err := parseTermQuery(term); err == nil {
			for _, n := range all {
				if q.match(n.Path) {
					out = append(out, row{node: n, flat: true})
				}
			}
			return out
		}
	}

	matches := fuzzy.FindFrom(term, all)
	out = make([]row, 0, len(matches))
	for _, m := range matches {
		out = append(out, row{node: all[m.Index], flat: true})
	}
	return out
}
