// Package tree owns the in-memory file tree built from walker output.
//
// A Store is not safe for concurrent use. It is mutated only by the consumer
// goroutine that also drains the walker queue.
package tree

import (
	"slices"

	"github.com/hayeah/aicontent/internal/pathindex"
)

// Node is one filesystem entry below the scan root.
type Node struct {
	Path  pathindex.Path
	IsDir bool
	// Children is sorted directories-first, then by path, and never holds two
	// nodes with the same path. Always empty for files.
	Children []*Node
	// Selected is the export flag of a file. It is never set on directories;
	// their state is derived from the files below them.
	Selected bool
}

// NewFile returns a leaf node.
func NewFile(p pathindex.Path) *Node {
	return &Node{Path: p}
}

// NewDir returns a directory node with the given children.
func NewDir(p pathindex.Path, children ...*Node) *Node {
	return &Node{Path: p, IsDir: true, Children: children}
}

// Name is the final segment of the node's path.
func (n *Node) Name() string {
	return n.Path.Base()
}

// IsLeaf reports whether n is a file.
func (n *Node) IsLeaf() bool {
	return !n.IsDir
}

// Child returns the direct child with path p.
func (n *Node) Child(p pathindex.Path) *Node {
	return findChild(n.Children, p)
}

func findChild(list []*Node, p pathindex.Path) *Node {
	for _, c := range list {
		if c.Path == p {
			return c
		}
	}
	return nil
}

func compareNodes(a, b *Node) int {
	return pathindex.CompareEntries(a.IsDir, a.Path, b.IsDir, b.Path)
}

// SortNodes sorts a sibling list in tree order.
func SortNodes(list []*Node) {
	slices.SortFunc(list, compareNodes)
}

// IsSorted reports whether a sibling list is in tree order.
func IsSorted(list []*Node) bool {
	return slices.IsSortedFunc(list, compareNodes)
}
