package tree

import (
	"errors"

	"github.com/hayeah/aicontent/internal/pathindex"
)

// ErrStop can be returned from a Walk callback to end the traversal early.
var ErrStop = errors.New("stop walk")

// ErrSkipChildren can be returned from a Walk callback to skip the children
// of the node just visited.
var ErrSkipChildren = errors.New("skip children")

// Store holds the canonical tree for one scan.
type Store struct {
	roots []*Node
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// Roots returns the top-level nodes by reference.
func (s *Store) Roots() []*Node {
	return s.roots
}

// Insert attaches n under the node whose path is n's parent path, or at the
// top level for one-segment paths. It reports whether n was attached.
//
// A node whose parent has not arrived yet is dropped: the walker emits
// directories after their subtree, so the node comes back embedded in its
// ancestor. A node whose path is already present under the parent is
// dropped too, leaving the existing entry untouched.
func (s *Store) Insert(n *Node) bool {
	if n == nil || n.Path.IsRoot() {
		return false
	}

	parentPath := n.Path.Parent()
	if parentPath.IsRoot() {
		if findChild(s.roots, n.Path) != nil {
			return false
		}
		normalize(n)
		s.roots = append(s.roots, n)
		SortNodes(s.roots)
		return true
	}

	parent, ok := s.Lookup(parentPath)
	if !ok || !parent.IsDir {
		return false
	}
	if parent.Child(n.Path) != nil {
		return false
	}
	normalize(n)
	parent.Children = append(parent.Children, n)
	SortNodes(parent.Children)
	return true
}

// Lookup finds the node with path p by descending one segment at a time.
func (s *Store) Lookup(p pathindex.Path) (*Node, bool) {
	if p.IsRoot() {
		return nil, false
	}
	depth := p.Depth()
	list := s.roots
	for i := 1; i <= depth; i++ {
		n := findChild(list, p.Prefix(i))
		if n == nil {
			return nil, false
		}
		if i == depth {
			return n, true
		}
		list = n.Children
	}
	return nil, false
}

// Walk visits every node in pre-order, in sorted sibling order.
func (s *Store) Walk(fn func(n *Node) error) error {
	return Walk(s.roots, fn)
}

// Len counts the nodes in the store.
func (s *Store) Len() int {
	count := 0
	s.Walk(func(*Node) error {
		count++
		return nil
	})
	return count
}

// Walk visits list and everything below it in pre-order using an explicit
// stack. Returning ErrStop ends the walk with a nil error; ErrSkipChildren
// prunes the current node's subtree; any other error is returned as is.
func Walk(list []*Node, fn func(n *Node) error) error {
	stack := make([]*Node, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		stack = append(stack, list[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		err := fn(n)
		switch {
		case errors.Is(err, ErrStop):
			return nil
		case errors.Is(err, ErrSkipChildren):
			continue
		case err != nil:
			return err
		}

		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return nil
}

// normalize dedups and sorts every children list below n, keeping the first
// occurrence of a path.
func normalize(n *Node) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !cur.IsDir {
			cur.Children = nil
			continue
		}

		seen := make(map[pathindex.Path]bool, len(cur.Children))
		kept := cur.Children[:0]
		for _, c := range cur.Children {
			if c == nil || seen[c.Path] || c.Path.Parent() != cur.Path {
				continue
			}
			seen[c.Path] = true
			kept = append(kept, c)
		}
		cur.Children = kept
		if !IsSorted(cur.Children) {
			SortNodes(cur.Children)
		}
		stack = append(stack, cur.Children...)
	}
}
