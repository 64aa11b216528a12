// Package pathindex holds the pure path utilities shared by the walker, the
// tree store and the exporter: root-relative paths, their ordering, the
// version-control exclusion rule and the extension to language table.
package pathindex

import (
	"path/filepath"
	"strings"
)

// Path is a slash separated path relative to the scan root. The scan root
// itself is the empty Path; a top-level entry has exactly one segment.
type Path string

// FromSegments joins path segments into a Path.
func FromSegments(segments ...string) Path {
	return Path(strings.Join(segments, "/"))
}

// FromOS converts an OS-specific relative path (as produced by filepath.Rel)
// into a Path. "." maps to the root.
func FromOS(rel string) Path {
	rel = filepath.ToSlash(filepath.Clean(rel))
	rel = strings.TrimPrefix(rel, "./")
	if rel == "." {
		return ""
	}
	return Path(rel)
}

// OS returns the path in OS-specific form, relative to the scan root.
func (p Path) OS() string {
	return filepath.FromSlash(string(p))
}

// IsRoot reports whether p is the scan root.
func (p Path) IsRoot() bool {
	return p == ""
}

// Segments splits p into its segments. The root has no segments.
func (p Path) Segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), "/")
}

// Depth is the number of segments in p.
func (p Path) Depth() int {
	if p == "" {
		return 0
	}
	return strings.Count(string(p), "/") + 1
}

// Parent returns p with its final segment removed. The parent of a
// top-level entry is the root.
func (p Path) Parent() Path {
	i := strings.LastIndexByte(string(p), '/')
	if i < 0 {
		return ""
	}
	return p[:i]
}

// Base returns the final segment of p.
func (p Path) Base() string {
	i := strings.LastIndexByte(string(p), '/')
	return string(p[i+1:])
}

// Prefix returns the path made of the first n segments of p.
func (p Path) Prefix(n int) Path {
	if n <= 0 {
		return ""
	}
	s := string(p)
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			n--
			if n == 0 {
				return Path(s[:i])
			}
		}
	}
	return p
}

// Join appends a segment to p.
func (p Path) Join(name string) Path {
	if p == "" {
		return Path(name)
	}
	return p + "/" + Path(name)
}

// IsAncestorOf reports whether p is a strict ancestor of other.
func (p Path) IsAncestorOf(other Path) bool {
	if p == "" {
		return other != ""
	}
	return len(other) > len(p) && strings.HasPrefix(string(other), string(p)) && other[len(p)] == '/'
}

// Compare orders paths segment by segment, each segment compared
// lexicographically. A path sorts before any of its descendants.
func Compare(a, b Path) int {
	as, bs := string(a), string(b)
	for as != "" && bs != "" {
		var ah, bh string
		ah, as, _ = strings.Cut(as, "/")
		bh, bs, _ = strings.Cut(bs, "/")
		if c := strings.Compare(ah, bh); c != 0 {
			return c
		}
	}
	switch {
	case as == "" && bs == "":
		return 0
	case as == "":
		return -1
	default:
		return 1
	}
}

// CompareEntries is the sibling order of the tree: directories before files,
// ties broken by Compare. Distinct paths never compare equal.
func CompareEntries(aDir bool, a Path, bDir bool, b Path) int {
	if aDir != bDir {
		if aDir {
			return -1
		}
		return 1
	}
	return Compare(a, b)
}

// vcsDirs are metadata directories that are never walked, regardless of
// ignore files.
var vcsDirs = map[string]bool{
	".git":   true,
	".hg":    true,
	".svn":   true,
	".bzr":   true,
	".jj":    true,
	"_darcs": true,
}

// IsVCSDir reports whether name is a version-control metadata directory.
func IsVCSDir(name string) bool {
	return vcsDirs[name]
}

// IsExcluded reports whether any segment of p is a version-control metadata
// directory.
func IsExcluded(p Path) bool {
	for _, seg := range p.Segments() {
		if vcsDirs[seg] {
			return true
		}
	}
	return false
}
