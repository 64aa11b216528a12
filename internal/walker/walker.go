// Package walker enumerates a directory tree on its own goroutine and streams
// the entries to a Queue.
//
// Entries are emitted in post-order: a directory's Node is pushed after every
// entry below it, and carries its fully built subtree in Children. Files are
// pushed on their own as well, so the consumer sees nested files twice; the
// tree store drops the standalone copy.
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hayeah/aicontent/ignore"
	"github.com/hayeah/aicontent/internal/tree"
)

// ErrScanFatal wraps every error that prevents a scan from starting.
var ErrScanFatal = errors.New("scan failed")

// Message is one emitted entry, tagged with the scan it belongs to.
type Message struct {
	Generation uint64
	Node       *tree.Node
}

// Options configures which entries are skipped beyond .gitignore rules.
type Options struct {
	// ExtraExcludes are extra rules in .gitignore syntax, applied from the root.
	ExtraExcludes []string
	// GlobalExcludes also applies the user's core.excludesFile.
	GlobalExcludes bool
}

// Walker starts scans. It holds no per-scan state and can be reused.
type Walker struct {
	opts   Options
	logger *slog.Logger
}

// New returns a Walker.
func New(opts Options, logger *slog.Logger) *Walker {
	return &Walker{opts: opts, logger: logger}
}

// frame is one directory on the traversal stack.
type frame struct {
	abs     string
	node    *tree.Node
	entries []os.DirEntry
	next    int
}

// Start validates root and launches the traversal. Validation is synchronous:
// a missing, non-directory or unreadable root returns an error wrapping
// ErrScanFatal and nothing is ever pushed to q. On success the walk runs in
// the background and calls q.Finish when it is complete.
func (w *Walker) Start(root string, gen uint64, q *Queue[Message]) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrScanFatal, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScanFatal, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrScanFatal, abs)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScanFatal, err)
	}

	ig, err := ignore.NewIgnore(abs, ignore.Options{
		Global:   w.opts.GlobalExcludes,
		Patterns: w.opts.ExtraExcludes,
	}, w.logger)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScanFatal, err)
	}

	w.logger.Debug("scan started", "root", abs, "generation", gen)
	go w.walk(abs, entries, ig, gen, q)
	return nil
}

func (w *Walker) walk(root string, rootEntries []os.DirEntry, ig *ignore.Ignore, gen uint64, q *Queue[Message]) {
	emitted := 0
	emit := func(n *tree.Node) bool {
		if err := q.Push(Message{Generation: gen, Node: n}); err != nil {
			w.logger.Debug("scan abandoned", "root", root, "generation", gen, "err", err)
			return false
		}
		emitted++
		return true
	}

	stack := []*frame{{abs: root, node: tree.NewDir(""), entries: rootEntries}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if top.next == len(top.entries) {
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				break
			}
			tree.SortNodes(top.node.Children)
			parent := stack[len(stack)-1]
			parent.node.Children = append(parent.node.Children, top.node)
			if !emit(top.node) {
				return
			}
			continue
		}

		entry := top.entries[top.next]
		top.next++

		rel := top.node.Path.Join(entry.Name())
		abs := filepath.Join(top.abs, entry.Name())

		isDir, ok := w.classify(abs, entry)
		if !ok || ig.IsIgnored(rel, isDir) {
			continue
		}

		if isDir {
			children, err := os.ReadDir(abs)
			if err != nil {
				w.logger.Debug("skipping unreadable directory", "path", rel, "err", err)
				continue
			}
			if err := ig.LoadDir(rel); err != nil {
				w.logger.Debug("skipping unreadable ignore file", "path", rel, "err", err)
			}
			stack = append(stack, &frame{abs: abs, node: tree.NewDir(rel), entries: children})
			continue
		}

		n := tree.NewFile(rel)
		top.node.Children = append(top.node.Children, n)
		if !emit(n) {
			return
		}
	}

	w.logger.Debug("scan finished", "root", root, "generation", gen, "emitted", emitted)
	q.Finish()
}

// classify reports whether entry is a directory, and whether it should be
// visited at all. Symlinks are resolved once: links to files become leaves,
// links to directories and broken links are skipped.
func (w *Walker) classify(abs string, entry os.DirEntry) (isDir bool, ok bool) {
	mode := entry.Type()
	switch {
	case mode.IsDir():
		return true, true
	case mode.IsRegular():
		return false, true
	case mode&fs.ModeSymlink != 0:
		info, err := os.Stat(abs)
		if err != nil {
			w.logger.Debug("skipping broken symlink", "path", abs, "err", err)
			return false, false
		}
		if info.IsDir() {
			w.logger.Debug("skipping symlinked directory", "path", abs)
			return false, false
		}
		return false, true
	default:
		// sockets, devices, pipes
		return false, false
	}
}
