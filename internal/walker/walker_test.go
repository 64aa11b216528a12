package walker

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayeah/aicontent/internal/pathindex"
	"github.com/hayeah/aicontent/internal/tree"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestDirectory writes files (path → content) under a temp dir.
func createTestDirectory(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

// runScan starts a scan and collects every message until the walker finishes.
func runScan(t *testing.T, root string, opts Options) []Message {
	t.Helper()
	q := NewQueue[Message]()
	require.NoError(t, New(opts, discardLogger()).Start(root, 1, q))

	select {
	case <-q.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scan did not finish")
	}
	msgs, finished := q.Drain()
	require.True(t, finished)
	return msgs
}

func messagePaths(msgs []Message) []pathindex.Path {
	var out []pathindex.Path
	for _, m := range msgs {
		out = append(out, m.Node.Path)
	}
	return out
}

func TestWalker_PostOrder(t *testing.T) {
	assert := assert.New(t)
	root := createTestDirectory(t, map[string]string{
		"a/x.txt":     "x",
		"a/sub/y.txt": "y",
		"b.txt":       "b",
	})

	msgs := runScan(t, root, Options{})
	assert.ElementsMatch([]pathindex.Path{"a", "a/sub", "a/sub/y.txt", "a/x.txt", "b.txt"}, messagePaths(msgs))

	seen := map[pathindex.Path]int{}
	for i, m := range msgs {
		seen[m.Node.Path] = i
		assert.Equal(uint64(1), m.Generation)
	}
	for _, m := range msgs {
		if !m.Node.IsDir {
			continue
		}
		// every descendant was pushed before the directory itself
		tree.Walk(m.Node.Children, func(c *tree.Node) error {
			assert.Less(seen[c.Path], seen[m.Node.Path], "%s after %s", c.Path, m.Node.Path)
			return nil
		})
	}

	var a *tree.Node
	for _, m := range msgs {
		if m.Node.Path == "a" {
			a = m.Node
		}
	}
	require.NotNil(t, a)
	assert.True(a.IsDir)
	assert.True(tree.IsSorted(a.Children))
	assert.Equal(pathindex.Path("a/sub"), a.Children[0].Path)
	assert.Equal(pathindex.Path("a/x.txt"), a.Children[1].Path)
	assert.Len(a.Children[0].Children, 1)
}

func TestWalker_BuildsStore(t *testing.T) {
	assert := assert.New(t)
	root := createTestDirectory(t, map[string]string{
		"a/x.txt": "x",
		"b.txt":   "b",
	})

	s := tree.New()
	for _, m := range runScan(t, root, Options{}) {
		s.Insert(m.Node)
	}

	assert.Equal(3, s.Len())
	a, ok := s.Lookup("a")
	assert.True(ok)
	assert.Len(a.Children, 1)
	assert.Equal(pathindex.Path("a"), s.Roots()[0].Path)
	assert.Equal(pathindex.Path("b.txt"), s.Roots()[1].Path)
}

func TestWalker_RespectsIgnoreRules(t *testing.T) {
	assert := assert.New(t)
	root := createTestDirectory(t, map[string]string{
		".gitignore":          "*.log\nbuild/\n",
		"main.go":             "package main",
		"debug.log":           "noise",
		"build/out.bin":       "bin",
		".git/HEAD":           "ref: refs/heads/main",
		"node_modules/x.js":   "x",
		"docs/.gitignore":     "draft.md\n",
		"docs/draft.md":       "wip",
		"docs/index.md":       "# docs",
		".hg/store/data.i":    "hg",
		"nested/.svn/entries": "svn",
	})

	paths := messagePaths(runScan(t, root, Options{ExtraExcludes: []string{"node_modules"}}))
	assert.ElementsMatch([]pathindex.Path{
		".gitignore", "main.go", "docs", "docs/.gitignore", "docs/index.md", "nested",
	}, paths)
}

func TestWalker_SkipsUnreadableDirectories(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	assert := assert.New(t)
	root := createTestDirectory(t, map[string]string{
		"a.txt":            "a",
		"locked/secret.go": "package secret",
		"docs/.gitignore":  "draft.md\n",
		"docs/draft.md":    "wip",
		"docs/index.md":    "# docs",
	})
	locked := filepath.Join(root, "locked")
	ignoreFile := filepath.Join(root, "docs", ".gitignore")
	require.NoError(t, os.Chmod(locked, 0))
	require.NoError(t, os.Chmod(ignoreFile, 0))
	t.Cleanup(func() {
		os.Chmod(locked, 0755)
		os.Chmod(ignoreFile, 0644)
	})

	paths := messagePaths(runScan(t, root, Options{}))
	assert.ElementsMatch([]pathindex.Path{
		"a.txt", "docs", "docs/.gitignore", "docs/draft.md", "docs/index.md",
	}, paths)
}

func TestWalker_SkipsBrokenAndDirectorySymlinks(t *testing.T) {
	assert := assert.New(t)
	root := createTestDirectory(t, map[string]string{
		"real.txt":    "real",
		"dir/in.txt":  "in",
		"other/o.txt": "o",
	})
	require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing.txt"), filepath.Join(root, "broken.txt")))
	require.NoError(t, os.Symlink(filepath.Join(root, "other"), filepath.Join(root, "dir", "loop")))

	paths := messagePaths(runScan(t, root, Options{}))
	assert.Contains(paths, pathindex.Path("link.txt"))
	assert.NotContains(paths, pathindex.Path("broken.txt"))
	assert.NotContains(paths, pathindex.Path("dir/loop"))
	assert.Contains(paths, pathindex.Path("dir/in.txt"))
}

func TestWalker_ScanFatal(t *testing.T) {
	w := New(Options{}, discardLogger())

	q := NewQueue[Message]()
	err := w.Start(filepath.Join(t.TempDir(), "nope"), 1, q)
	assert.ErrorIs(t, err, ErrScanFatal)
	assert.Zero(t, q.Len())

	root := createTestDirectory(t, map[string]string{"file.txt": "x"})
	err = w.Start(filepath.Join(root, "file.txt"), 1, q)
	assert.ErrorIs(t, err, ErrScanFatal)
	assert.Zero(t, q.Len())
}

func TestWalker_StopsWhenQueueClosed(t *testing.T) {
	root := createTestDirectory(t, map[string]string{"a.txt": "a", "b/c.txt": "c"})
	q := NewQueue[Message]()
	q.Close()

	require.NoError(t, New(Options{}, discardLogger()).Start(root, 1, q))
	<-q.Done()
	// give the goroutine a moment to observe the closed queue
	time.Sleep(20 * time.Millisecond)
	msgs, finished := q.Drain()
	assert.Empty(t, msgs)
	assert.False(t, finished)
}
