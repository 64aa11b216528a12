package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	extra "github.com/denormal/go-gitignore"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/hayeah/aicontent/internal/pathindex"
)

// Ignore encapsulates gitignore pattern matching for one scan root.
type Ignore struct {
	fs       billy.Filesystem
	patterns []gitignore.Pattern
	matcher  gitignore.Matcher
	extra    extra.GitIgnore
	rootPath string
}

// Options tunes which rules are loaded.
type Options struct {
	// Global also loads the user's core.excludesFile.
	Global bool
	// Patterns are extra rules in .gitignore syntax, applied from the root.
	// A bare name such as "node_modules" matches at any depth.
	Patterns []string
}

// NewIgnore reads the root .gitignore and .git/info/exclude. Rules of
// nested directories are added with LoadDir as the walk reaches them.
func NewIgnore(rootPath string, opts Options, logger *slog.Logger) (*Ignore, error) {
	root := osfs.New(rootPath)
	patterns, err := readPatterns(root, nil, ".git/info/exclude")
	if err != nil {
		// .git may be a worktree file rather than a directory
		logger.Debug("skipping .git/info/exclude", "err", err)
		patterns = nil
	}
	ps, err := readPatterns(root, nil, ".gitignore")
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitignore: %w", err)
	}
	patterns = append(patterns, ps...)

	if opts.Global {
		global, err := gitignore.LoadGlobalPatterns(osfs.New("/"))
		if err != nil {
			// a broken ~/.gitconfig should not stop the scan
			logger.Debug("skipping global excludes", "err", err)
		} else {
			patterns = append(global, patterns...)
		}
	}

	ig := &Ignore{
		fs:       root,
		patterns: patterns,
		matcher:  gitignore.NewMatcher(patterns),
		rootPath: rootPath,
	}

	if len(opts.Patterns) > 0 {
		src := strings.NewReader(strings.Join(opts.Patterns, "\n"))
		ig.extra = extra.New(src, rootPath, func(e extra.Error) bool {
			logger.Warn("skipping invalid exclude pattern", "err", e.Error())
			return true
		})
	}

	return ig, nil
}

// Root is the directory the rules were loaded from.
func (ig *Ignore) Root() string {
	return ig.rootPath
}

// LoadDir adds the rules of dir/.gitignore, scoped to dir. A missing file
// adds nothing.
func (ig *Ignore) LoadDir(dir pathindex.Path) error {
	if dir.IsRoot() {
		return nil
	}
	ps, err := readPatterns(ig.fs, dir.Segments(), ".gitignore")
	if err != nil {
		return fmt.Errorf("failed to read %s/.gitignore: %w", dir, err)
	}
	if len(ps) == 0 {
		return nil
	}
	ig.patterns = append(ig.patterns, ps...)
	ig.matcher = gitignore.NewMatcher(ig.patterns)
	return nil
}

// readPatterns parses the ignore file name in the directory domain.
func readPatterns(root billy.Filesystem, domain []string, name string) ([]gitignore.Pattern, error) {
	f, err := root.Open(root.Join(append(append([]string{}, domain...), name)...))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ps []gitignore.Pattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		ps = append(ps, gitignore.ParsePattern(line, domain))
	}
	return ps, scanner.Err()
}

// IsIgnored reports whether the root-relative path p should be left out of
// the walk. Version-control metadata directories are always ignored.
func (ig *Ignore) IsIgnored(p pathindex.Path, isDir bool) bool {
	if p.IsRoot() {
		return false
	}
	if pathindex.IsExcluded(p) {
		return true
	}
	if ig.extra != nil {
		if m := ig.extra.Relative(string(p), isDir); m != nil && m.Ignore() {
			return true
		}
	}
	return ig.matcher.Match(p.Segments(), isDir)
}
