package pathindex

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob matches Paths against a doublestar pattern ("src/**/*.go").
type Glob struct {
	pattern string
}

// NewGlob validates pattern. A leading "./" is stripped; patterns that climb
// out of the root are rejected.
func NewGlob(pattern string) (Glob, error) {
	pattern = strings.TrimPrefix(strings.TrimSpace(pattern), "./")
	if pattern == "" {
		return Glob{}, fmt.Errorf("empty glob pattern")
	}
	if strings.HasPrefix(pattern, "../") || strings.HasPrefix(pattern, "/") {
		return Glob{}, fmt.Errorf("glob %q must be relative to the scan root", pattern)
	}
	if !doublestar.ValidatePattern(pattern) {
		return Glob{}, fmt.Errorf("invalid glob pattern %q", pattern)
	}
	return Glob{pattern: pattern}, nil
}

// Match reports whether p matches the pattern.
func (g Glob) Match(p Path) bool {
	ok, err := doublestar.Match(g.pattern, string(p))
	return err == nil && ok
}

func (g Glob) String() string {
	return g.pattern
}
