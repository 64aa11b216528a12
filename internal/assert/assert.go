// Package assert extends testify's assertions with fixture and filesystem
// helpers shared by the package tests.
package assert

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Assert is a wrapper around assert.Assertions and testing.T
type Assert struct {
	*assert.Assertions
	T *testing.T
}

// New creates a new Assert object
func New(t *testing.T) *Assert {
	return &Assert{
		Assertions: assert.New(t),
		T:          t,
	}
}

// EqualToJSONFixture compares result, marshaled as indented JSON, with
// fixtures/<TestName>_<fixtureName>.json. With GEN_FIXTURE=true the fixture is
// (re)written instead and the assertion passes.
func (a *Assert) EqualToJSONFixture(fixtureName string, result any) {
	a.T.Helper()
	got, err := json.MarshalIndent(result, "", "  ")
	if !a.NoError(err, "failed to marshal result") {
		return
	}
	got = append(got, '\n')

	name := strings.ReplaceAll(a.T.Name(), "/", "_")
	fixturePath := filepath.Join("fixtures", fmt.Sprintf("%s_%s.json", name, fixtureName))

	if os.Getenv("GEN_FIXTURE") == "true" {
		a.NoError(os.MkdirAll(filepath.Dir(fixturePath), 0755))
		a.NoError(os.WriteFile(fixturePath, got, 0644), "failed to write fixture")
		return
	}

	want, err := os.ReadFile(fixturePath)
	if !a.NoError(err, "missing fixture %s (run with GEN_FIXTURE=true)", fixturePath) {
		return
	}
	a.Equal(string(want), string(got), "result does not match %s", fixturePath)
}

// TempTree writes files (slash-separated path → content) under a fresh
// temporary directory and returns its path.
func (a *Assert) TempTree(files map[string]string) string {
	a.T.Helper()
	root := a.T.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			a.T.Fatalf("mkdir %s: %v", p, err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			a.T.Fatalf("write %s: %v", p, err)
		}
	}
	return root
}

// FileContains reports whether the file at path contains substr.
func (a *Assert) FileContains(path, substr string) bool {
	a.T.Helper()
	data, err := os.ReadFile(path)
	if !a.NoError(err) {
		return false
	}
	return a.Contains(string(data), substr)
}
