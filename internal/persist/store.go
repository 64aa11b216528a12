// Package persist saves and restores the selected paths of a scan root.
package persist

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/hayeah/aicontent/internal/pathindex"
)

// Store loads and saves the selection of one root. Load treats a missing or
// unreadable record as an empty selection and returns nil, nil.
type Store interface {
	Load() ([]pathindex.Path, error)
	Save(paths []pathindex.Path) error
	Clear() error
}

// RootKey is the stable key of a root: the hex sha256 of its absolute path.
func RootKey(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	sum := sha256.Sum256([]byte(abs))
	return hex.EncodeToString(sum[:]), nil
}

// SelectionFile is the JSON selection file of root inside stateDir.
func SelectionFile(stateDir, root string) (string, error) {
	key, err := RootKey(root)
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, ".ai_content."+key+".json"), nil
}

// DatabaseFile is the SQLite database shared by every root in stateDir.
func DatabaseFile(stateDir string) string {
	return filepath.Join(stateDir, "aicontent.db")
}

func toStrings(paths []pathindex.Path) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = string(p)
	}
	return out
}

func fromStrings(list []string) []pathindex.Path {
	out := make([]pathindex.Path, 0, len(list))
	for _, s := range list {
		if s == "" {
			continue
		}
		out = append(out, pathindex.FromOS(s))
	}
	return out
}
