package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hayeah/goo"
	"github.com/tailscale/hujson"

	"github.com/hayeah/aicontent/internal/pathindex"
)

// JSONStore keeps a selection as a JSON array of root-relative paths. The
// file is read as HuJSON, so comments and trailing commas are tolerated.
type JSONStore struct {
	Path   string
	Logger *slog.Logger
}

// NewJSONStore returns the store for root under stateDir.
func NewJSONStore(stateDir, root string, logger *slog.Logger) (*JSONStore, error) {
	p, err := SelectionFile(stateDir, root)
	if err != nil {
		return nil, err
	}
	s := &JSONStore{Path: p}
	s.Logger = goo.TypedLogger(logger, s)
	return s, nil
}

// Load reads the saved selection. A missing file is an empty selection; a
// file that cannot be parsed is logged and treated the same way.
func (s *JSONStore) Load() ([]pathindex.Path, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		s.Logger.Warn("ignoring unreadable selection file", "path", s.Path, "err", err)
		return nil, nil
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		s.Logger.Warn("ignoring corrupt selection file", "path", s.Path, "err", err)
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(std, &list); err != nil {
		s.Logger.Warn("ignoring corrupt selection file", "path", s.Path, "err", err)
		return nil, nil
	}
	return fromStrings(list), nil
}

// Save writes paths atomically: a temp file in the same directory is renamed
// over the previous file.
func (s *JSONStore) Save(paths []pathindex.Path) error {
	data, err := json.Marshal(toStrings(paths))
	if err != nil {
		return fmt.Errorf("failed to encode selection: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write selection: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write selection: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to replace selection file: %w", err)
	}
	return nil
}

// Clear removes the saved selection.
func (s *JSONStore) Clear() error {
	err := os.Remove(s.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear selection: %w", err)
	}
	return nil
}
