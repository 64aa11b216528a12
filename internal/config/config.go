// Package config loads the optional TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the per-project config file looked up in the scan root.
const FileName = ".aicontent.toml"

// Store backends.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Config is the decoded configuration. Zero values mean "use the default".
//
//	state_dir = "/home/me/.cache/aicontent"
//	store = "sqlite"
//	token_estimator = "tiktoken"
//	exclude = ["node_modules", "*.min.js"]
//
//	[supported_extensions]
//	py = "python"
type Config struct {
	StateDir            string            `toml:"state_dir"`
	Store               string            `toml:"store"`
	TokenEstimator      string            `toml:"token_estimator"`
	Exclude             []string          `toml:"exclude"`
	SupportedExtensions map[string]string `toml:"supported_extensions"`
	GlobalExcludes      *bool             `toml:"global_excludes"`

	// Source is the file the config was read from, "" for defaults.
	Source string `toml:"-"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		StateDir:       os.TempDir(),
		Store:          StoreJSON,
		TokenEstimator: "simple",
	}
}

// Load reads the config. An explicit path must exist. Otherwise the first of
// <root>/.aicontent.toml and <user config dir>/aicontent/config.toml that
// exists is used, and defaults apply when neither does.
func Load(explicit, root string) (*Config, error) {
	if explicit != "" {
		return loadFile(explicit)
	}

	candidates := []string{filepath.Join(root, FileName)}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "aicontent", "config.toml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return loadFile(p)
	}
	return Default(), nil
}

func loadFile(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
	}
	cfg.Source = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreJSON, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreJSON, StoreSQLite)
	}
	switch c.TokenEstimator {
	case "simple", "tiktoken":
	default:
		return fmt.Errorf("unknown token estimator %q", c.TokenEstimator)
	}
	if c.StateDir == "" {
		return errors.New("state_dir is empty")
	}
	return nil
}

// UseGlobalExcludes reports whether the user's core.excludesFile applies.
// It defaults to true.
func (c *Config) UseGlobalExcludes() bool {
	return c.GlobalExcludes == nil || *c.GlobalExcludes
}
