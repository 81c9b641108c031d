// Package config handles loading and saving sanchul configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/sanchul/config.yaml
//   - Data:    ~/.local/share/sanchul/ (chunk store, category lists, log)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// StoresConfig locates the two read-only SQLite stores and the shared
// manual-mapping file.
type StoresConfig struct {
	DictionaryDB string `yaml:"dictionary_db,omitempty"` // 자료사전
	LightingDB   string `yaml:"lighting_db,omitempty"`   // lighting template tables
	MappingFile  string `yaml:"mapping_file,omitempty"`  // shared (original-scope) overrides
}

// TuningConfig holds the editing tunables. Zero values fall back to the
// built-in constants.
type TuningConfig struct {
	DebounceMS    int `yaml:"debounce_ms,omitempty"`
	UndoDepth     int `yaml:"undo_depth,omitempty"`
	BlankRows     int `yaml:"blank_rows,omitempty"`
	WrapThreshold int `yaml:"wrap_threshold,omitempty"`
}

// Config is the top-level configuration for sanchul.
type Config struct {
	DataRoot     string       `yaml:"data_root,omitempty"` // chunk store + project data
	LogFile      string       `yaml:"log_file,omitempty"`
	CategoryList string       `yaml:"category_list,omitempty"` // newline-delimited category file
	Stores       StoresConfig `yaml:"stores,omitempty"`
	Tuning       TuningConfig `yaml:"tuning,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults rooted in the XDG
// data directory.
func DefaultConfig() Config {
	data := DataDir()
	return Config{
		DataRoot: data,
		LogFile:  filepath.Join(data, "sanchul.log"),
		Stores: StoresConfig{
			DictionaryDB: filepath.Join(data, "자료사전.db"),
			LightingDB:   filepath.Join(data, "조명기구.db"),
			MappingFile:  filepath.Join(data, "manual_mapping.json"),
		},
	}
}

// Debounce returns the configured debounce interval, defaulting to 300 ms.
func (c Config) Debounce() time.Duration {
	if c.Tuning.DebounceMS <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(c.Tuning.DebounceMS) * time.Millisecond
}

// ConfigDir returns the XDG config directory for sanchul.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "sanchul")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sanchul")
}

// DataDir returns the XDG data directory for sanchul.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "sanchul")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "sanchul")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.DataRoot = expandHome(cfg.DataRoot)
	cfg.LogFile = expandHome(cfg.LogFile)
	cfg.CategoryList = expandHome(cfg.CategoryList)
	cfg.Stores.DictionaryDB = expandHome(cfg.Stores.DictionaryDB)
	cfg.Stores.LightingDB = expandHome(cfg.Stores.LightingDB)
	cfg.Stores.MappingFile = expandHome(cfg.Stores.MappingFile)

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
