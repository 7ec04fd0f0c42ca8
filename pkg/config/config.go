// Package config handles loading and saving mindview configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/mindview/config.yaml
//   - Data:    ~/.local/share/mindview/ (exports written by the wizard)
//   - State:   ~/.local/state/mindview/ (recently opened maps)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appName = "mindview"

// Presentation modes.
const (
	ModeDiagram = "diagram"
	ModeList    = "list"
)

// Diagram layout algorithms.
const (
	AlgorithmTree  = "tree"
	AlgorithmForce = "force"
)

// LayoutConfig holds diagram geometry in pixels.
type LayoutConfig struct {
	LevelSpacing   float64 `yaml:"level_spacing,omitempty"`
	SiblingSpacing float64 `yaml:"sibling_spacing,omitempty"`
	TextMaxWidth   float64 `yaml:"text_max_width,omitempty"`
	FontSize       float64 `yaml:"font_size,omitempty"`
}

// ExportConfig holds defaults for file exports.
type ExportConfig struct {
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Dir    string `yaml:"dir,omitempty"`
}

// Config is the top-level configuration for mindview.
type Config struct {
	SearchDebounceMs int          `yaml:"search_debounce_ms"`
	ResizeDebounceMs int          `yaml:"resize_debounce_ms"`
	NodeDisplayLimit int          `yaml:"node_display_limit"`
	FilterMaxDepth   int          `yaml:"filter_max_depth"`
	Mode             string       `yaml:"mode"`
	Algorithm        string       `yaml:"algorithm"`
	Watch            bool         `yaml:"watch"`
	Layout           LayoutConfig `yaml:"layout,omitempty"`
	Export           ExportConfig `yaml:"export,omitempty"`
}

// DefaultConfig returns a Config with the standard settings.
func DefaultConfig() Config {
	return Config{
		SearchDebounceMs: 1000,
		ResizeDebounceMs: 250,
		NodeDisplayLimit: 20,
		FilterMaxDepth:   2,
		Mode:             ModeDiagram,
		Algorithm:        AlgorithmTree,
		Watch:            true,
		Layout: LayoutConfig{
			LevelSpacing:   180,
			SiblingSpacing: 70,
			TextMaxWidth:   150,
			FontSize:       10,
		},
		Export: ExportConfig{
			Width:  1200,
			Height: 800,
		},
	}
}

// SearchDebounce is the quiet period before a typed query is applied.
func (c Config) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMs) * time.Millisecond
}

// ResizeDebounce is the quiet period before a resize triggers a re-layout.
func (c Config) ResizeDebounce() time.Duration {
	return time.Duration(c.ResizeDebounceMs) * time.Millisecond
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	var errs []error
	if c.SearchDebounceMs < 0 {
		errs = append(errs, fmt.Errorf("search_debounce_ms must be >= 0, got %d", c.SearchDebounceMs))
	}
	if c.ResizeDebounceMs < 0 {
		errs = append(errs, fmt.Errorf("resize_debounce_ms must be >= 0, got %d", c.ResizeDebounceMs))
	}
	if c.NodeDisplayLimit < 1 {
		errs = append(errs, fmt.Errorf("node_display_limit must be >= 1, got %d", c.NodeDisplayLimit))
	}
	if c.FilterMaxDepth < 0 {
		errs = append(errs, fmt.Errorf("filter_max_depth must be >= 0, got %d", c.FilterMaxDepth))
	}
	switch c.Mode {
	case ModeDiagram, ModeList:
	default:
		errs = append(errs, fmt.Errorf("mode must be %q or %q, got %q", ModeDiagram, ModeList, c.Mode))
	}
	switch c.Algorithm {
	case AlgorithmTree, AlgorithmForce:
	default:
		errs = append(errs, fmt.Errorf("algorithm must be %q or %q, got %q", AlgorithmTree, AlgorithmForce, c.Algorithm))
	}
	return errors.Join(errs...)
}

// ConfigDir returns the XDG config directory for mindview.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the XDG data directory for mindview.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// StateDir returns the XDG state directory for mindview.
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, fallback, appName)
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

// LoadFrom reads config from a specific path. Keys missing from the file
// keep their defaults; a missing file yields DefaultConfig.
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
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	cfg.Algorithm = strings.ToLower(strings.TrimSpace(cfg.Algorithm))
	cfg.Export.Dir = expandHome(cfg.Export.Dir)

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config %s: %w", path, err)
	}
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
	return writeYAML(path, cfg, "config")
}

func writeYAML(path string, v any, what string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s directory: %w", what, err)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", what, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", what, err)
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
