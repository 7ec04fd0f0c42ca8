// Package hooks runs shell commands around mv exports. Hooks are configured
// in hooks.yaml under the mindview config dir and run before the exports are
// rendered (pre-export) or after they are written (post-export).
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/mindview/pkg/config"
)

// HookPhase represents when a hook runs
type HookPhase string

const (
	// PreExport runs before any file is rendered. Failure cancels the export.
	PreExport HookPhase = "pre-export"
	// PostExport runs after every file is written. Failure is reported only.
	PostExport HookPhase = "post-export"
)

// Values for Hook.OnError.
const (
	OnErrorFail     = "fail"
	OnErrorContinue = "continue"
)

// FileName is the hook config file looked up in the config dir.
const FileName = "hooks.yaml"

// DefaultTimeout is the default hook execution timeout
const DefaultTimeout = 30 * time.Second

// Hook defines a single hook configuration
type Hook struct {
	Name    string            `yaml:"name" json:"name"`
	Command string            `yaml:"command" json:"command"` // run with sh -c
	Timeout time.Duration     `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"` // values are expanded against the environment
	OnError string            `yaml:"on_error,omitempty" json:"on_error,omitempty"`
}

// Config holds all hook configurations
type Config struct {
	Hooks HooksByPhase `yaml:"hooks" json:"hooks"`
}

// HooksByPhase organizes hooks by their execution phase
type HooksByPhase struct {
	PreExport  []Hook `yaml:"pre-export,omitempty" json:"pre-export,omitempty"`
	PostExport []Hook `yaml:"post-export,omitempty" json:"post-export,omitempty"`
}

// ExportContext describes the export a hook runs around. It reaches the
// hook as MV_* environment variables.
type ExportContext struct {
	Paths     []string  // MV_EXPORT_PATHS, joined with the OS list separator
	Formats   []string  // MV_EXPORT_FORMATS, comma separated
	Source    string    // MV_SOURCE: the mind map file
	Query     string    // MV_QUERY
	NodeCount int       // MV_NODE_COUNT: nodes in the loaded map
	Timestamp time.Time // MV_TIMESTAMP (RFC3339)
}

// ToEnv converts export context to environment variables
func (c ExportContext) ToEnv() []string {
	return []string{
		"MV_EXPORT_PATHS=" + strings.Join(c.Paths, string(os.PathListSeparator)),
		"MV_EXPORT_FORMATS=" + strings.Join(c.Formats, ","),
		"MV_SOURCE=" + c.Source,
		"MV_QUERY=" + c.Query,
		"MV_NODE_COUNT=" + strconv.Itoa(c.NodeCount),
		"MV_TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}

// Loader reads hooks.yaml.
type Loader struct {
	dir      string
	config   *Config
	warnings []string
}

// LoaderOption configures the loader
type LoaderOption func(*Loader)

// WithDir sets the directory holding hooks.yaml (default: the config dir).
func WithDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.dir = dir
	}
}

// NewLoader creates a new hook loader with options
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.dir == "" {
		l.dir = config.ConfigDir()
	}
	return l
}

// Path returns the file the loader reads.
func (l *Loader) Path() string {
	return filepath.Join(l.dir, FileName)
}

// Load reads the hook config. A missing file means no hooks.
func (l *Loader) Load() error {
	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.config = &Config{}
			return nil
		}
		return fmt.Errorf("reading hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	l.warnings = nil
	cfg.Hooks.PreExport, l.warnings = normalizeHooks(cfg.Hooks.PreExport, PreExport, l.warnings)
	cfg.Hooks.PostExport, l.warnings = normalizeHooks(cfg.Hooks.PostExport, PostExport, l.warnings)
	l.config = &cfg
	return nil
}

// normalizeHooks applies defaults, drops empty commands, and accumulates warnings.
func normalizeHooks(hooks []Hook, phase HookPhase, warnings []string) ([]Hook, []string) {
	var out []Hook
	for i, hook := range hooks {
		if strings.TrimSpace(hook.Command) == "" {
			warnings = append(warnings, fmt.Sprintf("%s hook %d has empty command; skipping", phase, i+1))
			continue
		}
		if hook.Timeout <= 0 {
			hook.Timeout = DefaultTimeout
		}
		switch hook.OnError {
		case OnErrorFail, OnErrorContinue:
		case "":
			hook.OnError = OnErrorContinue
			if phase == PreExport {
				hook.OnError = OnErrorFail
			}
		default:
			warnings = append(warnings, fmt.Sprintf("%s hook %q has unknown on_error %q; using %s", phase, hook.Name, hook.OnError, OnErrorFail))
			hook.OnError = OnErrorFail
		}
		if hook.Name == "" {
			hook.Name = fmt.Sprintf("%s-%d", phase, i+1)
		}
		out = append(out, hook)
	}
	return out, warnings
}

// Config returns the loaded configuration (or empty if not loaded)
func (l *Loader) Config() *Config {
	if l.config == nil {
		return &Config{}
	}
	return l.config
}

// HasHooks returns true if any hooks are configured
func (l *Loader) HasHooks() bool {
	if l.config == nil {
		return false
	}
	return len(l.config.Hooks.PreExport) > 0 || len(l.config.Hooks.PostExport) > 0
}

// GetHooks returns hooks for a specific phase
func (l *Loader) GetHooks(phase HookPhase) []Hook {
	if l.config == nil {
		return nil
	}
	switch phase {
	case PreExport:
		return l.config.Hooks.PreExport
	case PostExport:
		return l.config.Hooks.PostExport
	}
	return nil
}

// Warnings returns any warnings from loading
func (l *Loader) Warnings() []string {
	return l.warnings
}

// UnmarshalYAML accepts timeouts as durations ("5s") or bare seconds.
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	// Must mirror Hook except for Timeout.
	type hookDTO struct {
		Name    string            `yaml:"name"`
		Command string            `yaml:"command"`
		Timeout string            `yaml:"timeout,omitempty"`
		Env     map[string]string `yaml:"env,omitempty"`
		OnError string            `yaml:"on_error,omitempty"`
	}

	var dto hookDTO
	if err := node.Decode(&dto); err != nil {
		return err
	}
	h.Name = dto.Name
	h.Command = dto.Command
	h.Env = dto.Env
	h.OnError = dto.OnError

	if dto.Timeout == "" {
		return nil
	}
	if d, err := time.ParseDuration(dto.Timeout); err == nil {
		h.Timeout = d
		return nil
	}
	seconds, err := strconv.ParseFloat(dto.Timeout, 64)
	if err != nil {
		return fmt.Errorf("invalid timeout %q", dto.Timeout)
	}
	h.Timeout = time.Duration(seconds * float64(time.Second))
	return nil
}
