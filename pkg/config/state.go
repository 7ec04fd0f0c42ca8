package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MaxRecentFiles bounds the recently opened list.
const MaxRecentFiles = 10

// State is what mindview remembers between runs.
type State struct {
	RecentFiles []string `yaml:"recent_files,omitempty"`
}

// StatePath returns the full path to recent.yaml.
func StatePath() string {
	dir := StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "recent.yaml")
}

// LoadStateFrom reads state from path. A missing file is an empty state.
func LoadStateFrom(path string) (State, error) {
	var st State
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, fmt.Errorf("reading state: %w", err)
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("parsing state: %w", err)
	}
	return st, nil
}

// SaveStateTo writes state to path.
func SaveStateTo(st State, path string) error {
	return writeYAML(path, st, "state")
}

// Remember moves path to the front of the recent list.
func (s *State) Remember(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	out := []string{path}
	for _, p := range s.RecentFiles {
		if p != path && len(out) < MaxRecentFiles {
			out = append(out, p)
		}
	}
	s.RecentFiles = out
}

// RecordRecent adds path to the recent list in the XDG state directory.
func RecordRecent(path string) error {
	statePath := StatePath()
	if statePath == "" {
		return fmt.Errorf("cannot determine state directory")
	}
	st, err := LoadStateFrom(statePath)
	if err != nil {
		st = State{}
	}
	st.Remember(path)
	return SaveStateTo(st, statePath)
}
