package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/mindview/pkg/config"
	"github.com/vanderheijden86/mindview/pkg/model"
	"github.com/vanderheijden86/mindview/pkg/view"
)

// WizardConfig is what the export wizard collects. It is remembered between
// runs.
type WizardConfig struct {
	Formats   []Format       `json:"formats"`
	Output    string         `json:"output"` // path without extension
	Title     string         `json:"title,omitempty"`
	Query     string         `json:"query,omitempty"`
	Algorithm view.Algorithm `json:"algorithm"`
	MaxDepth  int            `json:"max_depth"`
	Force     bool           `json:"force,omitempty"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
}

// WizardResult lists the files a wizard run wrote.
type WizardResult struct {
	Paths []string
}

// Paths returns one output path per selected format.
func (c WizardConfig) Paths() []string {
	base := strings.TrimSuffix(c.Output, filepath.Ext(c.Output))
	if base == "" {
		base = "mindmap"
	}
	paths := make([]string, 0, len(c.Formats))
	for _, f := range c.Formats {
		paths = append(paths, base+"."+string(f))
	}
	return paths
}

// SnapshotOptions converts the answers for tree.
func (c WizardConfig) SnapshotOptions(tree *model.Node, limit int) SnapshotOptions {
	return SnapshotOptions{
		Title:     c.Title,
		Tree:      tree,
		Query:     c.Query,
		Algorithm: c.Algorithm,
		MaxDepth:  c.MaxDepth,
		Limit:     limit,
		Force:     c.Force,
		Width:     c.Width,
		Height:    c.Height,
	}
}

// Wizard walks the user through an export.
type Wizard struct {
	config *WizardConfig
	tree   *model.Node
	limit  int
}

// NewWizard starts from defaults, usually the current CLI settings.
func NewWizard(tree *model.Node, defaults WizardConfig, limit int) *Wizard {
	if len(defaults.Formats) == 0 {
		defaults.Formats = []Format{FormatSVG}
	}
	if defaults.Algorithm == "" {
		defaults.Algorithm = view.AlgorithmTree
	}
	if defaults.Width <= 0 {
		defaults.Width = DefaultWidth
	}
	if defaults.Height <= 0 {
		defaults.Height = DefaultHeight
	}
	return &Wizard{config: &defaults, tree: tree, limit: limit}
}

// GetConfig returns the collected configuration.
func (w *Wizard) GetConfig() *WizardConfig {
	return w.config
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm falls back to accessible prompts when stdin is not a terminal.
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Run asks the questions, saves the answers and writes the files.
func (w *Wizard) Run(ctx context.Context) (*WizardResult, error) {
	if w.tree == nil {
		return nil, ErrNoTree
	}
	fmt.Printf("Export %q (%d nodes)\n\n", w.tree.Name, w.tree.Count())

	if saved, err := LoadWizardConfig(); err == nil && saved != nil && len(saved.Formats) > 0 {
		useSaved, err := w.offerSavedConfig(ctx, saved)
		if err != nil {
			return nil, err
		}
		if useSaved {
			w.config = saved
		} else if err := w.collect(ctx); err != nil {
			return nil, err
		}
	} else if err := w.collect(ctx); err != nil {
		return nil, err
	}

	if err := SaveWizardConfig(w.config); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save export settings: %v\n", err)
	}

	paths := w.config.Paths()
	if err := SaveAll(ctx, w.config.SnapshotOptions(w.tree, w.limit), paths...); err != nil {
		return nil, err
	}
	for _, p := range paths {
		fmt.Printf("  wrote %s\n", p)
	}
	return &WizardResult{Paths: paths}, nil
}

func (w *Wizard) offerSavedConfig(ctx context.Context, saved *WizardConfig) (bool, error) {
	fmt.Println("Found previous export settings:")
	fmt.Printf("  Files:     %s\n", strings.Join(saved.Paths(), ", "))
	if saved.Query != "" {
		fmt.Printf("  Query:     %s\n", saved.Query)
	}
	fmt.Printf("  Algorithm: %s\n\n", saved.Algorithm)

	useSaved := true
	form := newForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Export again with these settings?").
			Value(&useSaved).
			Affirmative("Yes").
			Negative("No, reconfigure"),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return useSaved, nil
}

func (w *Wizard) collect(ctx context.Context) error {
	c := w.config
	formats := make([]string, 0, len(c.Formats))
	for _, f := range c.Formats {
		formats = append(formats, string(f))
	}
	algorithm := string(c.Algorithm)
	depth := strconv.Itoa(c.MaxDepth)
	if c.Output == "" {
		c.Output = "mindmap"
	}

	form := newForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Formats").
				Options(
					huh.NewOption("SVG diagram", string(FormatSVG)),
					huh.NewOption("PNG image", string(FormatPNG)),
					huh.NewOption("JSON layout", string(FormatJSON)),
					huh.NewOption("Markdown outline", string(FormatMarkdown)),
				).
				Validate(func(v []string) error {
					if len(v) == 0 {
						return fmt.Errorf("pick at least one format")
					}
					return nil
				}).
				Value(&formats),
			huh.NewInput().
				Title("Output path").
				Description("Extension is added per format").
				Value(&c.Output),
			huh.NewInput().
				Title("Title (optional)").
				Value(&c.Title),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Search query").
				Description("Empty exports the whole map").
				Value(&c.Query),
			huh.NewSelect[string]().
				Title("Layout").
				Options(
					huh.NewOption("Tree", string(view.AlgorithmTree)),
					huh.NewOption("Force-directed", string(view.AlgorithmForce)),
				).
				Value(&algorithm),
			huh.NewInput().
				Title("Context depth below matches").
				Value(&depth).
				Validate(validateDepth),
			huh.NewConfirm().
				Title("Ignore the node display limit?").
				Value(&c.Force),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return err
	}

	c.Formats = nil
	for _, f := range formats {
		if pf, err := ParseFormat(f); err == nil {
			c.Formats = append(c.Formats, pf)
		}
	}
	c.Algorithm, _ = view.ParseAlgorithm(algorithm)
	c.MaxDepth, _ = strconv.Atoi(strings.TrimSpace(depth))
	return nil
}

func validateDepth(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number of levels, 0 or more")
	}
	return nil
}

// WizardConfigPath is where answers are remembered.
func WizardConfigPath() string {
	dir := config.StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "export-wizard.json")
}

// LoadWizardConfig returns the saved answers, or nil when there are none.
func LoadWizardConfig() (*WizardConfig, error) {
	return loadWizardConfigFrom(WizardConfigPath())
}

func loadWizardConfigFrom(path string) (*WizardConfig, error) {
	if path == "" {
		return nil, fmt.Errorf("could not determine state path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var cfg WizardConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveWizardConfig remembers answers for the next run.
func SaveWizardConfig(cfg *WizardConfig) error {
	return saveWizardConfigTo(cfg, WizardConfigPath())
}

func saveWizardConfigTo(cfg *WizardConfig, path string) error {
	if path == "" {
		return fmt.Errorf("could not determine state path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// RunWizard runs the interactive export for tree.
func RunWizard(ctx context.Context, tree *model.Node, defaults WizardConfig, limit int) (*WizardResult, error) {
	return NewWizard(tree, defaults, limit).Run(ctx)
}
