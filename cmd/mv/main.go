package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"

	"github.com/vanderheijden86/mindview/pkg/config"
	"github.com/vanderheijden86/mindview/pkg/debug"
	"github.com/vanderheijden86/mindview/pkg/export"
	"github.com/vanderheijden86/mindview/pkg/hooks"
	"github.com/vanderheijden86/mindview/pkg/loader"
	"github.com/vanderheijden86/mindview/pkg/metrics"
	"github.com/vanderheijden86/mindview/pkg/model"
	"github.com/vanderheijden86/mindview/pkg/ui"
	"github.com/vanderheijden86/mindview/pkg/version"
	"github.com/vanderheijden86/mindview/pkg/view"
	"github.com/vanderheijden86/mindview/pkg/watcher"
)

// pathList collects a repeatable flag.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

type cliOptions struct {
	File       string
	Query      string
	Mode       string
	Algorithm  string
	ConfigPath string
	Depth      int
	Limit      int
	Width      int
	Height     int
	Exports    pathList
	Force      bool
	Wizard     bool
	Stats      bool
	NoWatch    bool
	NoHooks    bool
	Version    bool

	set map[string]bool // flags given on the command line
}

// parseFlags reads args. Flags may come before or after FILE.
func parseFlags(args []string, out io.Writer) (*cliOptions, error) {
	o := &cliOptions{set: make(map[string]bool)}
	fs := flag.NewFlagSet("mv", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&o.Query, "q", "", "Search query applied on start")
	fs.IntVar(&o.Depth, "depth", 0, "Levels shown below each match")
	fs.StringVar(&o.Mode, "mode", "", "Presentation: diagram or list")
	fs.StringVar(&o.Algorithm, "algorithm", "", "Diagram layout: tree or force")
	fs.IntVar(&o.Limit, "limit", 0, "Largest tree drawn as a diagram")
	fs.Var(&o.Exports, "export", "Write a snapshot to `path` (.svg, .png, .json, .md); repeatable or comma-separated")
	fs.IntVar(&o.Width, "width", 0, "Export viewport width in pixels")
	fs.IntVar(&o.Height, "height", 0, "Export viewport height in pixels")
	fs.BoolVar(&o.Force, "force", false, "Export even when the tree exceeds the display limit")
	fs.BoolVar(&o.Wizard, "wizard", false, "Choose export options interactively")
	fs.BoolVar(&o.Stats, "stats", false, "Print timing statistics as JSON to stderr on exit")
	fs.BoolVar(&o.NoWatch, "no-watch", false, "Do not reload when the file changes")
	fs.BoolVar(&o.NoHooks, "no-hooks", false, "Skip export hooks from hooks.yaml")
	fs.StringVar(&o.ConfigPath, "config", "", "Config file (default: XDG config dir)")
	fs.BoolVar(&o.Version, "version", false, "Show version")
	fs.Usage = func() {
		fmt.Fprintln(out, "Usage: mv [flags] FILE")
		fmt.Fprintln(out, "\nBrowse a mind map (.mm, .opml, .json) in the terminal, or export it.")
		fmt.Fprintln(out, "\nFlags:")
		fs.PrintDefaults()
	}

	var files []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			break
		}
		files = append(files, fs.Arg(0))
		rest = fs.Args()[1:]
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	if o.Version {
		return o, nil
	}
	switch len(files) {
	case 0:
		fs.Usage()
		return nil, errors.New("missing FILE")
	case 1:
		o.File = files[0]
	default:
		return nil, fmt.Errorf("expected one FILE, got %d", len(files))
	}
	return o, nil
}

// applyFlags overlays explicitly given flags on cfg.
func applyFlags(cfg config.Config, o *cliOptions) (config.Config, error) {
	if o.set["mode"] {
		cfg.Mode = strings.ToLower(o.Mode)
	}
	if o.set["algorithm"] {
		cfg.Algorithm = strings.ToLower(o.Algorithm)
	}
	if o.set["depth"] {
		cfg.FilterMaxDepth = o.Depth
	}
	if o.set["limit"] {
		cfg.NodeDisplayLimit = o.Limit
	}
	if o.set["width"] {
		cfg.Export.Width = o.Width
	}
	if o.set["height"] {
		cfg.Export.Height = o.Height
	}
	if o.NoWatch {
		cfg.Watch = false
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Export.Width <= 0 || cfg.Export.Height <= 0 {
		return cfg, fmt.Errorf("export size must be positive, got %dx%d", cfg.Export.Width, cfg.Export.Height)
	}
	return cfg, nil
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func snapshotOptions(o *cliOptions, cfg config.Config, tree *model.Node) export.SnapshotOptions {
	algo, err := view.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		algo = view.AlgorithmTree
	}
	return export.SnapshotOptions{
		Tree:      tree,
		Query:     o.Query,
		Algorithm: algo,
		MaxDepth:  cfg.FilterMaxDepth,
		Limit:     cfg.NodeDisplayLimit,
		Force:     o.Force,
		Width:     cfg.Export.Width,
		Height:    cfg.Export.Height,
		Layout:    ui.LayoutOptions(cfg),
	}
}

// runExport writes every -export path, wrapped in the configured hooks. A
// failing pre-export hook stops the export before anything is written.
func runExport(ctx context.Context, w io.Writer, o *cliOptions, cfg config.Config, tree *model.Node) error {
	paths := export.SplitPaths(o.Exports...)
	hx, warnings, err := hooks.RunHooks("", exportContext(o, tree, paths), o.NoHooks)
	if err != nil {
		return err
	}
	for _, msg := range warnings {
		fmt.Fprintf(w, "Warning: %s\n", msg)
	}
	if hx != nil {
		if err := hx.RunPreExport(ctx); err != nil {
			return err
		}
	}
	if err := export.SaveAll(ctx, snapshotOptions(o, cfg, tree), paths...); err != nil {
		return err
	}
	reportWritten(w, paths)
	if hx == nil {
		return nil
	}
	err = hx.RunPostExport(ctx)
	fmt.Fprintln(w, hx.Summary())
	return err
}

func exportContext(o *cliOptions, tree *model.Node, paths []string) hooks.ExportContext {
	formats := make([]string, 0, len(paths))
	for _, p := range paths {
		ext := strings.TrimPrefix(filepath.Ext(p), ".")
		if f, err := export.ParseFormat(ext); err == nil {
			ext = string(f)
		}
		formats = append(formats, ext)
	}
	source := o.File
	if abs, err := filepath.Abs(o.File); err == nil {
		source = abs
	}
	return hooks.ExportContext{
		Paths:     paths,
		Formats:   formats,
		Source:    source,
		Query:     o.Query,
		NodeCount: tree.Count(),
		Timestamp: time.Now(),
	}
}

func reportWritten(w io.Writer, paths []string) {
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		if fi, err := os.Stat(p); err == nil {
			fmt.Fprintf(w, "Wrote %s (%s)\n", p, humanize.Bytes(uint64(fi.Size())))
		}
	}
}

// wizardDefaults seeds the wizard from the flags. Output lands in the
// configured export dir, or the XDG data dir.
func wizardDefaults(o *cliOptions, cfg config.Config) export.WizardConfig {
	so := snapshotOptions(o, cfg, nil)
	dir := cfg.Export.Dir
	if dir == "" {
		dir = config.DataDir()
	}
	stem := strings.TrimSuffix(filepath.Base(o.File), filepath.Ext(o.File))
	return export.WizardConfig{
		Formats:   []export.Format{export.FormatSVG},
		Output:    filepath.Join(dir, stem),
		Query:     so.Query,
		Algorithm: so.Algorithm,
		MaxDepth:  so.MaxDepth,
		Force:     so.Force,
		Width:     so.Width,
		Height:    so.Height,
	}
}

func runWizard(ctx context.Context, w io.Writer, o *cliOptions, cfg config.Config, tree *model.Node) error {
	res, err := export.RunWizard(ctx, tree, wizardDefaults(o, cfg), cfg.NodeDisplayLimit)
	if err != nil {
		return err
	}
	reportWritten(w, res.Paths)
	return nil
}

type statsReport struct {
	Version string                `json:"version"`
	Timings []metrics.TimingStats `json:"timings"`
}

func printStats(w io.Writer) error {
	data, err := json.MarshalIndent(statsReport{Version: version.Version, Timings: metrics.AllTimingStats()}, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func startWatcher(path string) *watcher.Watcher {
	w, err := watcher.NewWatcher(path,
		watcher.WithOnError(func(err error) { debug.Log("watcher: %v", err) }),
	)
	if err != nil {
		debug.Log("watcher: %v", err)
		return nil
	}
	if err := w.Start(); err != nil {
		debug.Log("watcher: start failed: %v", err)
		return nil
	}
	return w
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if opts.Version {
		fmt.Printf("mv %s\n", version.Version)
		os.Exit(0)
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		// Non-fatal: LoadFrom already fell back to defaults.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg, err = applyFlags(cfg, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	tree, err := loader.Load(opts.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if abs, err := filepath.Abs(opts.File); err == nil {
		if err := config.RecordRecent(abs); err != nil {
			debug.Log("state: %v", err)
		}
	}

	switch {
	case opts.Wizard || len(opts.Exports) > 0:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		if opts.Wizard {
			err = runWizard(ctx, os.Stdout, opts, cfg, tree)
		} else {
			err = runExport(ctx, os.Stdout, opts, cfg, tree)
		}
		stop()
	default:
		err = runTUI(opts, cfg, tree)
	}

	if opts.Stats {
		if serr := printStats(os.Stderr); serr != nil {
			fmt.Fprintf(os.Stderr, "Error writing stats: %v\n", serr)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(o *cliOptions, cfg config.Config, tree *model.Node) error {
	var w *watcher.Watcher
	if cfg.Watch {
		w = startWatcher(o.File)
		if w != nil {
			defer w.Stop()
		}
	}
	var size int64
	if fi, err := os.Stat(o.File); err == nil {
		size = fi.Size()
	}

	m := ui.NewModel(ui.Options{
		Path:    o.File,
		Size:    size,
		Tree:    tree,
		Query:   o.Query,
		Config:  cfg,
		Watcher: w,
	})
	return runTUIProgram(m)
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set MV_TUI_AUTOCLOSE_MS.
	if ms := autoCloseDelay(os.Getenv("MV_TUI_AUTOCLOSE_MS")); ms > 0 {
		go func() {
			timer := time.NewTimer(ms)
			defer timer.Stop()

			select {
			case <-runDone:
				return
			case <-timer.C:
			}

			p.Quit()

			select {
			case <-runDone:
				return
			case <-time.After(2 * time.Second):
			}

			p.Kill()
		}()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

func autoCloseDelay(v string) time.Duration {
	if v == "" {
		return 0
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
