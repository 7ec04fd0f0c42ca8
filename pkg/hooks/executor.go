package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/vanderheijden86/mindview/pkg/debug"
)

// Result records one hook run.
type Result struct {
	Hook     string
	Phase    HookPhase
	Success  bool
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// Executor runs configured hooks for a single export.
type Executor struct {
	config  *Config
	context ExportContext

	mu      sync.Mutex
	results []Result
}

// NewExecutor creates an executor for cfg. A nil cfg runs nothing.
func NewExecutor(cfg *Config, ectx ExportContext) *Executor {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Executor{config: cfg, context: ectx}
}

// SetPaths replaces the exported paths passed to later hooks.
func (e *Executor) SetPaths(paths []string) {
	e.context.Paths = append([]string(nil), paths...)
}

// RunPreExport runs the pre-export hooks in order and stops at the first
// failing hook whose on_error is fail.
func (e *Executor) RunPreExport(ctx context.Context) error {
	for _, h := range e.config.Hooks.PreExport {
		r := e.run(ctx, h, PreExport)
		if !r.Success && h.OnError != OnErrorContinue {
			return fmt.Errorf("pre-export hook %q failed: %w", h.Name, r.Error)
		}
	}
	return nil
}

// RunPostExport runs every post-export hook. Failures of hooks whose
// on_error is fail are joined into the returned error.
func (e *Executor) RunPostExport(ctx context.Context) error {
	var errs []error
	for _, h := range e.config.Hooks.PostExport {
		r := e.run(ctx, h, PostExport)
		if !r.Success && h.OnError == OnErrorFail {
			errs = append(errs, fmt.Errorf("post-export hook %q failed: %w", h.Name, r.Error))
		}
	}
	return errors.Join(errs...)
}

func (e *Executor) run(ctx context.Context, h Hook, phase HookPhase) Result {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", h.Command)
	cmd.Env = append(os.Environ(), e.context.ToEnv()...)
	for k, v := range h.Env {
		cmd.Env = append(cmd.Env, k+"="+os.ExpandEnv(v))
	}
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r := Result{
		Hook:     h.Name,
		Phase:    phase,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
	}
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		r.Error = fmt.Errorf("timed out after %s", timeout)
	case err != nil:
		r.Error = err
		if r.Stderr != "" {
			r.Error = fmt.Errorf("%w: %s", err, r.Stderr)
		}
	default:
		r.Success = true
	}
	debug.Log("hooks: %s %q success=%v in %s", phase, h.Name, r.Success, r.Duration)

	e.mu.Lock()
	e.results = append(e.results, r)
	e.mu.Unlock()
	return r
}

// Results returns the runs so far, in order.
func (e *Executor) Results() []Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Result(nil), e.results...)
}

// Summary returns a one-line account of the runs, or "" when none ran.
func (e *Executor) Summary() string {
	results := e.Results()
	if len(results) == 0 {
		return ""
	}
	var ok int
	var failed []string
	for _, r := range results {
		if r.Success {
			ok++
		} else {
			failed = append(failed, r.Hook)
		}
	}
	s := fmt.Sprintf("Hooks: %d succeeded, %d failed", ok, len(failed))
	if len(failed) > 0 {
		s += " (" + strings.Join(failed, ", ") + ")"
	}
	return s
}

// RunHooks loads hooks.yaml from dir (the config dir when empty) and
// returns an executor, or nil when hooks are disabled or none are set.
func RunHooks(dir string, ectx ExportContext, noHooks bool) (*Executor, []string, error) {
	if noHooks {
		return nil, nil, nil
	}
	var opts []LoaderOption
	if dir != "" {
		opts = append(opts, WithDir(dir))
	}
	l := NewLoader(opts...)
	if err := l.Load(); err != nil {
		return nil, nil, err
	}
	if !l.HasHooks() {
		return nil, l.Warnings(), nil
	}
	return NewExecutor(l.Config(), ectx), l.Warnings(), nil
}
