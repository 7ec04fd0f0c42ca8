// Package watcher reports changes to the mind-map document being viewed so
// the UI can re-import it.
//
// Events come from fsnotify on the parent directory, which survives the
// write-temp-then-rename save that Freeplane and most editors use. Network
// and FUSE filesystems rarely deliver events, so there the watcher polls.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/mindview/pkg/debug"
)

// DefaultPollInterval is the default polling interval for fallback mode.
const DefaultPollInterval = 2 * time.Second

// ForcePollEnv forces polling mode when set to a true value.
const ForcePollEnv = "MV_FORCE_POLL"

// Common errors.
var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounceDuration = d
	}
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithOnChange sets the callback invoked when the document changes.
func WithOnChange(fn func()) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) WatcherOption {
	return func(w *Watcher) {
		w.forcePoll = force
	}
}

// fingerprint identifies one version of the document on disk.
type fingerprint struct {
	mtime time.Time
	size  int64
}

func (f fingerprint) exists() bool { return !f.mtime.IsZero() }

func stat(path string) (fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fingerprint{}, err
	}
	return fingerprint{mtime: info.ModTime(), size: info.Size()}, nil
}

// Watcher monitors one document for changes.
type Watcher struct {
	path             string
	debounceDuration time.Duration
	pollInterval     time.Duration
	onChange         func()
	onError          func(error)
	forcePoll        bool

	mu        sync.RWMutex
	fsType    FilesystemType
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	polling   bool
	last      fingerprint
	cancel    context.CancelFunc
	started   bool
	changeCh  chan struct{}
}

// NewWatcher creates a watcher for the document at path. Nothing happens
// until Start.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:             absPath,
		debounceDuration: DefaultDebounceDuration,
		pollInterval:     DefaultPollInterval,
		onChange:         func() {},
		onError:          func(error) {},
		changeCh:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounceDuration)
	return w, nil
}

// Start begins watching. A document that does not exist yet is fine; its
// creation counts as a change.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	fp, err := stat(w.path)
	if err != nil && os.IsPermission(err) {
		return ErrPermission
	}
	w.last = fp

	w.fsType = detectFilesystemTypeFunc(w.path)
	w.polling = w.forcePoll || envBool(ForcePollEnv) || isRemoteFilesystem(w.fsType)

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	if !w.polling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			if err = fsw.Add(filepath.Dir(w.path)); err != nil {
				fsw.Close()
			}
		}
		if err != nil {
			debug.Log("watcher: fsnotify unavailable for %s, polling: %v", w.path, err)
			w.polling = true
		} else {
			w.fsWatcher = fsw
			go w.watchEvents(ctx, fsw)
		}
	}
	if w.polling {
		go w.watchPolling(ctx)
	}

	debug.Log("watcher: watching %s (fs=%s polling=%v)", w.path, w.fsType, w.polling)
	w.started = true
	return nil
}

// Stop stops watching. Changed is left open so a pending receive in a UI
// command simply never fires.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// IsPolling returns true if the watcher is using polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted returns true if the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed receives once per debounced change. Sends never block; a change
// that arrives while one is pending is merged into it.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// Path returns the absolute path of the watched document.
func (w *Watcher) Path() string {
	return w.path
}

// FilesystemType returns the classification made at Start.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

// PollInterval returns the polling interval used when polling mode is active.
func (w *Watcher) PollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pollInterval
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func (w *Watcher) watchEvents(ctx context.Context, fsw *fsnotify.Watcher) {
	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			// Remove and Rename are usually half of an atomic save, so the
			// file is checked again once the burst settles.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.debouncer.Trigger(w.settle)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) watchPolling(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fp, err := stat(w.path)
			if err != nil && !os.IsNotExist(err) {
				if os.IsPermission(err) {
					err = ErrPermission
				}
				w.onError(err)
				continue
			}
			w.mu.RLock()
			last := w.last
			w.mu.RUnlock()
			if fp != last {
				w.debouncer.Trigger(w.settle)
			}
		}
	}
}

// settle runs after a debounced burst and reports what the burst amounted
// to: a change, a removal or nothing.
func (w *Watcher) settle() {
	fp, err := stat(w.path)

	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	prev := w.last
	w.last = fp
	w.mu.Unlock()

	switch {
	case err != nil && os.IsNotExist(err):
		if prev.exists() {
			debug.Log("watcher: %s removed", w.path)
			w.onError(ErrFileRemoved)
		}
	case err != nil:
		w.onError(err)
	case fp != prev:
		debug.Log("watcher: %s changed (%d bytes)", w.path, fp.size)
		w.onChange()
		select {
		case w.changeCh <- struct{}{}:
		default:
		}
	}
}
