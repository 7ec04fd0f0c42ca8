// Package debug provides conditional debug logging for mv.
//
// Debug logging is enabled by setting the MV_DEBUG environment variable:
//
//	MV_DEBUG=1 mv map.mm
//
// Messages go to stderr, or to the file named by MV_DEBUG_FILE. The TUI runs
// in the alternate screen, so a file is the only readable target while it is
// up. When disabled (default), every function is a no-op.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

const prefix = "[MV_DEBUG] "

var (
	mu      sync.Mutex
	enabled bool
	logger  *log.Logger
	closer  io.Closer
)

func init() {
	if os.Getenv("MV_DEBUG") == "" {
		return
	}
	enabled = true
	var w io.Writer = os.Stderr
	if path := os.Getenv("MV_DEBUG_FILE"); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			w = f
			closer = f
		}
	}
	logger = log.New(w, prefix, log.Ltime|log.Lmicroseconds)
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetEnabled turns logging on or off, creating a stderr logger if needed.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
	}
}

// SetOutput redirects debug output. Tests use it to capture messages.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, prefix, log.Ltime|log.Lmicroseconds)
}

// Close releases the MV_DEBUG_FILE handle, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

func active() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return nil
	}
	return logger
}

// Log writes a printf-style debug message.
func Log(format string, args ...any) {
	if l := active(); l != nil {
		l.Printf(format, args...)
	}
}

// LogTiming writes a timing message.
func LogTiming(name string, d time.Duration) {
	if l := active(); l != nil {
		l.Printf("%s took %v", name, d)
	}
}

// LogIf writes a debug message only if cond is true.
func LogIf(cond bool, format string, args ...any) {
	if !cond {
		return
	}
	Log(format, args...)
}

// LogFunc returns a function that logs msg when called:
//
//	defer debug.LogFunc("reload done")()
func LogFunc(msg string) func() {
	l := active()
	if l == nil {
		return func() {}
	}
	return func() { l.Print(msg) }
}

// LogEnterExit logs entry and exit with timing:
//
//	defer debug.LogEnterExit("render")()
func LogEnterExit(name string) func() {
	l := active()
	if l == nil {
		return func() {}
	}
	l.Printf("-> %s", name)
	start := time.Now()
	return func() {
		l.Printf("<- %s (%v)", name, time.Since(start))
	}
}

// Trace is an alias for LogEnterExit.
var Trace = LogEnterExit

// Dump logs a value with its type.
func Dump(name string, v any) {
	if l := active(); l != nil {
		l.Printf("%s: %T = %+v", name, v, v)
	}
}

// Section logs a section header.
func Section(name string) {
	if l := active(); l != nil {
		l.Printf("=== %s ===", name)
	}
}

var checkpoints int

// Checkpoint logs a numbered checkpoint.
func Checkpoint(msg string) {
	l := active()
	if l == nil {
		return
	}
	mu.Lock()
	checkpoints++
	n := checkpoints
	mu.Unlock()
	l.Printf("[%d] %s", n, msg)
}

// ResetCheckpoints resets the checkpoint counter.
func ResetCheckpoints() {
	mu.Lock()
	checkpoints = 0
	mu.Unlock()
}

// Assert panics with msg if cond is false. Only active when enabled.
func Assert(cond bool, msg string) {
	l := active()
	if l == nil || cond {
		return
	}
	l.Printf("ASSERTION FAILED: %s", msg)
	panic(fmt.Sprintf("debug assertion failed: %s", msg))
}

// AssertNoError panics if err is not nil. Only active when enabled.
func AssertNoError(err error, context string) {
	l := active()
	if l == nil || err == nil {
		return
	}
	l.Printf("ASSERTION FAILED: %s: %v", context, err)
	panic(fmt.Sprintf("debug assertion failed: %s: %v", context, err))
}
