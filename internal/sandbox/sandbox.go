// Package sandbox runs external tools under a CPU-time ceiling with
// combined output capture and independent wall-clock timing.
//
// The CPU limit is installed on the child right after process creation via
// prlimit on Linux, so the kernel terminates a runaway tool without any
// cooperation from the harness. On platforms without prlimit a watchdog
// timer approximates the ceiling by killing the child's process group. The
// wall-clock timeout flag is always computed separately: a tool can exceed
// its wall budget without ever hitting the CPU ceiling (I/O stalls), and
// the flag must be set in that case too.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"
)

// Default cap on captured combined output; counters print counts, not data.
const defaultMaxOutput = 8 * 1024 * 1024

// Config controls one sandboxed invocation.
type Config struct {
	// Dir is the working directory for the child. Empty means inherit.
	// The change applies only to the child process; the harness process
	// never chdirs.
	Dir string

	// CPUTime is the hard CPU-time ceiling and the wall-clock timeout
	// threshold. Zero disables both.
	CPUTime time.Duration

	// MaxOutputBytes caps the captured combined output. Zero means the
	// package default.
	MaxOutputBytes int64
}

// Result describes a finished (or failed-to-start) invocation. All failure
// modes are folded in here; Run never panics or returns an error.
type Result struct {
	// Output is the interleaved stdout+stderr text.
	Output string

	// Elapsed is wall-clock duration from start to process exit.
	Elapsed time.Duration

	// TimedOut is set when Elapsed exceeds the configured CPUTime,
	// regardless of whether the kernel-enforced limit fired or the
	// process exited cleanly.
	TimedOut bool

	// ExitCode is the child's exit code; -1 when the child was killed by
	// a signal or never started.
	ExitCode int

	// Truncated is set when the output cap was hit.
	Truncated bool

	// Err reports launch failures and wait errors other than a nonzero
	// exit (those are visible through ExitCode).
	Err error
}

// Run executes name with args under cfg and blocks until the child exits.
// Cancelling ctx kills the child's whole process group; there is no other
// early-stop path besides the CPU ceiling.
func Run(ctx context.Context, name string, args []string, cfg Config) *Result {
	res := &Result{ExitCode: -1}

	maxOut := cfg.MaxOutputBytes
	if maxOut <= 0 {
		maxOut = defaultMaxOutput
	}
	out := &limitedWriter{max: maxOut}

	cmd := exec.Command(name, args...)
	cmd.Dir = cfg.Dir
	cmd.Stdout = out
	cmd.Stderr = out
	setupProcessGroup(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		res.Err = fmt.Errorf("start %s: %w", name, err)
		return res
	}

	var watchdog *time.Timer
	if cfg.CPUTime > 0 {
		enforced, err := setCPULimit(cmd.Process.Pid, cfg.CPUTime)
		if err != nil {
			slog.Warn("could not install CPU limit on child", "pid", cmd.Process.Pid, "error", err)
		}
		if !enforced || err != nil {
			watchdog = time.AfterFunc(cfg.CPUTime, func() {
				_ = killProcessGroup(cmd)
			})
		}
	}

	waited := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = killProcessGroup(cmd)
		case <-waited:
		}
	}()

	waitErr := cmd.Wait()
	close(waited)
	if watchdog != nil {
		watchdog.Stop()
	}

	res.Elapsed = time.Since(start)
	res.Output = out.String()
	res.Truncated = out.Truncated()
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if cfg.CPUTime > 0 && res.Elapsed > cfg.CPUTime {
		res.TimedOut = true
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		res.Err = waitErr
	}
	if ctx.Err() != nil {
		res.Err = ctx.Err()
	}
	return res
}

// limitedWriter buffers writes up to max bytes and discards the rest.
// Stdout and stderr share one instance, which also serializes the streams.
type limitedWriter struct {
	mu        sync.Mutex
	buf       []byte
	max       int64
	truncated bool
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	room := w.max - int64(len(w.buf))
	if room <= 0 {
		w.truncated = true
		return len(p), nil
	}
	if int64(len(p)) > room {
		w.buf = append(w.buf, p[:room]...)
		w.truncated = true
		return len(p), nil
	}
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *limitedWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return string(w.buf)
}

func (w *limitedWriter) Truncated() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.truncated
}
