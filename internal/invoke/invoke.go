// Package invoke composes the sandbox and the output parser into one
// structured result per (counter, instance) pair. Nothing escapes this
// boundary as an error: timeouts, tool crashes, and unparsable output all
// end up as flags on the RunResult.
package invoke

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"countercheck/internal/config"
	"countercheck/internal/sandbox"
	"countercheck/internal/toolout"
)

// Options carries the per-run resource settings and artifact locations.
type Options struct {
	// Timeout is the CPU ceiling and wall-clock budget per invocation.
	Timeout time.Duration

	// MemoutMB is substituted for {STAREXEC_MAX_MEM}. The harness cannot
	// enforce it; tools are expected to honor it themselves.
	MemoutMB int

	// LogDir receives the raw-output artifact when parsing fails.
	LogDir string

	// ScratchDir is substituted for {TMP}.
	ScratchDir string
}

// RunResult is the immutable record of one counter invocation. It is
// appended to the campaign's result table and never updated.
type RunResult struct {
	Counter  string `json:"counter"`
	Instance string `json:"instance"`

	toolout.CounterOutput

	TimedOut    bool    `json:"timed_out"`
	Errored     bool    `json:"errored"`
	WallSeconds float64 `json:"wall_seconds"`

	// LogPath points at the raw-output artifact, set only on parse
	// failure. The artifact is the primary postmortem aid when a tool's
	// output cannot be interpreted.
	LogPath string `json:"log_path,omitempty"`
}

// Command builds the invocation for one (tool, instance) pair. The tool
// runs from its own directory (wrapper scripts resolve their binaries
// relative to themselves). When the argument template never references
// {INSTANCE}, the instance path is appended positionally.
func Command(tool config.Tool, instancePath string, opts Options) (name string, args []string, dir string) {
	r := strings.NewReplacer(
		"{INSTANCE}", instancePath,
		"{STAREXEC_MAX_MEM}", strconv.Itoa(opts.MemoutMB),
		"{STAREXEC_WALLCLOCK_LIMIT}", strconv.Itoa(int(opts.Timeout/time.Second)),
		"{TMP}", opts.ScratchDir,
	)
	args = strings.Fields(r.Replace(tool.Args))
	if !strings.Contains(tool.Args, "{INSTANCE}") {
		args = append(args, instancePath)
	}
	return tool.Path, args, filepath.Dir(tool.Path)
}

// RunCounter invokes one counter on one instance and folds every outcome
// into the returned RunResult.
func RunCounter(ctx context.Context, tool config.Tool, instancePath string, opts Options) RunResult {
	name, args, dir := Command(tool, instancePath, opts)
	cmdline := strings.Join(append([]string{name}, args...), " ")
	slog.Debug("running counter", "counter", tool.Name, "instance", instancePath, "command", cmdline)

	res := sandbox.Run(ctx, name, args, sandbox.Config{Dir: dir, CPUTime: opts.Timeout})
	if res.TimedOut {
		slog.Info("counter exceeded time budget", "counter", tool.Name, "instance", instancePath, "timeout", opts.Timeout)
	}
	if res.Err != nil {
		slog.Warn("counter process error", "counter", tool.Name, "instance", instancePath, "error", res.Err)
	}

	out, parseErr := toolout.ParseCounter(res.Output)
	rr := RunResult{
		Counter:       tool.Name,
		Instance:      instancePath,
		CounterOutput: out,
		TimedOut:      res.TimedOut,
		Errored:       parseErr != nil || res.Err != nil || res.ExitCode != 0,
		WallSeconds:   res.Elapsed.Seconds(),
	}
	if parseErr != nil {
		logPath, err := StoreOutput(opts.LogDir, instancePath, tool.Name, cmdline, res.Output)
		if err != nil {
			slog.Error("could not persist counter output", "counter", tool.Name, "error", err)
		} else {
			rr.LogPath = logPath
			slog.Warn("counter output classified as error", "counter", tool.Name,
				"instance", instancePath, "reason", parseErr, "log", logPath)
		}
	}
	return rr
}

// StoreOutput writes the invoked command line and the raw combined output
// to a per-(tool, instance) log artifact and returns its path.
func StoreOutput(logDir, instancePath, toolName, cmdline, output string) (string, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", fmt.Errorf("store tool output: %w", err)
	}
	logPath := filepath.Join(logDir, ArtifactName(instancePath, toolName))
	content := fmt.Sprintf("$ %s\n%s", cmdline, output)
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("store tool output: %w", err)
	}
	return logPath, nil
}

// ArtifactName derives the log-artifact file name for a (tool, instance)
// pair. Components are NFC-normalized so that names coming from differently
// normalized filesystems produce one stable artifact path.
func ArtifactName(instancePath, toolName string) string {
	base := strings.TrimSuffix(filepath.Base(instancePath), filepath.Ext(instancePath))
	return norm.NFC.String(fmt.Sprintf("%s_%s_output.log", base, toolName))
}
