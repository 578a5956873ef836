//go:build !windows

package sandbox

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_CapturesCombinedOutput(t *testing.T) {
	res := Run(context.Background(), "sh", []string{"-c", "echo out; echo err 1>&2; echo more"}, Config{})

	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Output, "out")
	assert.Contains(t, res.Output, "err")
	assert.Contains(t, res.Output, "more")
	assert.False(t, res.TimedOut)
}

func TestRun_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker"), []byte("x"), 0o644))

	before, err := os.Getwd()
	require.NoError(t, err)

	res := Run(context.Background(), "sh", []string{"-c", "ls"}, Config{Dir: dir})
	require.NoError(t, res.Err)
	assert.Contains(t, res.Output, "marker")

	// The harness process itself never changes directory.
	after, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRun_NonzeroExit(t *testing.T) {
	res := Run(context.Background(), "sh", []string{"-c", "exit 3"}, Config{})
	assert.NoError(t, res.Err)
	assert.Equal(t, 3, res.ExitCode)
}

func TestRun_LaunchFailure(t *testing.T) {
	res := Run(context.Background(), "/nonexistent/counter", nil, Config{})
	require.Error(t, res.Err)
	assert.Equal(t, -1, res.ExitCode)
}

func TestRun_WallClockTimeoutWithCleanExit(t *testing.T) {
	// sleep burns no CPU, so the kernel limit never fires; the run must
	// still be flagged because wall-clock time exceeded the budget.
	res := Run(context.Background(), "sh", []string{"-c", "sleep 0.5"}, Config{CPUTime: 200 * time.Millisecond})

	assert.NoError(t, res.Err)
	assert.Equal(t, 0, res.ExitCode)
	assert.True(t, res.TimedOut)
}

func TestRun_FastRunNotFlagged(t *testing.T) {
	res := Run(context.Background(), "sh", []string{"-c", "echo hi"}, Config{CPUTime: 5 * time.Second})
	assert.NoError(t, res.Err)
	assert.False(t, res.TimedOut)
}

func TestRun_CPUBoundChildIsTerminated(t *testing.T) {
	if testing.Short() {
		t.Skip("spins a CPU for a second")
	}
	start := time.Now()
	res := Run(context.Background(), "sh", []string{"-c", "while :; do :; done"}, Config{CPUTime: time.Second})

	// Killed by the CPU ceiling (Linux) or the watchdog fallback; either
	// way the child must not run unbounded and dies by signal.
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.NotEqual(t, 0, res.ExitCode)
}

func TestRun_ContextCancelKillsChild(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	res := Run(ctx, "sh", []string{"-c", "sleep 30"}, Config{})
	assert.Less(t, time.Since(start), 5*time.Second)
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestRun_OutputCap(t *testing.T) {
	res := Run(context.Background(), "sh", []string{"-c", "yes | head -c 100000"}, Config{MaxOutputBytes: 1024})
	assert.True(t, res.Truncated)
	assert.LessOrEqual(t, len(res.Output), 1024)
	assert.True(t, strings.HasPrefix(res.Output, "y\n"))
}
