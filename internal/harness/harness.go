package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"countercheck/internal/campaign"
	"countercheck/internal/config"
	"countercheck/internal/invoke"
	"countercheck/internal/store"
	"countercheck/internal/testutil"
	"countercheck/internal/verify"
)

// Snapshot is the stable, path-free record of one scenario execution.
// Instance paths are reduced to base names so snapshots are identical
// across machines and temp directories.
type Snapshot struct {
	Scenario      string   `json:"scenario"`
	Instances     int      `json:"instances"`
	Runs          int      `json:"runs"`
	Agreements    int      `json:"agreements"`
	Disagreements int      `json:"disagreements"`
	Errors        int      `json:"errors"`
	Problematic   []string `json:"problematic,omitempty"`
}

// RunScenario materializes a scenario in a temp directory, runs the
// campaign over it, and checks the expectation.
func RunScenario(t *testing.T, s *Scenario) Snapshot {
	t.Helper()

	toolDir := t.TempDir()
	instDir := t.TempDir()

	counters := make([]config.Tool, 0, len(s.Counters))
	for _, spec := range s.Counters {
		counters = append(counters, buildCounter(t, toolDir, spec))
	}

	instances := make([]string, 0, len(s.Instances))
	byName := map[string]string{}
	for _, in := range s.Instances {
		path := filepath.Join(instDir, in.Name)
		require.NoError(t, os.WriteFile(path, []byte(in.DIMACS), 0o644))
		instances = append(instances, path)
		byName[in.Name] = path
	}

	st, err := store.Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	c := campaign.New(1)
	c.Counters = counters
	c.OutDir = t.TempDir()
	c.Store = st
	c.Opts = invoke.Options{Timeout: 30 * time.Second, LogDir: filepath.Join(c.OutDir, "logs")}
	if len(s.Verified) > 0 {
		c.Verified = map[string]verify.Result{}
		for name, count := range s.Verified {
			path, ok := byName[name]
			require.True(t, ok, "verified count for unknown instance %s", name)
			c.Verified[path] = verify.Result{
				Instance:      path,
				Verified:      true,
				VerifiedCount: count,
			}
		}
	}
	require.NoError(t, st.BeginCampaign(context.Background(), c.ID, c.Prefix, c.Seed, "{}"))

	sum, err := c.Run(context.Background(), instances)
	require.NoError(t, err, "scenario %s", s.Name)

	snap := Snapshot{
		Scenario:      s.Name,
		Instances:     sum.Instances,
		Runs:          sum.Runs,
		Agreements:    sum.Agreements,
		Disagreements: sum.Disagreements,
		Errors:        sum.Errors,
	}
	for _, p := range sum.Problematic {
		snap.Problematic = append(snap.Problematic, filepath.Base(p))
	}
	sort.Strings(snap.Problematic)

	checkExpectation(t, s, snap)
	return snap
}

func buildCounter(t *testing.T, dir string, spec CounterSpec) config.Tool {
	t.Helper()
	if spec.Count != "" && spec.ExitCode == 0 {
		return testutil.FakeCounter(t, dir, spec.Name, spec.Count)
	}

	var b strings.Builder
	if spec.Count != "" {
		b.WriteString("echo 'c s type mc'\n")
		b.WriteString("echo 's SATISFIABLE'\n")
		fmt.Fprintf(&b, "echo 'c s exact arb int %s'\n", spec.Count)
	}
	for _, line := range spec.Output {
		fmt.Fprintf(&b, "echo '%s'\n", line)
	}
	fmt.Fprintf(&b, "exit %d\n", spec.ExitCode)
	path := testutil.WriteScript(t, dir, spec.Name+".sh", b.String())
	return config.Tool{Name: spec.Name, Path: path, Args: "{INSTANCE}"}
}

func checkExpectation(t *testing.T, s *Scenario, snap Snapshot) {
	t.Helper()
	require.Equal(t, s.Expect.Agreements, snap.Agreements, "scenario %s: agreements", s.Name)
	require.Equal(t, s.Expect.Disagreements, snap.Disagreements, "scenario %s: disagreements", s.Name)
	require.Equal(t, s.Expect.Errors, snap.Errors, "scenario %s: errors", s.Name)

	expected := append([]string(nil), s.Expect.Problematic...)
	sort.Strings(expected)
	require.Equal(t, expected, snap.Problematic, "scenario %s: problematic instances", s.Name)
}
