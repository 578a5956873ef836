package store

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"countercheck/internal/invoke"
	"countercheck/internal/toolout"
	"countercheck/internal/verify"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestAppendRunsTransactional(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.BeginCampaign(ctx, "c1", "2026-08-29_s42", 42, "{}"))

	verified := true
	runs := []Run{
		{
			RunResult: invoke.RunResult{
				Counter:  "sharp",
				Instance: "/inst/gen_001_s42.cnf",
				CounterOutput: toolout.CounterOutput{
					Satisfiability: "SATISFIABLE",
					ProblemType:    "mc",
					CounterKind:    "exact",
					CountPrecision: "arb",
					CountNotation:  "int",
					CountValue:     "6",
				},
				WallSeconds: 0.25,
			},
			Generator:     "gen",
			Agreement:     "agree",
			Verified:      &verified,
			VerifiedCount: "6",
		},
		{
			RunResult: invoke.RunResult{
				Counter:  "approx",
				Instance: "/inst/gen_001_s42.cnf",
				TimedOut: true,
				Errored:  true,
			},
			Generator: "gen",
			Agreement: "agree",
		},
	}
	require.NoError(t, s.AppendRuns(ctx, "c1", runs))

	n, err := s.CountRuns(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAppendRunsUnknownCampaign(t *testing.T) {
	s := setupTestStore(t)
	err := s.AppendRuns(context.Background(), "nope", []Run{
		{RunResult: invoke.RunResult{Counter: "x", Instance: "/i.cnf"}},
	})
	assert.Error(t, err)
}

func TestVerifiedCountsRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v := verify.Result{
		Instance:       "/inst/gen_001_s1.cnf",
		Verified:       true,
		Satisfiability: "UNSATISFIABLE",
		VerifiedCount:  "0",
		ProblemType:    "mc",
	}
	require.NoError(t, s.UpsertVerified(ctx, v))

	// Upsert replaces.
	v.VerifiedCount = "3"
	v.Satisfiability = "SATISFIABLE"
	require.NoError(t, s.UpsertVerified(ctx, v))

	table, err := s.LoadVerifiedCounts(ctx)
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, v, table["/inst/gen_001_s1.cnf"])
}

func TestExportCSV(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.BeginCampaign(ctx, "c1", "p", 1, "{}"))
	require.NoError(t, s.AppendRuns(ctx, "c1", []Run{
		{
			RunResult: invoke.RunResult{
				Counter:  "sharp",
				Instance: "/inst/gen_001_s1.cnf",
				CounterOutput: toolout.CounterOutput{
					CountValue: "6",
				},
				WallSeconds: 1.5,
			},
			Generator: "gen",
			Agreement: "disagree",
		},
	}))

	var buf bytes.Buffer
	require.NoError(t, s.ExportCSV(ctx, &buf, "c1"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(runColumns, ","), lines[0])
	assert.Contains(t, lines[1], "sharp,/inst/gen_001_s1.cnf,gen")
	assert.Contains(t, lines[1], "disagree")
	// Verified column is empty when no ground truth was recorded.
	fields := strings.Split(lines[1], ",")
	assert.Equal(t, "", fields[len(fields)-2])
}

func TestExportCSVAllCampaigns(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.BeginCampaign(ctx, "c1", "p", 1, "{}"))
	require.NoError(t, s.BeginCampaign(ctx, "c2", "p", 2, "{}"))
	for _, id := range []string{"c1", "c2"} {
		require.NoError(t, s.AppendRuns(ctx, id, []Run{
			{RunResult: invoke.RunResult{Counter: "a", Instance: "/i.cnf"}},
		}))
	}

	var buf bytes.Buffer
	require.NoError(t, s.ExportCSV(ctx, &buf, ""))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
}
