package gen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"countercheck/internal/config"
	"countercheck/internal/invoke"
	"countercheck/internal/store"
	"countercheck/internal/verify"
)

// AcquireGroundTruth runs the proof pipeline over every instance and
// records the verdicts. The side table (CSV and, when a store is given,
// the verified_counts table) is rewritten after every instance so an
// interrupted acquisition keeps everything verified so far.
//
// Weighted ground truth is not supported yet; verdicts are recorded with
// problem type mc.
func AcquireGroundTruth(ctx context.Context, verifier config.Tool, instances []string,
	outDir, prefix string, st *store.Store, opts invoke.Options) (map[string]verify.Result, error) {

	proofDir := filepath.Join(outDir, "verification")
	if err := os.MkdirAll(proofDir, 0o755); err != nil {
		return nil, fmt.Errorf("acquire ground truth: %w", err)
	}
	csvPath := filepath.Join(outDir, prefix+"_verified_counts.csv")
	progressInterval := max(len(instances)/10, 1)

	table := map[string]verify.Result{}
	for i, inst := range instances {
		if err := ctx.Err(); err != nil {
			return table, err
		}
		res := verify.Run(ctx, verifier, inst, proofDir, opts)
		res.ProblemType = "mc"
		table[inst] = res

		if st != nil {
			if err := st.UpsertVerified(ctx, res); err != nil {
				return table, err
			}
		}
		if err := verify.SaveTable(csvPath, table); err != nil {
			return table, err
		}
		if (i+1)%progressInterval == 0 {
			slog.Info("verification progress", "verified", i+1, "total", len(instances))
		}
	}
	slog.Info("ground truth acquired", "instances", len(table), "table", csvPath)
	return table, nil
}
