// Package verify runs a certifying proof pipeline per instance and keeps
// the resulting ground-truth counts in a side table that campaigns can
// reuse across runs.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"countercheck/internal/config"
	"countercheck/internal/invoke"
	"countercheck/internal/sandbox"
	"countercheck/internal/toolout"
)

// Result is one verifier verdict for one instance.
type Result struct {
	Instance       string `json:"instance"`
	Verified       bool   `json:"verified"`
	Satisfiability string `json:"satisfiability,omitempty"`
	TimedOut       bool   `json:"timed_out"`
	Errored        bool   `json:"errored"`
	NoRootClaim    bool   `json:"no_root_claim"`
	VerifiedCount  string `json:"verified_count,omitempty"`
	ProblemType    string `json:"problem_type,omitempty"`
}

// Run invokes the proof pipeline on one instance. Some pipelines write their
// verdict to a <base>.output file next to the proof artifacts instead of
// stdout; when that file exists after the run it takes precedence over the
// captured stream.
func Run(ctx context.Context, verifier config.Tool, instancePath, proofDir string, opts invoke.Options) Result {
	name, args, dir := invoke.Command(verifier, instancePath, opts)
	slog.Debug("running verifier", "verifier", verifier.Name, "instance", instancePath)

	res := sandbox.Run(ctx, name, args, sandbox.Config{Dir: dir, CPUTime: opts.Timeout})
	if res.Err != nil {
		slog.Warn("verifier process error", "verifier", verifier.Name, "instance", instancePath, "error", res.Err)
	}

	output := res.Output
	if proofDir != "" {
		if data, err := os.ReadFile(outputFile(proofDir, instancePath)); err == nil {
			output = string(data)
		}
	}

	out, parseErr := toolout.ParseVerifier(output)
	r := Result{
		Instance:       instancePath,
		Verified:       out.Verified,
		Satisfiability: out.Satisfiability,
		TimedOut:       res.TimedOut,
		Errored:        parseErr != nil || res.Err != nil || res.ExitCode != 0,
		NoRootClaim:    out.NoRootClaim,
		VerifiedCount:  out.VerifiedCount,
	}
	if parseErr != nil {
		slog.Warn("verifier output classified as error", "verifier", verifier.Name,
			"instance", instancePath, "reason", parseErr)
	}
	if r.Verified {
		slog.Info("instance verified", "instance", instancePath, "count", r.VerifiedCount)
	}
	return r
}

func outputFile(proofDir, instancePath string) string {
	base := strings.TrimSuffix(filepath.Base(instancePath), filepath.Ext(instancePath))
	return filepath.Join(proofDir, base+".output")
}

// proofExtensions are the intermediate artifacts a proof pipeline leaves
// behind per instance.
var proofExtensions = []string{".nnf", ".trace", ".output", ".log"}

// CleanProofs removes the proof artifacts for one instance. Missing files
// are not an error; a pipeline that failed early leaves only some of them.
func CleanProofs(proofDir, instancePath string) error {
	base := strings.TrimSuffix(filepath.Base(instancePath), filepath.Ext(instancePath))
	for _, ext := range proofExtensions {
		path := filepath.Join(proofDir, base+ext)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clean proofs for %s: %w", instancePath, err)
		}
	}
	return nil
}

// DefaultTimeout bounds a single proof-pipeline run when the caller does
// not set one. Proof checking dominates counting, so the budget is large.
const DefaultTimeout = 20 * time.Minute
