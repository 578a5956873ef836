package store

import (
	"context"
	"fmt"

	"countercheck/internal/cnf"
	"countercheck/internal/invoke"
	"countercheck/internal/verify"
)

// Run is one row of the result table. It widens invoke.RunResult with the
// campaign-level columns filled in by the orchestrator.
type Run struct {
	invoke.RunResult

	Generator string
	// Agreement is "agree", "disagree", or empty when the instance was
	// not compared (single counter, no ground truth).
	Agreement     string
	Verified      *bool
	VerifiedCount string
}

// NewRun derives the campaign-level columns for one invocation result.
func NewRun(rr invoke.RunResult, v *verify.Result) Run {
	run := Run{
		RunResult: rr,
		Generator: cnf.GeneratorName(rr.Instance),
	}
	if v != nil {
		verified := v.Verified
		run.Verified = &verified
		run.VerifiedCount = v.VerifiedCount
	}
	return run
}

// AppendRuns writes all rows for one completed instance in a single
// transaction, so a crash never leaves a partially recorded instance.
func (s *Store) AppendRuns(ctx context.Context, campaignID string, runs []Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append runs: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO runs
		(campaign_id, counter, instance, generator,
		 satisfiability, problem_type, estimate_kind, estimate_value,
		 counter_kind, count_precision, count_notation, count_value,
		 timed_out, errored, wall_seconds, log_path,
		 agreement, verified, verified_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("append runs: %w", err)
	}
	defer stmt.Close()

	for _, r := range runs {
		var verified any
		if r.Verified != nil {
			verified = *r.Verified
		}
		_, err := stmt.ExecContext(ctx,
			campaignID, r.Counter, r.Instance, r.Generator,
			r.Satisfiability, r.ProblemType, r.EstimateKind, r.EstimateValue,
			r.CounterKind, r.CountPrecision, r.CountNotation, r.CountValue,
			r.TimedOut, r.Errored, r.WallSeconds, r.LogPath,
			r.Agreement, verified, r.VerifiedCount,
		)
		if err != nil {
			return fmt.Errorf("append run %s/%s: %w", r.Counter, r.Instance, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append runs: %w", err)
	}
	return nil
}

// UpsertVerified records or replaces the ground-truth verdict for one
// instance.
func (s *Store) UpsertVerified(ctx context.Context, v verify.Result) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verified_counts
		(instance, verified, satisfiability, timed_out, errored,
		 no_root_claim, verified_count, problem_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(instance) DO UPDATE SET
			verified = excluded.verified,
			satisfiability = excluded.satisfiability,
			timed_out = excluded.timed_out,
			errored = excluded.errored,
			no_root_claim = excluded.no_root_claim,
			verified_count = excluded.verified_count,
			problem_type = excluded.problem_type
	`, v.Instance, v.Verified, v.Satisfiability, v.TimedOut, v.Errored,
		v.NoRootClaim, v.VerifiedCount, v.ProblemType)
	if err != nil {
		return fmt.Errorf("upsert verified count for %s: %w", v.Instance, err)
	}
	return nil
}
