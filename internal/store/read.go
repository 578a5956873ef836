package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"countercheck/internal/verify"
)

// LoadVerifiedCounts returns the ground-truth side table keyed by instance
// path.
func (s *Store) LoadVerifiedCounts(ctx context.Context) (map[string]verify.Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT instance, verified, satisfiability, timed_out, errored,
		       no_root_claim, verified_count, problem_type
		FROM verified_counts
	`)
	if err != nil {
		return nil, fmt.Errorf("load verified counts: %w", err)
	}
	defer rows.Close()

	table := map[string]verify.Result{}
	for rows.Next() {
		var v verify.Result
		if err := rows.Scan(&v.Instance, &v.Verified, &v.Satisfiability,
			&v.TimedOut, &v.Errored, &v.NoRootClaim,
			&v.VerifiedCount, &v.ProblemType); err != nil {
			return nil, fmt.Errorf("load verified counts: %w", err)
		}
		table[v.Instance] = v
	}
	return table, rows.Err()
}

// CountRuns returns the number of run rows for a campaign.
func (s *Store) CountRuns(ctx context.Context, campaignID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM runs WHERE campaign_id = ?`, campaignID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

// runColumns is the stable column order of the CSV export.
var runColumns = []string{
	"counter", "instance", "generator",
	"satisfiability", "problem_type", "estimate_kind", "estimate_value",
	"counter_kind", "count_precision", "count_notation", "count_value",
	"timed_out", "errored", "wall_seconds", "log_path",
	"agreement", "verified", "verified_count",
}

// ExportCSV streams all run rows of a campaign as CSV, in insertion order.
// Pass an empty campaignID to export every campaign.
func (s *Store) ExportCSV(ctx context.Context, w io.Writer, campaignID string) error {
	query := `
		SELECT counter, instance, generator,
		       satisfiability, problem_type, estimate_kind, estimate_value,
		       counter_kind, count_precision, count_notation, count_value,
		       timed_out, errored, wall_seconds, log_path,
		       agreement, verified, verified_count
		FROM runs`
	var args []any
	if campaignID != "" {
		query += ` WHERE campaign_id = ?`
		args = append(args, campaignID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("export runs: %w", err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	if err := cw.Write(runColumns); err != nil {
		return fmt.Errorf("export runs: %w", err)
	}
	for rows.Next() {
		var (
			r           Run
			timedOut    bool
			errored     bool
			wallSeconds float64
			verified    sql.NullBool
		)
		if err := rows.Scan(&r.Counter, &r.Instance, &r.Generator,
			&r.Satisfiability, &r.ProblemType, &r.EstimateKind, &r.EstimateValue,
			&r.CounterKind, &r.CountPrecision, &r.CountNotation, &r.CountValue,
			&timedOut, &errored, &wallSeconds, &r.LogPath,
			&r.Agreement, &verified, &r.VerifiedCount); err != nil {
			return fmt.Errorf("export runs: %w", err)
		}
		verifiedStr := ""
		if verified.Valid {
			verifiedStr = strconv.FormatBool(verified.Bool)
		}
		rec := []string{
			r.Counter, r.Instance, r.Generator,
			r.Satisfiability, r.ProblemType, r.EstimateKind, r.EstimateValue,
			r.CounterKind, r.CountPrecision, r.CountNotation, r.CountValue,
			strconv.FormatBool(timedOut), strconv.FormatBool(errored),
			strconv.FormatFloat(wallSeconds, 'f', -1, 64), r.LogPath,
			r.Agreement, verifiedStr, r.VerifiedCount,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("export runs: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("export runs: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
