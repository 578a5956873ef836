package verify

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// tableHeader fixes the column order of the verified-counts side table.
var tableHeader = []string{
	"instance", "verified", "satisfiability", "timed_out",
	"error", "no_root_claim", "verified_count", "problem_type",
}

// LoadTable reads a verified-counts CSV keyed by instance path. Instances
// verified by an earlier campaign are served from here instead of re-running
// the proof pipeline.
func LoadTable(path string) (map[string]Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load verified counts: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("load verified counts %s: %w", path, err)
	}
	if len(records) == 0 {
		return map[string]Result{}, nil
	}

	col := map[string]int{}
	for i, name := range records[0] {
		col[name] = i
	}
	if _, ok := col["instance"]; !ok {
		return nil, fmt.Errorf("load verified counts %s: no instance column", path)
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}
	parseBool := func(s string) bool {
		b, _ := strconv.ParseBool(s)
		return b
	}

	table := make(map[string]Result, len(records)-1)
	for _, rec := range records[1:] {
		res := Result{
			Instance:       field(rec, "instance"),
			Verified:       parseBool(field(rec, "verified")),
			Satisfiability: field(rec, "satisfiability"),
			TimedOut:       parseBool(field(rec, "timed_out")),
			Errored:        parseBool(field(rec, "error")),
			NoRootClaim:    parseBool(field(rec, "no_root_claim")),
			VerifiedCount:  field(rec, "verified_count"),
			ProblemType:    field(rec, "problem_type"),
		}
		table[res.Instance] = res
	}
	return table, nil
}

// SaveTable writes the full side table, rows sorted by instance path so
// the file is stable across runs.
func SaveTable(path string, table map[string]Result) error {
	instances := make([]string, 0, len(table))
	for k := range table {
		instances = append(instances, k)
	}
	sort.Strings(instances)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save verified counts: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(tableHeader); err != nil {
		return fmt.Errorf("save verified counts: %w", err)
	}
	for _, inst := range instances {
		res := table[inst]
		rec := []string{
			res.Instance,
			strconv.FormatBool(res.Verified),
			res.Satisfiability,
			strconv.FormatBool(res.TimedOut),
			strconv.FormatBool(res.Errored),
			strconv.FormatBool(res.NoRootClaim),
			res.VerifiedCount,
			res.ProblemType,
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("save verified counts: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("save verified counts: %w", err)
	}
	return f.Close()
}
