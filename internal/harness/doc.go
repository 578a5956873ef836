// Package harness provides scenario-driven conformance testing for the
// campaign pipeline.
//
// A scenario describes a fleet of fake counters with canned outputs and a
// set of inline DIMACS instances, and states the verdict the campaign must
// reach. Scenarios live in YAML files; their snapshots are compared against
// golden files so the whole pipeline (invocation, parsing, normalization,
// comparison, persistence) is pinned end to end.
//
// # Scenario Format
//
//	name: disagreement
//	description: "two exact counters report different counts"
//	counters:
//	  - name: alpha
//	    count: "6"
//	  - name: beta
//	    count: "7"
//	instances:
//	  - name: toy_000_s1.cnf
//	    dimacs: |
//	      p cnf 2 1
//	      1 2 0
//	expect:
//	  agreements: 0
//	  disagreements: 1
//	  problematic: [toy_000_s1.cnf]
//
// A counter either reports a count, emits raw output lines, or exits with
// a nonzero code. Verified counts can be pinned per instance to exercise
// ground-truth reconciliation.
package harness
