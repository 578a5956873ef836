// Package cnf provides the problem-instance model and the extended-DIMACS
// codec used by the model counting competition format.
//
// The format is standard DIMACS CNF plus comment-encoded directives:
//
//	p <cnf|wcnf|pcnf|pwcnf> <n_vars> <n_clauses>   header (required)
//	c t <mc|wmc|pmc|pwmc>                          declared problem type
//	c p show <v1> <v2> ... 0                       projected variables
//	c p <signed_literal> <weight> 0                one literal weight
//
// The problem type actually used is always recomputed from the observed
// projection set and weight map; a declared type that disagrees is logged
// as a warning and the recomputed type wins.
//
// Instances are parsed once and never mutated. Weight augmentation writes
// a new file, copying every non-header line verbatim so that clause lines
// round-trip byte-for-byte.
package cnf
