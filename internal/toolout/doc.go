// Package toolout parses the combined stdout+stderr of external counting
// and verification tools.
//
// Each supported tool family gets an explicit, ordered list of line rules
// (pattern plus field extractor) evaluated per line. The order is part of
// the grammar: for counters, error classification runs before any field
// extraction; for verifiers the field rules run first, because one of the
// pipeline markers ("IntegrityError(NoRootClaim)") would otherwise trip the
// generic error match. Lines matching no rule are ignored, which keeps the
// parser forward-compatible with additional informational output.
//
// The verifier grammar is deliberately narrow: it supports exactly the two
// known proof-pipeline output formats. A new verifier needs a new rule
// table, not a generalization of these.
package toolout
