// Package counts normalizes the heterogeneous count representations that
// model counters emit (plain integers, scientific notation, rationals) into
// a single exact numeric domain, and implements the differential comparison
// over them.
//
// Comparison is exact: model counts are integers or rationals by
// construction, so two normalized values are equal only when their
// arbitrary-precision rational values are identical. There is no epsilon.
// "inf" and unparsable input normalize to a NaN sentinel that is unequal to
// everything, including another NaN. An absent count is a separate missing
// sentinel; two missing counts compare equal so that a pair of silent tools
// does not read as a disagreement.
package counts
