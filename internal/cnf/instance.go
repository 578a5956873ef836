package cnf

import (
	"errors"
	"fmt"
	"sort"
)

// ProblemType classifies a counting instance by projection and weights.
type ProblemType string

const (
	// TypeUnknown means no type was declared and none could be derived.
	TypeUnknown ProblemType = ""
	// TypeMC is plain model counting.
	TypeMC ProblemType = "mc"
	// TypeWMC is weighted model counting.
	TypeWMC ProblemType = "wmc"
	// TypePMC is projected model counting.
	TypePMC ProblemType = "pmc"
	// TypePWMC is projected weighted model counting.
	TypePWMC ProblemType = "pwmc"
)

// Valid reports whether t is one of the known problem types (or empty).
func (t ProblemType) Valid() bool {
	switch t {
	case TypeUnknown, TypeMC, TypeWMC, TypePMC, TypePWMC:
		return true
	}
	return false
}

// headerTypes are the instance types allowed on the "p" header line.
var headerTypes = map[string]bool{
	"cnf": true, "wcnf": true, "pcnf": true, "pwcnf": true,
}

// Instance is an immutable view of one parsed extended-DIMACS file.
//
// Invariants (enforced by ParseFile):
//   - NumVars > 0
//   - every projected variable is in [1, NumVars]
//   - every weighted literal has absolute value in [1, NumVars]
type Instance struct {
	// Path is the file this instance was parsed from.
	Path string

	// ProblemType is the recomputed type (see RecomputeType).
	ProblemType ProblemType

	// NumVars and NumClauses come from the header line.
	NumVars    int
	NumClauses int

	// ProjVars is the union of all "c p show" directives.
	ProjVars map[int]bool

	// LitWeights maps a signed literal to its weight string, verbatim.
	// Weights are kept as strings; normalization happens at comparison
	// time in the counts package.
	LitWeights map[int]string
}

// Projected reports whether the instance declares a projection set.
func (in *Instance) Projected() bool { return len(in.ProjVars) > 0 }

// Weighted reports whether the instance declares any literal weights.
func (in *Instance) Weighted() bool { return len(in.LitWeights) > 0 }

// SortedProjVars returns the projection set in ascending order.
func (in *Instance) SortedProjVars() []int {
	vars := make([]int, 0, len(in.ProjVars))
	for v := range in.ProjVars {
		vars = append(vars, v)
	}
	sort.Ints(vars)
	return vars
}

// SortedWeightLits returns the weighted literals in ascending order.
func (in *Instance) SortedWeightLits() []int {
	lits := make([]int, 0, len(in.LitWeights))
	for l := range in.LitWeights {
		lits = append(lits, l)
	}
	sort.Ints(lits)
	return lits
}

// RecomputeType derives the problem type from the observed projection set
// and weight map. When the projection set is empty no derivation is possible
// and the declared type is returned unchanged.
func RecomputeType(declared ProblemType, numVars int, projVars map[int]bool, litWeights map[int]string) ProblemType {
	allProjected := len(projVars) == numVars
	weighted := len(litWeights) > 0
	switch {
	case allProjected && !weighted:
		return TypeMC
	case len(projVars) > 0 && !weighted:
		return TypePMC
	case allProjected && weighted:
		return TypeWMC
	case len(projVars) > 0 && weighted:
		return TypePWMC
	}
	return declared
}

// FormatError reports a malformed instance file. It is fatal for that
// instance's processing: without a valid header there is no variable count
// to validate directives against.
type FormatError struct {
	Path string
	Line int // 1-based; 0 when the error is not tied to a line
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// IsFormatError reports whether err is (or wraps) a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
