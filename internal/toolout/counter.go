package toolout

import "regexp"

// CounterOutput holds the structured fields extracted from a counter's
// output, as defined by the model counting competition format. All fields
// are optional; absent fields stay empty.
type CounterOutput struct {
	Satisfiability string `json:"satisfiability,omitempty"` // SATISFIABLE | UNSATISFIABLE | UNKNOWN
	ProblemType    string `json:"problem_type,omitempty"`   // mc | wmc | pmc | pwmc
	EstimateKind   string `json:"estimate_kind,omitempty"`  // log10-estimate | neglog10-estimate
	EstimateValue  string `json:"estimate_value,omitempty"`
	CounterKind    string `json:"counter_kind,omitempty"`    // exact | approximate
	CountPrecision string `json:"count_precision,omitempty"` // arb | single | double | quadruple
	CountNotation  string `json:"count_notation,omitempty"`  // log10 | float | prec-sci | int | frac
	CountValue     string `json:"count_value,omitempty"`
}

// Line patterns per the competition output format. Count values may be
// integers, floats, scientific notation, fractions, or "inf"; they are kept
// verbatim and normalized later by the counts package.
var (
	satPat      = regexp.MustCompile(`^s\s+(UNSATISFIABLE|SATISFIABLE|UNKNOWN)$`)
	typePat     = regexp.MustCompile(`^c\s+s\s+type\s+(wmc|pmc|pwmc|mc)$`)
	estimatePat = regexp.MustCompile(`^c\s+s\s+((?:neg)?log10-estimate)\s+([-+\d.einf]+)$`)
	countPat    = regexp.MustCompile(`^c\s+s\s+(exact|approximate)\s+(arb|single|double|quadruple)\s+(log10|float|prec-sci|int|frac)\s+(inf|[-+]?\d+(?:\.\d*)?(?:[eE][-+]?\d+)?(?:/\d+)?)$`)
)

func rePat(re *regexp.Regexp) func(string) []string {
	return re.FindStringSubmatch
}

// counterRules is the counter grammar. Order is load-bearing: informational
// "c o" lines are dropped first, then the three error classes in decreasing
// specificity, then the field extractors.
var counterRules = []rule[CounterOutput]{
	{
		name:  "informational",
		match: prefixPat("c o"),
		apply: func([]string, *CounterOutput) error { return nil },
	},
	{
		name:  "assertion-failure",
		match: containsAll("Assertion", "failed"),
		apply: failWith[CounterOutput](ErrAssertion),
	},
	{
		name:  "memory-out",
		match: containsAll("ERROR Memory out!"),
		apply: failWith[CounterOutput](ErrMemoryOut),
	},
	{
		name:  "generic-error",
		match: containsAll("ERROR"),
		apply: failWith[CounterOutput](ErrGeneric),
	},
	{
		name:  "satisfiability",
		match: rePat(satPat),
		apply: func(m []string, out *CounterOutput) error {
			out.Satisfiability = m[1]
			return nil
		},
	},
	{
		name:  "problem-type",
		match: rePat(typePat),
		apply: func(m []string, out *CounterOutput) error {
			out.ProblemType = m[1]
			return nil
		},
	},
	{
		name:  "estimate",
		match: rePat(estimatePat),
		apply: func(m []string, out *CounterOutput) error {
			out.EstimateKind = m[1]
			out.EstimateValue = m[2]
			return nil
		},
	},
	{
		name:  "count",
		match: rePat(countPat),
		apply: func(m []string, out *CounterOutput) error {
			out.CounterKind = m[1]
			out.CountPrecision = m[2]
			out.CountNotation = m[3]
			out.CountValue = m[4]
			return nil
		},
	},
}

func prefixPat(prefix string) func(string) []string {
	return func(line string) []string {
		if len(line) >= len(prefix) && line[:len(prefix)] == prefix {
			return []string{line}
		}
		return nil
	}
}

// ParseCounter scans counter output line by line. A non-nil error is always
// a *ToolError describing the first recognized error line; the partial
// CounterOutput gathered before that line is returned alongside it.
func ParseCounter(output string) (CounterOutput, error) {
	var out CounterOutput
	err := scan(output, counterRules, &out)
	return out, err
}
