package toolout

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCounter_FullOutput(t *testing.T) {
	output := strings.Join([]string{
		"c o This is an exact arbitrary-precision counter",
		"c o Parsing the instance...",
		"s SATISFIABLE",
		"c s type mc",
		"c s log10-estimate 2.0969100130080562",
		"c s exact arb int 125",
	}, "\n")

	out, err := ParseCounter(output)
	require.NoError(t, err)

	assert.Equal(t, "SATISFIABLE", out.Satisfiability)
	assert.Equal(t, "mc", out.ProblemType)
	assert.Equal(t, "log10-estimate", out.EstimateKind)
	assert.Equal(t, "2.0969100130080562", out.EstimateValue)
	assert.Equal(t, "exact", out.CounterKind)
	assert.Equal(t, "arb", out.CountPrecision)
	assert.Equal(t, "int", out.CountNotation)
	assert.Equal(t, "125", out.CountValue)
}

func TestParseCounter_GoldenSnapshot(t *testing.T) {
	output := strings.Join([]string{
		"c o solver banner",
		"s UNSATISFIABLE",
		"c s type pmc",
		"c s neglog10-estimate inf",
		"c s exact double int 0",
	}, "\n")

	out, err := ParseCounter(output)
	require.NoError(t, err)

	data, err := json.MarshalIndent(out, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "counter_unsat", data)
}

func TestParseCounter_CountLineOnly(t *testing.T) {
	out, err := ParseCounter("c s exact double int 42\n")
	require.NoError(t, err)
	assert.Equal(t, "42", out.CountValue)
	assert.Equal(t, "double", out.CountPrecision)
	assert.Empty(t, out.Satisfiability)
}

func TestParseCounter_ValueForms(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"c s exact arb int 125", "125"},
		{"c s exact arb frac 12/2", "12/2"},
		{"c s exact quadruple prec-sci 6.0e0", "6.0e0"},
		{"c s approximate double float 124.99", "124.99"},
		{"c s exact double log10 2.09", "2.09"},
		{"c s exact double float inf", "inf"},
	}
	for _, tt := range tests {
		out, err := ParseCounter(tt.line)
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.want, out.CountValue, tt.line)
	}
}

func TestParseCounter_Unknown(t *testing.T) {
	out, err := ParseCounter("s UNKNOWN\n")
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN", out.Satisfiability)
}

func TestParseCounter_ErrorPrecedence(t *testing.T) {
	tests := []struct {
		name string
		line string
		kind ErrorKind
	}{
		{"assertion", `solver.cpp:120: Assertion 'n > 0' failed.`, ErrAssertion},
		{"memory out", "ERROR Memory out!", ErrMemoryOut},
		{"generic", "ERROR could not open file", ErrGeneric},
		// An assertion line that also says ERROR still classifies as an
		// assertion failure because that rule runs first.
		{"assertion beats generic", "ERROR: Assertion failed", ErrAssertion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCounter(tt.line)
			require.Error(t, err)
			te, ok := AsToolError(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, te.Kind)
		})
	}
}

func TestParseCounter_ErrorAbortsScan(t *testing.T) {
	output := "s SATISFIABLE\nERROR Memory out!\nc s exact arb int 125\n"
	out, err := ParseCounter(output)
	require.Error(t, err)

	// Fields before the error line are kept, later ones are not reached.
	assert.Equal(t, "SATISFIABLE", out.Satisfiability)
	assert.Empty(t, out.CountValue)
}

func TestParseCounter_InformationalLinesNeverError(t *testing.T) {
	// "c o" lines are dropped before error classification.
	out, err := ParseCounter("c o ERROR rates are estimates\nc s exact arb int 3\n")
	require.NoError(t, err)
	assert.Equal(t, "3", out.CountValue)
}

func TestParseCounter_UnrecognizedLinesIgnored(t *testing.T) {
	out, err := ParseCounter("some banner\nv 1 -2 3 0\nc s exact arb int 8\n")
	require.NoError(t, err)
	assert.Equal(t, "8", out.CountValue)
}
