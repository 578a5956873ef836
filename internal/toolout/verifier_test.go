package toolout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerifier_SatisfiableCount(t *testing.T) {
	output := strings.Join([]string{
		`reading from "proof.trace"...done`,
		"Model count: 5",
		"all proofs verified",
	}, "\n")

	out, err := ParseVerifier(output)
	require.NoError(t, err)
	assert.True(t, out.Verified)
	assert.Equal(t, "5", out.VerifiedCount)
	assert.Equal(t, "SATISFIABLE", out.Satisfiability)
	assert.False(t, out.NoRootClaim)
}

func TestParseVerifier_ZeroCountImpliesUnsat(t *testing.T) {
	out, err := ParseVerifier("model count: 0\n")
	require.NoError(t, err)
	assert.Equal(t, "0", out.VerifiedCount)
	assert.Equal(t, "UNSATISFIABLE", out.Satisfiability)
}

func TestParseVerifier_RootModelCount(t *testing.T) {
	out, err := ParseVerifier("root Model count: 125\n")
	require.NoError(t, err)
	assert.Equal(t, "125", out.VerifiedCount)
}

func TestParseVerifier_CpogSuccess(t *testing.T) {
	out, err := ParseVerifier("PROOF SUCCESSFUL\n")
	require.NoError(t, err)
	assert.True(t, out.Verified)
}

func TestParseVerifier_NoRootClaim(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"sharptrace", "IntegrityError(NoRootClaim)"},
		{"cpog", "proof done but some clause is neither the asserted root nor a POG definition"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ParseVerifier(tt.line)
			// The sharptrace marker contains "Error" but must not be
			// classified as a failure.
			require.NoError(t, err)
			assert.True(t, out.NoRootClaim)
			assert.Equal(t, "UNSATISFIABLE", out.Satisfiability)
		})
	}
}

func TestParseVerifier_CaseInsensitiveError(t *testing.T) {
	_, err := ParseVerifier("fatal error: trace file missing\n")
	require.Error(t, err)
	te, ok := AsToolError(err)
	require.True(t, ok)
	assert.Equal(t, ErrGeneric, te.Kind)
}

func TestParseVerifier_MemoryOut(t *testing.T) {
	_, err := ParseVerifier("ERROR Memory out!\n")
	require.Error(t, err)
	te, ok := AsToolError(err)
	require.True(t, ok)
	assert.Equal(t, ErrMemoryOut, te.Kind)
}

func TestParseVerifier_PartialBeforeError(t *testing.T) {
	out, err := ParseVerifier("Model count: 7\nAssertion `root != null' failed\n")
	require.Error(t, err)
	assert.Equal(t, "7", out.VerifiedCount)
}
