package cnf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAugment_InjectsDirectivesAfterHeader(t *testing.T) {
	src := writeInstance(t, "c generated\np cnf 3 2\n1 -2 0\n2 3 0\n")
	dst := filepath.Join(t.TempDir(), "weighted.wcnf")

	err := Augment(src, dst, Augmentation{
		ProblemType: TypeWMC,
		LitWeights:  map[int]string{2: "1/3", -2: "2/3"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"c generated",
		"p cnf 3 2",
		"c t wmc",
		"c p -2 2/3 0",
		"c p 2 1/3 0",
		"1 -2 0",
		"2 3 0",
	}, "\n")+"\n", string(data))
}

func TestAugment_PreservesClauseLinesVerbatim(t *testing.T) {
	// Odd spacing and a missing trailing newline must survive untouched.
	src := writeInstance(t, "p cnf 2 2\n 1   -2  0\n2 1 0")
	dst := filepath.Join(t.TempDir(), "out.pcnf")

	err := Augment(src, dst, Augmentation{ProblemType: TypePMC, ProjVars: []int{1}})
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n 1   -2  0\n")
	assert.True(t, strings.HasSuffix(string(data), "2 1 0"))
	assert.Contains(t, string(data), "c p show 1 0\n")
}

func TestAugment_RoundTripRecomputesType(t *testing.T) {
	tests := []struct {
		name string
		aug  Augmentation
		want ProblemType
	}{
		{"weights only", Augmentation{ProblemType: TypeWMC, ProjVars: []int{1, 2, 3}, LitWeights: map[int]string{1: "0.25"}}, TypeWMC},
		{"subset projection", Augmentation{ProblemType: TypePMC, ProjVars: []int{1, 2}}, TypePMC},
		{"full projection unweighted", Augmentation{ProblemType: TypeMC, ProjVars: []int{1, 2, 3}}, TypeMC},
		{"subset projection weighted", Augmentation{ProblemType: TypePWMC, ProjVars: []int{2}, LitWeights: map[int]string{-2: "0.5"}}, TypePWMC},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := writeInstance(t, "p cnf 3 1\n1 2 3 0\n")
			dst := filepath.Join(t.TempDir(), "aug.cnf")
			require.NoError(t, Augment(src, dst, tt.aug))

			in, err := ParseFile(dst)
			require.NoError(t, err)
			assert.Equal(t, tt.want, in.ProblemType)
		})
	}
}

func TestAugment_NoHeader(t *testing.T) {
	src := writeInstance(t, "c nothing here\n")
	dst := filepath.Join(t.TempDir(), "out.cnf")
	err := Augment(src, dst, Augmentation{ProblemType: TypeMC})
	require.Error(t, err)
	assert.True(t, IsFormatError(err))
}

func TestGeneratorName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/out/instances/cnf/brummayer_003_s42.cnf", "brummayer"},
		{"/out/instances/wcnf/cnf-fuzz_010_s7.wcnf", "cnf-fuzz"},
		{"/out/instances/pwcnf/gen_000_s1.pwcnf", "gen"},
		{"/somewhere/handwritten.cnf", "unknown"},
		{"notes.txt", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GeneratorName(tt.path), tt.path)
	}
}

func TestSeedFromName(t *testing.T) {
	seed, ok := SeedFromName("/x/brummayer_000_s1234.cnf")
	require.True(t, ok)
	assert.Equal(t, "1234", seed)

	_, ok = SeedFromName("/x/handwritten.cnf")
	assert.False(t, ok)
}
