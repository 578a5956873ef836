//go:build !windows

package gen

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"countercheck/internal/cnf"
	"countercheck/internal/config"
	"countercheck/internal/invoke"
	"countercheck/internal/testutil"
	"countercheck/internal/verify"
)

// fakeGenerator emits a fixed 3-variable formula to {out_file}.
func fakeGenerator(t *testing.T, dir, name string) config.Tool {
	t.Helper()
	body := `cat > "$2" <<'EOF'
p cnf 3 2
1 -2 0
2 3 0
EOF
`
	path := testutil.WriteScript(t, dir, name+".sh", body)
	return config.Tool{Name: name, Path: path, Args: "--seed {seed} {out_file}"}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "cnf", Options{}.Extension())
	assert.Equal(t, "wcnf", Options{Weighted: true}.Extension())
	assert.Equal(t, "pcnf", Options{Projected: true}.Extension())
	assert.Equal(t, "pwcnf", Options{Projected: true, Weighted: true}.Extension())
}

func TestGenerate(t *testing.T) {
	toolDir := t.TempDir()
	instanceDir := t.TempDir()
	g := fakeGenerator(t, toolDir, "toy")

	instances, err := Generate(context.Background(), []config.Tool{g}, instanceDir,
		Options{NumIter: 3, Seed: 10, Timeout: 10 * time.Second})
	require.NoError(t, err)
	require.Len(t, instances, 3)

	assert.Equal(t, filepath.Join(instanceDir, "cnf", "toy_000_s10.cnf"), instances[0])
	assert.Equal(t, filepath.Join(instanceDir, "cnf", "toy_002_s12.cnf"), instances[2])

	in, err := cnf.ParseFile(instances[0])
	require.NoError(t, err)
	assert.Equal(t, 3, in.NumVars)
	assert.Equal(t, cnf.TypeMC, in.ProblemType)
}

func TestGenerateFailedCallAborts(t *testing.T) {
	toolDir := t.TempDir()
	path := testutil.WriteScript(t, toolDir, "bad.sh", "exit 1\n")
	g := config.Tool{Name: "bad", Path: path, Args: "{out_file}"}

	_, err := Generate(context.Background(), []config.Tool{g}, t.TempDir(),
		Options{NumIter: 1, Timeout: 10 * time.Second})
	assert.ErrorContains(t, err, "bad")
}

func TestGenerateNoOutputIsError(t *testing.T) {
	toolDir := t.TempDir()
	path := testutil.WriteScript(t, toolDir, "noop.sh", "exit 0\n")
	g := config.Tool{Name: "noop", Path: path, Args: "{out_file}"}

	_, err := Generate(context.Background(), []config.Tool{g}, t.TempDir(),
		Options{NumIter: 1, Timeout: 10 * time.Second})
	assert.ErrorContains(t, err, "produced no output")
}

func TestFloatWeightsComplementary(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	w1, w2 := FloatWeights(rng, 4)
	assert.Regexp(t, `^0\.\d{4}$`, w1)
	assert.Regexp(t, `^0\.\d{4}$`, w2)
}

func TestFractionWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	w1, w2 := FractionWeights(rng)
	assert.Regexp(t, `^\d+/\d+$`, w1)
	assert.Regexp(t, `^\d+/\d+$`, w2)
	// Complement shares the denominator.
	assert.Equal(t, strings.Split(w1, "/")[1], strings.Split(w2, "/")[1])
}

func TestDrawWeightsScientificUnsupported(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, _, err := drawWeights(rng, WeightOptions{Format: WeightScientific})
	assert.Error(t, err)
}

func TestAddWeights(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	src := filepath.Join(srcDir, "toy_000_s1.cnf")
	require.NoError(t, os.WriteFile(src, []byte("p cnf 4 2\n1 -2 0\n3 4 0\n"), 0o644))

	rng := rand.New(rand.NewSource(7))
	out, err := AddWeights(src, outDir, rng, WeightOptions{Format: WeightFloat, Percentage: 100, Precision: 3})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "toy_000_s1.cnf"), out)

	in, err := cnf.ParseFile(out)
	require.NoError(t, err)
	assert.Equal(t, cnf.TypeWMC, in.ProblemType)
	assert.Len(t, in.LitWeights, 8)
	for lit, w := range in.LitWeights {
		assert.Contains(t, in.LitWeights, -lit)
		assert.Regexp(t, `^0\.\d{3}$|^1\.000$`, w, "weight for %d", lit)
	}
}

func TestAddWeightsPercentageOutOfRange(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "toy_000_s1.cnf")
	require.NoError(t, os.WriteFile(src, []byte("p cnf 4 2\n1 -2 0\n3 4 0\n"), 0o644))

	rng := rand.New(rand.NewSource(7))
	out, err := AddWeights(src, t.TempDir(), rng, WeightOptions{Format: WeightFloat, Percentage: 150})
	require.NoError(t, err)
	in, err := cnf.ParseFile(out)
	require.NoError(t, err)
	assert.Len(t, in.LitWeights, 8)

	out, err = AddWeights(src, t.TempDir(), rng, WeightOptions{Format: WeightFloat, Percentage: -10})
	require.NoError(t, err)
	in, err = cnf.ParseFile(out)
	require.NoError(t, err)
	assert.Empty(t, in.LitWeights)
}

func TestAddWeightsRejectsWeighted(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "w.cnf")
	require.NoError(t, os.WriteFile(src, []byte("p cnf 2 1\nc p 1 0.5 0\nc p -1 0.5 0\n1 2 0\n"), 0o644))

	rng := rand.New(rand.NewSource(1))
	_, err := AddWeights(src, t.TempDir(), rng, WeightOptions{})
	assert.ErrorContains(t, err, "already carries weights")
}

func TestWriteInstanceList(t *testing.T) {
	outDir := t.TempDir()
	path, err := WriteInstanceList(outDir, "2026-08-29_s1", []string{"/a.cnf", "/b.cnf"})
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/a.cnf\n/b.cnf\n", string(data))
}

func TestAcquireGroundTruth(t *testing.T) {
	toolDir := t.TempDir()
	outDir := t.TempDir()
	verifier := testutil.FakeVerifier(t, toolDir, "cpog", "4")

	table, err := AcquireGroundTruth(context.Background(), verifier,
		[]string{"/inst/a_000_s1.cnf", "/inst/a_001_s2.cnf"},
		outDir, "2026-08-29_s1", nil, invoke.Options{Timeout: 10 * time.Second})
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, "4", table["/inst/a_000_s1.cnf"].VerifiedCount)
	assert.Equal(t, "mc", table["/inst/a_000_s1.cnf"].ProblemType)

	loaded, err := verify.LoadTable(filepath.Join(outDir, "2026-08-29_s1_verified_counts.csv"))
	require.NoError(t, err)
	assert.Equal(t, table, loaded)
}
