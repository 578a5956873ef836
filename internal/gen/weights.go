package gen

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"countercheck/internal/cnf"
)

// WeightFormat selects the textual shape of generated weights.
type WeightFormat string

const (
	WeightFloat    WeightFormat = "float"
	WeightFraction WeightFormat = "fraction"
	// WeightScientific is accepted by parsers but not yet produced.
	WeightScientific WeightFormat = "scientific"
)

// WeightOptions controls random weight augmentation.
type WeightOptions struct {
	Format WeightFormat

	// Percentage of variables that receive a weight, 0 to 100.
	Percentage float64

	// Precision is the number of digits after the decimal point for
	// float weights.
	Precision int
}

// fractionMax bounds numerators and denominators of fractional weights.
const fractionMax = 1_000_000

// FloatWeights draws a weight in [0, 1) and returns it with its
// complement, both formatted to the given precision.
func FloatWeights(rng *rand.Rand, precision int) (string, string) {
	w := rng.Float64()
	return fmt.Sprintf("%.*f", precision, w), fmt.Sprintf("%.*f", precision, 1.0-w)
}

// FractionWeights draws a random fraction and a complement over the same
// denominator.
func FractionWeights(rng *rand.Rand) (string, string) {
	numerator := 1 + rng.Intn(fractionMax)
	denominator := 1 + rng.Intn(fractionMax)
	return fmt.Sprintf("%d/%d", numerator, denominator),
		fmt.Sprintf("%d/%d", fractionMax-numerator, denominator)
}

// drawWeights returns the weight pair for one variable.
func drawWeights(rng *rand.Rand, o WeightOptions) (string, string, error) {
	switch o.Format {
	case WeightFloat, "":
		w1, w2 := FloatWeights(rng, o.Precision)
		return w1, w2, nil
	case WeightFraction:
		w1, w2 := FractionWeights(rng)
		return w1, w2, nil
	case WeightScientific:
		return "", "", fmt.Errorf("scientific weight generation not implemented")
	default:
		return "", "", fmt.Errorf("unknown weight format %q", o.Format)
	}
}

// AddWeights copies an unweighted instance into outDir with random literal
// weights injected and returns the new path. The problem type is upgraded
// (mc to wmc, pmc to pwmc) and any existing projection set is carried over.
func AddWeights(instancePath, outDir string, rng *rand.Rand, o WeightOptions) (string, error) {
	in, err := cnf.ParseFile(instancePath)
	if err != nil {
		return "", err
	}
	if in.Weighted() {
		return "", fmt.Errorf("add weights: %s already carries weights", instancePath)
	}

	problemType := in.ProblemType
	switch problemType {
	case cnf.TypeMC:
		problemType = cnf.TypeWMC
	case cnf.TypePMC:
		problemType = cnf.TypePWMC
	}

	if o.Precision <= 0 {
		o.Precision = 6
	}
	numWeighted := int(o.Percentage * 0.01 * float64(in.NumVars))
	if numWeighted < 0 {
		numWeighted = 0
	}
	if numWeighted > in.NumVars {
		numWeighted = in.NumVars
	}
	weighted := rng.Perm(in.NumVars)[:numWeighted]

	litWeights := map[int]string{}
	for _, idx := range weighted {
		v := idx + 1
		w1, w2, err := drawWeights(rng, o)
		if err != nil {
			return "", err
		}
		polarity := 1
		if rng.Intn(2) == 0 {
			polarity = -1
		}
		litWeights[polarity*v] = w1
		litWeights[-polarity*v] = w2
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("add weights: %w", err)
	}
	outPath := filepath.Join(outDir, filepath.Base(instancePath))
	aug := cnf.Augmentation{
		ProblemType: problemType,
		ProjVars:    in.SortedProjVars(),
		LitWeights:  litWeights,
	}
	if err := cnf.Augment(instancePath, outPath, aug); err != nil {
		return "", err
	}
	return outPath, nil
}
