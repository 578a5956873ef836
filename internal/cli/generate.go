package cli

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"countercheck/internal/campaign"
	"countercheck/internal/config"
	"countercheck/internal/gen"
	"countercheck/internal/invoke"
	"countercheck/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Generators   string
	OutDir       string
	Database     string
	NumIter      int
	Seed         int64
	Weighted     bool
	WeightFormat string
	Percentage   float64
	Precision    int
	Verifier     string
	TimeoutSecs  int
	MemoutMB     int
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of CNF instances",
		Long: `Run every configured generator a number of times, optionally augment
the produced instances with random literal weights, and optionally acquire
proof-backed ground truth per instance.

Example:
  countercheck generate --generators gens.cue --num-iter 100 --seed 42 --out-dir ./out
  countercheck generate --generators gens.cue --num-iter 50 --weighted --weight-format fraction`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Generators, "generators", "", "generator configuration file (required)")
	cmd.Flags().StringVar(&opts.OutDir, "out-dir", "out", "output directory")
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database for ground truth (default <out-dir>/results.db)")
	cmd.Flags().IntVar(&opts.NumIter, "num-iter", 10, "instances per generator")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "batch seed (0 picks one from the clock)")
	cmd.Flags().BoolVar(&opts.Weighted, "weighted", false, "add random literal weights")
	cmd.Flags().StringVar(&opts.WeightFormat, "weight-format", "float", "weight shape (float|fraction)")
	cmd.Flags().Float64Var(&opts.Percentage, "percentage-variables", 50, "percentage of variables that receive weights")
	cmd.Flags().IntVar(&opts.Precision, "precision", 6, "digits after the decimal point for float weights")
	cmd.Flags().StringVar(&opts.Verifier, "verifier", "", "verifier configuration file; acquire ground truth when set")
	cmd.Flags().IntVar(&opts.TimeoutSecs, "timeout", 100, "per-call CPU budget in seconds")
	cmd.Flags().IntVar(&opts.MemoutMB, "memout", 3200, "per-call memory budget in MB")
	_ = cmd.MarkFlagRequired("generators")

	return cmd
}

func runGenerate(opts *GenerateOptions, cmd *cobra.Command) error {
	generators, err := config.LoadTools(opts.Generators)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load generators", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano() % 1_000_000
		slog.Info("picked random seed", "seed", seed)
	}
	prefix := campaign.Prefix(time.Now(), seed)
	instanceDir := filepath.Join(opts.OutDir, "instances")
	if err := os.MkdirAll(instanceDir, 0o755); err != nil {
		return WrapExitError(ExitCommandError, "failed to create output directory", err)
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	genOpts := gen.Options{
		NumIter: opts.NumIter,
		Seed:    seed,
		Timeout: time.Duration(opts.TimeoutSecs) * time.Second,
	}
	instances, err := gen.Generate(ctx, generators, instanceDir, genOpts)
	if err != nil {
		return WrapExitError(ExitFailure, "generation aborted", err)
	}
	slog.Info("generated instances", "count", len(instances), "dir", instanceDir)

	if opts.Weighted {
		rng := rand.New(rand.NewSource(seed))
		weightDir := filepath.Join(instanceDir, gen.Options{Weighted: true}.Extension())
		wOpts := gen.WeightOptions{
			Format:     gen.WeightFormat(opts.WeightFormat),
			Percentage: opts.Percentage,
			Precision:  opts.Precision,
		}
		weighted := make([]string, 0, len(instances))
		for _, inst := range instances {
			w, err := gen.AddWeights(inst, weightDir, rng, wOpts)
			if err != nil {
				return WrapExitError(ExitFailure, "weight augmentation failed", err)
			}
			weighted = append(weighted, w)
		}
		slog.Info("added weights", "format", opts.WeightFormat,
			"percentage", opts.Percentage, "dir", weightDir)
		instances = weighted
	}

	listPath, err := gen.WriteInstanceList(opts.OutDir, prefix, instances)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to write instance list", err)
	}
	slog.Info("saved instance list", "path", listPath)

	if opts.Verifier != "" {
		verifier, err := config.LoadTool(opts.Verifier)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load verifier", err)
		}
		dbPath := opts.Database
		if dbPath == "" {
			dbPath = filepath.Join(opts.OutDir, "results.db")
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open results database", err)
		}
		defer st.Close()

		invOpts := invoke.Options{
			Timeout:    time.Duration(opts.TimeoutSecs) * time.Second,
			MemoutMB:   opts.MemoutMB,
			ScratchDir: os.TempDir(),
		}
		if _, err := gen.AcquireGroundTruth(ctx, verifier, instances, opts.OutDir, prefix, st, invOpts); err != nil {
			return WrapExitError(ExitFailure, "ground-truth acquisition aborted", err)
		}
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"prefix":    prefix,
			"instances": len(instances),
			"list":      listPath,
		})
	}
	return formatter.Success(fmt.Sprintf("Generated %d instance(s), list at %s", len(instances), listPath))
}
