package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"countercheck/internal/campaign"
	"countercheck/internal/config"
	"countercheck/internal/invoke"
	"countercheck/internal/store"
	"countercheck/internal/verify"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Counters       string
	Instances      string
	OutDir         string
	Database       string
	Seed           int64
	TimeoutSecs    int
	MemoutMB       int
	Jobs           int
	VerifiedCounts string
	CleanUpProofs  bool
	ProofDir       string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a differential-testing campaign",
		Long: `Run every configured counter on every instance, compare the
normalized counts per instance, and record the results.

Example:
  countercheck run --counters counters.cue --instances ./instances --out-dir ./out
  countercheck run --counters counters.yaml --instances batch.txt --verified-counts verified.csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCampaign(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Counters, "counters", "", "counter configuration file (required)")
	cmd.Flags().StringVar(&opts.Instances, "instances", "", "instance directory, manifest .txt, or single file (required)")
	cmd.Flags().StringVar(&opts.OutDir, "out-dir", "out", "output directory for results and artifacts")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite results database (default <out-dir>/results.db)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "campaign seed (0 picks one from the clock)")
	cmd.Flags().IntVar(&opts.TimeoutSecs, "timeout", 60, "per-invocation CPU budget in seconds")
	cmd.Flags().IntVar(&opts.MemoutMB, "memout", 3200, "per-invocation memory budget in MB")
	cmd.Flags().IntVar(&opts.Jobs, "jobs", 1, "number of instances processed in parallel")
	cmd.Flags().StringVar(&opts.VerifiedCounts, "verified-counts", "", "ground-truth CSV from a generate --verifier run")
	cmd.Flags().BoolVar(&opts.CleanUpProofs, "clean-up-proofs", false, "remove proof artifacts for instances whose counters agree")
	cmd.Flags().StringVar(&opts.ProofDir, "proof-dir", "", "proof-artifact directory (default <out-dir>/verification)")
	_ = cmd.MarkFlagRequired("counters")
	_ = cmd.MarkFlagRequired("instances")

	return cmd
}

func runCampaign(opts *RunOptions, cmd *cobra.Command) error {
	counters, err := config.LoadTools(opts.Counters)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load counters", err)
	}
	instances, err := collectInstances(opts.Instances)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to collect instances", err)
	}
	if len(instances) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no instances found at %s", opts.Instances))
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano() % 1_000_000
		slog.Info("picked random seed", "seed", seed)
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return WrapExitError(ExitCommandError, "failed to create output directory", err)
	}
	dbPath := opts.Database
	if dbPath == "" {
		dbPath = filepath.Join(opts.OutDir, "results.db")
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open results database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	c := campaign.New(seed)
	c.Counters = counters
	c.OutDir = opts.OutDir
	c.Jobs = opts.Jobs
	c.CleanProofs = opts.CleanUpProofs
	c.ProofDir = opts.ProofDir
	if c.ProofDir == "" {
		c.ProofDir = filepath.Join(opts.OutDir, "verification")
	}
	c.Store = st
	c.Opts = invoke.Options{
		Timeout:    time.Duration(opts.TimeoutSecs) * time.Second,
		MemoutMB:   opts.MemoutMB,
		LogDir:     filepath.Join(opts.OutDir, "logs"),
		ScratchDir: os.TempDir(),
	}

	if opts.VerifiedCounts != "" {
		c.Verified, err = verify.LoadTable(opts.VerifiedCounts)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load verified counts", err)
		}
	} else {
		c.Verified, err = st.LoadVerifiedCounts(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load verified counts", err)
		}
	}

	params := campaign.Parameters{
		Seed:        seed,
		Counters:    toolNames(counters),
		TimeoutSecs: opts.TimeoutSecs,
		MemoutMB:    opts.MemoutMB,
		Jobs:        opts.Jobs,
		Instances:   len(instances),
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode parameters", err)
	}
	if err := st.BeginCampaign(ctx, c.ID, c.Prefix, seed, string(paramsJSON)); err != nil {
		return WrapExitError(ExitCommandError, "failed to record campaign", err)
	}
	if _, err := campaign.WriteParameters(opts.OutDir, c.Prefix, params); err != nil {
		return WrapExitError(ExitCommandError, "failed to write parameters", err)
	}

	summary, err := c.Run(ctx, instances)
	if err != nil {
		return WrapExitError(ExitFailure, "campaign aborted", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if err := reportSummary(formatter, c, summary); err != nil {
		return err
	}
	if len(summary.Problematic) > 0 {
		return NewExitError(ExitFailure,
			fmt.Sprintf("%d problematic instance(s), see %s",
				len(summary.Problematic), campaign.ProblematicPath(c.OutDir, c.Prefix)))
	}
	return nil
}

func reportSummary(f *OutputFormatter, c *campaign.Campaign, s campaign.Summary) error {
	if f.Format == "json" {
		return f.Success(map[string]any{
			"campaign":      c.ID,
			"prefix":        c.Prefix,
			"instances":     s.Instances,
			"runs":          s.Runs,
			"agreements":    s.Agreements,
			"disagreements": s.Disagreements,
			"errors":        s.Errors,
			"problematic":   s.Problematic,
		})
	}
	fmt.Fprintf(f.Writer, "Campaign %s finished.\n", c.Prefix)
	fmt.Fprintf(f.Writer, "  instances:     %d\n", s.Instances)
	fmt.Fprintf(f.Writer, "  runs:          %d\n", s.Runs)
	fmt.Fprintf(f.Writer, "  agreements:    %d\n", s.Agreements)
	fmt.Fprintf(f.Writer, "  disagreements: %d\n", s.Disagreements)
	fmt.Fprintf(f.Writer, "  errors:        %d\n", s.Errors)
	if len(s.Problematic) > 0 {
		fmt.Fprintf(f.Writer, "  problematic:   %d (see %s)\n",
			len(s.Problematic), campaign.ProblematicPath(c.OutDir, c.Prefix))
	}
	return nil
}

func toolNames(tools []config.Tool) []string {
	names := make([]string, len(tools))
	for i, tool := range tools {
		names[i] = tool.Name
	}
	return names
}

// signalContext derives a context cancelled by SIGINT/SIGTERM so an
// interrupted campaign still flushes the instances completed so far.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
