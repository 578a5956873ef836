package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"countercheck/internal/cnf"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <instances>",
		Short: "Validate instance files",
		Long: `Parse every instance and report its recomputed problem type. A file
that violates the extended-DIMACS format fails validation.

Example:
  countercheck validate ./instances
  countercheck validate batch.txt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}
	return cmd
}

type validationIssue struct {
	Instance string `json:"instance"`
	Error    string `json:"error"`
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	instances, err := collectInstances(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to collect instances", err)
	}
	if len(instances) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no instances found at %s", path))
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var issues []validationIssue
	for _, inst := range instances {
		in, err := cnf.ParseFile(inst)
		if err != nil {
			issues = append(issues, validationIssue{Instance: inst, Error: err.Error()})
			continue
		}
		formatter.VerboseLog("%s: type=%s vars=%d clauses=%d projected=%d weighted=%d",
			inst, in.ProblemType, in.NumVars, in.NumClauses, len(in.ProjVars), len(in.LitWeights))
	}

	if len(issues) > 0 {
		if opts.Format == "json" {
			_ = formatter.Error("validation failed", issues)
		} else {
			for _, issue := range issues {
				fmt.Fprintf(cmd.OutOrStdout(), "INVALID %s: %s\n", issue.Instance, issue.Error)
			}
		}
		return NewExitError(ExitFailure,
			fmt.Sprintf("%d of %d instance(s) invalid", len(issues), len(instances)))
	}
	if opts.Format == "json" {
		return formatter.Success(map[string]any{"instances": len(instances), "valid": true})
	}
	return formatter.Success(fmt.Sprintf("All %d instance(s) valid.", len(instances)))
}
