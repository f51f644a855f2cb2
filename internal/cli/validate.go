package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ez2torta/SConE/internal/catalog"
	"github.com/ez2torta/SConE/internal/validate"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool               `json:"valid"`
	Errors   []validate.Finding `json:"errors,omitempty"`
	Warnings []validate.Finding `json:"warnings,omitempty"`
	Motions  int                `json:"motions"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [catalog]",
		Short: "Validate a motion catalog",
		Long: `Check a YAML, JSON or CUE motion catalog without resolving it.

Reports structural errors (missing metadata, malformed steps, bad
difficulty), dangling references and reference cycles, each with its line
number. Warnings never fail validation.

Exit codes:
  0 - Catalog is valid (warnings allowed)
  1 - Validation errors found
  2 - Catalog could not be read`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, catalogPath(rootOpts, args), cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	if path == "" {
		return formatter.Fail(ExitCommandError, fmt.Errorf("%w: no catalog given", errBadArgument))
	}

	root, err := catalog.ReadDocument(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	report := validate.Validate(root)
	stats := validate.Stats(root)
	formatter.VerboseLog("Validated %d motion(s) in %s", stats.Total, path)

	result := ValidationResult{
		Valid:    report.Valid(),
		Errors:   report.Errors,
		Warnings: report.Warnings,
		Motions:  stats.Total,
	}

	if formatter.JSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		printValidation(formatter.Writer, result)
	}

	if !result.Valid {
		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}
	return nil
}

func printValidation(w io.Writer, r ValidationResult) {
	if r.Valid {
		fmt.Fprintf(w, "✓ Catalog valid (%d motions)\n", r.Motions)
	} else {
		fmt.Fprintln(w, "✗ Validation failed")
		fmt.Fprintln(w)
		for _, f := range r.Errors {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%d warning(s):\n", len(r.Warnings))
		for _, f := range r.Warnings {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
}
