package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/catalogview/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Path     string   `json:"path"`
	Problems []string `json:"problems,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long: `Load the configuration named by --config, apply CATALOGVIEW_*
environment overrides, and check the result against the config schema.

Every violation is reported, not only the first.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	formatter.VerboseLog("Loaded config from %s", opts.ConfigPath)

	err = cfg.Validate()
	var verr *config.ValidationError
	switch {
	case errors.As(err, &verr):
		return outputValidationProblems(formatter, opts.ConfigPath, verr.Problems)
	case err != nil:
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to validate config", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Path: opts.ConfigPath})
	}
	fmt.Fprintln(formatter.Writer, "✓ Config valid")
	return nil
}

// outputValidationProblems reports every schema violation.
func outputValidationProblems(formatter *OutputFormatter, path string, problems []string) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(problems)))

	if formatter.Format == "json" {
		err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Path: path, Problems: problems},
			Error: &CLIError{
				Code:    ErrCodeInvalidConfig,
				Message: exitErr.Message,
			},
		})
		if err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, p := range problems {
		fmt.Fprintf(formatter.Writer, "  %s\n", p)
	}
	return exitErr
}
