package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hwir/internal/compiler"
)

// ValidationIssue is one problem found while compiling a library.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
// Valid is false when any module failed to compile; Warnings never affect it.
type ValidationResult struct {
	Valid    bool                    `json:"valid"`
	Modules  []string                `json:"modules"`
	Errors   []ValidationIssue       `json:"errors,omitempty"`
	Warnings []compiler.CycleWarning `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <lib-dir>",
		Short: "Compile a module library and report every error",
		Long: `Compile every module of a CUE library without encoding anything.

All module errors are reported, not just the first. Instantiation loops
are reported as warnings and do not fail validation.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

// runValidate compiles the library in collect-all mode so that every broken
// module is reported in one run.
func runValidate(opts *RootOptions, libDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loadResult, loadErrors := LoadLibrary(libDir, LoadModeCollectAll)
	// A nil result means the directory itself could not be loaded
	if loadResult == nil {
		loadErr := firstLoadError(loadErrors)
		return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, libDir)

	result := ValidationResult{
		Valid:    len(loadErrors) == 0,
		Modules:  loadResult.Library.Names(),
		Warnings: loadResult.Warnings,
	}
	for _, err := range loadErrors {
		result.Errors = append(result.Errors, toIssue(err))
	}

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{Code: result.Errors[0].Code, Message: result.Errors[0].Message}
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(resp); err != nil {
			return err
		}
	} else {
		writeValidationText(formatter, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}
	return nil
}

// toIssue converts a load error into a reportable issue, keeping the
// source position when the compiler had one.
func toIssue(err error) ValidationIssue {
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		return ValidationIssue{Code: ErrCodeGeneric, Message: err.Error()}
	}
	issue := ValidationIssue{Code: loadErr.Code, Message: loadErr.Message}
	if loadErr.Pos.IsValid() {
		issue.File = loadErr.Pos.Filename()
		issue.Line = loadErr.Pos.Line()
	}
	return issue
}

// writeValidationText prints a summary line, then one block per error and
// one line per warning.
func writeValidationText(formatter *OutputFormatter, result ValidationResult) {
	w := formatter.Writer
	if result.Valid {
		fmt.Fprintf(w, "✓ %d module(s) valid\n", len(result.Modules))
	} else {
		fmt.Fprintln(w, "✗ Validation failed")
		fmt.Fprintln(w)
		for _, issue := range result.Errors {
			if issue.Line > 0 {
				fmt.Fprintf(w, "%s:%d\n", issue.File, issue.Line)
			}
			fmt.Fprintf(w, "  %s: %s\n\n", issue.Code, issue.Message)
		}
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "⚠ %s\n", warning.Message)
	}
}
