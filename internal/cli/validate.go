package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keyline/keyline/internal/document"
	"github.com/keyline/keyline/internal/timeline"
)

// FileValidation holds the validation result for one document file.
type FileValidation struct {
	File  string `json:"file"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidationResult holds validation results across all files.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate timeline documents",
		Long: `Validate timeline document files without further processing.

Each file is checked against the document schema (shape, types, value
ranges) and then against the timeline invariants (unique ids,
referential integrity, acyclic groups). All files are checked even when
an earlier one fails.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	result := ValidationResult{Valid: true}
	commandErrors := 0
	for _, file := range files {
		formatter.VerboseLog("Validating %s", file)
		fv := FileValidation{File: file, Valid: true}
		if err := document.Validate(file); err != nil {
			fv.Valid = false
			fv.Error = err.Error()
			result.Valid = false
			// A file we could not even read or recognize is a command
			// error, not a document failure.
			if !timeline.IsMalformedState(err) {
				commandErrors++
			}
		}
		result.Files = append(result.Files, fv)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, fv := range result.Files {
			if fv.Valid {
				fmt.Fprintf(formatter.Writer, "✓ %s\n", fv.File)
			} else {
				fmt.Fprintf(formatter.Writer, "✗ %s\n  %s\n", fv.File, fv.Error)
			}
		}
	}

	switch {
	case commandErrors > 0:
		return NewExitError(ExitCommandError, fmt.Sprintf("%d file(s) could not be read", commandErrors))
	case !result.Valid:
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}
