package cli

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
	"github.com/spf13/cobra"

	"github.com/interposehq/interpose/internal/tape"
)

//go:embed schema.cue
var cassetteSchema string

// ValidationIssue is one problem found in a cassette file.
type ValidationIssue struct {
	Source  string `json:"source"` // "schema" or "model"
	Message string `json:"message"`
}

// ValidateResult holds validation results.
type ValidateResult struct {
	Path   string            `json:"path"`
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <cassette.json>",
		Short: "Validate a cassette file without loading it into a broker",
		Long: `Validate a cassette JSON document.

Two passes run in order: a structural pass against the embedded CUE
schema (field shapes, fingerprint format, chunk sequence types), then a
model pass that rebuilds every interaction and re-checks the
fingerprint and chunk ordering invariants.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read cassette", err)
	}

	result := ValidateResult{Path: path}
	result.Issues = append(result.Issues, schemaIssues(path, data)...)

	// The model pass re-runs construction-time validation, which the
	// schema alone cannot express (fingerprint/request agreement,
	// contiguity of chunk sequences).
	var cassette tape.Cassette
	if err := json.Unmarshal(data, &cassette); err != nil {
		result.Issues = append(result.Issues, ValidationIssue{Source: "model", Message: err.Error()})
	}

	result.Valid = len(result.Issues) == 0
	if !result.Valid {
		if opts.Format == "json" {
			if err := formatter.Error("E_INVALID_CASSETTE", "cassette failed validation", result); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: invalid\n", path)
			for _, issue := range result.Issues {
				fmt.Fprintf(cmd.OutOrStdout(), "  [%s] %s\n", issue.Source, issue.Message)
			}
		}
		return NewExitError(ExitFailure, "cassette failed validation")
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (%d interaction(s))\n", path, cassette.Len())
	return nil
}

// schemaIssues checks the raw document against the embedded CUE schema.
func schemaIssues(path string, data []byte) []ValidationIssue {
	cctx := cuecontext.New()

	schema := cctx.CompileString(cassetteSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return []ValidationIssue{{Source: "schema", Message: fmt.Sprintf("internal schema error: %v", err)}}
	}

	expr, err := cuejson.Extract(path, data)
	if err != nil {
		return []ValidationIssue{{Source: "schema", Message: err.Error()}}
	}
	document := cctx.BuildExpr(expr)
	if err := document.Err(); err != nil {
		return []ValidationIssue{{Source: "schema", Message: err.Error()}}
	}

	unified := schema.LookupPath(cue.ParsePath("#Cassette")).Unify(document)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		var issues []ValidationIssue
		for _, e := range cueerrors.Errors(err) {
			issues = append(issues, ValidationIssue{Source: "schema", Message: e.Error()})
		}
		return issues
	}
	return nil
}
