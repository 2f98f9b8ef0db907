package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/archdb/archdb/internal/pipeline"
	"github.com/archdb/archdb/internal/resolve"
	"github.com/archdb/archdb/internal/schema"
)

// ResolveResult is the success payload of the resolve command.
type ResolveResult struct {
	RunID       string `json:"run_id"`
	RecordCount int    `json:"record_count"`
	OutDir      string `json:"out_dir"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		schemaDir      string
		skipValidation bool
		noProgress     bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <arch-dir> <out-dir>",
		Short: "Resolve a combined architecture tree into self-contained records",
		Long: `Resolve every record under <arch-dir>: expand $inherits, apply
$remove, stamp provenance, inject schema defaults, validate, and write the
resolved records, index, and manifest under <out-dir>.

The manifest is published only after every record resolved and validated;
a failure anywhere aborts the run with nothing published.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, cmd, args[0], args[1], schemaDir, skipValidation, noProgress)
		},
	}

	cmd.Flags().StringVar(&schemaDir, "schema-dir", "", "schema root directory (validation disabled when empty)")
	cmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "skip schema defaulting and validation")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "skip progress reporting")

	return cmd
}

func runResolve(opts *RootOptions, cmd *cobra.Command, archDir, outDir, schemaDir string, skipValidation, noProgress bool) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if info, err := os.Stat(archDir); err != nil || !info.IsDir() {
		msg := fmt.Sprintf("architecture directory not found: %s", archDir)
		_ = formatter.Error("COMMAND_ERROR", msg, nil)
		return NewExitError(ExitCommandError, msg)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		_ = formatter.Error("COMMAND_ERROR", err.Error(), nil)
		return WrapExitError(ExitCommandError, "create output directory", err)
	}

	var progress io.Writer
	if !noProgress {
		// Progress goes to stderr so JSON output stays parseable.
		progress = cmd.ErrOrStderr()
	}

	runner := pipeline.New(pipeline.Config{
		ArchDir:        archDir,
		OutDir:         outDir,
		SchemaDir:      schemaDir,
		SkipValidation: skipValidation,
		Progress:       progress,
	})
	manifest, err := runner.Run(cmd.Context())
	if err != nil {
		code, exit := classify(err)
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(exit, "resolve failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(ResolveResult{
			RunID:       manifest.RunID,
			RecordCount: manifest.RecordCount,
			OutDir:      outDir,
		})
	}
	fmt.Fprintf(formatter.Writer, "✓ resolved %d record(s) into %s (run %s)\n", manifest.RecordCount, outDir, manifest.RunID)
	return nil
}

// classify maps a run failure to its error code and process exit code.
// Resolution and validation failures exit 1; everything else is a command
// error exiting 2.
func classify(err error) (string, int) {
	var re *resolve.Error
	if errors.As(err, &re) {
		return string(re.Code), ExitFailure
	}
	var snf *schema.SchemaNotFoundError
	if errors.As(err, &snf) {
		return "SCHEMA_NOT_FOUND", ExitFailure
	}
	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		return "VALIDATION_ERROR", ExitFailure
	}
	return "COMMAND_ERROR", ExitCommandError
}
