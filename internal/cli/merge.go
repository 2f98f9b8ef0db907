package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/archdb/archdb/internal/overlay"
	"github.com/archdb/archdb/internal/pipeline"
)

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <base-dir> <overlay-dir> <out-dir>",
		Short: "Merge a base architecture tree with an overlay tree",
		Long: `Apply the overlay tree's partial-record patches (JSON Merge Patch
semantics) atop the base tree, producing the combined tree that the resolve
command consumes. Incremental: files whose output is already newer than the
source are skipped, and outputs whose sources vanished are deleted.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(rootOpts, cmd, args[0], args[1], args[2])
		},
	}
	return cmd
}

func runMerge(opts *RootOptions, cmd *cobra.Command, baseDir, overlayDir, outDir string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if info, err := os.Stat(baseDir); err != nil || !info.IsDir() {
		msg := fmt.Sprintf("base directory not found: %s", baseDir)
		_ = formatter.Error("COMMAND_ERROR", msg, nil)
		return NewExitError(ExitCommandError, msg)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		_ = formatter.Error("COMMAND_ERROR", err.Error(), nil)
		return WrapExitError(ExitCommandError, "create output directory", err)
	}

	formatter.VerboseLog("merging %s + %s -> %s", baseDir, overlayDir, outDir)
	if err := overlay.MergeTree(baseDir, overlayDir, outDir, pipeline.RecordExt); err != nil {
		_ = formatter.Error("MERGE_ERROR", err.Error(), nil)
		return WrapExitError(ExitFailure, "merge failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]string{"out_dir": outDir})
	}
	fmt.Fprintf(formatter.Writer, "✓ merged into %s\n", outDir)
	return nil
}
