package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/artie-owlet/chifir/internal/logging"
	"github.com/artie-owlet/chifir/internal/script"
)

var runCmd = &cobra.Command{
	Use:   "run [paths...]",
	Short: "Run assertion scripts",
	Long: `Runs every script found in the given files and directories.
Directories are searched recursively for *.yaml and *.yml files.
Without arguments, .chifir/scripts is used.

Exits non-zero if any case fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := args
		if len(paths) == 0 {
			paths = []string{script.DefaultScriptDir(".")}
		}
		ok, err := runScripts(cmd.Context(), cmd.OutOrStdout(), paths)
		if err != nil {
			return err
		}
		if !ok {
			return errFailures
		}
		return nil
	},
}

// runScripts loads and runs the scripts under paths, printing the report to
// out. ok is false if any case failed.
func runScripts(ctx context.Context, out io.Writer, paths []string) (ok bool, err error) {
	files, err := script.Expand(paths)
	if err != nil {
		return false, err
	}
	scripts, err := script.LoadAll(ctx, files)
	if err != nil {
		return false, err
	}

	runner := script.NewRunner(cfg.Runner.FailFast, cfg.GetAwaitTimeout())
	logging.Boot("run %s: %d script(s)", runner.RunID, len(scripts))

	reports, err := runner.RunAll(ctx, scripts)
	printReports(out, runner.RunID, reports, newStyles(cfg.Runner.NoColor))
	if err != nil {
		return false, err
	}

	ok = true
	for _, rep := range reports {
		ok = ok && rep.OK()
	}
	return ok, nil
}
