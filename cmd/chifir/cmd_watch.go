package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artie-owlet/chifir/internal/logging"
	"github.com/artie-owlet/chifir/internal/script"
	"github.com/artie-owlet/chifir/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Rerun assertion scripts when they change",
	Long: `Runs the scripts once, then watches them and the JSON/YAML files
next to them, rerunning everything after each batch of changes.
Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := args
		if len(paths) == 0 {
			paths = []string{script.DefaultScriptDir(".")}
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		rerun := func(ctx context.Context) {
			if _, err := runScripts(ctx, out, paths); err != nil {
				fmt.Fprintln(out, newStyles(cfg.Runner.NoColor).errorf("Error: %v", err))
			}
		}
		rerun(ctx)

		w, err := watch.New(paths, cfg.GetDebounce(), func(ctx context.Context, changed []string) {
			logging.Watch("rerunning after changes to %v", changed)
			rerun(ctx)
		})
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			w.Stop()
			return err
		}
		defer w.Stop()

		<-ctx.Done()
		return nil
	},
}
