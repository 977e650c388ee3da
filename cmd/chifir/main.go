// Command chifir runs YAML assertion scripts through chifir chains.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/artie-owlet/chifir/internal/config"
	"github.com/artie-owlet/chifir/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath string
	verbose    bool
	failFast   bool
	noColor    bool

	cfg *config.Config
)

// errFailures makes the process exit non-zero without printing usage.
var errFailures = errors.New("assertion failures")

var rootCmd = &cobra.Command{
	Use:   "chifir",
	Short: "chifir - fluent assertion chains",
	Long: `chifir checks values against chains of assertions.

Scripts are YAML files holding cases. Each case names a value (inline or
loaded from a JSON/YAML file) and the steps to check it with:

  cases:
    - id: status
      file: fixtures/response.json
      steps:
        - prop: status
        - eq: 200
        - context
        - prop: items
        - exist`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("fail-fast") {
			cfg.Runner.FailFast = failFast
		}
		if cmd.Flags().Changed("no-color") {
			cfg.Runner.NoColor = noColor
		}
		if verbose {
			cfg.Logging.DebugMode = true
			cfg.Logging.Level = "debug"
		}
		return logging.Initialize(cfg.Logging.Logger())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&failFast, "fail-fast", false, "Stop at the first failing case")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(runCmd, watchCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailures) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
