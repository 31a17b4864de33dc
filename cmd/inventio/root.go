package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vk/inventio/internal/app"
)

// version is set at build time via -ldflags.
var version = "dev"

const defaultParamsPath = "params.hcl"

var rootFlags struct {
	paramsPath string
	logLevel   string
	logFormat  string
	workers    int
}

var rootCmd = &cobra.Command{
	Use:   "inventio",
	Short: "Deterministic analysis pipelines for invention studies",
	Long: "Inventio discovers pluggable invention-analysis modules, runs their\n" +
		"plan/simulate/build/evaluate lifecycle under reproducible seeds, and\n" +
		"propagates parameter uncertainty into confidence intervals and\n" +
		"sensitivity rankings.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.paramsPath, "config", defaultParamsPath, "Path to the HCL params manifest")
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format: text or json")
	pf.IntVar(&rootFlags.workers, "workers", 0, "Worker bound for uncertainty sweeps (0 = number of CPUs)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.Version = version
}

// newApp wires an application instance from the persistent flags. The default
// manifest path is optional; an explicitly set one must exist.
func newApp(cmd *cobra.Command, samples int) (*app.App, error) {
	explicit := cmd.Flags().Changed("config")
	path, err := app.ResolveParamsPath(rootFlags.paramsPath, explicit)
	if err != nil {
		return nil, err
	}
	return app.New(os.Stderr, app.Config{
		ParamsPath: path,
		LogLevel:   rootFlags.logLevel,
		LogFormat:  rootFlags.logFormat,
		Samples:    samples,
		Workers:    rootFlags.workers,
	})
}

// resolveSlug accepts the slug either as --slug or as the single positional
// argument.
func resolveSlug(flagVal string, args []string) (string, error) {
	if flagVal != "" {
		return flagVal, nil
	}
	if len(args) == 1 {
		return args[0], nil
	}
	return "", fmt.Errorf("a module slug is required (use --slug or a positional argument)")
}
