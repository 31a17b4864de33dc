package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vk/inventio/internal/contract"
)

var simulateFlags struct {
	slug string
	seed int64
}

var simulateCmd = &cobra.Command{
	Use:   "simulate [slug]",
	Short: "Run one deterministic simulation",
	Long: "Runs the module's simulation once under the given seed and prints the\n" +
		"named output values. The same seed always reproduces the same values.",
	Args: cobra.MaximumNArgs(1),
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simulateFlags.slug, "slug", "", "Module slug")
	f.Int64Var(&simulateFlags.seed, "seed", contract.DefaultSeed, "Simulation seed")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	slug, err := resolveSlug(simulateFlags.slug, args)
	if err != nil {
		return err
	}
	a, err := newApp(cmd, 0)
	if err != nil {
		return err
	}
	mod, err := a.Registry().Get(slug)
	if err != nil {
		return err
	}

	in := a.Params().Input(slug, simulateFlags.seed)
	out, err := a.Runner().Run(a.Context(), mod, in)
	if err != nil {
		return err
	}

	fmt.Printf("seed: %d  duration: %s\n", out.Seed, out.Duration)
	names := make([]string, 0, len(out.Values))
	for name := range out.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-20s %g\n", name, out.Values[name])
	}
	return nil
}
