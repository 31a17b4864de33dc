package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var planFlags struct {
	slug string
}

var planCmd = &cobra.Command{
	Use:   "plan [slug]",
	Short: "Print a module's planning assumptions",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planFlags.slug, "slug", "", "Module slug")
}

func runPlan(cmd *cobra.Command, args []string) error {
	slug, err := resolveSlug(planFlags.slug, args)
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
	plan, err := mod.Plan(a.Context())
	if err != nil {
		return fmt.Errorf("plan %s: %w", slug, err)
	}

	names := make([]string, 0, len(plan))
	for name := range plan {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		a := plan[name]
		if a.Note != "" {
			fmt.Printf("%-20s %12g %-8s %s\n", name, a.Value, a.Unit, a.Note)
		} else {
			fmt.Printf("%-20s %12g %s\n", name, a.Value, a.Unit)
		}
	}
	return nil
}
