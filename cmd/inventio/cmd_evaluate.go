package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vk/inventio/internal/contract"
	"github.com/vk/inventio/internal/fmea"
)

var evaluateFlags struct {
	slug string
	seed int64
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [slug]",
	Short: "Rank a module's failure modes by risk priority",
	Long: "Runs one deterministic simulation, feeds the outputs into the module's\n" +
		"evaluation and prints the risk-ranked findings. Findings over the action\n" +
		"threshold are flagged; the flag is advisory and never blocks anything.",
	Args: cobra.MaximumNArgs(1),
	RunE: runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.StringVar(&evaluateFlags.slug, "slug", "", "Module slug")
	f.Int64Var(&evaluateFlags.seed, "seed", contract.DefaultSeed, "Simulation seed")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	slug, err := resolveSlug(evaluateFlags.slug, args)
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
	ctx := a.Context()

	out, err := a.Runner().Run(ctx, mod, a.Params().Input(slug, evaluateFlags.seed))
	if err != nil {
		return err
	}
	res, err := mod.Evaluate(ctx, contract.EvalInput{Output: &out})
	if err != nil {
		return &contract.EvaluateError{Slug: slug, Err: err}
	}
	report, err := fmea.New().Rank(ctx, slug, res)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Failure mode", "S", "O", "D", "RPN", "Action", "Mitigation"})
	for _, f := range report.Findings {
		action := ""
		if f.ActionRequired {
			action = "required"
		}
		t.AppendRow(table.Row{f.FailureMode, f.Severity, f.Occurrence, f.Detection, f.RPN(), action, f.Mitigation})
	}
	t.Render()
	return nil
}
