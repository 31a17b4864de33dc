package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vk/inventio/internal/archive"
	"github.com/vk/inventio/internal/contract"
	"github.com/vk/inventio/internal/pipeline"
	"github.com/vk/inventio/internal/report"
)

var pipelineFlags struct {
	slugs       []string
	all         bool
	seed        int64
	uq          bool
	samples     int
	out         string
	markdown    bool
	archivePath string
}

var pipelineCmd = &cobra.Command{
	Use:   "pipeline [slug...]",
	Short: "Run the full plan/simulate/build/evaluate pipeline",
	Long: "Runs the complete lifecycle for one or more modules. A failing module\n" +
		"moves to FAILED and its siblings keep running; the exit code is non-zero\n" +
		"if any requested module failed. With --uq the simulation stage becomes an\n" +
		"uncertainty sweep and downstream evaluation sees the aggregated result.",
	RunE: runPipeline,
}

func init() {
	f := pipelineCmd.Flags()
	f.StringSliceVar(&pipelineFlags.slugs, "slug", nil, "Module slug (repeatable)")
	f.BoolVar(&pipelineFlags.all, "all", false, "Run every registered module")
	f.Int64Var(&pipelineFlags.seed, "seed", contract.DefaultSeed, "Simulation seed")
	f.BoolVar(&pipelineFlags.uq, "uq", false, "Replace the single simulation with an uncertainty sweep")
	f.IntVar(&pipelineFlags.samples, "samples", 0, "Override the sweep's base sample count")
	f.StringVarP(&pipelineFlags.out, "out", "o", "out", "Artifact and report output directory root")
	f.BoolVar(&pipelineFlags.markdown, "report", false, "Write a Markdown report alongside the YAML")
	f.StringVar(&pipelineFlags.archivePath, "archive", "", "Archive runs into this SQLite database")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, pipelineFlags.samples)
	if err != nil {
		return err
	}
	ctx := a.Context()

	slugs := append([]string{}, pipelineFlags.slugs...)
	slugs = append(slugs, args...)
	if pipelineFlags.all {
		slugs = slugs[:0]
		for desc := range a.Registry().All() {
			slugs = append(slugs, desc.Slug)
		}
	}
	if len(slugs) == 0 {
		return fmt.Errorf("no modules requested (use --slug, positional slugs, or --all)")
	}

	reports := a.Orchestrator().Run(ctx, slugs, pipeline.Options{
		Seed:   pipelineFlags.seed,
		UQ:     pipelineFlags.uq,
		OutDir: pipelineFlags.out,
	})

	var store *archive.Store
	if pipelineFlags.archivePath != "" {
		store, err = archive.Open(pipelineFlags.archivePath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	var failed []string
	for _, r := range reports {
		data, err := report.ToYAML(r)
		if err != nil {
			return fmt.Errorf("render report for %s: %w", r.Slug, err)
		}
		if err := writeReport(pipelineFlags.out, r, data); err != nil {
			return err
		}
		if store != nil {
			if _, err := store.Save(ctx, r, data); err != nil {
				return err
			}
		}
		if !r.Succeeded() {
			failed = append(failed, r.Slug)
		}
	}

	printStatusTable(reports)
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d modules failed: %s", len(failed), len(reports), strings.Join(failed, ", "))
	}
	return nil
}

func writeReport(outRoot string, r pipeline.Report, yamlData []byte) error {
	dir := filepath.Join(outRoot, r.Slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "report.yaml"), yamlData, 0o644); err != nil {
		return err
	}
	if pipelineFlags.markdown {
		md := report.ToMarkdown(r)
		if err := os.WriteFile(filepath.Join(dir, "report.md"), []byte(md), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func printStatusTable(reports []pipeline.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Slug", "State", "Stage", "Error"})
	for _, r := range reports {
		t.AppendRow(table.Row{r.Slug, r.State, r.FailedStage, r.Error})
	}
	t.Render()
}
