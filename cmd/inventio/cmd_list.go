package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered analysis modules",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, 0)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Slug", "Title", "Status", "Summary"})
	for desc := range a.Registry().All() {
		t.AppendRow(table.Row{desc.Slug, desc.Title, desc.Status, desc.Summary})
	}
	t.Render()
	return nil
}
