package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vk/inventio/internal/archive"
)

var historyFlags struct {
	archivePath string
	slug        string
	limit       int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show archived pipeline runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyFlags.archivePath, "archive", "inventio.db", "Archive SQLite database path")
	f.StringVar(&historyFlags.slug, "slug", "", "Filter by module slug")
	f.IntVar(&historyFlags.limit, "limit", 20, "Maximum entries to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(historyFlags.archivePath); err != nil {
		return fmt.Errorf("archive %s: %w", historyFlags.archivePath, err)
	}
	store, err := archive.Open(historyFlags.archivePath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	var entries []archive.Entry
	if historyFlags.slug != "" {
		entries, err = store.BySlug(ctx, historyFlags.slug, historyFlags.limit)
	} else {
		entries, err = store.Recent(ctx, historyFlags.limit)
	}
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Slug", "Seed", "State", "When"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.ID, e.Slug, e.Seed, e.State, e.CreatedAt.Format(time.RFC3339)})
	}
	t.Render()
	return nil
}
