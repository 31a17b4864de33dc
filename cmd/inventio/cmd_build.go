package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vk/inventio/internal/contract"
)

var buildFlags struct {
	slug string
	out  string
}

var buildCmd = &cobra.Command{
	Use:   "build [slug]",
	Short: "Write a module's geometry artifacts",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringVar(&buildFlags.slug, "slug", "", "Module slug")
	f.StringVarP(&buildFlags.out, "out", "o", "out", "Artifact output directory root")
}

func runBuild(cmd *cobra.Command, args []string) error {
	slug, err := resolveSlug(buildFlags.slug, args)
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

	artifacts, err := mod.Build(a.Context(), filepath.Join(buildFlags.out, slug))
	if err != nil {
		return &contract.BuildError{Slug: slug, Err: err}
	}
	for _, art := range artifacts {
		fmt.Printf("%s\t%s\n", art.Name, art.Path)
	}
	return nil
}
