/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package order provides the order command for kesher.
package order

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bennypowers.dev/kesher/config"
	"bennypowers.dev/kesher/fs"
	"bennypowers.dev/kesher/internal/render"
	"bennypowers.dev/kesher/merge"
	"bennypowers.dev/kesher/parser"
	"bennypowers.dev/kesher/project"
	"bennypowers.dev/kesher/resolver"
)

// Cmd is the order cobra command.
var Cmd = &cobra.Command{
	Use:   "order [files...]",
	Short: "Print dependency-first resolution order",
	Long: `Print the order in which tokens must be resolved so that every
reference target comes before its referrer. With --files, print the
order in which the files themselves must be resolved instead.

Fails when the dependency graph contains cycles.`,
	Args: cobra.ArbitraryArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().Bool("files", false, "Print file-level order instead of token-level")
}

func run(cmd *cobra.Command, args []string) error {
	fileLevel, _ := cmd.Flags().GetBool("files")

	filesystem := fs.NewOSFileSystem()
	cfg := config.LoadOrDefault(filesystem, ".")

	files := args
	if len(files) == 0 {
		expanded, err := cfg.ExpandFiles(filesystem, ".")
		if err != nil {
			return fmt.Errorf("error expanding config files: %w", err)
		}
		files = expanded
	}
	if len(files) == 0 {
		return fmt.Errorf("no files specified and no files found in config")
	}

	if fileLevel {
		return fileOrder(filesystem, cfg, files)
	}

	docs := make([]map[string]any, 0, len(files))
	for _, file := range files {
		doc, err := parser.ParseFile(filesystem, file)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	merged := merge.All(docs...)
	detection := resolver.DetectCyclesInGraph(resolver.BuildGraphFromDocument(merged))
	if detection.HasCycles {
		render.CycleReport(os.Stderr, detection.Cycles)
		return fmt.Errorf("dependency graph has cycles")
	}

	render.Order(os.Stdout, detection.TopologicalOrder)
	return nil
}

func fileOrder(filesystem fs.FileSystem, cfg *config.Config, files []string) error {
	proj := project.New(cfg.BasePath)
	for _, file := range files {
		doc, err := parser.ParseFile(filesystem, file)
		if err != nil {
			return err
		}
		proj.AddFile(file, doc)
	}

	proj.BuildCrossFileReferences()
	order, cycles := proj.ResolutionOrder()
	if len(cycles) > 0 {
		render.CycleReport(os.Stderr, cycles)
		return fmt.Errorf("file dependency graph has cycles")
	}

	render.Order(os.Stdout, order)
	return nil
}
