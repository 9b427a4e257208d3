/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package resolve provides the resolve command for kesher.
package resolve

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/kesher/color"
	"bennypowers.dev/kesher/config"
	"bennypowers.dev/kesher/fs"
	"bennypowers.dev/kesher/internal/render"
	"bennypowers.dev/kesher/merge"
	"bennypowers.dev/kesher/parser"
	"bennypowers.dev/kesher/project"
	"bennypowers.dev/kesher/resolver"
	"bennypowers.dev/kesher/tree"
)

// Cmd is the resolve cobra command.
var Cmd = &cobra.Command{
	Use:   "resolve [files...]",
	Short: "Resolve references in token files",
	Long: `Resolve references in design token files.

Files are merged in layer order (later files override earlier ones),
then every {token.path} and $ref reference is replaced with its
concrete value.

With --cross-file each file keeps its own identity: references of the
form other.json#/path resolve across file boundaries, files resolve in
dependency order, and one output is written per input file.

Examples:
  # Resolve layered files to stdout
  kesher resolve base.json theme.json

  # Resolve files from the config layer list
  kesher resolve

  # Resolve a project with cross-file references
  kesher resolve --cross-file --out-dir dist tokens/*.json

  # Keep going past missing references
  kesher resolve --partial base.json`,
	Args: cobra.ArbitraryArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	Cmd.Flags().StringP("format", "f", "json", "Output format: json, table, markdown")
	Cmd.Flags().Bool("partial", false, "Succeed even when some references are missing")
	Cmd.Flags().Bool("drop-unresolved", false, "Drop unresolvable references instead of preserving them")
	Cmd.Flags().Bool("css-colors", false, "Normalize color token values to CSS strings")
	Cmd.Flags().Bool("cross-file", false, "Resolve references across file boundaries")
	Cmd.Flags().String("out-dir", "", "Output directory for --cross-file results")
}

func run(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	partial, _ := cmd.Flags().GetBool("partial")
	dropUnresolved, _ := cmd.Flags().GetBool("drop-unresolved")
	cssColors, _ := cmd.Flags().GetBool("css-colors")
	crossFile, _ := cmd.Flags().GetBool("cross-file")
	outDir, _ := cmd.Flags().GetString("out-dir")

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
	if output == "" {
		output = cfg.Output
	}

	opts := resolver.DefaultOptions()
	opts.Partial = partial
	opts.PreserveOnError = !dropUnresolved
	if depth := viper.GetInt("max-depth"); depth > 0 {
		opts.MaxDepth = depth
	} else if cfg.MaxDepth > 0 {
		opts.MaxDepth = cfg.MaxDepth
	}

	if crossFile {
		return runCrossFile(filesystem, cfg, files, opts, outDir, cssColors)
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
	result := resolver.Resolve(merged, opts)

	render.Warnings(os.Stderr, result.Warnings)
	render.Errors(os.Stderr, result.Errors)

	doc := result.Document
	if cssColors {
		doc = color.Normalize(doc)
	}

	if err := write(filesystem, output, format, doc, result); err != nil {
		return err
	}

	if !result.Success {
		return fmt.Errorf("resolution failed with %d error(s)", len(result.Errors))
	}
	return nil
}

// runCrossFile resolves a set of files as a project, writing one
// resolved document per input file.
func runCrossFile(filesystem fs.FileSystem, cfg *config.Config, files []string, opts *resolver.Options, outDir string, cssColors bool) error {
	proj := project.New(cfg.BasePath)
	for _, file := range files {
		doc, err := parser.ParseFile(filesystem, file)
		if err != nil {
			return err
		}
		proj.AddFile(file, doc)
	}

	results, cycles := proj.Resolve(opts)
	if len(cycles) > 0 {
		render.CycleReport(os.Stderr, cycles)
		return fmt.Errorf("circular file dependencies")
	}

	failed := 0
	for _, path := range proj.Paths() {
		result := results[path]
		render.Warnings(os.Stderr, result.Warnings)
		render.Errors(os.Stderr, result.Errors)
		if !result.Success {
			failed++
		}

		doc := result.Document
		if cssColors {
			doc = color.Normalize(doc)
		}

		out := ""
		if outDir != "" {
			out = filepath.Join(outDir, filepath.Base(path))
		}
		if err := write(filesystem, out, "json", doc, result); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("resolution failed in %d file(s)", failed)
	}
	return nil
}

// write renders a resolved document to a file or stdout.
func write(filesystem fs.FileSystem, output, format string, doc map[string]any, result *resolver.Result) error {
	switch format {
	case "table", "markdown":
		root, _ := tree.Build(doc)
		rows := render.ComputeRows(root, result)
		if format == "table" {
			render.Table(os.Stdout, rows)
		} else {
			render.Markdown(os.Stdout, rows)
		}
		return nil
	case "json":
		if output == "" {
			return render.JSON(os.Stdout, doc)
		}
		if dir := filepath.Dir(output); dir != "." {
			if err := filesystem.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("error creating output directory: %w", err)
			}
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding %s: %w", output, err)
		}
		return filesystem.WriteFile(output, append(data, '\n'), 0o644)
	default:
		return fmt.Errorf("unknown format %q: expected json, table, or markdown", format)
	}
}
