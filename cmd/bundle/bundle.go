/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package bundle provides the bundle command for kesher.
package bundle

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
	"bennypowers.dev/kesher/manifest"
	"bennypowers.dev/kesher/merge"
	"bennypowers.dev/kesher/parser"
	"bennypowers.dev/kesher/resolver"
	"bennypowers.dev/kesher/schema"
)

// Cmd is the bundle cobra command.
var Cmd = &cobra.Command{
	Use:   "bundle [manifest]",
	Short: "Build resolved bundles from a manifest",
	Long: `Build one resolved token bundle per manifest permutation.

A manifest names base token sets and modifiers (like theme or
density). Every combination of modifier values becomes a permutation:
its files are merged in order and resolved, and the result is written
to <out-dir>/<permutation>.json.

Examples:
  # Bundle every permutation into dist/
  kesher bundle tokens.manifest.json --out-dir dist

  # Use the manifest from the config file
  kesher bundle`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().String("out-dir", "dist", "Output directory for resolved bundles")
	Cmd.Flags().Bool("partial", false, "Succeed even when some references are missing")
	Cmd.Flags().Bool("css-colors", false, "Normalize color token values to CSS strings")
}

func run(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("out-dir")
	partial, _ := cmd.Flags().GetBool("partial")
	cssColors, _ := cmd.Flags().GetBool("css-colors")

	filesystem := fs.NewOSFileSystem()
	cfg := config.LoadOrDefault(filesystem, ".")

	manifestPath := cfg.Manifest
	if len(args) > 0 {
		manifestPath = args[0]
	}
	if manifestPath == "" {
		return fmt.Errorf("%w: pass a manifest path or set manifest in config", schema.ErrMissingManifest)
	}

	m, err := manifest.ParseFile(filesystem, manifestPath)
	if err != nil {
		return err
	}

	opts := resolver.DefaultOptions()
	opts.Partial = partial
	if depth := viper.GetInt("max-depth"); depth > 0 {
		opts.MaxDepth = depth
	} else if cfg.MaxDepth > 0 {
		opts.MaxDepth = cfg.MaxDepth
	}

	if err := filesystem.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	// Files repeat across permutations; parse each once
	baseDir := filepath.Dir(manifestPath)
	docs := map[string]map[string]any{}
	parsed := func(path string) (map[string]any, error) {
		full := path
		if !filepath.IsAbs(full) {
			full = filepath.Join(baseDir, path)
		}
		if doc, ok := docs[full]; ok {
			return doc, nil
		}
		doc, err := parser.ParseFile(filesystem, full)
		if err != nil {
			return nil, err
		}
		docs[full] = doc
		return doc, nil
	}

	failed := 0
	for _, perm := range m.Permutations() {
		layers := make([]map[string]any, 0, len(perm.Files))
		for _, file := range perm.Files {
			doc, err := parsed(file)
			if err != nil {
				return err
			}
			layers = append(layers, doc)
		}

		result := resolver.Resolve(merge.All(layers...), opts)
		render.Warnings(os.Stderr, result.Warnings)
		render.Errors(os.Stderr, result.Errors)
		if !result.Success {
			failed++
		}

		doc := result.Document
		if cssColors {
			doc = color.Normalize(doc)
		}

		out := filepath.Join(outDir, perm.Name()+".json")
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding %s: %w", out, err)
		}
		if err := filesystem.WriteFile(out, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("error writing %s: %w", out, err)
		}
		fmt.Printf("wrote %s (%d files)\n", out, len(perm.Files))
	}

	if failed > 0 {
		return fmt.Errorf("resolution failed in %d permutation(s)", failed)
	}
	return nil
}
