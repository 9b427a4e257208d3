/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package merge provides the merge command for kesher.
package merge

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bennypowers.dev/kesher/config"
	"bennypowers.dev/kesher/fs"
	"bennypowers.dev/kesher/internal/render"
	mergelib "bennypowers.dev/kesher/merge"
	"bennypowers.dev/kesher/parser"
)

// Cmd is the merge cobra command.
var Cmd = &cobra.Command{
	Use:   "merge [files...]",
	Short: "Merge token files in layer order",
	Long: `Merge design token files into one document. Later files
override earlier ones: groups and composite values merge key-wise,
scalar values are replaced wholesale.

With --safe, overridden values are reported as conflicts.`,
	Args: cobra.ArbitraryArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	Cmd.Flags().Bool("safe", false, "Report overridden values as conflicts")
	Cmd.Flags().Bool("strict", false, "Fail when --safe finds conflicts")
}

func run(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	safe, _ := cmd.Flags().GetBool("safe")
	strict, _ := cmd.Flags().GetBool("strict")

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
	if len(files) < 2 {
		return fmt.Errorf("merge needs at least two files")
	}

	docs := make([]map[string]any, 0, len(files))
	for _, file := range files {
		doc, err := parser.ParseFile(filesystem, file)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	var merged map[string]any
	conflictCount := 0
	if safe {
		merged = docs[0]
		for _, overlay := range docs[1:] {
			var conflicts []mergelib.Conflict
			merged, conflicts = mergelib.Safe(merged, overlay)
			render.ConflictReport(os.Stderr, conflicts)
			conflictCount += len(conflicts)
		}
	} else {
		merged = mergelib.All(docs...)
	}

	if output == "" {
		if err := render.JSON(os.Stdout, merged); err != nil {
			return err
		}
	} else {
		data, err := json.MarshalIndent(merged, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding %s: %w", output, err)
		}
		if err := filesystem.WriteFile(output, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("error writing %s: %w", output, err)
		}
	}

	if strict && conflictCount > 0 {
		return fmt.Errorf("merge found %d conflict(s)", conflictCount)
	}
	return nil
}
