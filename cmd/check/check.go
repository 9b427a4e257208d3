/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package check provides the check command for kesher.
package check

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/kesher/config"
	"bennypowers.dev/kesher/fs"
	"bennypowers.dev/kesher/internal/render"
	"bennypowers.dev/kesher/parser"
	"bennypowers.dev/kesher/project"
	"bennypowers.dev/kesher/resolver"
	"bennypowers.dev/kesher/schema"
	"bennypowers.dev/kesher/tree"
	"bennypowers.dev/kesher/validator"
)

// Cmd is the check cobra command.
var Cmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Validate token files and report reference cycles",
	Long: `Validate design token files for structural problems and report
reference cycles, both within each file and across files.`,
	Args: cobra.ArbitraryArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().Bool("strict", false, "Fail on warnings")
	Cmd.Flags().Bool("quiet", false, "Only output errors")
}

func run(cmd *cobra.Command, args []string) error {
	strict, _ := cmd.Flags().GetBool("strict")
	quiet, _ := cmd.Flags().GetBool("quiet")

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

	var forced schema.Version
	if schemaFlag := viper.GetString("schema"); schemaFlag != "" {
		var err error
		forced, err = schema.FromString(schemaFlag)
		if err != nil {
			return fmt.Errorf("invalid schema version: %s", schemaFlag)
		}
	} else {
		forced = cfg.SchemaVersion()
	}

	proj := project.New(cfg.BasePath)
	hasErrors := false
	hasWarnings := false

	for _, file := range files {
		if !quiet {
			fmt.Printf("Checking %s...\n", file)
		}

		doc, err := parser.ParseFile(filesystem, file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			hasErrors = true
			continue
		}

		version := forced
		if version == schema.Unknown {
			version = schema.DetectVersion(doc, schema.Unknown)
		}

		for _, verr := range validator.ValidateWithPath(doc, version, file) {
			fmt.Fprintf(os.Stderr, "error: %s\n", verr.Error())
			hasErrors = true
		}

		root, warnings := tree.Build(doc)
		if len(warnings) > 0 {
			hasWarnings = true
			render.Warnings(os.Stderr, warnings)
		}

		detection := resolver.DetectCycles(root)
		if detection.HasCycles {
			fmt.Fprintf(os.Stderr, "%s:\n", file)
			render.CycleReport(os.Stderr, detection.Cycles)
			hasErrors = true
			continue
		}

		proj.AddFile(file, doc)

		if !quiet {
			fmt.Printf("  %d tokens, schema: %s\n", len(root.AllTokens()), version)
		}
	}

	// Cross-file cycles only matter once per-file checks pass
	if !hasErrors && len(proj.Paths()) > 1 {
		proj.BuildCrossFileReferences()
		if cycles := proj.DetectCircularDependencies(); len(cycles) > 0 {
			render.CycleReport(os.Stderr, cycles)
			hasErrors = true
		}
	}

	if hasErrors {
		return fmt.Errorf("check failed")
	}
	if strict && hasWarnings {
		return fmt.Errorf("check failed: warnings with --strict")
	}

	if !quiet {
		fmt.Println("All files valid.")
	}
	return nil
}
