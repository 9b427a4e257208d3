/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package cmd provides CLI commands for kesher.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/kesher/cmd/bundle"
	"bennypowers.dev/kesher/cmd/check"
	mergecmd "bennypowers.dev/kesher/cmd/merge"
	"bennypowers.dev/kesher/cmd/order"
	"bennypowers.dev/kesher/cmd/resolve"
	"bennypowers.dev/kesher/cmd/version"
)

var rootCmd = &cobra.Command{
	Use:   "kesher",
	Short: "Resolve references across design token files",
	Long:  `kesher resolves symbolic references in design token files, defined by the Design Tokens Community Group specification: it merges layered files, detects reference cycles, and emits resolved bundles.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("schema", "s", "", "Force schema version (draft, v2025_10)")
	rootCmd.PersistentFlags().Int("max-depth", 0, "Maximum reference chain depth (default 10)")

	// Flags may also come from KESHER_* environment variables
	viper.SetEnvPrefix("kesher")
	viper.AutomaticEnv()
	cobra.CheckErr(viper.BindPFlag("schema", rootCmd.PersistentFlags().Lookup("schema")))
	cobra.CheckErr(viper.BindPFlag("max-depth", rootCmd.PersistentFlags().Lookup("max-depth")))

	rootCmd.AddCommand(resolve.Cmd)
	rootCmd.AddCommand(check.Cmd)
	rootCmd.AddCommand(mergecmd.Cmd)
	rootCmd.AddCommand(order.Cmd)
	rootCmd.AddCommand(bundle.Cmd)
	rootCmd.AddCommand(version.Cmd)
}
