// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Arcade CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arcade",
		Short: "Arcade - a metaverse platform core",
		Long: `Arcade is a metaverse platform core providing identity, sessions,
element and avatar catalogs, and user-owned spaces with placed elements.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewUnlockCmd())

	return cmd
}
