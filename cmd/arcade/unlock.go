// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	authpg "github.com/arcadelabs/arcade/internal/auth/postgres"
	"github.com/arcadelabs/arcade/internal/config"
	"github.com/arcadelabs/arcade/internal/store"
)

// NewUnlockCmd creates the unlock subcommand. It is the operator-side
// counterpart of the admin unlock endpoint, for when every admin account
// is itself locked out.
func NewUnlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <username>",
		Short: "Reset a user's lockout state",
		Long: `Clear the failed-attempt counter and locked flag for a user so
they can sign in again.`,
		Args: cobra.ExactArgs(1),
		RunE: runUnlock,
	}
}

func runUnlock(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	defer pool.Close()

	username := args[0]
	if err := authpg.NewUserRepository(pool).Unlock(ctx, username); err != nil {
		return oops.Code("UNLOCK_FAILED").With("username", username).Wrap(err)
	}

	cmd.Printf("Unlocked %s\n", username)
	return nil
}
