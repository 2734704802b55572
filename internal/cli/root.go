// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package cli wires together the aurora-restore root Cobra command and its
// persistent flags, following the teacher's internal/cli shape.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/auroraops/restore-pipeline/internal/cli/commands"
)

// NewRootCommand constructs the aurora-restore root Cobra command, wiring
// invoke, replay, serve, and cleanup.
func NewRootCommand() *cobra.Command {
	version := os.Getenv("AURORA_RESTORE_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "aurora-restore",
		Short:         "aurora-restore – cross-region Aurora snapshot restore orchestration",
		Long:          "aurora-restore drives the durable, resumable pipeline that restores an Aurora cluster snapshot into another region.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags, lexicographic by .Use for deterministic help output.
	cmd.PersistentFlags().String("audit-table", "", "audit table name (default aurora-restore-audit)")
	cmd.PersistentFlags().StringP("config", "c", "", "path to an optional YAML defaults file")
	cmd.PersistentFlags().String("database-url", "", "Postgres connection string backing state/audit")
	cmd.PersistentFlags().StringP("environment", "e", "", "target environment (dev, staging, prod)")
	cmd.PersistentFlags().String("metrics-addr", "", "Prometheus /metrics listen address (serve only)")
	cmd.PersistentFlags().String("param-prefix", "", "SSM parameter store prefix")
	cmd.PersistentFlags().String("queue-url", "", "SQS queue URL for step dispatch")
	cmd.PersistentFlags().String("state-table", "", "state table name (default aurora-restore-state)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of aurora-restore",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "aurora-restore version %s\n", version)
		},
	})

	cmd.AddCommand(commands.NewCleanupCommand())
	cmd.AddCommand(commands.NewInvokeCommand())
	cmd.AddCommand(commands.NewReplayCommand())
	cmd.AddCommand(commands.NewServeCommand())

	return cmd
}
