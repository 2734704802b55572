// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auroraops/restore-pipeline/internal/engine"
	"github.com/auroraops/restore-pipeline/internal/logging"
)

// NewCleanupCommand returns the `aurora-restore cleanup` command: the sole
// entry point for the administrative cleanup operation, operator-triggered
// only, never reached through the chain.
func NewCleanupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Tear down the snapshot, state rows, and logs for one operation",
		RunE:  runCleanup,
	}

	cmd.Flags().String("operation-id", "", "operation to clean up (required)")
	cmd.Flags().String("target-region", "", "region the target snapshot lives in")
	cmd.Flags().String("snapshot-name", "", "copied snapshot to delete")
	cmd.Flags().Bool("delete-snapshot", false, "delete the copied snapshot")
	cmd.Flags().Bool("delete-state", false, "delete all state rows for the operation")
	cmd.Flags().String("log-prefix", "", "log object prefix to delete, if a log store is configured")
	_ = cmd.MarkFlagRequired("operation-id")

	return cmd
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	flags := ResolveFlags(cmd)
	log := logging.NewConsoleLogger(flags.Verbose)

	operationID, _ := cmd.Flags().GetString("operation-id")
	targetRegion, _ := cmd.Flags().GetString("target-region")
	snapshotName, _ := cmd.Flags().GetString("snapshot-name")
	deleteSnapshot, _ := cmd.Flags().GetBool("delete-snapshot")
	deleteState, _ := cmd.Flags().GetBool("delete-state")
	logPrefix, _ := cmd.Flags().GetString("log-prefix")

	dep, err := buildDeployment(ctx, flags, log)
	if err != nil {
		return classifyCLIError(err)
	}
	defer dep.Close()

	result := dep.buildCleanup().Run(ctx, engine.CleanupRequest{
		OperationID:    operationID,
		TargetRegion:   targetRegion,
		SnapshotName:   snapshotName,
		DeleteSnapshot: deleteSnapshot,
		DeleteState:    deleteState,
		LogPrefix:      logPrefix,
	})

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cleanup result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
