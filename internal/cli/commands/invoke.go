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

	"github.com/auroraops/restore-pipeline/internal/dispatch"
	"github.com/auroraops/restore-pipeline/internal/logging"
	"github.com/auroraops/restore-pipeline/internal/model"
)

// NewInvokeCommand returns the `aurora-restore invoke` command: run exactly
// one step handler against an event and print the response envelope,
// without dispatching the next step. Used for manual replay of a single
// failed step, since delivery is at-least-once and handlers must be
// idempotent.
func NewInvokeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Run a single pipeline step against an event",
		RunE:  runInvoke,
	}

	cmd.Flags().String("step", "", "step name, e.g. snapshot_check (required)")
	cmd.Flags().String("event", "{}", "JSON event payload")
	_ = cmd.MarkFlagRequired("step")

	return cmd
}

func runInvoke(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	flags := ResolveFlags(cmd)
	log := logging.NewConsoleLogger(flags.Verbose)

	stepName, _ := cmd.Flags().GetString("step")
	eventRaw, _ := cmd.Flags().GetString("event")

	var event map[string]any
	if err := json.Unmarshal([]byte(eventRaw), &event); err != nil {
		return fmt.Errorf("parsing --event: %w", err)
	}
	if event == nil {
		event = map[string]any{}
	}
	if _, ok := event["environment"]; !ok {
		event["environment"] = flags.Environment
	}

	dep, err := buildDeployment(ctx, flags, log)
	if err != nil {
		return classifyCLIError(err)
	}
	defer dep.Close()

	local := dispatch.NewLocal(1)
	defer local.Close()
	eng := dep.buildEngine(local)

	resp, err := eng.Execute(ctx, model.Step(stepName), event)
	if err != nil {
		return classifyCLIError(err)
	}

	out, err := json.MarshalIndent(resp.Body, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "status %d\n%s\n", resp.StatusCode, out)
	return nil
}
