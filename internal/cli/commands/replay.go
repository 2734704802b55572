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
	"time"

	"github.com/spf13/cobra"

	"github.com/auroraops/restore-pipeline/internal/dispatch"
	"github.com/auroraops/restore-pipeline/internal/logging"
	"github.com/auroraops/restore-pipeline/internal/model"
)

// NewReplayCommand returns the `aurora-restore replay` command: drive one
// operation to completion in-process, using the Local dispatcher to carry
// a step's Next/DispatchDelay forward instead of requiring a running serve
// process. Intended for local development and manual recovery.
func NewReplayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Drive one operation through the chain in-process",
		RunE:  runReplay,
	}

	cmd.Flags().String("step", string(model.StepSnapshotCheck), "step to start from")
	cmd.Flags().String("event", "{}", "JSON event payload for the starting step")
	cmd.Flags().Duration("idle-timeout", 2*time.Minute, "stop waiting for the next dispatched step after this much idle time")

	return cmd
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	flags := ResolveFlags(cmd)
	log := logging.NewConsoleLogger(flags.Verbose)

	stepName, _ := cmd.Flags().GetString("step")
	eventRaw, _ := cmd.Flags().GetString("event")
	idleTimeout, _ := cmd.Flags().GetDuration("idle-timeout")

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

	local := dispatch.NewLocal(4)
	defer local.Close()
	eng := dep.buildEngine(local)

	step := model.Step(stepName)
	for {
		resp, err := eng.Execute(ctx, step, event)
		if err != nil {
			return classifyCLIError(err)
		}
		out, _ := json.Marshal(resp.Body)
		log.Info("step completed", logging.NewField("step", string(step)), logging.NewField("status", resp.StatusCode), logging.NewField("body", string(out)))

		if resp.Body["success"] == false {
			return fmt.Errorf("operation terminated: %v", resp.Body["message"])
		}

		select {
		case job, ok := <-local.Jobs():
			if !ok {
				return nil
			}
			step = job.Step
			event = job.Payload
		case <-time.After(idleTimeout):
			log.Info("no further step dispatched within idle-timeout; operation is terminal or still waiting out-of-process")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
