// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package engine

import (
	"context"
	"strconv"

	"github.com/auroraops/restore-pipeline/internal/cloud"
	"github.com/auroraops/restore-pipeline/internal/model"
)

// CheckCopyStatus implements check_copy_status: a polling state machine
// over the copied snapshot's status. When source_region equals
// target_region it bypasses the lookup entirely and treats the snapshot as
// already available, matching copy_snapshot's same-region bypass.
type CheckCopyStatus struct {
	Snapshots cloud.SnapshotClient
}

func (c CheckCopyStatus) Act(ctx context.Context, rc *RunContext) (Outcome, error) {
	sourceRegion := rc.Prior.GetString("source_region")
	targetRegion := rc.Prior.GetString("target_region")
	targetSnapshotName := rc.Prior.GetString("target_snapshot_name")

	if sourceRegion == targetRegion {
		payload := forwardPayload(rc)
		payload["copy_status"] = "available"
		return Outcome{
			Payload:     payload,
			AuditStatus: model.AuditSuccess,
			Next:        model.StepDeleteRDS,
			Dispatch:    true,
		}, nil
	}

	attempt := 0
	if rc.Prior.Step == model.StepCheckCopyStatus {
		attempt = rc.Prior.GetInt("attempt")
	}
	maxAttempts, _ := strconv.Atoi(rc.Config.Get("max_copy_attempts"))

	p := poller{
		describe: func(ctx context.Context) (string, bool, error) {
			info, found, err := c.Snapshots.DescribeSnapshot(ctx, targetRegion, targetSnapshotName)
			if err != nil || !found {
				return "", found, err
			}
			return info.Status, true, nil
		},
		converged:     map[string]bool{"available": true},
		failed:        map[string]bool{"failed": true},
		notFoundMeans: pollWaiting,
		attempt:       attempt,
		maxAttempts:   maxAttempts,
	}

	outcome, status, err := p.poll(ctx)
	payload := forwardPayload(rc)
	payload["copy_status"] = status

	switch outcome {
	case pollConverged:
		payload["copy_status"] = "available"
		return Outcome{
			Payload:     payload,
			AuditStatus: model.AuditSuccess,
			Next:        model.StepDeleteRDS,
			Dispatch:    true,
		}, nil
	case pollFailed:
		return Outcome{}, err
	default:
		delay := parseSecondsOr(rc.Config.Get("copy_status_retry_delay"), defaultPollDelay)
		return waitOutcome(model.StepCheckCopyStatus, payload, attempt, delay), nil
	}
}

// forwardPayload carries forward every identifier check_copy_status's
// successor (delete_rds) and later steps need.
func forwardPayload(rc *RunContext) map[string]any {
	return map[string]any{
		"snapshot_name":        rc.Prior.GetString("snapshot_name"),
		"snapshot_arn":         rc.Prior.GetString("snapshot_arn"),
		"target_snapshot_name": rc.Prior.GetString("target_snapshot_name"),
		"target_snapshot_arn":  rc.Prior.GetString("target_snapshot_arn"),
		"source_region":        rc.Prior.GetString("source_region"),
		"target_region":        rc.Prior.GetString("target_region"),
		"source_cluster_id":    rc.Prior.GetString("source_cluster_id"),
		"target_cluster_id":    rc.Prior.GetString("target_cluster_id"),
	}
}
