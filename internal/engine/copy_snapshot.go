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
	"fmt"
	"time"

	"github.com/auroraops/restore-pipeline/internal/classify"
	"github.com/auroraops/restore-pipeline/internal/cloud"
	"github.com/auroraops/restore-pipeline/internal/model"
)

// CopySnapshot implements copy_snapshot. When source and target regions
// match, it records a synthetic success without any cross-region call:
// copy_snapshot and check_copy_status complete without issuing any
// cross-region cloud call.
type CopySnapshot struct {
	Snapshots cloud.SnapshotClient
}

// Act issues (or, idempotently, reuses) the cross-region copy and carries
// forward the target snapshot's identity for check_copy_status.
func (c CopySnapshot) Act(ctx context.Context, rc *RunContext) (Outcome, error) {
	sourceRegion := rc.Config.Get("source_region")
	targetRegion := rc.Config.Get("target_region")
	sourceARN := rc.Prior.GetString("snapshot_arn")
	snapshotName := rc.Prior.GetString("snapshot_name")
	targetName := snapshotName + "-copy"

	if sourceRegion == targetRegion {
		payload := basePayload(rc)
		payload["target_snapshot_name"] = snapshotName
		payload["target_snapshot_arn"] = sourceARN
		payload["copy_status"] = "available"
		return Outcome{
			Payload:     payload,
			AuditStatus: model.AuditSuccess,
			Next:        model.StepCheckCopyStatus,
			Dispatch:    true,
		}, nil
	}

	// Idempotency pre-check: a retried dispatch must not issue a
	// second copy for a target snapshot that already exists.
	existing, found, err := c.Snapshots.DescribeSnapshot(ctx, targetRegion, targetName)
	if err != nil {
		return Outcome{}, classify.New(classify.KindFatalCloud, "checking for existing target snapshot", err)
	}

	var arn, status string
	if found {
		arn, status = existing.ARN, existing.Status
	} else {
		kmsKeyID := rc.Config.Get("kms_key_id")
		info, err := c.Snapshots.CopySnapshot(ctx, sourceRegion, targetRegion, sourceARN, targetName, kmsKeyID)
		if err != nil {
			return Outcome{}, err
		}
		arn, status = info.ARN, info.Status
	}

	payload := basePayload(rc)
	payload["target_snapshot_name"] = targetName
	payload["target_snapshot_arn"] = arn
	payload["copy_status"] = status

	delay := rc.Config.Get("copy_status_retry_delay")
	return Outcome{
		Payload:       payload,
		AuditStatus:   model.AuditSuccess,
		Next:          model.StepCheckCopyStatus,
		Dispatch:      true,
		DispatchDelay: parseSecondsOr(delay, 60*time.Second),
	}, nil
}

// basePayload carries forward the identifiers every downstream step needs,
// regardless of which handler is building the outcome.
func basePayload(rc *RunContext) map[string]any {
	return map[string]any{
		"snapshot_name":     rc.Prior.GetString("snapshot_name"),
		"snapshot_arn":      rc.Prior.GetString("snapshot_arn"),
		"source_region":     rc.Config.Get("source_region"),
		"target_region":     rc.Config.Get("target_region"),
		"source_cluster_id": rc.Config.Get("source_cluster_id"),
		"target_cluster_id": rc.Config.Get("target_cluster_id"),
	}
}

// parseSecondsOr parses raw as a whole number of seconds, falling back to
// fallback when raw is empty or not a valid positive integer.
func parseSecondsOr(raw string, fallback time.Duration) time.Duration {
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}
