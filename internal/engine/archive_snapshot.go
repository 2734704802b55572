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

	"github.com/auroraops/restore-pipeline/internal/classify"
	"github.com/auroraops/restore-pipeline/internal/cloud"
	"github.com/auroraops/restore-pipeline/internal/model"
)

// ArchiveSnapshot implements archive_snapshot: deletes the copied snapshot
// once the restore is verified, or records a skip if it is already gone.
// Idempotent: a second invocation records skipped.
type ArchiveSnapshot struct {
	Snapshots cloud.SnapshotClient
}

func (a ArchiveSnapshot) Act(ctx context.Context, rc *RunContext) (Outcome, error) {
	if !rc.Config.GetBool("archive_snapshot") {
		payload := forwardPayload(rc)
		payload["archive_status"] = "skipped"
		return Outcome{
			Payload:     payload,
			AuditStatus: model.AuditSkipped,
			Next:        model.StepSNSNotification,
			Dispatch:    true,
		}, nil
	}

	targetRegion := rc.Config.Get("target_region")
	targetSnapshotName := rc.Prior.GetString("target_snapshot_name")

	_, found, err := a.Snapshots.DescribeSnapshot(ctx, targetRegion, targetSnapshotName)
	if err != nil {
		return Outcome{}, classify.New(classify.KindFatalCloud, "locating copied snapshot to archive", err)
	}

	payload := forwardPayload(rc)
	if !found {
		payload["archive_status"] = "skipped"
	} else {
		if err := a.Snapshots.DeleteSnapshot(ctx, targetRegion, targetSnapshotName); err != nil {
			return Outcome{}, err
		}
		payload["archive_status"] = "deleted"
	}

	return Outcome{
		Payload:     payload,
		AuditStatus: model.AuditSuccess,
		Next:        model.StepSNSNotification,
		Dispatch:    true,
	}, nil
}
