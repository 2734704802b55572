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
	"github.com/auroraops/restore-pipeline/internal/cloudaws"
	"github.com/auroraops/restore-pipeline/internal/model"
)

// DeleteRDS implements delete_rds: tears down a stale target
// cluster so restore_snapshot can create a fresh one, tolerating absence
// or a non-deletable status as a successful skip. Idempotent: a second
// invocation still dispatches restore_snapshot.
type DeleteRDS struct {
	Clusters cloud.ClusterClient
}

func (d DeleteRDS) Act(ctx context.Context, rc *RunContext) (Outcome, error) {
	targetRegion := rc.Config.Get("target_region")
	targetClusterID := rc.Config.Get("target_cluster_id")

	info, found, err := d.Clusters.DescribeCluster(ctx, targetRegion, targetClusterID)
	if err != nil {
		return Outcome{}, classify.New(classify.KindFatalCloud, "describing target cluster", err)
	}

	payload := forwardPayload(rc)

	if !found || !cloudaws.IsDeletable(info.Status) {
		payload["delete_status"] = "skipped"
		return Outcome{
			Payload:     payload,
			AuditStatus: model.AuditSkipped,
			Next:        model.StepRestoreSnapshot,
			Dispatch:    true,
		}, nil
	}

	skipFinal := rc.Config.GetBool("skip_final_snapshot")
	if err := d.Clusters.DeleteCluster(ctx, targetRegion, targetClusterID, skipFinal); err != nil {
		return Outcome{}, err
	}

	payload["delete_status"] = "deleting"
	return Outcome{
		Payload:     payload,
		AuditStatus: model.AuditSuccess,
		Next:        model.StepCheckDeleteStatus,
		Dispatch:    true,
	}, nil
}
