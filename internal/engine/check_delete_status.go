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

	"github.com/auroraops/restore-pipeline/internal/cloud"
	"github.com/auroraops/restore-pipeline/internal/model"
)

// CheckDeleteStatus implements check_delete_status: the cluster's
// disappearance (not-found) is the terminal success condition, unlike
// check_copy_status/check_restore_status where not-found means
// still-converging.
type CheckDeleteStatus struct {
	Clusters cloud.ClusterClient
}

func (c CheckDeleteStatus) Act(ctx context.Context, rc *RunContext) (Outcome, error) {
	targetRegion := rc.Config.Get("target_region")
	targetClusterID := rc.Config.Get("target_cluster_id")
	payload := forwardPayload(rc)

	_, found, err := c.Clusters.DescribeCluster(ctx, targetRegion, targetClusterID)
	if err != nil {
		return Outcome{}, err
	}
	if !found {
		payload["delete_status"] = "deleted"
		return Outcome{
			Payload:     payload,
			AuditStatus: model.AuditSuccess,
			Next:        model.StepRestoreSnapshot,
			Dispatch:    true,
		}, nil
	}

	payload["delete_status"] = "deleting"
	attempt := 0
	if rc.Prior.Step == model.StepCheckDeleteStatus {
		attempt = rc.Prior.GetInt("attempt")
	}
	delay := parseSecondsOr(rc.Config.Get("delete_status_retry_delay"), defaultPollDelay)
	return waitOutcome(model.StepCheckDeleteStatus, payload, attempt, delay), nil
}
