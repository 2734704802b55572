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
	"strconv"

	"github.com/auroraops/restore-pipeline/internal/classify"
	"github.com/auroraops/restore-pipeline/internal/cloud"
	"github.com/auroraops/restore-pipeline/internal/model"
)

// CheckRestoreStatus implements check_restore_status: polls the
// restoring cluster until it converges to available (persisting its
// connection details for setup_db_users) or a terminal failure status.
type CheckRestoreStatus struct {
	Clusters cloud.ClusterClient
}

func (c CheckRestoreStatus) Act(ctx context.Context, rc *RunContext) (Outcome, error) {
	targetRegion := rc.Config.Get("target_region")
	targetClusterID := rc.Config.Get("target_cluster_id")

	attempt := 0
	if rc.Prior.Step == model.StepCheckRestoreStatus {
		attempt = rc.Prior.GetInt("attempt")
	}
	maxAttempts, _ := strconv.Atoi(rc.Config.Get("max_restore_attempts"))

	var info *cloud.ClusterInfo
	p := poller{
		describe: func(ctx context.Context) (string, bool, error) {
			i, found, err := c.Clusters.DescribeCluster(ctx, targetRegion, targetClusterID)
			if err != nil || !found {
				return "", found, err
			}
			info = i
			return i.Status, true, nil
		},
		converged:     map[string]bool{"available": true},
		failed:        map[string]bool{"failed": true, "incompatible-restore": true},
		notFoundMeans: pollWaiting,
		attempt:       attempt,
		maxAttempts:   maxAttempts,
	}

	outcome, status, err := p.poll(ctx)
	payload := forwardPayload(rc)

	switch outcome {
	case pollConverged:
		payload["restore_status"] = "available"
		payload["cluster_endpoint"] = info.Endpoint
		payload["cluster_port"] = info.Port
		payload["engine"] = info.Engine
		payload["engine_version"] = info.EngineVersion
		return Outcome{
			Payload:     payload,
			AuditStatus: model.AuditSuccess,
			Next:        model.StepSetupDBUsers,
			Dispatch:    true,
		}, nil
	case pollFailed:
		if status != "" {
			return Outcome{}, classify.New(classify.KindFatalCloud,
				fmt.Sprintf("Cluster restore failed with status: %s", status), nil)
		}
		return Outcome{}, err
	default:
		payload["restore_status"] = status
		delay := parseSecondsOr(rc.Config.Get("restore_check_interval"), defaultPollDelay)
		return waitOutcome(model.StepCheckRestoreStatus, payload, attempt, delay), nil
	}
}
