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
	"github.com/auroraops/restore-pipeline/internal/validate"
)

const dateLayout = "2006-01-02"

// SnapshotCheck implements snapshot_check, the chain's entry step. It is
// the only handler that tolerates an absent prior StepRecord.
type SnapshotCheck struct {
	Snapshots cloud.SnapshotClient
}

// Act locates the dated source snapshot and, on success, carries forward
// everything copy_snapshot needs. The snapshot name includes
// source_cluster_id so one pipeline deployment can restore snapshots from
// more than one source cluster without a naming collision.
func (s SnapshotCheck) Act(ctx context.Context, rc *RunContext) (Outcome, error) {
	date, err := resolveSnapshotDate(rc)
	if err != nil {
		return Outcome{}, err
	}

	sourceRegion := rc.Config.Get("source_region")
	targetRegion := rc.Config.Get("target_region")
	sourceClusterID := rc.Config.Get("source_cluster_id")
	targetClusterID := rc.Config.Get("target_cluster_id")
	prefix := rc.Config.Get("snapshot_prefix")

	if err := validate.Region(sourceRegion); err != nil {
		return Outcome{}, err
	}
	if err := validate.Region(targetRegion); err != nil {
		return Outcome{}, err
	}
	if err := validate.ClusterID(sourceClusterID); err != nil {
		return Outcome{}, err
	}
	if err := validate.ClusterID(targetClusterID); err != nil {
		return Outcome{}, err
	}

	snapshotName := fmt.Sprintf("%s-%s-%s", prefix, sourceClusterID, date)
	if err := validate.SnapshotID(snapshotName); err != nil {
		return Outcome{}, err
	}

	info, found, err := s.Snapshots.FindSnapshot(ctx, sourceRegion, snapshotName, cloud.DefaultSnapshotScopes)
	if err != nil {
		return Outcome{}, classify.New(classify.KindFatalCloud, "looking up snapshot", err)
	}
	if !found {
		return Outcome{}, classify.New(classify.KindNotFound, "snapshot not found", fmt.Errorf("no snapshot named %q found in %s across shared/manual/automated scopes", snapshotName, sourceRegion))
	}

	payload := map[string]any{
		"snapshot_name":     info.Name,
		"snapshot_arn":      info.ARN,
		"source_region":     sourceRegion,
		"target_region":     targetRegion,
		"source_cluster_id": sourceClusterID,
		"target_cluster_id": targetClusterID,
		"snapshot_status":   info.Status,
		"encrypted":         info.Encrypted,
		"size":              info.SizeGB,
		"created":           info.Created.UTC().Format(time.RFC3339),
	}

	return Outcome{
		Payload:     payload,
		AuditStatus: model.AuditSuccess,
		Next:        model.StepCopySnapshot,
		Dispatch:    true,
	}, nil
}

// resolveSnapshotDate reads the optional ISO date from the event, or
// defaults to yesterday in UTC, validating the format strictly enough to
// reject malformed dates like "2024-13-40".
func resolveSnapshotDate(rc *RunContext) (string, error) {
	raw := rc.EventString("date")
	if raw == "" {
		return rc.Now.UTC().AddDate(0, 0, -1).Format(dateLayout), nil
	}
	if _, err := time.Parse(dateLayout, raw); err != nil {
		return "", classify.New(classify.KindValidation, "parsing date", fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", raw, err))
	}
	return raw, nil
}
