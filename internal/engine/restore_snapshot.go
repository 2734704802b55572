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
	"errors"
	"fmt"
	"strconv"

	"github.com/auroraops/restore-pipeline/internal/classify"
	"github.com/auroraops/restore-pipeline/internal/cloud"
	"github.com/auroraops/restore-pipeline/internal/model"
	"github.com/auroraops/restore-pipeline/internal/validate"
)

// RestoreSnapshot implements restore_snapshot. Restoring onto an
// already-existing target cluster is idempotent success, not an error,
// using classify's AlreadyExists kind: the branch terminates with
// restore_status=already_exists and no restore call is issued.
type RestoreSnapshot struct {
	Clusters  cloud.ClusterClient
	Snapshots cloud.SnapshotClient
}

func (r RestoreSnapshot) Act(ctx context.Context, rc *RunContext) (Outcome, error) {
	targetRegion := rc.Config.Get("target_region")
	targetClusterID := rc.Config.Get("target_cluster_id")
	targetSnapshotName := rc.Prior.GetString("target_snapshot_name")

	if _, found, err := r.Clusters.DescribeCluster(ctx, targetRegion, targetClusterID); err != nil {
		return Outcome{}, err
	} else if found {
		payload := forwardPayload(rc)
		payload["restore_status"] = "already_exists"
		return Outcome{
			Payload:     payload,
			AuditStatus: model.AuditSuccess,
			// No Next/Dispatch: already-exists terminates the branch.
		}, nil
	}

	snapshot, found, err := r.Snapshots.DescribeSnapshot(ctx, targetRegion, targetSnapshotName)
	if err != nil {
		return Outcome{}, classify.New(classify.KindFatalCloud, "describing copied snapshot", err)
	}
	if !found {
		return Outcome{}, classify.New(classify.KindFatalCloud, "locating copied snapshot for restore", fmt.Errorf("snapshot %q not found in %s", targetSnapshotName, targetRegion))
	}
	if snapshot.Status != "available" {
		return Outcome{}, classify.New(classify.KindFatalCloud, "restoring from snapshot", fmt.Errorf("snapshot %q is not available (status: %s)", targetSnapshotName, snapshot.Status))
	}

	vpcSecurityGroupIDs := rc.Config.GetCSV("vpc_security_group_ids")
	for _, sg := range vpcSecurityGroupIDs {
		if err := validate.SecurityGroupID(sg); err != nil {
			return Outcome{}, err
		}
	}

	port, _ := strconv.Atoi(rc.Config.Get("port"))
	backupRetention, _ := strconv.Atoi(rc.Config.Get("backup_retention_period"))

	params := cloud.RestoreParams{
		TargetClusterID:                 targetClusterID,
		TargetSnapshotName:              targetSnapshotName,
		Engine:                          snapshot.Engine,
		DBSubnetGroupName:               rc.Config.Get("db_subnet_group_name"),
		VpcSecurityGroupIds:             vpcSecurityGroupIDs,
		Port:                            port,
		AvailabilityZones:               rc.Config.GetCSV("availability_zones"),
		EnableIAMDatabaseAuthentication: rc.Config.GetBool("enable_iam_database_authentication"),
		StorageEncrypted:                snapshot.Encrypted || rc.Config.GetBool("storage_encrypted"),
		KmsKeyID:                        rc.Config.Get("kms_key_id"),
		DeletionProtection:              rc.Config.GetBool("deletion_protection"),
		BackupRetentionPeriod:           backupRetention,
		DBClusterParameterGroupName:     rc.Config.Get("db_cluster_parameter_group_name"),
		Environment:                     rc.Config.Get("environment"),
		OperationID:                     rc.OperationID,
	}

	if err := r.Clusters.RestoreFromSnapshot(ctx, targetRegion, params); err != nil {
		if errors.Is(err, classify.AlreadyExists) {
			payload := forwardPayload(rc)
			payload["restore_status"] = "already_exists"
			return Outcome{Payload: payload, AuditStatus: model.AuditSuccess}, nil
		}
		return Outcome{}, err
	}

	payload := forwardPayload(rc)
	payload["restore_status"] = "creating"
	return Outcome{
		Payload:     payload,
		AuditStatus: model.AuditSuccess,
		Next:        model.StepCheckRestoreStatus,
		Dispatch:    true,
	}, nil
}
