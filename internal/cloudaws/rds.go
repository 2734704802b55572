// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package cloudaws

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/aws/smithy-go"

	"github.com/auroraops/restore-pipeline/internal/classify"
	"github.com/auroraops/restore-pipeline/internal/cloud"
	"github.com/auroraops/restore-pipeline/internal/retry"
)

// RDS implements cloud.SnapshotClient and cloud.ClusterClient against
// Amazon RDS/Aurora, one rds.Client per region via the shared
// ClientFactory.
type RDS struct {
	Factory *ClientFactory
}

// NewRDS constructs an RDS adapter sharing factory with any other
// cloudaws collaborator constructed for the same invocation.
func NewRDS(factory *ClientFactory) *RDS {
	return &RDS{Factory: factory}
}

var scopeToSnapshotType = map[cloud.SnapshotScope]types.SnapshotType{
	cloud.ScopeShared:    types.SnapshotTypeShared,
	cloud.ScopeManual:    types.SnapshotTypeManual,
	cloud.ScopeAutomated: types.SnapshotTypeAutomated,
}

// FindSnapshot searches scopes in order, returning the first match.
func (r *RDS) FindSnapshot(ctx context.Context, region, name string, scopes []cloud.SnapshotScope) (*cloud.SnapshotInfo, bool, error) {
	for _, scope := range scopes {
		info, found, err := r.describeWithType(ctx, region, name, scopeToSnapshotType[scope])
		if err != nil {
			return nil, false, err
		}
		if found {
			return info, true, nil
		}
	}
	return nil, false, nil
}

// DescribeSnapshot looks up a snapshot by name without restricting by
// scope (used for copy-status polling).
func (r *RDS) DescribeSnapshot(ctx context.Context, region, name string) (*cloud.SnapshotInfo, bool, error) {
	return r.describeWithType(ctx, region, name, "")
}

func (r *RDS) describeWithType(ctx context.Context, region, name string, snapshotType types.SnapshotType) (*cloud.SnapshotInfo, bool, error) {
	client, err := r.Factory.rdsClient(ctx, region)
	if err != nil {
		return nil, false, classify.New(classify.KindFatalCloud, "loading rds client", err)
	}

	input := &rds.DescribeDBClusterSnapshotsInput{
		DBClusterSnapshotIdentifier: aws.String(name),
	}
	if snapshotType != "" {
		input.SnapshotType = aws.String(string(snapshotType))
	}

	out, err := retry.Cloud(ctx, func(callCtx context.Context) (*rds.DescribeDBClusterSnapshotsOutput, error) {
		callCtx, cancel := context.WithTimeout(callCtx, describeTimeout*time.Second)
		defer cancel()
		out, err := client.DescribeDBClusterSnapshots(callCtx, input)
		if err != nil {
			return nil, classifyRDSError(err, "describing snapshot")
		}
		return out, nil
	})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(out.DBClusterSnapshots) == 0 {
		return nil, false, nil
	}

	snap := out.DBClusterSnapshots[0]
	return &cloud.SnapshotInfo{
		Name:      aws.ToString(snap.DBClusterSnapshotIdentifier),
		ARN:       aws.ToString(snap.DBClusterSnapshotArn),
		Status:    aws.ToString(snap.Status),
		Engine:    aws.ToString(snap.Engine),
		Encrypted: snap.StorageEncrypted != nil && *snap.StorageEncrypted,
		SizeGB:    int64(aws.ToInt32(snap.AllocatedStorage)),
		Created:   aws.ToTime(snap.SnapshotCreateTime),
	}, true, nil
}

// CopySnapshot issues a cross-region copy of sourceARN into targetName in
// targetRegion.
func (r *RDS) CopySnapshot(ctx context.Context, sourceRegion, targetRegion, sourceARN, targetName, kmsKeyID string) (*cloud.SnapshotInfo, error) {
	client, err := r.Factory.rdsClient(ctx, targetRegion)
	if err != nil {
		return nil, classify.New(classify.KindFatalCloud, "loading rds client", err)
	}

	input := &rds.CopyDBClusterSnapshotInput{
		SourceDBClusterSnapshotIdentifier: aws.String(sourceARN),
		TargetDBClusterSnapshotIdentifier: aws.String(targetName),
		SourceRegion:                      aws.String(sourceRegion),
		CopyTags:                          aws.Bool(true),
	}
	if kmsKeyID != "" {
		input.KmsKeyId = aws.String(kmsKeyID)
	}

	out, err := retry.Cloud(ctx, func(callCtx context.Context) (*rds.CopyDBClusterSnapshotOutput, error) {
		callCtx, cancel := context.WithTimeout(callCtx, describeTimeout*time.Second)
		defer cancel()
		out, err := client.CopyDBClusterSnapshot(callCtx, input)
		if err != nil {
			return nil, classifyRDSError(err, "copying snapshot")
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	snap := out.DBClusterSnapshot
	return &cloud.SnapshotInfo{
		Name:   aws.ToString(snap.DBClusterSnapshotIdentifier),
		ARN:    aws.ToString(snap.DBClusterSnapshotArn),
		Status: aws.ToString(snap.Status),
		Engine: aws.ToString(snap.Engine),
	}, nil
}

// DeleteSnapshot removes a snapshot by name.
func (r *RDS) DeleteSnapshot(ctx context.Context, region, name string) error {
	client, err := r.Factory.rdsClient(ctx, region)
	if err != nil {
		return classify.New(classify.KindFatalCloud, "loading rds client", err)
	}

	_, err = retry.Cloud(ctx, func(callCtx context.Context) (*rds.DeleteDBClusterSnapshotOutput, error) {
		callCtx, cancel := context.WithTimeout(callCtx, describeTimeout*time.Second)
		defer cancel()
		out, err := client.DeleteDBClusterSnapshot(callCtx, &rds.DeleteDBClusterSnapshotInput{
			DBClusterSnapshotIdentifier: aws.String(name),
		})
		if err != nil {
			return nil, classifyRDSError(err, "deleting snapshot")
		}
		return out, nil
	})
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	return nil
}

// DescribeCluster looks up a DB cluster by identifier.
func (r *RDS) DescribeCluster(ctx context.Context, region, clusterID string) (*cloud.ClusterInfo, bool, error) {
	client, err := r.Factory.rdsClient(ctx, region)
	if err != nil {
		return nil, false, classify.New(classify.KindFatalCloud, "loading rds client", err)
	}

	out, err := retry.Cloud(ctx, func(callCtx context.Context) (*rds.DescribeDBClustersOutput, error) {
		callCtx, cancel := context.WithTimeout(callCtx, describeTimeout*time.Second)
		defer cancel()
		out, err := client.DescribeDBClusters(callCtx, &rds.DescribeDBClustersInput{
			DBClusterIdentifier: aws.String(clusterID),
		})
		if err != nil {
			return nil, classifyRDSError(err, "describing cluster")
		}
		return out, nil
	})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(out.DBClusters) == 0 {
		return nil, false, nil
	}

	c := out.DBClusters[0]
	return &cloud.ClusterInfo{
		Identifier:    aws.ToString(c.DBClusterIdentifier),
		Status:        aws.ToString(c.Status),
		Endpoint:      aws.ToString(c.Endpoint),
		Port:          int(aws.ToInt32(c.Port)),
		Engine:        aws.ToString(c.Engine),
		EngineVersion: aws.ToString(c.EngineVersion),
	}, true, nil
}

// deletableStatuses are the cluster states delete_rds treats as safe to
// delete; anything else is a successful skip.
var deletableStatuses = map[string]bool{
	"available": true,
	"stopped":   true,
	"failed":    true,
}

// IsDeletable reports whether status is one of the states delete_rds will
// act on.
func IsDeletable(status string) bool { return deletableStatuses[status] }

// DeleteCluster deletes clusterID. Callers are expected to have
// already checked IsDeletable(status); DeleteCluster itself still
// recognizes InvalidDBClusterStateFault as a success-skip per
// classify.ErrClusterNotDeletable.
func (r *RDS) DeleteCluster(ctx context.Context, region, clusterID string, skipFinalSnapshot bool) error {
	client, err := r.Factory.rdsClient(ctx, region)
	if err != nil {
		return classify.New(classify.KindFatalCloud, "loading rds client", err)
	}

	_, err = retry.Cloud(ctx, func(callCtx context.Context) (*rds.DeleteDBClusterOutput, error) {
		callCtx, cancel := context.WithTimeout(callCtx, describeTimeout*time.Second)
		defer cancel()
		out, err := client.DeleteDBCluster(callCtx, &rds.DeleteDBClusterInput{
			DBClusterIdentifier: aws.String(clusterID),
			SkipFinalSnapshot:   aws.Bool(skipFinalSnapshot),
		})
		if err != nil {
			if isInvalidClusterState(err) {
				return nil, classify.ErrClusterNotDeletable
			}
			return nil, classifyRDSError(err, "deleting cluster")
		}
		return out, nil
	})
	if err != nil {
		if isNotFound(err) || errors.Is(err, classify.ErrClusterNotDeletable) {
			return nil
		}
		return err
	}
	return nil
}

// RestoreFromSnapshot restores a cluster from a copied snapshot, applying
// each optional field only when present, and always tagging
// Name/Environment/CreatedBy/OperationId.
func (r *RDS) RestoreFromSnapshot(ctx context.Context, region string, params cloud.RestoreParams) error {
	client, err := r.Factory.rdsClient(ctx, region)
	if err != nil {
		return classify.New(classify.KindFatalCloud, "loading rds client", err)
	}

	input := &rds.RestoreDBClusterFromSnapshotInput{
		DBClusterIdentifier: aws.String(params.TargetClusterID),
		SnapshotIdentifier:  aws.String(params.TargetSnapshotName),
		Engine:              aws.String(params.Engine),
		Tags: []types.Tag{
			{Key: aws.String("Name"), Value: aws.String(params.TargetClusterID)},
			{Key: aws.String("Environment"), Value: aws.String(params.Environment)},
			{Key: aws.String("CreatedBy"), Value: aws.String("aurora-restore-pipeline")},
			{Key: aws.String("OperationId"), Value: aws.String(params.OperationID)},
		},
	}
	if params.DBSubnetGroupName != "" {
		input.DBSubnetGroupName = aws.String(params.DBSubnetGroupName)
	}
	if len(params.VpcSecurityGroupIds) > 0 {
		input.VpcSecurityGroupIds = params.VpcSecurityGroupIds
	}
	if params.Port != 0 {
		input.Port = int32Ptr(params.Port)
	}
	if len(params.AvailabilityZones) > 0 {
		input.AvailabilityZones = params.AvailabilityZones
	}
	if params.EnableIAMDatabaseAuthentication {
		input.EnableIAMDatabaseAuthentication = aws.Bool(true)
	}
	if params.StorageEncrypted {
		input.StorageEncrypted = aws.Bool(true)
	}
	if params.KmsKeyID != "" {
		input.KmsKeyId = aws.String(params.KmsKeyID)
	}
	if params.DeletionProtection {
		input.DeletionProtection = aws.Bool(true)
	}
	if params.DBClusterParameterGroupName != "" {
		input.DBClusterParameterGroupName = aws.String(params.DBClusterParameterGroupName)
	}
	if params.BackupRetentionPeriod != 0 {
		input.BackupRetentionPeriod = int32Ptr(params.BackupRetentionPeriod)
	}

	_, err = retry.Cloud(ctx, func(callCtx context.Context) (*rds.RestoreDBClusterFromSnapshotOutput, error) {
		callCtx, cancel := context.WithTimeout(callCtx, describeTimeout*time.Second)
		defer cancel()
		out, err := client.RestoreDBClusterFromSnapshot(callCtx, input)
		if err != nil {
			if isAlreadyExists(err) {
				return nil, classify.AlreadyExists
			}
			return nil, classifyRDSError(err, "restoring cluster from snapshot")
		}
		return out, nil
	})
	if err != nil {
		return err
	}
	return nil
}

func classifyRDSError(err error, op string) error {
	if isThrottling(err) {
		return classify.New(classify.KindTransientCloud, op, err)
	}
	return classify.New(classify.KindFatalCloud, op, err)
}

func isNotFound(err error) bool {
	var dbcsnf *types.DBClusterSnapshotNotFoundFault
	var dbcnf *types.DBClusterNotFoundFault
	return errors.As(err, &dbcsnf) || errors.As(err, &dbcnf)
}

func isAlreadyExists(err error) bool {
	var already *types.DBClusterAlreadyExistsFault
	return errors.As(err, &already)
}

func isInvalidClusterState(err error) bool {
	var invalid *types.InvalidDBClusterStateFault
	return errors.As(err, &invalid)
}

func isThrottling(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "Throttling", "ThrottlingException", "RequestLimitExceeded", "TooManyRequestsException":
			return true
		}
	}
	return false
}
