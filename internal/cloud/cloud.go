// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package cloud defines the narrow collaborator interfaces kept out of
// scope of the engine itself: snapshot lookup/copy/delete, cluster
// describe/delete/restore, secret retrieval, and notification publish. It
// follows the teacher's pkg/providers/cloud.CloudProvider shape (one
// interface per concern, implemented per-vendor) generalized from VM
// provisioning to Aurora snapshot/cluster operations; internal/cloudaws
// supplies the AWS-backed implementation.
//
// Lookups return (value, found bool, error) rather than a NotFound error,
// since NotFound is an expected outcome during restore idempotency checks
// and polling, not a failure.
package cloud

import (
	"context"
	"time"
)

// SnapshotScope is the visibility class a snapshot lookup searches, in the
// order snapshot_check must try them: shared, then manual, then automated.
type SnapshotScope string

const (
	ScopeShared    SnapshotScope = "shared"
	ScopeManual    SnapshotScope = "manual"
	ScopeAutomated SnapshotScope = "automated"
)

// DefaultSnapshotScopes is the search order snapshot_check uses.
var DefaultSnapshotScopes = []SnapshotScope{ScopeShared, ScopeManual, ScopeAutomated}

// SnapshotInfo describes a DB cluster snapshot as returned by a lookup.
type SnapshotInfo struct {
	Name      string
	ARN       string
	Status    string
	Engine    string
	Encrypted bool
	SizeGB    int64
	Created   time.Time
}

// ClusterInfo describes a DB cluster as returned by a describe call.
type ClusterInfo struct {
	Identifier    string
	Status        string
	Endpoint      string
	Port          int
	Engine        string
	EngineVersion string
}

// RestoreParams carries the fields restore_snapshot applies iff present;
// zero values mean "omit from the restore call".
type RestoreParams struct {
	TargetClusterID                string
	TargetSnapshotName              string
	Engine                          string
	DBSubnetGroupName               string
	VpcSecurityGroupIds             []string
	Port                            int
	AvailabilityZones               []string
	EnableIAMDatabaseAuthentication bool
	StorageEncrypted                bool
	KmsKeyID                        string
	DeletionProtection              bool
	BackupRetentionPeriod           int
	DBClusterParameterGroupName     string
	Environment                     string
	OperationID                     string
}

// SnapshotClient is the narrow collaborator for snapshot lookup, cross-
// region copy, and deletion.
type SnapshotClient interface {
	// FindSnapshot searches scopes in order and returns the first match.
	FindSnapshot(ctx context.Context, region, name string, scopes []SnapshotScope) (*SnapshotInfo, bool, error)

	// DescribeSnapshot looks up a single snapshot by name in region,
	// without scope search (used for copy-status polling).
	DescribeSnapshot(ctx context.Context, region, name string) (*SnapshotInfo, bool, error)

	// CopySnapshot issues a cross-region copy, returning the target
	// snapshot's initial state. kmsKeyID may be empty.
	CopySnapshot(ctx context.Context, sourceRegion, targetRegion, sourceARN, targetName, kmsKeyID string) (*SnapshotInfo, error)

	// DeleteSnapshot removes a snapshot by name in region.
	DeleteSnapshot(ctx context.Context, region, name string) error
}

// ClusterClient is the narrow collaborator for cluster describe, delete,
// and restore.
type ClusterClient interface {
	DescribeCluster(ctx context.Context, region, clusterID string) (*ClusterInfo, bool, error)
	DeleteCluster(ctx context.Context, region, clusterID string, skipFinalSnapshot bool) error
	RestoreFromSnapshot(ctx context.Context, region string, params RestoreParams) error
}

// SecretClient retrieves a flat string-keyed secret payload (master or
// application credentials).
type SecretClient interface {
	GetSecret(ctx context.Context, region, secretID string) (map[string]string, error)
}

// NotificationClient publishes the terminal sns_notification message,
// returning the provider-assigned message id.
type NotificationClient interface {
	Publish(ctx context.Context, region, topicARN, subject, message string) (messageID string, err error)
}

