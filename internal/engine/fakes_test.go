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
)

// fakeSnapshots is an in-memory cloud.SnapshotClient for engine tests,
// keyed by "region/name" so FindSnapshot/DescribeSnapshot share one table.
type fakeSnapshots struct {
	byKey       map[string]*cloud.SnapshotInfo
	findErr     error
	describeErr error
	copyErr     error
	deleteErr   error
	copied      []string // targetName values passed to CopySnapshot
	deleted     []string
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{byKey: map[string]*cloud.SnapshotInfo{}}
}

func snapKey(region, name string) string { return region + "/" + name }

func (f *fakeSnapshots) put(region string, info *cloud.SnapshotInfo) {
	f.byKey[snapKey(region, info.Name)] = info
}

func (f *fakeSnapshots) FindSnapshot(ctx context.Context, region, name string, scopes []cloud.SnapshotScope) (*cloud.SnapshotInfo, bool, error) {
	if f.findErr != nil {
		return nil, false, f.findErr
	}
	info, ok := f.byKey[snapKey(region, name)]
	return info, ok, nil
}

func (f *fakeSnapshots) DescribeSnapshot(ctx context.Context, region, name string) (*cloud.SnapshotInfo, bool, error) {
	if f.describeErr != nil {
		return nil, false, f.describeErr
	}
	info, ok := f.byKey[snapKey(region, name)]
	return info, ok, nil
}

func (f *fakeSnapshots) CopySnapshot(ctx context.Context, sourceRegion, targetRegion, sourceARN, targetName, kmsKeyID string) (*cloud.SnapshotInfo, error) {
	if f.copyErr != nil {
		return nil, f.copyErr
	}
	f.copied = append(f.copied, targetName)
	info := &cloud.SnapshotInfo{Name: targetName, ARN: "arn:" + targetName, Status: "creating"}
	f.put(targetRegion, info)
	return info, nil
}

func (f *fakeSnapshots) DeleteSnapshot(ctx context.Context, region, name string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, name)
	delete(f.byKey, snapKey(region, name))
	return nil
}

// fakeClusters is an in-memory cloud.ClusterClient for engine tests.
type fakeClusters struct {
	byKey       map[string]*cloud.ClusterInfo
	describeErr error
	deleteErr   error
	restoreErr  error
	deleted     []string
	restored    []cloud.RestoreParams
}

func newFakeClusters() *fakeClusters {
	return &fakeClusters{byKey: map[string]*cloud.ClusterInfo{}}
}

func clusterKey(region, id string) string { return region + "/" + id }

func (f *fakeClusters) put(region string, info *cloud.ClusterInfo) {
	f.byKey[clusterKey(region, info.Identifier)] = info
}

func (f *fakeClusters) DescribeCluster(ctx context.Context, region, clusterID string) (*cloud.ClusterInfo, bool, error) {
	if f.describeErr != nil {
		return nil, false, f.describeErr
	}
	info, ok := f.byKey[clusterKey(region, clusterID)]
	return info, ok, nil
}

func (f *fakeClusters) DeleteCluster(ctx context.Context, region, clusterID string, skipFinalSnapshot bool) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, clusterID)
	delete(f.byKey, clusterKey(region, clusterID))
	return nil
}

func (f *fakeClusters) RestoreFromSnapshot(ctx context.Context, region string, params cloud.RestoreParams) error {
	if f.restoreErr != nil {
		return f.restoreErr
	}
	f.restored = append(f.restored, params)
	f.put(region, &cloud.ClusterInfo{Identifier: params.TargetClusterID, Status: "creating"})
	return nil
}

// fakeSecrets is an in-memory cloud.SecretClient for engine tests.
type fakeSecrets struct {
	byID map[string]map[string]string
	err  error
}

func newFakeSecrets() *fakeSecrets {
	return &fakeSecrets{byID: map[string]map[string]string{}}
}

func (f *fakeSecrets) GetSecret(ctx context.Context, region, secretID string) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	secret, ok := f.byID[secretID]
	if !ok {
		return nil, classify.New(classify.KindNotFound, "secret not found", nil)
	}
	return secret, nil
}

// fakeNotifications is an in-memory cloud.NotificationClient for engine
// tests.
type fakeNotifications struct {
	published []string // message bodies
	err       error
}

func (f *fakeNotifications) Publish(ctx context.Context, region, topicARN, subject, message string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.published = append(f.published, message)
	return "msg-1", nil
}
