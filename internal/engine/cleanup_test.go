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
	"testing"

	"github.com/auroraops/restore-pipeline/internal/cloud"
	"github.com/auroraops/restore-pipeline/internal/model"
	"github.com/auroraops/restore-pipeline/internal/statestore"
)

type failingLogDeleter struct{ err error }

func (f failingLogDeleter) DeletePrefix(ctx context.Context, prefix string) error { return f.err }

func TestCleanupRunDeletesEverythingRequested(t *testing.T) {
	store := statestore.NewMemory()
	_ = store.Save(context.Background(), &model.StepRecord{
		OperationID: "op-1",
		Step:        model.StepSNSNotification,
		Timestamp:   1,
		Success:     true,
	})
	snapshots := newFakeSnapshots()
	snapshots.put("us-east-1", &cloud.SnapshotInfo{Name: "snap-1-copy", ARN: "arn:snap-1-copy", Status: "available"})

	c := Cleanup{Store: store, Snapshots: snapshots}

	result := c.Run(context.Background(), CleanupRequest{
		OperationID:    "op-1",
		TargetRegion:   "us-east-1",
		SnapshotName:   "snap-1-copy",
		DeleteSnapshot: true,
		DeleteState:    true,
		LogPrefix:      "aurora-restore/op-1/",
	})

	if !result.SnapshotDeleted || result.SnapshotError != "" {
		t.Errorf("expected snapshot deleted cleanly, got %+v", result)
	}
	if !result.StateDeleted || result.StateError != "" {
		t.Errorf("expected state deleted cleanly, got %+v", result)
	}
	if !result.LogsDeleted || result.LogsError != "" {
		t.Errorf("expected logs deleted cleanly (Noop default), got %+v", result)
	}
}

func TestCleanupRunIsolatesFailures(t *testing.T) {
	store := statestore.NewMemory()
	snapshots := newFakeSnapshots()
	snapshots.deleteErr = errors.New("snapshot still in use")

	c := Cleanup{Store: store, Snapshots: snapshots, Logs: failingLogDeleter{err: errors.New("log store unreachable")}}

	result := c.Run(context.Background(), CleanupRequest{
		OperationID:    "op-2",
		TargetRegion:   "us-east-1",
		SnapshotName:   "snap-2-copy",
		DeleteSnapshot: true,
		DeleteState:    true,
		LogPrefix:      "aurora-restore/op-2/",
	})

	if result.SnapshotDeleted || result.SnapshotError == "" {
		t.Errorf("expected a recorded snapshot error, got %+v", result)
	}
	if !result.StateDeleted {
		t.Errorf("state deletion must still succeed despite the snapshot failure, got %+v", result)
	}
	if result.LogsDeleted || result.LogsError == "" {
		t.Errorf("expected a recorded logs error, got %+v", result)
	}
}

func TestCleanupRunSkipsUnrequestedSubOperations(t *testing.T) {
	store := statestore.NewMemory()
	snapshots := newFakeSnapshots()

	c := Cleanup{Store: store, Snapshots: snapshots}

	result := c.Run(context.Background(), CleanupRequest{OperationID: "op-3"})

	if result.SnapshotDeleted || result.StateDeleted || result.LogsDeleted {
		t.Errorf("expected no sub-operations to run, got %+v", result)
	}
}
