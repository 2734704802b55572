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
	"github.com/auroraops/restore-pipeline/internal/statestore"
)

// LogPrefixDeleter removes log objects under a configured prefix. No
// grounding exists for a specific log/object store backing this narrow
// concern, so it stays a pluggable interface with a Noop default rather
// than fabricating an ungrounded dependency.
type LogPrefixDeleter interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// NoopLogPrefixDeleter performs no deletion and never fails; used when no
// log store is configured for a given environment.
type NoopLogPrefixDeleter struct{}

// DeletePrefix does nothing and never fails.
func (NoopLogPrefixDeleter) DeletePrefix(ctx context.Context, prefix string) error { return nil }

// Cleanup implements the administrative cleanup operation. Unlike the
// chained handlers, it is never reached through Engine.Execute: it is
// operator-triggered only, and exposes its own Run method, invoked
// directly by the CLI's `cleanup` command.
type Cleanup struct {
	Store     statestore.Store
	Snapshots cloud.SnapshotClient
	Logs      LogPrefixDeleter
}

// CleanupRequest names what an operator wants torn down for one operation.
type CleanupRequest struct {
	OperationID    string
	TargetRegion   string
	SnapshotName   string // empty skips snapshot deletion
	DeleteState    bool
	LogPrefix      string // empty skips log deletion
	DeleteSnapshot bool
}

// CleanupResult reports each sub-operation's outcome independently: a
// partial failure in one does not prevent the others from running, since
// each sub-operation is independently best-effort.
type CleanupResult struct {
	OperationID      string `json:"operation_id"`
	SnapshotDeleted  bool   `json:"snapshot_deleted"`
	SnapshotError    string `json:"snapshot_error,omitempty"`
	StateDeleted     bool   `json:"state_deleted"`
	StateError       string `json:"state_error,omitempty"`
	LogsDeleted      bool   `json:"logs_deleted"`
	LogsError        string `json:"logs_error,omitempty"`
}

// Run executes every requested sub-operation, collecting failures rather
// than aborting on the first one.
func (c Cleanup) Run(ctx context.Context, req CleanupRequest) CleanupResult {
	result := CleanupResult{OperationID: req.OperationID}

	if req.DeleteSnapshot && req.SnapshotName != "" {
		if err := c.Snapshots.DeleteSnapshot(ctx, req.TargetRegion, req.SnapshotName); err != nil {
			result.SnapshotError = err.Error()
		} else {
			result.SnapshotDeleted = true
		}
	}

	if req.DeleteState {
		if err := c.Store.Delete(ctx, req.OperationID); err != nil {
			result.StateError = err.Error()
		} else {
			result.StateDeleted = true
		}
	}

	if req.LogPrefix != "" {
		deleter := c.Logs
		if deleter == nil {
			deleter = NoopLogPrefixDeleter{}
		}
		if err := deleter.DeletePrefix(ctx, req.LogPrefix); err != nil {
			result.LogsError = err.Error()
		} else {
			result.LogsDeleted = true
		}
	}

	return result
}
