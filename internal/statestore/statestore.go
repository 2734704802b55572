// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package statestore persists StepRecords keyed by (operation_id, step).
// It generalizes the teacher's JSON-file release/phase Manager
// (internal/core/state/state.go) from a local deployment-history file
// into a durable key-value table with a Postgres-backed production
// implementation and an in-memory implementation for tests.
package statestore

import (
	"context"
	"errors"

	"github.com/auroraops/restore-pipeline/internal/model"
)

// ErrNotFound is returned by Load when no StepRecord exists for the
// requested (operation_id, step), or, when step is empty, no record
// exists for the operation at all.
var ErrNotFound = errors.New("statestore: record not found")

// Store is the narrow collaborator the engine core and step handlers use
// to persist and retrieve StepRecords.
type Store interface {
	// Save appends one record per visit of (operation_id, step); earlier
	// visits are kept, and Load returns the latest. A second save of the
	// same step with the same Timestamp does not replace the first.
	// Timestamp is stamped by the caller (internal/clock) before Save is
	// invoked.
	Save(ctx context.Context, record *model.StepRecord) error

	// Load returns the record for (operationID, step). When step is "",
	// it returns the record with the greatest (timestamp, step) ordering,
	// the "load latest" query. Returns ErrNotFound if absent.
	Load(ctx context.Context, operationID string, step model.Step) (*model.StepRecord, error)

	// Delete removes every row for operationID (used by cleanup).
	Delete(ctx context.Context, operationID string) error
}

// LoadLatest is a convenience wrapper over Load with an empty step.
func LoadLatest(ctx context.Context, s Store, operationID string) (*model.StepRecord, error) {
	return s.Load(ctx, operationID, "")
}
