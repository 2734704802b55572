// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package statestore

import (
	"context"
	"sort"
	"sync"

	"github.com/auroraops/restore-pipeline/internal/model"
)

// Memory is an in-process Store backed by a mutex-guarded, append-only
// slice of records, for unit tests and local development without Postgres.
// Every returned record is a clone, matching the teacher's
// cloneRelease-on-read discipline against accidental caller mutation.
type Memory struct {
	mu      sync.Mutex
	records []*model.StepRecord
}

// NewMemory constructs an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{}
}

// Save appends a clone of record. Load resolves "latest" by (timestamp,
// step) ordering, so a later visit of the same step supersedes earlier
// ones; of two writes with the same step and timestamp, the first one
// written is kept as latest, as in Postgres.
func (m *Memory) Save(ctx context.Context, record *model.StepRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, cloneStepRecord(record))
	return nil
}

// Load returns the record with the greatest (timestamp, step) ordering for
// (operationID, step); when step is "", it returns the greatest ordering
// across all steps for operationID. This mirrors Postgres's
// "ORDER BY ts DESC, step DESC" so both stores resolve "latest" identically
// even when two records collide at the same second.
func (m *Memory) Load(ctx context.Context, operationID string, step model.Step) (*model.StepRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var matches []*model.StepRecord
	for _, r := range m.records {
		if r.OperationID != operationID {
			continue
		}
		if step != "" && r.Step != step {
			continue
		}
		matches = append(matches, r)
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Timestamp != matches[j].Timestamp {
			return matches[i].Timestamp > matches[j].Timestamp
		}
		return matches[i].Step > matches[j].Step
	})

	return cloneStepRecord(matches[0]), nil
}

// Delete removes every record for operationID.
func (m *Memory) Delete(ctx context.Context, operationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	for _, r := range m.records {
		if r.OperationID != operationID {
			kept = append(kept, r)
		}
	}
	m.records = kept
	return nil
}

func cloneStepRecord(r *model.StepRecord) *model.StepRecord {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Payload != nil {
		clone.Payload = make(map[string]any, len(r.Payload))
		for k, v := range r.Payload {
			clone.Payload[k] = v
		}
	}
	return &clone
}
