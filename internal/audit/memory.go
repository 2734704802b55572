// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package audit

import (
	"context"
	"sync"

	"github.com/auroraops/restore-pipeline/internal/model"
)

// Recording is an in-memory Sink for tests: every Log call is retained, in
// order, for later assertions that every emitted audit event has a
// matching StepRecord for its (operation_id, step).
type Recording struct {
	mu     sync.Mutex
	Events []*model.AuditEvent
}

// NewRecording constructs an empty Recording sink.
func NewRecording() *Recording {
	return &Recording{}
}

// Log appends event and never fails.
func (r *Recording) Log(ctx context.Context, event *model.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event)
	return nil
}

// All returns a snapshot of the recorded events.
func (r *Recording) All() []*model.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.AuditEvent, len(r.Events))
	copy(out, r.Events)
	return out
}
