// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package audit implements the append-only AuditEvent log: log_audit is
// best-effort, so a sink failure is logged but never fails the handler. It
// reuses the pgx family already adopted for the state store
// (internal/statestore), writing to a second table.
package audit

import (
	"context"

	"github.com/auroraops/restore-pipeline/internal/model"
)

// Sink records AuditEvents. Implementations must never return an error
// that would cause a caller to abort the workflow; Log already absorbs
// sink errors into a logged error (see engine wiring), but the interface
// itself keeps the error return so tests can assert on failures without a
// live sink.
type Sink interface {
	Log(ctx context.Context, event *model.AuditEvent) error
}

// Noop discards every event. Used where an operator runs without a
// configured audit table: best-effort means "absent is tolerated".
type Noop struct{}

// Log does nothing and never fails.
func (Noop) Log(ctx context.Context, event *model.AuditEvent) error { return nil }
