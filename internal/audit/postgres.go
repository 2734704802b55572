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
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auroraops/restore-pipeline/internal/model"
)

// Postgres appends AuditEvents to audit_table_name, with a TTL column
// consumers may use for their own retention sweep (the 30-day window is
// advisory; this package does not run a reaper).
type Postgres struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgres wraps an existing pool. table is the configured
// audit_table_name.
func NewPostgres(pool *pgxpool.Pool, table string) *Postgres {
	return &Postgres{pool: pool, table: table}
}

// EnsureSchema creates the audit table if it does not already exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			event_id TEXT PRIMARY KEY,
			operation_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			status TEXT NOT NULL,
			ts TIMESTAMPTZ NOT NULL,
			details JSONB,
			environment TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		)
	`, p.table))
	if err != nil {
		return fmt.Errorf("ensuring audit table %s: %w", p.table, err)
	}
	return nil
}

// Log inserts event. Logging is best-effort from the caller's
// perspective; Postgres.Log still returns the underlying error so the
// engine's wiring can log-and-continue rather than swallowing it silently.
func (p *Postgres) Log(ctx context.Context, event *model.AuditEvent) error {
	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("marshaling audit details: %w", err)
	}

	_, err = p.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (event_id, operation_id, event_type, status, ts, details, environment, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING
	`, p.table),
		event.EventID, event.OperationID, string(event.EventType), string(event.Status),
		event.Timestamp, details, event.Environment, event.Timestamp.Add(model.AuditTTL),
	)
	if err != nil {
		return fmt.Errorf("logging audit event: %w", err)
	}
	return nil
}
