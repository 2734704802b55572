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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auroraops/restore-pipeline/internal/model"
)

// Postgres is the production Store: an append-only table keyed by
// (operation_id, step, timestamp), one row per handler invocation, where
// subsequent writes append a new (operation, step) row.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgres wraps an existing pool. table is the configured
// state_table_name, created on first use by EnsureSchema.
func NewPostgres(pool *pgxpool.Pool, table string) *Postgres {
	return &Postgres{pool: pool, table: table}
}

// EnsureSchema creates the state table if it does not already exist.
// Mirrors the teacher's ensureMigrationsTable "CREATE TABLE IF NOT EXISTS"
// idiom (internal/providers/migration/raw/raw.go).
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			operation_id TEXT NOT NULL,
			step TEXT NOT NULL,
			ts BIGINT NOT NULL,
			success BOOLEAN NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			payload JSONB,
			PRIMARY KEY (operation_id, step, ts)
		)
	`, p.table))
	if err != nil {
		return fmt.Errorf("ensuring state table %s: %w", p.table, err)
	}
	return nil
}

// Save inserts a new row for record. Timestamp collisions for the same
// (operation_id, step) within the same second are resolved by keeping the
// first write (ON CONFLICT DO NOTHING), which is harmless under
// at-least-once dispatch since retries are supposed to converge to the
// same content.
func (p *Postgres) Save(ctx context.Context, record *model.StepRecord) error {
	payload, err := json.Marshal(record.Payload)
	if err != nil {
		return fmt.Errorf("marshaling step record payload: %w", err)
	}

	_, err = p.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (operation_id, step, ts, success, error, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (operation_id, step, ts) DO NOTHING
	`, p.table), record.OperationID, string(record.Step), record.Timestamp, record.Success, record.Error, payload)
	if err != nil {
		return fmt.Errorf("saving step record: %w", err)
	}
	return nil
}

// Load returns the most recent row for (operationID, step); step="" loads
// the most recent row across all steps for the operation.
func (p *Postgres) Load(ctx context.Context, operationID string, step model.Step) (*model.StepRecord, error) {
	query := fmt.Sprintf(`
		SELECT operation_id, step, ts, success, error, payload
		FROM %s
		WHERE operation_id = $1
	`, p.table)
	args := []any{operationID}
	if step != "" {
		query += " AND step = $2"
		args = append(args, string(step))
	}
	query += " ORDER BY ts DESC, step DESC LIMIT 1"

	row := p.pool.QueryRow(ctx, query, args...)

	var (
		record       model.StepRecord
		stepStr      string
		payloadBytes []byte
	)
	if err := row.Scan(&record.OperationID, &stepStr, &record.Timestamp, &record.Success, &record.Error, &payloadBytes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading step record: %w", err)
	}
	record.Step = model.Step(stepStr)

	if len(payloadBytes) > 0 {
		if err := json.Unmarshal(payloadBytes, &record.Payload); err != nil {
			return nil, fmt.Errorf("decoding step record payload: %w", err)
		}
	}

	return &record, nil
}

// Delete removes every row for operationID.
func (p *Postgres) Delete(ctx context.Context, operationID string) error {
	_, err := p.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE operation_id = $1`, p.table), operationID)
	if err != nil {
		return fmt.Errorf("deleting step records for %s: %w", operationID, err)
	}
	return nil
}
