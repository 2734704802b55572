// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package verify implements the version probe and schema/table enumeration
// used by verify_restore, using the same sql.Open("pgx", ...)
// connection idiom as internal/dbusers.
package verify

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/auroraops/restore-pipeline/internal/classify"
)

// systemSchemas are excluded from the user schema/table count: verify_restore
// enumerates user schemas and tables, excluding system schemas.
var systemSchemas = map[string]bool{
	"pg_catalog":         true,
	"information_schema": true,
	"pg_toast":           true,
}

// Summary is the verification result persisted into the StepRecord.
type Summary struct {
	Version     string
	SchemaCount int
	TableCount  int
}

// Verifier opens a session to the restored cluster and runs the
// verification probe.
type Verifier struct{}

// Run connects to dsn and returns a Summary. Schema names beginning with
// "pg_" are treated as system schemas alongside the fixed exclusion set,
// matching Postgres's own convention for temp and toast schemas.
func (Verifier) Run(ctx context.Context, dsn string) (*Summary, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, classify.New(classify.KindSQL, "opening connection", err)
	}
	defer func() { _ = db.Close() }()

	var version string
	if err := db.QueryRowContext(ctx, `SELECT version()`).Scan(&version); err != nil {
		return nil, classify.New(classify.KindSQL, "probing version", err)
	}

	rows, err := db.QueryContext(ctx, `SELECT schema_name FROM information_schema.schemata`)
	if err != nil {
		return nil, classify.New(classify.KindSQL, "enumerating schemas", err)
	}
	defer rows.Close()

	var userSchemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, classify.New(classify.KindSQL, "scanning schema row", err)
		}
		if isUserSchema(name) {
			userSchemas = append(userSchemas, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, classify.New(classify.KindSQL, "reading schema rows", err)
	}

	tableCount, err := countTables(ctx, db, userSchemas)
	if err != nil {
		return nil, err
	}

	return &Summary{Version: version, SchemaCount: len(userSchemas), TableCount: tableCount}, nil
}

func countTables(ctx context.Context, db *sql.DB, schemas []string) (int, error) {
	if len(schemas) == 0 {
		return 0, nil
	}

	var total int
	for _, schema := range schemas {
		var count int
		if err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = $1`,
			schema,
		).Scan(&count); err != nil {
			return 0, classify.New(classify.KindSQL, "counting tables", err)
		}
		total += count
	}
	return total, nil
}

func isUserSchema(name string) bool {
	if systemSchemas[name] {
		return false
	}
	if len(name) >= 3 && name[:3] == "pg_" {
		return false
	}
	return true
}
