// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package dbusers implements the idempotent role-provisioning transaction
// used by setup_db_users: conditional role creation with password reset,
// CONNECT/USAGE/table/sequence grants, and default privileges for future
// objects. It adapts the teacher's raw SQL migration engine
// (internal/providers/migration/raw/raw.go), the same
// sql.Open("pgx", ...) + BeginTx/ExecContext/Commit transaction idiom,
// repurposed from running migration files to running fixed role-management
// statements against a restored cluster endpoint.
package dbusers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/auroraops/restore-pipeline/internal/classify"
)

// Role describes one database role to provision: its login name, password,
// and the privilege tier it receives (app: read/write; readonly: read-only).
type Role struct {
	Name     string
	Password string
	ReadOnly bool
}

// Provisioner opens short-lived connections to a restored cluster endpoint
// and runs the role-management transaction.
type Provisioner struct {
	// ConnectTimeout bounds dialing the cluster (db_connection_timeout,
	// default 30s).
	ConnectTimeout time.Duration
}

// NewProvisioner constructs a Provisioner with the given connect timeout.
func NewProvisioner(connectTimeout time.Duration) *Provisioner {
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}
	return &Provisioner{ConnectTimeout: connectTimeout}
}

// SetupUsers opens a session to dsn, targeting database, and provisions
// each role in roles within a single transaction. The whole operation is
// idempotent: re-running with the same roles converges to the same
// privileges, with passwords equal to the last applied value.
func (p *Provisioner) SetupUsers(ctx context.Context, dsn, database string, roles []Role) error {
	connectCtx, cancel := context.WithTimeout(ctx, p.ConnectTimeout)
	defer cancel()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return classify.New(classify.KindSQL, "opening connection", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(connectCtx); err != nil {
		return classify.New(classify.KindSQL, "connecting to cluster", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return classify.New(classify.KindSQL, "starting transaction", err)
	}

	for _, role := range roles {
		if err := provisionRole(ctx, tx, database, role); err != nil {
			_ = tx.Rollback()
			return classify.New(classify.KindSQL, fmt.Sprintf("provisioning role %s", role.Name), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return classify.New(classify.KindSQL, "committing role provisioning", err)
	}
	return nil
}

func provisionRole(ctx context.Context, tx *sql.Tx, database string, role Role) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM pg_roles WHERE rolname = $1)`, role.Name).Scan(&exists); err != nil {
		return fmt.Errorf("checking role existence: %w", err)
	}

	if exists {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`ALTER ROLE %s WITH LOGIN PASSWORD %s`, quoteIdent(role.Name), quoteLiteral(role.Password))); err != nil {
			return fmt.Errorf("resetting password: %w", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE ROLE %s WITH LOGIN PASSWORD %s`, quoteIdent(role.Name), quoteLiteral(role.Password))); err != nil {
			return fmt.Errorf("creating role: %w", err)
		}
	}

	statements := []string{
		fmt.Sprintf(`GRANT CONNECT ON DATABASE %s TO %s`, quoteIdent(database), quoteIdent(role.Name)),
		fmt.Sprintf(`GRANT USAGE ON SCHEMA public TO %s`, quoteIdent(role.Name)),
	}

	if role.ReadOnly {
		statements = append(statements,
			fmt.Sprintf(`GRANT SELECT ON ALL TABLES IN SCHEMA public TO %s`, quoteIdent(role.Name)),
			fmt.Sprintf(`GRANT USAGE, SELECT ON ALL SEQUENCES IN SCHEMA public TO %s`, quoteIdent(role.Name)),
			fmt.Sprintf(`ALTER DEFAULT PRIVILEGES IN SCHEMA public GRANT SELECT ON TABLES TO %s`, quoteIdent(role.Name)),
			fmt.Sprintf(`ALTER DEFAULT PRIVILEGES IN SCHEMA public GRANT USAGE, SELECT ON SEQUENCES TO %s`, quoteIdent(role.Name)),
		)
	} else {
		statements = append(statements,
			fmt.Sprintf(`GRANT SELECT, INSERT, UPDATE, DELETE ON ALL TABLES IN SCHEMA public TO %s`, quoteIdent(role.Name)),
			fmt.Sprintf(`GRANT USAGE, SELECT ON ALL SEQUENCES IN SCHEMA public TO %s`, quoteIdent(role.Name)),
			fmt.Sprintf(`ALTER DEFAULT PRIVILEGES IN SCHEMA public GRANT SELECT, INSERT, UPDATE, DELETE ON TABLES TO %s`, quoteIdent(role.Name)),
			fmt.Sprintf(`ALTER DEFAULT PRIVILEGES IN SCHEMA public GRANT USAGE, SELECT ON SEQUENCES TO %s`, quoteIdent(role.Name)),
		)
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt, err)
		}
	}
	return nil
}

// quoteIdent double-quotes a Postgres identifier, escaping embedded quotes.
// Role and database names here are operator-configured (secret store /
// config), not end-user input, but quoting avoids surprises from
// hyphenated identifiers.
func quoteIdent(ident string) string {
	escaped := ""
	for _, r := range ident {
		if r == '"' {
			escaped += `""`
		} else {
			escaped += string(r)
		}
	}
	return `"` + escaped + `"`
}

// quoteLiteral single-quotes a SQL string literal, escaping embedded quotes.
func quoteLiteral(s string) string {
	escaped := ""
	for _, r := range s {
		if r == '\'' {
			escaped += `''`
		} else {
			escaped += string(r)
		}
	}
	return `'` + escaped + `'`
}
