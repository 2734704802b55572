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
	"fmt"

	"github.com/auroraops/restore-pipeline/internal/classify"
	"github.com/auroraops/restore-pipeline/internal/cloud"
	"github.com/auroraops/restore-pipeline/internal/model"
	"github.com/auroraops/restore-pipeline/internal/verify"
)

// VerifyRestore implements verify_restore: a version probe plus a
// schema/table count, establishing that the restored cluster is actually
// queryable and populated before the pipeline archives the copied snapshot.
type VerifyRestore struct {
	Secrets  cloud.SecretClient
	Verifier verify.Verifier
}

func (v VerifyRestore) Act(ctx context.Context, rc *RunContext) (Outcome, error) {
	targetRegion := rc.Config.Get("target_region")
	endpoint := rc.Prior.GetString("cluster_endpoint")
	port := rc.Prior.GetInt("cluster_port")

	master, err := v.Secrets.GetSecret(ctx, targetRegion, rc.Config.Get("master_credentials_secret_id"))
	if err != nil {
		return Outcome{}, classify.New(classify.KindFatalCloud, "fetching master credentials", err)
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=require",
		master["username"], master["password"], endpoint, port, master["database"])

	summary, err := v.Verifier.Run(ctx, dsn)
	if err != nil {
		return Outcome{}, err
	}

	payload := forwardPayload(rc)
	payload["cluster_endpoint"] = endpoint
	payload["cluster_port"] = port
	payload["db_version"] = summary.Version
	payload["schema_count"] = summary.SchemaCount
	payload["table_count"] = summary.TableCount

	return Outcome{
		Payload:     payload,
		AuditStatus: model.AuditSuccess,
		Next:        model.StepArchiveSnapshot,
		Dispatch:    true,
	}, nil
}
