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
	"strconv"
	"time"

	"github.com/auroraops/restore-pipeline/internal/classify"
	"github.com/auroraops/restore-pipeline/internal/cloud"
	"github.com/auroraops/restore-pipeline/internal/dbusers"
	"github.com/auroraops/restore-pipeline/internal/model"
	"github.com/auroraops/restore-pipeline/internal/validate"
)

// SetupDBUsers implements setup_db_users: idempotent role
// provisioning for the application and read-only database users.
type SetupDBUsers struct {
	Secrets     cloud.SecretClient
	Provisioner *dbusers.Provisioner
}

func (s SetupDBUsers) Act(ctx context.Context, rc *RunContext) (Outcome, error) {
	targetRegion := rc.Config.Get("target_region")
	endpoint := rc.Prior.GetString("cluster_endpoint")
	port := rc.Prior.GetInt("cluster_port")
	if port == 0 {
		port = 5432
		if n, err := strconv.Atoi(rc.Config.Get("port")); err == nil && n > 0 {
			port = n
		}
	}

	master, err := s.Secrets.GetSecret(ctx, targetRegion, rc.Config.Get("master_credentials_secret_id"))
	if err != nil {
		return Outcome{}, classify.New(classify.KindFatalCloud, "fetching master credentials", err)
	}
	if missing := validate.MissingCredentialFields(master, true); len(missing) > 0 {
		return Outcome{}, classify.New(classify.KindValidation, "master secret payload", fmt.Errorf("missing fields: %v", missing))
	}

	app, err := s.Secrets.GetSecret(ctx, targetRegion, rc.Config.Get("app_credentials_secret_id"))
	if err != nil {
		return Outcome{}, classify.New(classify.KindFatalCloud, "fetching application credentials", err)
	}
	if missing := validate.MissingCredentialFields(app, false); len(missing) > 0 {
		return Outcome{}, classify.New(classify.KindValidation, "application secret payload", fmt.Errorf("missing fields: %v", missing))
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=require",
		master["username"], master["password"], endpoint, port, master["database"])

	roles := []dbusers.Role{
		{Name: app["app_username"], Password: app["app_password"], ReadOnly: false},
		{Name: app["readonly_username"], Password: app["readonly_password"], ReadOnly: true},
	}

	connectTimeout := 30 * time.Second
	if secs, ok := rc.Config.GetInt("db_connection_timeout"); ok && secs > 0 {
		connectTimeout = time.Duration(secs) * time.Second
	}
	s.Provisioner.ConnectTimeout = connectTimeout

	if err := s.Provisioner.SetupUsers(ctx, dsn, master["database"], roles); err != nil {
		return Outcome{}, err
	}

	payload := forwardPayload(rc)
	payload["cluster_endpoint"] = endpoint
	payload["cluster_port"] = port
	payload["db_users_status"] = "provisioned"

	return Outcome{
		Payload:     payload,
		AuditStatus: model.AuditSuccess,
		Next:        model.StepVerifyRestore,
		Dispatch:    true,
	}, nil
}
