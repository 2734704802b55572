// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auroraops/restore-pipeline/internal/audit"
	"github.com/auroraops/restore-pipeline/internal/classify"
	"github.com/auroraops/restore-pipeline/internal/clock"
	"github.com/auroraops/restore-pipeline/internal/cloud"
	"github.com/auroraops/restore-pipeline/internal/cloudaws"
	"github.com/auroraops/restore-pipeline/internal/config"
	"github.com/auroraops/restore-pipeline/internal/dbusers"
	"github.com/auroraops/restore-pipeline/internal/dispatch"
	"github.com/auroraops/restore-pipeline/internal/engine"
	"github.com/auroraops/restore-pipeline/internal/logging"
	"github.com/auroraops/restore-pipeline/internal/metricsink"
	"github.com/auroraops/restore-pipeline/internal/model"
	"github.com/auroraops/restore-pipeline/internal/statestore"
	"github.com/auroraops/restore-pipeline/internal/verify"
)

// deployment bundles the long-lived resources a command needs to build an
// *engine.Engine: the Postgres pool backing state/audit, the AWS client
// factory backing the cloud adapters, and the metrics sink. Callers are
// responsible for closing Pool when done.
type deployment struct {
	Pool      *pgxpool.Pool
	Store     *statestore.Postgres
	Audit     *audit.Postgres
	Metrics   *metricsink.Prometheus
	Factory   *cloudaws.ClientFactory
	Resolver  *config.Resolver
	Log       logging.Logger
}

// buildDeployment connects to Postgres, ensures the state/audit schema, and
// constructs the AWS-backed collaborators every step handler needs.
func buildDeployment(ctx context.Context, flags *ResolvedFlags, log logging.Logger) (*deployment, error) {
	if flags.DatabaseURL == "" {
		return nil, fmt.Errorf("--database-url (or DATABASE_URL) is required")
	}

	pool, err := pgxpool.New(ctx, flags.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	store := statestore.NewPostgres(pool, flags.StateTable)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring state schema: %w", err)
	}

	auditSink := audit.NewPostgres(pool, flags.AuditTable)
	if err := auditSink.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring audit schema: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	fileDefaults, err := config.LoadFileDefaults(flags.ConfigFile)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("loading config defaults file: %w", err)
	}

	resolver := &config.Resolver{
		Params:       config.NewSSMParamSource(ssm.NewFromConfig(awsCfg)),
		ParamPrefix:  flags.ParamPrefix,
		FileDefaults: fileDefaults,
		Log:          log,
	}

	return &deployment{
		Pool:     pool,
		Store:    store,
		Audit:    auditSink,
		Metrics:  metricsink.NewPrometheus("AuroraRestore"),
		Factory:  cloudaws.NewClientFactory(),
		Resolver: resolver,
		Log:      log,
	}, nil
}

func (d *deployment) Close() {
	d.Pool.Close()
}

// buildEngine wires every step handler against d's collaborators and the
// given Dispatcher (Local for invoke/replay, SQS for serve).
func (d *deployment) buildEngine(dispatcher dispatch.Dispatcher) *engine.Engine {
	rdsClient := cloudaws.NewRDS(d.Factory)
	secretsClient := cloudaws.NewSecrets(d.Factory)
	snsClient := cloudaws.NewSNS(d.Factory)

	var snapshots cloud.SnapshotClient = rdsClient
	var clusters cloud.ClusterClient = rdsClient
	var secrets cloud.SecretClient = secretsClient
	var notifications cloud.NotificationClient = snsClient

	steps := map[model.Step]engine.Step{
		model.StepSnapshotCheck:      engine.SnapshotCheck{Snapshots: snapshots},
		model.StepCopySnapshot:       engine.CopySnapshot{Snapshots: snapshots},
		model.StepCheckCopyStatus:    engine.CheckCopyStatus{Snapshots: snapshots},
		model.StepDeleteRDS:          engine.DeleteRDS{Clusters: clusters},
		model.StepCheckDeleteStatus:  engine.CheckDeleteStatus{Clusters: clusters},
		model.StepRestoreSnapshot:    engine.RestoreSnapshot{Clusters: clusters, Snapshots: snapshots},
		model.StepCheckRestoreStatus: engine.CheckRestoreStatus{Clusters: clusters},
		model.StepSetupDBUsers:       engine.SetupDBUsers{Secrets: secrets, Provisioner: dbusers.NewProvisioner(30 * time.Second)},
		model.StepVerifyRestore:      engine.VerifyRestore{Secrets: secrets, Verifier: verify.Verifier{}},
		model.StepArchiveSnapshot:    engine.ArchiveSnapshot{Snapshots: snapshots},
		model.StepSNSNotification:    engine.SNSNotification{Notifications: notifications},
	}

	return &engine.Engine{
		Steps:    steps,
		Store:    d.Store,
		Audit:    d.Audit,
		Metrics:  d.Metrics,
		Dispatch: dispatcher,
		Resolver: d.Resolver,
		Clock:    clock.System{},
		Log:      d.Log,
	}
}

// buildCleanup wires the standalone Cleanup operation against d's
// collaborators.
func (d *deployment) buildCleanup() engine.Cleanup {
	return engine.Cleanup{
		Store:     d.Store,
		Snapshots: cloudaws.NewRDS(d.Factory),
	}
}

// newSQSDispatcher constructs the production Dispatcher backing the serve
// command.
func newSQSDispatcher(ctx context.Context, queueURL string) (*dispatch.SQS, error) {
	if queueURL == "" {
		return nil, fmt.Errorf("--queue-url (or SQS_QUEUE_URL) is required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return dispatch.NewSQS(sqs.NewFromConfig(awsCfg), queueURL), nil
}

// newSQSReceiver constructs the raw *sqs.Client the serve command polls
// with; kept distinct from dispatch.SQS (the Dispatcher used inside the
// engine to enqueue the *next* step) since consuming and producing are
// different concerns even though they share one queue.
func newSQSReceiver(ctx context.Context) (*sqs.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return sqs.NewFromConfig(awsCfg), nil
}

// classifyCLIError maps a business-level error to a non-zero process exit
// by reusing the same classify.Kind table the engine's response envelope
// uses, rather than inventing a second error taxonomy for the CLI.
func classifyCLIError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", classify.KindOf(err).String(), err)
}
