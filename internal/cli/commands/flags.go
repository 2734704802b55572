// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package commands contains Cobra subcommands for the aurora-restore CLI.
package commands

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/auroraops/restore-pipeline/internal/config"
)

// ResolvedFlags holds the process-level wiring settings: precedence is
// command-line flag, then environment variable, then built-in default
// (mirrors the teacher's ResolveFlags shape).
type ResolvedFlags struct {
	Environment  string
	DatabaseURL  string
	StateTable   string
	AuditTable   string
	ParamPrefix  string
	QueueURL     string
	MetricsAddr  string
	ConfigFile   string
	Verbose      bool
}

// ResolveFlags resolves the root command's persistent flags.
func ResolveFlags(cmd *cobra.Command) *ResolvedFlags {
	root := cmd.Root()

	envFlag, _ := root.PersistentFlags().GetString("environment")
	dbFlag, _ := root.PersistentFlags().GetString("database-url")
	stateFlag, _ := root.PersistentFlags().GetString("state-table")
	auditFlag, _ := root.PersistentFlags().GetString("audit-table")
	prefixFlag, _ := root.PersistentFlags().GetString("param-prefix")
	queueFlag, _ := root.PersistentFlags().GetString("queue-url")
	metricsFlag, _ := root.PersistentFlags().GetString("metrics-addr")
	configFlag, _ := root.PersistentFlags().GetString("config")
	verboseFlag, _ := root.PersistentFlags().GetBool("verbose")

	return &ResolvedFlags{
		Environment: resolveString(envFlag, os.Getenv("ENVIRONMENT"), "dev"),
		DatabaseURL: resolveString(dbFlag, os.Getenv("DATABASE_URL"), ""),
		StateTable:  resolveString(stateFlag, os.Getenv("STATE_TABLE_NAME"), "aurora-restore-state"),
		AuditTable:  resolveString(auditFlag, os.Getenv("AUDIT_TABLE_NAME"), "aurora-restore-audit"),
		ParamPrefix: resolveString(prefixFlag, os.Getenv("SSM_PARAM_PREFIX"), "aurora-restore"),
		QueueURL:    resolveString(queueFlag, os.Getenv("SQS_QUEUE_URL"), ""),
		MetricsAddr: resolveString(metricsFlag, os.Getenv("METRICS_ADDR"), ":9090"),
		ConfigFile:  resolveString(configFlag, os.Getenv("AURORA_RESTORE_CONFIG"), config.DefaultFileDefaultsPath()),
		Verbose:     resolveBool(verboseFlag, os.Getenv("VERBOSE")),
	}
}

func resolveString(flag, env, def string) string {
	if flag != "" {
		return flag
	}
	if env != "" {
		return env
	}
	return def
}

func resolveBool(flag bool, env string) bool {
	if flag {
		return true
	}
	parsed, err := strconv.ParseBool(env)
	return err == nil && parsed
}
