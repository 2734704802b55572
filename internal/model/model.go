// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package model defines the persisted data shapes shared across the
// restore pipeline: operations, step records, audit events, and metrics.
package model

import "time"

// Step names the twelve workflow handlers. Values are stable strings because
// they round-trip through the state store, the dispatcher payload, and the
// event payload's step-specific identifiers.
type Step string

const (
	StepSnapshotCheck      Step = "snapshot_check"
	StepCopySnapshot       Step = "copy_snapshot"
	StepCheckCopyStatus    Step = "check_copy_status"
	StepDeleteRDS          Step = "delete_rds"
	StepCheckDeleteStatus  Step = "check_delete_status"
	StepRestoreSnapshot    Step = "restore_snapshot"
	StepCheckRestoreStatus Step = "check_restore_status"
	StepSetupDBUsers       Step = "setup_db_users"
	StepVerifyRestore      Step = "verify_restore"
	StepArchiveSnapshot    Step = "archive_snapshot"
	StepSNSNotification    Step = "sns_notification"
	StepCleanup            Step = "cleanup"
)

// Chain is the canonical DAG order. Polling steps (check_copy_status,
// check_delete_status, check_restore_status) self-loop rather than advance
// until their underlying cloud operation converges; cleanup is
// operator-triggered only and never appears here.
var Chain = []Step{
	StepSnapshotCheck,
	StepCopySnapshot,
	StepCheckCopyStatus,
	StepDeleteRDS,
	StepCheckDeleteStatus,
	StepRestoreSnapshot,
	StepCheckRestoreStatus,
	StepSetupDBUsers,
	StepVerifyRestore,
	StepArchiveSnapshot,
	StepSNSNotification,
}

// Next returns the step that follows s in the canonical chain, and false if
// s is terminal or unknown.
func Next(s Step) (Step, bool) {
	for i, cur := range Chain {
		if cur == s && i+1 < len(Chain) {
			return Chain[i+1], true
		}
	}
	return "", false
}

// StepRecord is one row per (operation, step) in the state store.
// Step-specific payload fields live in Payload rather than as typed struct
// fields: the schema is append-only and consumers must tolerate unknown
// keys, which a flat map expresses more naturally than a growing struct.
type StepRecord struct {
	OperationID string         `json:"operation_id"`
	Step        Step           `json:"step"`
	Timestamp   int64          `json:"timestamp"`
	Success     bool           `json:"success"`
	Error       string         `json:"error,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// Get returns a payload value and whether it was present.
func (r *StepRecord) Get(key string) (any, bool) {
	if r == nil || r.Payload == nil {
		return nil, false
	}
	v, ok := r.Payload[key]
	return v, ok
}

// GetString returns a payload value coerced to string, or "" if absent.
func (r *StepRecord) GetString(key string) string {
	v, ok := r.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetInt returns a payload value coerced to int, or 0 if absent or not
// numeric. JSON decoding round-trips numbers as float64, so both float64
// and int are accepted.
func (r *StepRecord) GetInt(key string) int {
	v, ok := r.Get(key)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

// GetBool returns a payload value coerced to bool, or false if absent.
func (r *StepRecord) GetBool(key string) bool {
	v, ok := r.Get(key)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// AuditStatus enumerates AuditEvent.Status values.
type AuditStatus string

const (
	AuditSuccess    AuditStatus = "success"
	AuditFailed     AuditStatus = "failed"
	AuditSkipped    AuditStatus = "skipped"
	AuditInProgress AuditStatus = "in_progress"
	AuditWaiting    AuditStatus = "waiting"
)

// AuditTTL is the retention window for audit events.
const AuditTTL = 30 * 24 * time.Hour

// AuditEvent is an append-only log row.
type AuditEvent struct {
	EventID     string         `json:"event_id"`
	OperationID string         `json:"operation_id"`
	EventType   Step           `json:"event_type"`
	Status      AuditStatus    `json:"status"`
	Timestamp   time.Time      `json:"timestamp"`
	Details     map[string]any `json:"details,omitempty"`
	Environment string         `json:"environment"`
}

// MetricUnit enumerates the two units defined for Metric.
type MetricUnit string

const (
	UnitCount   MetricUnit = "Count"
	UnitSeconds MetricUnit = "Seconds"
)

// Metric is a single numeric observation, tagged by operation and
// environment.
type Metric struct {
	Namespace   string
	Name        string
	Value       float64
	Unit        MetricUnit
	OperationID string
	Environment string
}
