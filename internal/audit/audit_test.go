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
	"testing"
	"time"

	"github.com/auroraops/restore-pipeline/internal/model"
)

func TestRecordingLogAppends(t *testing.T) {
	sink := NewRecording()
	event := &model.AuditEvent{
		EventID:     "snapshot_check-" + time.Now().UTC().Format(time.RFC3339),
		OperationID: "op-1",
		EventType:   model.StepSnapshotCheck,
		Status:      model.AuditSuccess,
		Timestamp:   time.Now().UTC(),
		Environment: "dev",
	}

	if err := sink.Log(context.Background(), event); err != nil {
		t.Fatalf("Log returned error: %v", err)
	}

	all := sink.All()
	if len(all) != 1 || all[0].OperationID != "op-1" {
		t.Fatalf("expected one recorded event for op-1, got %v", all)
	}
}

func TestNoopNeverFails(t *testing.T) {
	if err := (Noop{}).Log(context.Background(), &model.AuditEvent{}); err != nil {
		t.Errorf("Noop.Log returned error: %v", err)
	}
}
