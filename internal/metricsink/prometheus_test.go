// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package metricsink

import (
	"context"
	"testing"

	"github.com/auroraops/restore-pipeline/internal/model"
)

func TestPrometheusUpdateCountAndSeconds(t *testing.T) {
	sink := NewPrometheus("aurora_restore")
	ctx := context.Background()

	if err := sink.Update(ctx, model.Metric{
		Namespace: "AuroraRestore", Name: "snapshot_check_failures", Value: 1,
		Unit: model.UnitCount, OperationID: "op-1", Environment: "dev",
	}); err != nil {
		t.Fatalf("Update (count) returned error: %v", err)
	}

	if err := sink.Update(ctx, model.Metric{
		Namespace: "AuroraRestore", Name: "copy_snapshot_duration", Value: 12.5,
		Unit: model.UnitSeconds, OperationID: "op-1", Environment: "dev",
	}); err != nil {
		t.Fatalf("Update (seconds) returned error: %v", err)
	}

	if _, ok := sink.counters["snapshot_check_failures"]; !ok {
		t.Error("expected a counter to be registered for snapshot_check_failures")
	}
	if _, ok := sink.gauges["copy_snapshot_duration"]; !ok {
		t.Error("expected a gauge to be registered for copy_snapshot_duration")
	}
}

func TestSanitizeName(t *testing.T) {
	if got := sanitizeName("step.name-with space"); got != "step_name_with_space" {
		t.Errorf("sanitizeName produced %q", got)
	}
}

func TestRecordingCapturesMetrics(t *testing.T) {
	sink := NewRecording()
	_ = sink.Update(context.Background(), model.Metric{Name: "x", Value: 1})
	if len(sink.All()) != 1 {
		t.Fatalf("expected one recorded metric, got %d", len(sink.All()))
	}
}
