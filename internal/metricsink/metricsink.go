// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package metricsink emits the numeric counters/gauges behind
// update_metric(operation_id, name, value, unit), which is best-effort,
// the same contract as the audit sink. It follows cuemby-warren's use of
// prometheus/client_golang (pkg/metrics/metrics.go) rather than the
// teacher, which has no metrics package of its own.
package metricsink

import (
	"context"

	"github.com/auroraops/restore-pipeline/internal/model"
)

// Sink records Metrics. Implementations must not let a recording failure
// abort the calling handler.
type Sink interface {
	Update(ctx context.Context, metric model.Metric) error
}

// Noop discards every metric.
type Noop struct{}

// Update does nothing and never fails.
func (Noop) Update(ctx context.Context, metric model.Metric) error { return nil }
