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
	"sync"

	"github.com/auroraops/restore-pipeline/internal/model"
)

// Recording is an in-memory Sink for tests.
type Recording struct {
	mu      sync.Mutex
	Metrics []model.Metric
}

// NewRecording constructs an empty Recording sink.
func NewRecording() *Recording { return &Recording{} }

// Update appends metric and never fails.
func (r *Recording) Update(ctx context.Context, metric model.Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Metrics = append(r.Metrics, metric)
	return nil
}

// All returns a snapshot of the recorded metrics.
func (r *Recording) All() []model.Metric {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Metric, len(r.Metrics))
	copy(out, r.Metrics)
	return out
}
