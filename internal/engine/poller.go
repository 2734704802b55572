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
	"time"

	"github.com/auroraops/restore-pipeline/internal/classify"
	"github.com/auroraops/restore-pipeline/internal/model"
)

// pollOutcome classifies one probe of a long-running cloud operation
// against the poller's converged/failed state sets: a single reusable
// poller strategy parameterized by (describe, converged set, failed set,
// not-found handling, attempt bound), shared by check_copy_status and
// check_restore_status. check_delete_status does its own describe call
// and does not use the poller.
type pollOutcome int

const (
	pollConverged pollOutcome = iota
	pollFailed
	pollWaiting
)

// defaultPollDelay backs every polling step's self-dispatch when its
// configured retry-delay key is absent or invalid, defaulting to 60s for
// copy/restore/delete status retry delays.
const defaultPollDelay = 60 * time.Second

// poller drives one probe-and-classify cycle for a polling step. The
// handler supplies describe (the cloud lookup), the state sets that mean
// "done" or "failed", and whether a not-found result should be treated as
// still-converging (check_copy_status, bounded by maxAttempts) or as the
// terminal success condition itself (pollConverged).
type poller struct {
	describe         func(ctx context.Context) (status string, found bool, err error)
	converged        map[string]bool
	failed           map[string]bool
	notFoundMeans    pollOutcome // pollWaiting or pollConverged
	attempt          int
	maxAttempts      int // 0 means unbounded
}

// poll runs one probe and returns the outcome, the raw status observed
// ("not-found" when the describe call reported absence), and an error only
// when describe itself failed, the status is in the failed set, or the
// attempt bound was exceeded.
func (p poller) poll(ctx context.Context) (pollOutcome, string, error) {
	status, found, err := p.describe(ctx)
	if err != nil {
		return pollFailed, "", err
	}
	if !found {
		if p.notFoundMeans == pollConverged {
			return pollConverged, "not-found", nil
		}
		if p.maxAttempts > 0 && p.attempt >= p.maxAttempts {
			return pollFailed, "not-found", classify.New(classify.KindFatalCloud, "polling timed out", fmt.Errorf("exceeded %d attempts awaiting convergence", p.maxAttempts))
		}
		return pollWaiting, "not-found", nil
	}
	if p.converged[status] {
		return pollConverged, status, nil
	}
	if p.failed[status] {
		return pollFailed, status, classify.New(classify.KindFatalCloud, "polling", fmt.Errorf("operation failed with status: %s", status))
	}
	if p.maxAttempts > 0 && p.attempt >= p.maxAttempts {
		return pollFailed, status, classify.New(classify.KindFatalCloud, "polling timed out", fmt.Errorf("exceeded %d attempts awaiting convergence, last status: %s", p.maxAttempts, status))
	}
	return pollWaiting, status, nil
}

// waitOutcome builds the Outcome for a self-dispatch "still waiting"
// result: same step, after delay, with the attempt counter incremented.
func waitOutcome(step model.Step, payload map[string]any, attempt int, delay time.Duration) Outcome {
	out := map[string]any{}
	for k, v := range payload {
		out[k] = v
	}
	out["attempt"] = attempt + 1
	return Outcome{
		Payload:       out,
		AuditStatus:   model.AuditWaiting,
		Next:          step,
		Dispatch:      true,
		DispatchDelay: delay,
	}
}
