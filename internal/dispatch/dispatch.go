// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package dispatch implements the step dispatcher: enqueuing
// an asynchronous invocation of a named step, at-least-once, optionally
// delayed (used by the polling state machines). Local is an in-process
// dispatcher for the CLI's invoke/replay commands and tests; SQS is the
// production dispatcher backing the serve command.
package dispatch

import (
	"context"
	"time"

	"github.com/auroraops/restore-pipeline/internal/model"
)

// Job is one unit of dispatched work: run step for operationID with payload.
type Job struct {
	OperationID string
	Step        model.Step
	Payload     map[string]any
}

// Dispatcher enqueues the next step invocation. Delivery is at-least-once;
// handlers must be idempotent.
type Dispatcher interface {
	Dispatch(ctx context.Context, operationID string, step model.Step, payload map[string]any, delay time.Duration) error
}
