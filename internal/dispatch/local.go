// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/auroraops/restore-pipeline/internal/model"
)

// Local is an in-process, single-instance Dispatcher. It backs the CLI's
// invoke/replay commands, where a single operator process drives a single
// operation to completion without a durable broker. Callers that need to
// know when an operation has run to its terminal step track their own
// WaitGroup around Dispatch; Local itself only moves jobs from dispatch to
// delivery.
type Local struct {
	jobs   chan Job
	wg     sync.WaitGroup
	closed chan struct{}
	once   sync.Once
}

// NewLocal constructs a Local dispatcher with the given job buffer size;
// a size of zero or less gives a buffer of 16.
func NewLocal(buffer int) *Local {
	if buffer <= 0 {
		buffer = 16
	}
	return &Local{jobs: make(chan Job, buffer), closed: make(chan struct{})}
}

// Dispatch enqueues job immediately, or after delay elapses. Dispatch
// returns as soon as the job is scheduled; it does not wait for delivery.
func (l *Local) Dispatch(ctx context.Context, operationID string, step model.Step, payload map[string]any, delay time.Duration) error {
	job := Job{OperationID: operationID, Step: step, Payload: payload}

	if delay <= 0 {
		return l.send(ctx, job)
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			select {
			case l.jobs <- job:
			case <-l.closed:
			}
		case <-l.closed:
		case <-ctx.Done():
		}
	}()
	return nil
}

func (l *Local) send(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case l.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Jobs returns the channel new dispatches arrive on.
func (l *Local) Jobs() <-chan Job { return l.jobs }

// Close stops any pending delayed dispatches and closes the job channel.
// Callers must ensure no further Dispatch calls are in flight.
func (l *Local) Close() {
	l.once.Do(func() {
		close(l.closed)
		l.wg.Wait()
		close(l.jobs)
	})
}
