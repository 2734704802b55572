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
	"testing"
	"time"

	"github.com/auroraops/restore-pipeline/internal/model"
)

func TestLocalDispatchImmediate(t *testing.T) {
	l := NewLocal(1)
	defer l.Close()

	if err := l.Dispatch(context.Background(), "op-1", model.StepCopySnapshot, map[string]any{"k": "v"}, 0); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	select {
	case job := <-l.Jobs():
		if job.OperationID != "op-1" || job.Step != model.StepCopySnapshot {
			t.Errorf("unexpected job: %+v", job)
		}
	case <-time.After(time.Second):
		t.Fatal("expected an immediate job, got none")
	}
}

func TestLocalDispatchDelayed(t *testing.T) {
	l := NewLocal(1)
	defer l.Close()

	start := time.Now()
	if err := l.Dispatch(context.Background(), "op-2", model.StepCheckCopyStatus, nil, 50*time.Millisecond); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	select {
	case <-l.Jobs():
		if time.Since(start) < 50*time.Millisecond {
			t.Error("job arrived before its delay elapsed")
		}
	case <-time.After(time.Second):
		t.Fatal("expected a delayed job, got none")
	}
}

func TestLocalDispatchContextCancelSuppressesImmediateSend(t *testing.T) {
	l := NewLocal(0)
	defer l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.Dispatch(ctx, "op-3", model.StepCopySnapshot, nil, 0); err == nil {
		t.Error("expected an error dispatching on an already-canceled context")
	}
}

func TestLocalCloseStopsPendingDelayedDispatch(t *testing.T) {
	l := NewLocal(1)

	if err := l.Dispatch(context.Background(), "op-4", model.StepCheckRestoreStatus, nil, time.Hour); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	l.Close()

	select {
	case job, ok := <-l.Jobs():
		if ok {
			t.Errorf("expected no job to ever arrive after Close, got %+v", job)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected Jobs channel to be closed promptly after Close")
	}
}
