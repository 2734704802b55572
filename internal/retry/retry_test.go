// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/auroraops/restore-pipeline/internal/classify"
)

func TestCloudSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	result, err := Cloud(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", classify.New(classify.KindTransientCloud, "describe", errors.New("throttled"))
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Cloud returned error: %v", err)
	}
	if result != "ok" {
		t.Errorf("expected ok, got %q", result)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestCloudDoesNotRetryNonTransient(t *testing.T) {
	attempts := 0
	_, err := Cloud(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		return "", classify.New(classify.KindFatalCloud, "describe", errors.New("access denied"))
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if attempts != 1 {
		t.Errorf("expected exactly 1 attempt for a non-transient error, got %d", attempts)
	}
}
