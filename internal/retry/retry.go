// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package retry implements the exponential backoff policy mandated
// for classify.TransientCloud errors: base 4s, cap 60s, up to 10 attempts,
// applied inside the cloud adapter rather than by the engine core (so a
// handler only ever observes the final outcome of a transient condition).
// It is grounded on jordigilh-kubernaut's go.mod, which carries
// cenkalti/backoff/v5 as the pack's only retry/backoff library.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/auroraops/restore-pipeline/internal/classify"
)

const (
	baseInterval = 4 * time.Second
	maxInterval  = 60 * time.Second
	maxAttempts  = 10
)

// Cloud retries fn while it returns a classify.TransientCloud error, using
// the base-4s/cap-60s/10-attempt policy. Any other error, including a
// non-classified one, is returned immediately without retrying, since
// only TransientCloud is defined as recoverable by backoff.
func Cloud[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = baseInterval
	b.MaxInterval = maxInterval

	return backoff.Retry(ctx, func() (T, error) {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if classify.KindOf(err) != classify.KindTransientCloud {
			return result, backoff.Permanent(err)
		}
		return result, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(maxAttempts))
}

// IsExhausted reports whether err represents backoff giving up after
// maxAttempts rather than the operation itself failing permanently.
func IsExhausted(err error) bool {
	return err != nil && classify.KindOf(err) == classify.KindTransientCloud
}
