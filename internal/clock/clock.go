// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package clock supplies the time and operation-id primitives the engine
// needs for deterministic testing: wall time for StepRecord timestamps and
// random operation-id generation.
package clock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts wall-clock time so tests can inject a fixed instant
// instead of depending on time.Now directly.
type Clock interface {
	Now() time.Time
}

// System is the production Clock backed by time.Now.
type System struct{}

// Now returns the current wall-clock time.
func (System) Now() time.Time { return time.Now().UTC() }

// Fixed is a Clock that always returns the same instant, for tests.
type Fixed struct {
	At time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time { return f.At }

// NewOperationID mints an operation_id in the format op-<unix_seconds>-<8 hex>.
func NewOperationID(c Clock) string {
	return fmt.Sprintf("op-%d-%s", c.Now().Unix(), uuid.New().String()[:8])
}
