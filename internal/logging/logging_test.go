// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package logging

import "testing"

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"DEBUG":      LevelDebug,
		"INFO":       LevelInfo,
		"WARNING":    LevelWarn,
		"ERROR":      LevelError,
		"":           LevelInfo,
		"bogus-case": LevelInfo,
	}

	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if LevelDebug.String() != "DEBUG" {
		t.Errorf("unexpected Level.String(): %s", LevelDebug.String())
	}
	if LevelWarn.String() != "WARN" {
		t.Errorf("unexpected Level.String(): %s", LevelWarn.String())
	}
}

func TestLoggerWithFields(t *testing.T) {
	base := NewLogger(LevelDebug)
	child := base.WithFields(NewField("operation_id", "op-1"))
	if child == nil {
		t.Fatal("WithFields returned nil logger")
	}
	// Should not panic with nested fields.
	child.Info("test message", NewField("step", "snapshot_check"))
}
