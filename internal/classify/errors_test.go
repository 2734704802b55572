// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package classify

import (
	"errors"
	"testing"
)

func TestStatusCode(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:         400,
		KindPreconditionFailed: 400,
		KindNotFound:           404,
		KindTransientCloud:     500,
		KindFatalCloud:         500,
		KindSQL:                500,
		KindAlreadyExists:      200,
	}
	for kind, want := range cases {
		if got := kind.StatusCode(); got != want {
			t.Errorf("%s.StatusCode() = %d, want %d", kind, got, want)
		}
	}
}

func TestIsMatchesByKind(t *testing.T) {
	err := New(KindNotFound, "snapshot lookup", errors.New("boom"))
	if !errors.Is(err, NotFound) {
		t.Fatal("expected errors.Is(err, NotFound) to be true")
	}
	if errors.Is(err, AlreadyExists) {
		t.Fatal("expected errors.Is(err, AlreadyExists) to be false")
	}
}

func TestKindOfUnclassifiedDefaultsToFatal(t *testing.T) {
	if KindOf(errors.New("raw error")) != KindFatalCloud {
		t.Fatal("expected unclassified errors to default to KindFatalCloud")
	}
	if KindOf(nil) != KindNone {
		t.Fatal("expected nil error to classify as KindNone")
	}
}
