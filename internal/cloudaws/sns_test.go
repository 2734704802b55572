// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package cloudaws

import "testing"

func TestNewSNSWrapsFactory(t *testing.T) {
	factory := NewClientFactory()
	s := NewSNS(factory)
	if s.Factory != factory {
		t.Error("expected NewSNS to retain the given factory")
	}
}
