// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// SQL execution itself is not exercised here: the pack has no sqlmock-style
// fake for Postgres, so only the pure quoting helpers, the part of this
// package reachable without a live connection, are tested.
package dbusers

import "testing"

func TestQuoteIdent(t *testing.T) {
	if got := quoteIdent("app_user"); got != `"app_user"` {
		t.Errorf("quoteIdent = %q", got)
	}
	if got := quoteIdent(`weird"name`); got != `"weird""name"` {
		t.Errorf("quoteIdent escaping = %q", got)
	}
}

func TestQuoteLiteral(t *testing.T) {
	if got := quoteLiteral("s3cr3t"); got != `'s3cr3t'` {
		t.Errorf("quoteLiteral = %q", got)
	}
	if got := quoteLiteral("it's"); got != `'it''s'` {
		t.Errorf("quoteLiteral escaping = %q", got)
	}
}

func TestNewProvisionerDefaultsTimeout(t *testing.T) {
	p := NewProvisioner(0)
	if p.ConnectTimeout <= 0 {
		t.Error("expected a positive default connect timeout")
	}
}
