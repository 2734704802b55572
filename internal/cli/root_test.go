// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand_HasExpectedBasics(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "aurora-restore", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	versionCmd, _, err := cmd.Find([]string{"version"})
	require.NoError(t, err)
	assert.Equal(t, "version", versionCmd.Use)
}

func TestNewRootCommand_HasSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"invoke", "replay", "serve", "cleanup"} {
		found, _, err := cmd.Find([]string{name})
		require.NoErrorf(t, err, "expected to find %q subcommand", name)
		assert.Equal(t, name, found.Use)
	}
}

func TestVersionCommand_PrintsVersion(t *testing.T) {
	cmd := NewRootCommand()

	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "aurora-restore version")
}
