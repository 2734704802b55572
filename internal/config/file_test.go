// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/auroraops/restore-pipeline/internal/model"
)

func TestLoadFileDefaultsMissingFileIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.yml")

	defaults, err := LoadFileDefaults(path)
	if err != nil {
		t.Fatalf("expected no error for a missing file, got %v", err)
	}
	if defaults != nil {
		t.Errorf("expected a nil map for a missing file, got %v", defaults)
	}
}

func TestLoadFileDefaultsParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aurora-restore.yml")
	contents := "defaults:\n  source_region: us-east-1\n  port: \"5432\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	defaults, err := LoadFileDefaults(path)
	if err != nil {
		t.Fatalf("LoadFileDefaults returned error: %v", err)
	}
	if defaults["source_region"] != "us-east-1" {
		t.Errorf("expected source_region us-east-1, got %q", defaults["source_region"])
	}
	if defaults["port"] != "5432" {
		t.Errorf("expected port 5432, got %q", defaults["port"])
	}
}

func TestLoadFileDefaultsRejectsDirectory(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFileDefaults(dir); err == nil {
		t.Error("expected an error when path is a directory")
	}
}

func TestLoadFileDefaultsRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aurora-restore.yml")
	if err := os.WriteFile(path, []byte("defaults: [this is not a map"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := LoadFileDefaults(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestResolverFileDefaultsFillsBelowSSMAboveHardcodedDefault(t *testing.T) {
	r := &Resolver{
		FileDefaults: map[string]string{
			"snapshot_prefix": "custom-prefix",
		},
	}

	event := map[string]string{
		"source_region":     "us-east-1",
		"target_region":     "us-east-1",
		"source_cluster_id": "prod-cluster",
	}

	cfg, err := r.Resolve(context.Background(), model.StepSnapshotCheck, event, nil)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got := cfg.Get("snapshot_prefix"); got != "custom-prefix" {
		t.Errorf("expected file-defaults value to win over the hardcoded default, got %q", got)
	}
	if got := cfg.SourceOf("snapshot_prefix"); got != SourceDefault {
		t.Errorf("expected SourceDefault, got %s", got)
	}
}
