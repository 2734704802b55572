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
	"errors"
	"testing"

	"github.com/auroraops/restore-pipeline/internal/model"
)

type fakeParamSource struct {
	values map[string]string
	err    error
}

func (f *fakeParamSource) Fetch(ctx context.Context, prefix, environment string) (map[string]string, error) {
	return f.values, f.err
}

func TestResolvePriorityOrder(t *testing.T) {
	r := &Resolver{
		Params: &fakeParamSource{values: map[string]string{
			"source_region": "ap-southeast-2",
			"port":          "9999",
		}},
	}

	prior := &model.StepRecord{
		Payload: map[string]any{
			"target_region": "eu-central-1",
		},
	}

	event := map[string]string{
		"source_region":     "us-east-1",
		"target_cluster_id": "restored-cluster",
		"source_cluster_id": "prod-cluster",
	}

	t.Setenv("TARGET_REGION", "eu-west-1")

	cfg, err := r.Resolve(context.Background(), model.StepSnapshotCheck, event, prior)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if got := cfg.Get("source_region"); got != "us-east-1" {
		t.Errorf("event should win: got %q", got)
	}
	if got := cfg.SourceOf("source_region"); got != SourceEvent {
		t.Errorf("expected SourceEvent, got %s", got)
	}

	if got := cfg.Get("target_region"); got != "eu-central-1" {
		t.Errorf("state should win over env/ssm: got %q", got)
	}

	if got := cfg.Get("port"); got != "9999" {
		t.Errorf("ssm should win over default: got %q", got)
	}

	if got := cfg.Get("snapshot_prefix"); got != "aurora-snapshot" {
		t.Errorf("expected default snapshot_prefix, got %q", got)
	}
}

func TestResolveMissingRequired(t *testing.T) {
	r := &Resolver{}
	_, err := r.Resolve(context.Background(), model.StepSnapshotCheck, nil, nil)
	if !errors.Is(err, ErrMissingRequired) {
		t.Fatalf("expected ErrMissingRequired, got %v", err)
	}
}

func TestCoerceTypedInvalidIntRetainsDefault(t *testing.T) {
	r := &Resolver{}
	event := map[string]string{
		"source_region":     "us-east-1",
		"target_region":     "us-east-1",
		"source_cluster_id": "prod-cluster",
		"port":              "not-a-number",
	}
	cfg, err := r.Resolve(context.Background(), model.StepSnapshotCheck, event, nil)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got := cfg.Get("port"); got != "5432" {
		t.Errorf("expected port to retain default after bad coercion, got %q", got)
	}
}

func TestGetBoolTruthySet(t *testing.T) {
	cfg := &Config{values: map[string]string{
		"a": "TRUE", "b": "1", "c": "Yes", "d": "n", "e": "",
	}}
	for _, k := range []string{"a", "b", "c"} {
		if !cfg.GetBool(k) {
			t.Errorf("GetBool(%q) = false, want true", k)
		}
	}
	for _, k := range []string{"d", "e"} {
		if cfg.GetBool(k) {
			t.Errorf("GetBool(%q) = true, want false", k)
		}
	}
}

func TestGetCSV(t *testing.T) {
	cfg := &Config{values: map[string]string{
		"vpc_security_group_ids": "sg-1, sg-2,sg-3",
	}}
	got := cfg.GetCSV("vpc_security_group_ids")
	want := []string{"sg-1", "sg-2", "sg-3"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
