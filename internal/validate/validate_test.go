// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package validate

import "testing"

func TestRegion(t *testing.T) {
	valid := []string{"us-east-1", "eu-west-1", "ap-southeast-2"}
	for _, r := range valid {
		if err := Region(r); err != nil {
			t.Errorf("Region(%q) = %v, want nil", r, err)
		}
	}
	invalid := []string{"", "US-EAST-1", "useast1", "us-east"}
	for _, r := range invalid {
		if err := Region(r); err == nil {
			t.Errorf("Region(%q) = nil, want error", r)
		}
	}
}

func TestClusterID(t *testing.T) {
	if err := ClusterID("prod-aurora-cluster"); err != nil {
		t.Errorf("ClusterID valid case returned error: %v", err)
	}
	if err := ClusterID(""); err == nil {
		t.Error("ClusterID(\"\") expected error")
	}
	if err := ClusterID("-leading-dash"); err == nil {
		t.Error("ClusterID with leading dash expected error")
	}
	if err := ClusterID("has a space"); err == nil {
		t.Error("ClusterID with space expected error")
	}
}

func TestVPCConfig(t *testing.T) {
	if err := VPCConfig("vpc-123", []string{"subnet-1", "subnet-2"}, []string{"sg-1"}); err != nil {
		t.Errorf("VPCConfig valid case returned error: %v", err)
	}
	if err := VPCConfig("not-a-vpc", []string{"subnet-1"}, []string{"sg-1"}); err == nil {
		t.Error("VPCConfig with bad vpc id expected error")
	}
	if err := VPCConfig("vpc-123", nil, []string{"sg-1"}); err == nil {
		t.Error("VPCConfig with no subnets expected error")
	}
	if err := VPCConfig("vpc-123", []string{"subnet-1"}, []string{"bad-sg"}); err == nil {
		t.Error("VPCConfig with bad security group expected error")
	}
}

func TestMissingCredentialFields(t *testing.T) {
	creds := map[string]string{"database": "appdb", "username": "admin"}
	missing := MissingCredentialFields(creds, true)
	if len(missing) != 1 || missing[0] != "password" {
		t.Errorf("expected [password] missing, got %v", missing)
	}

	full := map[string]string{"database": "appdb", "username": "admin", "password": "secret"}
	if missing := MissingCredentialFields(full, true); len(missing) != 0 {
		t.Errorf("expected no missing fields, got %v", missing)
	}
}

func TestStructTagIntegration(t *testing.T) {
	type payload struct {
		Region    string `validate:"awsregion"`
		ClusterID string `validate:"clusterid"`
	}
	ok := payload{Region: "us-east-1", ClusterID: "prod-cluster"}
	if err := Struct("test_payload", ok); err != nil {
		t.Errorf("Struct() on valid payload returned error: %v", err)
	}

	bad := payload{Region: "nope", ClusterID: "prod-cluster"}
	if err := Struct("test_payload", bad); err == nil {
		t.Error("Struct() on invalid payload expected error")
	}
}
