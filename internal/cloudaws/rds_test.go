// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Calls that round-trip through *rds.Client aren't covered here: the pack
// carries no AWS SDK v2 HTTP-transport fake, so exercising DescribeDBClusters
// et al. would require a live (or recorded) endpoint. The pure classification
// and scope-ordering logic below is tested directly instead.
package cloudaws

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/aws/smithy-go"

	"github.com/auroraops/restore-pipeline/internal/classify"
	"github.com/auroraops/restore-pipeline/internal/cloud"
)

func TestIsNotFoundMatchesSnapshotAndClusterFaults(t *testing.T) {
	if !isNotFound(&types.DBClusterSnapshotNotFoundFault{}) {
		t.Error("expected snapshot-not-found fault to match")
	}
	if !isNotFound(&types.DBClusterNotFoundFault{}) {
		t.Error("expected cluster-not-found fault to match")
	}
	if isNotFound(errors.New("boom")) {
		t.Error("expected an unrelated error not to match")
	}
}

func TestIsInvalidClusterState(t *testing.T) {
	if !isInvalidClusterState(&types.InvalidDBClusterStateFault{}) {
		t.Error("expected InvalidDBClusterStateFault to match")
	}
	if isInvalidClusterState(errors.New("boom")) {
		t.Error("expected an unrelated error not to match")
	}
}

func TestIsDeletable(t *testing.T) {
	cases := map[string]bool{
		"available":  true,
		"stopped":    true,
		"failed":     true,
		"creating":   false,
		"restoring":  false,
		"":           false,
	}
	for status, want := range cases {
		if got := IsDeletable(status); got != want {
			t.Errorf("IsDeletable(%q) = %v, want %v", status, got, want)
		}
	}
}

type fakeAPIError struct{ code string }

func (e fakeAPIError) Error() string       { return e.code }
func (e fakeAPIError) ErrorCode() string   { return e.code }
func (e fakeAPIError) ErrorMessage() string { return e.code }
func (e fakeAPIError) ErrorFault() smithy.ErrorFault {
	return smithy.FaultUnknown
}

func TestIsThrottling(t *testing.T) {
	if !isThrottling(fakeAPIError{code: "ThrottlingException"}) {
		t.Error("expected ThrottlingException to be classified as throttling")
	}
	if isThrottling(fakeAPIError{code: "AccessDenied"}) {
		t.Error("expected AccessDenied not to be classified as throttling")
	}
	if isThrottling(errors.New("boom")) {
		t.Error("expected a non-API error not to be classified as throttling")
	}
}

func TestClassifyRDSErrorKind(t *testing.T) {
	transient := classifyRDSError(fakeAPIError{code: "RequestLimitExceeded"}, "op")
	if classify.KindOf(transient) != classify.KindTransientCloud {
		t.Errorf("expected TransientCloud, got %v", classify.KindOf(transient))
	}

	fatal := classifyRDSError(errors.New("boom"), "op")
	if classify.KindOf(fatal) != classify.KindFatalCloud {
		t.Errorf("expected FatalCloud, got %v", classify.KindOf(fatal))
	}
}

func TestScopeToSnapshotTypeCoversDefaultScopes(t *testing.T) {
	for _, scope := range cloud.DefaultSnapshotScopes {
		if _, ok := scopeToSnapshotType[scope]; !ok {
			t.Errorf("scope %q has no SnapshotType mapping", scope)
		}
	}
}
