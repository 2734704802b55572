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
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type fakeSSMClient struct {
	output *ssm.GetParameterOutput
	err    error
}

func (f *fakeSSMClient) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return f.output, f.err
}

func TestSSMParamSourceFetchDecodesJSON(t *testing.T) {
	value := `{"port":"5433","environment":"prod"}`
	src := &SSMParamSource{Client: &fakeSSMClient{
		output: &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: &value}},
	}}

	values, err := src.Fetch(context.Background(), "aurora-restore", "prod")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if values["port"] != "5433" || values["environment"] != "prod" {
		t.Errorf("unexpected decoded values: %#v", values)
	}
}

func TestSSMParamSourceFetchNotFoundIsEmpty(t *testing.T) {
	src := &SSMParamSource{Client: &fakeSSMClient{
		err: &types.ParameterNotFound{},
	}}

	values, err := src.Fetch(context.Background(), "aurora-restore", "dev")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("expected empty map for missing parameter, got %#v", values)
	}
}
