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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// ssmParamGetter is the single SSM call this package needs, narrowed from
// *ssm.Client so tests can supply a fake (teacher's
// NewDigitalOceanProviderWithClient constructor-injection pattern).
type ssmParamGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSMParamSource fetches the JSON config blob at
// /<prefix>/<environment>/config from AWS Systems Manager Parameter
// Store, with a per-call timeout of 5 s.
type SSMParamSource struct {
	Client ssmParamGetter
}

// NewSSMParamSource wraps an *ssm.Client as a ParamSource.
func NewSSMParamSource(client *ssm.Client) *SSMParamSource {
	return &SSMParamSource{Client: client}
}

// Fetch retrieves and JSON-decodes the parameter at
// /<prefix>/<environment>/config into a flat string map. A missing
// parameter is not an error: it resolves to an empty map so lower-priority
// defaults still apply.
func (s *SSMParamSource) Fetch(ctx context.Context, prefix, environment string) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, ssmFetchTimeout)
	defer cancel()

	name := fmt.Sprintf("/%s/%s/config", prefix, environment)
	out, err := s.Client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: boolPtr(true),
	})
	if err != nil {
		if isParameterNotFound(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("fetching parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return map[string]string{}, nil
	}

	var values map[string]string
	if err := json.Unmarshal([]byte(*out.Parameter.Value), &values); err != nil {
		return nil, fmt.Errorf("decoding parameter %s: %w", name, err)
	}
	return values, nil
}

func isParameterNotFound(err error) bool {
	var nf *types.ParameterNotFound
	return errors.As(err, &nf)
}

func boolPtr(b bool) *bool { return &b }
