// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package cloudaws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/auroraops/restore-pipeline/internal/classify"
	"github.com/auroraops/restore-pipeline/internal/retry"
)

var errNoSecretString = errors.New("secret has no SecretString payload")

// Secrets implements cloud.SecretClient against AWS Secrets Manager, used
// by setup_db_users to fetch master and application role credentials.
type Secrets struct {
	Factory *ClientFactory
}

// NewSecrets constructs a Secrets adapter sharing factory with any other
// cloudaws collaborator constructed for the same invocation.
func NewSecrets(factory *ClientFactory) *Secrets {
	return &Secrets{Factory: factory}
}

// GetSecret fetches secretID's current value and decodes it as a flat
// string-keyed JSON object.
func (s *Secrets) GetSecret(ctx context.Context, region, secretID string) (map[string]string, error) {
	client, err := s.Factory.secretsManagerClient(ctx, region)
	if err != nil {
		return nil, classify.New(classify.KindFatalCloud, "loading secretsmanager client", err)
	}

	out, err := retry.Cloud(ctx, func(callCtx context.Context) (*secretsmanager.GetSecretValueOutput, error) {
		callCtx, cancel := context.WithTimeout(callCtx, secretFetchTimeout*time.Second)
		defer cancel()
		out, err := client.GetSecretValue(callCtx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(secretID),
		})
		if err != nil {
			if isThrottling(err) {
				return nil, classify.New(classify.KindTransientCloud, "fetching secret", err)
			}
			return nil, classify.New(classify.KindFatalCloud, "fetching secret", err)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	if out.SecretString == nil {
		return nil, classify.New(classify.KindFatalCloud, "fetching secret", errNoSecretString)
	}

	var fields map[string]string
	if err := json.Unmarshal([]byte(*out.SecretString), &fields); err != nil {
		return nil, classify.New(classify.KindFatalCloud, "decoding secret payload", err)
	}
	return fields, nil
}
