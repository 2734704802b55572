// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package cloudaws implements internal/cloud's SnapshotClient, ClusterClient,
// SecretClient, and NotificationClient against AWS, using aws-sdk-go-v2 and
// its rds, secretsmanager, and sns service packages, the natural sibling
// packages of the aws-sdk-go-v2/config family the pack already carries
// (jordigilh-kubernaut's go.mod). A region's clients are memoized for as
// long as the ClientFactory that built them lives; the CLI builds one
// factory per deployment, so the serve loop reuses a region's clients
// across every message it handles.
package cloudaws

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// describeTimeout bounds cloud describe calls at 30s; secretFetchTimeout
// bounds secret retrieval at 5s.
const (
	describeTimeout    = 30
	secretFetchTimeout = 5
)

// ClientFactory lazily constructs and memoizes per-region AWS service
// clients for the lifetime of the factory itself; it does not reset
// between step invocations.
type ClientFactory struct {
	mu  sync.Mutex
	rds map[string]*rds.Client
	sm  map[string]*secretsmanager.Client
	sns map[string]*sns.Client
}

// NewClientFactory constructs an empty client factory.
func NewClientFactory() *ClientFactory {
	return &ClientFactory{
		rds: map[string]*rds.Client{},
		sm:  map[string]*secretsmanager.Client{},
		sns: map[string]*sns.Client{},
	}
}

func (f *ClientFactory) rdsClient(ctx context.Context, region string) (*rds.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.rds[region]; ok {
		return c, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config for %s: %w", region, err)
	}
	c := rds.NewFromConfig(cfg)
	f.rds[region] = c
	return c, nil
}

func (f *ClientFactory) secretsManagerClient(ctx context.Context, region string) (*secretsmanager.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.sm[region]; ok {
		return c, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config for %s: %w", region, err)
	}
	c := secretsmanager.NewFromConfig(cfg)
	f.sm[region] = c
	return c, nil
}

func (f *ClientFactory) snsClient(ctx context.Context, region string) (*sns.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.sns[region]; ok {
		return c, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config for %s: %w", region, err)
	}
	c := sns.NewFromConfig(cfg)
	f.sns[region] = c
	return c, nil
}

func strPtr(s string) *string { return aws.String(s) }
func int32Ptr(n int) *int32   { v := int32(n); return &v }
