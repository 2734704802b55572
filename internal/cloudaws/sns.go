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
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/auroraops/restore-pipeline/internal/classify"
	"github.com/auroraops/restore-pipeline/internal/retry"
)

// SNS implements cloud.NotificationClient, publishing the terminal
// sns_notification message.
type SNS struct {
	Factory *ClientFactory
}

// NewSNS constructs an SNS adapter sharing factory with any other
// cloudaws collaborator constructed for the same invocation.
func NewSNS(factory *ClientFactory) *SNS {
	return &SNS{Factory: factory}
}

// Publish sends subject/message to topicARN in region, returning the
// provider-assigned message id.
func (s *SNS) Publish(ctx context.Context, region, topicARN, subject, message string) (string, error) {
	client, err := s.Factory.snsClient(ctx, region)
	if err != nil {
		return "", classify.New(classify.KindFatalCloud, "loading sns client", err)
	}

	out, err := retry.Cloud(ctx, func(callCtx context.Context) (*sns.PublishOutput, error) {
		callCtx, cancel := context.WithTimeout(callCtx, describeTimeout*time.Second)
		defer cancel()
		out, err := client.Publish(callCtx, &sns.PublishInput{
			TopicArn: aws.String(topicARN),
			Subject:  aws.String(subject),
			Message:  aws.String(message),
		})
		if err != nil {
			if isThrottling(err) {
				return nil, classify.New(classify.KindTransientCloud, "publishing notification", err)
			}
			return nil, classify.New(classify.KindFatalCloud, "publishing notification", err)
		}
		return out, nil
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}
