// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/auroraops/restore-pipeline/internal/model"
)

// sqsMaxDelay is SQS's hard ceiling on a message's DelaySeconds. Delays
// beyond it (the longest poll interval is well under this) are clamped
// rather than rejected.
const sqsMaxDelay = 900 * time.Second

// sqsAPI narrows *sqs.Client to what SQS needs, for test doubles.
type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQS is the production Dispatcher: every dispatched step invocation is a
// JSON message on a single queue, consumed by the serve command's poll
// loop. Delay dispatches use SQS's native DelaySeconds instead of an
// in-process timer, so a delayed retry survives a process restart.
type SQS struct {
	Client   sqsAPI
	QueueURL string
}

// NewSQS constructs an SQS dispatcher against an already-configured client.
func NewSQS(client *sqs.Client, queueURL string) *SQS {
	return &SQS{Client: client, QueueURL: queueURL}
}

func (s *SQS) Dispatch(ctx context.Context, operationID string, step model.Step, payload map[string]any, delay time.Duration) error {
	job := Job{OperationID: operationID, Step: step, Payload: payload}
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding dispatch job: %w", err)
	}

	if delay < 0 {
		delay = 0
	}
	if delay > sqsMaxDelay {
		delay = sqsMaxDelay
	}

	_, err = s.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(s.QueueURL),
		MessageBody:  aws.String(string(body)),
		DelaySeconds: int32(delay / time.Second),
	})
	if err != nil {
		return fmt.Errorf("sending dispatch message: %w", err)
	}
	return nil
}
