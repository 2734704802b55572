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
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/auroraops/restore-pipeline/internal/model"
)

type fakeSQSAPI struct {
	lastInput *sqs.SendMessageInput
	err       error
}

func (f *fakeSQSAPI) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastInput = params
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSQSDispatchEncodesJob(t *testing.T) {
	api := &fakeSQSAPI{}
	s := &SQS{Client: api, QueueURL: "https://sqs.example/queue"}

	err := s.Dispatch(context.Background(), "op-1", model.StepCopySnapshot, map[string]any{"snapshot_name": "snap-1"}, 0)
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if aws.ToString(api.lastInput.QueueUrl) != "https://sqs.example/queue" {
		t.Errorf("unexpected queue url: %q", aws.ToString(api.lastInput.QueueUrl))
	}

	var job Job
	if err := json.Unmarshal([]byte(aws.ToString(api.lastInput.MessageBody)), &job); err != nil {
		t.Fatalf("unmarshaling message body: %v", err)
	}
	if job.OperationID != "op-1" || job.Step != model.StepCopySnapshot {
		t.Errorf("unexpected job: %+v", job)
	}
	if job.Payload["snapshot_name"] != "snap-1" {
		t.Errorf("expected payload to round-trip, got %v", job.Payload)
	}
	if api.lastInput.DelaySeconds != 0 {
		t.Errorf("expected DelaySeconds 0, got %d", api.lastInput.DelaySeconds)
	}
}

func TestSQSDispatchClampsDelayToCeiling(t *testing.T) {
	api := &fakeSQSAPI{}
	s := &SQS{Client: api, QueueURL: "q"}

	if err := s.Dispatch(context.Background(), "op-2", model.StepCheckRestoreStatus, nil, 2*time.Hour); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if api.lastInput.DelaySeconds != int32(sqsMaxDelay/time.Second) {
		t.Errorf("expected DelaySeconds clamped to %d, got %d", int32(sqsMaxDelay/time.Second), api.lastInput.DelaySeconds)
	}
}

func TestSQSDispatchNegativeDelayClampsToZero(t *testing.T) {
	api := &fakeSQSAPI{}
	s := &SQS{Client: api, QueueURL: "q"}

	if err := s.Dispatch(context.Background(), "op-3", model.StepCheckRestoreStatus, nil, -time.Second); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if api.lastInput.DelaySeconds != 0 {
		t.Errorf("expected DelaySeconds 0 for negative delay, got %d", api.lastInput.DelaySeconds)
	}
}

func TestSQSDispatchWrapsSendError(t *testing.T) {
	api := &fakeSQSAPI{err: errors.New("throttled")}
	s := &SQS{Client: api, QueueURL: "q"}

	err := s.Dispatch(context.Background(), "op-4", model.StepCopySnapshot, nil, 0)
	if err == nil {
		t.Fatal("expected an error from Dispatch")
	}
}
