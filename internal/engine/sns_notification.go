// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/auroraops/restore-pipeline/internal/classify"
	"github.com/auroraops/restore-pipeline/internal/cloud"
	"github.com/auroraops/restore-pipeline/internal/model"
)

// SNSNotification implements sns_notification: the canonical,
// terminal completion notice, in place of the original's
// redundant notify_completion.
type SNSNotification struct {
	Notifications cloud.NotificationClient
	Now           func() time.Time
}

func (s SNSNotification) Act(ctx context.Context, rc *RunContext) (Outcome, error) {
	targetRegion := rc.Config.Get("target_region")
	topicARN := rc.Config.Get("sns_topic_arn")
	targetClusterID := rc.Prior.GetString("target_cluster_id")

	now := rc.Now
	if s.Now != nil {
		now = s.Now()
	}

	message := map[string]any{
		"operation_id":         rc.OperationID,
		"status":               "SUCCESS",
		"timestamp":            now.UTC().Format(time.RFC3339),
		"cluster_id":           targetClusterID,
		"region":               targetRegion,
		"endpoint":             rc.Prior.GetString("cluster_endpoint"),
		"port":                 rc.Prior.GetInt("cluster_port"),
		"target_snapshot_name": rc.Prior.GetString("target_snapshot_name"),
		"archive_status":       rc.Prior.GetString("archive_status"),
	}
	body, err := json.Marshal(message)
	if err != nil {
		return Outcome{}, classify.New(classify.KindFatalCloud, "encoding notification payload", err)
	}

	subject := fmt.Sprintf("Aurora Restore Complete - %s", targetClusterID)
	messageID, err := s.Notifications.Publish(ctx, targetRegion, topicARN, subject, string(body))
	if err != nil {
		return Outcome{}, err
	}

	payload := forwardPayload(rc)
	payload["archive_status"] = rc.Prior.GetString("archive_status")
	payload["cluster_endpoint"] = rc.Prior.GetString("cluster_endpoint")
	payload["cluster_port"] = rc.Prior.GetInt("cluster_port")
	payload["notification_message_id"] = messageID

	return Outcome{
		Payload:     payload,
		AuditStatus: model.AuditSuccess,
		// Terminal: no Next, no Dispatch.
	}, nil
}
