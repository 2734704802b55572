// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/spf13/cobra"

	"github.com/auroraops/restore-pipeline/internal/dispatch"
	"github.com/auroraops/restore-pipeline/internal/logging"
)

// receiveWaitSeconds is the SQS long-poll duration: block for new work
// rather than tight-loop.
const receiveWaitSeconds = 20

// NewServeCommand returns the `aurora-restore serve` command: the
// production dispatcher loop. It long-polls the configured SQS queue,
// runs each dispatched step through the engine, and deletes the message
// once Execute has produced a response. Execute reports every failure,
// including a state store that cannot be read, in that response, so a
// failed step's message is deleted like any other and the chain halts
// there; a message stays on the queue only when Execute returns an error.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the production SQS-backed dispatch loop",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flags := ResolveFlags(cmd)
	log := logging.NewLogger(logging.ParseLevel(""))
	if flags.Verbose {
		log = logging.NewLogger(logging.LevelDebug)
	}

	dep, err := buildDeployment(ctx, flags, log)
	if err != nil {
		return classifyCLIError(err)
	}
	defer dep.Close()

	producer, err := newSQSDispatcher(ctx, flags.QueueURL)
	if err != nil {
		return classifyCLIError(err)
	}
	eng := dep.buildEngine(producer)

	consumerCfg, err := newSQSReceiver(ctx)
	if err != nil {
		return classifyCLIError(err)
	}

	go serveMetrics(flags.MetricsAddr, dep.Metrics.Handler(), log)

	log.Info("serve: polling queue", logging.NewField("queue_url", flags.QueueURL))
	for ctx.Err() == nil {
		out, err := consumerCfg.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(flags.QueueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     receiveWaitSeconds,
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Error("receiving messages", logging.NewField("error", err.Error()))
			continue
		}

		for _, msg := range out.Messages {
			var job dispatch.Job
			if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &job); err != nil {
				log.Error("decoding dispatch message", logging.NewField("error", err.Error()))
				continue
			}

			event := map[string]any{"operation_id": job.OperationID}
			for k, v := range job.Payload {
				event[k] = v
			}

			resp, execErr := eng.Execute(ctx, job.Step, event)
			if execErr != nil {
				log.Error("engine execute failed, leaving message for redelivery",
					logging.NewField("step", string(job.Step)), logging.NewField("error", execErr.Error()))
				continue
			}
			log.Info("step completed", logging.NewField("step", string(job.Step)), logging.NewField("status", resp.StatusCode))

			if _, err := consumerCfg.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(flags.QueueURL),
				ReceiptHandle: msg.ReceiptHandle,
			}); err != nil {
				log.Error("deleting processed message", logging.NewField("error", err.Error()))
			}
		}
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		log.Info("serve: shutting down")
		return nil
	}
	return ctx.Err()
}

func serveMetrics(addr string, handler http.Handler, log logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	log.Info("serve: metrics listening", logging.NewField("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server stopped", logging.NewField("error", err.Error()))
	}
}
