// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package engine implements the shared step contract and entry logic common
// to the eleven chained handlers (cleanup runs outside Engine.Execute):
// config merge, state load, precondition check,
// per-step execute, state save, audit, metric, and dispatch. It follows the
// teacher's internal/core plan/runner split, one shared driver and many
// small named steps, generalized from deployment phases to restore-pipeline
// steps.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/auroraops/restore-pipeline/internal/audit"
	"github.com/auroraops/restore-pipeline/internal/classify"
	"github.com/auroraops/restore-pipeline/internal/clock"
	"github.com/auroraops/restore-pipeline/internal/config"
	"github.com/auroraops/restore-pipeline/internal/dispatch"
	"github.com/auroraops/restore-pipeline/internal/logging"
	"github.com/auroraops/restore-pipeline/internal/metricsink"
	"github.com/auroraops/restore-pipeline/internal/model"
	"github.com/auroraops/restore-pipeline/internal/statestore"
)

// RunContext carries everything a Step's Act needs for one invocation:
// the resolved operation id, the raw event, the merged config, and the
// latest prior StepRecord (nil only when Step tolerates absent state,
// i.e. snapshot_check).
type RunContext struct {
	OperationID string
	Step        model.Step
	Event       map[string]any
	Config      *config.Config
	Prior       *model.StepRecord
	Now         time.Time
	Log         logging.Logger
}

// EventString returns rc.Event[key] coerced to a string, or "" if absent.
func (rc *RunContext) EventString(key string) string {
	v, ok := rc.Event[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Outcome is what a Step returns on success. Non-fatal, expected results
// (skip, waiting, already-exists) are expressed as Outcome variants, not
// errors; only genuinely unexpected conditions flow back as an error from
// Act.
type Outcome struct {
	// Payload is persisted into the StepRecord and forwarded as the next
	// step's event (merged over the incoming event).
	Payload map[string]any

	// AuditStatus classifies this outcome for the audit log.
	AuditStatus model.AuditStatus

	// Next is the step to dispatch; zero value means terminal.
	Next model.Step

	// Dispatch controls whether Next is actually enqueued. A false value
	// with a failed-equivalent AuditStatus never occurs: failures flow
	// through the error return instead.
	Dispatch bool

	// DispatchDelay defers the next invocation's visibility (polling
	// self-loops).
	DispatchDelay time.Duration
}

// Step is the per-handler capability the engine core drives. Validation
// and action are combined into one Act call here, since no handler needs
// to observe a validation failure differently from an action failure.
type Step interface {
	Act(ctx context.Context, rc *RunContext) (Outcome, error)
}

// Engine is the common driver shared by every step handler. It owns no
// business logic of its own: Steps supplies the per-step behavior; Engine
// supplies config merge, state load, precondition check, persistence,
// audit, metrics, and dispatch.
type Engine struct {
	Steps    map[model.Step]Step
	Store    statestore.Store
	Audit    audit.Sink
	Metrics  metricsink.Sink
	Dispatch dispatch.Dispatcher
	Resolver *config.Resolver
	Clock    clock.Clock
	Log      logging.Logger
}

// Response is the response envelope: {statusCode, body}.
type Response struct {
	StatusCode int
	Body       map[string]any
}

// Execute runs step's shared contract against event and returns the
// response envelope. Every failure is reported in the Response, including
// a state store that cannot answer the "load prior" query (a FatalCloud
// 500 response); the returned error is always nil.
func (e *Engine) Execute(ctx context.Context, step model.Step, event map[string]any) (*Response, error) {
	start := e.Clock.Now()
	operationID := resolveOperationID(event, e.Clock)
	environment := stringifyEvent(event)["environment"]

	prior, hasPrior, err := e.loadPrior(ctx, operationID)
	if err != nil {
		return e.respondEngineError(ctx, operationID, step, start, environment, "loading prior state", err), nil
	}

	if !hasPrior && step != model.StepSnapshotCheck {
		return e.terminate(ctx, operationID, step, start, environment,
			classify.New(classify.KindPreconditionFailed, "no prior operation state", nil), nil), nil
	}
	if hasPrior && !prior.Success {
		return e.terminate(ctx, operationID, step, start, environment,
			classify.New(classify.KindPreconditionFailed, "previous step failed", priorFailureCause(prior)), prior), nil
	}

	cfg, err := e.Resolver.Resolve(ctx, step, stringifyEvent(event), prior)
	if err != nil {
		return e.terminate(ctx, operationID, step, start, environment,
			classify.New(classify.KindValidation, "resolving config", err), prior), nil
	}
	if environment == "" {
		environment = cfg.Get("environment")
	}

	handler, ok := e.Steps[step]
	if !ok {
		return e.terminate(ctx, operationID, step, start, environment,
			classify.New(classify.KindValidation, "unknown step", fmt.Errorf("%s", step)), prior), nil
	}

	rc := &RunContext{
		OperationID: operationID,
		Step:        step,
		Event:       event,
		Config:      cfg,
		Prior:       prior,
		Now:         start,
		Log:         e.Log,
	}

	outcome, err := handler.Act(ctx, rc)
	if err != nil {
		return e.terminate(ctx, operationID, step, start, environment, err, prior), nil
	}

	record := &model.StepRecord{
		OperationID: operationID,
		Step:        step,
		Timestamp:   start.Unix(),
		Success:     true,
		Payload:     outcome.Payload,
	}
	if serr := e.Store.Save(ctx, record); serr != nil {
		e.logError("saving step record", step, operationID, serr)
	}

	e.logAudit(ctx, operationID, step, outcome.AuditStatus, environment, outcome.Payload)
	e.recordMetrics(ctx, operationID, step, environment, start, true)

	if outcome.Dispatch {
		forward := forwardEvent(event, outcome.Payload, operationID)
		if derr := e.Dispatch.Dispatch(ctx, operationID, outcome.Next, forward, outcome.DispatchDelay); derr != nil {
			e.logError("dispatching next step", step, operationID, derr)
		}
	}

	statusCode := 200
	if outcome.AuditStatus == model.AuditWaiting || outcome.AuditStatus == model.AuditInProgress {
		statusCode = 202
	}

	return &Response{
		StatusCode: statusCode,
		Body:       e.responseBody(operationID, step, true, "", outcome.Payload, cfg, environment),
	}, nil
}

// loadPrior returns the latest StepRecord for operationID, and whether one
// exists at all.
func (e *Engine) loadPrior(ctx context.Context, operationID string) (*model.StepRecord, bool, error) {
	rec, err := statestore.LoadLatest(ctx, e.Store, operationID)
	if err != nil {
		if errors.Is(err, statestore.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return rec, true, nil
}

// terminate handles every non-success outcome: persist a failure
// StepRecord, audit status=failed, increment <step>_failures, and respond
// with the status code classify.Kind maps to. No dispatch ever occurs.
func (e *Engine) terminate(ctx context.Context, operationID string, step model.Step, start time.Time, environment string, cause error, prior *model.StepRecord) *Response {
	record := &model.StepRecord{
		OperationID: operationID,
		Step:        step,
		Timestamp:   start.Unix(),
		Success:     false,
		Error:       cause.Error(),
	}
	if serr := e.Store.Save(ctx, record); serr != nil {
		e.logError("saving failure step record", step, operationID, serr)
	}

	e.logAudit(ctx, operationID, step, model.AuditFailed, environment, map[string]any{"error": cause.Error()})
	e.recordMetrics(ctx, operationID, step, environment, start, false)

	body := map[string]any{
		"message":      cause.Error(),
		"operation_id": operationID,
		"success":      false,
	}
	if prior != nil {
		body["previous_state"] = map[string]any{
			"step":    string(prior.Step),
			"success": prior.Success,
			"error":   prior.Error,
		}
	}

	return &Response{StatusCode: classify.KindOf(cause).StatusCode(), Body: body}
}

// respondEngineError handles the (rare) case where the state store itself
// could not answer the "load prior" query: neither success nor a
// classifiable business failure, just an infrastructure fault.
func (e *Engine) respondEngineError(ctx context.Context, operationID string, step model.Step, start time.Time, environment, op string, err error) *Response {
	return e.terminate(ctx, operationID, step, start, environment, classify.New(classify.KindFatalCloud, op, err), nil)
}

func (e *Engine) responseBody(operationID string, step model.Step, success bool, errMsg string, payload map[string]any, cfg *config.Config, environment string) map[string]any {
	body := map[string]any{
		"message":      fmt.Sprintf("%s completed", step),
		"operation_id": operationID,
		"success":      success,
	}
	if errMsg != "" {
		body["message"] = errMsg
	}
	for k, v := range payload {
		body[k] = v
	}
	if environment != "prod" {
		sources := map[string]string{}
		for k, src := range cfg.Sources() {
			sources[k] = string(src)
		}
		body["config_sources"] = sources
	}
	return body
}

func (e *Engine) logAudit(ctx context.Context, operationID string, step model.Step, status model.AuditStatus, environment string, details map[string]any) {
	if e.Audit == nil {
		return
	}
	event := &model.AuditEvent{
		EventID:     fmt.Sprintf("%s-%s", step, e.Clock.Now().Format(time.RFC3339Nano)),
		OperationID: operationID,
		EventType:   step,
		Status:      status,
		Timestamp:   e.Clock.Now(),
		Details:     details,
		Environment: environment,
	}
	if err := e.Audit.Log(ctx, event); err != nil {
		e.logError("logging audit event", step, operationID, err)
	}
}

func (e *Engine) recordMetrics(ctx context.Context, operationID string, step model.Step, environment string, start time.Time, success bool) {
	if e.Metrics == nil {
		return
	}
	duration := e.Clock.Now().Sub(start).Seconds()
	_ = e.Metrics.Update(ctx, model.Metric{
		Namespace:   "AuroraRestore",
		Name:        fmt.Sprintf("%s_duration", step),
		Value:       duration,
		Unit:        model.UnitSeconds,
		OperationID: operationID,
		Environment: environment,
	})
	name := fmt.Sprintf("%s_success", step)
	if !success {
		name = fmt.Sprintf("%s_failures", step)
	}
	_ = e.Metrics.Update(ctx, model.Metric{
		Namespace:   "AuroraRestore",
		Name:        name,
		Value:       1,
		Unit:        model.UnitCount,
		OperationID: operationID,
		Environment: environment,
	})
}

func (e *Engine) logError(msg string, step model.Step, operationID string, err error) {
	if e.Log == nil {
		return
	}
	e.Log.Error(msg,
		logging.NewField("step", string(step)),
		logging.NewField("operation_id", operationID),
		logging.NewField("error", err.Error()))
}

// resolveOperationID resolves the operation id from event.operation_id,
// then event.body.operation_id, then mints a new id.
func resolveOperationID(event map[string]any, c clock.Clock) string {
	if v, ok := event["operation_id"].(string); ok && v != "" {
		return v
	}
	if body, ok := event["body"].(map[string]any); ok {
		if v, ok := body["operation_id"].(string); ok && v != "" {
			return v
		}
	}
	return clock.NewOperationID(c)
}

// stringifyEvent coerces every event value to its string form for the
// config resolver's event-payload source. Non-string values
// (numbers, bools) are formatted with fmt.Sprint; nested maps (e.g. "body")
// are skipped, since config keys are flat.
func stringifyEvent(event map[string]any) map[string]string {
	out := make(map[string]string, len(event))
	for k, v := range event {
		switch val := v.(type) {
		case string:
			out[k] = val
		case map[string]any:
			continue
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

// forwardEvent builds the event passed to the next dispatched step: the
// incoming event, overlaid with the outcome's payload (which carries
// forward the identifiers the next step needs) and the resolved
// operation_id.
func forwardEvent(event map[string]any, payload map[string]any, operationID string) map[string]any {
	out := make(map[string]any, len(event)+len(payload)+1)
	for k, v := range event {
		out[k] = v
	}
	for k, v := range payload {
		out[k] = v
	}
	out["operation_id"] = operationID
	return out
}

func priorFailureCause(r *model.StepRecord) error {
	if r == nil {
		return nil
	}
	return fmt.Errorf("previous step %s failed: %s", r.Step, r.Error)
}
