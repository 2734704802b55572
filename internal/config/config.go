// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package config resolves the five-source configuration merge: event
// payload > latest StepRecord > environment > SSM parameter store >
// built-in defaults. It generalizes the teacher's single-file YAML loader
// (pkg/config/config.go), using the same typed struct, explicit validate,
// and sentinel not-found error shape, applied to a flat key/value model
// instead of a nested deployment schema.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/auroraops/restore-pipeline/internal/logging"
	"github.com/auroraops/restore-pipeline/internal/model"
)

// ssmFetchTimeout bounds the parameter-store round trip.
const ssmFetchTimeout = 5 * time.Second

// Source names where a resolved key's value came from, for the
// config_sources diagnostics field.
type Source string

const (
	SourceEvent   Source = "event"
	SourceState   Source = "state"
	SourceEnv     Source = "env"
	SourceSSM     Source = "ssm"
	SourceDefault Source = "default"
)

// ErrMissingRequired is returned when a step's required keys are not all
// present after merging all five sources.
var ErrMissingRequired = fmt.Errorf("config: required key(s) missing")

// defaults mirrors the configuration key table's Default column.
var defaults = map[string]string{
	"snapshot_prefix":             "aurora-snapshot",
	"copy_status_retry_delay":     "60",
	"restore_status_retry_delay":  "60",
	"delete_status_retry_delay":   "60",
	"max_copy_attempts":           "60",
	"copy_check_interval":         "30",
	"max_restore_attempts":        "60",
	"restore_check_interval":      "30",
	"skip_final_snapshot":         "true",
	"deletion_protection":         "false",
	"archive_snapshot":            "true",
	"port":                        "5432",
	"db_connection_timeout":       "30",
	"state_table_name":            "aurora-restore-state",
	"audit_table_name":            "aurora-restore-audit",
	"environment":                 "dev",
	"log_level":                   "INFO",
}

// required lists, per step, the config keys that must resolve to a
// non-empty value, inverted from the "Required by" column to a step-to-keys
// matrix.
var required = map[model.Step][]string{
	model.StepSnapshotCheck:      {"source_region", "target_region", "source_cluster_id", "snapshot_prefix"},
	model.StepCopySnapshot:       {"source_region", "target_region"},
	model.StepCheckCopyStatus:    {"target_region", "copy_status_retry_delay", "max_copy_attempts", "copy_check_interval"},
	model.StepDeleteRDS:          {"target_region", "target_cluster_id"},
	model.StepCheckDeleteStatus:  {"target_region", "target_cluster_id", "delete_status_retry_delay"},
	model.StepRestoreSnapshot:    {"target_region", "target_cluster_id", "db_subnet_group_name", "vpc_security_group_ids", "port"},
	model.StepCheckRestoreStatus: {"target_region", "target_cluster_id", "max_restore_attempts", "restore_check_interval"},
	model.StepSetupDBUsers:       {"master_credentials_secret_id", "app_credentials_secret_id", "db_connection_timeout"},
	model.StepVerifyRestore:      {"master_credentials_secret_id"},
	model.StepArchiveSnapshot:    {"target_region"},
	model.StepSNSNotification:    {"sns_topic_arn"},
}

// intKeys and boolKeys list the keys that undergo typed coercion rather than
// being handed back as raw strings.
var intKeys = map[string]bool{
	"copy_status_retry_delay":    true,
	"restore_status_retry_delay": true,
	"delete_status_retry_delay":  true,
	"max_copy_attempts":          true,
	"copy_check_interval":        true,
	"max_restore_attempts":       true,
	"restore_check_interval":     true,
	"port":                       true,
	"db_connection_timeout":      true,
}

var boolKeys = map[string]bool{
	"skip_final_snapshot": true,
	"deletion_protection": true,
	"archive_snapshot":    true,
}

// ParamSource fetches the JSON parameter-store blob at
// /<prefix>/<environment>/config. Implemented by internal/config's
// SSM-backed adapter; tests substitute a fake.
type ParamSource interface {
	Fetch(ctx context.Context, prefix, environment string) (map[string]string, error)
}

// Config is the result of resolving one step's configuration: a flat string
// map plus the source each value was drawn from.
type Config struct {
	values  map[string]string
	sources map[string]Source
}

// Get returns the raw string value for key, or "" if unset.
func (c *Config) Get(key string) string { return c.values[key] }

// GetInt coerces key to an int. Coercion failure retains the value already
// present (which may itself be the default) and reports ok=false so callers
// can log a warning without failing the step.
func (c *Config) GetInt(key string) (int, bool) {
	raw, ok := c.values[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// GetBool coerces key using the {true,1,yes,y} (case-insensitive) truthy set.
func (c *Config) GetBool(key string) bool {
	switch strings.ToLower(c.values[key]) {
	case "true", "1", "yes", "y":
		return true
	default:
		return false
	}
}

// GetCSV splits a comma-separated value, trimming whitespace and dropping
// empty segments (used for vpc_security_group_ids).
func (c *Config) GetCSV(key string) []string {
	raw := c.values[key]
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SourceOf reports which of the five sources key's value came from, for the
// diagnostics envelope.
func (c *Config) SourceOf(key string) Source { return c.sources[key] }

// Sources returns a copy of the full key → source map, for the
// config_sources diagnostics field in non-production responses.
func (c *Config) Sources() map[string]Source {
	out := make(map[string]Source, len(c.sources))
	for k, v := range c.sources {
		out[k] = v
	}
	return out
}

// Resolver merges the five configuration sources in priority order.
// FileDefaults, when set, layers a locally loaded YAML defaults file (see
// LoadFileDefaults) beneath SSM and above the package's hardcoded defaults,
// an optional refinement inside the "defaults" tier rather than a change
// to the five-source order.
type Resolver struct {
	Params       ParamSource
	ParamPrefix  string
	FileDefaults map[string]string
	Log          logging.Logger
}

// Resolve merges event, the latest StepRecord's payload, the process
// environment, the SSM parameter blob, and defaults, in that priority
// order, then validates step's required keys are all present.
//
// prior may be nil: snapshot_check tolerates absent prior state.
func (r *Resolver) Resolve(ctx context.Context, step model.Step, event map[string]string, prior *model.StepRecord) (*Config, error) {
	cfg := &Config{
		values:  map[string]string{},
		sources: map[string]Source{},
	}

	environment := firstNonEmpty(event["environment"], envValueFromPrior(prior), os.Getenv("ENVIRONMENT"), defaults["environment"])

	params, err := r.fetchParams(ctx, environment)
	if err != nil {
		r.logWarn("fetching ssm parameters", err)
		params = nil
	}

	keys := collectKeys(event, prior, params, r.FileDefaults)
	for key := range keys {
		if v, ok := event[key]; ok && v != "" {
			cfg.set(key, v, SourceEvent)
			continue
		}
		if prior != nil {
			if v := prior.GetString(key); v != "" {
				cfg.set(key, v, SourceState)
				continue
			}
		}
		if v, ok := os.LookupEnv(strings.ToUpper(key)); ok && v != "" {
			cfg.set(key, v, SourceEnv)
			continue
		}
		if v, ok := params[key]; ok && v != "" {
			cfg.set(key, v, SourceSSM)
			continue
		}
		if v, ok := r.FileDefaults[key]; ok && v != "" {
			cfg.set(key, v, SourceDefault)
			continue
		}
		if v, ok := defaults[key]; ok {
			cfg.set(key, v, SourceDefault)
		}
	}

	// Keys named only in defaults (never overridden anywhere) still need a
	// resolved value so required-key checks below see them.
	for key, v := range r.FileDefaults {
		if _, ok := cfg.values[key]; !ok {
			cfg.set(key, v, SourceDefault)
		}
	}
	for key, v := range defaults {
		if _, ok := cfg.values[key]; !ok {
			cfg.set(key, v, SourceDefault)
		}
	}

	cfg.coerceTyped(r.Log)

	if missing := cfg.missingRequired(step); len(missing) > 0 {
		return cfg, fmt.Errorf("%w for step %s: %s", ErrMissingRequired, step, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func (c *Config) set(key, value string, src Source) {
	c.values[key] = value
	c.sources[key] = src
}

func (c *Config) coerceTyped(log logging.Logger) {
	for key := range intKeys {
		raw, ok := c.values[key]
		if !ok {
			continue
		}
		if _, err := strconv.Atoi(raw); err != nil {
			if log != nil {
				log.Warn("config: invalid integer value, retaining prior", logging.NewField("key", key), logging.NewField("value", raw))
			}
			if d, ok := defaults[key]; ok {
				c.values[key] = d
				c.sources[key] = SourceDefault
			}
		}
	}
}

func (c *Config) missingRequired(step model.Step) []string {
	var missing []string
	for _, key := range required[step] {
		if c.values[key] == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

func (r *Resolver) fetchParams(ctx context.Context, environment string) (map[string]string, error) {
	if r.Params == nil {
		return nil, nil
	}
	return r.Params.Fetch(ctx, r.ParamPrefix, environment)
}

func (r *Resolver) logWarn(msg string, err error) {
	if r.Log != nil {
		r.Log.Warn(msg, logging.NewField("error", err.Error()))
	}
}

func envValueFromPrior(prior *model.StepRecord) string {
	if prior == nil {
		return ""
	}
	return prior.GetString("environment")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// collectKeys is every key name known to any source plus every defined
// default and required key, so a key present only in SSM (say) still gets
// resolved even though no default exists for it.
func collectKeys(event map[string]string, prior *model.StepRecord, params map[string]string, fileDefaults map[string]string) map[string]struct{} {
	keys := map[string]struct{}{}
	for k := range event {
		keys[k] = struct{}{}
	}
	if prior != nil {
		for k := range prior.Payload {
			keys[k] = struct{}{}
		}
	}
	for k := range params {
		keys[k] = struct{}{}
	}
	for k := range fileDefaults {
		keys[k] = struct{}{}
	}
	for k := range defaults {
		keys[k] = struct{}{}
	}
	for _, ks := range required {
		for _, k := range ks {
			keys[k] = struct{}{}
		}
	}
	return keys
}
