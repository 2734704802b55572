// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package validate centralizes the identifier and configuration validators
// the original Python implementation kept in utils/validation.py. Every
// step handler that accepts event or config-resolved strings runs them
// through this package before touching AWS, so malformed input surfaces as
// classify.Validation rather than an opaque SDK error.
package validate

import (
	"fmt"
	"regexp"

	validatorpkg "github.com/go-playground/validator/v10"

	"github.com/auroraops/restore-pipeline/internal/classify"
)

var (
	regionPattern   = regexp.MustCompile(`^[a-z]{2}-[a-z]+-\d$`)
	identifierChars = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
	vpcPattern      = regexp.MustCompile(`^vpc-[a-f0-9]+$`)
	subnetPattern   = regexp.MustCompile(`^subnet-[a-f0-9]+$`)
	sgPattern       = regexp.MustCompile(`^sg-[a-f0-9]+$`)
)

// V is the shared validator instance, with the AWS identifier families
// registered as named tags (awsregion, clusterid, snapshotid, vpcid,
// subnetid, sgid) so struct-tagged
// config and event payload types can be validated in one Struct() call.
var V = newValidator()

func newValidator() *validatorpkg.Validate {
	v := validatorpkg.New()
	mustRegister(v, "awsregion", func(fl validatorpkg.FieldLevel) bool {
		return Region(fl.Field().String()) == nil
	})
	mustRegister(v, "clusterid", func(fl validatorpkg.FieldLevel) bool {
		return Identifier(fl.Field().String(), 63) == nil
	})
	mustRegister(v, "snapshotid", func(fl validatorpkg.FieldLevel) bool {
		return Identifier(fl.Field().String(), 255) == nil
	})
	mustRegister(v, "vpcid", func(fl validatorpkg.FieldLevel) bool {
		return vpcPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "subnetid", func(fl validatorpkg.FieldLevel) bool {
		return subnetPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "sgid", func(fl validatorpkg.FieldLevel) bool {
		return sgPattern.MatchString(fl.Field().String())
	})
	return v
}

func mustRegister(v *validatorpkg.Validate, tag string, fn validatorpkg.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validate: registering %q: %v", tag, err))
	}
}

// Struct validates a struct's `validate:"..."` tags and, on failure, wraps
// the first offending field into a classify.Validation error.
func Struct(op string, s any) error {
	if err := V.Struct(s); err != nil {
		return classify.New(classify.KindValidation, op, err)
	}
	return nil
}

// Region reports whether region matches AWS's <letters>-<letters>-<digit>
// shape (us-east-1, eu-west-1, ...), mirroring the original's regex exactly.
func Region(region string) error {
	if region == "" || !regionPattern.MatchString(region) {
		return classify.New(classify.KindValidation, "region", fmt.Errorf("invalid aws region: %q", region))
	}
	return nil
}

// Identifier validates an RDS cluster/snapshot identifier: non-empty,
// alphanumeric-first, at most maxLen characters, and drawn only from
// [A-Za-z0-9-].
func Identifier(id string, maxLen int) error {
	if id == "" {
		return classify.New(classify.KindValidation, "identifier", fmt.Errorf("identifier must not be empty"))
	}
	if len(id) > maxLen {
		return classify.New(classify.KindValidation, "identifier", fmt.Errorf("identifier %q exceeds %d characters", id, maxLen))
	}
	if !isAlnum(rune(id[0])) {
		return classify.New(classify.KindValidation, "identifier", fmt.Errorf("identifier %q must start with an alphanumeric character", id))
	}
	if !identifierChars.MatchString(id) {
		return classify.New(classify.KindValidation, "identifier", fmt.Errorf("identifier %q contains characters outside [A-Za-z0-9-]", id))
	}
	return nil
}

// ClusterID validates a DB cluster identifier (max 63 chars per the RDS API).
func ClusterID(id string) error { return Identifier(id, 63) }

// SnapshotID validates a DB cluster snapshot identifier (max 255 chars).
func SnapshotID(id string) error { return Identifier(id, 255) }

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// SecurityGroupID validates a single VPC security group id against
// `^sg-[a-f0-9]+$`.
func SecurityGroupID(id string) error {
	if !sgPattern.MatchString(id) {
		return classify.New(classify.KindValidation, "security_group_id", fmt.Errorf("invalid security group id: %q", id))
	}
	return nil
}

// VPCConfig validates the VPC/subnet/security-group triple required before
// restore_snapshot can call RestoreDBClusterFromSnapshot, against the
// `^vpc-[a-f0-9]+$` / `^subnet-[a-f0-9]+$` / `^sg-[a-f0-9]+$` patterns.
func VPCConfig(vpcID string, subnetIDs, securityGroupIDs []string) error {
	if !vpcPattern.MatchString(vpcID) {
		return classify.New(classify.KindValidation, "vpc_config", fmt.Errorf("invalid vpc id: %q", vpcID))
	}
	if len(subnetIDs) == 0 {
		return classify.New(classify.KindValidation, "vpc_config", fmt.Errorf("at least one subnet id is required"))
	}
	for _, s := range subnetIDs {
		if !subnetPattern.MatchString(s) {
			return classify.New(classify.KindValidation, "vpc_config", fmt.Errorf("invalid subnet id: %q", s))
		}
	}
	if len(securityGroupIDs) == 0 {
		return classify.New(classify.KindValidation, "vpc_config", fmt.Errorf("at least one security group id is required"))
	}
	for _, sg := range securityGroupIDs {
		if !sgPattern.MatchString(sg) {
			return classify.New(classify.KindValidation, "vpc_config", fmt.Errorf("invalid security group id: %q", sg))
		}
	}
	return nil
}

// RequiredParams reports the subset of keys whose values are empty or
// absent, mirroring validate_required_params's "collect every omission"
// behavior rather than failing on the first one.
func RequiredParams(params map[string]string) []string {
	var missing []string
	for _, key := range orderedKeys(params) {
		if params[key] == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

func orderedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// DBCredentialFields lists the Secrets Manager payload fields setup_db_users
// and verify_restore require, depending on whether the secret holds master
// or application credentials.
func DBCredentialFields(isMaster bool) []string {
	if isMaster {
		return []string{"database", "username", "password"}
	}
	return []string{"app_username", "app_password", "readonly_username", "readonly_password"}
}

// MissingCredentialFields reports which of DBCredentialFields(isMaster) are
// absent from credentials.
func MissingCredentialFields(credentials map[string]string, isMaster bool) []string {
	var missing []string
	for _, field := range DBCredentialFields(isMaster) {
		if _, ok := credentials[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}
