// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package classify implements the uniform error classification: every
// condition a step handler can raise maps to exactly one Kind, and that
// Kind alone decides the engine's response (dispatch or halt, status code,
// audit status).
package classify

import "errors"

// Kind is one of the seven error classes.
type Kind int

const (
	// KindNone marks success; not an error kind.
	KindNone Kind = iota
	KindValidation
	KindPreconditionFailed
	KindTransientCloud
	KindNotFound
	KindFatalCloud
	KindSQL
	KindAlreadyExists
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "Validation"
	case KindPreconditionFailed:
		return "PreconditionFailed"
	case KindTransientCloud:
		return "TransientCloud"
	case KindNotFound:
		return "NotFound"
	case KindFatalCloud:
		return "FatalCloud"
	case KindSQL:
		return "Sql"
	case KindAlreadyExists:
		return "AlreadyExists"
	default:
		return "None"
	}
}

// StatusCode returns the response envelope status code for the kind.
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation, KindPreconditionFailed:
		return 400
	case KindNotFound:
		return 404
	case KindTransientCloud, KindFatalCloud, KindSQL:
		return 500
	case KindAlreadyExists, KindNone:
		return 200
	default:
		return 500
	}
}

// Error wraps an underlying cause with its classification. Step handlers
// return *Error (or a sentinel satisfying errors.Is below) from their Act
// method; the engine core never has to re-derive the kind from error text.
type Error struct {
	Kind Kind
	Op   string // short description of what failed, e.g. "describe snapshot"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a classify.Error with the same Kind,
// allowing callers to write errors.Is(err, classify.NotFound) against a
// freshly constructed zero-value sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New constructs a classified error.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Sentinels for errors.Is comparisons against a specific kind, e.g.
// errors.Is(err, classify.NotFound).
var (
	Validation         = &Error{Kind: KindValidation}
	PreconditionFailed = &Error{Kind: KindPreconditionFailed}
	TransientCloud     = &Error{Kind: KindTransientCloud}
	NotFound           = &Error{Kind: KindNotFound}
	FatalCloud         = &Error{Kind: KindFatalCloud}
	SQL                = &Error{Kind: KindSQL}
	AlreadyExists      = &Error{Kind: KindAlreadyExists}
)

// ErrClusterNotDeletable mirrors the original implementation's handling of
// AWS's InvalidDBClusterStateFault during delete_rds: a cluster outside
// {available, stopped, failed} is treated as a successful skip rather than
// a fatal error.
var ErrClusterNotDeletable = New(KindNotFound, "cluster not in a deletable state", nil)

// KindOf extracts the Kind from err, defaulting to KindFatalCloud for any
// error that was not produced through this package, since an adapter bug
// should surface loudly rather than silently retry forever.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindFatalCloud
}
