// Copyright 2026 the cosmos-go authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package cosmos

import (
	"errors"
	"fmt"
)

// ErrClientClosed is returned when operating on a closed client. It is a
// local error, raised before the transport is contacted.
var ErrClientClosed = errors.New("cosmos: client closed")

// ErrorKind enumerates the closed failure taxonomy surfaced to callers.
type ErrorKind int

const (
	// KindNone marks errors outside the taxonomy (for example ErrClientClosed).
	KindNone ErrorKind = iota
	// KindGenericHTTP is any non-success protocol response without a more
	// specific classification.
	KindGenericHTTP
	// KindResourceNotFound is a "not found" response.
	KindResourceNotFound
	// KindResourceExists is a conflict response.
	KindResourceExists
	// KindPreconditionFailed is an access-condition failure.
	KindPreconditionFailed
	// KindTransport is a failure before any response was obtained.
	KindTransport
	// KindInvalidPayload is rejected payload syntax or content.
	KindInvalidPayload
	// KindTypeMismatch is a payload of unsupported shape.
	KindTypeMismatch
	// KindMissingPartitionKey is an unresolvable partition key.
	KindMissingPartitionKey
)

// String returns the string representation of an ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case KindGenericHTTP:
		return "generic_http_error"
	case KindResourceNotFound:
		return "resource_not_found"
	case KindResourceExists:
		return "resource_exists"
	case KindPreconditionFailed:
		return "precondition_failed"
	case KindTransport:
		return "transport_error"
	case KindInvalidPayload:
		return "invalid_payload"
	case KindTypeMismatch:
		return "type_mismatch"
	case KindMissingPartitionKey:
		return "missing_partition_key"
	default:
		return "none"
	}
}

// HTTPError is the root of the HTTP-class error branch: any non-success
// protocol response. The more specific NotFoundError, ConflictError, and
// PreconditionFailedError unwrap to it, so
//
//	var httpErr *cosmos.HTTPError
//	if errors.As(err, &httpErr) { ... }
//
// catches all of them uniformly, while matching a leaf type distinguishes
// the outcome.
type HTTPError struct {
	StatusCode int
	Message    string
	ActivityID string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("cosmos: request failed: status %d: %s", e.StatusCode, e.Message)
}

// NotFoundError indicates the addressed resource does not exist.
type NotFoundError struct {
	HTTPError
}

func (e *NotFoundError) Unwrap() error { return &e.HTTPError }

// ConflictError indicates the resource already exists.
type ConflictError struct {
	HTTPError
}

func (e *ConflictError) Unwrap() error { return &e.HTTPError }

// PreconditionFailedError indicates an access condition (etag match) was
// not satisfied.
type PreconditionFailedError struct {
	HTTPError
}

func (e *PreconditionFailedError) Unwrap() error { return &e.HTTPError }

// TransportFailure indicates the operation failed before any response was
// obtained (connectivity, timeout). It sits outside the HTTP-class branch.
type TransportFailure struct {
	ActivityID string
	Cause      error
}

func (e *TransportFailure) Error() string {
	return fmt.Sprintf("cosmos: transport failure: %v", e.Cause)
}

func (e *TransportFailure) Unwrap() error { return e.Cause }

// InvalidPayloadError indicates the payload marshaler rejected the input's
// syntax or content. Raised before any transport call.
type InvalidPayloadError struct {
	Reason string
	Cause  error
}

func (e *InvalidPayloadError) Error() string {
	return fmt.Sprintf("cosmos: invalid payload: %s", e.Reason)
}

func (e *InvalidPayloadError) Unwrap() error { return e.Cause }

// TypeMismatchError indicates an input that is neither text nor a supported
// structural value. Raised before any transport call.
type TypeMismatchError struct {
	Got string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("cosmos: unsupported input type %s", e.Got)
}

// MissingPartitionKeyError indicates no partition key could be resolved for
// an operation that requires one. Raised before any transport call.
type MissingPartitionKeyError struct {
	Operation string
}

func (e *MissingPartitionKeyError) Error() string {
	return fmt.Sprintf("cosmos: %s: partition key not found in options or body", e.Operation)
}

// Kind classifies any error produced by this package into the closed
// taxonomy. Errors from outside the taxonomy report KindNone.
func Kind(err error) ErrorKind {
	var (
		notFound     *NotFoundError
		conflict     *ConflictError
		precondition *PreconditionFailedError
		httpErr      *HTTPError
		transport    *TransportFailure
		payload      *InvalidPayloadError
		mismatch     *TypeMismatchError
		missingPK    *MissingPartitionKeyError
	)
	switch {
	case errors.As(err, &notFound):
		return KindResourceNotFound
	case errors.As(err, &conflict):
		return KindResourceExists
	case errors.As(err, &precondition):
		return KindPreconditionFailed
	case errors.As(err, &httpErr):
		return KindGenericHTTP
	case errors.As(err, &transport):
		return KindTransport
	case errors.As(err, &payload):
		return KindInvalidPayload
	case errors.As(err, &mismatch):
		return KindTypeMismatch
	case errors.As(err, &missingPK):
		return KindMissingPartitionKey
	default:
		return KindNone
	}
}

// translateTransportErr is the single chokepoint mapping collaborator
// failures into the taxonomy. Every error returned by a Transport passes
// through here exactly once; no untranslated transport error escapes the
// package.
func translateTransportErr(err error, activityID string) error {
	var st *StatusError
	if errors.As(err, &st) {
		httpErr := HTTPError{
			StatusCode: st.StatusCode,
			Message:    st.Message,
			ActivityID: activityID,
		}
		switch st.Class {
		case FailureNotFound:
			return &NotFoundError{HTTPError: httpErr}
		case FailureConflict:
			return &ConflictError{HTTPError: httpErr}
		case FailurePrecondition:
			return &PreconditionFailedError{HTTPError: httpErr}
		default:
			return &httpErr
		}
	}
	return &TransportFailure{ActivityID: activityID, Cause: err}
}
