// Copyright 2026 the cosmos-go authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package cosmos

import (
	"context"
	"fmt"
)

// Verb identifies one transport operation.
type Verb int

const (
	VerbCreateItem Verb = iota
	VerbReadItem
	VerbReplaceItem
	VerbUpsertItem
	VerbDeleteItem
	VerbQueryItems
	VerbCreateDatabase
	VerbReadDatabase
	VerbDeleteDatabase
	VerbListDatabases
	VerbCreateContainer
	VerbReadContainer
	VerbDeleteContainer
	VerbListContainers
)

// String returns the string representation of a Verb.
func (v Verb) String() string {
	switch v {
	case VerbCreateItem:
		return "create_item"
	case VerbReadItem:
		return "read_item"
	case VerbReplaceItem:
		return "replace_item"
	case VerbUpsertItem:
		return "upsert_item"
	case VerbDeleteItem:
		return "delete_item"
	case VerbQueryItems:
		return "query_items"
	case VerbCreateDatabase:
		return "create_database"
	case VerbReadDatabase:
		return "read_database"
	case VerbDeleteDatabase:
		return "delete_database"
	case VerbListDatabases:
		return "list_databases"
	case VerbCreateContainer:
		return "create_container"
	case VerbReadContainer:
		return "read_container"
	case VerbDeleteContainer:
		return "delete_container"
	case VerbListContainers:
		return "list_containers"
	default:
		return "unknown"
	}
}

// Request addresses one operation against the transport. Database and
// Container carry the addressing scheme; the remaining fields are set only
// where the verb needs them.
type Request struct {
	Verb         Verb
	Database     string
	Container    string
	ItemID       string
	PartitionKey *PartitionKey

	// Body is the canonical wire value produced by the marshaler.
	Body map[string]any

	// Query holds the query text for VerbQueryItems.
	Query string

	// IfMatchEtag, when non-empty, makes the operation conditional on the
	// stored document's etag.
	IfMatchEtag string

	// ActivityID correlates the request with errors and log events.
	ActivityID string
}

// Response is the already-structured result of a successful operation.
// The binding layer never parses wire bytes; the transport delivers
// structured values.
type Response struct {
	StatusCode int
	Body       map[string]any
	Items      []map[string]any
}

// FailureClass is the transport's classification of a non-success response.
type FailureClass int

const (
	// FailureOther covers every non-success response without a more
	// specific classification.
	FailureOther FailureClass = iota
	// FailureNotFound indicates the addressed resource does not exist.
	FailureNotFound
	// FailureConflict indicates the resource already exists.
	FailureConflict
	// FailurePrecondition indicates an access condition was not met.
	FailurePrecondition
)

// StatusError is the failure shape a Transport reports when a response was
// obtained from the remote side. Any other error returned by a Transport is
// treated as a transport-level failure (no response obtained).
type StatusError struct {
	Class      FailureClass
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// Transport is the pre-built asynchronous network collaborator this layer
// binds to. Implementations must be safe for concurrent use; the binding
// layer shares one Transport across all handles of a Client without
// additional locking. Connection management, TLS, request signing, and
// retry policy all live behind this interface.
type Transport interface {
	// Invoke performs one operation. On a non-success response it returns
	// a *StatusError; any other error means no response was obtained.
	Invoke(ctx context.Context, req *Request) (*Response, error)

	// Close releases the underlying connection resources.
	Close() error
}
