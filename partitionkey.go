// Copyright 2026 the cosmos-go authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package cosmos

import (
	"fmt"
	"strings"
)

// DefaultPartitionKeyFields is the ordered candidate list used to detect a
// partition key inside a document body when no explicit value is supplied
// and the container's declared path is not yet known. The first field
// present in the body wins, in list order, even when several are present.
// Override per client via ClientOptions.PartitionKeyFields.
var DefaultPartitionKeyFields = []string{"category", "partitionKey", "pk", "type", "tenantId"}

// PartitionKey is the scalar routing key of an item-scoped operation:
// a string, a number, or a boolean.
type PartitionKey struct {
	value any
}

// NewPartitionKey builds a PartitionKey from a scalar value. Supported
// types are string, the integer and float widths, and bool; anything else
// reports TypeMismatchError.
func NewPartitionKey(v any) (*PartitionKey, error) {
	switch val := v.(type) {
	case string:
		return &PartitionKey{value: val}, nil
	case bool:
		return &PartitionKey{value: val}, nil
	case int:
		return &PartitionKey{value: int64(val)}, nil
	case int8:
		return &PartitionKey{value: int64(val)}, nil
	case int16:
		return &PartitionKey{value: int64(val)}, nil
	case int32:
		return &PartitionKey{value: int64(val)}, nil
	case int64:
		return &PartitionKey{value: val}, nil
	case uint:
		return &PartitionKey{value: int64(val)}, nil
	case uint32:
		return &PartitionKey{value: int64(val)}, nil
	case float32:
		return &PartitionKey{value: float64(val)}, nil
	case float64:
		return &PartitionKey{value: val}, nil
	default:
		return nil, &TypeMismatchError{Got: fmt.Sprintf("%T (partition key must be string, number, or bool)", v)}
	}
}

// Value returns the normalized scalar (string, int64, float64, or bool).
func (pk *PartitionKey) Value() any {
	return pk.value
}

// String returns the display form of the partition key.
func (pk *PartitionKey) String() string {
	return fmt.Sprintf("%v", pk.value)
}

// resolvePartitionKey determines the routing key for an item-scoped
// operation, strictly before any transport call. Precedence:
//
//  1. An explicit caller-supplied value is used verbatim.
//  2. For write operations only: the container's declared partition-key
//     path, when already known, read from the body.
//  3. For write operations only: the first candidate field present in the
//     body, in list order.
//
// Read, replace, and delete operations never fall back to the body; the
// key must be explicit. Failure reports MissingPartitionKeyError.
func resolvePartitionKey(explicit any, body map[string]any, declaredPath string, fields []string, op string, write bool) (*PartitionKey, error) {
	if explicit != nil {
		return NewPartitionKey(explicit)
	}
	if !write {
		return nil, &MissingPartitionKeyError{Operation: op}
	}

	if declaredPath != "" {
		if v, ok := lookupPath(body, declaredPath); ok {
			if pk, err := NewPartitionKey(v); err == nil {
				return pk, nil
			}
		}
	}

	for _, field := range fields {
		v, ok := body[field]
		if !ok {
			continue
		}
		// Only scalar candidates are eligible; a structured value under a
		// candidate name does not shadow later candidates.
		if pk, err := NewPartitionKey(v); err == nil {
			return pk, nil
		}
	}

	return nil, &MissingPartitionKeyError{Operation: op}
}

// lookupPath reads a declared partition-key path such as "/category" or
// "/address/city" from a document body.
func lookupPath(body map[string]any, path string) (any, bool) {
	current := any(body)
	for _, segment := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		doc, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = doc[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
