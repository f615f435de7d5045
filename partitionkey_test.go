// Copyright 2026 the cosmos-go authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package cosmos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPartitionKeyScalars(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  any
	}{
		{"string", "electronics", "electronics"},
		{"int", 42, int64(42)},
		{"int64", int64(42), int64(42)},
		{"float", 1.5, 1.5},
		{"bool", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pk, err := NewPartitionKey(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pk.Value())
		})
	}
}

func TestNewPartitionKeyRejectsNonScalar(t *testing.T) {
	_, err := NewPartitionKey(map[string]any{"nested": true})

	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestResolveExplicitWinsOverBody(t *testing.T) {
	body := map[string]any{"id": "1", "category": "electronics"}

	pk, err := resolvePartitionKey("toys", body, "", DefaultPartitionKeyFields, "create_item", true)
	require.NoError(t, err)
	assert.Equal(t, "toys", pk.Value())
}

func TestResolveCandidateFieldFromBody(t *testing.T) {
	body := map[string]any{"id": "1", "category": "electronics", "name": "Laptop"}

	pk, err := resolvePartitionKey(nil, body, "", DefaultPartitionKeyFields, "create_item", true)
	require.NoError(t, err)
	assert.Equal(t, "electronics", pk.Value())
}

func TestResolveEarlierCandidateWins(t *testing.T) {
	// Both "partitionKey" and "pk" are present; the earlier list entry wins.
	body := map[string]any{"partitionKey": "first", "pk": "second"}

	pk, err := resolvePartitionKey(nil, body, "", DefaultPartitionKeyFields, "upsert_item", true)
	require.NoError(t, err)
	assert.Equal(t, "first", pk.Value())
}

func TestResolveSkipsNonScalarCandidate(t *testing.T) {
	body := map[string]any{
		"category": map[string]any{"not": "scalar"},
		"pk":       "usable",
	}

	pk, err := resolvePartitionKey(nil, body, "", DefaultPartitionKeyFields, "create_item", true)
	require.NoError(t, err)
	assert.Equal(t, "usable", pk.Value())
}

func TestResolveDeclaredPathBeatsCandidates(t *testing.T) {
	body := map[string]any{"category": "electronics", "region": "emea"}

	pk, err := resolvePartitionKey(nil, body, "/region", DefaultPartitionKeyFields, "create_item", true)
	require.NoError(t, err)
	assert.Equal(t, "emea", pk.Value())
}

func TestResolveDeclaredNestedPath(t *testing.T) {
	body := map[string]any{
		"address": map[string]any{"city": "Oslo"},
	}

	pk, err := resolvePartitionKey(nil, body, "/address/city", DefaultPartitionKeyFields, "create_item", true)
	require.NoError(t, err)
	assert.Equal(t, "Oslo", pk.Value())
}

func TestResolveMissing(t *testing.T) {
	body := map[string]any{"id": "1", "name": "Laptop"}

	_, err := resolvePartitionKey(nil, body, "", DefaultPartitionKeyFields, "create_item", true)

	var missing *MissingPartitionKeyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "create_item", missing.Operation)
	assert.Equal(t, KindMissingPartitionKey, Kind(err))
}

func TestResolveReadNeverScansBody(t *testing.T) {
	// A read has no body fallback even when a candidate field would match.
	body := map[string]any{"category": "electronics"}

	_, err := resolvePartitionKey(nil, body, "/category", DefaultPartitionKeyFields, "read_item", false)

	var missing *MissingPartitionKeyError
	require.ErrorAs(t, err, &missing)
}
