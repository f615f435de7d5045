// Copyright 2026 the cosmos-go authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package cosmos

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// inputClass is the closed classification of a caller-supplied body,
// computed exactly once at the marshaling boundary.
type inputClass int

const (
	// textInput is a pre-serialized JSON character sequence.
	textInput inputClass = iota
	// structuralInput is a host-native document built from supported
	// leaf/container types.
	structuralInput
	// unsupportedInput is anything else.
	unsupportedInput
)

// classifyInput decides which marshaling path a body takes. Callers should
// not pre-serialize native documents: doing so forces the structural path to
// degrade into the textual one.
func classifyInput(body any) inputClass {
	switch body.(type) {
	case string, []byte, json.RawMessage:
		return textInput
	case map[string]any:
		return structuralInput
	default:
		return unsupportedInput
	}
}

// encodeBody converts a caller-supplied body into the canonical wire value.
//
// Textual inputs are parsed directly as wire syntax; parse failure reports
// InvalidPayloadError without any transport call. Structural inputs are
// walked directly into wire nodes, never through an intermediate textual
// form; an unsupported leaf reports InvalidPayloadError. Any other input
// shape reports TypeMismatchError.
func encodeBody(body any) (map[string]any, error) {
	switch classifyInput(body) {
	case textInput:
		return parseTextBody(body)
	case structuralInput:
		doc := body.(map[string]any)
		out := make(map[string]any, len(doc))
		for key, val := range doc {
			node, err := encodeValue(val)
			if err != nil {
				return nil, err
			}
			out[key] = node
		}
		return out, nil
	default:
		return nil, &TypeMismatchError{Got: fmt.Sprintf("%T", body)}
	}
}

func parseTextBody(body any) (map[string]any, error) {
	var raw []byte
	switch b := body.(type) {
	case string:
		raw = []byte(b)
	case []byte:
		raw = b
	case json.RawMessage:
		raw = b
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		return nil, &InvalidPayloadError{Reason: "body is not valid JSON", Cause: err}
	}

	doc, ok := parsed.(map[string]any)
	if !ok {
		return nil, &InvalidPayloadError{Reason: fmt.Sprintf("JSON body must be an object, got %T", parsed)}
	}

	normalized, err := decodeValue(doc)
	if err != nil {
		return nil, err
	}
	return normalized.(map[string]any), nil
}

// encodeValue walks one structural node into its canonical wire form.
// Integer widths collapse to int64 and floats to float64; map key order is
// not preserved.
func encodeValue(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return val, nil
	case bool:
		return val, nil
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint:
		return int64(val), nil
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case float32:
		return float64(val), nil
	case float64:
		return val, nil
	case json.Number:
		return normalizeNumber(val), nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, entry := range val {
			node, err := encodeValue(entry)
			if err != nil {
				return nil, err
			}
			out[key] = node
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, entry := range val {
			node, err := encodeValue(entry)
			if err != nil {
				return nil, err
			}
			out[i] = node
		}
		return out, nil
	default:
		return nil, &InvalidPayloadError{Reason: fmt.Sprintf("unsupported value of type %T", v)}
	}
}

// decodeBody converts a wire value back to host-native structural types.
// Responses always decode structurally regardless of which path encoded the
// request.
func decodeBody(doc map[string]any) map[string]any {
	if doc == nil {
		return nil
	}
	out, _ := decodeValue(doc)
	return out.(map[string]any)
}

// decodeValue normalizes one wire node into host-native form. The error
// return is always nil today; it keeps the walk symmetric with encodeValue.
func decodeValue(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		return normalizeNumber(val), nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, entry := range val {
			node, _ := decodeValue(entry)
			out[key] = node
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, entry := range val {
			node, _ := decodeValue(entry)
			out[i] = node
		}
		return out, nil
	default:
		return v, nil
	}
}

// normalizeNumber maps integral JSON numbers to int64 and everything else
// to float64, matching what the structural path produces.
func normalizeNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	// Out-of-range literal; keep the textual form rather than lose it.
	return n.String()
}
