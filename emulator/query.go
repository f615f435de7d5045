// Copyright 2026 the cosmos-go authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package emulator

import (
	"fmt"
	"strconv"
	"strings"
)

// The emulator understands just enough of the query grammar to back the
// single-partition query surface:
//
//	SELECT * FROM c
//	SELECT * FROM c WHERE c.category = 'electronics'
//	SELECT * FROM c WHERE c.category = 'electronics' AND c.price = 999
//
// Anything beyond equality predicates joined by AND is rejected with a
// 400-class failure, the same way a production backend rejects malformed
// query text.

type predicate struct {
	field string
	value any
}

type predicateSet struct {
	preds []predicate
}

func parseQuery(query string) (*predicateSet, error) {
	text := strings.TrimSpace(query)
	if text == "" {
		return nil, badRequest("empty query")
	}

	upper := strings.ToUpper(text)
	if !strings.HasPrefix(upper, "SELECT ") {
		return nil, badRequest("query must start with SELECT")
	}

	fromIdx := strings.Index(upper, " FROM ")
	if fromIdx < 0 {
		return nil, badRequest("query is missing FROM")
	}
	projection := strings.TrimSpace(text[len("SELECT"):fromIdx])
	if projection != "*" {
		return nil, badRequest(fmt.Sprintf("unsupported projection %q, only * is supported", projection))
	}

	rest := strings.TrimSpace(text[fromIdx+len(" FROM "):])
	whereIdx := strings.Index(strings.ToUpper(rest), " WHERE ")

	var alias, where string
	if whereIdx < 0 {
		alias = strings.TrimSpace(rest)
	} else {
		alias = strings.TrimSpace(rest[:whereIdx])
		where = strings.TrimSpace(rest[whereIdx+len(" WHERE "):])
	}
	if alias == "" || strings.ContainsAny(alias, " \t") {
		return nil, badRequest(fmt.Sprintf("invalid source %q", alias))
	}

	set := &predicateSet{}
	if where == "" {
		return set, nil
	}

	for _, clause := range splitCaseInsensitive(where, " AND ") {
		pred, err := parsePredicate(strings.TrimSpace(clause), alias)
		if err != nil {
			return nil, err
		}
		set.preds = append(set.preds, pred)
	}
	return set, nil
}

func parsePredicate(clause, alias string) (predicate, error) {
	parts := strings.SplitN(clause, "=", 2)
	if len(parts) != 2 {
		return predicate{}, badRequest(fmt.Sprintf("unsupported predicate %q, only equality is supported", clause))
	}

	ref := strings.TrimSpace(parts[0])
	prefix := alias + "."
	if !strings.HasPrefix(ref, prefix) {
		return predicate{}, badRequest(fmt.Sprintf("field reference %q must use alias %q", ref, alias))
	}
	field := strings.TrimPrefix(ref, prefix)

	value, err := parseLiteral(strings.TrimSpace(parts[1]))
	if err != nil {
		return predicate{}, err
	}
	return predicate{field: field, value: value}, nil
}

func parseLiteral(lit string) (any, error) {
	switch {
	case len(lit) >= 2 && lit[0] == '\'' && lit[len(lit)-1] == '\'':
		return lit[1 : len(lit)-1], nil
	case len(lit) >= 2 && lit[0] == '"' && lit[len(lit)-1] == '"':
		return lit[1 : len(lit)-1], nil
	case strings.EqualFold(lit, "true"):
		return true, nil
	case strings.EqualFold(lit, "false"):
		return false, nil
	}
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(lit, 64); err == nil {
		return f, nil
	}
	return nil, badRequest(fmt.Sprintf("unsupported literal %q", lit))
}

func (p *predicateSet) match(doc map[string]any) bool {
	for _, pred := range p.preds {
		got, ok := doc[pred.field]
		if !ok || !literalEqual(got, pred.value) {
			return false
		}
	}
	return true
}

// literalEqual compares across the numeric widths a document may carry.
func literalEqual(got, want any) bool {
	if gf, ok := asFloat(got); ok {
		if wf, ok := asFloat(want); ok {
			return gf == wf
		}
		return false
	}
	return got == want
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// splitCaseInsensitive splits s on every case-insensitive occurrence of sep.
func splitCaseInsensitive(s, sep string) []string {
	var parts []string
	upper := strings.ToUpper(s)
	sepUpper := strings.ToUpper(sep)
	for {
		idx := strings.Index(upper, sepUpper)
		if idx < 0 {
			parts = append(parts, s)
			return parts
		}
		parts = append(parts, s[:idx])
		s = s[idx+len(sep):]
		upper = upper[idx+len(sepUpper):]
	}
}
