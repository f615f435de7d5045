// Copyright 2026 the cosmos-go authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package emulator provides an in-process, in-memory Transport for the
// cosmos binding layer. It exists for demos and integration-style tests:
// no server, no network, same verb surface and failure classification as a
// production transport.
//
// Example:
//
//	client, err := cosmos.NewClient("https://localhost:8081",
//	    cosmos.KeyCredential{Key: "local"},
//	    &cosmos.ClientOptions{Transport: emulator.New()})
package emulator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	cosmos "github.com/cosmosdk/cosmos-go"
)

// Server is an in-memory document store implementing cosmos.Transport.
// It is safe for concurrent use.
type Server struct {
	mu  sync.RWMutex
	dbs map[string]*database

	// Latency is injected before every operation; useful in tests that
	// exercise concurrency.
	Latency time.Duration
}

type database struct {
	id         string
	containers map[string]*container
}

type container struct {
	id     string
	pkPath string
	// partitions maps routing key → item id → stored document.
	partitions map[string]map[string]map[string]any
}

// New creates an empty emulator.
func New() *Server {
	return &Server{dbs: make(map[string]*database)}
}

// Close implements cosmos.Transport. The emulator holds no external
// resources; stored data remains readable until the Server is garbage
// collected.
func (s *Server) Close() error {
	return nil
}

// Invoke implements cosmos.Transport.
func (s *Server) Invoke(ctx context.Context, req *cosmos.Request) (*cosmos.Response, error) {
	if s.Latency > 0 {
		select {
		case <-time.After(s.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch req.Verb {
	case cosmos.VerbCreateDatabase:
		return s.createDatabase(req)
	case cosmos.VerbReadDatabase:
		return s.readDatabase(req)
	case cosmos.VerbDeleteDatabase:
		return s.deleteDatabase(req)
	case cosmos.VerbListDatabases:
		return s.listDatabases()
	case cosmos.VerbCreateContainer:
		return s.createContainer(req)
	case cosmos.VerbReadContainer:
		return s.readContainer(req)
	case cosmos.VerbDeleteContainer:
		return s.deleteContainer(req)
	case cosmos.VerbListContainers:
		return s.listContainers(req)
	case cosmos.VerbCreateItem:
		return s.createItem(req)
	case cosmos.VerbReadItem:
		return s.readItem(req)
	case cosmos.VerbUpsertItem:
		return s.upsertItem(req)
	case cosmos.VerbReplaceItem:
		return s.replaceItem(req)
	case cosmos.VerbDeleteItem:
		return s.deleteItem(req)
	case cosmos.VerbQueryItems:
		return s.queryItems(req)
	default:
		return nil, &cosmos.StatusError{Class: cosmos.FailureOther, StatusCode: 400, Message: fmt.Sprintf("unsupported verb %v", req.Verb)}
	}
}

func notFound(what, id string) error {
	return &cosmos.StatusError{
		Class:      cosmos.FailureNotFound,
		StatusCode: 404,
		Message:    fmt.Sprintf("%s %q not found", what, id),
	}
}

func conflict(what, id string) error {
	return &cosmos.StatusError{
		Class:      cosmos.FailureConflict,
		StatusCode: 409,
		Message:    fmt.Sprintf("%s %q already exists", what, id),
	}
}

func badRequest(msg string) error {
	return &cosmos.StatusError{Class: cosmos.FailureOther, StatusCode: 400, Message: msg}
}

// ============================================================================
// Database and container verbs
// ============================================================================

func (s *Server) createDatabase(req *cosmos.Request) (*cosmos.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dbs[req.Database]; ok {
		return nil, conflict("database", req.Database)
	}
	s.dbs[req.Database] = &database{id: req.Database, containers: make(map[string]*container)}
	return &cosmos.Response{
		StatusCode: 201,
		Body:       map[string]any{"id": req.Database, "_rid": uuid.NewString()},
	}, nil
}

func (s *Server) readDatabase(req *cosmos.Request) (*cosmos.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.dbs[req.Database]; !ok {
		return nil, notFound("database", req.Database)
	}
	return &cosmos.Response{StatusCode: 200, Body: map[string]any{"id": req.Database}}, nil
}

func (s *Server) deleteDatabase(req *cosmos.Request) (*cosmos.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dbs[req.Database]; !ok {
		return nil, notFound("database", req.Database)
	}
	delete(s.dbs, req.Database)
	return &cosmos.Response{StatusCode: 204}, nil
}

func (s *Server) listDatabases() (*cosmos.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]map[string]any, 0, len(s.dbs))
	for id := range s.dbs {
		items = append(items, map[string]any{"id": id})
	}
	return &cosmos.Response{StatusCode: 200, Items: items}, nil
}

func (s *Server) createContainer(req *cosmos.Request) (*cosmos.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, ok := s.dbs[req.Database]
	if !ok {
		return nil, notFound("database", req.Database)
	}
	if _, ok := db.containers[req.Container]; ok {
		return nil, conflict("container", req.Container)
	}

	pkPath := declaredPath(req.Body)
	if pkPath == "" {
		return nil, badRequest("container body must declare partitionKey.paths")
	}

	db.containers[req.Container] = &container{
		id:         req.Container,
		pkPath:     pkPath,
		partitions: make(map[string]map[string]map[string]any),
	}
	return &cosmos.Response{StatusCode: 201, Body: containerProperties(req.Container, pkPath)}, nil
}

func (s *Server) readContainer(req *cosmos.Request) (*cosmos.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cont, err := s.container(req)
	if err != nil {
		return nil, err
	}
	return &cosmos.Response{StatusCode: 200, Body: containerProperties(cont.id, cont.pkPath)}, nil
}

func (s *Server) deleteContainer(req *cosmos.Request) (*cosmos.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, ok := s.dbs[req.Database]
	if !ok {
		return nil, notFound("database", req.Database)
	}
	if _, ok := db.containers[req.Container]; !ok {
		return nil, notFound("container", req.Container)
	}
	delete(db.containers, req.Container)
	return &cosmos.Response{StatusCode: 204}, nil
}

func (s *Server) listContainers(req *cosmos.Request) (*cosmos.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, ok := s.dbs[req.Database]
	if !ok {
		return nil, notFound("database", req.Database)
	}
	items := make([]map[string]any, 0, len(db.containers))
	for _, cont := range db.containers {
		items = append(items, containerProperties(cont.id, cont.pkPath))
	}
	return &cosmos.Response{StatusCode: 200, Items: items}, nil
}

// ============================================================================
// Item verbs
// ============================================================================

func (s *Server) createItem(req *cosmos.Request) (*cosmos.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cont, err := s.container(req)
	if err != nil {
		return nil, err
	}
	id, err := itemID(req.Body)
	if err != nil {
		return nil, err
	}

	partition := cont.partition(req.PartitionKey)
	if _, ok := partition[id]; ok {
		return nil, conflict("item", id)
	}

	doc := stamp(copyDoc(req.Body))
	partition[id] = doc
	return &cosmos.Response{StatusCode: 201, Body: copyDoc(doc)}, nil
}

func (s *Server) readItem(req *cosmos.Request) (*cosmos.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cont, err := s.container(req)
	if err != nil {
		return nil, err
	}
	doc, ok := cont.lookup(req.PartitionKey)[req.ItemID]
	if !ok {
		return nil, notFound("item", req.ItemID)
	}
	return &cosmos.Response{StatusCode: 200, Body: copyDoc(doc)}, nil
}

func (s *Server) upsertItem(req *cosmos.Request) (*cosmos.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cont, err := s.container(req)
	if err != nil {
		return nil, err
	}
	id, err := itemID(req.Body)
	if err != nil {
		return nil, err
	}

	partition := cont.partition(req.PartitionKey)
	if existing, ok := partition[id]; ok {
		if err := checkEtag(req, existing); err != nil {
			return nil, err
		}
	}

	doc := stamp(copyDoc(req.Body))
	partition[id] = doc
	return &cosmos.Response{StatusCode: 200, Body: copyDoc(doc)}, nil
}

func (s *Server) replaceItem(req *cosmos.Request) (*cosmos.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cont, err := s.container(req)
	if err != nil {
		return nil, err
	}
	partition := cont.partition(req.PartitionKey)
	existing, ok := partition[req.ItemID]
	if !ok {
		return nil, notFound("item", req.ItemID)
	}
	if err := checkEtag(req, existing); err != nil {
		return nil, err
	}

	doc := stamp(copyDoc(req.Body))
	partition[req.ItemID] = doc
	return &cosmos.Response{StatusCode: 200, Body: copyDoc(doc)}, nil
}

func (s *Server) deleteItem(req *cosmos.Request) (*cosmos.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cont, err := s.container(req)
	if err != nil {
		return nil, err
	}
	partition := cont.partition(req.PartitionKey)
	if _, ok := partition[req.ItemID]; !ok {
		return nil, notFound("item", req.ItemID)
	}
	delete(partition, req.ItemID)
	return &cosmos.Response{StatusCode: 204}, nil
}

func (s *Server) queryItems(req *cosmos.Request) (*cosmos.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cont, err := s.container(req)
	if err != nil {
		return nil, err
	}
	predicates, err := parseQuery(req.Query)
	if err != nil {
		return nil, err
	}

	var items []map[string]any
	for _, doc := range cont.lookup(req.PartitionKey) {
		if predicates.match(doc) {
			items = append(items, copyDoc(doc))
		}
	}
	return &cosmos.Response{StatusCode: 200, Items: items}, nil
}

// ============================================================================
// Helpers
// ============================================================================

// container resolves the addressed container; the caller holds s.mu.
func (s *Server) container(req *cosmos.Request) (*container, error) {
	db, ok := s.dbs[req.Database]
	if !ok {
		return nil, notFound("database", req.Database)
	}
	cont, ok := db.containers[req.Container]
	if !ok {
		return nil, notFound("container", req.Container)
	}
	return cont, nil
}

// lookup returns the partition for reading; callers hold at least s.mu
// read-locked. A missing partition reads as nil, which ranges and indexes
// as empty.
func (c *container) lookup(pk *cosmos.PartitionKey) map[string]map[string]any {
	return c.partitions[routingKey(pk)]
}

// partition returns the partition for writing, creating it on first use;
// callers hold s.mu write-locked.
func (c *container) partition(pk *cosmos.PartitionKey) map[string]map[string]any {
	key := routingKey(pk)
	partition, ok := c.partitions[key]
	if !ok {
		partition = make(map[string]map[string]any)
		c.partitions[key] = partition
	}
	return partition
}

// routingKey folds the partition-key scalar into a map key. The type tag
// keeps "1" and 1 in separate partitions.
func routingKey(pk *cosmos.PartitionKey) string {
	if pk == nil {
		return ""
	}
	v := pk.Value()
	return fmt.Sprintf("%T|%v", v, v)
}

func itemID(body map[string]any) (string, error) {
	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", badRequest("item body must carry a string id")
	}
	return id, nil
}

func checkEtag(req *cosmos.Request, existing map[string]any) error {
	if req.IfMatchEtag == "" {
		return nil
	}
	current, _ := existing["_etag"].(string)
	if current != req.IfMatchEtag {
		return &cosmos.StatusError{
			Class:      cosmos.FailurePrecondition,
			StatusCode: 412,
			Message:    "etag mismatch",
		}
	}
	return nil
}

// stamp assigns the server-side system properties.
func stamp(doc map[string]any) map[string]any {
	if _, ok := doc["_rid"]; !ok {
		doc["_rid"] = uuid.NewString()
	}
	doc["_etag"] = uuid.NewString()
	doc["_ts"] = time.Now().Unix()
	return doc
}

func containerProperties(id, pkPath string) map[string]any {
	return map[string]any{
		"id": id,
		"partitionKey": map[string]any{
			"paths": []any{pkPath},
			"kind":  "Hash",
		},
	}
}

func declaredPath(body map[string]any) string {
	pkProps, ok := body["partitionKey"].(map[string]any)
	if !ok {
		return ""
	}
	paths, ok := pkProps["paths"].([]any)
	if !ok || len(paths) == 0 {
		return ""
	}
	path, _ := paths[0].(string)
	return path
}

func copyDoc(doc map[string]any) map[string]any {
	if doc == nil {
		return nil
	}
	out := make(map[string]any, len(doc))
	for key, val := range doc {
		out[key] = copyValue(val)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyDoc(val)
	case []any:
		out := make([]any, len(val))
		for i, entry := range val {
			out[i] = copyValue(entry)
		}
		return out
	default:
		return v
	}
}
