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
)

// Container is a handle for one container: a back-reference to its
// database handle plus an identifier. It owns nothing of its own.
//
// Every item operation runs the same pipeline: resolve the partition key
// and encode the body (both strictly before any network call), schedule
// the transport call on the execution bridge, then translate failures or
// decode the response.
//
// Example:
//
//	container := client.Database("shop").Container("products")
//
//	// Native document body; the partition key is detected from "category".
//	item, err := container.CreateItem(ctx, map[string]any{
//	    "id":       "1",
//	    "category": "electronics",
//	    "name":     "Laptop",
//	}, nil)
//
//	// Pre-serialized JSON body; the partition key must be explicit.
//	item, err = container.CreateItem(ctx, `{"id": "2", "name": "Mouse"}`,
//	    &cosmos.ItemOptions{PartitionKey: "electronics"})
type Container struct {
	db *Database
	id string
}

// ID returns the container identifier.
func (c *Container) ID() string {
	return c.id
}

// CreateItem creates a new item. The body is either a native document
// (map[string]any) or pre-serialized JSON text (string, []byte,
// json.RawMessage). Without an explicit opts.PartitionKey the key is read
// from the body: first via the container's declared partition-key path
// when known, then via the candidate-field list.
func (c *Container) CreateItem(ctx context.Context, body any, opts *ItemOptions) (map[string]any, error) {
	return c.writeItem(ctx, VerbCreateItem, "", body, opts)
}

// UpsertItem creates the item or replaces an existing one with the same id
// and partition key. Partition-key handling matches CreateItem.
func (c *Container) UpsertItem(ctx context.Context, body any, opts *ItemOptions) (map[string]any, error) {
	return c.writeItem(ctx, VerbUpsertItem, "", body, opts)
}

// ReplaceItem replaces the item with the given id. Unlike CreateItem and
// UpsertItem, the partition key must be supplied explicitly in opts.
func (c *Container) ReplaceItem(ctx context.Context, id string, body any, opts *ItemOptions) (map[string]any, error) {
	return c.replaceItem(ctx, id, body, opts)
}

// ReadItem reads the item with the given id. The partition key is
// mandatory; there is no cross-partition lookup.
func (c *Container) ReadItem(ctx context.Context, id string, partitionKey any) (map[string]any, error) {
	pk, err := c.explicitKey(partitionKey, VerbReadItem)
	if err != nil {
		return nil, err
	}
	resp, err := c.db.client.invoke(ctx, &Request{
		Verb:         VerbReadItem,
		Database:     c.db.id,
		Container:    c.id,
		ItemID:       id,
		PartitionKey: pk,
	})
	if err != nil {
		return nil, err
	}
	return decodeBody(resp.Body), nil
}

// DeleteItem deletes the item with the given id. The partition key is
// mandatory.
func (c *Container) DeleteItem(ctx context.Context, id string, partitionKey any) error {
	pk, err := c.explicitKey(partitionKey, VerbDeleteItem)
	if err != nil {
		return err
	}
	_, err = c.db.client.invoke(ctx, &Request{
		Verb:         VerbDeleteItem,
		Database:     c.db.id,
		Container:    c.id,
		ItemID:       id,
		PartitionKey: pk,
	})
	return err
}

// QueryItems runs a query within a single partition and returns the
// matching items. The partition key is mandatory; no cross-partition
// fan-out is performed.
func (c *Container) QueryItems(ctx context.Context, query string, partitionKey any) ([]map[string]any, error) {
	pk, err := c.explicitKey(partitionKey, VerbQueryItems)
	if err != nil {
		return nil, err
	}
	resp, err := c.db.client.invoke(ctx, &Request{
		Verb:         VerbQueryItems,
		Database:     c.db.id,
		Container:    c.id,
		Query:        query,
		PartitionKey: pk,
	})
	if err != nil {
		return nil, err
	}
	return decodeItems(resp.Items), nil
}

// Read fetches the container properties. The declared partition-key path
// found there is cached for later body-based key resolution.
func (c *Container) Read(ctx context.Context) (map[string]any, error) {
	resp, err := c.db.client.invoke(ctx, &Request{
		Verb:      VerbReadContainer,
		Database:  c.db.id,
		Container: c.id,
	})
	if err != nil {
		return nil, err
	}
	props := decodeBody(resp.Body)
	c.db.client.rememberPartitionKeyPath(c.db.id, c.id, declaredPathFromProperties(props))
	return props, nil
}

// Delete deletes this container.
func (c *Container) Delete(ctx context.Context) error {
	_, err := c.db.client.invoke(ctx, &Request{
		Verb:      VerbDeleteContainer,
		Database:  c.db.id,
		Container: c.id,
	})
	return err
}

// CreateItemAsync is the non-blocking variant of CreateItem. Cancelling
// the returned future is best-effort; the in-flight network call is not
// guaranteed to stop.
func (c *Container) CreateItemAsync(ctx context.Context, body any, opts *ItemOptions) *Future[map[string]any] {
	return submitAsync(executionBridge(), ctx, func(ctx context.Context) (map[string]any, error) {
		return c.CreateItem(ctx, body, opts)
	})
}

// UpsertItemAsync is the non-blocking variant of UpsertItem.
func (c *Container) UpsertItemAsync(ctx context.Context, body any, opts *ItemOptions) *Future[map[string]any] {
	return submitAsync(executionBridge(), ctx, func(ctx context.Context) (map[string]any, error) {
		return c.UpsertItem(ctx, body, opts)
	})
}

// ReplaceItemAsync is the non-blocking variant of ReplaceItem.
func (c *Container) ReplaceItemAsync(ctx context.Context, id string, body any, opts *ItemOptions) *Future[map[string]any] {
	return submitAsync(executionBridge(), ctx, func(ctx context.Context) (map[string]any, error) {
		return c.ReplaceItem(ctx, id, body, opts)
	})
}

// ReadItemAsync is the non-blocking variant of ReadItem.
func (c *Container) ReadItemAsync(ctx context.Context, id string, partitionKey any) *Future[map[string]any] {
	return submitAsync(executionBridge(), ctx, func(ctx context.Context) (map[string]any, error) {
		return c.ReadItem(ctx, id, partitionKey)
	})
}

// DeleteItemAsync is the non-blocking variant of DeleteItem.
func (c *Container) DeleteItemAsync(ctx context.Context, id string, partitionKey any) *Future[struct{}] {
	return submitAsync(executionBridge(), ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.DeleteItem(ctx, id, partitionKey)
	})
}

// QueryItemsAsync is the non-blocking variant of QueryItems.
func (c *Container) QueryItemsAsync(ctx context.Context, query string, partitionKey any) *Future[[]map[string]any] {
	return submitAsync(executionBridge(), ctx, func(ctx context.Context) ([]map[string]any, error) {
		return c.QueryItems(ctx, query, partitionKey)
	})
}

// writeItem runs the shared create/upsert pipeline. Marshal and
// partition-key failures surface before the transport is ever contacted.
func (c *Container) writeItem(ctx context.Context, verb Verb, itemID string, body any, opts *ItemOptions) (map[string]any, error) {
	client := c.db.client
	if err := client.ensureOpen(); err != nil {
		return nil, err
	}

	doc, err := encodeBody(body)
	if err != nil {
		return nil, c.localFailure(err, verb)
	}

	pk, err := resolvePartitionKey(
		opts.explicitPartitionKey(),
		doc,
		client.cachedPartitionKeyPath(c.db.id, c.id),
		client.pkFields,
		verb.String(),
		true,
	)
	if err != nil {
		return nil, c.localFailure(err, verb)
	}

	resp, err := client.invoke(ctx, &Request{
		Verb:         verb,
		Database:     c.db.id,
		Container:    c.id,
		ItemID:       itemID,
		PartitionKey: pk,
		Body:         doc,
		IfMatchEtag:  opts.ifMatchEtag(),
	})
	if err != nil {
		return nil, err
	}
	if resp.Body == nil {
		// Transport echoed nothing; return the encoded document.
		return doc, nil
	}
	return decodeBody(resp.Body), nil
}

func (c *Container) replaceItem(ctx context.Context, id string, body any, opts *ItemOptions) (map[string]any, error) {
	client := c.db.client
	if err := client.ensureOpen(); err != nil {
		return nil, err
	}

	doc, err := encodeBody(body)
	if err != nil {
		return nil, c.localFailure(err, VerbReplaceItem)
	}

	pk, err := resolvePartitionKey(
		opts.explicitPartitionKey(),
		doc,
		"",
		nil,
		VerbReplaceItem.String(),
		false,
	)
	if err != nil {
		return nil, c.localFailure(err, VerbReplaceItem)
	}

	resp, err := client.invoke(ctx, &Request{
		Verb:         VerbReplaceItem,
		Database:     c.db.id,
		Container:    c.id,
		ItemID:       id,
		PartitionKey: pk,
		Body:         doc,
		IfMatchEtag:  opts.ifMatchEtag(),
	})
	if err != nil {
		return nil, err
	}
	if resp.Body == nil {
		return doc, nil
	}
	return decodeBody(resp.Body), nil
}

// explicitKey validates a mandatory caller-supplied partition key.
func (c *Container) explicitKey(partitionKey any, verb Verb) (*PartitionKey, error) {
	if partitionKey == nil {
		return nil, c.localFailure(&MissingPartitionKeyError{Operation: verb.String()}, verb)
	}
	pk, err := NewPartitionKey(partitionKey)
	if err != nil {
		return nil, c.localFailure(err, verb)
	}
	return pk, nil
}

// localFailure records a pre-network failure and returns it unchanged.
func (c *Container) localFailure(err error, verb Verb) error {
	client := c.db.client
	if !client.telemetryOff {
		trackError(Kind(err).String(), verb.String())
	}
	client.log.Debug().Stringer("verb", verb).Err(err).Msg("operation rejected before transport")
	return err
}

// declaredPathFromProperties pulls partitionKey.paths[0] out of container
// properties, if present.
func declaredPathFromProperties(props map[string]any) string {
	pkProps, ok := props["partitionKey"].(map[string]any)
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
