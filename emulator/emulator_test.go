// Copyright 2026 the cosmos-go authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package emulator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cosmos "github.com/cosmosdk/cosmos-go"
	"github.com/cosmosdk/cosmos-go/emulator"
)

func newEmulatorClient(t *testing.T) *cosmos.Client {
	t.Helper()
	client, err := cosmos.NewClient("https://localhost:8081", cosmos.KeyCredential{Key: "local"}, &cosmos.ClientOptions{
		Transport:        emulator.New(),
		DisableTelemetry: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func seedContainer(t *testing.T, client *cosmos.Client) *cosmos.Container {
	t.Helper()
	ctx := context.Background()

	_, err := client.CreateDatabase(ctx, "shop")
	require.NoError(t, err)

	db := client.Database("shop")
	_, err = db.CreateContainer(ctx, "products", "/category")
	require.NoError(t, err)

	return db.Container("products")
}

func TestItemLifecycle(t *testing.T) {
	client := newEmulatorClient(t)
	container := seedContainer(t, client)
	ctx := context.Background()

	created, err := container.CreateItem(ctx, map[string]any{
		"id":       "1",
		"category": "electronics",
		"name":     "Laptop",
		"price":    int64(999),
	}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, created["_etag"])
	assert.NotEmpty(t, created["_rid"])

	got, err := container.ReadItem(ctx, "1", "electronics")
	require.NoError(t, err)
	assert.Equal(t, "Laptop", got["name"])
	assert.Equal(t, int64(999), got["price"])

	got["price"] = int64(899)
	replaced, err := container.ReplaceItem(ctx, "1", got, &cosmos.ItemOptions{PartitionKey: "electronics"})
	require.NoError(t, err)
	assert.Equal(t, int64(899), replaced["price"])
	assert.NotEqual(t, created["_etag"], replaced["_etag"], "etag must rotate on replace")

	require.NoError(t, container.DeleteItem(ctx, "1", "electronics"))

	_, err = container.ReadItem(ctx, "1", "electronics")
	var notFound *cosmos.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestCreateDuplicateItemConflicts(t *testing.T) {
	client := newEmulatorClient(t)
	container := seedContainer(t, client)
	ctx := context.Background()

	item := map[string]any{"id": "1", "category": "electronics"}
	_, err := container.CreateItem(ctx, item, nil)
	require.NoError(t, err)

	_, err = container.CreateItem(ctx, item, nil)
	var conflict *cosmos.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 409, conflict.StatusCode)

	// Upsert succeeds where create conflicts.
	_, err = container.UpsertItem(ctx, item, nil)
	assert.NoError(t, err)
}

func TestEtagPrecondition(t *testing.T) {
	client := newEmulatorClient(t)
	container := seedContainer(t, client)
	ctx := context.Background()

	created, err := container.CreateItem(ctx, map[string]any{
		"id":       "1",
		"category": "electronics",
		"name":     "Laptop",
	}, nil)
	require.NoError(t, err)
	etag := created["_etag"].(string)

	// Matching etag passes and rotates.
	_, err = container.ReplaceItem(ctx, "1", created, &cosmos.ItemOptions{
		PartitionKey: "electronics",
		IfMatchEtag:  etag,
	})
	require.NoError(t, err)

	// The old etag no longer matches.
	_, err = container.ReplaceItem(ctx, "1", created, &cosmos.ItemOptions{
		PartitionKey: "electronics",
		IfMatchEtag:  etag,
	})
	var precondition *cosmos.PreconditionFailedError
	require.ErrorAs(t, err, &precondition)
	assert.Equal(t, 412, precondition.StatusCode)
}

func TestPartitionIsolation(t *testing.T) {
	client := newEmulatorClient(t)
	container := seedContainer(t, client)
	ctx := context.Background()

	_, err := container.CreateItem(ctx, map[string]any{"id": "1", "category": "electronics"}, nil)
	require.NoError(t, err)

	// Same id under another partition key is a distinct item, not a
	// conflict.
	_, err = container.CreateItem(ctx, map[string]any{"id": "1", "category": "toys"}, nil)
	require.NoError(t, err)

	// Reading with the wrong partition key finds nothing.
	_, err = container.ReadItem(ctx, "1", "books")
	var notFound *cosmos.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSinglePartitionQuery(t *testing.T) {
	client := newEmulatorClient(t)
	container := seedContainer(t, client)
	ctx := context.Background()

	seed := []map[string]any{
		{"id": "1", "category": "electronics", "name": "Laptop", "price": int64(999)},
		{"id": "2", "category": "electronics", "name": "Mouse", "price": int64(25)},
		{"id": "3", "category": "toys", "name": "Blocks", "price": int64(25)},
	}
	for _, item := range seed {
		_, err := container.CreateItem(ctx, item, nil)
		require.NoError(t, err)
	}

	all, err := container.QueryItems(ctx, "SELECT * FROM c", "electronics")
	require.NoError(t, err)
	assert.Len(t, all, 2, "query must not cross partitions")

	cheap, err := container.QueryItems(ctx, "SELECT * FROM c WHERE c.price = 25", "electronics")
	require.NoError(t, err)
	require.Len(t, cheap, 1)
	assert.Equal(t, "Mouse", cheap[0]["name"])

	named, err := container.QueryItems(ctx,
		"SELECT * FROM c WHERE c.category = 'electronics' AND c.price = 999", "electronics")
	require.NoError(t, err)
	require.Len(t, named, 1)
	assert.Equal(t, "Laptop", named[0]["name"])

	_, err = container.QueryItems(ctx, "DROP TABLE c", "electronics")
	var httpErr *cosmos.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.StatusCode)
}

func TestDeclaredPathResolution(t *testing.T) {
	client := newEmulatorClient(t)
	ctx := context.Background()

	_, err := client.CreateDatabase(ctx, "crm")
	require.NoError(t, err)
	db := client.Database("crm")
	_, err = db.CreateContainer(ctx, "accounts", "/tenant")
	require.NoError(t, err)

	container := db.Container("accounts")

	// "tenant" is not in the default candidate list; resolution works
	// because container creation declared /tenant as the key path.
	created, err := container.CreateItem(ctx, map[string]any{
		"id":     "a-1",
		"tenant": "acme",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "a-1", created["id"])

	got, err := container.ReadItem(ctx, "a-1", "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", got["tenant"])
}

func TestDatabaseAndContainerManagement(t *testing.T) {
	client := newEmulatorClient(t)
	ctx := context.Background()

	_, err := client.CreateDatabase(ctx, "shop")
	require.NoError(t, err)

	_, err = client.CreateDatabase(ctx, "shop")
	var conflict *cosmos.ConflictError
	require.ErrorAs(t, err, &conflict)

	dbs, err := client.ListDatabases(ctx)
	require.NoError(t, err)
	assert.Len(t, dbs, 1)

	db := client.Database("shop")
	_, err = db.CreateContainer(ctx, "products", "/category")
	require.NoError(t, err)

	props, err := db.Container("products").Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "products", props["id"])

	containers, err := db.ListContainers(ctx)
	require.NoError(t, err)
	assert.Len(t, containers, 1)

	require.NoError(t, db.DeleteContainer(ctx, "products"))
	require.NoError(t, client.DeleteDatabase(ctx, "shop"))

	err = client.DeleteDatabase(ctx, "shop")
	var notFound *cosmos.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = db.Read(ctx)
	assert.True(t, errors.As(err, &notFound))
}
