// Copyright 2026 the cosmos-go authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Command cosmos-demo walks through the SDK surface against the in-memory
// emulator: database and container management, item CRUD with automatic
// partition-key detection, single-partition queries, and the error
// taxonomy.
//
// Configuration comes from the environment (optionally a .env file):
// COSMOS_ENDPOINT and COSMOS_KEY. Both default to emulator-friendly values
// when unset.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	cosmos "github.com/cosmosdk/cosmos-go"
	"github.com/cosmosdk/cosmos-go/emulator"
)

func main() {
	// Missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	endpoint := os.Getenv("COSMOS_ENDPOINT")
	if endpoint == "" {
		endpoint = "https://localhost:8081"
	}
	key := os.Getenv("COSMOS_KEY")
	if key == "" {
		key = "local-emulator-key"
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel)

	err := cosmos.WithClient(endpoint, cosmos.KeyCredential{Key: key}, &cosmos.ClientOptions{
		Transport: emulator.New(),
		Logger:    &logger,
	}, run)
	if err != nil {
		log.Fatal(err)
	}
}

func run(client *cosmos.Client) error {
	ctx := context.Background()

	fmt.Println("=== Database management ===")
	if _, err := client.CreateDatabase(ctx, "shop"); err != nil {
		return err
	}
	dbs, err := client.ListDatabases(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("databases: %v\n", dbs)

	db := client.Database("shop")
	if _, err := db.CreateContainer(ctx, "products", "/category"); err != nil {
		return err
	}

	fmt.Println("\n=== Item CRUD ===")
	container := db.Container("products")

	// Native document body; partition key detected from "category".
	created, err := container.CreateItem(ctx, map[string]any{
		"id":       "1",
		"category": "electronics",
		"name":     "Laptop",
		"price":    999,
	}, nil)
	if err != nil {
		return err
	}
	fmt.Printf("created: %v\n", created)

	// Pre-serialized JSON body; partition key must be explicit.
	if _, err := container.CreateItem(ctx, `{"id": "2", "category": "electronics", "name": "Mouse", "price": 25}`,
		&cosmos.ItemOptions{PartitionKey: "electronics"}); err != nil {
		return err
	}

	item, err := container.ReadItem(ctx, "1", "electronics")
	if err != nil {
		return err
	}
	fmt.Printf("read: %v\n", item)

	item["price"] = 899
	if _, err := container.ReplaceItem(ctx, "1", item, &cosmos.ItemOptions{PartitionKey: "electronics"}); err != nil {
		return err
	}

	fmt.Println("\n=== Single-partition query ===")
	results, err := container.QueryItems(ctx, "SELECT * FROM c WHERE c.category = 'electronics'", "electronics")
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("match: id=%v name=%v price=%v\n", r["id"], r["name"], r["price"])
	}

	fmt.Println("\n=== Asynchronous facade ===")
	future := container.ReadItemAsync(ctx, "2", "electronics")
	async, err := future.Wait()
	if err != nil {
		return err
	}
	fmt.Printf("async read: %v\n", async["name"])

	fmt.Println("\n=== Error taxonomy ===")
	_, err = container.ReadItem(ctx, "missing", "electronics")
	var notFound *cosmos.NotFoundError
	if errors.As(err, &notFound) {
		fmt.Printf("not found as expected: status=%d kind=%s\n", notFound.StatusCode, cosmos.Kind(err))
	}

	_, err = container.CreateItem(ctx, map[string]any{"id": "1", "category": "electronics"}, nil)
	var conflict *cosmos.ConflictError
	if errors.As(err, &conflict) {
		fmt.Printf("conflict as expected: status=%d\n", conflict.StatusCode)
	}

	if err := container.DeleteItem(ctx, "1", "electronics"); err != nil {
		return err
	}
	fmt.Println("\ndemo complete")
	return nil
}
