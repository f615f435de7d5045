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
	"errors"
)

// Database is a handle for one database: a back-reference to the client's
// shared transport plus an identifier. It owns nothing of its own and is
// cheap to create and copy around.
type Database struct {
	client *Client
	id     string
}

// ID returns the database identifier.
func (d *Database) ID() string {
	return d.id
}

// Container returns a handle for the given container. No network call is
// made; the container is not required to exist yet.
func (d *Database) Container(id string) *Container {
	return &Container{db: d, id: id}
}

// CreateContainer creates a container with the given id and declared
// partition-key path (for example "/category") and returns its properties.
// The declared path is remembered so later writes can resolve partition
// keys from document bodies without a metadata fetch.
func (d *Database) CreateContainer(ctx context.Context, id, partitionKeyPath string) (map[string]any, error) {
	if partitionKeyPath == "" {
		return nil, errors.New("cosmos: partition key path is required")
	}
	body := map[string]any{
		"id": id,
		"partitionKey": map[string]any{
			"paths": []any{partitionKeyPath},
			"kind":  "Hash",
		},
	}
	resp, err := d.client.invoke(ctx, &Request{
		Verb:      VerbCreateContainer,
		Database:  d.id,
		Container: id,
		Body:      body,
	})
	if err != nil {
		return nil, err
	}
	d.client.rememberPartitionKeyPath(d.id, id, partitionKeyPath)
	if resp.Body == nil {
		return decodeBody(body), nil
	}
	return decodeBody(resp.Body), nil
}

// DeleteContainer deletes a container.
func (d *Database) DeleteContainer(ctx context.Context, id string) error {
	_, err := d.client.invoke(ctx, &Request{
		Verb:      VerbDeleteContainer,
		Database:  d.id,
		Container: id,
	})
	return err
}

// ListContainers lists the properties of every container in this database.
func (d *Database) ListContainers(ctx context.Context) ([]map[string]any, error) {
	resp, err := d.client.invoke(ctx, &Request{Verb: VerbListContainers, Database: d.id})
	if err != nil {
		return nil, err
	}
	return decodeItems(resp.Items), nil
}

// Read fetches the database properties.
func (d *Database) Read(ctx context.Context) (map[string]any, error) {
	resp, err := d.client.invoke(ctx, &Request{Verb: VerbReadDatabase, Database: d.id})
	if err != nil {
		return nil, err
	}
	return decodeBody(resp.Body), nil
}

// Delete deletes this database.
func (d *Database) Delete(ctx context.Context) error {
	_, err := d.client.invoke(ctx, &Request{Verb: VerbDeleteDatabase, Database: d.id})
	return err
}
