// Copyright 2026 the cosmos-go authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package cosmos provides a Go binding layer for a remote document database.
//
// The package does not implement the network protocol itself. It binds to a
// pre-built Transport (the network collaborator) and layers a stable,
// dynamically typed operation surface on top of it:
//
//   - Client → Database → Container handle hierarchy
//   - item CRUD and single-partition queries
//   - automatic payload marshaling (native documents or raw JSON text)
//   - partition-key resolution with a documented candidate-field heuristic
//   - a closed, stable error taxonomy that never leaks transport internals
//
// Example:
//
//	client, err := cosmos.NewClient("https://localhost:8081", cosmos.KeyCredential{Key: key}, &cosmos.ClientOptions{
//	    Transport: transport,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	container := client.Database("shop").Container("products")
//	item, err := container.CreateItem(ctx, map[string]any{
//	    "id":       "1",
//	    "category": "electronics",
//	    "name":     "Laptop",
//	}, nil)
//
//	var notFound *cosmos.NotFoundError
//	_, err = container.ReadItem(ctx, "missing", "electronics")
//	if errors.As(err, &notFound) {
//	    // distinguishable from conflicts, precondition failures, ...
//	}
package cosmos

// Version is the current SDK version.
const Version = "5.0.0"
