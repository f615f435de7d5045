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
	"fmt"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// Credential authenticates a client against the account. Today the only
// implementation is KeyCredential; the interface leaves room for richer
// credential objects later.
type Credential interface {
	// credentialKind names the credential type for logging.
	credentialKind() string
}

// KeyCredential is key-based authentication with an account key string.
type KeyCredential struct {
	Key string
}

func (KeyCredential) credentialKind() string { return "key" }

// Client is the top-level handle for a document database account. It owns
// the shared transport for its lifetime; Database and Container handles
// borrow it and hold no independent resources.
//
// A Client is either open or closed. Operations on a closed client fail
// fast with ErrClientClosed without contacting the transport. All handles
// descending from one Client share the transport concurrently without
// additional locking.
//
// Example:
//
//	client, err := cosmos.NewClient(endpoint, cosmos.KeyCredential{Key: key}, &cosmos.ClientOptions{
//	    Transport: transport,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
type Client struct {
	endpoint  string
	cred      Credential
	transport Transport
	log       zerolog.Logger
	pkFields  []string

	// pkPaths caches declared partition-key paths per "db/container".
	pkPaths *lru.Cache[string, string]

	telemetryOff bool

	mu     sync.RWMutex
	closed bool
}

// NewClient creates a client for the given account endpoint. The
// credential is required, as is opts.Transport. Constructing the client
// performs no network call.
func NewClient(endpoint string, cred Credential, opts *ClientOptions) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("cosmos: endpoint is required")
	}
	if cred == nil {
		return nil, errors.New("cosmos: credential is required")
	}
	if opts == nil || opts.Transport == nil {
		return nil, errors.New("cosmos: ClientOptions.Transport is required")
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	fields := opts.PartitionKeyFields
	if fields == nil {
		fields = DefaultPartitionKeyFields
	}

	cacheSize := opts.PropertiesCacheSize
	if cacheSize <= 0 {
		cacheSize = defaultPropertiesCacheSize
	}
	pkPaths, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("cosmos: properties cache: %w", err)
	}

	c := &Client{
		endpoint:     endpoint,
		cred:         cred,
		transport:    opts.Transport,
		log:          logger,
		pkFields:     fields,
		pkPaths:      pkPaths,
		telemetryOff: opts.DisableTelemetry,
	}

	if !c.telemetryOff {
		trackClientCreated(cred.credentialKind())
	}
	c.log.Debug().Str("endpoint", endpoint).Str("credential", cred.credentialKind()).Msg("client created")
	return c, nil
}

// NewClientFromEnv creates a client configured from COSMOS_ENDPOINT and
// COSMOS_KEY. opts.Transport is still required.
func NewClientFromEnv(opts *ClientOptions) (*Client, error) {
	cfg, err := LoadEnvConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("cosmos: COSMOS_ENDPOINT is not set")
	}
	if cfg.Key == "" {
		return nil, errors.New("cosmos: COSMOS_KEY is not set")
	}
	if opts != nil && cfg.DisableTelemetry {
		o := *opts
		o.DisableTelemetry = true
		opts = &o
	}
	return NewClient(cfg.Endpoint, KeyCredential{Key: cfg.Key}, opts)
}

// WithClient runs fn with a client that is guaranteed to be released on
// every exit path, including a panic inside fn. Descendant handles need no
// cleanup of their own since they hold no independent resources.
func WithClient(endpoint string, cred Credential, opts *ClientOptions, fn func(*Client) error) error {
	client, err := NewClient(endpoint, cred, opts)
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}

// Endpoint returns the account endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Database returns a handle for the given database. No network call is
// made; the database is not required to exist yet.
func (c *Client) Database(id string) *Database {
	return &Database{client: c, id: id}
}

// CreateDatabase creates a new database and returns its properties.
func (c *Client) CreateDatabase(ctx context.Context, id string) (map[string]any, error) {
	resp, err := c.invoke(ctx, &Request{Verb: VerbCreateDatabase, Database: id})
	if err != nil {
		return nil, err
	}
	if resp.Body == nil {
		return map[string]any{"id": id}, nil
	}
	return decodeBody(resp.Body), nil
}

// DeleteDatabase deletes a database.
func (c *Client) DeleteDatabase(ctx context.Context, id string) error {
	_, err := c.invoke(ctx, &Request{Verb: VerbDeleteDatabase, Database: id})
	return err
}

// ListDatabases lists the properties of every database in the account.
func (c *Client) ListDatabases(ctx context.Context) ([]map[string]any, error) {
	resp, err := c.invoke(ctx, &Request{Verb: VerbListDatabases})
	if err != nil {
		return nil, err
	}
	return decodeItems(resp.Items), nil
}

// Close releases the shared transport. Closing an already closed client is
// a no-op. Handles created from this client fail fast afterwards.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if !c.telemetryOff {
		flushTelemetry()
	}
	c.log.Debug().Str("endpoint", c.endpoint).Msg("client closed")
	return c.transport.Close()
}

// Closed reports whether the client has been closed.
func (c *Client) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Client) ensureOpen() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

// invoke is the one path from handle methods to the transport: it checks
// the client state, schedules the call on the execution bridge, and
// translates any failure at the chokepoint. No untranslated transport
// error propagates past this point.
func (c *Client) invoke(ctx context.Context, req *Request) (*Response, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	req.ActivityID = uuid.NewString()
	c.log.Debug().
		Stringer("verb", req.Verb).
		Str("database", req.Database).
		Str("container", req.Container).
		Str("activity_id", req.ActivityID).
		Msg("invoking transport")

	resp, err := executionBridge().runBlocking(ctx, func(ctx context.Context) (*Response, error) {
		return c.transport.Invoke(ctx, req)
	})
	if err != nil {
		translated := translateTransportErr(err, req.ActivityID)
		if !c.telemetryOff {
			trackError(Kind(translated).String(), req.Verb.String())
		}
		c.log.Debug().
			Stringer("verb", req.Verb).
			Str("activity_id", req.ActivityID).
			Err(translated).
			Msg("transport call failed")
		return nil, translated
	}
	return resp, nil
}

// cachedPartitionKeyPath returns the declared partition-key path for a
// container when it is already known, without forcing a fetch.
func (c *Client) cachedPartitionKeyPath(database, container string) string {
	path, _ := c.pkPaths.Get(database + "/" + container)
	return path
}

func (c *Client) rememberPartitionKeyPath(database, container, path string) {
	if path != "" {
		c.pkPaths.Add(database+"/"+container, path)
	}
}

func decodeItems(items []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, decodeBody(item))
	}
	return out
}
