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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTransport is an in-test collaborator: it counts calls, records the
// last request, and answers with an injectable response or latency.
type stubTransport struct {
	mu      sync.Mutex
	calls   int
	lastReq *Request
	delay   time.Duration
	respond func(req *Request) (*Response, error)
}

func (s *stubTransport) Invoke(ctx context.Context, req *Request) (*Response, error) {
	s.mu.Lock()
	s.calls++
	s.lastReq = req
	respond := s.respond
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if respond != nil {
		return respond(req)
	}
	return &Response{StatusCode: 200, Body: req.Body}, nil
}

func (s *stubTransport) Close() error { return nil }

func (s *stubTransport) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubTransport) last() *Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReq
}

func newTestClient(t *testing.T, transport Transport) *Client {
	t.Helper()
	client, err := NewClient("https://unit.test:8081", KeyCredential{Key: "test-key"}, &ClientOptions{
		Transport:        transport,
		DisableTelemetry: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCreateItemDetectsPartitionKeyFromBody(t *testing.T) {
	st := &stubTransport{}
	container := newTestClient(t, st).Database("shop").Container("products")

	created, err := container.CreateItem(context.Background(), map[string]any{
		"id":       "1",
		"category": "electronics",
		"name":     "Laptop",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", created["name"])

	req := st.last()
	require.NotNil(t, req)
	assert.Equal(t, VerbCreateItem, req.Verb)
	assert.Equal(t, "shop", req.Database)
	assert.Equal(t, "products", req.Container)
	require.NotNil(t, req.PartitionKey)
	assert.Equal(t, "electronics", req.PartitionKey.Value())
	assert.NotEmpty(t, req.ActivityID)
	assert.Equal(t, 1, st.callCount())
}

func TestCreateItemInvalidJSONIssuesNoCall(t *testing.T) {
	st := &stubTransport{}
	container := newTestClient(t, st).Database("shop").Container("products")

	_, err := container.CreateItem(context.Background(), `{"id": "1", "broken"`, nil)

	var payloadErr *InvalidPayloadError
	require.ErrorAs(t, err, &payloadErr)
	assert.Equal(t, 0, st.callCount())
}

func TestUpsertItemInvalidJSONIssuesNoCall(t *testing.T) {
	st := &stubTransport{}
	container := newTestClient(t, st).Database("shop").Container("products")

	_, err := container.UpsertItem(context.Background(), `not json at all`, nil)

	var payloadErr *InvalidPayloadError
	require.ErrorAs(t, err, &payloadErr)
	assert.Equal(t, 0, st.callCount())
}

func TestCreateItemMissingPartitionKeyIssuesNoCall(t *testing.T) {
	st := &stubTransport{}
	container := newTestClient(t, st).Database("shop").Container("products")

	_, err := container.CreateItem(context.Background(), map[string]any{
		"id":   "1",
		"name": "Laptop",
	}, nil)

	var missing *MissingPartitionKeyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 0, st.callCount())
}

func TestTextBodyPartitionKeyResolution(t *testing.T) {
	st := &stubTransport{}
	container := newTestClient(t, st).Database("shop").Container("products")

	// Candidate detection works on the parsed wire value, so text bodies
	// carrying a candidate field resolve like native documents.
	_, err := container.CreateItem(context.Background(), `{"id": "1", "category": "electronics"}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "electronics", st.last().PartitionKey.Value())

	// Without any candidate field, text bodies need the explicit option.
	_, err = container.CreateItem(context.Background(), `{"id": "2"}`, nil)
	var missing *MissingPartitionKeyError
	require.ErrorAs(t, err, &missing)

	_, err = container.CreateItem(context.Background(), `{"id": "2"}`,
		&ItemOptions{PartitionKey: "electronics"})
	require.NoError(t, err)
}

func TestReadItemRequiresPartitionKey(t *testing.T) {
	st := &stubTransport{}
	container := newTestClient(t, st).Database("shop").Container("products")

	_, err := container.ReadItem(context.Background(), "1", nil)

	var missing *MissingPartitionKeyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 0, st.callCount())
}

func TestQueryItemsRequiresPartitionKey(t *testing.T) {
	st := &stubTransport{}
	container := newTestClient(t, st).Database("shop").Container("products")

	_, err := container.QueryItems(context.Background(), "SELECT * FROM c", nil)

	var missing *MissingPartitionKeyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 0, st.callCount())
}

func TestReplaceItemRequiresExplicitPartitionKey(t *testing.T) {
	st := &stubTransport{}
	container := newTestClient(t, st).Database("shop").Container("products")

	// Candidate fields in the body do not help replace.
	_, err := container.ReplaceItem(context.Background(), "1", map[string]any{
		"id":       "1",
		"category": "electronics",
	}, nil)

	var missing *MissingPartitionKeyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 0, st.callCount())
}

func TestDeclaredPathWinsOverCandidates(t *testing.T) {
	st := &stubTransport{
		respond: func(req *Request) (*Response, error) {
			if req.Verb == VerbReadContainer {
				return &Response{StatusCode: 200, Body: map[string]any{
					"id": req.Container,
					"partitionKey": map[string]any{
						"paths": []any{"/region"},
						"kind":  "Hash",
					},
				}}, nil
			}
			return &Response{StatusCode: 200, Body: req.Body}, nil
		},
	}
	container := newTestClient(t, st).Database("shop").Container("products")

	// Fetch the container properties once; the declared path is cached.
	_, err := container.Read(context.Background())
	require.NoError(t, err)

	_, err = container.CreateItem(context.Background(), map[string]any{
		"id":       "1",
		"category": "electronics",
		"region":   "emea",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "emea", st.last().PartitionKey.Value())
}

func TestErrorTranslationEndToEnd(t *testing.T) {
	tests := []struct {
		name   string
		class  FailureClass
		status int
		kind   ErrorKind
	}{
		{"not found", FailureNotFound, 404, KindResourceNotFound},
		{"conflict", FailureConflict, 409, KindResourceExists},
		{"precondition failed", FailurePrecondition, 412, KindPreconditionFailed},
		{"anything else", FailureOther, 503, KindGenericHTTP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &stubTransport{
				respond: func(req *Request) (*Response, error) {
					return nil, &StatusError{Class: tt.class, StatusCode: tt.status, Message: "from remote"}
				},
			}
			container := newTestClient(t, st).Database("shop").Container("products")

			_, err := container.ReadItem(context.Background(), "1", "electronics")
			require.Error(t, err)
			assert.Equal(t, tt.kind, Kind(err))

			var httpErr *HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, "from remote", httpErr.Message)
		})
	}
}

func TestIfMatchEtagIsThreaded(t *testing.T) {
	st := &stubTransport{}
	container := newTestClient(t, st).Database("shop").Container("products")

	_, err := container.ReplaceItem(context.Background(), "1", map[string]any{"id": "1"}, &ItemOptions{
		PartitionKey: "electronics",
		IfMatchEtag:  "etag-123",
	})
	require.NoError(t, err)
	assert.Equal(t, "etag-123", st.last().IfMatchEtag)
}

func TestWriteEchoesBodyWhenTransportReturnsNone(t *testing.T) {
	st := &stubTransport{
		respond: func(req *Request) (*Response, error) {
			return &Response{StatusCode: 201}, nil
		},
	}
	container := newTestClient(t, st).Database("shop").Container("products")

	created, err := container.CreateItem(context.Background(), map[string]any{
		"id":       "1",
		"category": "electronics",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "1", created["id"])
}

func TestConcurrentReadsDoNotSerialize(t *testing.T) {
	const (
		readers = 8
		latency = 60 * time.Millisecond
	)
	st := &stubTransport{
		delay: latency,
		respond: func(req *Request) (*Response, error) {
			return &Response{StatusCode: 200, Body: map[string]any{"id": req.ItemID}}, nil
		},
	}
	container := newTestClient(t, st).Database("shop").Container("products")

	var wg sync.WaitGroup
	started := time.Now()
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := container.ReadItem(context.Background(), "1", "electronics")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	elapsed := time.Since(started)

	assert.Equal(t, readers, st.callCount())
	// Serial execution would take readers×latency (480ms).
	assert.Less(t, elapsed, time.Duration(readers)*latency/2,
		"reads appear to serialize inside the binding layer")
}

func TestAsyncVariantsResolve(t *testing.T) {
	st := &stubTransport{}
	container := newTestClient(t, st).Database("shop").Container("products")

	future := container.CreateItemAsync(context.Background(), map[string]any{
		"id":       "1",
		"category": "electronics",
	}, nil)
	created, err := future.Wait()
	require.NoError(t, err)
	assert.Equal(t, "1", created["id"])

	deleteFuture := container.DeleteItemAsync(context.Background(), "1", "electronics")
	_, err = deleteFuture.Wait()
	require.NoError(t, err)
}
