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
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// The execution bridge is the one process-wide mutable singleton in this
// package: a shared concurrent runtime that runs transport operations on
// behalf of synchronous and asynchronous callers. It is constructed lazily,
// exactly once, on first use, and lives until process exit. Handles never
// reach it directly; they go through Client.invoke.
var (
	bridgeOnce   sync.Once
	sharedBridge *bridge

	// bridgeBuilds counts constructions; it must never exceed one.
	bridgeBuilds atomic.Int64
)

// asyncDispatchFactor sizes the bounded dispatcher for the asynchronous
// facade relative to GOMAXPROCS.
const asyncDispatchFactor = 16

type bridge struct {
	// dispatch bounds how many asynchronous submissions run at once so a
	// flood of Submit calls cannot exhaust the process.
	dispatch *semaphore.Weighted

	// inflight tracks every operation the bridge has scheduled.
	inflight sync.WaitGroup

	// ops counts operations scheduled over the bridge lifetime.
	ops atomic.Int64
}

// executionBridge returns the shared runtime, constructing it on first use.
// Concurrent first use from many goroutines still yields exactly one
// construction. Building a runtime per call or per handle is deliberately
// impossible: the constructor is not exported and not reachable elsewhere.
func executionBridge() *bridge {
	bridgeOnce.Do(func() {
		sharedBridge = newBridge()
	})
	return sharedBridge
}

func newBridge() *bridge {
	bridgeBuilds.Add(1)
	return &bridge{
		dispatch: semaphore.NewWeighted(int64(asyncDispatchFactor * runtime.GOMAXPROCS(0))),
	}
}

// runBlocking schedules op on the shared runtime and blocks only the
// calling goroutine until it completes. Concurrent callers do not serialize
// behind each other; independent operations run concurrently. The bridge
// imposes no timeout of its own — timeout and retry stay with the
// transport and the caller's context.
func (b *bridge) runBlocking(ctx context.Context, op func(context.Context) (*Response, error)) (*Response, error) {
	done := make(chan struct{})
	var (
		resp *Response
		err  error
	)

	b.ops.Add(1)
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		defer close(done)
		resp, err = op(ctx)
	}()

	<-done
	return resp, err
}

// Future is the observable result of an asynchronously submitted operation.
type Future[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc
	result T
	err    error
}

// Wait blocks until the operation completes and returns its result.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.result, f.err
}

// Done returns a channel closed when the operation has completed.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Cancel requests cancellation of the operation. Cancellation is
// best-effort only: it cancels the context the operation observes, but an
// in-flight network call is not guaranteed to stop.
func (f *Future[T]) Cancel() {
	f.cancel()
}

// submitAsync runs fn on the shared runtime behind the bounded dispatcher
// so the caller never blocks, not even on the dispatch bound itself.
func submitAsync[T any](b *bridge, ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	ctx, cancel := context.WithCancel(ctx)
	f := &Future[T]{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	b.ops.Add(1)
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		defer close(f.done)
		defer cancel()

		if err := b.dispatch.Acquire(ctx, 1); err != nil {
			f.err = &TransportFailure{Cause: err}
			return
		}
		defer b.dispatch.Release(1)

		f.result, f.err = fn(ctx)
	}()

	return f
}
