// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package subscriber implements the long-running message consumers that
// the session orchestrator wires to a chat bus: socket readers/writers,
// upstream live-session readers/writers, and the two enrichment tasks (live
// and step-by-step). Every subscriber satisfies bus.Handler so it can
// receive every published message in order, and Task so the orchestrator
// can start it, learn when its own reader loop exits, and stop it.
package subscriber

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rapidaai/mediator/bus"
)

// Task is implemented by every subscriber the orchestrator manages.
// Start spawns whatever long-running reader goroutines the subscriber
// needs — zero or more — and returns one done channel per goroutine; each
// closes when that goroutine exits (client disconnect, upstream close, or
// an unrecoverable error). A purely handle-driven subscriber (nothing to
// read in a loop) returns no channels. Stop requests cooperative shutdown
// of any reader loops and is idempotent. Err reports the error that ended
// the subscriber's reader loop, so the orchestrator can pick a close code.
type Task interface {
	bus.Handler
	Start(ctx context.Context) []<-chan struct{}
	Stop()
	Err() error
}

// base centralizes the idempotent stop flag and terminating error every
// subscriber needs; the session orchestrator may call Stop() from teardown
// while a reader loop is still spinning, and reader loops must notice on
// their next iteration.
type base struct {
	stopped atomic.Bool

	mu  sync.Mutex
	err error
}

func (b *base) Stop() { b.stopped.Store(true) }

func (b *base) stopRequested() bool { return b.stopped.Load() }

// setErr records the error that caused this subscriber's reader loop to
// exit. Only the first call sticks.
func (b *base) setErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err == nil {
		b.err = err
	}
}

// Err returns the error that terminated this subscriber's reader loop, or
// nil if it exited cleanly or never had one.
func (b *base) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}
