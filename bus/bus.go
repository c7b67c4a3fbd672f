// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package bus implements a chat bus: an append-only history with strict
// per-subscriber FIFO publish/subscribe fan-out.
package bus

import (
	"context"
	"reflect"
	"sync"

	"github.com/rapidaai/mediator/errs"
	"github.com/rapidaai/mediator/message"
	"github.com/rapidaai/mediator/pkg/commons"
)

// Handler is implemented by anything that wants to observe every message
// published on the bus, in order.
type Handler interface {
	Handle(ctx context.Context, msg message.Message) error
}

// ChatBus is the synchronization point for a session: publish appends to
// history then delivers to every subscriber in registration order,
// awaiting each handler before moving to the next.
type ChatBus struct {
	logger commons.Logger

	mu            sync.Mutex
	history       []message.Message
	subscribers   []Handler
	registered    map[Handler]struct{}
	sawInitialize bool
	turnCounters  map[message.Role]int
}

// New creates an empty bus.
func New(logger commons.Logger) *ChatBus {
	return &ChatBus{
		logger:       logger,
		registered:   make(map[Handler]struct{}),
		turnCounters: make(map[message.Role]int),
	}
}

// Subscribe registers a handler. Registration is idempotent: subscribing
// the same Handler twice is a no-op. Subscribers are never removed during a
// session; teardown is via Stop() on each subscriber and orchestrator-level
// cancellation.
func (b *ChatBus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Only comparable Handler values (the common case: struct pointers) can
	// be deduplicated via map lookup; func-valued handlers are never equal
	// to themselves for map purposes and are always appended.
	if reflect.TypeOf(h).Comparable() {
		if _, ok := b.registered[h]; ok {
			return
		}
		b.registered[h] = struct{}{}
	}
	b.subscribers = append(b.subscribers, h)
}

// Publish appends msg to history, assigns its internal TurnID, and delivers
// it to every registered subscriber in order, awaiting each handler before
// advancing to the next. A handler that
// returns an error or panics is logged; its failure never stops delivery to
// the rest.
//
// Publish itself enforces the at-most-one-initialize-per-session rule: a
// second initialize is rejected as a protocol error and is not appended to
// history or delivered.
func (b *ChatBus) Publish(ctx context.Context, msg message.Message) error {
	b.mu.Lock()
	if msg.Kind() == message.KindInitialize {
		if b.sawInitialize {
			b.mu.Unlock()
			return errs.Protocol("duplicate initialize message", nil)
		}
		b.sawInitialize = true
	}

	role := msg.GetRole()
	msg.SetTurnID(b.turnCounters[role])
	if msg.IsEndOfTurn() {
		b.turnCounters[role]++
	}

	b.history = append(b.history, msg)
	subscribers := make([]Handler, len(b.subscribers))
	copy(subscribers, b.subscribers)
	b.mu.Unlock()

	for _, sub := range subscribers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Errorf("subscriber handler panic for %s message: %v", msg.Kind(), r)
				}
			}()
			if err := sub.Handle(ctx, msg); err != nil {
				b.logger.Errorf("subscriber handler error for %s message: %v", msg.Kind(), err)
			}
		}()
	}
	return nil
}

// History returns a read-only snapshot of everything published so far, in
// publish order. Callers must not mutate the returned slice's contents.
func (b *ChatBus) History() []message.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot := make([]message.Message, len(b.history))
	copy(snapshot, b.history)
	return snapshot
}
