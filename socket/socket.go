// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package socket wraps a gorilla/websocket connection so that only
// message.Message values can be sent or received, mirroring
// multivox/message_socket.py's TypedWebSocket.
package socket

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rapidaai/mediator/errs"
	"github.com/rapidaai/mediator/message"
	"github.com/rapidaai/mediator/pkg/commons"
)

const maxMessageBytes = 10 * 1024 * 1024

// TypedSocket is a bidirectional framed channel: receive() parses JSON into
// the tagged message union, send() serializes back to JSON text, and
// close() is idempotent.
type TypedSocket struct {
	logger commons.Logger
	conn   *websocket.Conn
	writeMu sync.Mutex
	closed  atomic.Bool
}

// New wraps an already-upgraded *websocket.Conn.
func New(conn *websocket.Conn, logger commons.Logger) *TypedSocket {
	conn.SetReadLimit(maxMessageBytes)
	return &TypedSocket{conn: conn, logger: logger}
}

// Connected reports whether the socket is still open, the "connected state
// observable".
func (s *TypedSocket) Connected() bool {
	return !s.closed.Load()
}

// Receive reads one frame and parses it into a message.Message. An unknown
// "type" discriminator surfaces as an errs.ErrProtocol wrapped error so the
// orchestrator can close with code 1008.
func (s *TypedSocket) Receive(ctx context.Context) (message.Message, error) {
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, errs.ErrClientDisconnect
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrClientDisconnect, err)
	}

	msg, err := message.Parse(data)
	if err != nil {
		return nil, errs.Protocol("invalid frame", err)
	}
	return msg, nil
}

// Send serializes msg and writes it as a text frame. Writes are guarded by
// a dedicated mutex so concurrent subscribers never interleave frames.
func (s *TypedSocket) Send(msg message.Message) error {
	data, err := message.Encode(msg)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed.Load() {
		return fmt.Errorf("%w: socket already closed", errs.ErrClientDisconnect)
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	return nil
}

// Close closes the socket with the given close code/reason. It is
// idempotent: a second call is a no-op.
func (s *TypedSocket) Close(code int, reason string) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	closeMsg := websocket.FormatCloseMessage(code, reason)
	if err := s.conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second)); err != nil {
		s.logger.Debugf("error writing close frame: %v", err)
	}
	return s.conn.Close()
}
