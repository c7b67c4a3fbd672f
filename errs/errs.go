// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package errs defines the error taxonomy as sentinel errors,
// so callers can errors.Is/errors.As them into WebSocket close codes rather
// than matching on error strings.
package errs

import (
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
)

// Sentinel error categories, one per failure domain.
var (
	// ErrProtocol: malformed frame, unknown type, initialize out of order.
	ErrProtocol = errors.New("protocol error")
	// ErrUpstreamTransport: upstream connect timeout or mid-stream failure.
	ErrUpstreamTransport = errors.New("upstream transport error")
	// ErrEnrichment: an enrichment service returned malformed data or failed.
	ErrEnrichment = errors.New("enrichment failure")
	// ErrClientDisconnect: the client socket closed or errored; treated as
	// a normal disconnect, not a failure.
	ErrClientDisconnect = errors.New("client disconnected")
	// ErrInternal: an internal invariant was violated.
	ErrInternal = errors.New("internal invariant breach")
)

// Protocol wraps err as a protocol error with a human-readable reason.
func Protocol(reason string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrProtocol, reason)
	}
	return fmt.Errorf("%w: %s: %v", ErrProtocol, reason, err)
}

// Upstream wraps err as an upstream transport error.
func Upstream(reason string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstreamTransport, reason, err)
}

// Internal wraps err as an internal invariant breach.
func Internal(reason string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrInternal, reason)
	}
	return fmt.Errorf("%w: %s: %w", ErrInternal, reason, err)
}

// CloseCode maps an error from the taxonomy above to the WebSocket close
// code the session orchestrator should use when tearing down.
func CloseCode(err error) int {
	switch {
	case err == nil:
		return websocket.CloseNormalClosure
	case errors.Is(err, ErrProtocol):
		return websocket.ClosePolicyViolation // 1008
	case errors.Is(err, ErrClientDisconnect):
		return websocket.CloseNormalClosure // 1000
	case errors.Is(err, ErrUpstreamTransport), errors.Is(err, ErrInternal):
		return websocket.CloseInternalServerErr // 1011
	default:
		return websocket.CloseInternalServerErr
	}
}
