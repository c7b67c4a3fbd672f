// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package errs

import (
	"errors"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestCloseCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, websocket.CloseNormalClosure},
		{"protocol", Protocol("bad frame", nil), websocket.ClosePolicyViolation},
		{"client disconnect", ErrClientDisconnect, websocket.CloseNormalClosure},
		{"upstream transport", Upstream("connect timeout", errors.New("dial")), websocket.CloseInternalServerErr},
		{"internal", Internal("invariant breach", nil), websocket.CloseInternalServerErr},
		{"unrecognized", errors.New("boom"), websocket.CloseInternalServerErr},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CloseCode(c.err))
		})
	}
}

func TestProtocol_WrapsForErrorsIs(t *testing.T) {
	err := Protocol("duplicate initialize message", nil)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestUpstream_WrapsUnderlyingError(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Upstream("connecting upstream session", cause)
	assert.ErrorIs(t, err, ErrUpstreamTransport)
	assert.ErrorIs(t, err, cause)
}
