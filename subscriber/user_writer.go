// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package subscriber

import (
	"context"

	"github.com/rapidaai/mediator/message"
	"github.com/rapidaai/mediator/pkg/commons"
	"github.com/rapidaai/mediator/socket"
)

// UserWriter forwards every non-user, non-initialize envelope to the
// client socket: transcriptions, hints, assistant audio/text, errors, and
// processing status all flow to the client this way.
type UserWriter struct {
	base
	socket *socket.TypedSocket
	logger commons.Logger
}

// NewUserWriter builds a UserWriter over sock.
func NewUserWriter(sock *socket.TypedSocket, logger commons.Logger) *UserWriter {
	return &UserWriter{socket: sock, logger: logger}
}

// Start has no reader loop of its own; UserWriter is purely handle-driven.
func (w *UserWriter) Start(ctx context.Context) []<-chan struct{} {
	return nil
}

func (w *UserWriter) Handle(ctx context.Context, msg message.Message) error {
	if msg.GetRole() == message.RoleUser || msg.Kind() == message.KindInitialize {
		return nil
	}
	if err := w.socket.Send(msg); err != nil {
		w.logger.Errorf("user writer: send failed: %v", err)
		return nil
	}
	return nil
}
