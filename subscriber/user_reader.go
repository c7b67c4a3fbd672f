// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package subscriber

import (
	"context"

	"github.com/rapidaai/mediator/bus"
	"github.com/rapidaai/mediator/message"
	"github.com/rapidaai/mediator/pkg/commons"
	"github.com/rapidaai/mediator/socket"
)

// UserReader loops on the client socket, publishing every received message
// to the bus. It is the only producer of user-originated messages.
type UserReader struct {
	base
	socket *socket.TypedSocket
	bus    *bus.ChatBus
	logger commons.Logger
}

// NewUserReader builds a UserReader over sock, publishing to chatBus.
func NewUserReader(sock *socket.TypedSocket, chatBus *bus.ChatBus, logger commons.Logger) *UserReader {
	return &UserReader{socket: sock, bus: chatBus, logger: logger}
}

func (r *UserReader) Start(ctx context.Context) []<-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for !r.stopRequested() {
			msg, err := r.socket.Receive(ctx)
			if err != nil {
				r.logger.Debugf("user reader exiting: %v", err)
				r.setErr(err)
				return
			}
			if err := r.bus.Publish(ctx, msg); err != nil {
				r.logger.Errorf("user reader: publish failed: %v", err)
				r.setErr(err)
				return
			}
		}
	}()
	return []<-chan struct{}{done}
}

// Handle is a no-op: UserReader only produces messages, it never consumes
// them from the bus.
func (r *UserReader) Handle(ctx context.Context, msg message.Message) error {
	return nil
}
