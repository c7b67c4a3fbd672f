// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package subscriber

import (
	"context"
	"time"

	"github.com/rapidaai/mediator/bus"
	"github.com/rapidaai/mediator/message"
	"github.com/rapidaai/mediator/pkg/commons"
	"github.com/rapidaai/mediator/providers/live"
)

// UpstreamReader loops on the upstream live session, envelopping every
// audio or text chunk it receives as an assistant-role message and
// publishing it to the bus. end_of_turn tracks the upstream's own
// turn-complete signal.
type UpstreamReader struct {
	base
	session live.Session
	bus     *bus.ChatBus
	logger  commons.Logger
}

// NewUpstreamReader builds an UpstreamReader over session.
func NewUpstreamReader(session live.Session, chatBus *bus.ChatBus, logger commons.Logger) *UpstreamReader {
	return &UpstreamReader{session: session, bus: chatBus, logger: logger}
}

func (r *UpstreamReader) Start(ctx context.Context) []<-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for !r.stopRequested() {
			ev, err := r.session.Receive(ctx)
			if err != nil {
				r.logger.Debugf("upstream reader exiting: %v", err)
				r.setErr(err)
				return
			}

			switch ev.Kind {
			case live.EventAudio:
				ts := float64(time.Now().UnixMilli()) / 1000
				msg := message.NewAudio(message.RoleAssistant, ev.Audio, "audio/pcm;rate=24000", false, ts)
				if err := r.bus.Publish(ctx, msg); err != nil {
					r.logger.Errorf("upstream reader: publish audio failed: %v", err)
				}
			case live.EventText:
				ts := float64(time.Now().UnixMilli()) / 1000
				msg := message.NewText(message.RoleAssistant, ev.Text, false, ts)
				if err := r.bus.Publish(ctx, msg); err != nil {
					r.logger.Errorf("upstream reader: publish text failed: %v", err)
				}
			case live.EventTurnComplete:
				ts := float64(time.Now().UnixMilli()) / 1000
				msg := message.NewText(message.RoleAssistant, "", true, ts)
				if err := r.bus.Publish(ctx, msg); err != nil {
					r.logger.Errorf("upstream reader: publish turn-complete failed: %v", err)
				}
			case live.EventInterrupted:
				r.logger.Debugf("upstream reader: turn interrupted")
			}
		}
	}()
	return []<-chan struct{}{done}
}

// Handle is a no-op: UpstreamReader only produces messages.
func (r *UpstreamReader) Handle(ctx context.Context, msg message.Message) error {
	return nil
}
