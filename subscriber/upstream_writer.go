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
	"github.com/rapidaai/mediator/providers/live"
)

// UpstreamWriter forwards user-originated input to the upstream live
// session. It never forwards derived messages (transcription, hint,
// translation, error, processing) upstream — those exist only for the
// client.
type UpstreamWriter struct {
	base
	session live.Session
	logger  commons.Logger
}

// NewUpstreamWriter builds an UpstreamWriter over session.
func NewUpstreamWriter(session live.Session, logger commons.Logger) *UpstreamWriter {
	return &UpstreamWriter{session: session, logger: logger}
}

// Start has no reader loop of its own; UpstreamWriter is purely
// handle-driven.
func (w *UpstreamWriter) Start(ctx context.Context) []<-chan struct{} {
	return nil
}

func (w *UpstreamWriter) Handle(ctx context.Context, msg message.Message) error {
	if msg.GetRole() != message.RoleUser {
		return nil
	}

	var err error
	switch m := msg.(type) {
	case *message.Initialize:
		err = w.session.SendText(ctx, m.Text, true)
	case *message.Text:
		err = w.session.SendText(ctx, m.Text, m.IsEndOfTurn())
	case *message.Audio:
		err = w.session.SendAudio(ctx, m.AudioData, m.MimeType)
	default:
		return nil
	}
	if err != nil {
		w.logger.Errorf("upstream writer: send failed: %v", err)
	}
	return nil
}
