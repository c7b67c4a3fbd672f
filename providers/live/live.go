// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package live wraps the upstream real-time conversational model session:
// connect, stream audio/text in, receive audio/text/turn-complete events
// back, close. It is the Go-native analog of
// genai.Client.aio.live.connect() usage (multivox/app.py's ChatState),
// backed here by the same google.golang.org/genai SDK's Live API.
package live

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// EventKind discriminates the events a Session yields from Receive.
type EventKind string

const (
	EventAudio        EventKind = "audio"
	EventText         EventKind = "text"
	EventTurnComplete EventKind = "turn_complete"
	EventInterrupted  EventKind = "interrupted"
)

// Event is one message received from the upstream session.
type Event struct {
	Kind  EventKind
	Audio []byte
	Text  string
}

// Session is a live, bidirectional conversational connection to the
// upstream model.
type Session interface {
	SendAudio(ctx context.Context, pcm []byte, mimeType string) error
	SendText(ctx context.Context, text string, endOfTurn bool) error
	Receive(ctx context.Context) (Event, error)
	Close() error
}

// Options configures a new upstream session.
type Options struct {
	Model           string
	SystemPrompt    string
	VoiceName       string
	ResponseAsAudio bool
}

// Connector opens new upstream sessions; Session itself has no Connect
// method because the connection is established once per mediated chat.
type Connector interface {
	Connect(ctx context.Context, opts Options) (Session, error)
}

// GeminiConnector implements Connector on top of a genai.Client's Live API.
type GeminiConnector struct {
	client *genai.Client
}

// NewGeminiConnector wraps an already-configured genai.Client.
func NewGeminiConnector(client *genai.Client) *GeminiConnector {
	return &GeminiConnector{client: client}
}

func (c *GeminiConnector) Connect(ctx context.Context, opts Options) (Session, error) {
	modalities := []genai.Modality{genai.ModalityText}
	if opts.ResponseAsAudio {
		modalities = []genai.Modality{genai.ModalityAudio}
	}

	cfg := &genai.LiveConnectConfig{
		ResponseModalities: modalities,
		SystemInstruction:  genai.NewContentFromText(opts.SystemPrompt, genai.RoleUser),
	}
	if opts.VoiceName != "" {
		cfg.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: opts.VoiceName},
			},
		}
	}

	session, err := c.client.Live.Connect(ctx, opts.Model, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting upstream live session: %w", err)
	}
	return &geminiSession{session: session}, nil
}

type geminiSession struct {
	session *genai.Session
	// pending holds events from a multi-part ModelTurn still waiting to be
	// returned; Receive drains it before reading the next upstream message.
	pending []Event
}

func (s *geminiSession) SendAudio(ctx context.Context, pcm []byte, mimeType string) error {
	return s.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Audio: &genai.Blob{Data: pcm, MIMEType: mimeType},
	})
}

func (s *geminiSession) SendText(ctx context.Context, text string, endOfTurn bool) error {
	return s.session.SendClientContent(genai.LiveClientContentInput{
		Turns:        []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		TurnComplete: endOfTurn,
	})
}

func (s *geminiSession) Receive(ctx context.Context) (Event, error) {
	if len(s.pending) > 0 {
		ev := s.pending[0]
		s.pending = s.pending[1:]
		return ev, nil
	}

	msg, err := s.session.Receive()
	if err != nil {
		return Event{}, fmt.Errorf("receiving upstream live event: %w", err)
	}

	if msg.ServerContent != nil {
		if msg.ServerContent.Interrupted {
			return Event{Kind: EventInterrupted}, nil
		}
		if msg.ServerContent.TurnComplete {
			return Event{Kind: EventTurnComplete}, nil
		}
		if msg.ServerContent.ModelTurn != nil {
			var events []Event
			for _, part := range msg.ServerContent.ModelTurn.Parts {
				if part.InlineData != nil && len(part.InlineData.Data) > 0 {
					events = append(events, Event{Kind: EventAudio, Audio: part.InlineData.Data})
				} else if part.Text != "" {
					events = append(events, Event{Kind: EventText, Text: part.Text})
				}
			}
			if len(events) > 0 {
				s.pending = events[1:]
				return events[0], nil
			}
		}
	}
	// A message carrying no audio, text, interruption or turn-complete
	// signal (e.g. a setup acknowledgement) is skipped.
	return s.Receive(ctx)
}

func (s *geminiSession) Close() error {
	return s.session.Close()
}
