// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package buffer implements a per-role accumulator:
// audio bytes and text fragments for one role, drained atomically at
// turn boundaries.
package buffer

import "github.com/rapidaai/mediator/message"

// MessageBuffer accumulates a single role's pending audio and text between
// turn boundaries. It is not safe for concurrent use: it carries no
// locking because only the owning subscriber ever mutates it.
type MessageBuffer struct {
	Role         message.Role
	SampleRate   int
	currentAudio []byte
	currentText  string
	turnComplete bool
}

// New creates an empty buffer for role, tagged with its audio sample rate
// (CLIENT_SAMPLE_RATE for user, SERVER_SAMPLE_RATE for assistant).
func New(role message.Role, sampleRate int) *MessageBuffer {
	return &MessageBuffer{Role: role, SampleRate: sampleRate}
}

// AddAudio appends raw PCM bytes to the pending buffer.
func (b *MessageBuffer) AddAudio(audio []byte) {
	b.currentAudio = append(b.currentAudio, audio...)
}

// AddText appends a text fragment, updating the turn-complete flag.
func (b *MessageBuffer) AddText(text string, endOfTurn bool) {
	b.currentText += text
	b.turnComplete = endOfTurn
}

// TurnComplete reports whether the most recent AddText call signalled
// end-of-turn.
func (b *MessageBuffer) TurnComplete() bool {
	return b.turnComplete
}

// HasContent reports whether there is any pending audio or text.
func (b *MessageBuffer) HasContent() bool {
	return len(b.currentAudio) > 0 || b.currentText != ""
}

// EndTurn atomically drains and resets the buffer, returning what had
// accumulated.
func (b *MessageBuffer) EndTurn() (audio []byte, text string) {
	audio, text = b.currentAudio, b.currentText
	b.currentAudio = nil
	b.currentText = ""
	b.turnComplete = false
	return audio, text
}
