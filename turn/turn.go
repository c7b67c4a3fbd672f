// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package turn implements turn-boundary detection: a user turn closes
// either on an explicit end_of_turn flag, or on roughly one second of
// trailing silence as measured by VAD over the accumulated buffer.
package turn

import (
	"github.com/rapidaai/mediator/providers/vad"
)

// TrailingSilenceSeconds is the length of trailing silence, in seconds, that
// closes a turn when no explicit end_of_turn flag arrives.
const TrailingSilenceSeconds = 1.0

// Detector decides whether a step-by-step mode user turn has ended.
type Detector struct {
	vad        vad.Provider
	sampleRate int
}

// New builds a Detector that runs provider over audio sampled at sampleRate.
func New(provider vad.Provider, sampleRate int) *Detector {
	return &Detector{vad: provider, sampleRate: sampleRate}
}

// IsTurnComplete implements the combined rule: an explicit
// end_of_turn flag always closes the turn; otherwise, once the buffer
// exceeds one second of audio, VAD is run over it and the turn is closed if
// the last detected speech ended more than one second before the end of the
// buffer.
func (d *Detector) IsTurnComplete(buffer []byte, explicitEndOfTurn bool) bool {
	if explicitEndOfTurn {
		return true
	}

	bufferSamples := len(buffer) / 2 // 16-bit mono
	trailingSilenceSamples := int(TrailingSilenceSeconds * float64(d.sampleRate))
	if bufferSamples <= trailingSilenceSamples {
		return false
	}

	spans, err := d.vad.Detect(buffer, d.sampleRate)
	if err != nil || len(spans) == 0 {
		return false
	}

	lastSpeechEnd := spans[len(spans)-1].EndSample
	return lastSpeechEnd < bufferSamples-trailingSilenceSamples
}
