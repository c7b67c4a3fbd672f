// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package vad

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tone(samples int, amplitude float64) []byte {
	out := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := int16(amplitude * 32767 * math.Sin(float64(i)*0.3))
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

func silence(samples int) []byte {
	return make([]byte, samples*2)
}

func TestRMSProvider_DetectsSingleSpan(t *testing.T) {
	p := NewRMSProvider(0.1)
	sampleRate := 16000

	pcm := append(silence(sampleRate/5), tone(sampleRate, 0.8)...)
	pcm = append(pcm, silence(sampleRate)...)

	spans, err := p.Detect(pcm, sampleRate)
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Greater(t, spans[0].EndSample, spans[0].StartSample)
}

func TestRMSProvider_NoSpeechYieldsNoSpans(t *testing.T) {
	p := NewRMSProvider(0.1)
	spans, err := p.Detect(silence(16000), 16000)
	require.NoError(t, err)
	assert.Empty(t, spans)
}
