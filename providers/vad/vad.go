// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package vad implements the voice-activity-detection enrichment callable
// callable: vad(pcm_samples, rate) -> [{start_sample, end_sample}].
package vad

import "math"

// Span is one detected speech region, in sample offsets.
type Span struct {
	StartSample int
	EndSample   int
}

// Provider runs VAD over a batch of accumulated 16-bit mono PCM and returns
// every detected speech span, in order.
type Provider interface {
	Detect(pcm []byte, sampleRate int) ([]Span, error)
	Name() string
}

const (
	frameMillis   = 20
	defaultThresh = 0.02
)

// RMSProvider is a lightweight, dependency-free energy-threshold VAD,
// adapted from the streaming per-chunk RMSVAD in the example corpus into a
// single-pass batch detector over an already-accumulated buffer.
type RMSProvider struct {
	threshold float64
}

// NewRMSProvider builds an RMSProvider with the given RMS threshold
// (0..1); pass 0 to use the default.
func NewRMSProvider(threshold float64) *RMSProvider {
	if threshold <= 0 {
		threshold = defaultThresh
	}
	return &RMSProvider{threshold: threshold}
}

func (p *RMSProvider) Name() string { return "rms_vad" }

// Detect scans pcm in fixed-size frames, computing each frame's RMS energy
// and merging consecutive above-threshold frames into spans.
func (p *RMSProvider) Detect(pcm []byte, sampleRate int) ([]Span, error) {
	frameSamples := sampleRate * frameMillis / 1000
	frameBytes := frameSamples * 2
	if frameBytes <= 0 {
		frameBytes = len(pcm)
	}

	var spans []Span
	var inSpeech bool
	var spanStart int

	for offset := 0; offset < len(pcm); offset += frameBytes {
		end := offset + frameBytes
		if end > len(pcm) {
			end = len(pcm)
		}
		frame := pcm[offset:end]
		sampleOffset := offset / 2

		if rms(frame) > p.threshold {
			if !inSpeech {
				inSpeech = true
				spanStart = sampleOffset
			}
		} else if inSpeech {
			inSpeech = false
			spans = append(spans, Span{StartSample: spanStart, EndSample: sampleOffset})
		}
	}

	if inSpeech {
		spans = append(spans, Span{StartSample: spanStart, EndSample: len(pcm) / 2})
	}

	return spans, nil
}

func rms(chunk []byte) float64 {
	if len(chunk) < 2 {
		return 0
	}
	var sum float64
	count := 0
	for i := 0; i+1 < len(chunk); i += 2 {
		sample := int16(chunk[i]) | int16(chunk[i+1])<<8
		f := float64(sample) / 32768.0
		sum += f * f
		count++
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(count))
}
