// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package tts synthesizes learner-facing audio for a term or phrase,
// ported from generate_tts_audio_async
// (multivox/tts.py): Google Cloud Text-to-Speech, MP3 output, a fixed 0.8
// speaking rate for comprehensibility, and a nil result for any language
// that has no configured voice.
package tts

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"golang.org/x/sync/singleflight"

	"github.com/rapidaai/mediator/message"
	"github.com/rapidaai/mediator/providers/cache"
)

const speakingRate = 0.8

// Audio is the synthesized result for a single term.
type Audio struct {
	Text string
	Data []byte
}

// Synthesizer renders term in language's voice. It returns (nil, nil) when
// language has no configured TTS voice, a deliberate short-circuit rather
// than treating it as an error.
type Synthesizer interface {
	Synthesize(ctx context.Context, term string, language message.Language) (*Audio, error)
}

// GoogleSynthesizer implements Synthesizer on top of Google Cloud
// Text-to-Speech.
type GoogleSynthesizer struct {
	client *texttospeech.Client
}

// NewGoogleSynthesizer wraps an already-authenticated Text-to-Speech client.
func NewGoogleSynthesizer(client *texttospeech.Client) *GoogleSynthesizer {
	return &GoogleSynthesizer{client: client}
}

func (s *GoogleSynthesizer) Synthesize(ctx context.Context, term string, language message.Language) (*Audio, error) {
	if !language.HasTTSVoice() {
		return nil, nil
	}

	resp, err := s.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: term},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: language.TTSLanguageCode,
			Name:         language.TTSVoiceName,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  speakingRate,
			Pitch:         0.0,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("synthesizing speech for %q: %w", term, err)
	}

	return &Audio{Text: term, Data: resp.AudioContent}, nil
}

type cacheKey struct {
	term string
	lang string
}

// CachedSynthesizer memoizes Synthesize by (term, language) behind a
// fixed-size LRU. Hint terms and common phrases recur constantly within a
// session, and resynthesizing them is a wasted round trip to the
// Text-to-Speech backend.
type CachedSynthesizer struct {
	next  Synthesizer
	cache *cache.LRU[cacheKey, *Audio]
	group singleflight.Group
}

// NewCachedSynthesizer wraps next with a memoizing layer holding up to
// capacity entries.
func NewCachedSynthesizer(next Synthesizer, capacity int) *CachedSynthesizer {
	return &CachedSynthesizer{next: next, cache: cache.New[cacheKey, *Audio](capacity)}
}

// Synthesize serves a cached clip if present; otherwise it calls next,
// collapsing concurrent callers for the same (term, language) into a single
// in-flight request via singleflight.
func (s *CachedSynthesizer) Synthesize(ctx context.Context, term string, language message.Language) (*Audio, error) {
	key := cacheKey{term: term, lang: language.Abbreviation}
	if audio, ok := s.cache.Get(key); ok {
		return audio, nil
	}

	groupKey := key.lang + "\x00" + key.term
	v, err, _ := s.group.Do(groupKey, func() (interface{}, error) {
		audio, err := s.next.Synthesize(ctx, term, language)
		if err != nil {
			return nil, err
		}
		if audio != nil {
			s.cache.Put(key, audio)
		}
		return audio, nil
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.(*Audio), nil
}
