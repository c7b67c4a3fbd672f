// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package tts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rapidaai/mediator/message"
)

func TestGoogleSynthesizer_NoVoiceConfiguredReturnsNil(t *testing.T) {
	s := NewGoogleSynthesizer(nil)

	languageWithoutVoice := message.Language{Abbreviation: "xx", Name: "Unsupported"}
	audio, err := s.Synthesize(context.Background(), "hello", languageWithoutVoice)
	require.NoError(t, err)
	assert.Nil(t, audio)
}

type countingSynthesizer struct {
	calls int
}

func (c *countingSynthesizer) Synthesize(ctx context.Context, term string, language message.Language) (*Audio, error) {
	c.calls++
	return &Audio{Text: term, Data: []byte(term)}, nil
}

func TestCachedSynthesizer_RepeatedTermSkipsUnderlyingCall(t *testing.T) {
	underlying := &countingSynthesizer{}
	cached := NewCachedSynthesizer(underlying, 8)
	lang := message.Languages["ja"]

	first, err := cached.Synthesize(context.Background(), "ありがとう", lang)
	require.NoError(t, err)
	second, err := cached.Synthesize(context.Background(), "ありがとう", lang)
	require.NoError(t, err)

	assert.Equal(t, 1, underlying.calls)
	assert.Equal(t, first, second)
}
