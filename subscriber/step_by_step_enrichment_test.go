// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package subscriber

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rapidaai/mediator/bus"
	"github.com/rapidaai/mediator/message"
	"github.com/rapidaai/mediator/providers/respond"
	"github.com/rapidaai/mediator/providers/tts"
	"github.com/rapidaai/mediator/providers/vad"
	"github.com/rapidaai/mediator/turn"
)

type stubResponder struct {
	result respond.Result
	err    error
}

func (s *stubResponder) Respond(ctx context.Context, pcm []byte, mimeType, scenario, history string, source, target message.Language) (respond.Result, error) {
	return s.result, s.err
}

// noopSynthesizer always returns a one-byte audio payload so tests can
// assert that synthesis happened without depending on a real TTS client.
type noopSynthesizer struct{}

func (noopSynthesizer) Synthesize(ctx context.Context, term string, language message.Language) (*tts.Audio, error) {
	return &tts.Audio{Text: term, Data: []byte{0xFF}}, nil
}

func TestStepByStepEnrichmentTask_ClosesTurnOnExplicitFlag(t *testing.T) {
	chatBus := bus.New(noopLogger())
	detector := turn.New(vad.NewRMSProvider(0), clientSampleRate)
	responder := &stubResponder{result: respond.Result{
		SourceText:     "こんにちは",
		ResponseText:   "いらっしゃいませ",
		TranslatedText: "Welcome",
		Hints:          []message.HintOption{{SourceText: "ありがとう", TranslatedText: "thank you"}},
	}}
	task := NewStepByStepEnrichmentTask(chatBus, detector, responder, noopSynthesizer{}, "ordering coffee", message.Languages["ja"], message.Languages["en"], false, noopLogger())
	chatBus.Subscribe(task)

	require.NoError(t, chatBus.Publish(context.Background(), message.NewAudio(message.RoleUser, []byte{1, 2, 3, 4}, "audio/pcm;rate=16000", true, 1.0)))

	history := chatBus.History()
	require.Len(t, history, 4)

	userTranscription, ok := history[1].(*message.Transcription)
	require.True(t, ok)
	assert.Equal(t, message.RoleUser, userTranscription.GetRole())
	assert.Equal(t, "こんにちは", userTranscription.SourceText)

	assistantTranscription, ok := history[2].(*message.Transcription)
	require.True(t, ok)
	assert.Equal(t, message.RoleAssistant, assistantTranscription.GetRole())
	assert.Equal(t, "いらっしゃいませ", assistantTranscription.SourceText)

	hint, ok := history[3].(*message.Hint)
	require.True(t, ok)
	assert.Equal(t, "ありがとう", hint.Hints[0].SourceText)
}

func TestStepByStepEnrichmentTask_AccumulatesUntilTurnCloses(t *testing.T) {
	chatBus := bus.New(noopLogger())
	detector := turn.New(vad.NewRMSProvider(0), clientSampleRate)
	task := NewStepByStepEnrichmentTask(chatBus, detector, &stubResponder{}, noopSynthesizer{}, "", message.Languages["ja"], message.Languages["en"], false, noopLogger())
	chatBus.Subscribe(task)

	require.NoError(t, chatBus.Publish(context.Background(), message.NewAudio(message.RoleUser, []byte{1, 2}, "audio/pcm;rate=16000", false, 1.0)))
	assert.Len(t, chatBus.History(), 1)
	assert.Equal(t, []byte{1, 2}, task.userAudio)
}

func TestStepByStepEnrichmentTask_SynthesizesAudioWhenModalityEnabled(t *testing.T) {
	chatBus := bus.New(noopLogger())
	detector := turn.New(vad.NewRMSProvider(0), clientSampleRate)
	responder := &stubResponder{result: respond.Result{ResponseText: "hi"}}
	synth := noopSynthesizer{}
	task := NewStepByStepEnrichmentTask(chatBus, detector, responder, synth, "", message.Languages["ja"], message.Languages["en"], true, noopLogger())
	chatBus.Subscribe(task)

	require.NoError(t, chatBus.Publish(context.Background(), message.NewAudio(message.RoleUser, []byte{1}, "audio/pcm;rate=16000", true, 1.0)))

	require.Eventually(t, func() bool {
		for _, m := range chatBus.History() {
			if a, ok := m.(*message.Audio); ok && a.GetRole() == message.RoleAssistant {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)
}
