// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package subscriber

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rapidaai/mediator/bus"
	"github.com/rapidaai/mediator/message"
	"github.com/rapidaai/mediator/providers/stt"
	"github.com/rapidaai/mediator/providers/translate"
)

type stubTranscriber struct {
	result stt.Result
	err    error
}

func (s *stubTranscriber) Transcribe(ctx context.Context, pcm []byte, mimeType string) (stt.Result, error) {
	return s.result, s.err
}

type stubTranslator struct {
	result translate.Result
	err    error
}

func (s *stubTranslator) Translate(ctx context.Context, text string, source, target message.Language) (translate.Result, error) {
	return s.result, s.err
}

type stubHinter struct {
	hints []message.HintOption
	err   error
}

func (s *stubHinter) Generate(ctx context.Context, history string, language *message.Language) ([]message.HintOption, error) {
	return s.hints, s.err
}

func TestBulkEnrichmentTask_TranscribesAudioTurnAndPublishesHints(t *testing.T) {
	chatBus := bus.New(noopLogger())
	transcriber := &stubTranscriber{result: stt.Result{SourceText: "こんにちは", TranslatedText: "hello"}}
	hinter := &stubHinter{hints: []message.HintOption{{SourceText: "はい", TranslatedText: "yes"}}}
	task := NewBulkEnrichmentTask(chatBus, transcriber, &stubTranslator{}, hinter, message.Languages["en"], message.Languages["ja"], noopLogger())
	chatBus.Subscribe(task)

	require.NoError(t, chatBus.Publish(context.Background(), message.NewAudio(message.RoleAssistant, []byte{1, 2, 3}, "audio/pcm;rate=24000", false, 1.0)))
	require.NoError(t, chatBus.Publish(context.Background(), message.NewAudio(message.RoleAssistant, []byte{4, 5}, "audio/pcm;rate=24000", true, 2.0)))

	history := chatBus.History()
	require.Len(t, history, 4)

	transcription, ok := history[2].(*message.Transcription)
	require.True(t, ok)
	assert.Equal(t, "こんにちは", transcription.SourceText)
	assert.Equal(t, "hello", transcription.TranslatedText)

	hint, ok := history[3].(*message.Hint)
	require.True(t, ok)
	assert.Equal(t, "はい", hint.Hints[0].SourceText)
}

func TestBulkEnrichmentTask_UserTurnsAreNeverEnriched(t *testing.T) {
	chatBus := bus.New(noopLogger())
	task := NewBulkEnrichmentTask(chatBus, &stubTranscriber{}, &stubTranslator{}, &stubHinter{}, message.Languages["en"], message.Languages["ja"], noopLogger())
	chatBus.Subscribe(task)

	require.NoError(t, chatBus.Publish(context.Background(), message.NewAudio(message.RoleUser, []byte{1, 2}, "audio/pcm;rate=16000", true, 1.0)))

	assert.Len(t, chatBus.History(), 1)
}

func TestBulkEnrichmentTask_TranscriptionFailurePublishesError(t *testing.T) {
	chatBus := bus.New(noopLogger())
	transcriber := &stubTranscriber{err: assert.AnError}
	task := NewBulkEnrichmentTask(chatBus, transcriber, &stubTranslator{}, &stubHinter{}, message.Languages["en"], message.Languages["ja"], noopLogger())
	chatBus.Subscribe(task)

	require.NoError(t, chatBus.Publish(context.Background(), message.NewAudio(message.RoleAssistant, []byte{1}, "audio/pcm;rate=24000", true, 1.0)))

	history := chatBus.History()
	require.Len(t, history, 2)
	_, ok := history[1].(*message.ErrorMessage)
	assert.True(t, ok)
}
