// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package subscriber

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rapidaai/mediator/buffer"
	"github.com/rapidaai/mediator/bus"
	"github.com/rapidaai/mediator/message"
	"github.com/rapidaai/mediator/pkg/commons"
	"github.com/rapidaai/mediator/providers/hint"
	"github.com/rapidaai/mediator/providers/stt"
	"github.com/rapidaai/mediator/providers/translate"
)

// BulkEnrichmentTask derives a transcription/translation plus suggested
// replies for each completed assistant turn in live mode. The upstream
// live session already transcribes user speech as part of its own
// transcript, so user turns are deliberately left unenriched here.
type BulkEnrichmentTask struct {
	base
	bus         *bus.ChatBus
	transcriber stt.Transcriber
	translator  translate.Translator
	hinter      hint.Hinter
	source      message.Language
	target      message.Language
	logger      commons.Logger

	buffers map[message.Role]*buffer.MessageBuffer
}

// NewBulkEnrichmentTask builds a BulkEnrichmentTask translating/transcribing
// between source and target, publishing results to chatBus.
func NewBulkEnrichmentTask(chatBus *bus.ChatBus, transcriber stt.Transcriber, translator translate.Translator, hinter hint.Hinter, source, target message.Language, logger commons.Logger) *BulkEnrichmentTask {
	return &BulkEnrichmentTask{
		bus:         chatBus,
		transcriber: transcriber,
		translator:  translator,
		hinter:      hinter,
		source:      source,
		target:      target,
		logger:      logger,
		buffers: map[message.Role]*buffer.MessageBuffer{
			message.RoleUser:      buffer.New(message.RoleUser, clientSampleRate),
			message.RoleAssistant: buffer.New(message.RoleAssistant, serverSampleRate),
		},
	}
}

// Sample rates for the two audio directions, matching the mime-type
// convention "audio/pcm;rate=N" used on both the client and upstream legs.
const (
	clientSampleRate = 16000
	serverSampleRate = 24000
)

// Start has no reader loop of its own; enrichment is purely handle-driven.
func (t *BulkEnrichmentTask) Start(ctx context.Context) []<-chan struct{} {
	return nil
}

func (t *BulkEnrichmentTask) Handle(ctx context.Context, msg message.Message) error {
	switch msg.Kind() {
	case message.KindTranscription, message.KindHint, message.KindTranslation, message.KindError, message.KindProcessing:
		return nil
	}

	buf := t.buffers[msg.GetRole()]
	if buf == nil {
		return nil
	}

	switch m := msg.(type) {
	case *message.Audio:
		buf.AddAudio(m.AudioData)
		if m.IsEndOfTurn() {
			buf.AddText("", true)
		}
	case *message.Text:
		buf.AddText(m.Text, m.IsEndOfTurn())
	case *message.Initialize:
		// Scenario text lives in bus history already; nothing to buffer.
		return nil
	default:
		return nil
	}

	if msg.GetRole() != message.RoleAssistant || !msg.IsEndOfTurn() {
		return nil
	}

	audio, text := buf.EndTurn()
	if len(audio) == 0 && strings.TrimSpace(text) == "" {
		return nil
	}

	result, err := t.enrichTurn(ctx, audio, text)
	if err != nil {
		t.publishError(ctx, message.RoleAssistant, fmt.Sprintf("Sorry, I couldn't transcribe that audio: %s", err))
		return nil
	}

	transcriptionTS := nowTimestamp()
	if err := t.bus.Publish(ctx, message.NewTranscription(message.RoleAssistant, result.SourceText, result.Translated, result.Chunked, result.Dictionary, transcriptionTS)); err != nil {
		return err
	}

	hints, err := t.hinter.Generate(ctx, t.buildHistoryPrompt(), &t.source)
	if err != nil {
		t.publishError(ctx, message.RoleAssistant, fmt.Sprintf("Sorry, I couldn't generate hints. Error was %s", err))
		return nil
	}
	return t.bus.Publish(ctx, message.NewHint(message.RoleAssistant, hints, nowTimestamp()))
}

type enrichedResult struct {
	SourceText string
	Translated string
	Chunked    []string
	Dictionary map[string]message.DictionaryEntry
}

func (t *BulkEnrichmentTask) enrichTurn(ctx context.Context, audio []byte, text string) (enrichedResult, error) {
	if len(audio) > 0 {
		mimeType := fmt.Sprintf("audio/pcm;rate=%d", serverSampleRate)
		r, err := t.transcriber.Transcribe(ctx, audio, mimeType)
		if err != nil {
			return enrichedResult{}, err
		}
		return enrichedResult{SourceText: r.SourceText, Translated: r.TranslatedText, Chunked: r.Chunked, Dictionary: r.Dictionary}, nil
	}

	r, err := t.translator.Translate(ctx, text, t.source, t.target)
	if err != nil {
		return enrichedResult{}, err
	}
	return enrichedResult{SourceText: r.SourceText, Translated: r.Translated, Chunked: r.Chunked, Dictionary: r.Dictionary}, nil
}

func (t *BulkEnrichmentTask) publishError(ctx context.Context, role message.Role, text string) {
	if err := t.bus.Publish(ctx, message.NewError(role, text, nowTimestamp())); err != nil {
		t.logger.Errorf("bulk enrichment: failed to publish error message: %v", err)
	}
}

// buildHistoryPrompt reconstructs a readable transcript from the
// append-only bus history: the initial scenario text, then each turn's
// resolved text.
func (t *BulkEnrichmentTask) buildHistoryPrompt() string {
	var sb strings.Builder
	for _, m := range t.bus.History() {
		switch v := m.(type) {
		case *message.Initialize:
			sb.WriteString("system: " + v.Text + "\n")
		case *message.Text:
			sb.WriteString(string(v.GetRole()) + ": " + v.Text + "\n")
		case *message.Transcription:
			sb.WriteString(string(v.GetRole()) + ": " + v.SourceText + "\n")
		case *message.Translation:
			sb.WriteString(string(v.GetRole()) + ": " + v.SourceText + "\n")
		}
	}
	return sb.String()
}

func nowTimestamp() float64 {
	return float64(time.Now().UnixMilli()) / 1000
}
