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

	"github.com/rapidaai/mediator/bus"
	"github.com/rapidaai/mediator/message"
	"github.com/rapidaai/mediator/pkg/commons"
	"github.com/rapidaai/mediator/providers/respond"
	"github.com/rapidaai/mediator/providers/tts"
	"github.com/rapidaai/mediator/turn"
)

// StepByStepEnrichmentTask runs step-by-step mode: no upstream live
// session, so each closed user turn is resolved by a single combined
// transcribe-and-respond call, with TTS synthesized in the background
// when the session carries an audio modality.
type StepByStepEnrichmentTask struct {
	base
	bus           *bus.ChatBus
	detector      *turn.Detector
	responder     respond.Responder
	synthesizer   tts.Synthesizer
	scenario      string
	source        message.Language
	target        message.Language
	audioModality bool
	logger        commons.Logger

	// userAudio accumulates the pending user turn's raw PCM. It carries no
	// locking: only user-role audio touches it, and in a session that is
	// published solely by UserReader's single read loop.
	userAudio []byte
}

// NewStepByStepEnrichmentTask builds a StepByStepEnrichmentTask for one
// session. scenario is the initial system prompt text; audioModality
// selects whether replies are additionally synthesized as speech.
func NewStepByStepEnrichmentTask(
	chatBus *bus.ChatBus,
	detector *turn.Detector,
	responder respond.Responder,
	synthesizer tts.Synthesizer,
	scenario string,
	source, target message.Language,
	audioModality bool,
	logger commons.Logger,
) *StepByStepEnrichmentTask {
	return &StepByStepEnrichmentTask{
		bus:           chatBus,
		detector:      detector,
		responder:     responder,
		synthesizer:   synthesizer,
		scenario:      scenario,
		source:        source,
		target:        target,
		audioModality: audioModality,
		logger:        logger,
	}
}

// Start has no reader loop of its own; enrichment is purely handle-driven.
func (t *StepByStepEnrichmentTask) Start(ctx context.Context) []<-chan struct{} {
	return nil
}

func (t *StepByStepEnrichmentTask) Handle(ctx context.Context, msg message.Message) error {
	audioMsg, ok := msg.(*message.Audio)
	if !ok || msg.GetRole() != message.RoleUser {
		return nil
	}

	t.userAudio = append(t.userAudio, audioMsg.AudioData...)

	if !t.detector.IsTurnComplete(t.userAudio, audioMsg.IsEndOfTurn()) {
		return nil
	}

	audio := t.userAudio
	t.userAudio = nil
	if len(audio) == 0 {
		return nil
	}

	result, err := t.responder.Respond(ctx, audio, fmt.Sprintf("audio/pcm;rate=%d", clientSampleRate), t.scenario, t.buildHistoryPrompt(), t.source, t.target)
	if err != nil {
		return t.bus.Publish(ctx, message.NewError(message.RoleUser, fmt.Sprintf("Sorry, I couldn't process that turn: %s", err), nowTimestamp()))
	}

	if err := t.bus.Publish(ctx, message.NewTranscription(message.RoleUser, result.SourceText, "", nil, nil, nowTimestamp())); err != nil {
		return err
	}

	if t.audioModality {
		go t.synthesizeReply(result.ResponseText)
	}

	if err := t.bus.Publish(ctx, message.NewTranscription(message.RoleAssistant, result.ResponseText, result.TranslatedText, result.Chunked, result.Dictionary, nowTimestamp())); err != nil {
		return err
	}

	return t.bus.Publish(ctx, message.NewHint(message.RoleAssistant, result.Hints, nowTimestamp()))
}

// synthesizeReply runs TTS for the assistant's reply text in the
// background and publishes the resulting audio once ready. Failures are
// logged, not propagated — the learner already has the text reply.
func (t *StepByStepEnrichmentTask) synthesizeReply(text string) {
	ctx := context.Background()
	audio, err := t.synthesizer.Synthesize(ctx, text, t.source)
	if err != nil {
		t.logger.Errorf("step-by-step enrichment: tts failed: %v", err)
		return
	}
	if audio == nil {
		return
	}

	msg := message.NewAudio(message.RoleAssistant, audio.Data, "audio/mp3", true, nowTimestamp())
	if err := t.bus.Publish(ctx, msg); err != nil {
		t.logger.Errorf("step-by-step enrichment: publishing synthesized audio failed: %v", err)
	}
}

// buildHistoryPrompt reconstructs a readable transcript from the
// append-only bus history for the current session.
func (t *StepByStepEnrichmentTask) buildHistoryPrompt() string {
	var sb strings.Builder
	for _, m := range t.bus.History() {
		switch v := m.(type) {
		case *message.Transcription:
			if v.SourceText != "" {
				sb.WriteString(string(v.GetRole()) + ": " + v.SourceText + "\n")
			}
		}
	}
	return sb.String()
}
