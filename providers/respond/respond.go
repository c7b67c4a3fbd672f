// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package respond implements the step-by-step mode's single combined
// transcribe-and-respond call: one multimodal request that returns the
// user's transcription, the assistant's reply, and suggested next replies
// together, replacing the live mode's separate transcribe/translate/hint
// round trips with a single turn-closing call.
package respond

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/rapidaai/mediator/audio"
	"github.com/rapidaai/mediator/message"
)

const promptTemplate = `You are a language tutor running a conversation practice session.

Scenario: %s

Conversation so far:
%s

Analyze the attached audio from the user and respond as the assistant, continuing the
scenario naturally. Output only valid JSON in this exact format:

{
    "source_text": "<direct transcription of the user's audio, in %s>",
    "response_text": "<the assistant's reply, in %s, continuing the scenario>",
    "translated_text": "<translation of response_text in %s>",
    "chunked": ["<response_text split into natural chunks for learning>"],
    "dictionary": {
        "<key term from response_text>": {"source_text": "<key term>", "translated_text": "<English meaning>", "notes": "<optional usage notes>"}
    },
    "hints": [
        {"source_text": "<a natural reply the user could give next, in %s>", "translated_text": "<its English translation>"}
    ]
}

Provide exactly 3 hints, all suitable for the "user" role.
Do not include any other text or explanations.
`

// Result is the single-call response for a step-by-step turn.
type Result struct {
	SourceText     string                            `json:"source_text"`
	ResponseText   string                             `json:"response_text"`
	TranslatedText string                            `json:"translated_text"`
	Chunked        []string                          `json:"chunked"`
	Dictionary     map[string]message.DictionaryEntry `json:"dictionary"`
	Hints          []message.HintOption               `json:"hints"`
}

// Responder turns one closed user turn's audio into a transcription, an
// assistant reply, and suggested next replies, in a single call.
type Responder interface {
	Respond(ctx context.Context, pcm []byte, mimeType, scenario, history string, source, target message.Language) (Result, error)
}

// GeminiResponder implements Responder against a multimodal Gemini model.
type GeminiResponder struct {
	client *genai.Client
	model  string
}

// NewGeminiResponder builds a GeminiResponder that calls model through client.
func NewGeminiResponder(client *genai.Client, model string) *GeminiResponder {
	return &GeminiResponder{client: client, model: model}
}

func (r *GeminiResponder) Respond(ctx context.Context, pcm []byte, mimeType, scenario, history string, source, target message.Language) (Result, error) {
	wavBytes := pcm
	outMime := mimeType
	if strings.HasPrefix(mimeType, "audio/pcm") {
		rate := audio.ExtractSampleRate(mimeType)
		wavBytes = audio.WrapPCM(pcm, rate)
		outMime = "audio/wav"
	}

	prompt := fmt.Sprintf(promptTemplate, scenario, history, source.Name, source.Name, target.Name, source.Name)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{MIMEType: outMime, Data: wavBytes}},
		}, genai.RoleUser),
	}

	resp, err := r.client.Models.GenerateContent(ctx, r.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return Result{}, fmt.Errorf("generating turn response via gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Result{}, fmt.Errorf("generating turn response via gemini: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	var out Result
	if err := json.Unmarshal([]byte(strings.TrimSpace(sb.String())), &out); err != nil {
		return Result{}, fmt.Errorf("parsing turn response: %w", err)
	}
	return out, nil
}
