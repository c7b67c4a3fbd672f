// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package stt transcribes recorded audio into native-language text plus a
// learner-facing dictionary and translation, ported from
// transcribe() (multivox/transcription.py), which sends the
// audio directly to a multimodal model rather than a dedicated ASR engine.
package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/rapidaai/mediator/audio"
	"github.com/rapidaai/mediator/message"
)

const transcriptionFormat = `
transcription: direct transcription of the audio in the native language
dictionary: key-value pairs of important terms and their translations
chunked: list of speech chunks separated by punctuation, this should align with ` + "`dictionary`" + ` for lookup
translation: native English translation of the content
`

const transcriptionPrompt = `You are a language expert.

Analyze the attached audio and provide a structured response in this exact JSON format.
Include translations for important vocabulary, phrases, and idioms in the dictionary.
` + transcriptionFormat + `
Generate only a single top level object (not a list) with the following structure:

{
    "transcription": "<direct transcription>",
    "dictionary": {
        "<key term>": {"source_text": "<key term>", "translated_text": "English meaning", "notes": "Optional usage notes"}
    },
    "chunked": ["chunk", "list"],
    "translation": "Complete English translation of the full text"
}

Only output valid JSON. Do not include any other text or explanations.
`

// Result mirrors the TranscribeResponse shape.
type Result struct {
	SourceText     string                            `json:"transcription"`
	TranslatedText string                            `json:"translation"`
	Chunked        []string                          `json:"chunked"`
	Dictionary     map[string]message.DictionaryEntry `json:"dictionary"`
}

// Transcriber turns a batch of recorded audio into a structured result.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []byte, mimeType string) (Result, error)
}

// GeminiTranscriber implements Transcriber by sending raw audio directly to
// a multimodal Gemini model instead of a dedicated speech-recognition engine.
type GeminiTranscriber struct {
	client *genai.Client
	model  string
}

// NewGeminiTranscriber builds a GeminiTranscriber that calls model (e.g.
// "gemini-2.0-flash") through client.
func NewGeminiTranscriber(client *genai.Client, model string) *GeminiTranscriber {
	return &GeminiTranscriber{client: client, model: model}
}

func (t *GeminiTranscriber) Transcribe(ctx context.Context, pcm []byte, mimeType string) (Result, error) {
	wavBytes := pcm
	outMime := mimeType
	if strings.HasPrefix(mimeType, "audio/pcm") {
		rate := audio.ExtractSampleRate(mimeType)
		wavBytes = audio.WrapPCM(pcm, rate)
		outMime = "audio/wav"
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			{Text: transcriptionPrompt},
			{InlineData: &genai.Blob{MIMEType: outMime, Data: wavBytes}},
		}, genai.RoleUser),
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return Result{}, fmt.Errorf("transcribing audio via gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Result{}, fmt.Errorf("transcribing audio via gemini: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	var out Result
	if err := json.Unmarshal([]byte(strings.TrimSpace(sb.String())), &out); err != nil {
		return Result{}, fmt.Errorf("parsing transcription response: %w", err)
	}
	return out, nil
}
