// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package stt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newTestClient(t *testing.T, responseJSON string) *genai.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(responseJSON))
	}))
	t.Cleanup(server.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: "test-key",
		HTTPOptions: genai.HTTPOptions{
			BaseURL: server.URL + "/",
		},
	})
	require.NoError(t, err)
	return client
}

func TestGeminiTranscriber_ParsesStructuredResponse(t *testing.T) {
	payload := map[string]any{
		"transcription": "こんにちは",
		"translation":   "Hello",
		"chunked":       []string{"こんにちは"},
		"dictionary": map[string]any{
			"こんにちは": map[string]string{"source_text": "こんにちは", "translated_text": "Hello"},
		},
	}
	encoded, err := json.Marshal(payload)
	require.NoError(t, err)

	respBody, err := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]any{{"text": string(encoded)}},
				},
			},
		},
	})
	require.NoError(t, err)

	client := newTestClient(t, string(respBody))
	transcriber := NewGeminiTranscriber(client, "gemini-2.0-flash")

	result, err := transcriber.Transcribe(context.Background(), make([]byte, 320), "audio/pcm;rate=16000")
	require.NoError(t, err)
	assert.Equal(t, "こんにちは", result.SourceText)
	assert.Equal(t, "Hello", result.TranslatedText)
}
