// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package respond

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/rapidaai/mediator/message"
)

func newTestClient(t *testing.T, responseJSON string) *genai.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(responseJSON))
	}))
	t.Cleanup(server.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		HTTPOptions: genai.HTTPOptions{BaseURL: server.URL + "/"},
	})
	require.NoError(t, err)
	return client
}

func TestGeminiResponder_ParsesCombinedResponse(t *testing.T) {
	payload := map[string]any{
		"source_text":     "こんにちは",
		"response_text":   "こんにちは、お元気ですか？",
		"translated_text": "Hello, how are you?",
		"chunked":         []string{"こんにちは、", "お元気ですか？"},
		"dictionary": map[string]any{
			"元気": map[string]string{"source_text": "元気", "translated_text": "well"},
		},
		"hints": []map[string]string{
			{"source_text": "元気です", "translated_text": "I'm fine"},
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
	responder := NewGeminiResponder(client, "gemini-2.0-flash")

	result, err := responder.Respond(context.Background(), make([]byte, 320), "audio/pcm;rate=16000", "ordering coffee", "", message.Languages["ja"], message.Languages["en"])
	require.NoError(t, err)
	assert.Equal(t, "こんにちは", result.SourceText)
	assert.Equal(t, "こんにちは、お元気ですか？", result.ResponseText)
	assert.Len(t, result.Hints, 1)
	assert.Equal(t, "元気です", result.Hints[0].SourceText)
}
