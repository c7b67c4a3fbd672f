// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package hint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rapidaai/mediator/message"
)

type stubLLM struct {
	response  string
	err       error
	gotSystem string
}

func (s *stubLLM) Name() string { return "stub" }
func (s *stubLLM) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.gotSystem = systemPrompt
	return s.response, s.err
}

func TestLLMHinter_ParsesHints(t *testing.T) {
	stub := &stubLLM{response: `{"hints": [{"source_text": "こんにちは", "translated_text": "Hello"}]}`}
	h := New(stub)

	ja := message.Languages["ja"]
	hints, err := h.Generate(context.Background(), "assistant: hi", &ja)
	require.NoError(t, err)
	require.Len(t, hints, 1)
	assert.Equal(t, "こんにちは", hints[0].SourceText)
	assert.Contains(t, stub.gotSystem, "Japanese")
}

func TestLLMHinter_NilLanguageOmitsAssumption(t *testing.T) {
	stub := &stubLLM{response: `{"hints": []}`}
	h := New(stub)

	_, err := h.Generate(context.Background(), "assistant: hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "\n", stub.gotSystem)
}
