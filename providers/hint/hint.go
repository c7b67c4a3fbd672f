// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package hint generates suggested next replies for the learner, ported
// from generate_hints() (multivox/hints.py).
package hint

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rapidaai/mediator/message"
	"github.com/rapidaai/mediator/providers/llmtext"
)

const promptBody = `You are a language expert. Generate 3 natural responses to this conversation.
Output only valid JSON in this exact format:
Provide responses that would be appropriate in the conversation.

{
    "hints": [
        {
            "source_text": "<Response to the conversation, consistent with the level of the user>",
            "translated_text": "<translation in idiomatic English>"
        }
    ]
}

Do not include any other text or explanations.
Only provide responses suitable for the "user" role.
Do not provide responses for the "assistant".
`

// Hinter suggests plausible next learner utterances given the conversation
// so far.
type Hinter interface {
	Generate(ctx context.Context, history string, language *message.Language) ([]message.HintOption, error)
}

// LLMHinter implements Hinter on top of any llmtext.Client.
type LLMHinter struct {
	client llmtext.Client
}

// New builds an LLMHinter backed by client.
func New(client llmtext.Client) *LLMHinter {
	return &LLMHinter{client: client}
}

func (h *LLMHinter) Generate(ctx context.Context, history string, language *message.Language) ([]message.HintOption, error) {
	languagePrompt := "\n"
	if language != nil {
		languagePrompt = fmt.Sprintf("Assume the language is %s.\n", language.Name)
	}

	raw, err := h.client.Complete(ctx, languagePrompt, promptBody+"\n"+history)
	if err != nil {
		return nil, fmt.Errorf("generating hints via %s: %w", h.client.Name(), err)
	}

	var parsed struct {
		Hints []message.HintOption `json:"hints"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parsing hints response: %w", err)
	}
	return parsed.Hints, nil
}
