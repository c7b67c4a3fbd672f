// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package llmtext provides a narrow system-prompt/user-prompt completion
// abstraction shared by the translation and hint-generation providers, both
// of which send a system message plus a user message and expect a single
// JSON object back. It exists because those two providers are otherwise
// identical except for the prompt text and the target struct.
package llmtext

import "context"

// Client completes a single system/user exchange and returns the raw text
// of the model's reply (expected to be a JSON object; callers decode it).
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Name() string
}
