package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// jsonInstruction is appended to every classification prompt so the model
// emits machine-readable output instead of prose.
const jsonInstruction = "\n\nOUTPUT FORMAT:\n" +
	"Respond with ONLY a valid JSON object. No markdown fences, no commentary,\n" +
	"no text before or after the JSON."

// Classify runs a schema-constrained LLM call and decodes the response
// into T. The system prompt must describe the expected JSON fields; the
// fixed output-format instruction is appended here so callers don't
// repeat it.
//
// A malformed or non-JSON response is an error. Callers that want a
// fallback decide that themselves; routing and grading treat it as a
// backend failure.
func Classify[T any](ctx context.Context, provider LLMProvider, systemPrompt, userPrompt string, options ...Option) (*T, error) {
	history := []Message{
		{Role: "system", Content: systemPrompt + jsonInstruction},
		{Role: "user", Content: userPrompt},
	}

	// Temperature 0 for deterministic classification unless overridden.
	opts := append([]Option{WithTemperature(0.0)}, options...)

	response, err := provider.Chat(ctx, history, opts...)
	if err != nil {
		return nil, fmt.Errorf("classification call failed: %w", err)
	}

	var result T
	if err := json.Unmarshal([]byte(extractJSON(response)), &result); err != nil {
		return nil, fmt.Errorf("malformed classification output: %w (raw: %s)", err, truncate(response, 200))
	}

	return &result, nil
}

// extractJSON strips markdown code fences and surrounding prose, returning
// the first top-level JSON object in the response. Models wrap JSON in
// ```json fences often enough that this is required.
func extractJSON(response string) string {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		return cleaned[start : end+1]
	}
	return cleaned
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
