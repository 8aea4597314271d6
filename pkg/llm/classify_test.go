package llm

import (
	"context"
	"errors"
	"testing"
)

type fakeProvider struct {
	response string
	err      error

	gotHistory []Message
	gotOpts    Options
}

func (f *fakeProvider) Chat(_ context.Context, history []Message, options ...Option) (string, error) {
	f.gotHistory = history
	for _, opt := range options {
		opt(&f.gotOpts)
	}
	return f.response, f.err
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return f.Chat(ctx, []Message{{Role: "user", Content: prompt}}, options...)
}

type verdict struct {
	BinaryScore bool   `json:"binary_score"`
	Reasoning   string `json:"reasoning"`
}

func TestClassifyParsesCleanJSON(t *testing.T) {
	provider := &fakeProvider{response: `{"binary_score": true, "reasoning": "ok"}`}

	got, err := Classify[verdict](context.Background(), provider, "system", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.BinaryScore || got.Reasoning != "ok" {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestClassifyStripsMarkdownFences(t *testing.T) {
	provider := &fakeProvider{response: "```json\n{\"binary_score\": false, \"reasoning\": \"no\"}\n```"}

	got, err := Classify[verdict](context.Background(), provider, "system", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.BinaryScore {
		t.Errorf("expected false score, got %+v", got)
	}
}

func TestClassifyExtractsJSONFromProse(t *testing.T) {
	provider := &fakeProvider{response: `Here is my answer: {"binary_score": true, "reasoning": "done"} hope that helps`}

	got, err := Classify[verdict](context.Background(), provider, "system", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.BinaryScore {
		t.Errorf("expected true score, got %+v", got)
	}
}

func TestClassifyMalformedOutputIsError(t *testing.T) {
	provider := &fakeProvider{response: "I cannot classify this."}

	if _, err := Classify[verdict](context.Background(), provider, "system", "user"); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}

func TestClassifyPropagatesProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}

	if _, err := Classify[verdict](context.Background(), provider, "system", "user"); err == nil {
		t.Fatal("expected provider error to propagate")
	}
}

func TestClassifyDefaultsToTemperatureZero(t *testing.T) {
	provider := &fakeProvider{response: `{"binary_score": true, "reasoning": ""}`}
	provider.gotOpts.Temperature = 0.7 // overwritten by the applied options

	if _, err := Classify[verdict](context.Background(), provider, "system", "user"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.gotOpts.Temperature != 0.0 {
		t.Errorf("expected temperature 0.0, got %v", provider.gotOpts.Temperature)
	}
	if len(provider.gotHistory) != 2 || provider.gotHistory[0].Role != "system" {
		t.Errorf("expected system+user history, got %+v", provider.gotHistory)
	}
}
