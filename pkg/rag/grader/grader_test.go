package grader

import (
	"context"
	"errors"
	"strings"
	"testing"

	"club-assistant-be/pkg/llm"
	"club-assistant-be/pkg/store"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// scriptedProvider returns one canned response per call, in order.
type scriptedProvider struct {
	responses []string
	err       error
	calls     int

	gotHistory []llm.Message
}

func (p *scriptedProvider) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	p.gotHistory = history
	if p.err != nil {
		return "", p.err
	}
	resp := p.responses[p.calls%len(p.responses)]
	p.calls++
	return resp, nil
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func TestHallucinationGraderGroundedAnswer(t *testing.T) {
	provider := &scriptedProvider{responses: []string{`{"binary_score": true, "reasoning": "dökümanlarla destekleniyor"}`}}
	g := NewHallucinationGrader(provider, nopLogger{})

	grade, err := g.Grade(context.Background(), "Üyelik ücretsizdir.", []store.Passage{
		{Text: "Üyelik ücretsizdir", Source: "tuzuk.pdf"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !grade.BinaryScore {
		t.Errorf("expected grounded verdict, got %+v", grade)
	}
	// Passages are numbered in the prompt so the grader can cite them.
	user := provider.gotHistory[len(provider.gotHistory)-1].Content
	if !strings.Contains(user, "[Döküman 1]") {
		t.Errorf("expected numbered passage blocks in prompt, got %q", user)
	}
}

func TestHallucinationGraderPropagatesError(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("timeout")}
	g := NewHallucinationGrader(provider, nopLogger{})

	if _, err := g.Grade(context.Background(), "cevap", []store.Passage{{Text: "x"}}); err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestRelevanceFilterKeepsOrder(t *testing.T) {
	// Second passage graded irrelevant, others kept.
	provider := &scriptedProvider{responses: []string{
		`{"binary_score": true, "reasoning": ""}`,
		`{"binary_score": false, "reasoning": ""}`,
		`{"binary_score": true, "reasoning": ""}`,
	}}
	g := NewRelevanceGrader(provider, nopLogger{})

	passages := []store.Passage{
		{Text: "FESTUP 4 Aralık'ta", Source: "etkinlikler.pdf"},
		{Text: "Yönetim kurulu seçimleri", Source: "tuzuk.pdf"},
		{Text: "FESTUP startup festivali", Source: "festup.pdf"},
	}

	filtered, err := g.Filter(context.Background(), "FESTUP ne zaman?", passages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(filtered))
	}
	if filtered[0].Source != "etkinlikler.pdf" || filtered[1].Source != "festup.pdf" {
		t.Errorf("order not preserved: %+v", filtered)
	}
}

func TestRelevanceFilterFailsWhole(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("connection refused")}
	g := NewRelevanceGrader(provider, nopLogger{})

	if _, err := g.Filter(context.Background(), "soru", []store.Passage{{Text: "x"}}); err == nil {
		t.Fatal("expected filter to fail on grading error")
	}
}
