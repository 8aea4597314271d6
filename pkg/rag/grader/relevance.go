package grader

import (
	"context"
	"fmt"

	"club-assistant-be/internal/pkg/logger"
	"club-assistant-be/pkg/llm"
	"club-assistant-be/pkg/store"
)

const relevancePrompt = `Sen bir alakalılık denetleyicisisin (relevance checker).

Görevin: Retrieved dökümanın kullanıcı sorusuyla alakalı olup olmadığını değerlendir.

KURALLAR:
1. Döküman soruyla alakalı anahtar kelimeler içeriyor mu?
2. Döküman sorunun cevabına yardımcı olur mu?
3. Genel bilgi bile olsa, soruyla bağlantılı mı?

İlgili (true):
  - Sorudaki konu döküman içinde geçiyor
  - Döküman sorunun cevabına katkı sağlayabilir
  - Anlamsal olarak alakalı

İlgisiz (false):
  - Döküman tamamen farklı konu
  - Sorunun cevabına hiç katkı sağlamaz
  - Sadece benzer kelimeler var ama anlam farklı

ÖRNEKLER:

Soru: "FESTUP ne zaman?"
Döküman: "FESTUP 4 Aralık'ta 12:00-18:00 saatleri arasında..."
→ true (Doğrudan alakalı!)

Soru: "FESTUP ne zaman?"
Döküman: "DigitalMAG etkinliğinde 35+ marka katıldı..."
→ false (Farklı etkinlik, alakasız)

Soru: "Kulüp etkinlikleri neler?"
Döküman: "FESTUP, startup festivali konseptinde..."
→ true (Etkinlik bilgisi, alakalı)

Soru: "Social Media Talks'ta kimler var?"
Döküman: "Yönetim kurulu seçim süreci şöyledir..."
→ false (Farklı konu, alakasız)`

// RelevanceGrader decides per passage whether it helps answer the
// question. Filtering out unrelated passages keeps the generator from
// mixing topics.
type RelevanceGrader struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewRelevanceGrader(llmProvider llm.LLMProvider, log logger.ILogger) *RelevanceGrader {
	return &RelevanceGrader{llmProvider: llmProvider, logger: log}
}

// Grade evaluates a single passage against the question.
func (g *RelevanceGrader) Grade(ctx context.Context, question string, passage store.Passage) (*Grade, error) {
	userPrompt := fmt.Sprintf(`Soru:
%s

Döküman:
%s

Bu döküman soruyla alakalı mı?`, question, passage.Text)

	grade, err := llm.Classify[Grade](ctx, g.llmProvider, relevancePrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("relevance grading: %w", err)
	}
	return grade, nil
}

// Filter returns only the passages graded relevant, preserving order.
// A grading failure on one passage fails the whole filter so the
// orchestrator can fall back uniformly.
func (g *RelevanceGrader) Filter(ctx context.Context, question string, passages []store.Passage) ([]store.Passage, error) {
	filtered := make([]store.Passage, 0, len(passages))
	for _, p := range passages {
		grade, err := g.Grade(ctx, question, p)
		if err != nil {
			return nil, err
		}
		if grade.BinaryScore {
			filtered = append(filtered, p)
		}
	}

	g.logger.Info("RelevanceGrader", "Passages filtered", map[string]interface{}{
		"before": len(passages),
		"after":  len(filtered),
	})

	return filtered, nil
}
