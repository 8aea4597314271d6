package grader

import (
	"context"
	"fmt"
	"strings"

	"club-assistant-be/internal/pkg/logger"
	"club-assistant-be/pkg/llm"
	"club-assistant-be/pkg/store"
)

const hallucinationPrompt = `Sen bir doğruluk denetleyicisisin (fact-checker).

Görevin: LLM tarafından üretilen cevabın, verilen BELGELER'e (documents) sadık olup
olmadığını kontrol et.

KURALLAR:
1. Cevaptaki HER BİLGİ belgelerden gelmeli
2. Tarih, saat, isim gibi SPESİFİK BİLGİLER tam olarak eşleşmeli
3. Belgede OLMAYAN bilgi varsa → Hallucination! (false)
4. Cevap belgelere sadıksa → true
5. Belgelerde cevap VARKEN model "bilgi bulamadım" diyorsa → false

ÖRNEKLER:

Belgeler: "FESTUP 4 Aralık'ta yapılacak"
Cevap: "FESTUP 4 Aralık'ta yapılacak"
→ true (Doğru bilgi)

Belgeler: "FESTUP 4 Aralık'ta yapılacak"
Cevap: "FESTUP 5 Aralık'ta yapılacak"
→ false (TARİH YANLIŞ! Hallucination)

Belgeler: "Konuşmacılar: Melih Abuaf, Sinan Koç"
Cevap: "Konuşmacılar: Melih Abuaf, Ahmet Yılmaz, Sinan Koç"
→ false (Ahmet Yılmaz belgede YOK! Hallucination)

Belgeler: "Kulüp 2020'de kuruldu"
Cevap: "Kulüp yıllardır aktif"
→ true (Genel ifade, belgelerle çelişmiyor)`

// HallucinationGrader checks whether a generated answer stays faithful
// to the retrieved passages.
type HallucinationGrader struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewHallucinationGrader(llmProvider llm.LLMProvider, log logger.ILogger) *HallucinationGrader {
	return &HallucinationGrader{llmProvider: llmProvider, logger: log}
}

// Grade evaluates the generation against the passages. true means
// grounded, false means hallucination.
func (g *HallucinationGrader) Grade(ctx context.Context, generation string, passages []store.Passage) (*Grade, error) {
	var docs strings.Builder
	for i, p := range passages {
		if i > 0 {
			docs.WriteString("\n\n---\n\n")
		}
		fmt.Fprintf(&docs, "[Döküman %d]\n%s", i+1, p.Text)
	}

	userPrompt := fmt.Sprintf(`Belgeler:
%s

LLM Cevabı:
%s

Bu cevap belgelere sadık mı, yoksa uydurma bilgi içeriyor mu?`, docs.String(), generation)

	grade, err := llm.Classify[Grade](ctx, g.llmProvider, hallucinationPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("hallucination grading: %w", err)
	}

	g.logger.Info("HallucinationGrader", "Generation graded", map[string]interface{}{
		"grounded":  grade.BinaryScore,
		"reasoning": grade.Reasoning,
	})

	return grade, nil
}
