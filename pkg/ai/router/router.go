package router

import (
	"context"
	"fmt"
	"strings"

	"club-assistant-be/internal/pkg/logger"
	"club-assistant-be/pkg/llm"
)

// Route is the datasource a question gets dispatched to.
type Route string

const (
	RouteRAG            Route = "rag"
	RouteDirect         Route = "direct"
	RouteExternalSearch Route = "external_search"
)

// RouteDecision is the structured classification returned by the LLM.
type RouteDecision struct {
	Datasource string `json:"datasource"`
	Reasoning  string `json:"reasoning"`
}

// transcriptWindow is how many recent entries the classification prompt
// sees.
const transcriptWindow = 6

// ConversationStore is the slice of the memory repository the router
// needs: recording the incoming question and reading the recent
// dialogue so follow-ups classify against their context.
type ConversationStore interface {
	Append(sessionID, role, content string, metadata map[string]interface{})
	Transcript(sessionID string, n int) string
	Topic(sessionID string) string
}

const systemPrompt = `Sen Haliç Üniversitesi Girişimcilik ve Pazarlama Kulübü asistanısın.

Soruyu analiz et ve uygun veri kaynağına yönlendir:

- 'rag': Kulüp hakkında sorular
  * Tüzük, yönetim, üyelik, organizasyon
  * Ekipler ve görev tanımları (Dış İlişkiler, Operasyon, vb.)
  * ETKİNLİKLER: DigitalMAG, FESTUP, HUGİP Akademi, Social Media Talks
  * Etkinlik konuşmacıları, tarih/saat bilgileri
  * İş/staj fırsatları, networking, katılım şartları

- 'external_search': Güncel haberler, genel bilgiler, kulüp dışı konular
  * Güncel haberler
  * Genel tanımlar (yapay zeka nedir, blockchain nedir)
  * Hava durumu, spor sonuçları vb.

- 'direct': Basit selamlamalar, teşekkürler, genel sohbet
  * Kullanıcının senden bir İŞ yapmanı istediği komutlar da (e-posta yaz,
    kod yaz, çeviri yap) 'direct' sayılır; asistan bunları kibarca reddeder.

ÖNEMLİ: Etkinlik isimleri (DigitalMAG, FESTUP, Social Media Talks, HUGİP Akademi)
veya "etkinlik", "konuşmacı", "katılım", "staj/iş fırsatı" gibi kelimeler varsa → 'rag'

ÖRNEKLER:
- "Kulübe nasıl üye olurum?" → rag
- "Yönetim kurulu kimlerden oluşur?" → rag
- "Dış İlişkiler ekibi ne yapar?" → rag
- "FESTUP'ta iş bulabilir miyim?" → rag (FESTUP kulüp etkinliği!)
- "Social Media Talks ne zaman?" → rag (Kulüp etkinliği!)
- "DigitalMAG'a kaç kişi katılıyor?" → rag (Kulüp etkinliği!)
- "Yapay zeka nedir?" → external_search (Genel bilgi)
- "Bugün hava nasıl?" → external_search (Güncel bilgi)
- "Merhaba!" → direct
- "Teşekkürler!" → direct
- "Bana bir e-posta yazar mısın?" → direct

TAKİP SORULARI: Soru tek başına belirsizse (örn. "Kim konuşacak?",
"Ne zaman?") KONUŞMA GEÇMİŞİ ve GÜNCEL KONU bölümlerine bak. Önceki
tur bir kulüp etkinliği veya kulüp konusuysa → rag`

// Router classifies each question into a Route before the pipeline
// dispatches it. The question is recorded into conversation memory
// before the classification call, so the transcript always contains it
// even when classification fails.
type Router struct {
	llmProvider llm.LLMProvider
	memory      ConversationStore
	logger      logger.ILogger
}

func NewRouter(llmProvider llm.LLMProvider, memory ConversationStore, log logger.ILogger) *Router {
	return &Router{
		llmProvider: llmProvider,
		memory:      memory,
		logger:      log,
	}
}

// Decide records the question into session memory and classifies it
// against the recent dialogue. A classification backend failure or an
// unknown datasource value is returned as an error; the orchestrator
// owns the fallback behavior.
func (r *Router) Decide(ctx context.Context, question, sessionID string) (Route, error) {
	// Read the dialogue before the append so the transcript holds only
	// prior turns.
	transcript := r.memory.Transcript(sessionID, transcriptWindow)
	topic := r.memory.Topic(sessionID)
	r.memory.Append(sessionID, "user", question, nil)

	decision, err := llm.Classify[RouteDecision](ctx, r.llmProvider, systemPrompt, buildUserPrompt(question, transcript, topic))
	if err != nil {
		return "", fmt.Errorf("route classification: %w", err)
	}

	route := Route(decision.Datasource)
	switch route {
	case RouteRAG, RouteDirect, RouteExternalSearch:
	default:
		return "", fmt.Errorf("route classification: unknown datasource %q", decision.Datasource)
	}

	r.logger.Info("Router", "Route decided", map[string]interface{}{
		"session_id": sessionID,
		"route":      string(route),
		"reasoning":  decision.Reasoning,
	})

	return route, nil
}

// buildUserPrompt frames the question with the recent dialogue and the
// session topic. First turns have neither and get the bare question.
func buildUserPrompt(question, transcript, topic string) string {
	var b strings.Builder
	if transcript != "" {
		b.WriteString("KONUŞMA GEÇMİŞİ:\n")
		b.WriteString(transcript)
		b.WriteString("\n\n")
	}
	if topic != "" {
		b.WriteString("GÜNCEL KONU: ")
		b.WriteString(topic)
		b.WriteString("\n\n")
	}
	b.WriteString("SORU: ")
	b.WriteString(question)
	return b.String()
}
