package pipeline

import (
	"context"
	"errors"
	"testing"

	"club-assistant-be/pkg/ai/router"
	"club-assistant-be/pkg/store"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type fakeRouter struct {
	route router.Route
	err   error
}

func (f *fakeRouter) Decide(context.Context, string, string) (router.Route, error) {
	return f.route, f.err
}

type fakeRetriever struct {
	passages []store.Passage
	err      error
	gotQuery string
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string) ([]store.Passage, error) {
	f.gotQuery = query
	return f.passages, f.err
}

type fakeGenerator struct {
	ragAnswer    string
	directAnswer string
	err          error
}

func (f *fakeGenerator) GenerateRAG(context.Context, string, []store.Passage) (string, error) {
	return f.ragAnswer, f.err
}

func (f *fakeGenerator) GenerateDirect(context.Context, string) (string, error) {
	return f.directAnswer, f.err
}

func (f *fakeGenerator) GenerateExternal(context.Context, string) (string, error) {
	return "web araması yapılandırılmadı", nil
}

type fakeReflector struct {
	attempts int
	suffix   string
	err      error
	calls    int
}

func (f *fakeReflector) Reflect(_ context.Context, _ string, generation string, _ []store.Passage) (string, int, error) {
	f.calls++
	if f.err != nil {
		return "", 0, f.err
	}
	return generation + f.suffix, f.attempts, nil
}

type fakeMemory struct {
	topic       string
	lastRole    string
	lastContent string
	lastMeta    map[string]interface{}
}

func (m *fakeMemory) Append(_, role, content string, metadata map[string]interface{}) {
	m.lastRole = role
	m.lastContent = content
	m.lastMeta = metadata
}

func (m *fakeMemory) Topic(string) string { return m.topic }

func clubPassages() []store.Passage {
	return []store.Passage{
		{Text: "Üyelik formu doldurulur", Source: "tuzuk.pdf", Score: 0.9},
		{Text: "Üyelik ücretsizdir", Source: "tuzuk.pdf", Score: 0.8},
		{Text: "FESTUP aralıkta", Source: "etkinlikler.pdf", Score: 0.7},
	}
}

func TestProcessDirectRoute(t *testing.T) {
	mem := &fakeMemory{}
	p := NewPipeline(
		&fakeRouter{route: router.RouteDirect},
		&fakeRetriever{},
		&fakeGenerator{directAnswer: "Merhaba! Size nasıl yardımcı olabilirim?"},
		&fakeReflector{},
		mem,
		nopLogger{},
	)

	res, err := p.Process(context.Background(), "Merhaba!", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Route != router.RouteDirect {
		t.Errorf("expected direct route, got %s", res.Route)
	}
	if len(res.Sources) != 0 || res.ReflectionCount != 0 {
		t.Errorf("direct route must have no sources or reflections: %+v", res)
	}
	if mem.lastRole != "assistant" || mem.lastContent != res.Answer {
		t.Errorf("assistant entry not recorded: %+v", mem)
	}
}

func TestProcessRAGRoute(t *testing.T) {
	mem := &fakeMemory{}
	refl := &fakeReflector{attempts: 1}
	p := NewPipeline(
		&fakeRouter{route: router.RouteRAG},
		&fakeRetriever{passages: clubPassages()},
		&fakeGenerator{ragAnswer: "Üyelik formu ile başvurabilirsiniz."},
		refl,
		mem,
		nopLogger{},
	)

	res, err := p.Process(context.Background(), "Kulübe nasıl üye olurum?", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Route != router.RouteRAG {
		t.Errorf("expected rag route, got %s", res.Route)
	}
	// Duplicate sources collapse, order preserved.
	if len(res.Sources) != 2 || res.Sources[0] != "tuzuk.pdf" || res.Sources[1] != "etkinlikler.pdf" {
		t.Errorf("unexpected sources: %v", res.Sources)
	}
	if res.ReflectionCount != 1 {
		t.Errorf("expected reflection count 1, got %d", res.ReflectionCount)
	}
	if mem.lastMeta["route"] != "rag" {
		t.Errorf("expected route metadata on assistant entry, got %+v", mem.lastMeta)
	}
}

func TestProcessExternalSearchRoute(t *testing.T) {
	p := NewPipeline(
		&fakeRouter{route: router.RouteExternalSearch},
		&fakeRetriever{},
		&fakeGenerator{},
		&fakeReflector{},
		&fakeMemory{},
		nopLogger{},
	)

	res, err := p.Process(context.Background(), "Yapay zeka nedir?", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Route != router.RouteExternalSearch || len(res.Sources) != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestProcessRouterFailureFallsBack(t *testing.T) {
	mem := &fakeMemory{}
	p := NewPipeline(
		&fakeRouter{err: errors.New("classification failed")},
		&fakeRetriever{},
		&fakeGenerator{},
		&fakeReflector{},
		mem,
		nopLogger{},
	)

	res, err := p.Process(context.Background(), "soru", "s1")
	if err != nil {
		t.Fatalf("fallback must not surface an error, got %v", err)
	}
	if res.Answer != FallbackAnswer {
		t.Errorf("expected fallback answer, got %q", res.Answer)
	}
	if res.Route != router.RouteDirect || len(res.Sources) != 0 {
		t.Errorf("fallback must be direct with empty sources: %+v", res)
	}
	if mem.lastContent != FallbackAnswer {
		t.Errorf("fallback answer must still be recorded, got %q", mem.lastContent)
	}
}

func TestProcessRetrieverFailureFallsBack(t *testing.T) {
	p := NewPipeline(
		&fakeRouter{route: router.RouteRAG},
		&fakeRetriever{err: errors.New("index down")},
		&fakeGenerator{},
		&fakeReflector{},
		&fakeMemory{},
		nopLogger{},
	)

	res, err := p.Process(context.Background(), "soru", "s1")
	if err != nil || res.Answer != FallbackAnswer {
		t.Errorf("expected uniform fallback, got res=%+v err=%v", res, err)
	}
}

func TestProcessSkipsReflectionWithoutPassages(t *testing.T) {
	refl := &fakeReflector{}
	p := NewPipeline(
		&fakeRouter{route: router.RouteRAG},
		&fakeRetriever{},
		&fakeGenerator{ragAnswer: "Bu konuda dökümanlarımda detaylı bilgi bulamadım."},
		refl,
		&fakeMemory{},
		nopLogger{},
	)

	res, err := p.Process(context.Background(), "soru", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refl.calls != 0 {
		t.Errorf("reflection must be skipped with no passages, got %d calls", refl.calls)
	}
	if res.ReflectionCount != 0 {
		t.Errorf("expected zero reflections, got %d", res.ReflectionCount)
	}
}

func TestProcessFollowUpExpansion(t *testing.T) {
	ret := &fakeRetriever{passages: clubPassages()}
	p := NewPipeline(
		&fakeRouter{route: router.RouteRAG},
		ret,
		&fakeGenerator{ragAnswer: "4 Aralık'ta."},
		&fakeReflector{attempts: 1},
		&fakeMemory{topic: "FESTUP"},
		nopLogger{},
	)

	if _, err := p.Process(context.Background(), "ne zaman?", "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ret.gotQuery != "FESTUP ne zaman?" {
		t.Errorf("expected topic-expanded query, got %q", ret.gotQuery)
	}
}

func TestProcessNoExpansionForCueInsideWord(t *testing.T) {
	tests := []struct {
		name     string
		question string
	}{
		{"kim inside kimya", "Kimya kulübü var mı?"},
		{"kim inside kimlik", "Kimlik kartı gerekli mi?"},
		{"nerede still expands with punctuation", "nerede?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ret := &fakeRetriever{passages: clubPassages()}
			p := NewPipeline(
				&fakeRouter{route: router.RouteRAG},
				ret,
				&fakeGenerator{ragAnswer: "cevap"},
				&fakeReflector{attempts: 1},
				&fakeMemory{topic: "FESTUP"},
				nopLogger{},
			)

			if _, err := p.Process(context.Background(), tt.question, "s1"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			wantExpanded := tt.question == "nerede?"
			expanded := ret.gotQuery != tt.question
			if expanded != wantExpanded {
				t.Errorf("question %q: got query %q", tt.question, ret.gotQuery)
			}
		})
	}
}

func TestProcessNoExpansionForLongQuestions(t *testing.T) {
	ret := &fakeRetriever{passages: clubPassages()}
	p := NewPipeline(
		&fakeRouter{route: router.RouteRAG},
		ret,
		&fakeGenerator{ragAnswer: "cevap"},
		&fakeReflector{attempts: 1},
		&fakeMemory{topic: "FESTUP"},
		nopLogger{},
	)

	q := "Kulübün tüm etkinlikleri ne zaman ve nerede yapılır acaba?"
	if _, err := p.Process(context.Background(), q, "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ret.gotQuery != q {
		t.Errorf("long question must not be expanded, got %q", ret.gotQuery)
	}
}

type rejectingFilter struct{}

func (rejectingFilter) Filter(_ context.Context, _ string, passages []store.Passage) ([]store.Passage, error) {
	return passages[:1], nil
}

func TestProcessRelevanceFilterOption(t *testing.T) {
	p := NewPipeline(
		&fakeRouter{route: router.RouteRAG},
		&fakeRetriever{passages: clubPassages()},
		&fakeGenerator{ragAnswer: "cevap"},
		&fakeReflector{attempts: 1},
		&fakeMemory{},
		nopLogger{},
		WithRelevanceFilter(rejectingFilter{}),
	)

	res, err := p.Process(context.Background(), "Kulübe nasıl üye olurum?", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Sources) != 1 || res.Sources[0] != "tuzuk.pdf" {
		t.Errorf("expected filtered sources, got %v", res.Sources)
	}
}
