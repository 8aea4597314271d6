package pipeline

import (
	"context"
	"strings"
	"unicode"

	"club-assistant-be/internal/pkg/logger"
	"club-assistant-be/pkg/ai/router"
	"club-assistant-be/pkg/store"
)

// FallbackAnswer is returned when any backend step of a turn fails.
// The caller gets a normal Result, never the underlying error.
const FallbackAnswer = "Üzgünüm, şu anda isteğinizi işleyemedim. Lütfen tekrar deneyin."

// followUpCues marks bare follow-up questions that need the session
// topic prepended before retrieval ("ne zaman?" alone retrieves
// nothing useful).
var followUpCues = []string{
	"kim", "kimler", "ne zaman", "nerede",
	"when", "who", "where",
	"detay", "more detail", "daha fazla",
}

// Result is the outcome of one conversational turn.
type Result struct {
	Answer          string
	Route           router.Route
	Sources         []string
	ReflectionCount int
}

// Router decides the datasource for a question.
type Router interface {
	Decide(ctx context.Context, question, sessionID string) (router.Route, error)
}

// Retriever returns ranked passages for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]store.Passage, error)
}

// Generator produces answers per route.
type Generator interface {
	GenerateRAG(ctx context.Context, question string, passages []store.Passage) (string, error)
	GenerateDirect(ctx context.Context, question string) (string, error)
	GenerateExternal(ctx context.Context, question string) (string, error)
}

// Reflector runs the bounded grounding loop over a RAG generation.
type Reflector interface {
	Reflect(ctx context.Context, question, generation string, passages []store.Passage) (string, int, error)
}

// PassageFilter drops passages unrelated to the question.
type PassageFilter interface {
	Filter(ctx context.Context, question string, passages []store.Passage) ([]store.Passage, error)
}

// Memory is the slice of conversation memory the orchestrator uses.
type Memory interface {
	Append(sessionID, role, content string, metadata map[string]interface{})
	Topic(sessionID string) string
}

// Pipeline wires router, retriever, generators and the reflection
// controller into the per-turn state machine.
type Pipeline struct {
	router    Router
	retriever Retriever
	generator Generator
	reflector Reflector
	filter    PassageFilter
	memory    Memory
	logger    logger.ILogger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRelevanceFilter enables passage filtering between retrieval and
// generation.
func WithRelevanceFilter(f PassageFilter) Option {
	return func(p *Pipeline) {
		p.filter = f
	}
}

func NewPipeline(r Router, ret Retriever, gen Generator, refl Reflector, mem Memory, log logger.ILogger, options ...Option) *Pipeline {
	p := &Pipeline{
		router:    r,
		retriever: ret,
		generator: gen,
		reflector: refl,
		memory:    mem,
		logger:    log,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Process runs one turn. Any backend failure is converted into the
// uniform fallback Result with a nil error; the caller cannot
// distinguish which step failed.
func (p *Pipeline) Process(ctx context.Context, question, sessionID string) (*Result, error) {
	result, err := p.process(ctx, question, sessionID)
	if err != nil {
		p.logger.Error("Pipeline", "Turn failed, returning fallback", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		result = &Result{
			Answer: FallbackAnswer,
			Route:  router.RouteDirect,
		}
	}

	p.memory.Append(sessionID, "assistant", result.Answer, map[string]interface{}{
		"route":   string(result.Route),
		"sources": result.Sources,
	})

	return result, nil
}

func (p *Pipeline) process(ctx context.Context, question, sessionID string) (*Result, error) {
	route, err := p.router.Decide(ctx, question, sessionID)
	if err != nil {
		return nil, err
	}

	switch route {
	case router.RouteRAG:
		return p.processRAG(ctx, question, sessionID)
	case router.RouteExternalSearch:
		answer, err := p.generator.GenerateExternal(ctx, question)
		if err != nil {
			return nil, err
		}
		return &Result{Answer: answer, Route: route}, nil
	default:
		answer, err := p.generator.GenerateDirect(ctx, question)
		if err != nil {
			return nil, err
		}
		return &Result{Answer: answer, Route: route}, nil
	}
}

func (p *Pipeline) processRAG(ctx context.Context, question, sessionID string) (*Result, error) {
	query := p.expandFollowUp(question, sessionID)

	passages, err := p.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	if p.filter != nil && len(passages) > 0 {
		passages, err = p.filter.Filter(ctx, question, passages)
		if err != nil {
			return nil, err
		}
	}

	generation, err := p.generator.GenerateRAG(ctx, question, passages)
	if err != nil {
		return nil, err
	}

	// Nothing retrieved means nothing to ground against; the generator
	// already answered that no information was found.
	reflections := 0
	if len(passages) > 0 {
		generation, reflections, err = p.reflector.Reflect(ctx, question, generation, passages)
		if err != nil {
			return nil, err
		}
	}

	return &Result{
		Answer:          generation,
		Route:           router.RouteRAG,
		Sources:         store.Sources(passages),
		ReflectionCount: reflections,
	}, nil
}

// expandFollowUp prepends the session topic when the question is a
// bare follow-up cue ("ne zaman?", "who?") so retrieval has something
// to match against.
func (p *Pipeline) expandFollowUp(question, sessionID string) string {
	if len(strings.Fields(question)) > 5 {
		return question
	}

	if hasFollowUpCue(question) {
		if topic := p.memory.Topic(sessionID); topic != "" {
			expanded := topic + " " + question
			p.logger.Info("Pipeline", "Follow-up expanded", map[string]interface{}{
				"session_id": sessionID,
				"topic":      topic,
				"query":      expanded,
			})
			return expanded
		}
	}
	return question
}

// hasFollowUpCue matches cues on word boundaries so "kim" does not
// fire inside "kimya" or "kimlik". Punctuation is stripped first to
// keep "zaman?" matching "zaman".
func hasFollowUpCue(question string) bool {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return ' '
	}, strings.ToLower(question))
	padded := " " + strings.Join(strings.Fields(cleaned), " ") + " "

	for _, cue := range followUpCues {
		if strings.Contains(padded, " "+cue+" ") {
			return true
		}
	}
	return false
}
