package retrieve

import (
	"context"
	"fmt"

	"club-assistant-be/internal/pkg/logger"
	"club-assistant-be/pkg/embedding"
	"club-assistant-be/pkg/index"
	"club-assistant-be/pkg/store"
)

const defaultTopK = 4

// overfetchFactor is how many extra candidates diversity mode pulls
// from the index before MMR narrows them down to topK.
const overfetchFactor = 3

// Option configures a Retriever.
type Option func(*Retriever)

// WithTopK overrides the default number of passages returned.
func WithTopK(k int) Option {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithDiversity enables MMR re-ranking. lambda weighs relevance against
// novelty: 1.0 is pure relevance, 0.0 is pure diversity.
func WithDiversity(lambda float64) Option {
	return func(r *Retriever) {
		r.diversity = true
		r.lambda = lambda
	}
}

// Retriever embeds the question and searches the document index.
type Retriever struct {
	embedder  embedding.EmbeddingProvider
	idx       index.DocumentIndex
	logger    logger.ILogger
	topK      int
	diversity bool
	lambda    float64
}

func NewRetriever(embedder embedding.EmbeddingProvider, idx index.DocumentIndex, log logger.ILogger, options ...Option) *Retriever {
	r := &Retriever{
		embedder: embedder,
		idx:      idx,
		logger:   log,
		topK:     defaultTopK,
		lambda:   0.7,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Retrieve returns the passages most relevant to the question, ordered
// by score (or by MMR selection order in diversity mode). An empty
// result is not an error.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]store.Passage, error) {
	res, err := r.embedder.Generate(ctx, question, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	fetchK := r.topK
	if r.diversity {
		fetchK = r.topK * overfetchFactor
	}

	matches, err := r.idx.Search(ctx, res.Embedding.Values, fetchK)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	if r.diversity && len(matches) > r.topK {
		matches = maximalMarginalRelevance(matches, r.topK, r.lambda)
	}

	passages := make([]store.Passage, 0, len(matches))
	for _, m := range matches {
		passages = append(passages, store.Passage{
			Text:     m.Document.Content,
			Source:   m.Document.Source,
			Page:     m.Document.Page,
			Score:    float32(m.Similarity),
			Metadata: m.Document.Metadata,
		})
	}

	r.logger.Info("Retriever", "Documents retrieved", map[string]interface{}{
		"question_len": len(question),
		"count":        len(passages),
		"diversity":    r.diversity,
	})

	return passages, nil
}
