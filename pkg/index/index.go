package index

import "context"

// Document is a chunk of club content stored in the vector index.
type Document struct {
	ID        string
	Source    string // stable name of the originating document (e.g. "tuzuk.pdf")
	Page      int
	ChunkIdx  int
	Content   string
	Embedding []float32
	Metadata  map[string]interface{}
}

// Match is a scored search hit. Embedding is populated when the backend
// can return stored vectors; the retriever's diversity mode needs it and
// degrades to score order when absent.
type Match struct {
	Document   Document
	Similarity float64
}

// DocumentIndex is the contract against an external vector index. The
// corpus is populated out-of-band (see the ingest consumer); the turn
// pipeline only searches.
type DocumentIndex interface {
	Search(ctx context.Context, embedding []float32, topK int) ([]Match, error)
	Upsert(ctx context.Context, docs []Document) error
}
