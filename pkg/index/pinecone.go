package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// PineconeConfig configures the Pinecone-backed DocumentIndex.
//
// Either BaseURL (the data-plane host of the index) or IndexName must be
// set; with only IndexName the host is resolved once via the controller
// API.
type PineconeConfig struct {
	APIKey            string
	IndexName         string
	BaseURL           string
	Namespace         string
	ControllerBaseURL string // Default: https://api.pinecone.io
	Timeout           time.Duration
}

// PineconeIndex implements DocumentIndex over Pinecone's REST API.
type PineconeIndex struct {
	cfg    PineconeConfig
	logger *log.Logger
	client *http.Client

	mu      sync.RWMutex
	baseURL string
}

var _ DocumentIndex = &PineconeIndex{}

func NewPineconeIndex(cfg PineconeConfig, logger *log.Logger) *PineconeIndex {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ControllerBaseURL == "" {
		cfg.ControllerBaseURL = "https://api.pinecone.io"
	}
	return &PineconeIndex{
		cfg:     cfg,
		logger:  logger,
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
	}
}

// ensureBaseURL resolves the data-plane host via the controller API when
// only the index name is configured.
func (p *PineconeIndex) ensureBaseURL(ctx context.Context) error {
	p.mu.RLock()
	if p.baseURL != "" {
		p.mu.RUnlock()
		return nil
	}
	p.mu.RUnlock()

	if strings.TrimSpace(p.cfg.IndexName) == "" {
		return fmt.Errorf("pinecone base url is required when index name is empty")
	}
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return fmt.Errorf("pinecone api key is required")
	}

	controller := strings.TrimRight(p.cfg.ControllerBaseURL, "/")
	endpoint := fmt.Sprintf("%s/indexes/%s", controller, url.PathEscape(p.cfg.IndexName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Api-Key", p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pinecone describe index failed: status=%d body=%s", resp.StatusCode, string(raw))
	}

	var describe struct {
		Host string `json:"host"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&describe); err != nil {
		return err
	}
	host := strings.TrimSpace(describe.Host)
	if host == "" {
		return fmt.Errorf("pinecone controller returned empty host for index %q", p.cfg.IndexName)
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}

	p.mu.Lock()
	p.baseURL = strings.TrimRight(host, "/")
	p.mu.Unlock()

	p.logger.Printf("[PINECONE] Resolved data-plane host for index %s", p.cfg.IndexName)
	return nil
}

func (p *PineconeIndex) doJSON(ctx context.Context, method, path string, in any, out any) error {
	if err := p.ensureBaseURL(ctx); err != nil {
		return err
	}

	p.mu.RLock()
	endpoint := p.baseURL + path
	p.mu.RUnlock()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pinecone request failed: method=%s path=%s status=%d body=%s", method, path, resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type pineconeVector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (p *PineconeIndex) Upsert(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	vectors := make([]pineconeVector, 0, len(docs))
	for i, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document[%d] has empty id", i)
		}
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("document[%d] has no embedding", i)
		}

		meta := map[string]any{
			"source":      doc.Source,
			"content":     doc.Content,
			"chunk_index": doc.ChunkIdx,
		}
		if doc.Page > 0 {
			meta["page"] = doc.Page
		}
		for k, v := range doc.Metadata {
			meta[k] = v
		}

		vectors = append(vectors, pineconeVector{
			ID:       doc.ID,
			Values:   doc.Embedding,
			Metadata: meta,
		})
	}

	req := struct {
		Vectors   []pineconeVector `json:"vectors"`
		Namespace string           `json:"namespace,omitempty"`
	}{
		Vectors:   vectors,
		Namespace: strings.TrimSpace(p.cfg.Namespace),
	}

	var resp any
	return p.doJSON(ctx, http.MethodPost, "/vectors/upsert", req, &resp)
}

func (p *PineconeIndex) Search(ctx context.Context, embedding []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		return []Match{}, nil
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("query embedding is required")
	}

	req := struct {
		Vector          []float32 `json:"vector"`
		TopK            int       `json:"topK"`
		Namespace       string    `json:"namespace,omitempty"`
		IncludeMetadata bool      `json:"includeMetadata"`
		IncludeValues   bool      `json:"includeValues"`
	}{
		Vector:          embedding,
		TopK:            topK,
		Namespace:       strings.TrimSpace(p.cfg.Namespace),
		IncludeMetadata: true,
		IncludeValues:   true,
	}

	var resp struct {
		Matches []struct {
			ID       string         `json:"id"`
			Score    float64        `json:"score"`
			Values   []float32      `json:"values,omitempty"`
			Metadata map[string]any `json:"metadata,omitempty"`
		} `json:"matches"`
	}

	if err := p.doJSON(ctx, http.MethodPost, "/query", req, &resp); err != nil {
		return nil, err
	}

	out := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		doc := Document{
			ID:        m.ID,
			Embedding: m.Values,
			Metadata:  m.Metadata,
		}
		if m.Metadata != nil {
			if v, ok := m.Metadata["content"].(string); ok {
				doc.Content = v
			}
			if v, ok := m.Metadata["source"].(string); ok {
				doc.Source = v
			}
			if v, ok := m.Metadata["page"].(float64); ok {
				doc.Page = int(v)
			}
		}
		out = append(out, Match{Document: doc, Similarity: m.Score})
	}

	return out, nil
}
