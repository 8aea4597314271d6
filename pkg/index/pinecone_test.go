package index

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func testLogger() *log.Logger {
	return log.New(os.Stdout, "[PINECONE] ", log.LstdFlags)
}

func TestPineconeUpsert(t *testing.T) {
	var got struct {
		Vectors []struct {
			ID       string         `json:"id"`
			Values   []float32      `json:"values"`
			Metadata map[string]any `json:"metadata"`
		} `json:"vectors"`
		Namespace string `json:"namespace"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vectors/upsert" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Api-Key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Write([]byte(`{"upsertedCount":1}`))
	}))
	defer srv.Close()

	idx := NewPineconeIndex(PineconeConfig{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		Namespace: "club",
	}, testLogger())

	err := idx.Upsert(context.Background(), []Document{{
		ID:        "tuzuk.pdf-0",
		Source:    "tuzuk.pdf",
		ChunkIdx:  0,
		Content:   "Üyelik formu doldurulur",
		Embedding: []float32{0.1, 0.2},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Vectors) != 1 {
		t.Fatalf("expected 1 vector, got %d", len(got.Vectors))
	}
	v := got.Vectors[0]
	if v.ID != "tuzuk.pdf-0" {
		t.Errorf("unexpected id %q", v.ID)
	}
	if v.Metadata["source"] != "tuzuk.pdf" || v.Metadata["content"] != "Üyelik formu doldurulur" {
		t.Errorf("unexpected metadata: %v", v.Metadata)
	}
	if got.Namespace != "club" {
		t.Errorf("unexpected namespace %q", got.Namespace)
	}
}

func TestPineconeUpsertValidation(t *testing.T) {
	idx := NewPineconeIndex(PineconeConfig{APIKey: "k", BaseURL: "http://unused"}, testLogger())

	if err := idx.Upsert(context.Background(), []Document{{Embedding: []float32{1}}}); err == nil {
		t.Error("expected error for empty id")
	}
	if err := idx.Upsert(context.Background(), []Document{{ID: "d1"}}); err == nil {
		t.Error("expected error for missing embedding")
	}
	if err := idx.Upsert(context.Background(), nil); err != nil {
		t.Errorf("empty batch must be a no-op, got %v", err)
	}
}

func TestPineconeSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"matches":[
			{"id":"tuzuk.pdf-0","score":0.91,"values":[0.1,0.2],"metadata":{"source":"tuzuk.pdf","content":"Üyelik formu doldurulur","chunk_index":0}},
			{"id":"etkinlikler.pdf-2","score":0.77,"metadata":{"source":"etkinlikler.pdf","content":"FESTUP aralıkta","page":3}}
		]}`))
	}))
	defer srv.Close()

	idx := NewPineconeIndex(PineconeConfig{APIKey: "k", BaseURL: srv.URL}, testLogger())

	matches, err := idx.Search(context.Background(), []float32{0.1, 0.2}, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Document.Source != "tuzuk.pdf" || matches[0].Similarity != 0.91 {
		t.Errorf("unexpected first match: %+v", matches[0])
	}
	if matches[1].Document.Page != 3 {
		t.Errorf("page metadata not mapped: %+v", matches[1].Document)
	}
}

func TestPineconeSearchEdgeCases(t *testing.T) {
	idx := NewPineconeIndex(PineconeConfig{APIKey: "k", BaseURL: "http://unused"}, testLogger())

	matches, err := idx.Search(context.Background(), []float32{1}, 0)
	if err != nil || len(matches) != 0 {
		t.Errorf("topK=0 must return empty, got %v %v", matches, err)
	}
	if _, err := idx.Search(context.Background(), nil, 4); err == nil {
		t.Error("expected error for empty embedding")
	}
}

func TestPineconeResolvesHostFromController(t *testing.T) {
	var data *httptest.Server
	data = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"matches":[]}`))
	}))
	defer data.Close()

	controller := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/indexes/club-docs" {
			t.Errorf("unexpected controller path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"host": data.URL})
	}))
	defer controller.Close()

	idx := NewPineconeIndex(PineconeConfig{
		APIKey:            "k",
		IndexName:         "club-docs",
		ControllerBaseURL: controller.URL,
	}, testLogger())

	if _, err := idx.Search(context.Background(), []float32{1}, 2); err != nil {
		t.Fatalf("search via resolved host failed: %v", err)
	}
}

func TestPineconeMissingConfig(t *testing.T) {
	idx := NewPineconeIndex(PineconeConfig{APIKey: "k"}, testLogger())
	if _, err := idx.Search(context.Background(), []float32{1}, 2); err == nil {
		t.Error("expected error when neither base url nor index name is set")
	}
}
