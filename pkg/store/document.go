package store

// Passage is a retrieved chunk of source content used to ground an answer.
// Passages are produced by the retriever and never mutated afterwards.
type Passage struct {
	Text     string                 `json:"text"`
	Source   string                 `json:"source"` // stable name of the originating document
	Page     int                    `json:"page,omitempty"`
	Score    float32                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Sources returns the deduplicated source identifiers of the given
// passages, preserving first-seen order.
func Sources(passages []Passage) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range passages {
		if p.Source == "" || seen[p.Source] {
			continue
		}
		seen[p.Source] = true
		out = append(out, p.Source)
	}
	return out
}
