package retrieve

import (
	"math"

	"club-assistant-be/pkg/index"
)

// maximalMarginalRelevance selects k matches balancing query relevance
// against similarity to already selected matches. Result order is
// selection order, so the most relevant match always comes first.
func maximalMarginalRelevance(matches []index.Match, k int, lambda float64) []index.Match {
	if k >= len(matches) {
		return matches
	}

	selected := make([]index.Match, 0, k)
	remaining := make([]index.Match, len(matches))
	copy(remaining, matches)

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := -1
		bestScore := math.Inf(-1)

		for i, cand := range remaining {
			maxSim := 0.0
			for _, sel := range selected {
				if sim := cosineSimilarity(cand.Document.Embedding, sel.Document.Embedding); sim > maxSim {
					maxSim = sim
				}
			}
			score := lambda*cand.Similarity - (1-lambda)*maxSim
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
