package recommendation

import (
	"math"
	"sort"
	"strings"

	"jamb/models"
)

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// embeddingText is what a service is embedded as.
func embeddingText(s models.Service) string {
	parts := []string{s.Title, s.Description}
	if len(s.Tags) > 0 {
		parts = append(parts, strings.Join(s.Tags, ", "))
	}
	return strings.Join(parts, ". ")
}

type scored struct {
	service models.Service
	score   float64
}

// rankBySimilarity returns the limit services closest to query, best first.
func rankBySimilarity(query []float32, services []models.Service, limit int) []scored {
	ranked := make([]scored, 0, len(services))
	for _, s := range services {
		if len(s.Embedding) == 0 {
			continue
		}
		ranked = append(ranked, scored{service: s, score: cosine(query, s.Embedding)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// keywordScore is the share of query words found in the service text.
func keywordScore(words []string, s models.Service) float64 {
	if len(words) == 0 {
		return 0
	}
	text := strings.ToLower(embeddingText(s))
	hits := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

func queryWords(query string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len(w) >= 3 {
			words = append(words, w)
		}
	}
	return words
}
