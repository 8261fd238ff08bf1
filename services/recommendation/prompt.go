package recommendation

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"jamb/models"
	"jamb/services/pricing"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

const suggestionFormat = `Answer with JSON only: an array of objects ` +
	`{"work_code": string, "quantity": number, "reason": string, "confidence": number between 0 and 1}. ` +
	`Use only work codes from the catalog. Quantities are in the unit shown for the service.`

func catalogListing(services []models.Service) string {
	var sb strings.Builder
	for _, s := range services {
		fmt.Fprintf(&sb, "%s | %s | unit: %s | quantity %g-%g\n",
			s.ID, s.Title, s.UnitOfMeasurement, s.MinQuantity, s.MaxQuantity)
	}
	return sb.String()
}

func analysisInstruction(subject string, services []models.Service) string {
	return "You are an estimator for a home-improvement marketplace. Look at the " + subject +
		" and list the catalog services needed to do the work.\n" + suggestionFormat +
		"\n\nCatalog (work code | title | unit | allowed quantity):\n" + catalogListing(services)
}

func chatInstruction(services []models.Service) string {
	return "You are the assistant of a home-improvement marketplace. Help the customer " +
		"describe their project and suggest catalog services. Answer with JSON only: " +
		`{"reply": string, "suggestions": [{"work_code": string, "quantity": number, "reason": string, "confidence": number}]}. ` +
		"Leave suggestions empty until you know what the customer needs.\n\n" +
		"Catalog (work code | title | unit | allowed quantity):\n" + catalogListing(services)
}

// stripFences removes a markdown code fence around a JSON answer.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

// parseSuggestions accepts either a bare array or an object wrapping it.
func parseSuggestions(raw string) ([]models.AISuggestion, error) {
	s := stripFences(raw)
	var list []models.AISuggestion
	if err := json.Unmarshal([]byte(s), &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Suggestions     []models.AISuggestion `json:"suggestions"`
		Recommendations []models.AISuggestion `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(s), &wrapped); err != nil {
		return nil, fmt.Errorf("model answer is not valid JSON: %w", err)
	}
	if len(wrapped.Suggestions) > 0 {
		return wrapped.Suggestions, nil
	}
	return wrapped.Recommendations, nil
}

// parseChatAnswer falls back to treating the whole answer as the reply.
func parseChatAnswer(raw string) models.AIChatAnswer {
	var answer models.AIChatAnswer
	if err := json.Unmarshal([]byte(stripFences(raw)), &answer); err != nil || (answer.Reply == "" && len(answer.Suggestions) == 0) {
		return models.AIChatAnswer{Reply: strings.TrimSpace(raw)}
	}
	return answer
}

// clampQuantity keeps a proposed quantity inside the service bounds, rounding up for
// services sold in whole units.
func clampQuantity(service models.Service, q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return service.MinQuantity
	}
	q = math.Max(service.MinQuantity, q)
	if service.MaxQuantity > 0 {
		q = math.Min(service.MaxQuantity, q)
	}
	if pricing.ValidateQuantity(service, q) != nil {
		q = math.Ceil(q)
		if service.MaxQuantity > 0 && q > service.MaxQuantity {
			q = math.Floor(service.MaxQuantity)
		}
	}
	return q
}

// resolveSuggestions maps model suggestions onto catalog services. Unknown or repeated
// work codes are dropped.
func resolveSuggestions(suggestions []models.AISuggestion, services []models.Service) []models.Recommendation {
	byID := make(map[string]models.Service, len(services))
	for _, s := range services {
		byID[s.ID] = s
	}

	seen := make(map[string]bool)
	out := make([]models.Recommendation, 0, len(suggestions))
	for _, sug := range suggestions {
		code := strings.TrimSpace(sug.WorkCode)
		service, ok := byID[code]
		if !ok || seen[code] {
			continue
		}
		seen[code] = true

		score := sug.Confidence
		if score <= 0 || score > 1 {
			score = 0.5
		}
		out = append(out, models.Recommendation{
			Service:  service,
			Quantity: clampQuantity(service, sug.Quantity),
			Reason:   strings.TrimSpace(sug.Reason),
			Score:    score,
		})
	}
	return out
}
