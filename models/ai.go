package models

import "time"

// RecommendationSource names the input a recommendation was derived from.
type RecommendationSource string

const (
	SourcePhoto RecommendationSource = "photo"
	SourcePDF   RecommendationSource = "pdf"
	SourceText  RecommendationSource = "text"
	SourceChat  RecommendationSource = "chat"
	SourceVoice RecommendationSource = "voice"
)

// Recommendation is one suggested service with a proposed quantity.
type Recommendation struct {
	Service  Service `json:"service"`
	Quantity float64 `json:"quantity"`
	Reason   string  `json:"reason,omitempty"`
	Score    float64 `json:"score"`
}

// RecommendationResult is what the recommendation endpoints return.
type RecommendationResult struct {
	Source          RecommendationSource `json:"source"`
	Query           string               `json:"query,omitempty"`
	Reply           string               `json:"reply,omitempty"`
	Photos          []string             `json:"photos,omitempty"`
	Recommendations []Recommendation     `json:"recommendations"`
}

// TextRecommendationRequest is the body of the text recommendation endpoint.
type TextRecommendationRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

// ChatRequest is one user message of the assistant chat.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatTurn is one message of a stored conversation.
type ChatTurn struct {
	Role string    `json:"role"` // "user" or "model"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// AIContext is the per-user conversation state kept between chat requests.
type AIContext struct {
	Turns          []ChatTurn `json:"turns"`
	SuggestedCodes []string   `json:"suggestedCodes"`
}

// AISuggestion is the structured answer the model is asked to produce.
type AISuggestion struct {
	WorkCode   string  `json:"work_code"`
	Quantity   float64 `json:"quantity"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// AIChatAnswer is the structured answer of one chat turn.
type AIChatAnswer struct {
	Reply       string         `json:"reply"`
	Suggestions []AISuggestion `json:"suggestions"`
}
