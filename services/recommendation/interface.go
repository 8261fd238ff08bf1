package recommendation

import (
	"context"
	"time"

	"jamb/database/repository"
	"jamb/models"
	"jamb/services/catalog"
	"jamb/services/storage"
)

// RecommendationService turns photos, documents, free text and voice notes into
// suggested catalog services with quantities.
type RecommendationService interface {
	FromText(ctx context.Context, query string, limit int) (*models.RecommendationResult, error)
	FromImages(ctx context.Context, userID string, photos []storage.Photo) (*models.RecommendationResult, error)
	FromPDF(ctx context.Context, document []byte) (*models.RecommendationResult, error)
	FromVoice(ctx context.Context, audio []byte, language string) (*models.RecommendationResult, error)
	Chat(ctx context.Context, userID, message string) (*models.RecommendationResult, error)
	ResetChat(ctx context.Context, userID string) error
}

// Part is one piece of model input: text or an inline blob.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

// Model is the generative backend.
type Model interface {
	Generate(ctx context.Context, instruction string, parts ...Part) (string, error)
	Chat(ctx context.Context, instruction string, history []models.ChatTurn, message string) (string, error)
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Transcriber converts a LINEAR16 WAV recording to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}

// ContextStore keeps chat conversations between requests.
type ContextStore interface {
	Get(ctx context.Context, userID string) (*models.AIContext, error)
	Set(ctx context.Context, userID string, aiCtx *models.AIContext) error
	Clear(ctx context.Context, userID string) error
}

// DefaultRecommendationService implements RecommendationService. Model, Photos,
// Transcriber and QueryCache are optional; without a Model text requests fall back to
// keyword search and the other sources are unavailable.
type DefaultRecommendationService struct {
	Catalog     catalog.CatalogService
	Services    repository.CatalogRepository
	Model       Model
	Photos      *storage.PhotoUploader
	Contexts    ContextStore
	Transcriber Transcriber
	QueryCache  catalog.Cache
	QueryTTL    time.Duration
}
