package recommendation

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"jamb/metrics"
	"jamb/models"
	"jamb/services/catalog"
	"jamb/services/storage"
	"jamb/utils"

	"go.uber.org/zap"
)

const (
	defaultLimit   = 5
	maxLimit       = 20
	maxChatTurns   = 20
	maxQueryLength = 2000
	// MaxPDFBytes bounds documents sent inline to the model.
	MaxPDFBytes    = 20 << 20
	embedBatchSize = 100
	queryCacheTTL  = 24 * time.Hour
	candidateLimit = 200
)

var errModelUnavailable = utils.NewUpstreamError("AI recommendations are not configured", nil)

func record(source models.RecommendationSource, err *error) {
	metrics.RecordRecommendation(string(source), *err == nil)
}

func (s *DefaultRecommendationService) candidates(ctx context.Context) ([]models.Service, error) {
	services, err := s.Catalog.ListServices(ctx, models.ServiceFilter{Limit: candidateLimit})
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		return nil, utils.NewNotFoundError("the service catalog is empty")
	}
	return services, nil
}

func (s *DefaultRecommendationService) FromText(ctx context.Context, query string, limit int) (result *models.RecommendationResult, err error) {
	defer record(models.SourceText, &err)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, utils.NewValidationError("query is required")
	}
	if len(query) > maxQueryLength {
		return nil, utils.NewValidationError("query must be at most %d characters", maxQueryLength)
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	result = &models.RecommendationResult{Source: models.SourceText, Query: query}
	if s.Model != nil {
		recs, err := s.semanticSearch(ctx, query, limit)
		if err == nil {
			result.Recommendations = recs
			return result, nil
		}
		utils.GetLogger().Warn("Semantic search failed, falling back to keywords", zap.Error(err))
	}

	recs, err := s.keywordSearch(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	result.Recommendations = recs
	return result, nil
}

func (s *DefaultRecommendationService) semanticSearch(ctx context.Context, query string, limit int) ([]models.Recommendation, error) {
	queryVec, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	services, err := s.Services.ListAllServices()
	if err != nil {
		return nil, err
	}
	if err := s.fillEmbeddings(ctx, services); err != nil {
		return nil, err
	}

	ranked := rankBySimilarity(queryVec, services, limit)
	if len(ranked) == 0 {
		return nil, errors.New("no service embeddings available")
	}
	recs := make([]models.Recommendation, 0, len(ranked))
	for _, r := range ranked {
		svc := r.service
		svc.Embedding = nil
		recs = append(recs, models.Recommendation{
			Service:  svc,
			Quantity: svc.MinQuantity,
			Score:    utils.RoundTo(r.score, 4),
		})
	}
	return recs, nil
}

// fillEmbeddings computes and stores embeddings for services that have none yet.
func (s *DefaultRecommendationService) fillEmbeddings(ctx context.Context, services []models.Service) error {
	var missing []int
	for i := range services {
		if len(services[i].Embedding) == 0 {
			missing = append(missing, i)
		}
	}

	for start := 0; start < len(missing); start += embedBatchSize {
		batch := missing[start:min(start+embedBatchSize, len(missing))]
		texts := make([]string, len(batch))
		for j, idx := range batch {
			texts[j] = embeddingText(services[idx])
		}
		vectors, err := s.Model.Embed(ctx, texts)
		if err != nil {
			return err
		}
		for j, idx := range batch {
			services[idx].Embedding = vectors[j]
			if err := s.Services.SetEmbedding(services[idx].ID, vectors[j]); err != nil {
				utils.GetLogger().Warn("Failed to store service embedding",
					zap.String("service", services[idx].ID), zap.Error(err))
			}
		}
	}
	return nil
}

func (s *DefaultRecommendationService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	sum := sha256.Sum256([]byte(strings.ToLower(query)))
	key := "embed:" + hex.EncodeToString(sum[:])

	if s.QueryCache != nil {
		if data, err := s.QueryCache.Get(ctx, key); err == nil {
			var vec []float32
			if json.Unmarshal(data, &vec) == nil && len(vec) > 0 {
				return vec, nil
			}
		} else if !errors.Is(err, catalog.ErrCacheMiss) {
			utils.GetLogger().Warn("Embedding cache read failed", zap.Error(err))
		}
	}

	vectors, err := s.Model.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	vec := vectors[0]

	if s.QueryCache != nil {
		ttl := s.QueryTTL
		if ttl <= 0 {
			ttl = queryCacheTTL
		}
		if data, err := json.Marshal(vec); err == nil {
			if err := s.QueryCache.Set(ctx, key, data, ttl); err != nil {
				utils.GetLogger().Warn("Embedding cache write failed", zap.Error(err))
			}
		}
	}
	return vec, nil
}

// keywordSearch tries the whole query first, then each word, scoring by word overlap.
func (s *DefaultRecommendationService) keywordSearch(ctx context.Context, query string, limit int) ([]models.Recommendation, error) {
	words := queryWords(query)
	found := map[string]models.Service{}

	services, err := s.Catalog.SearchServices(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	for _, svc := range services {
		found[svc.ID] = svc
	}
	if len(found) < limit {
		for _, w := range words {
			more, err := s.Catalog.SearchServices(ctx, w, limit)
			if err != nil {
				return nil, err
			}
			for _, svc := range more {
				found[svc.ID] = svc
			}
		}
	}

	recs := make([]models.Recommendation, 0, len(found))
	for _, svc := range found {
		score := keywordScore(words, svc)
		if len(words) == 0 {
			score = 1
		}
		recs = append(recs, models.Recommendation{
			Service:  svc,
			Quantity: svc.MinQuantity,
			Score:    utils.RoundTo(score, 4),
		})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Service.ID < recs[j].Service.ID
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (s *DefaultRecommendationService) FromImages(ctx context.Context, userID string, photos []storage.Photo) (result *models.RecommendationResult, err error) {
	defer record(models.SourcePhoto, &err)

	if err := storage.ValidatePhotos(photos); err != nil {
		return nil, err
	}
	if s.Model == nil {
		return nil, errModelUnavailable
	}

	result = &models.RecommendationResult{Source: models.SourcePhoto}
	if s.Photos != nil {
		uploaded, err := s.Photos.UploadPhotos(ctx, userID, photos)
		if err != nil {
			return nil, err
		}
		for _, f := range uploaded {
			result.Photos = append(result.Photos, f.URL)
		}
	}

	parts := make([]Part, 0, len(photos)+1)
	parts = append(parts, Part{Text: "Photos of the customer's project follow."})
	for _, p := range photos {
		compressed, err := storage.CompressImage(p.Data, storage.MaxImageSide, storage.JPEGQuality)
		if err != nil {
			return nil, utils.NewValidationError("photo %q could not be read", p.Name)
		}
		parts = append(parts, Part{MIMEType: "image/jpeg", Data: compressed})
	}

	recs, err := s.analyze(ctx, "photos", parts)
	if err != nil {
		return nil, err
	}
	result.Recommendations = recs
	return result, nil
}

func (s *DefaultRecommendationService) FromPDF(ctx context.Context, document []byte) (result *models.RecommendationResult, err error) {
	defer record(models.SourcePDF, &err)

	if len(document) == 0 {
		return nil, utils.NewValidationError("document is required")
	}
	if len(document) > MaxPDFBytes {
		return nil, utils.NewValidationError("document exceeds %d MB", MaxPDFBytes>>20)
	}
	if !bytes.HasPrefix(document, []byte("%PDF-")) {
		return nil, utils.NewValidationError("document must be a PDF")
	}
	if s.Model == nil {
		return nil, errModelUnavailable
	}

	recs, err := s.analyze(ctx, "attached document (a project description, floor plan or inspection report)", []Part{
		{Text: "The customer's document follows."},
		{MIMEType: "application/pdf", Data: document},
	})
	if err != nil {
		return nil, err
	}
	return &models.RecommendationResult{Source: models.SourcePDF, Recommendations: recs}, nil
}

func (s *DefaultRecommendationService) analyze(ctx context.Context, subject string, parts []Part) ([]models.Recommendation, error) {
	services, err := s.candidates(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := s.Model.Generate(ctx, analysisInstruction(subject, services), parts...)
	if err != nil {
		return nil, utils.NewUpstreamError("the AI model could not analyze the input", err)
	}
	suggestions, err := parseSuggestions(raw)
	if err != nil {
		return nil, utils.NewUpstreamError("the AI model returned an unreadable answer", err)
	}
	return resolveSuggestions(suggestions, services), nil
}

func (s *DefaultRecommendationService) FromVoice(ctx context.Context, audio []byte, language string) (result *models.RecommendationResult, err error) {
	defer record(models.SourceVoice, &err)

	if len(audio) == 0 {
		return nil, utils.NewValidationError("audio is required")
	}
	if len(audio) > MaxVoiceBytes {
		return nil, utils.NewValidationError("audio exceeds %d MB", MaxVoiceBytes>>20)
	}
	info, err := ParseWAV(audio)
	if err != nil {
		return nil, err
	}
	if info.Seconds() > MaxVoiceSeconds {
		return nil, utils.NewValidationError("audio must be at most %d seconds long", MaxVoiceSeconds)
	}
	if s.Transcriber == nil {
		return nil, utils.NewUpstreamError("speech recognition is not configured", nil)
	}

	transcript, err := s.Transcriber.Transcribe(ctx, audio, language)
	if err != nil {
		return nil, utils.NewUpstreamError("speech recognition failed", err)
	}
	if transcript == "" {
		return nil, utils.NewValidationError("no speech was recognized in the recording")
	}

	result, err = s.FromText(ctx, transcript, defaultLimit)
	if err != nil {
		return nil, err
	}
	result.Source = models.SourceVoice
	return result, nil
}

func (s *DefaultRecommendationService) Chat(ctx context.Context, userID, message string) (result *models.RecommendationResult, err error) {
	defer record(models.SourceChat, &err)

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, utils.NewValidationError("message is required")
	}
	if len(message) > maxQueryLength {
		return nil, utils.NewValidationError("message must be at most %d characters", maxQueryLength)
	}
	if s.Model == nil {
		return nil, errModelUnavailable
	}

	aiCtx, err := s.Contexts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	services, err := s.candidates(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := s.Model.Chat(ctx, chatInstruction(services), aiCtx.Turns, message)
	if err != nil {
		return nil, utils.NewUpstreamError("the AI assistant is unavailable", err)
	}
	answer := parseChatAnswer(raw)
	recs := resolveSuggestions(answer.Suggestions, services)

	now := time.Now()
	aiCtx.Turns = append(aiCtx.Turns,
		models.ChatTurn{Role: RoleUser, Text: message, At: now},
		models.ChatTurn{Role: RoleModel, Text: answer.Reply, At: now},
	)
	if len(aiCtx.Turns) > maxChatTurns {
		aiCtx.Turns = aiCtx.Turns[len(aiCtx.Turns)-maxChatTurns:]
	}
	for _, r := range recs {
		aiCtx.SuggestedCodes = appendUnique(aiCtx.SuggestedCodes, r.Service.ID)
	}
	if err := s.Contexts.Set(ctx, userID, aiCtx); err != nil {
		utils.GetLogger().Warn("Failed to save chat context", zap.String("userID", userID), zap.Error(err))
	}

	return &models.RecommendationResult{
		Source:          models.SourceChat,
		Query:           message,
		Reply:           answer.Reply,
		Recommendations: recs,
	}, nil
}

func (s *DefaultRecommendationService) ResetChat(ctx context.Context, userID string) error {
	return s.Contexts.Clear(ctx, userID)
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
