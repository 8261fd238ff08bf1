package handlers

import (
	"net/http"

	"jamb/models"
	"jamb/services/recommendation"
	"jamb/services/storage"

	"github.com/gin-gonic/gin"
)

// RecommendationHandler exposes the AI assisted service suggestions.
type RecommendationHandler struct {
	Service recommendation.RecommendationService
}

func NewRecommendationHandler(svc recommendation.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{Service: svc}
}

// FromText handles POST /api/recommendations/text.
func (h *RecommendationHandler) FromText(c *gin.Context) {
	var req models.TextRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.Service.FromText(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		respondError(c, err, "Text recommendation failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

// FromPhotos handles POST /api/recommendations/photos (multipart field "photos").
func (h *RecommendationHandler) FromPhotos(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	photos, err := readFiles(c, "photos", storage.MaxPhotos, storage.MaxPhotoBytes)
	if err != nil {
		respondError(c, err, "Invalid photo upload")
		return
	}
	result, err := h.Service.FromImages(c.Request.Context(), userID, photos)
	if err != nil {
		respondError(c, err, "Photo recommendation failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

// FromPDF handles POST /api/recommendations/pdf (multipart field "document").
func (h *RecommendationHandler) FromPDF(c *gin.Context) {
	document, err := readFile(c, "document", recommendation.MaxPDFBytes)
	if err != nil {
		respondError(c, err, "Invalid document upload")
		return
	}
	result, err := h.Service.FromPDF(c.Request.Context(), document)
	if err != nil {
		respondError(c, err, "Document recommendation failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

// FromVoice handles POST /api/recommendations/voice (multipart field "audio", optional
// form value "language").
func (h *RecommendationHandler) FromVoice(c *gin.Context) {
	audio, err := readFile(c, "audio", recommendation.MaxVoiceBytes)
	if err != nil {
		respondError(c, err, "Invalid audio upload")
		return
	}
	result, err := h.Service.FromVoice(c.Request.Context(), audio, c.PostForm("language"))
	if err != nil {
		respondError(c, err, "Voice recommendation failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Chat handles POST /api/recommendations/chat.
func (h *RecommendationHandler) Chat(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.Service.Chat(c.Request.Context(), userID, req.Message)
	if err != nil {
		respondError(c, err, "Chat failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ResetChat handles DELETE /api/recommendations/chat.
func (h *RecommendationHandler) ResetChat(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Service.ResetChat(c.Request.Context(), userID); err != nil {
		respondError(c, err, "Failed to reset chat")
		return
	}
	c.Status(http.StatusNoContent)
}
