package handlers

import (
	"net/http"
	"strconv"

	"jamb/models"
	"jamb/services/estimate"

	"github.com/gin-gonic/gin"
)

// EstimateHandler prices works and carts without persisting anything.
type EstimateHandler struct {
	Service estimate.EstimateService
}

func NewEstimateHandler(svc estimate.EstimateService) *EstimateHandler {
	return &EstimateHandler{Service: svc}
}

// Calculate handles POST /api/calculate.
func (h *EstimateHandler) Calculate(c *gin.Context) {
	var req models.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	work, err := h.Service.Calculate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to calculate work")
		return
	}
	c.JSON(http.StatusOK, work)
}

// Estimate handles POST /api/estimate.
func (h *EstimateHandler) Estimate(c *gin.Context) {
	var req models.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.Service.Estimate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to compute estimate")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Calendar handles GET /api/calendar?days=N.
func (h *EstimateHandler) Calendar(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil {
		badRequest(c, err)
		return
	}
	calendar, err := h.Service.Calendar(days)
	if err != nil {
		respondError(c, err, "Failed to build calendar")
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": calendar})
}
