package handlers

import (
	"net/http"
	"strconv"

	"jamb/models"
	"jamb/services/catalog"
	"jamb/services/materials"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves sections, categories and services.
type CatalogHandler struct {
	Service catalog.CatalogService
}

func NewCatalogHandler(svc catalog.CatalogService) *CatalogHandler {
	return &CatalogHandler{Service: svc}
}

// ListSections handles GET /api/sections.
func (h *CatalogHandler) ListSections(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sections": h.Service.ListSections()})
}

// ListCategories handles GET /api/sections/:section/categories.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.Service.ListCategories(c.Request.Context(), models.Section(c.Param("section")))
	if err != nil {
		respondError(c, err, "Failed to list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListServices handles GET /api/services?section=&category=&q=&limit=&offset=.
func (h *CatalogHandler) ListServices(c *gin.Context) {
	var filter models.ServiceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, err)
		return
	}
	services, err := h.Service.ListServices(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to list services")
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

// SearchServices handles GET /api/services/search?q=&limit=.
func (h *CatalogHandler) SearchServices(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	services, err := h.Service.SearchServices(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err, "Failed to search services")
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

// GetService handles GET /api/services/:id.
func (h *CatalogHandler) GetService(c *gin.Context) {
	service, err := h.Service.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get service")
		return
	}
	c.JSON(http.StatusOK, service)
}

// MaterialsHandler serves finishing material options.
type MaterialsHandler struct {
	Service materials.MaterialsService
}

func NewMaterialsHandler(svc materials.MaterialsService) *MaterialsHandler {
	return &MaterialsHandler{Service: svc}
}

// GetFinishingMaterials handles GET /api/works/:code/finishing-materials. The response
// carries the options by section and the default (cheapest) selection.
func (h *MaterialsHandler) GetFinishingMaterials(c *gin.Context) {
	set, err := h.Service.GetFinishingMaterials(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err, "Failed to get finishing materials")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"workCode":         set.WorkCode,
		"sections":         set.Sections,
		"defaultSelection": materials.DefaultSelection(set),
	})
}
