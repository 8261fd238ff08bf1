package handlers

import (
	"errors"
	"net/http"

	"jamb/models"
	"jamb/services/catalog"
	"jamb/services/tasks"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ImportHistory reads back the importer's run summaries.
type ImportHistory interface {
	LastImport() (*models.ImportReport, error)
}

// AdminHandler serves catalog maintenance and import control.
type AdminHandler struct {
	Catalog  catalog.CatalogService
	Queue    tasks.Enqueuer
	Imports  ImportHistory
	PlanFile string
}

func NewAdminHandler(catalogSvc catalog.CatalogService, queue tasks.Enqueuer, imports ImportHistory, planFile string) *AdminHandler {
	return &AdminHandler{Catalog: catalogSvc, Queue: queue, Imports: imports, PlanFile: planFile}
}

// UpsertCategory handles PUT /api/admin/categories.
func (h *AdminHandler) UpsertCategory(c *gin.Context) {
	var category models.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Catalog.UpsertCategory(c.Request.Context(), &category); err != nil {
		respondError(c, err, "Failed to save category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// UpsertService handles PUT /api/admin/services.
func (h *AdminHandler) UpsertService(c *gin.Context) {
	var service models.Service
	if err := c.ShouldBindJSON(&service); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Catalog.UpsertService(c.Request.Context(), &service); err != nil {
		respondError(c, err, "Failed to save service")
		return
	}
	c.JSON(http.StatusOK, service)
}

// TriggerImport handles POST /api/admin/imports and queues a BigBox refresh.
func (h *AdminHandler) TriggerImport(c *gin.Context) {
	if h.Queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Background jobs are not available"})
		return
	}
	task, opts, buildErr := tasks.NewImportTask(h.PlanFile)
	if err := tasks.Enqueue(c.Request.Context(), h.Queue, task, opts, buildErr); err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			c.JSON(http.StatusConflict, gin.H{"error": "An import is already queued"})
			return
		}
		getLogger(c).Error("Failed to queue import", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue import"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Import queued", "plan": h.PlanFile})
}

// LastImport handles GET /api/admin/imports/last.
func (h *AdminHandler) LastImport(c *gin.Context) {
	report, err := h.Imports.LastImport()
	if err != nil {
		respondError(c, err, "Failed to read import history")
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No import has run yet"})
		return
	}
	c.JSON(http.StatusOK, report)
}
