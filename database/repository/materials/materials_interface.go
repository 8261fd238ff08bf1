package materialsRepo

import (
	"time"

	"jamb/models"
)

// MaterialsRepository defines data access for finishing materials and import history.
type MaterialsRepository interface {
	// ListByWorkCode returns every option of a work code ordered by section and cost.
	ListByWorkCode(workCode string) ([]models.FinishingMaterial, error)
	// GetByIDs returns the options of a work code with the given external IDs.
	GetByIDs(workCode string, externalIDs []string) ([]models.FinishingMaterial, error)
	// Upsert inserts or refreshes a batch of materials and returns the affected row count.
	Upsert(materials []models.FinishingMaterial) (int, error)
	// DeleteStale removes imported options of a work code not refreshed since before.
	DeleteStale(workCode string, before time.Time) (int, error)
	// RecordImport stores the summary of an importer run.
	RecordImport(report models.ImportReport) error
	// LastImport returns the most recent importer run, or nil when none ran yet.
	LastImport() (*models.ImportReport, error)
}
