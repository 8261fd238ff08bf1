package importer

import (
	"fmt"
	"os"
	"strings"

	"jamb/models"

	"gopkg.in/yaml.v3"
)

const defaultEntryLimit = 20

// LoadPlan reads and validates an import plan file.
func LoadPlan(path string) (*models.ImportPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import plan: %w", err)
	}
	return ParsePlan(data)
}

func ParsePlan(data []byte) (*models.ImportPlan, error) {
	var plan models.ImportPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse import plan: %w", err)
	}
	if err := ValidatePlan(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ValidatePlan checks every entry and fills defaults in place.
func ValidatePlan(plan *models.ImportPlan) error {
	if len(plan.Entries) == 0 {
		return fmt.Errorf("import plan has no entries")
	}
	for i := range plan.Entries {
		e := &plan.Entries[i]
		e.WorkCode = strings.TrimSpace(e.WorkCode)
		e.Section = strings.TrimSpace(e.Section)
		e.SearchTerm = strings.TrimSpace(e.SearchTerm)
		switch {
		case e.WorkCode == "" || e.Section == "":
			return fmt.Errorf("entry %d: work_code and section are required", i+1)
		case e.SearchTerm == "" && len(e.ItemIDs) == 0:
			return fmt.Errorf("entry %d (%s): either search_term or item_ids is required", i+1, e.WorkCode)
		case e.SearchTerm != "" && len(e.ItemIDs) > 0:
			return fmt.Errorf("entry %d (%s): search_term and item_ids are mutually exclusive", i+1, e.WorkCode)
		case e.CostFactor < 0:
			return fmt.Errorf("entry %d (%s): cost_factor must not be negative", i+1, e.WorkCode)
		}
		if e.Limit <= 0 {
			e.Limit = defaultEntryLimit
		}
		if e.CostFactor == 0 {
			e.CostFactor = 1
		}
	}
	return nil
}
