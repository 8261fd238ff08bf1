package materials

import (
	"context"
	"sort"
	"strings"
	"time"

	"jamb/database/repository"
	"jamb/models"
	"jamb/utils"
)

// MaterialsService serves the finishing material options of work codes.
type MaterialsService interface {
	GetFinishingMaterials(ctx context.Context, workCode string) (*models.FinishingMaterialSet, error)
	// Resolve turns a client selection into materials. A nil selection means the default
	// (cheapest per section); an empty one means no materials.
	Resolve(ctx context.Context, workCode string, externalIDs []string) ([]models.FinishingMaterial, error)
	UpsertMaterials(ctx context.Context, batch []models.FinishingMaterial) (int, error)
	DeleteStale(ctx context.Context, workCode string, before time.Time) (int, error)
}

// DefaultMaterialsService implements MaterialsService on the Postgres repository.
type DefaultMaterialsService struct {
	Repo repository.MaterialsRepository
}

func (s *DefaultMaterialsService) GetFinishingMaterials(_ context.Context, workCode string) (*models.FinishingMaterialSet, error) {
	workCode = strings.TrimSpace(workCode)
	if workCode == "" {
		return nil, utils.NewValidationError("work code is required")
	}
	list, err := s.Repo.ListByWorkCode(workCode)
	if err != nil {
		return nil, err
	}
	return Group(workCode, list), nil
}

// Group arranges materials by section, each section sorted by cost then name.
func Group(workCode string, list []models.FinishingMaterial) *models.FinishingMaterialSet {
	set := &models.FinishingMaterialSet{WorkCode: workCode, Sections: map[string][]models.FinishingMaterial{}}
	for _, m := range list {
		set.Sections[m.Section] = append(set.Sections[m.Section], m)
	}
	for _, options := range set.Sections {
		sort.SliceStable(options, func(i, j int) bool {
			if options[i].Cost != options[j].Cost {
				return options[i].Cost < options[j].Cost
			}
			return options[i].Name < options[j].Name
		})
	}
	return set
}

// DefaultSelection picks the cheapest option of every section, ordered by section name.
func DefaultSelection(set *models.FinishingMaterialSet) []models.FinishingMaterial {
	if set == nil {
		return nil
	}
	sections := make([]string, 0, len(set.Sections))
	for section := range set.Sections {
		sections = append(sections, section)
	}
	sort.Strings(sections)

	var picked []models.FinishingMaterial
	for _, section := range sections {
		options := set.Sections[section]
		if len(options) == 0 {
			continue
		}
		cheapest := options[0]
		for _, m := range options[1:] {
			if m.Cost < cheapest.Cost {
				cheapest = m
			}
		}
		picked = append(picked, cheapest)
	}
	return picked
}

func (s *DefaultMaterialsService) Resolve(ctx context.Context, workCode string, externalIDs []string) ([]models.FinishingMaterial, error) {
	if externalIDs == nil {
		set, err := s.GetFinishingMaterials(ctx, workCode)
		if err != nil {
			return nil, err
		}
		return DefaultSelection(set), nil
	}
	if len(externalIDs) == 0 {
		return nil, nil
	}

	found, err := s.Repo.GetByIDs(workCode, externalIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.FinishingMaterial, len(found))
	for _, m := range found {
		byID[m.ExternalID] = m
	}

	selected := make([]models.FinishingMaterial, 0, len(externalIDs))
	sections := make(map[string]string, len(externalIDs))
	for _, id := range externalIDs {
		m, ok := byID[id]
		if !ok {
			return nil, utils.NewValidationError("material %s is not available for work %s", id, workCode)
		}
		if prev, dup := sections[m.Section]; dup {
			return nil, utils.NewValidationError("materials %s and %s are both in section %q of work %s", prev, id, m.Section, workCode)
		}
		sections[m.Section] = id
		selected = append(selected, m)
	}
	return selected, nil
}

func (s *DefaultMaterialsService) UpsertMaterials(_ context.Context, batch []models.FinishingMaterial) (int, error) {
	for _, m := range batch {
		if m.WorkCode == "" || m.ExternalID == "" || m.Section == "" {
			return 0, utils.NewValidationError("material needs a work code, external id and section")
		}
		if m.Cost < 0 {
			return 0, utils.NewValidationError("material %s has a negative cost", m.ExternalID)
		}
	}
	return s.Repo.Upsert(batch)
}

func (s *DefaultMaterialsService) DeleteStale(_ context.Context, workCode string, before time.Time) (int, error) {
	return s.Repo.DeleteStale(workCode, before)
}
