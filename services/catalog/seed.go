package catalog

import (
	"context"
	"fmt"
	"os"

	"jamb/models"

	"gopkg.in/yaml.v3"
)

// Seed is the catalog file loaded by cmd/seed.
type Seed struct {
	Categories []models.Category `yaml:"categories"`
	Services   []models.Service  `yaml:"services"`
}

// LoadSeed reads and parses a catalog YAML file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a catalog file. Services inherit the section of their category when
// they do not name one, and must reference a category of the same file.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	sections := make(map[string]models.Section, len(seed.Categories))
	for _, c := range seed.Categories {
		if _, dup := sections[c.ID]; dup {
			return nil, fmt.Errorf("category %s is defined twice", c.ID)
		}
		sections[c.ID] = c.Section
	}
	seen := make(map[string]bool, len(seed.Services))
	for i := range seed.Services {
		s := &seed.Services[i]
		if seen[s.ID] {
			return nil, fmt.Errorf("service %s is defined twice", s.ID)
		}
		seen[s.ID] = true
		section, ok := sections[s.CategoryID]
		if !ok {
			return nil, fmt.Errorf("service %s references unknown category %q", s.ID, s.CategoryID)
		}
		if s.Section == "" {
			s.Section = section
		}
	}
	return &seed, nil
}

// Apply upserts every category, then every service. It stops at the first invalid entry.
func (seed *Seed) Apply(ctx context.Context, svc CatalogService) (categories, services int, err error) {
	for i := range seed.Categories {
		if err := svc.UpsertCategory(ctx, &seed.Categories[i]); err != nil {
			return categories, services, fmt.Errorf("category %s: %w", seed.Categories[i].ID, err)
		}
		categories++
	}
	for i := range seed.Services {
		if err := svc.UpsertService(ctx, &seed.Services[i]); err != nil {
			return categories, services, fmt.Errorf("service %s: %w", seed.Services[i].ID, err)
		}
		services++
	}
	return categories, services, nil
}
