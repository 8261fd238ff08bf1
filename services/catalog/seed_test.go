package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jamb/models"
	"jamb/utils"
)

const seedYAML = `
categories:
  - id: "1-1"
    section: indoor
    title: Painting
services:
  - id: "1-1-1"
    category_id: "1-1"
    title: Paint walls
    unit_of_measurement: sq ft
    price: 2.75
    min_quantity: 50
    max_quantity: 5000
    tags: [paint]
`

func TestParseSeedInheritsSection(t *testing.T) {
	seed, err := ParseSeed([]byte(seedYAML))
	require.NoError(t, err)
	require.Len(t, seed.Services, 1)
	s := seed.Services[0]
	assert.Equal(t, models.SectionIndoor, s.Section)
	assert.Equal(t, "sq ft", s.UnitOfMeasurement)
	assert.Equal(t, 2.75, s.Price)
	assert.Equal(t, []string{"paint"}, s.Tags)
}

func TestParseSeedRejectsBrokenReferences(t *testing.T) {
	_, err := ParseSeed([]byte(`
categories:
  - {id: "1-1", section: indoor, title: Painting}
services:
  - {id: "9-9-9", category_id: "4-4", title: Orphan}
`))
	assert.ErrorContains(t, err, "unknown category")

	_, err = ParseSeed([]byte(`
categories:
  - {id: "1-1", section: indoor, title: Painting}
  - {id: "1-1", section: indoor, title: Again}
`))
	assert.ErrorContains(t, err, "defined twice")
}

func TestSeedApply(t *testing.T) {
	repo := newFakeRepo()
	svc := &DefaultCatalogService{Repo: repo}

	seed, err := ParseSeed([]byte(seedYAML))
	require.NoError(t, err)
	categories, services, err := seed.Apply(context.Background(), svc)
	require.NoError(t, err)
	assert.Equal(t, 1, categories)
	assert.Equal(t, 1, services)
	assert.Equal(t, "Paint walls", repo.services["1-1-1"].Title)

	seed.Services[0].MinQuantity = 0
	_, _, err = seed.Apply(context.Background(), svc)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}
