// File: jamb/models/catalog.go
package models

import "time"

// Section is the top-level grouping of service categories.
type Section string

const (
	SectionIndoor    Section = "indoor"
	SectionOutdoor   Section = "outdoor"
	SectionEmergency Section = "emergency"
)

// Sections lists every known section in display order.
var Sections = []Section{SectionIndoor, SectionOutdoor, SectionEmergency}

// IsValid reports whether s is a known section.
func (s Section) IsValid() bool {
	for _, known := range Sections {
		if s == known {
			return true
		}
	}
	return false
}

// Category groups related services inside a section, e.g. "Painting" under indoor.
type Category struct {
	ID          string    `bson:"id" json:"id" yaml:"id"`
	Section     Section   `bson:"section" json:"section" yaml:"section"`
	Title       string    `bson:"title" json:"title" yaml:"title"`
	Description string    `bson:"description" json:"description,omitempty" yaml:"description"`
	ImageURL    string    `bson:"imageUrl" json:"imageUrl,omitempty" yaml:"image_url"`
	SortOrder   int       `bson:"sortOrder" json:"sortOrder" yaml:"sort_order"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt" yaml:"-"`
}

// Service is a single bookable unit of work identified by its work code (e.g. "1-1-1").
type Service struct {
	ID                string    `bson:"id" json:"id" yaml:"id"`
	CategoryID        string    `bson:"categoryId" json:"categoryId" yaml:"category_id"`
	Section           Section   `bson:"section" json:"section" yaml:"section"`
	Title             string    `bson:"title" json:"title" yaml:"title"`
	Description       string    `bson:"description" json:"description" yaml:"description"`
	UnitOfMeasurement string    `bson:"unitOfMeasurement" json:"unitOfMeasurement" yaml:"unit_of_measurement"`
	Price             float64   `bson:"price" json:"price" yaml:"price"`
	MinQuantity       float64   `bson:"minQuantity" json:"minQuantity" yaml:"min_quantity"`
	MaxQuantity       float64   `bson:"maxQuantity" json:"maxQuantity" yaml:"max_quantity"`
	ImageURL          string    `bson:"imageUrl" json:"imageUrl,omitempty" yaml:"image_url"`
	Tags              []string  `bson:"tags" json:"tags,omitempty" yaml:"tags"`
	Embedding         []float32 `bson:"embedding,omitempty" json:"-" yaml:"-"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt" yaml:"-"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt" yaml:"-"`
}

// ServiceFilter narrows ListServices.
type ServiceFilter struct {
	Section    Section `form:"section"`
	CategoryID string  `form:"category"`
	Query      string  `form:"q"`
	Limit      int     `form:"limit"`
	Offset     int     `form:"offset"`
}
