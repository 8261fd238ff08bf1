package models

import "time"

// FinishingMaterial is a selectable material or equipment option for a work code.
// Cost is expressed per unit of the work it belongs to.
type FinishingMaterial struct {
	ExternalID        string    `db:"external_id" json:"externalId"`
	WorkCode          string    `db:"work_code" json:"workCode"`
	Section           string    `db:"section" json:"section"`
	Name              string    `db:"name" json:"name"`
	ImageURL          string    `db:"image_url" json:"imageUrl,omitempty"`
	Cost              float64   `db:"cost" json:"cost"`
	UnitOfMeasurement string    `db:"unit_of_measurement" json:"unitOfMeasurement"`
	Source            string    `db:"source" json:"source"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}

// FinishingMaterialSet groups the options of one work code by section.
type FinishingMaterialSet struct {
	WorkCode string                         `json:"workCode"`
	Sections map[string][]FinishingMaterial `json:"sections"`
}

// SelectedMaterial is a material chosen for a work item, priced for its quantity.
type SelectedMaterial struct {
	ExternalID string  `bson:"externalId" json:"externalId"`
	Section    string  `bson:"section" json:"section"`
	Name       string  `bson:"name" json:"name"`
	UnitCost   float64 `bson:"unitCost" json:"unitCost"`
	Cost       float64 `bson:"cost" json:"cost"`
}
