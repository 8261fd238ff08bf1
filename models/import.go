package models

import "time"

// ImportEntry describes how to source finishing materials for one work code section.
type ImportEntry struct {
	WorkCode   string   `yaml:"work_code"`
	Section    string   `yaml:"section"`
	SearchTerm string   `yaml:"search_term"`
	ItemIDs    []string `yaml:"item_ids"`
	Limit      int      `yaml:"limit"`
	// CostFactor converts a product price into a cost per unit of work, e.g. coverage per box.
	CostFactor float64 `yaml:"cost_factor"`
}

// ImportPlan is the YAML file consumed by the BigBox importer.
type ImportPlan struct {
	Entries []ImportEntry `yaml:"entries"`
}

// ImportReport summarizes one importer run.
type ImportReport struct {
	StartedAt  time.Time `db:"started_at" json:"startedAt"`
	FinishedAt time.Time `db:"finished_at" json:"finishedAt"`
	Fetched    int       `db:"fetched" json:"fetched"`
	Upserted   int       `db:"upserted" json:"upserted"`
	Skipped    int       `db:"skipped" json:"skipped"`
	Failed     int       `db:"failed" json:"failed"`
}
