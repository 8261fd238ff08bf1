package models

// EstimateItem is one requested line: a work code, its quantity and the chosen materials.
// When MaterialIDs is nil the cheapest option of every section is used.
type EstimateItem struct {
	WorkCode    string   `json:"workCode" binding:"required"`
	Quantity    float64  `json:"quantity" binding:"required"`
	MaterialIDs []string `json:"materialIds"`
}

// EstimateRequest is the body of the stateless estimate endpoint.
type EstimateRequest struct {
	Items []EstimateItem `json:"items" binding:"required"`
	Date  string         `json:"date" binding:"required"`
	State string         `json:"state" binding:"required"`
}

// CalculateRequest prices a single work, mirroring the backend /calculate contract.
type CalculateRequest struct {
	WorkCode    string   `json:"workCode" binding:"required"`
	Quantity    float64  `json:"quantity" binding:"required"`
	MaterialIDs []string `json:"materialIds"`
}

// WorkEstimate is the priced form of a single work item.
type WorkEstimate struct {
	WorkCode          string             `bson:"workCode" json:"workCode"`
	Title             string             `bson:"title" json:"title"`
	Quantity          float64            `bson:"quantity" json:"quantity"`
	UnitOfMeasurement string             `bson:"unitOfMeasurement" json:"unitOfMeasurement"`
	UnitPrice         float64            `bson:"unitPrice" json:"unitPrice"`
	LaborCost         float64            `bson:"laborCost" json:"laborCost"`
	// AdjustedLabor is LaborCost with its share of the date surcharge or discount.
	AdjustedLabor     float64            `bson:"adjustedLabor" json:"adjustedLabor"`
	Materials         []SelectedMaterial `bson:"materials" json:"materials"`
	MaterialsCost     float64            `bson:"materialsCost" json:"materialsCost"`
	Total             float64            `bson:"total" json:"total"`
}

// Estimate is the aggregated price breakdown of a set of works.
type Estimate struct {
	LaborSubtotal     float64 `bson:"laborSubtotal" json:"laborSubtotal"`
	MaterialsSubtotal float64 `bson:"materialsSubtotal" json:"materialsSubtotal"`
	TimeCoefficient   float64 `bson:"timeCoefficient" json:"timeCoefficient"`
	Adjustment        float64 `bson:"adjustment" json:"adjustment"`
	AdjustedLabor     float64 `bson:"adjustedLabor" json:"adjustedLabor"`
	FeeOnLabor        float64 `bson:"feeOnLabor" json:"feeOnLabor"`
	FeeOnMaterials    float64 `bson:"feeOnMaterials" json:"feeOnMaterials"`
	ServiceFees       float64 `bson:"serviceFees" json:"serviceFees"`
	TaxRate           float64 `bson:"taxRate" json:"taxRate"`
	Tax               float64 `bson:"tax" json:"tax"`
	Total             float64 `bson:"total" json:"total"`
}

// EstimateResponse pairs the per-work lines with their aggregate.
type EstimateResponse struct {
	Works    []WorkEstimate `json:"works"`
	Date     string         `json:"date"`
	State    string         `json:"state"`
	Estimate Estimate       `json:"estimate"`
}

// CalendarDay is the price coefficient of one selectable service date.
type CalendarDay struct {
	Date        string  `json:"date"`
	Coefficient float64 `json:"coefficient"`
	Kind        string  `json:"kind"` // "surcharge", "discount" or "standard"
}
