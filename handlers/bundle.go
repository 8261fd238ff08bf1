// File: jamb/handlers/bundle.go
package handlers

import (
	"jamb/middleware"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Auth resolves bearer tokens for the protected groups.
	Auth     middleware.Authenticator
	AdminKey string

	Catalog         *CatalogHandler
	Materials       *MaterialsHandler
	Estimate        *EstimateHandler
	Orders          *OrderHandler
	Recommendations *RecommendationHandler
	Uploads         *UploadHandler
	Users           *UserHandler
	Admin           *AdminHandler
}
