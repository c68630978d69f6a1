package foods

import (
	"github.com/gofiber/fiber/v2"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	mcp     bool
}

// NewFeature creates the foods feature. mcp enables the MCP tool endpoint.
func NewFeature(service *Service, mcp bool) *Feature {
	return &Feature{service: service, handler: NewHandler(service), mcp: mcp}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "foods"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	if f.mcp {
		f.handler.RegisterMCPRoutes(app)
	}
	return nil
}
