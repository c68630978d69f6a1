// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager keeps features in registration order; LoadAll loads the enabled ones
// and stops at the first error. The start command registers the foods feature,
// which owns the search, admin and MCP routes.
package loader
