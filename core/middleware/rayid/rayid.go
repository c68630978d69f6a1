package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// HeaderName is echoed on every response.
	HeaderName = "X-Ray-ID"
	// LocalsKey is where the ray id is stored on the request context.
	LocalsKey = "ray_id"
)

// New returns a middleware assigning every request a ray id. An incoming
// X-Ray-ID header is kept.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderName)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(LocalsKey, rid)
		c.Set(HeaderName, rid)
		return c.Next()
	}
}

// Get returns the ray id of the request, or an empty string.
func Get(c *fiber.Ctx) string {
	rid, _ := c.Locals(LocalsKey).(string)
	return rid
}
