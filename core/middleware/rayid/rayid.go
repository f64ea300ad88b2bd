package rayid

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName is the response (and accepted request) header carrying the RayID.
const HeaderName = "X-Ray-ID"

// New returns middleware that assigns every request a RayID, stores it in
// locals under "ray_id" and echoes it in the response header. An incoming
// header value is reused.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := strings.TrimSpace(c.Get(HeaderName))
		if rid == "" {
			rid = strings.ReplaceAll(uuid.NewString(), "-", "")
		}
		c.Locals("ray_id", rid)
		c.Set(HeaderName, rid)
		return c.Next()
	}
}
