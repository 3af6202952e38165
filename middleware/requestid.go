package middleware

import (
	"coursehub/utils"

	"github.com/gofiber/fiber/v2"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with a correlation id, reusing the caller's
// header when present.
func RequestID(c *fiber.Ctx) error {
	id := c.Get(RequestIDHeader)
	if id == "" || len(id) > 64 {
		id = utils.NewRequestID()
	}
	c.Locals("requestId", id)
	c.Set(RequestIDHeader, id)
	return c.Next()
}

func RequestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals("requestId").(string)
	return id
}
