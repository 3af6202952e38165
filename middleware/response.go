package middleware

import (
	"coursehub/services/apperr"
	"coursehub/utils"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorResponse renders a service error with the status of its kind.
// Internal errors are logged and answered with a generic message.
func ErrorResponse(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		utils.Logger.Error("Request failed", "request_id", RequestIDFrom(c), "path", c.Path(), "error", err)
	}
	return JsonResponse(c, apperr.Status(kind), false, apperr.MessageOf(err), fiber.Map{"kind": kind})
}
