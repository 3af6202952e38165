package courseValidator

import (
	"coursehub/middleware"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ResetRequest names what to reset on an enrollment. ID is the content or
// lesson id for those scopes.
type ResetRequest struct {
	Scope string `json:"scope" validate:"required,oneof=CONTENT LESSON COURSE ENROLLMENT ATTEMPTS"`
	ID    uint   `json:"id" validate:"required_if=Scope CONTENT,required_if=Scope LESSON"`
}

type SyncRequest struct {
	CourseID uint `json:"course_id" validate:"required"`
}

// ResetProgress validates POST /admin/enrollments/:enrollment_id/reset.
func ResetProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := idParam(c, "enrollment_id", "enrollmentID", "Enrollment ID"); !ok {
			return err
		}
		reqData := new(ResetRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Scope = strings.ToUpper(strings.TrimSpace(reqData.Scope))
		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}
		c.Locals("validatedReset", reqData)
		return c.Next()
	}
}

// SyncProgress validates POST /admin/course/enrollment/:enrollment_id/sync.
func SyncProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := idParam(c, "enrollment_id", "enrollmentID", "Enrollment ID"); !ok {
			return err
		}
		reqData := new(SyncRequest)
		if ok, err := bindBody(c, reqData); !ok {
			return err
		}
		c.Locals("validatedSync", reqData)
		return c.Next()
	}
}
