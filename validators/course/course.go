package courseValidator

import (
	"github.com/gofiber/fiber/v2"
)

// TargetQuery lets an admin act on another user's progress. Zero means the
// caller.
type TargetQuery struct {
	UserID uint `query:"user_id"`
}

// MarkRequest sets or clears a completion. Completed defaults to true.
type MarkRequest struct {
	Completed *bool `json:"completed"`
	UserID    uint  `json:"user_id"`
}

func (r *MarkRequest) Value() bool {
	return r.Completed == nil || *r.Completed
}

// CourseContent validates GET /courses/:course_id/content and /progress.
func CourseContent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := idParam(c, "course_id", "courseID", "Course ID"); !ok {
			return err
		}
		reqData := new(TargetQuery)
		if ok, err := bindQuery(c, reqData); !ok {
			return err
		}
		c.Locals("validatedTarget", reqData)
		return c.Next()
	}
}

func markHandler(param, key, label string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := idParam(c, param, key, label); !ok {
			return err
		}
		reqData := new(MarkRequest)
		if len(c.Body()) > 0 {
			if ok, err := bindBody(c, reqData); !ok {
				return err
			}
		}
		c.Locals("validatedMark", reqData)
		return c.Next()
	}
}

func MarkContent() fiber.Handler {
	return markHandler("content_id", "contentID", "Content ID")
}

func MarkLesson() fiber.Handler {
	return markHandler("lesson_id", "lessonID", "Lesson ID")
}

func MarkCourse() fiber.Handler {
	return markHandler("course_id", "courseID", "Course ID")
}

// RecomputeLesson validates POST /lessons/:lesson_id/recompute.
func RecomputeLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := idParam(c, "lesson_id", "lessonID", "Lesson ID"); !ok {
			return err
		}
		reqData := new(TargetQuery)
		if ok, err := bindQuery(c, reqData); !ok {
			return err
		}
		c.Locals("validatedTarget", reqData)
		return c.Next()
	}
}

// RequestCertificate validates POST /courses/:course_id/certificate.
func RequestCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := idParam(c, "course_id", "courseID", "Course ID"); !ok {
			return err
		}
		return c.Next()
	}
}
