package courseValidator

import (
	"coursehub/middleware"
	"coursehub/services/assessment"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ============ Grading Validators ============

type GradeRequest struct {
	Grades []assessment.GradeInput `json:"grades" validate:"required,min=1,max=500,dive"`
}

type SubmissionListQuery struct {
	QuizID   uint   `query:"quiz_id"`
	CourseID uint   `query:"course_id"`
	UserID   uint   `query:"user_id"`
	Status   string `query:"status" validate:"omitempty,oneof=OPEN PARTIALLY_GRADED GRADED"`
	Page     int    `query:"page" validate:"gte=0"`
	Limit    int    `query:"limit" validate:"gte=0,lte=100"`
}

// GradeSubmission validates POST /admin/submissions/:submission_id/grade.
func GradeSubmission() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := idParam(c, "submission_id", "submissionID", "Submission ID"); !ok {
			return err
		}
		reqData := new(GradeRequest)
		if ok, err := bindBody(c, reqData); !ok {
			return err
		}
		c.Locals("validatedGrades", reqData)
		return c.Next()
	}
}

func SubmissionList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmissionListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		reqData.Status = strings.ToUpper(strings.TrimSpace(reqData.Status))
		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}
		c.Locals("validatedSubmissionList", reqData)
		return c.Next()
	}
}

// ============ Certificate Validators ============

type RejectCertificateRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// CertificateDecision validates the request id of approve/reject routes.
func CertificateDecision() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := idParam(c, "request_id", "certificateRequestID", "Request ID"); !ok {
			return err
		}
		return c.Next()
	}
}

func RejectCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := idParam(c, "request_id", "certificateRequestID", "Request ID"); !ok {
			return err
		}
		reqData := new(RejectCertificateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Reason = strings.TrimSpace(reqData.Reason)
		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}
		if matched, _ := regexp.MatchString(`[<>{}]`, reqData.Reason); matched {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"reason": "Reason contains invalid characters (e.g., <, >, {, })!",
			})
		}
		c.Locals("validatedRejection", reqData)
		return c.Next()
	}
}

func PendingCertificates() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PageQuery)
		if ok, err := bindQuery(c, reqData); !ok {
			return err
		}
		c.Locals("validatedCertificateQuery", reqData)
		return c.Next()
	}
}
