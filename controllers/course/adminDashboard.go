package controllers

import (
	"coursehub/middleware"
	"coursehub/services/assessment"
	"coursehub/services/progress"
	courseValidator "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// GradeSubmission applies manual grades. Per-answer failures come back in
// the report with a 200; only whole-call failures are errors.
func (ctl *Controller) GradeSubmission(c *fiber.Ctx) error {
	a, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	submissionID := c.Locals("submissionID").(uint)
	reqData := c.Locals("validatedGrades").(*courseValidator.GradeRequest)

	report, err := ctl.Assessment.Grade(c.UserContext(), a, submissionID, reqData.Grades)
	details := fiber.Map{"grades": len(reqData.Grades)}
	if report != nil {
		details["applied"] = report.Applied
		details["skipped"] = report.Skipped
		details["errors"] = len(report.Errors)
		details["finalized"] = report.Finalized
	}
	ctl.record(c, a, "submission.grade", "submission", submissionID, details, err)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	message := "Grades applied successfully!"
	switch {
	case len(report.Errors) > 0:
		message = "Some grades could not be applied!"
	case report.Finalized:
		message = "Submission graded successfully!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, report)
}

func (ctl *Controller) GetAllSubmissions(c *fiber.Ctx) error {
	a, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	reqData := c.Locals("validatedSubmissionList").(*courseValidator.SubmissionListQuery)

	filter := assessment.SubmissionFilter{Status: reqData.Status, Page: reqData.Page, Limit: reqData.Limit}
	if reqData.QuizID != 0 {
		filter.QuizID = &reqData.QuizID
	}
	if reqData.CourseID != 0 {
		filter.CourseID = &reqData.CourseID
	}
	if reqData.UserID != 0 {
		filter.UserID = &reqData.UserID
	}

	page, err := ctl.Assessment.GetAllSubmissions(c.UserContext(), a, filter)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully!", fiber.Map{
		"submissions": page.Submissions,
		"pagination": fiber.Map{
			"total": page.Total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}

// ResetProgress wipes progress of an enrollment at the requested scope.
func (ctl *Controller) ResetProgress(c *fiber.Ctx) error {
	a, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	enrollmentID := c.Locals("enrollmentID").(uint)
	reqData := c.Locals("validatedReset").(*courseValidator.ResetRequest)
	scope := progress.Scope{Kind: progress.ScopeKind(reqData.Scope), ID: reqData.ID}

	res, err := ctl.Progress.Reset(c.UserContext(), a, enrollmentID, scope)
	ctl.record(c, a, "progress.reset", "enrollment", enrollmentID, fiber.Map{"scope": reqData.Scope, "id": reqData.ID}, err)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress reset successfully!", res)
}

// SyncProgress repairs the rollups of one enrollment.
func (ctl *Controller) SyncProgress(c *fiber.Ctx) error {
	a, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	enrollmentID := c.Locals("enrollmentID").(uint)
	reqData := c.Locals("validatedSync").(*courseValidator.SyncRequest)

	res, err := ctl.Progress.Sync(c.UserContext(), a, enrollmentID, reqData.CourseID)
	ctl.record(c, a, "progress.sync", "enrollment", enrollmentID, fiber.Map{"course_id": reqData.CourseID}, err)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress synchronized successfully!", res)
}

func (ctl *Controller) AdminGetPendingCertificates(c *fiber.Ctx) error {
	a, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	reqData := c.Locals("validatedCertificateQuery").(*courseValidator.PageQuery)

	page, err := ctl.Certificates.ListPending(c.UserContext(), a, reqData.Page, reqData.Limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending certificate requests fetched successfully!", fiber.Map{
		"requests": page.Requests,
		"pagination": fiber.Map{
			"total": page.Total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}

func (ctl *Controller) AdminApproveCertificate(c *fiber.Ctx) error {
	a, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	requestID := c.Locals("certificateRequestID").(uint)

	cert, err := ctl.Certificates.Approve(c.UserContext(), a, requestID)
	ctl.record(c, a, "certificate.approve", "certificate_request", requestID, nil, err)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate approved and generated successfully!", cert)
}

func (ctl *Controller) AdminRejectCertificate(c *fiber.Ctx) error {
	a, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	requestID := c.Locals("certificateRequestID").(uint)
	reqData := c.Locals("validatedRejection").(*courseValidator.RejectCertificateRequest)

	request, err := ctl.Certificates.Reject(c.UserContext(), a, requestID, reqData.Reason)
	ctl.record(c, a, "certificate.reject", "certificate_request", requestID, fiber.Map{"reason": reqData.Reason}, err)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate request rejected!", request)
}
