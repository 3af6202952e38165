package courseRoutes

import (
	controllers "coursehub/controllers/course"
	"coursehub/middleware"
	"coursehub/services/actor"
	validators "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up grading, reset and certificate routes.
// Course-level permissions are checked by the services.
func SetupAdminCourseRoutes(app *fiber.App, ctl *controllers.Controller) {
	adminGroup := app.Group("/admin/course", middleware.JWTMiddleware,
		middleware.RequireRole(actor.RoleAdmin, actor.RoleCenterAdmin, actor.RoleInstructor))

	// Grading
	adminGroup.Get("/submissions", validators.SubmissionList(), ctl.GetAllSubmissions)
	adminGroup.Post("/submissions/:submission_id/grade", validators.GradeSubmission(), ctl.GradeSubmission)

	// Progress administration
	adminGroup.Post("/enrollment/:enrollment_id/reset", validators.ResetProgress(), ctl.ResetProgress)
	adminGroup.Post("/enrollment/:enrollment_id/sync", validators.SyncProgress(), ctl.SyncProgress)

	// Certificate Management
	adminGroup.Get("/certificates/pending", validators.PendingCertificates(), ctl.AdminGetPendingCertificates)
	adminGroup.Post("/certificates/:request_id/approve", validators.CertificateDecision(), ctl.AdminApproveCertificate)
	adminGroup.Post("/certificates/:request_id/reject", validators.RejectCertificate(), ctl.AdminRejectCertificate)
}
