package courseRoutes

import (
	controllers "coursehub/controllers/course"
	"coursehub/middleware"
	validators "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all learner-facing progress and quiz routes
func SetupCourseRoutes(app *fiber.App, ctl *controllers.Controller) {
	userGroup := app.Group("/course", middleware.JWTMiddleware)

	// Content tree and progress
	userGroup.Get("/:course_id/content", validators.CourseContent(), ctl.GetCourseContent)
	userGroup.Get("/:course_id/progress", validators.CourseContent(), ctl.GetCourseProgress)

	// Completion
	userGroup.Post("/:course_id/complete", validators.MarkCourse(), ctl.MarkCourseComplete)
	app.Post("/lesson/:lesson_id/complete", middleware.JWTMiddleware, validators.MarkLesson(), ctl.MarkLessonComplete)
	app.Post("/lesson/:lesson_id/recompute", middleware.JWTMiddleware, validators.RecomputeLesson(), ctl.RecomputeLesson)
	app.Post("/content/:content_id/complete", middleware.JWTMiddleware, validators.MarkContent(), ctl.MarkContentComplete)

	// Quizzes
	quizGroup := app.Group("/quiz", middleware.JWTMiddleware)
	quizGroup.Get("/submissions", validators.MySubmissions(), ctl.GetMySubmissions)
	quizGroup.Post("/:quiz_id/submit", validators.SubmitQuiz(), ctl.SubmitQuiz)

	// Certificates
	userGroup.Post("/:course_id/certificate/request", validators.RequestCertificate(), ctl.RequestCertificate)
	app.Get("/user/certificates", middleware.JWTMiddleware, ctl.GetUserCertificates)
}
