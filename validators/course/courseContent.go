package courseValidator

import (
	"coursehub/services/assessment"

	"github.com/gofiber/fiber/v2"
)

type SubmitQuizRequest struct {
	Answers []assessment.AnswerInput `json:"answers" validate:"required,min=1,max=500,dive"`
}

type MySubmissionsQuery struct {
	QuizID uint `query:"quiz_id"`
}

// SubmitQuiz validates POST /quizzes/:quiz_id/submit.
func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := idParam(c, "quiz_id", "quizID", "Quiz ID"); !ok {
			return err
		}
		reqData := new(SubmitQuizRequest)
		if ok, err := bindBody(c, reqData); !ok {
			return err
		}
		c.Locals("validatedSubmission", reqData)
		return c.Next()
	}
}

func MySubmissions() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(MySubmissionsQuery)
		if ok, err := bindQuery(c, reqData); !ok {
			return err
		}
		c.Locals("validatedSubmissionQuery", reqData)
		return c.Next()
	}
}
