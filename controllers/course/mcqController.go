package controllers

import (
	"coursehub/middleware"
	courseModels "coursehub/models/course"
	"coursehub/services/assessment"
	courseValidator "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SubmitQuiz records one attempt. MCQ answers are graded immediately; the
// response hides their correctness until every essay has been graded.
func (ctl *Controller) SubmitQuiz(c *fiber.Ctx) error {
	a, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	quizID := c.Locals("quizID").(uint)
	reqData := c.Locals("validatedSubmission").(*courseValidator.SubmitQuizRequest)

	answers, err := assessment.DecodeAnswers(reqData.Answers)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	sub, err := ctl.Assessment.Submit(c.UserContext(), a, quizID, answers)
	var subID uint
	if sub != nil {
		subID = sub.ID
	}
	ctl.record(c, a, "quiz.submit", "quiz", quizID, fiber.Map{"submission_id": subID, "answers": len(answers)}, err)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	assessment.MaskUngraded(sub)
	message := "Quiz submitted successfully!"
	if sub.Status != courseModels.SubmissionGraded {
		message = "Quiz submitted! Some answers are awaiting grading."
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, message, sub)
}

func (ctl *Controller) GetMySubmissions(c *fiber.Ctx) error {
	a, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	reqData, _ := c.Locals("validatedSubmissionQuery").(*courseValidator.MySubmissionsQuery)
	var quizID *uint
	if reqData != nil && reqData.QuizID != 0 {
		quizID = &reqData.QuizID
	}

	subs, err := ctl.Assessment.GetMySubmissions(c.UserContext(), a, quizID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully!", fiber.Map{
		"submissions": subs,
		"total":       len(subs),
	})
}
