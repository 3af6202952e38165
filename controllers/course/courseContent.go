package controllers

import (
	"coursehub/middleware"
	courseValidator "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// GetCourseContent returns the course tree with completion and access flags.
func (ctl *Controller) GetCourseContent(c *fiber.Ctx) error {
	a, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	courseID := c.Locals("courseID").(uint)
	reqData, _ := c.Locals("validatedTarget").(*courseValidator.TargetQuery)
	var userID uint
	if reqData != nil {
		userID = reqData.UserID
	}

	view, err := ctl.Progress.GetCourseContent(c.UserContext(), a, target(a, userID), courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course content fetched successfully!", view)
}

func (ctl *Controller) GetCourseProgress(c *fiber.Ctx) error {
	a, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	courseID := c.Locals("courseID").(uint)
	reqData, _ := c.Locals("validatedTarget").(*courseValidator.TargetQuery)
	var userID uint
	if reqData != nil {
		userID = reqData.UserID
	}

	view, err := ctl.Progress.GetCourseProgress(c.UserContext(), a, target(a, userID), courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", view)
}

func (ctl *Controller) MarkContentComplete(c *fiber.Ctx) error {
	a, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	contentID := c.Locals("contentID").(uint)
	reqData := c.Locals("validatedMark").(*courseValidator.MarkRequest)
	userID := target(a, reqData.UserID)

	res, err := ctl.Progress.MarkContentCompleted(c.UserContext(), a, userID, contentID, reqData.Value())
	ctl.record(c, a, "progress.content.mark", "content", contentID,
		fiber.Map{"user_id": userID, "completed": reqData.Value()}, err)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content progress updated successfully!", res)
}

func (ctl *Controller) MarkLessonComplete(c *fiber.Ctx) error {
	a, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	lessonID := c.Locals("lessonID").(uint)
	reqData := c.Locals("validatedMark").(*courseValidator.MarkRequest)
	userID := target(a, reqData.UserID)

	res, err := ctl.Progress.MarkLessonCompleted(c.UserContext(), a, userID, lessonID, reqData.Value())
	ctl.record(c, a, "progress.lesson.mark", "lesson", lessonID,
		fiber.Map{"user_id": userID, "completed": reqData.Value()}, err)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson progress updated successfully!", res)
}

func (ctl *Controller) MarkCourseComplete(c *fiber.Ctx) error {
	a, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	courseID := c.Locals("courseID").(uint)
	reqData := c.Locals("validatedMark").(*courseValidator.MarkRequest)
	userID := target(a, reqData.UserID)

	res, err := ctl.Progress.MarkCourseCompleted(c.UserContext(), a, userID, courseID, reqData.Value())
	ctl.record(c, a, "progress.course.mark", "course", courseID,
		fiber.Map{"user_id": userID, "completed": reqData.Value()}, err)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course progress updated successfully!", res)
}

// RecomputeLesson re-derives lesson progress from the content rows.
func (ctl *Controller) RecomputeLesson(c *fiber.Ctx) error {
	a, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	lessonID := c.Locals("lessonID").(uint)
	reqData := c.Locals("validatedTarget").(*courseValidator.TargetQuery)
	userID := target(a, reqData.UserID)

	rows, err := ctl.Progress.RecomputeLesson(c.UserContext(), a, userID, lessonID)
	ctl.record(c, a, "progress.lesson.recompute", "lesson", lessonID, fiber.Map{"user_id": userID}, err)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson progress recomputed successfully!", rows)
}
