package progress

import (
	"context"

	courseModels "coursehub/models/course"
	"coursehub/services/access"
	"coursehub/services/actor"
	"coursehub/services/apperr"

	"gorm.io/gorm"
)

// ContentResult is the outcome of a content completion toggle.
type ContentResult struct {
	Progress   courseModels.ContentProgress  `json:"progress"`
	Lessons    []courseModels.LessonProgress `json:"lessons,omitempty"`
	Enrollment *courseModels.Enrollment      `json:"enrollment,omitempty"`
}

// MarkContentCompleted upserts the (user, content) row. Completing content
// rolls up into the lesson and the course; un-completing touches only the
// content row and leaves parents as of their last recompute.
func (s *Service) MarkContentCompleted(ctx context.Context, a actor.Actor, userID, contentID uint, completed bool) (*ContentResult, error) {
	var result *ContentResult
	err := s.tx(ctx, func(tx *gorm.DB) error {
		content, err := loadPublishedContent(tx, contentID)
		if err != nil {
			return err
		}
		free := content.IsFree
		if content.LessonID != nil {
			lesson, err := loadLesson(tx, *content.LessonID)
			if err != nil {
				return err
			}
			free = free || lesson.IsFree
		}

		g, err := access.Resolve(tx, a, userID, content.CourseID, access.Options{LessonID: content.LessonID, Lock: true})
		if err != nil {
			return err
		}
		if !free && !g.Allowed() {
			return apperr.Forbidden("User not enrolled in this course!")
		}

		var enrollmentID *uint
		if g.Enrollment != nil {
			enrollmentID = &g.Enrollment.ID
		}
		rows, err := s.upsertContentProgress(tx, userID, enrollmentID, []courseModels.Content{*content}, completed)
		if err != nil {
			return err
		}
		result = &ContentResult{Progress: rows[0]}
		if !completed {
			return nil
		}
		result.Lessons, result.Enrollment, err = s.rollup(tx, g, content.LessonID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// LessonResult is the outcome of a lesson completion toggle.
type LessonResult struct {
	Lessons    []courseModels.LessonProgress  `json:"lessons"`
	Contents   []courseModels.ContentProgress `json:"contents,omitempty"`
	Enrollment *courseModels.Enrollment       `json:"enrollment,omitempty"`
}

// MarkLessonCompleted force-completes every published content item of the
// lesson and rolls up. Un-marking resets only the lesson rows.
func (s *Service) MarkLessonCompleted(ctx context.Context, a actor.Actor, userID, lessonID uint, completed bool) (*LessonResult, error) {
	var result *LessonResult
	err := s.tx(ctx, func(tx *gorm.DB) error {
		lesson, err := loadLesson(tx, lessonID)
		if err != nil {
			return err
		}
		if !lesson.IsPublished {
			return apperr.NotFound("lesson not found")
		}
		g, err := access.Resolve(tx, a, userID, lesson.CourseID, access.Options{LessonID: &lesson.ID, Lock: true})
		if err != nil {
			return err
		}
		if !lesson.IsFree && !g.Allowed() {
			return apperr.Forbidden("User not enrolled in this course!")
		}

		if !completed {
			result = &LessonResult{}
			result.Lessons, err = s.clearLesson(tx, g, lesson.ID)
			return err
		}

		var contents []courseModels.Content
		if err := tx.Where("lesson_id = ? AND is_published = ? AND is_deleted = ?", lesson.ID, true, false).
			Order("order_index asc").Find(&contents).Error; err != nil {
			return apperr.Internal(err, "failed to load lesson content")
		}
		var enrollmentID *uint
		if g.Enrollment != nil {
			enrollmentID = &g.Enrollment.ID
		}
		result = &LessonResult{}
		if result.Contents, err = s.upsertContentProgress(tx, userID, enrollmentID, contents, true); err != nil {
			return err
		}
		result.Lessons, result.Enrollment, err = s.rollup(tx, g, &lesson.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// clearLesson zeroes the stored lesson rows for the grant's purchase paths.
func (s *Service) clearLesson(tx *gorm.DB, g *access.Grant, lessonID uint) ([]courseModels.LessonProgress, error) {
	var keys []courseModels.LessonProgress
	if g.Enrollment != nil {
		keys = append(keys, courseModels.LessonProgress{EnrollmentID: g.Enrollment.ID})
	}
	if g.LessonEnrollment != nil && g.LessonEnrollment.LessonID == lessonID {
		keys = append(keys, courseModels.LessonProgress{LessonEnrollmentID: g.LessonEnrollment.ID})
	}
	out := make([]courseModels.LessonProgress, 0, len(keys))
	for _, key := range keys {
		key.UserID = g.UserID
		key.LessonID = lessonID
		saved, err := s.saveLessonProgress(tx, key)
		if err != nil {
			return nil, err
		}
		out = append(out, *saved)
	}
	return out, nil
}

// CourseResult is the outcome of a course completion toggle.
type CourseResult struct {
	Enrollment courseModels.Enrollment       `json:"enrollment"`
	Lessons    []courseModels.LessonProgress `json:"lessons,omitempty"`
}

// MarkCourseCompleted force-completes all published content of the course,
// lesson-scoped and course-level, then recomputes every lesson and the
// course. Un-marking resets only the enrollment rollup.
func (s *Service) MarkCourseCompleted(ctx context.Context, a actor.Actor, userID, courseID uint, completed bool) (*CourseResult, error) {
	var result *CourseResult
	err := s.tx(ctx, func(tx *gorm.DB) error {
		g, err := access.Resolve(tx, a, userID, courseID, access.Options{Lock: true})
		if err != nil {
			return err
		}
		if g.Enrollment == nil {
			if g.Admin {
				return apperr.NotFound("active enrollment not found")
			}
			return apperr.Forbidden("User not enrolled in this course!")
		}

		if !completed {
			if err := tx.Model(&courseModels.Enrollment{}).Where("id = ?", g.Enrollment.ID).Updates(map[string]interface{}{
				"progress":           0,
				"completed_contents": 0,
				"completed_at":       nil,
			}).Error; err != nil {
				return apperr.Internal(err, "failed to reset enrollment progress")
			}
			e := *g.Enrollment
			e.Progress, e.CompletedContents, e.CompletedAt = 0, 0, nil
			result = &CourseResult{Enrollment: e}
			return nil
		}

		var contents []courseModels.Content
		if err := tx.Where("course_id = ? AND is_published = ? AND is_deleted = ?", courseID, true, false).
			Where("(lesson_id IS NULL OR lesson_id IN (?))", publishedLessonIDs(tx, courseID)).
			Find(&contents).Error; err != nil {
			return apperr.Internal(err, "failed to load course content")
		}
		if _, err := s.upsertContentProgress(tx, userID, &g.Enrollment.ID, contents, true); err != nil {
			return err
		}

		lessons, enrollment, err := s.recomputeAll(tx, g)
		if err != nil {
			return err
		}
		result = &CourseResult{Enrollment: *enrollment, Lessons: lessons}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// recomputeAll recomputes every published lesson under the enrollment, the
// user's standalone lesson purchases in the course, and the course rollup.
func (s *Service) recomputeAll(tx *gorm.DB, g *access.Grant) ([]courseModels.LessonProgress, *courseModels.Enrollment, error) {
	var lessonIDs []uint
	if err := publishedLessonIDs(tx, g.Course.ID).Order("order_index asc").Pluck("id", &lessonIDs).Error; err != nil {
		return nil, nil, apperr.Internal(err, "failed to load lessons")
	}
	var standalone []courseModels.LessonEnrollment
	if err := tx.Where("user_id = ? AND course_id = ? AND status = ? AND is_deleted = ?",
		g.UserID, g.Course.ID, courseModels.EnrollmentActive, false).Find(&standalone).Error; err != nil {
		return nil, nil, apperr.Internal(err, "failed to load lesson enrollments")
	}

	var lessons []courseModels.LessonProgress
	for _, id := range lessonIDs {
		lp, err := s.recomputeLesson(tx, g.UserID, g.Enrollment.ID, 0, id)
		if err != nil {
			return nil, nil, err
		}
		lessons = append(lessons, *lp)
	}
	for _, le := range standalone {
		lp, err := s.recomputeLesson(tx, g.UserID, 0, le.ID, le.LessonID)
		if err != nil {
			return nil, nil, err
		}
		lessons = append(lessons, *lp)
	}
	enrollment, err := s.recomputeCourse(tx, g.UserID, g.Enrollment.ID, g.Course.ID)
	if err != nil {
		return nil, nil, err
	}
	return lessons, enrollment, nil
}

// RecomputeLesson re-derives the lesson rows of a user on demand, e.g. after
// un-marking content, which does not touch the parents.
func (s *Service) RecomputeLesson(ctx context.Context, a actor.Actor, userID, lessonID uint) ([]courseModels.LessonProgress, error) {
	var lessons []courseModels.LessonProgress
	err := s.tx(ctx, func(tx *gorm.DB) error {
		lesson, err := loadLesson(tx, lessonID)
		if err != nil {
			return err
		}
		g, err := access.Resolve(tx, a, userID, lesson.CourseID, access.Options{LessonID: &lesson.ID, Lock: true})
		if err != nil {
			return err
		}
		if !g.Covered() {
			return apperr.Forbidden("User not enrolled in this course!")
		}
		if g.Enrollment != nil {
			lp, err := s.recomputeLesson(tx, userID, g.Enrollment.ID, 0, lesson.ID)
			if err != nil {
				return err
			}
			lessons = append(lessons, *lp)
		}
		if g.LessonEnrollment != nil {
			lp, err := s.recomputeLesson(tx, userID, 0, g.LessonEnrollment.ID, lesson.ID)
			if err != nil {
				return err
			}
			lessons = append(lessons, *lp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

// RecomputeLessonProgress recounts the whole-course lesson row keyed by
// (enrollmentID, lessonID). It trusts its caller and performs no access check.
func (s *Service) RecomputeLessonProgress(ctx context.Context, userID, enrollmentID, lessonID uint) (*courseModels.LessonProgress, error) {
	var lp *courseModels.LessonProgress
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var err error
		lp, err = s.recomputeLesson(tx, userID, enrollmentID, 0, lessonID)
		return err
	})
	return lp, err
}

// RecomputeCourseProgress recounts the enrollment rollup. It trusts its
// caller and performs no access check.
func (s *Service) RecomputeCourseProgress(ctx context.Context, userID, enrollmentID, courseID uint) (*courseModels.Enrollment, error) {
	var e *courseModels.Enrollment
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var err error
		e, err = s.recomputeCourse(tx, userID, enrollmentID, courseID)
		return err
	})
	return e, err
}

// CompleteQuizContent marks every published QUIZ content that wraps quizID as
// completed for userID and rolls up. It runs inside the caller's transaction
// once a submission is graded with a passing score.
func (s *Service) CompleteQuizContent(tx *gorm.DB, userID, quizID uint) error {
	var contents []courseModels.Content
	if err := tx.Where("quiz_id = ? AND content_type = ? AND is_published = ? AND is_deleted = ?",
		quizID, courseModels.ContentTypeQuiz, true, false).Find(&contents).Error; err != nil {
		return apperr.Internal(err, "failed to load quiz content")
	}
	for _, content := range contents {
		g, err := access.Resolve(tx, actor.System, userID, content.CourseID, access.Options{LessonID: content.LessonID, Lock: true})
		if err != nil {
			return err
		}
		var enrollmentID *uint
		if g.Enrollment != nil {
			enrollmentID = &g.Enrollment.ID
		}
		if _, err := s.upsertContentProgress(tx, userID, enrollmentID, []courseModels.Content{content}, true); err != nil {
			return err
		}
		if _, _, err := s.rollup(tx, g, content.LessonID); err != nil {
			return err
		}
	}
	return nil
}
