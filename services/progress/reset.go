package progress

import (
	"context"

	courseModels "coursehub/models/course"
	"coursehub/services/access"
	"coursehub/services/actor"
	"coursehub/services/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScopeKind string

const (
	ScopeContent    ScopeKind = "CONTENT"
	ScopeLesson     ScopeKind = "LESSON"
	ScopeCourse     ScopeKind = "COURSE"
	ScopeEnrollment ScopeKind = "ENROLLMENT"
	ScopeAttempts   ScopeKind = "ATTEMPTS"
)

// Scope selects what Reset deletes. ID names the content or lesson for the
// CONTENT and LESSON kinds and is ignored otherwise. ATTEMPTS removes the
// user's quiz submissions in the course and leaves progress rows alone.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	ID   uint      `json:"id"`
}

func (k ScopeKind) Valid() bool {
	switch k {
	case ScopeContent, ScopeLesson, ScopeCourse, ScopeEnrollment, ScopeAttempts:
		return true
	}
	return false
}

type ResetResult struct {
	EnrollmentID       uint  `json:"enrollment_id"`
	Scope              Scope `json:"scope"`
	ContentRows        int64 `json:"content_rows"`
	LessonRows         int64 `json:"lesson_rows"`
	SubmissionsDeleted int64 `json:"submissions_deleted,omitempty"`
}

func lockEnrollment(tx *gorm.DB, enrollmentID uint) (*courseModels.Enrollment, error) {
	var e courseModels.Enrollment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&e).Error; err != nil {
		return nil, apperr.FromDB(err, "enrollment")
	}
	return &e, nil
}

// Reset irreversibly deletes progress rows of an enrollment under scope. The
// COURSE and ENROLLMENT scopes also zero the enrollment rollup. Quiz attempts
// are only removed by the separate ATTEMPTS scope.
func (s *Service) Reset(ctx context.Context, a actor.Actor, enrollmentID uint, scope Scope) (*ResetResult, error) {
	if !scope.Kind.Valid() {
		return nil, apperr.BadRequest("Invalid reset scope!")
	}
	result := &ResetResult{EnrollmentID: enrollmentID, Scope: scope}
	err := s.tx(ctx, func(tx *gorm.DB) error {
		e, err := lockEnrollment(tx, enrollmentID)
		if err != nil {
			return err
		}
		c, err := access.LoadCourse(tx, e.CourseID)
		if err != nil {
			return err
		}
		if err := access.RequireAdmin(a, c); err != nil {
			return err
		}

		switch scope.Kind {
		case ScopeContent:
			var content courseModels.Content
			if err := tx.Where("id = ? AND course_id = ?", scope.ID, e.CourseID).First(&content).Error; err != nil {
				return apperr.FromDB(err, "content")
			}
			res := tx.Where("user_id = ? AND content_id = ?", e.UserID, content.ID).Delete(&courseModels.ContentProgress{})
			if res.Error != nil {
				return apperr.Internal(res.Error, "failed to delete content progress")
			}
			result.ContentRows = res.RowsAffected

		case ScopeLesson:
			var lesson courseModels.Lesson
			if err := tx.Where("id = ? AND course_id = ?", scope.ID, e.CourseID).First(&lesson).Error; err != nil {
				return apperr.FromDB(err, "lesson")
			}
			contentIDs := tx.Model(&courseModels.Content{}).Unscoped().Select("id").Where("lesson_id = ?", lesson.ID)
			res := tx.Where("user_id = ? AND content_id IN (?)", e.UserID, contentIDs).Delete(&courseModels.ContentProgress{})
			if res.Error != nil {
				return apperr.Internal(res.Error, "failed to delete content progress")
			}
			result.ContentRows = res.RowsAffected
			res = tx.Where("enrollment_id = ? AND lesson_id = ?", e.ID, lesson.ID).Delete(&courseModels.LessonProgress{})
			if res.Error != nil {
				return apperr.Internal(res.Error, "failed to delete lesson progress")
			}
			result.LessonRows = res.RowsAffected

		case ScopeCourse, ScopeEnrollment:
			res := tx.Where("user_id = ? AND (course_id = ? OR enrollment_id = ?)", e.UserID, e.CourseID, e.ID).
				Delete(&courseModels.ContentProgress{})
			if res.Error != nil {
				return apperr.Internal(res.Error, "failed to delete content progress")
			}
			result.ContentRows = res.RowsAffected
			res = tx.Where("enrollment_id = ?", e.ID).Delete(&courseModels.LessonProgress{})
			if res.Error != nil {
				return apperr.Internal(res.Error, "failed to delete lesson progress")
			}
			result.LessonRows = res.RowsAffected
			if err := tx.Model(&courseModels.Enrollment{}).Where("id = ?", e.ID).Updates(map[string]interface{}{
				"progress":           0,
				"completed_contents": 0,
				"completed_at":       nil,
			}).Error; err != nil {
				return apperr.Internal(err, "failed to reset enrollment progress")
			}

		case ScopeAttempts:
			n, err := deleteSubmissions(tx, e.UserID, e.CourseID)
			if err != nil {
				return err
			}
			result.SubmissionsDeleted = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func deleteSubmissions(tx *gorm.DB, userID, courseID uint) (int64, error) {
	submissionIDs := tx.Model(&courseModels.QuizSubmission{}).Select("id").
		Where("user_id = ? AND course_id = ?", userID, courseID)
	if err := tx.Where("submission_id IN (?)", submissionIDs).Delete(&courseModels.QuizAnswer{}).Error; err != nil {
		return 0, apperr.Internal(err, "failed to delete quiz answers")
	}
	res := tx.Where("user_id = ? AND course_id = ?", userID, courseID).Delete(&courseModels.QuizSubmission{})
	if res.Error != nil {
		return 0, apperr.Internal(res.Error, "failed to delete quiz submissions")
	}
	return res.RowsAffected, nil
}

type SyncResult struct {
	Enrollment courseModels.Enrollment       `json:"enrollment"`
	Lessons    []courseModels.LessonProgress `json:"lessons"`
}

// Sync recomputes every lesson row and the course rollup of an enrollment in
// one transaction holding the enrollment row lock, discarding whatever a
// racing recompute left behind. Only admins of the course may run it.
func (s *Service) Sync(ctx context.Context, a actor.Actor, enrollmentID, courseID uint) (*SyncResult, error) {
	var result *SyncResult
	err := s.tx(ctx, func(tx *gorm.DB) error {
		e, err := lockEnrollment(tx, enrollmentID)
		if err != nil {
			return err
		}
		if e.CourseID != courseID {
			return apperr.BadRequest("Enrollment does not belong to this course!")
		}
		c, err := access.LoadCourse(tx, courseID)
		if err != nil {
			return err
		}
		if !access.IsCourseAdmin(a, c) {
			return apperr.Forbidden("Access denied! Admin only.")
		}

		g := &access.Grant{Course: *c, UserID: e.UserID, Admin: true, Enrollment: e}
		lessons, enrollment, err := s.recomputeAll(tx, g)
		if err != nil {
			return err
		}
		result = &SyncResult{Enrollment: *enrollment, Lessons: lessons}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SyncActive runs Sync for every active enrollment and returns how many were
// repaired. Failures are collected per enrollment.
func (s *Service) SyncActive(ctx context.Context) (int, []error) {
	var enrollments []courseModels.Enrollment
	if err := s.db.WithContext(ctx).Select("id", "course_id").
		Where("status = ? AND is_deleted = ?", courseModels.EnrollmentActive, false).
		Find(&enrollments).Error; err != nil {
		return 0, []error{apperr.Internal(err, "failed to list enrollments")}
	}
	synced := 0
	var errs []error
	for _, e := range enrollments {
		if _, err := s.Sync(ctx, actor.System, e.ID, e.CourseID); err != nil {
			errs = append(errs, err)
			continue
		}
		synced++
	}
	return synced, errs
}
