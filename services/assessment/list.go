package assessment

import (
	"context"

	courseModels "coursehub/models/course"
	"coursehub/services/access"
	"coursehub/services/actor"
	"coursehub/services/apperr"

	"gorm.io/gorm"
)

// MaskUngraded hides MCQ correctness from the student until the whole
// attempt is GRADED.
func MaskUngraded(sub *courseModels.QuizSubmission) {
	if sub.Status == courseModels.SubmissionGraded {
		return
	}
	for i := range sub.Answers {
		if sub.Answers[i].SelectedChoiceID != nil {
			sub.Answers[i].IsCorrect = nil
			sub.Answers[i].AwardedPoints = nil
		}
	}
}

// GetMySubmissions lists the actor's attempts, newest first, optionally for
// one quiz.
func (s *Service) GetMySubmissions(ctx context.Context, a actor.Actor, quizID *uint) ([]courseModels.QuizSubmission, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", a.UserID)
	if quizID != nil {
		q = q.Where("quiz_id = ?", *quizID)
	}
	var subs []courseModels.QuizSubmission
	if err := q.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).Order("id desc").Find(&subs).Error; err != nil {
		return nil, apperr.Internal(err, "failed to load submissions")
	}
	for i := range subs {
		MaskUngraded(&subs[i])
	}
	return subs, nil
}

// SubmissionFilter narrows GetAllSubmissions. Page is 1-based.
type SubmissionFilter struct {
	QuizID   *uint
	CourseID *uint
	UserID   *uint
	Status   string
	Page     int
	Limit    int
}

type SubmissionPage struct {
	Submissions []courseModels.QuizSubmission `json:"submissions"`
	Total       int64                         `json:"total"`
	Page        int                           `json:"page"`
	Limit       int                           `json:"limit"`
}

// gradableCourses restricts q to the courses a may grade. Platform admins see
// everything; a center admin sees the center's courses and an instructor
// their own.
func gradableCourses(db *gorm.DB, q *gorm.DB, a actor.Actor) (*gorm.DB, error) {
	if a.IsPlatformAdmin() {
		return q, nil
	}
	courses := db.Model(&courseModels.Course{}).Select("id")
	switch {
	case a.HasRole(actor.RoleCenterAdmin) && a.CenterID != nil:
		courses = courses.Where("center_id = ? OR instructor_id = ?", *a.CenterID, a.UserID)
	case a.HasRole(actor.RoleInstructor) || a.HasRole(actor.RoleCenterAdmin):
		courses = courses.Where("instructor_id = ?", a.UserID)
	default:
		return nil, apperr.Forbidden("Only course admins and instructors can list submissions!")
	}
	return q.Where("course_id IN (?)", courses), nil
}

// GetAllSubmissions lists submissions the actor may grade, newest first.
func (s *Service) GetAllSubmissions(ctx context.Context, a actor.Actor, f SubmissionFilter) (*SubmissionPage, error) {
	db := s.db.WithContext(ctx)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	q := db.Model(&courseModels.QuizSubmission{})
	if f.QuizID != nil {
		quiz, err := loadQuizUnscoped(db, *f.QuizID)
		if err != nil {
			return nil, err
		}
		course, err := access.LoadCourse(db, quiz.CourseID)
		if err != nil {
			return nil, err
		}
		if !access.CanGrade(a, course) {
			return nil, apperr.Forbidden("Only course admins and the instructor can list submissions!")
		}
		q = q.Where("quiz_id = ?", quiz.ID)
	} else {
		var err error
		if q, err = gradableCourses(db, q, a); err != nil {
			return nil, err
		}
	}
	if f.CourseID != nil {
		q = q.Where("course_id = ?", *f.CourseID)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = q.Session(&gorm.Session{})

	page := &SubmissionPage{Page: f.Page, Limit: f.Limit, Submissions: []courseModels.QuizSubmission{}}
	if err := q.Count(&page.Total).Error; err != nil {
		return nil, apperr.Internal(err, "failed to count submissions")
	}
	if err := q.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).Order("id desc").Offset((f.Page - 1) * f.Limit).Limit(f.Limit).Find(&page.Submissions).Error; err != nil {
		return nil, apperr.Internal(err, "failed to load submissions")
	}
	return page, nil
}
