package progress

import (
	"time"

	courseModels "coursehub/models/course"
	"coursehub/services/access"
	"coursehub/services/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertContentProgress writes one (user, content) row per content item.
func (s *Service) upsertContentProgress(tx *gorm.DB, userID uint, enrollmentID *uint, contents []courseModels.Content, completed bool) ([]courseModels.ContentProgress, error) {
	if len(contents) == 0 {
		return nil, nil
	}
	ids := make([]uint, len(contents))
	for i, c := range contents {
		ids[i] = c.ID
	}

	var existing []courseModels.ContentProgress
	if err := tx.Where("user_id = ? AND content_id IN ?", userID, ids).Find(&existing).Error; err != nil {
		return nil, apperr.Internal(err, "failed to load content progress")
	}
	previous := make(map[uint]courseModels.ContentProgress, len(existing))
	for _, row := range existing {
		previous[row.ContentID] = row
	}

	now := s.now()
	rows := make([]courseModels.ContentProgress, len(contents))
	for i, c := range contents {
		var prevCompletedAt *time.Time
		if p, ok := previous[c.ID]; ok && p.Completed {
			prevCompletedAt = p.CompletedAt
		}
		rows[i] = courseModels.ContentProgress{
			UserID:       userID,
			ContentID:    c.ID,
			CourseID:     c.CourseID,
			LessonID:     c.LessonID,
			EnrollmentID: enrollmentID,
			Completed:    completed,
			CompletedAt:  stableCompletedAt(completed, prevCompletedAt, now),
			LastAccessed: now,
		}
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "content_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"enrollment_id", "completed", "completed_at", "last_accessed", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return nil, apperr.Internal(err, "failed to save content progress")
	}

	var saved []courseModels.ContentProgress
	if err := tx.Where("user_id = ? AND content_id IN ?", userID, ids).Order("content_id asc").Find(&saved).Error; err != nil {
		return nil, apperr.Internal(err, "failed to reload content progress")
	}
	return saved, nil
}

// recomputeLesson recounts one lesson for one purchase path and upserts the
// row. With neither an enrollment nor a lesson enrollment the result is
// returned without being stored.
func (s *Service) recomputeLesson(tx *gorm.DB, userID, enrollmentID, lessonEnrollmentID, lessonID uint) (*courseModels.LessonProgress, error) {
	var total, done int64
	if err := tx.Model(&courseModels.Content{}).
		Where("lesson_id = ? AND is_published = ? AND is_deleted = ?", lessonID, true, false).
		Count(&total).Error; err != nil {
		return nil, apperr.Internal(err, "failed to count lesson content")
	}
	if err := tx.Model(&courseModels.ContentProgress{}).
		Joins("JOIN contents ON contents.id = content_progresses.content_id").
		Where("content_progresses.user_id = ? AND content_progresses.completed = ?", userID, true).
		Where("contents.lesson_id = ? AND contents.is_published = ? AND contents.is_deleted = ? AND contents.deleted_at IS NULL", lessonID, true, false).
		Count(&done).Error; err != nil {
		return nil, apperr.Internal(err, "failed to count completed lesson content")
	}

	row := courseModels.LessonProgress{
		UserID:             userID,
		EnrollmentID:       enrollmentID,
		LessonID:           lessonID,
		LessonEnrollmentID: lessonEnrollmentID,
		Progress:           percent(done, total),
	}
	row.Completed = row.Progress == 100
	if enrollmentID == 0 && lessonEnrollmentID == 0 {
		if row.Completed {
			now := s.now()
			row.CompletedAt = &now
		}
		return &row, nil
	}

	var previous courseModels.LessonProgress
	err := tx.Where("enrollment_id = ? AND lesson_id = ? AND lesson_enrollment_id = ?", enrollmentID, lessonID, lessonEnrollmentID).
		Limit(1).Find(&previous).Error
	if err != nil {
		return nil, apperr.Internal(err, "failed to load lesson progress")
	}
	var prevCompletedAt *time.Time
	if previous.ID != 0 && previous.Completed {
		prevCompletedAt = previous.CompletedAt
	}
	row.CompletedAt = stableCompletedAt(row.Completed, prevCompletedAt, s.now())

	return s.saveLessonProgress(tx, row)
}

func (s *Service) saveLessonProgress(tx *gorm.DB, row courseModels.LessonProgress) (*courseModels.LessonProgress, error) {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "lesson_id"}, {Name: "lesson_enrollment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"progress", "completed", "completed_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, apperr.Internal(err, "failed to save lesson progress")
	}
	var saved courseModels.LessonProgress
	if err := tx.Where("enrollment_id = ? AND lesson_id = ? AND lesson_enrollment_id = ?", row.EnrollmentID, row.LessonID, row.LessonEnrollmentID).
		First(&saved).Error; err != nil {
		return nil, apperr.Internal(err, "failed to reload lesson progress")
	}
	return &saved, nil
}

// recomputeCourse recounts every published content item of the course,
// lesson-scoped and course-level, and writes the enrollment rollup.
func (s *Service) recomputeCourse(tx *gorm.DB, userID, enrollmentID, courseID uint) (*courseModels.Enrollment, error) {
	var total, done int64
	if err := tx.Model(&courseModels.Content{}).
		Where("course_id = ? AND is_published = ? AND is_deleted = ?", courseID, true, false).
		Where("(lesson_id IS NULL OR lesson_id IN (?))", publishedLessonIDs(tx, courseID)).
		Count(&total).Error; err != nil {
		return nil, apperr.Internal(err, "failed to count course content")
	}
	if err := tx.Model(&courseModels.ContentProgress{}).
		Joins("JOIN contents ON contents.id = content_progresses.content_id").
		Where("content_progresses.user_id = ? AND content_progresses.completed = ?", userID, true).
		Where("contents.course_id = ? AND contents.is_published = ? AND contents.is_deleted = ? AND contents.deleted_at IS NULL", courseID, true, false).
		Where("(contents.lesson_id IS NULL OR contents.lesson_id IN (?))", publishedLessonIDs(tx, courseID)).
		Count(&done).Error; err != nil {
		return nil, apperr.Internal(err, "failed to count completed course content")
	}

	var enrollment courseModels.Enrollment
	if err := tx.Where("id = ?", enrollmentID).First(&enrollment).Error; err != nil {
		return nil, apperr.FromDB(err, "enrollment")
	}

	progress := percent(done, total)
	var prevCompletedAt *time.Time
	if enrollment.Progress == 100 {
		prevCompletedAt = enrollment.CompletedAt
	}
	completedAt := stableCompletedAt(progress == 100, prevCompletedAt, s.now())

	if err := tx.Model(&courseModels.Enrollment{}).Where("id = ?", enrollmentID).Updates(map[string]interface{}{
		"progress":           progress,
		"completed_contents": int(done),
		"total_contents":     int(total),
		"completed_at":       completedAt,
	}).Error; err != nil {
		return nil, apperr.Internal(err, "failed to update enrollment progress")
	}

	enrollment.Progress = progress
	enrollment.CompletedContents = int(done)
	enrollment.TotalContents = int(total)
	enrollment.CompletedAt = completedAt
	return &enrollment, nil
}

// rollup recomputes the lesson rows of every purchase path the grant holds,
// then the course rollup when a whole-course enrollment exists.
func (s *Service) rollup(tx *gorm.DB, g *access.Grant, lessonID *uint) ([]courseModels.LessonProgress, *courseModels.Enrollment, error) {
	var lessons []courseModels.LessonProgress
	if lessonID != nil {
		if g.Enrollment != nil {
			lp, err := s.recomputeLesson(tx, g.UserID, g.Enrollment.ID, 0, *lessonID)
			if err != nil {
				return nil, nil, err
			}
			lessons = append(lessons, *lp)
		}
		if g.LessonEnrollment != nil && g.LessonEnrollment.LessonID == *lessonID {
			lp, err := s.recomputeLesson(tx, g.UserID, 0, g.LessonEnrollment.ID, *lessonID)
			if err != nil {
				return nil, nil, err
			}
			lessons = append(lessons, *lp)
		}
	}
	if g.Enrollment == nil {
		return lessons, nil, nil
	}
	enrollment, err := s.recomputeCourse(tx, g.UserID, g.Enrollment.ID, g.Course.ID)
	if err != nil {
		return nil, nil, err
	}
	return lessons, enrollment, nil
}
