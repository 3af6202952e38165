// Package progress keeps per-user completion state for content, lessons and
// courses and rolls it up on every completion event.
package progress

import (
	"context"
	"math"
	"time"

	courseModels "coursehub/models/course"
	"coursehub/services/apperr"

	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// WithClock replaces the time source, used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// percent is round(done/total*100), 0 when there is nothing to complete.
func percent(done, total int64) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(float64(done) / float64(total) * 100))
	if p > 100 {
		return 100
	}
	return p
}

// stableCompletedAt keeps the first completion time across repeated marks.
func stableCompletedAt(completed bool, previous *time.Time, now time.Time) *time.Time {
	if !completed {
		return nil
	}
	if previous != nil {
		return previous
	}
	t := now
	return &t
}

func loadPublishedContent(tx *gorm.DB, contentID uint) (*courseModels.Content, error) {
	var content courseModels.Content
	if err := tx.Where("id = ? AND is_deleted = ? AND is_published = ?", contentID, false, true).
		First(&content).Error; err != nil {
		return nil, apperr.FromDB(err, "content")
	}
	return &content, nil
}

func loadLesson(tx *gorm.DB, lessonID uint) (*courseModels.Lesson, error) {
	var lesson courseModels.Lesson
	if err := tx.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return nil, apperr.FromDB(err, "lesson")
	}
	return &lesson, nil
}

// publishedLessonIDs is a subquery over the lessons the aggregator counts.
func publishedLessonIDs(tx *gorm.DB, courseID uint) *gorm.DB {
	return tx.Model(&courseModels.Lesson{}).Select("id").
		Where("course_id = ? AND is_published = ? AND is_deleted = ?", courseID, true, false)
}
