package course

import "time"

// ContentProgress is unique per (user, content). Rows are hard-deleted on
// reset so the unique key never collides with a tombstone.
type ContentProgress struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_content_progress_user_content"`
	ContentID    uint       `json:"content_id" gorm:"not null;uniqueIndex:idx_content_progress_user_content"`
	CourseID     uint       `json:"course_id" gorm:"index;not null"`
	LessonID     *uint      `json:"lesson_id" gorm:"index"`
	EnrollmentID *uint      `json:"enrollment_id" gorm:"index"` // nil for free content
	Completed    bool       `json:"completed" gorm:"default:false"`
	CompletedAt  *time.Time `json:"completed_at"`
	LastAccessed time.Time  `json:"last_accessed"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// LessonProgress is unique per (enrollment, lesson, lesson enrollment).
// EnrollmentID is 0 for a standalone lesson purchase and LessonEnrollmentID
// is 0 for whole-course enrollment progress.
type LessonProgress struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	UserID             uint       `json:"user_id" gorm:"index;not null"`
	EnrollmentID       uint       `json:"enrollment_id" gorm:"not null;default:0;uniqueIndex:idx_lesson_progress_key"`
	LessonID           uint       `json:"lesson_id" gorm:"not null;uniqueIndex:idx_lesson_progress_key"`
	LessonEnrollmentID uint       `json:"lesson_enrollment_id" gorm:"not null;default:0;uniqueIndex:idx_lesson_progress_key"`
	Progress           int        `json:"progress" gorm:"default:0"`
	Completed          bool       `json:"completed" gorm:"default:false"`
	CompletedAt        *time.Time `json:"completed_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
