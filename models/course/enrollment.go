package course

import (
	"time"

	"gorm.io/gorm"
)

const (
	EnrollmentActive    = "ACTIVE"
	EnrollmentSuspended = "SUSPENDED"
	EnrollmentExpired   = "EXPIRED"
	EnrollmentRefunded  = "REFUNDED"
)

// Enrollment binds a user to a course. Progress and CompletedAt are written
// only by the progress aggregator and by an explicit reset.
type Enrollment struct {
	gorm.Model
	UserID            uint       `json:"user_id" gorm:"index;not null"`
	CourseID          uint       `json:"course_id" gorm:"index;not null"`
	Status            string     `json:"status" gorm:"default:'ACTIVE'"` // ACTIVE, SUSPENDED, EXPIRED, REFUNDED
	Progress          int        `json:"progress" gorm:"default:0"`      // 0-100
	CompletedContents int        `json:"completed_contents" gorm:"default:0"`
	TotalContents     int        `json:"total_contents" gorm:"default:0"`
	CompletedAt       *time.Time `json:"completed_at"`
	IsDeleted         bool       `gorm:"default:false"`
}

// IsCompleted mirrors progress == 100.
func (e Enrollment) IsCompleted() bool {
	return e.Progress == 100
}

// LessonEnrollment is a standalone purchase of a single lesson.
type LessonEnrollment struct {
	gorm.Model
	UserID    uint   `json:"user_id" gorm:"index;not null"`
	CourseID  uint   `json:"course_id" gorm:"index;not null"`
	LessonID  uint   `json:"lesson_id" gorm:"index;not null"`
	Status    string `json:"status" gorm:"default:'ACTIVE'"`
	IsDeleted bool   `gorm:"default:false"`
}
