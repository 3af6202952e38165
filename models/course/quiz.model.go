package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QuestionMCQText  = "MCQ_TEXT"
	QuestionMCQImage = "MCQ_IMAGE"
	QuestionEssay    = "ESSAY"
)

const (
	SubmissionOpen            = "OPEN"
	SubmissionPartiallyGraded = "PARTIALLY_GRADED"
	SubmissionGraded          = "GRADED"
)

// Quiz belongs to a lesson, or to the course when LessonID is nil.
type Quiz struct {
	gorm.Model
	CourseID     uint   `json:"course_id" gorm:"index;not null"`
	LessonID     *uint  `json:"lesson_id" gorm:"index"`
	Title        string `json:"title"`
	MaxAttempts  int    `json:"max_attempts" gorm:"not null"` // 0 = unlimited
	PassingScore int    `json:"passing_score" gorm:"not null"`
	TimeLimit    int    `json:"time_limit" gorm:"default:0"` // minutes, 0 = none
	IsPublished  bool   `json:"is_published" gorm:"default:false"`
	IsDeleted    bool   `gorm:"default:false"`
}

type Question struct {
	gorm.Model
	QuizID     uint   `json:"quiz_id" gorm:"index;not null"`
	Type       string `json:"type" gorm:"not null"` // MCQ_TEXT, MCQ_IMAGE, ESSAY
	Text       string `json:"text" gorm:"type:text"`
	ImageURL   string `json:"image_url"`
	Points     int    `json:"points" gorm:"not null;default:1"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
	IsDeleted  bool   `gorm:"default:false"`
}

// IsEssay reports whether the question is graded manually.
func (q Question) IsEssay() bool {
	return q.Type == QuestionEssay
}

// IsMCQ reports whether the question is auto-graded from a choice.
func (q Question) IsMCQ() bool {
	return q.Type == QuestionMCQText || q.Type == QuestionMCQImage
}

type Choice struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	Text       string `json:"text"`
	ImageURL   string `json:"image_url"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
	IsDeleted  bool   `gorm:"default:false"`
}

// QuizSubmission is one attempt by one user. Score stays nil until every
// answer carries awarded points.
type QuizSubmission struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	QuizID        uint           `json:"quiz_id" gorm:"not null;uniqueIndex:idx_submission_attempt"`
	UserID        uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_submission_attempt"`
	AttemptNumber int            `json:"attempt_number" gorm:"not null;uniqueIndex:idx_submission_attempt"`
	CourseID      uint           `json:"course_id" gorm:"index;not null"`
	EnrollmentID  *uint          `json:"enrollment_id" gorm:"index"`
	Status        string         `json:"status" gorm:"not null;default:'OPEN'"`
	StartedAt     time.Time      `json:"started_at"`
	CompletedAt   *time.Time     `json:"completed_at"`
	GradedAt      *time.Time     `json:"graded_at"`
	Score         *int           `json:"score"`
	TotalPoints   int            `json:"total_points"`
	GradingLog    datatypes.JSON `json:"grading_log,omitempty"`
	Answers       []QuizAnswer   `json:"answers,omitempty" gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// QuizAnswer holds exactly one of SelectedChoiceID (MCQ) or TextAnswer (ESSAY).
type QuizAnswer struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	SubmissionID     uint       `json:"submission_id" gorm:"not null;uniqueIndex:idx_answer_submission_question"`
	QuestionID       uint       `json:"question_id" gorm:"not null;uniqueIndex:idx_answer_submission_question"`
	SelectedChoiceID *uint      `json:"selected_choice_id"`
	TextAnswer       *string    `json:"text_answer" gorm:"type:text"`
	IsCorrect        *bool      `json:"is_correct"`
	AwardedPoints    *int       `json:"awarded_points"`
	Feedback         string     `json:"feedback" gorm:"type:text"`
	GradedBy         *uint      `json:"graded_by"`
	GradedAt         *time.Time `json:"graded_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsGraded reports whether points have been awarded.
func (a QuizAnswer) IsGraded() bool {
	return a.AwardedPoints != nil
}
