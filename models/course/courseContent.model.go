package course

import "gorm.io/gorm"

const (
	ContentTypeText  = "TEXT"
	ContentTypeVideo = "VIDEO"
	ContentTypeImage = "IMAGE"
	ContentTypePDF   = "PDF"
	ContentTypeQuiz  = "QUIZ"
)

// Content is a single learning item. LessonID is nil for course-level content.
type Content struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	LessonID    *uint  `json:"lesson_id" gorm:"index"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ContentType string `json:"content_type" gorm:"default:'TEXT'"` // TEXT, VIDEO, IMAGE, PDF, QUIZ
	TextContent string `json:"text_content" gorm:"type:text"`
	VideoURL    string `json:"video_url"`
	ImageURL    string `json:"image_url"`
	QuizID      *uint  `json:"quiz_id" gorm:"index"` // set for QUIZ content
	OrderIndex  int    `json:"order_index" gorm:"default:0"`
	IsFree      bool   `json:"is_free" gorm:"default:false"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `gorm:"default:false"`
}

// IsQuiz reports whether the content item wraps a quiz.
func (c Content) IsQuiz() bool {
	return c.ContentType == ContentTypeQuiz
}
