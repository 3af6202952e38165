package course

import "gorm.io/gorm"

// Course is owned by the course CRUD layer; this subsystem only reads it.
type Course struct {
	gorm.Model
	Title        string `json:"title"`
	Description  string `json:"description"`
	CenterID     *uint  `json:"center_id" gorm:"index"`
	InstructorID uint   `json:"instructor_id" gorm:"index"`
	Status       string `json:"status" gorm:"default:'DRAFT'"` // DRAFT, ACTIVE, INACTIVE
	ThumbnailURL string `json:"thumbnail_url"`
	IsPublished  bool   `json:"is_published" gorm:"default:false"`
	IsDeleted    bool   `gorm:"default:false"`
}

// Lesson groups content inside a course.
type Lesson struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"`
	IsFree      bool   `json:"is_free" gorm:"default:false"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `gorm:"default:false"`
}
