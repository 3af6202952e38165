package course

import (
	"time"

	"gorm.io/gorm"
)

const (
	CertificatePending  = "PENDING"
	CertificateApproved = "APPROVED"
	CertificateRejected = "REJECTED"
)

// CertificateRequest may only be filed against an enrollment at 100%
// progress. At most one PENDING or APPROVED request exists per user and course.
type CertificateRequest struct {
	gorm.Model
	UserID          uint       `json:"user_id" gorm:"not null;index:idx_certificate_request_user_course"`
	CourseID        uint       `json:"course_id" gorm:"not null;index:idx_certificate_request_user_course"`
	EnrollmentID    uint       `json:"enrollment_id" gorm:"not null;index"`
	Status          string     `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	RequestedAt     time.Time  `json:"requested_at"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	ReviewedBy      *uint      `json:"reviewed_by"`
	RejectionReason string     `json:"rejection_reason,omitempty" gorm:"type:varchar(500)"`
	IsDeleted       bool       `json:"-" gorm:"default:false"`
}

// Certificate is the issued document of an approved request.
type Certificate struct {
	gorm.Model
	UserID            uint      `json:"user_id" gorm:"not null;index"`
	CourseID          uint      `json:"course_id" gorm:"not null;index"`
	EnrollmentID      uint      `json:"enrollment_id" gorm:"not null"`
	RequestID         uint      `json:"request_id" gorm:"not null;uniqueIndex"`
	CertificateNumber string    `json:"certificate_number" gorm:"type:varchar(40);uniqueIndex"`
	IssuedAt          time.Time `json:"issued_at"`
	IsDeleted         bool      `json:"-" gorm:"default:false"`
}
