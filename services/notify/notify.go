// Package notify delivers best-effort notifications once grading or
// certification has committed.
package notify

import (
	"context"
	"errors"
	"time"
)

// SubmissionGraded describes a quiz attempt that reached GRADED.
type SubmissionGraded struct {
	SubmissionID uint      `json:"submission_id"`
	QuizID       uint      `json:"quiz_id"`
	QuizTitle    string    `json:"quiz_title"`
	CourseID     uint      `json:"course_id"`
	UserID       uint      `json:"user_id"`
	UserName     string    `json:"-"`
	UserEmail    string    `json:"-"`
	Attempt      int       `json:"attempt"`
	Score        int       `json:"score"`
	TotalPoints  int       `json:"total_points"`
	Passed       bool      `json:"passed"`
	Manual       bool      `json:"manual"`
	GradedAt     time.Time `json:"graded_at"`
}

// CertificateIssued describes an approved certificate request.
type CertificateIssued struct {
	UserID            uint
	UserName          string
	UserEmail         string
	CourseID          uint
	CourseTitle       string
	CertificateNumber string
}

type Notifier interface {
	SubmissionGraded(ctx context.Context, ev SubmissionGraded) error
	CertificateIssued(ctx context.Context, ev CertificateIssued) error
}

// Noop drops every notification.
type Noop struct{}

func (Noop) SubmissionGraded(context.Context, SubmissionGraded) error   { return nil }
func (Noop) CertificateIssued(context.Context, CertificateIssued) error { return nil }

// Multi fans a notification out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) SubmissionGraded(ctx context.Context, ev SubmissionGraded) error {
	var errs []error
	for _, n := range m {
		if err := n.SubmissionGraded(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) CertificateIssued(ctx context.Context, ev CertificateIssued) error {
	var errs []error
	for _, n := range m {
		if err := n.CertificateIssued(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
