// Package certificate issues course certificates once the progress
// aggregator reports a finished enrollment.
package certificate

import (
	"context"
	"errors"
	"sync"
	"time"

	"coursehub/models"
	courseModels "coursehub/models/course"
	"coursehub/services/access"
	"coursehub/services/actor"
	"coursehub/services/apperr"
	"coursehub/services/notify"
	"coursehub/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// notifyTimeout bounds the certificate e-mail, retries included.
const notifyTimeout = 15 * time.Second

type Service struct {
	db       *gorm.DB
	notifier notify.Notifier
	now      func() time.Time
	pending  sync.WaitGroup
}

func NewService(db *gorm.DB, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Service{db: db, notifier: notifier, now: time.Now}
}

// Flush waits for in-flight notifications.
func (s *Service) Flush() {
	s.pending.Wait()
}

// Request files a certificate request for the actor's finished enrollment.
func (s *Service) Request(ctx context.Context, a actor.Actor, courseID uint) (*courseModels.CertificateRequest, error) {
	var request *courseModels.CertificateRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := access.Resolve(tx, a, a.UserID, courseID, access.Options{Lock: true})
		if err != nil {
			return err
		}
		if g.Enrollment == nil {
			return apperr.Forbidden("User not enrolled in this course!")
		}
		if !g.Enrollment.IsCompleted() {
			return apperr.BadRequest("Please complete the course before requesting a certificate! (%d%%)", g.Enrollment.Progress)
		}

		var existing courseModels.CertificateRequest
		err = tx.Where("user_id = ? AND course_id = ? AND status IN ? AND is_deleted = ?", a.UserID, courseID,
			[]string{courseModels.CertificatePending, courseModels.CertificateApproved}, false).First(&existing).Error
		switch {
		case err == nil && existing.Status == courseModels.CertificatePending:
			return apperr.Conflict("Certificate request already pending!")
		case err == nil:
			return apperr.Conflict("Certificate already issued!")
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return apperr.Internal(err, "failed to load certificate requests")
		}

		request = &courseModels.CertificateRequest{
			UserID:       a.UserID,
			CourseID:     courseID,
			EnrollmentID: g.Enrollment.ID,
			Status:       courseModels.CertificatePending,
			RequestedAt:  s.now(),
		}
		if err := tx.Create(request).Error; err != nil {
			return apperr.FromDB(err, "certificate request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// lockPending loads a pending request and checks that a administers its course.
func lockPending(tx *gorm.DB, a actor.Actor, requestID uint) (*courseModels.CertificateRequest, *courseModels.Course, error) {
	var request courseModels.CertificateRequest
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_deleted = ?", requestID, false).First(&request).Error; err != nil {
		return nil, nil, apperr.FromDB(err, "certificate request")
	}
	course, err := access.LoadCourse(tx, request.CourseID)
	if err != nil {
		return nil, nil, err
	}
	if err := access.RequireAdmin(a, course); err != nil {
		return nil, nil, err
	}
	if request.Status != courseModels.CertificatePending {
		return nil, nil, apperr.BadRequest("Request is not pending!")
	}
	return &request, course, nil
}

// Approve issues a numbered certificate and mails it in the background after
// commit.
func (s *Service) Approve(ctx context.Context, a actor.Actor, requestID uint) (*courseModels.Certificate, error) {
	var (
		cert   *courseModels.Certificate
		course *courseModels.Course
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, c, err := lockPending(tx, a, requestID)
		if err != nil {
			return err
		}
		course = c

		now := s.now()
		if err := tx.Model(request).Updates(map[string]interface{}{
			"status":      courseModels.CertificateApproved,
			"reviewed_at": now,
			"reviewed_by": a.UserID,
		}).Error; err != nil {
			return apperr.Internal(err, "failed to approve request")
		}

		cert = &courseModels.Certificate{
			UserID:            request.UserID,
			CourseID:          request.CourseID,
			EnrollmentID:      request.EnrollmentID,
			RequestID:         request.ID,
			CertificateNumber: utils.GenerateCertificateNumber(now),
			IssuedAt:          now,
		}
		if err := tx.Create(cert).Error; err != nil {
			return apperr.FromDB(err, "certificate")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := notify.CertificateIssued{
		UserID:            cert.UserID,
		CourseID:          cert.CourseID,
		CourseTitle:       course.Title,
		CertificateNumber: cert.CertificateNumber,
	}
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", cert.UserID, false).Limit(1).Find(&user).Error; err == nil {
		ev.UserName, ev.UserEmail = user.Name, user.Email
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.notifier.CertificateIssued(nctx, ev); err != nil {
			utils.Logger.Warn("Certificate notification failed", "certificate_number", ev.CertificateNumber, "error", err)
		}
	}()
	return cert, nil
}

func (s *Service) Reject(ctx context.Context, a actor.Actor, requestID uint, reason string) (*courseModels.CertificateRequest, error) {
	var request *courseModels.CertificateRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if request, _, err = lockPending(tx, a, requestID); err != nil {
			return err
		}
		now, reviewer := s.now(), a.UserID
		request.Status = courseModels.CertificateRejected
		request.RejectionReason = reason
		request.ReviewedAt = &now
		request.ReviewedBy = &reviewer
		if err := tx.Save(request).Error; err != nil {
			return apperr.Internal(err, "failed to reject request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

type MyCertificates struct {
	Certificates    []courseModels.Certificate `json:"certificates"`
	PendingRequests int64                      `json:"pending_requests"`
}

func (s *Service) ListMine(ctx context.Context, a actor.Actor) (*MyCertificates, error) {
	db := s.db.WithContext(ctx)
	out := &MyCertificates{Certificates: []courseModels.Certificate{}}
	if err := db.Where("user_id = ? AND is_deleted = ?", a.UserID, false).
		Order("issued_at desc").Find(&out.Certificates).Error; err != nil {
		return nil, apperr.Internal(err, "failed to fetch certificates")
	}
	if err := db.Model(&courseModels.CertificateRequest{}).
		Where("user_id = ? AND status = ? AND is_deleted = ?", a.UserID, courseModels.CertificatePending, false).
		Count(&out.PendingRequests).Error; err != nil {
		return nil, apperr.Internal(err, "failed to count certificate requests")
	}
	return out, nil
}

type PendingPage struct {
	Requests []courseModels.CertificateRequest `json:"requests"`
	Total    int64                             `json:"total"`
	Page     int                               `json:"page"`
	Limit    int                               `json:"limit"`
}

// ListPending pages through pending requests of the courses a administers,
// oldest first.
func (s *Service) ListPending(ctx context.Context, a actor.Actor, page, limit int) (*PendingPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	db := s.db.WithContext(ctx)
	q := db.Model(&courseModels.CertificateRequest{}).
		Where("status = ? AND is_deleted = ?", courseModels.CertificatePending, false)
	switch {
	case a.IsPlatformAdmin():
	case a.HasRole(actor.RoleCenterAdmin) && a.CenterID != nil:
		q = q.Where("course_id IN (?)", db.Model(&courseModels.Course{}).Select("id").Where("center_id = ?", *a.CenterID))
	default:
		return nil, apperr.Forbidden("Access denied! Admin only.")
	}
	q = q.Session(&gorm.Session{})

	out := &PendingPage{Requests: []courseModels.CertificateRequest{}, Page: page, Limit: limit}
	if err := q.Count(&out.Total).Error; err != nil {
		return nil, apperr.Internal(err, "failed to count requests")
	}
	if err := q.Order("requested_at asc").Offset((page - 1) * limit).Limit(limit).Find(&out.Requests).Error; err != nil {
		return nil, apperr.Internal(err, "failed to fetch requests")
	}
	return out, nil
}
