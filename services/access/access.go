// Package access resolves what a caller may do with a user's learning state:
// the course, the covering enrollments and whether the caller administers it.
package access

import (
	"errors"

	courseModels "coursehub/models/course"
	"coursehub/services/actor"
	"coursehub/services/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Grant is the resolved access of one target user to one course.
type Grant struct {
	Course           courseModels.Course
	UserID           uint
	Admin            bool
	Enrollment       *courseModels.Enrollment
	LessonEnrollment *courseModels.LessonEnrollment
}

// Covered reports whether an active enrollment covers the requested scope.
func (g *Grant) Covered() bool {
	return g.Enrollment != nil || g.LessonEnrollment != nil
}

// Allowed reports whether the target may use the scope at all.
func (g *Grant) Allowed() bool {
	return g.Admin || g.Covered()
}

func (g *Grant) EnrollmentID() uint {
	if g.Enrollment == nil {
		return 0
	}
	return g.Enrollment.ID
}

func (g *Grant) LessonEnrollmentID() uint {
	if g.LessonEnrollment == nil {
		return 0
	}
	return g.LessonEnrollment.ID
}

// Options tunes Resolve.
type Options struct {
	// LessonID also looks up a standalone purchase of this lesson.
	LessonID *uint
	// Lock takes a row lock on the enrollment for the rest of the transaction.
	Lock bool
}

// IsCourseAdmin reports whether a administers the course.
func IsCourseAdmin(a actor.Actor, c *courseModels.Course) bool {
	return a.AdministersCenter(c.CenterID)
}

// CanGrade reports whether a may grade submissions of the course.
func CanGrade(a actor.Actor, c *courseModels.Course) bool {
	return IsCourseAdmin(a, c) || (c.InstructorID != 0 && c.InstructorID == a.UserID)
}

// LoadCourse returns a non-deleted course.
func LoadCourse(tx *gorm.DB, courseID uint) (*courseModels.Course, error) {
	var c courseModels.Course
	if err := tx.Where("id = ? AND is_deleted = ?", courseID, false).First(&c).Error; err != nil {
		return nil, apperr.FromDB(err, "course")
	}
	return &c, nil
}

// Resolve loads the course and the target user's active enrollments. Acting
// on another user's state requires administering the course.
func Resolve(tx *gorm.DB, a actor.Actor, targetUserID, courseID uint, opts Options) (*Grant, error) {
	c, err := LoadCourse(tx, courseID)
	if err != nil {
		return nil, err
	}
	g := &Grant{Course: *c, UserID: targetUserID, Admin: IsCourseAdmin(a, c)}
	if targetUserID != a.UserID && !g.Admin {
		return nil, apperr.Forbidden("You cannot act on another user's progress!")
	}

	q := tx
	if opts.Lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var enrollment courseModels.Enrollment
	err = q.Where("user_id = ? AND course_id = ? AND status = ? AND is_deleted = ?",
		targetUserID, courseID, courseModels.EnrollmentActive, false).
		Order("id asc").First(&enrollment).Error
	switch {
	case err == nil:
		g.Enrollment = &enrollment
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.Internal(err, "failed to load enrollment")
	}

	if opts.LessonID != nil {
		var le courseModels.LessonEnrollment
		err = tx.Where("user_id = ? AND lesson_id = ? AND status = ? AND is_deleted = ?",
			targetUserID, *opts.LessonID, courseModels.EnrollmentActive, false).
			Order("id asc").First(&le).Error
		switch {
		case err == nil:
			g.LessonEnrollment = &le
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apperr.Internal(err, "failed to load lesson enrollment")
		}
	}
	return g, nil
}

// RequireAdmin fails FORBIDDEN unless a administers the course.
func RequireAdmin(a actor.Actor, c *courseModels.Course) error {
	if !IsCourseAdmin(a, c) {
		return apperr.Forbidden("Access denied! Admin only.")
	}
	return nil
}
