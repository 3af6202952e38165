// Package dbtest builds throwaway sqlite databases and fixture rows for
// package tests.
package dbtest

import (
	"testing"

	"coursehub/database"
	"coursehub/models"
	courseModels "coursehub/models/course"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// New returns a migrated in-memory database closed at test cleanup.
func New(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func create(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	require.NoError(t, db.Create(v).Error)
}

func User(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	u := &models.User{Name: email, Email: email, Role: role}
	create(t, db, u)
	return u
}

// Course creates a published course. mutate runs before the insert.
func Course(t *testing.T, db *gorm.DB, mutate ...func(*courseModels.Course)) *courseModels.Course {
	t.Helper()
	c := &courseModels.Course{Title: "Course", Status: "ACTIVE", IsPublished: true}
	for _, m := range mutate {
		m(c)
	}
	create(t, db, c)
	return c
}

func Lesson(t *testing.T, db *gorm.DB, courseID uint, order int, mutate ...func(*courseModels.Lesson)) *courseModels.Lesson {
	t.Helper()
	l := &courseModels.Lesson{CourseID: courseID, Title: "Lesson", OrderIndex: order, IsPublished: true}
	for _, m := range mutate {
		m(l)
	}
	create(t, db, l)
	return l
}

// Content creates published content; lessonID nil makes it course-level.
func Content(t *testing.T, db *gorm.DB, courseID uint, lessonID *uint, contentType string, mutate ...func(*courseModels.Content)) *courseModels.Content {
	t.Helper()
	c := &courseModels.Content{
		CourseID:    courseID,
		LessonID:    lessonID,
		Title:       contentType,
		ContentType: contentType,
		TextContent: "body",
		IsPublished: true,
	}
	for _, m := range mutate {
		m(c)
	}
	create(t, db, c)
	return c
}

func Enroll(t *testing.T, db *gorm.DB, userID, courseID uint) *courseModels.Enrollment {
	t.Helper()
	e := &courseModels.Enrollment{UserID: userID, CourseID: courseID, Status: courseModels.EnrollmentActive}
	create(t, db, e)
	return e
}

func EnrollLesson(t *testing.T, db *gorm.DB, userID, courseID, lessonID uint) *courseModels.LessonEnrollment {
	t.Helper()
	le := &courseModels.LessonEnrollment{UserID: userID, CourseID: courseID, LessonID: lessonID, Status: courseModels.EnrollmentActive}
	create(t, db, le)
	return le
}

// Quiz creates a published quiz allowing one attempt with passing score 60.
func Quiz(t *testing.T, db *gorm.DB, courseID uint, lessonID *uint, mutate ...func(*courseModels.Quiz)) *courseModels.Quiz {
	t.Helper()
	q := &courseModels.Quiz{CourseID: courseID, LessonID: lessonID, Title: "Quiz", MaxAttempts: 1, PassingScore: 60, IsPublished: true}
	for _, m := range mutate {
		m(q)
	}
	create(t, db, q)
	return q
}

func Question(t *testing.T, db *gorm.DB, quizID uint, questionType string, points, order int) *courseModels.Question {
	t.Helper()
	q := &courseModels.Question{QuizID: quizID, Type: questionType, Text: "Q", Points: points, OrderIndex: order}
	create(t, db, q)
	return q
}

func Choice(t *testing.T, db *gorm.DB, questionID uint, text string, correct bool) *courseModels.Choice {
	t.Helper()
	c := &courseModels.Choice{QuestionID: questionID, Text: text, IsCorrect: correct}
	create(t, db, c)
	return c
}

// MCQ creates a text MCQ question with one correct and one wrong choice.
func MCQ(t *testing.T, db *gorm.DB, quizID uint, points, order int) (q *courseModels.Question, right, wrong *courseModels.Choice) {
	t.Helper()
	q = Question(t, db, quizID, courseModels.QuestionMCQText, points, order)
	right = Choice(t, db, q.ID, "right", true)
	wrong = Choice(t, db, q.ID, "wrong", false)
	return q, right, wrong
}

func Uint(v uint) *uint {
	return &v
}
