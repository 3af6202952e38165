package courseRoutes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"coursehub/config"
	controllers "coursehub/controllers/course"
	"coursehub/database/dbtest"
	"coursehub/middleware"
	"coursehub/models"
	courseModels "coursehub/models/course"
	"coursehub/services/actor"
	"coursehub/services/assessment"
	"coursehub/services/audit"
	"coursehub/services/certificate"
	"coursehub/services/progress"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type harness struct {
	t   *testing.T
	db  *gorm.DB
	app *fiber.App
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: "routes-test"}
	db := dbtest.New(t)
	p := progress.NewService(db)
	ctl := controllers.New(p, assessment.NewService(db, p, nil), certificate.NewService(db, nil), audit.NewRecorder(db))

	app := fiber.New()
	app.Use(middleware.RequestID)
	SetupCourseRoutes(app, ctl)
	SetupAdminCourseRoutes(app, ctl)
	return &harness{t: t, db: db, app: app}
}

func (h *harness) token(userID uint, role string) string {
	h.t.Helper()
	tok, err := middleware.GenerateJWT(userID, "user", role, fmt.Sprintf("u%d@example.com", userID), nil)
	require.NoError(h.t, err)
	return tok
}

type reply struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (h *harness) do(method, path, token string, body interface{}) (int, reply) {
	h.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	var out reply
	require.NoError(h.t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestLearnerJourney(t *testing.T) {
	h := newHarness(t)
	const studentID, instructorID, adminID = 1, 7, 99
	student := h.token(studentID, actor.RoleUser)
	instructor := h.token(instructorID, actor.RoleInstructor)
	admin := h.token(adminID, actor.RoleAdmin)

	course := dbtest.Course(t, h.db, func(c *courseModels.Course) { c.InstructorID = instructorID })
	lesson := dbtest.Lesson(t, h.db, course.ID, 1)
	quiz := dbtest.Quiz(t, h.db, course.ID, &lesson.ID)
	mcq, right, _ := dbtest.MCQ(t, h.db, quiz.ID, 2, 1)
	essay := dbtest.Question(t, h.db, quiz.ID, courseModels.QuestionEssay, 3, 2)
	quizItem := dbtest.Content(t, h.db, course.ID, &lesson.ID, courseModels.ContentTypeQuiz, func(c *courseModels.Content) { c.QuizID = &quiz.ID })
	reading := dbtest.Content(t, h.db, course.ID, &lesson.ID, courseModels.ContentTypeText)
	dbtest.Enroll(t, h.db, studentID, course.ID)

	// The reading is locked behind the quiz.
	status, res := h.do("GET", fmt.Sprintf("/course/%d/content", course.ID), student, nil)
	require.Equal(t, fiber.StatusOK, status, res.Message)
	var view progress.CourseContentView
	require.NoError(t, json.Unmarshal(res.Data, &view))
	require.Len(t, view.Lessons, 1)
	for _, cv := range view.Lessons[0].Contents {
		if cv.ID == reading.ID {
			assert.False(t, cv.IsAccessible)
			assert.Empty(t, cv.TextContent)
		}
	}

	status, res = h.do("POST", fmt.Sprintf("/quiz/%d/submit", quiz.ID), student, fiber.Map{"answers": []fiber.Map{
		{"type": "MCQ", "question_id": mcq.ID, "choice_id": right.ID},
		{"type": "ESSAY", "question_id": essay.ID, "text": "Goroutines are cheap."},
	}})
	require.Equal(t, fiber.StatusCreated, status, res.Message)
	var sub courseModels.QuizSubmission
	require.NoError(t, json.Unmarshal(res.Data, &sub))
	assert.Equal(t, courseModels.SubmissionOpen, sub.Status)
	assert.Nil(t, sub.Score)

	status, _ = h.do("GET", "/admin/course/submissions", student, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, res = h.do("GET", fmt.Sprintf("/admin/course/submissions?quiz_id=%d&status=open", quiz.ID), instructor, nil)
	require.Equal(t, fiber.StatusOK, status, res.Message)
	var listing struct {
		Submissions []courseModels.QuizSubmission `json:"submissions"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &listing))
	require.Len(t, listing.Submissions, 1)

	var essayAnswer uint
	for _, a := range listing.Submissions[0].Answers {
		if a.QuestionID == essay.ID {
			essayAnswer = a.ID
		}
	}
	require.NotZero(t, essayAnswer)

	status, res = h.do("POST", fmt.Sprintf("/admin/course/submissions/%d/grade", sub.ID), instructor, fiber.Map{
		"grades": []fiber.Map{{"answer_id": essayAnswer, "awarded_points": 3, "feedback": "Nice"}},
	})
	require.Equal(t, fiber.StatusOK, status, res.Message)
	var report assessment.GradeReport
	require.NoError(t, json.Unmarshal(res.Data, &report))
	assert.True(t, report.Finalized)
	require.NotNil(t, report.Submission.Score)
	assert.Equal(t, 100, *report.Submission.Score)

	// Passing the quiz completed its content item and unlocked the reading.
	status, _ = h.do("POST", fmt.Sprintf("/content/%d/complete", reading.ID), student, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, res = h.do("GET", fmt.Sprintf("/course/%d/progress", course.ID), student, nil)
	require.Equal(t, fiber.StatusOK, status)
	var prog progress.CourseProgressView
	require.NoError(t, json.Unmarshal(res.Data, &prog))
	assert.Equal(t, 100, prog.Enrollment.Progress)
	assert.ElementsMatch(t, []uint{quizItem.ID, reading.ID}, prog.CompletedContentIDs)

	status, res = h.do("POST", fmt.Sprintf("/course/%d/certificate/request", course.ID), student, nil)
	require.Equal(t, fiber.StatusCreated, status, res.Message)
	var request courseModels.CertificateRequest
	require.NoError(t, json.Unmarshal(res.Data, &request))

	status, _ = h.do("POST", fmt.Sprintf("/admin/course/certificates/%d/approve", request.ID), instructor, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, res = h.do("POST", fmt.Sprintf("/admin/course/certificates/%d/approve", request.ID), admin, nil)
	require.Equal(t, fiber.StatusOK, status, res.Message)

	status, res = h.do("GET", "/user/certificates", student, nil)
	require.Equal(t, fiber.StatusOK, status)
	var mine certificate.MyCertificates
	require.NoError(t, json.Unmarshal(res.Data, &mine))
	assert.Len(t, mine.Certificates, 1)

	var audited int64
	require.NoError(t, h.db.Model(&models.AuditLog{}).Where("outcome = ?", audit.OutcomeOK).Count(&audited).Error)
	assert.EqualValues(t, 5, audited)
	require.NoError(t, h.db.Model(&models.AuditLog{}).Where("outcome = ?", "FORBIDDEN").Count(&audited).Error)
	assert.EqualValues(t, 1, audited)
}

func TestRoutesRejectBadInput(t *testing.T) {
	h := newHarness(t)
	student := h.token(1, actor.RoleUser)
	admin := h.token(99, actor.RoleAdmin)

	status, _ := h.do("GET", "/course/1/content", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, res := h.do("POST", "/quiz/1/submit", student, fiber.Map{"answers": []fiber.Map{}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.False(t, res.Status)

	status, res = h.do("POST", "/quiz/1/submit", student, fiber.Map{"answers": []fiber.Map{
		{"type": "ESSAY", "question_id": 1, "choice_id": 2},
	}})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, res.Message, "essay answers cannot select choices")

	status, _ = h.do("GET", "/course/424242/content", student, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = h.do("POST", "/admin/course/enrollment/5/reset", admin, fiber.Map{"scope": "ENROLLMENT"})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = h.do("POST", "/admin/course/enrollment/5/sync", student, fiber.Map{"course_id": 1})
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = h.do("POST", "/admin/course/enrollment/5/sync", admin, fiber.Map{"course_id": 1})
	assert.Equal(t, fiber.StatusNotFound, status)
}
