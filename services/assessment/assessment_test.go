package assessment

import (
	"context"
	"sync"
	"testing"
	"time"

	"coursehub/database/dbtest"
	courseModels "coursehub/models/course"
	"coursehub/services/actor"
	"coursehub/services/apperr"
	"coursehub/services/notify"
	"coursehub/services/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	student = actor.Actor{UserID: 1, Roles: []string{actor.RoleUser}}
	other   = actor.Actor{UserID: 2, Roles: []string{actor.RoleUser}}
	admin   = actor.Actor{UserID: 99, Roles: []string{actor.RoleAdmin}}
)

type recorder struct {
	notify.Noop
	mu     sync.Mutex
	graded []notify.SubmissionGraded
}

func (r *recorder) SubmissionGraded(_ context.Context, ev notify.SubmissionGraded) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.graded = append(r.graded, ev)
	return nil
}

type fixture struct {
	db       *gorm.DB
	svc      *Service
	progress *progress.Service
	notes    *recorder
	course   *courseModels.Course
	lesson   *courseModels.Lesson
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	f := &fixture{db: db, progress: progress.NewService(db), notes: &recorder{}}
	f.svc = NewService(db, f.progress, f.notes)
	f.course = dbtest.Course(t, db, func(c *courseModels.Course) { c.InstructorID = 7 })
	f.lesson = dbtest.Lesson(t, db, f.course.ID, 1)
	dbtest.Enroll(t, db, student.UserID, f.course.ID)
	t.Cleanup(f.svc.Flush)
	return f
}

func pts(v int) *int { return &v }

// graded waits for pending notifications and returns what was sent.
func (f *fixture) graded() []notify.SubmissionGraded {
	f.svc.Flush()
	f.notes.mu.Lock()
	defer f.notes.mu.Unlock()
	return append([]notify.SubmissionGraded(nil), f.notes.graded...)
}

func answerFor(t *testing.T, sub *courseModels.QuizSubmission, questionID uint) courseModels.QuizAnswer {
	t.Helper()
	for _, a := range sub.Answers {
		if a.QuestionID == questionID {
			return a
		}
	}
	t.Fatalf("no answer for question %d", questionID)
	return courseModels.QuizAnswer{}
}

func TestSubmitGradesObjectiveQuizImmediately(t *testing.T) {
	f := newFixture(t)
	quiz := dbtest.Quiz(t, f.db, f.course.ID, &f.lesson.ID)
	q1, right1, _ := dbtest.MCQ(t, f.db, quiz.ID, 2, 1)
	q2, _, wrong2 := dbtest.MCQ(t, f.db, quiz.ID, 3, 2)

	sub, err := f.svc.Submit(context.Background(), student, quiz.ID, []Answer{
		MCQAnswer{QuestionID: q1.ID, ChoiceID: right1.ID},
		MCQAnswer{QuestionID: q2.ID, ChoiceID: wrong2.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, courseModels.SubmissionGraded, sub.Status)
	assert.Equal(t, 1, sub.AttemptNumber)
	assert.Equal(t, 5, sub.TotalPoints)
	require.NotNil(t, sub.Score)
	assert.Equal(t, 40, *sub.Score)
	assert.True(t, *answerFor(t, sub, q1.ID).IsCorrect)
	assert.Equal(t, 0, *answerFor(t, sub, q2.ID).AwardedPoints)

	sent := f.graded()
	require.Len(t, sent, 1)
	assert.False(t, sent[0].Passed)
	assert.False(t, sent[0].Manual)
}

func TestSubmitRespectsMaxAttempts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quiz := dbtest.Quiz(t, f.db, f.course.ID, &f.lesson.ID)
	q, right, _ := dbtest.MCQ(t, f.db, quiz.ID, 1, 1)
	answers := []Answer{MCQAnswer{QuestionID: q.ID, ChoiceID: right.ID}}

	_, err := f.svc.Submit(ctx, student, quiz.ID, answers)
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, student, quiz.ID, answers)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	var count int64
	require.NoError(t, f.db.Model(&courseModels.QuizSubmission{}).Where("quiz_id = ?", quiz.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSubmitUnlimitedAttempts(t *testing.T) {
	f := newFixture(t)
	quiz := dbtest.Quiz(t, f.db, f.course.ID, nil, func(q *courseModels.Quiz) { q.MaxAttempts = 0 })
	q, _, wrong := dbtest.MCQ(t, f.db, quiz.ID, 1, 1)

	for i := 1; i <= 3; i++ {
		sub, err := f.svc.Submit(context.Background(), student, quiz.ID, []Answer{MCQAnswer{QuestionID: q.ID, ChoiceID: wrong.ID}})
		require.NoError(t, err)
		assert.Equal(t, i, sub.AttemptNumber)
	}
}

func TestSubmitStopsAtConfiguredAttemptLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quiz := dbtest.Quiz(t, f.db, f.course.ID, nil, func(q *courseModels.Quiz) { q.MaxAttempts = 3 })
	q, _, wrong := dbtest.MCQ(t, f.db, quiz.ID, 1, 1)
	answers := []Answer{MCQAnswer{QuestionID: q.ID, ChoiceID: wrong.ID}}

	for i := 1; i <= 3; i++ {
		sub, err := f.svc.Submit(ctx, student, quiz.ID, answers)
		require.NoError(t, err)
		assert.Equal(t, i, sub.AttemptNumber)
	}
	_, err := f.svc.Submit(ctx, student, quiz.ID, answers)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	var count int64
	require.NoError(t, f.db.Model(&courseModels.QuizSubmission{}).
		Where("quiz_id = ? AND user_id = ?", quiz.ID, student.UserID).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

type stalled struct {
	notify.Noop
	entered  chan struct{}
	release  chan struct{}
	deadline bool
	err      error
}

func (s *stalled) SubmissionGraded(ctx context.Context, _ notify.SubmissionGraded) error {
	_, s.deadline = ctx.Deadline()
	s.err = ctx.Err()
	close(s.entered)
	<-s.release
	return nil
}

func TestSubmitDoesNotWaitForNotifier(t *testing.T) {
	f := newFixture(t)
	slow := &stalled{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewService(f.db, f.progress, slow)
	quiz := dbtest.Quiz(t, f.db, f.course.ID, nil)
	q, right, _ := dbtest.MCQ(t, f.db, quiz.ID, 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := svc.Submit(ctx, student, quiz.ID, []Answer{MCQAnswer{QuestionID: q.ID, ChoiceID: right.ID}})
	cancel()
	require.NoError(t, err)
	assert.Equal(t, courseModels.SubmissionGraded, sub.Status)

	select {
	case <-slow.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("notifier was never called")
	}
	close(slow.release)
	svc.Flush()
	assert.True(t, slow.deadline, "notification context is bounded")
	assert.NoError(t, slow.err, "notification context outlives the request")
}

func TestSubmitAccessRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quiz := dbtest.Quiz(t, f.db, f.course.ID, &f.lesson.ID)
	q, right, _ := dbtest.MCQ(t, f.db, quiz.ID, 1, 1)
	answers := []Answer{MCQAnswer{QuestionID: q.ID, ChoiceID: right.ID}}

	_, err := f.svc.Submit(ctx, other, quiz.ID, answers)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	hidden := dbtest.Quiz(t, f.db, f.course.ID, nil, func(q *courseModels.Quiz) { q.IsPublished = false })
	_, err = f.svc.Submit(ctx, student, hidden.ID, answers)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.svc.Submit(ctx, student, 4242, answers)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	empty := dbtest.Quiz(t, f.db, f.course.ID, nil)
	_, err = f.svc.Submit(ctx, student, empty.ID, nil)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}

func TestSubmitStandaloneLessonPurchase(t *testing.T) {
	f := newFixture(t)
	buyer := actor.Actor{UserID: 3, Roles: []string{actor.RoleUser}}
	dbtest.EnrollLesson(t, f.db, buyer.UserID, f.course.ID, f.lesson.ID)
	quiz := dbtest.Quiz(t, f.db, f.course.ID, &f.lesson.ID)
	q, right, _ := dbtest.MCQ(t, f.db, quiz.ID, 1, 1)

	sub, err := f.svc.Submit(context.Background(), buyer, quiz.ID, []Answer{MCQAnswer{QuestionID: q.ID, ChoiceID: right.ID}})
	require.NoError(t, err)
	assert.Nil(t, sub.EnrollmentID)
	assert.Equal(t, 100, *sub.Score)
}

func TestSubmitValidatesAnswers(t *testing.T) {
	f := newFixture(t)
	quiz := dbtest.Quiz(t, f.db, f.course.ID, nil, func(q *courseModels.Quiz) { q.MaxAttempts = 0 })
	q1, right1, _ := dbtest.MCQ(t, f.db, quiz.ID, 1, 1)
	q2, right2, _ := dbtest.MCQ(t, f.db, quiz.ID, 1, 2)
	essay := dbtest.Question(t, f.db, quiz.ID, courseModels.QuestionEssay, 2, 3)

	cases := []struct {
		name    string
		answers []Answer
		kind    apperr.Kind
	}{
		{"missing question", []Answer{
			MCQAnswer{QuestionID: q1.ID, ChoiceID: right1.ID},
			EssayAnswer{QuestionID: essay.ID, Text: "x"},
		}, apperr.KindBadRequest},
		{"duplicate answer", []Answer{
			MCQAnswer{QuestionID: q1.ID, ChoiceID: right1.ID},
			MCQAnswer{QuestionID: q1.ID, ChoiceID: right1.ID},
			MCQAnswer{QuestionID: q2.ID, ChoiceID: right2.ID},
			EssayAnswer{QuestionID: essay.ID, Text: "x"},
		}, apperr.KindBadRequest},
		{"choice of another question", []Answer{
			MCQAnswer{QuestionID: q1.ID, ChoiceID: right2.ID},
			MCQAnswer{QuestionID: q2.ID, ChoiceID: right2.ID},
			EssayAnswer{QuestionID: essay.ID, Text: "x"},
		}, apperr.KindBadRequest},
		{"unknown choice", []Answer{
			MCQAnswer{QuestionID: q1.ID, ChoiceID: 9999},
			MCQAnswer{QuestionID: q2.ID, ChoiceID: right2.ID},
			EssayAnswer{QuestionID: essay.ID, Text: "x"},
		}, apperr.KindNotFound},
		{"unknown question", []Answer{
			MCQAnswer{QuestionID: 9999, ChoiceID: right1.ID},
		}, apperr.KindNotFound},
		{"wrong variant", []Answer{
			MCQAnswer{QuestionID: q1.ID, ChoiceID: right1.ID},
			MCQAnswer{QuestionID: q2.ID, ChoiceID: right2.ID},
			MCQAnswer{QuestionID: essay.ID, ChoiceID: right1.ID},
		}, apperr.KindBadRequest},
		{"empty essay", []Answer{
			MCQAnswer{QuestionID: q1.ID, ChoiceID: right1.ID},
			MCQAnswer{QuestionID: q2.ID, ChoiceID: right2.ID},
			EssayAnswer{QuestionID: essay.ID, Text: "   "},
		}, apperr.KindBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Submit(context.Background(), student, quiz.ID, tc.answers)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&courseModels.QuizSubmission{}).Count(&count).Error)
	assert.Zero(t, count)
}

// mixedQuiz has three one-point MCQs and a two-point essay.
func mixedQuiz(t *testing.T, f *fixture) (*courseModels.Quiz, []Answer, *courseModels.Question) {
	t.Helper()
	quiz := dbtest.Quiz(t, f.db, f.course.ID, &f.lesson.ID)
	var answers []Answer
	for i := 0; i < 3; i++ {
		q, right, wrong := dbtest.MCQ(t, f.db, quiz.ID, 1, i)
		choice := right
		if i == 2 {
			choice = wrong
		}
		answers = append(answers, MCQAnswer{QuestionID: q.ID, ChoiceID: choice.ID})
	}
	essay := dbtest.Question(t, f.db, quiz.ID, courseModels.QuestionEssay, 2, 3)
	answers = append(answers, EssayAnswer{QuestionID: essay.ID, Text: "My answer"})
	return quiz, answers, essay
}

func TestGradeFinalizesMixedSubmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quiz, answers, essay := mixedQuiz(t, f)
	quizItem := dbtest.Content(t, f.db, f.course.ID, &f.lesson.ID, courseModels.ContentTypeQuiz, func(c *courseModels.Content) { c.QuizID = &quiz.ID })
	video := dbtest.Content(t, f.db, f.course.ID, &f.lesson.ID, courseModels.ContentTypeVideo)

	sub, err := f.svc.Submit(ctx, student, quiz.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, courseModels.SubmissionOpen, sub.Status)
	assert.Nil(t, sub.Score)
	assert.Empty(t, f.graded())

	essayAnswer := answerFor(t, sub, essay.ID)
	report, err := f.svc.Grade(ctx, admin, sub.ID, []GradeInput{{AnswerID: essayAnswer.ID, AwardedPoints: pts(2), Feedback: "Good"}})
	require.NoError(t, err)
	assert.Equal(t, []uint{essayAnswer.ID}, report.Applied)
	assert.Empty(t, report.Errors)
	assert.True(t, report.Finalized)
	assert.Equal(t, courseModels.SubmissionGraded, report.Submission.Status)
	require.NotNil(t, report.Submission.Score)
	assert.Equal(t, 80, *report.Submission.Score)

	graded := answerFor(t, report.Submission, essay.ID)
	assert.True(t, *graded.IsCorrect)
	assert.Equal(t, admin.UserID, *graded.GradedBy)

	sent := f.graded()
	require.Len(t, sent, 1)
	assert.True(t, sent[0].Passed)
	assert.True(t, sent[0].Manual)

	view, err := f.progress.GetCourseContent(ctx, student, student.UserID, f.course.ID)
	require.NoError(t, err)
	require.Len(t, view.Lessons, 1)
	lv := view.Lessons[0]
	assert.True(t, lv.HasPassedQuiz)
	assert.Equal(t, 50, lv.Progress)
	for _, cv := range lv.Contents {
		switch cv.ID {
		case quizItem.ID:
			assert.True(t, cv.Completed)
		case video.ID:
			assert.True(t, cv.IsAccessible)
			assert.False(t, cv.Completed)
		}
	}
}

func TestGradePartialCreditIsNotCorrect(t *testing.T) {
	f := newFixture(t)
	quiz, answers, essay := mixedQuiz(t, f)
	sub, err := f.svc.Submit(context.Background(), student, quiz.ID, answers)
	require.NoError(t, err)

	report, err := f.svc.Grade(context.Background(), admin, sub.ID, []GradeInput{{AnswerID: answerFor(t, sub, essay.ID).ID, AwardedPoints: pts(1)}})
	require.NoError(t, err)
	assert.False(t, *answerFor(t, report.Submission, essay.ID).IsCorrect)
	assert.Equal(t, 60, *report.Submission.Score)
}

func TestGradeReportsPartialSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quiz := dbtest.Quiz(t, f.db, f.course.ID, nil)
	e1 := dbtest.Question(t, f.db, quiz.ID, courseModels.QuestionEssay, 5, 1)
	e2 := dbtest.Question(t, f.db, quiz.ID, courseModels.QuestionEssay, 5, 2)
	sub, err := f.svc.Submit(ctx, student, quiz.ID, []Answer{
		EssayAnswer{QuestionID: e1.ID, Text: "one"},
		EssayAnswer{QuestionID: e2.ID, Text: "two"},
	})
	require.NoError(t, err)
	a1, a2 := answerFor(t, sub, e1.ID), answerFor(t, sub, e2.ID)

	report, err := f.svc.Grade(ctx, admin, sub.ID, []GradeInput{
		{AnswerID: a1.ID, AwardedPoints: pts(4)},
		{AnswerID: a2.ID, AwardedPoints: pts(6)},
		{AnswerID: 9999, AwardedPoints: pts(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{a1.ID}, report.Applied)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, apperr.KindBadRequest, report.Errors[0].Kind)
	assert.Equal(t, apperr.KindNotFound, report.Errors[1].Kind)
	assert.False(t, report.Finalized)
	assert.Equal(t, courseModels.SubmissionPartiallyGraded, report.Submission.Status)
	assert.Nil(t, report.Submission.Score)

	report, err = f.svc.Grade(ctx, admin, sub.ID, []GradeInput{
		{AnswerID: a1.ID, AwardedPoints: pts(0)},
		{AnswerID: a2.ID, AwardedPoints: pts(5)},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{a1.ID}, report.Skipped)
	assert.Equal(t, []uint{a2.ID}, report.Applied)
	assert.True(t, report.Finalized)
	assert.Equal(t, 90, *report.Submission.Score)

	var stored courseModels.QuizAnswer
	require.NoError(t, f.db.First(&stored, a1.ID).Error)
	assert.Equal(t, 4, *stored.AwardedPoints)

	report, err = f.svc.Grade(ctx, admin, sub.ID, []GradeInput{{AnswerID: a2.ID, AwardedPoints: pts(0)}})
	require.NoError(t, err)
	assert.Equal(t, []uint{a2.ID}, report.Skipped)
	assert.False(t, report.Finalized)
	assert.Equal(t, 90, *report.Submission.Score)
}

func TestGradeRejectsMissingPoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quiz, answers, essay := mixedQuiz(t, f)
	sub, err := f.svc.Submit(ctx, student, quiz.ID, answers)
	require.NoError(t, err)
	essayAnswer := answerFor(t, sub, essay.ID)

	report, err := f.svc.Grade(ctx, admin, sub.ID, []GradeInput{{AnswerID: essayAnswer.ID, Feedback: "see me"}})
	require.NoError(t, err)
	assert.Empty(t, report.Applied)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, essayAnswer.ID, report.Errors[0].AnswerID)
	assert.Equal(t, apperr.KindBadRequest, report.Errors[0].Kind)
	assert.False(t, report.Finalized)
	assert.Equal(t, courseModels.SubmissionOpen, report.Submission.Status)

	var stored courseModels.QuizAnswer
	require.NoError(t, f.db.First(&stored, essayAnswer.ID).Error)
	assert.Nil(t, stored.AwardedPoints)
	assert.Nil(t, stored.IsCorrect)

	report, err = f.svc.Grade(ctx, admin, sub.ID, []GradeInput{{AnswerID: essayAnswer.ID, AwardedPoints: pts(0)}})
	require.NoError(t, err)
	assert.Equal(t, []uint{essayAnswer.ID}, report.Applied)
	assert.True(t, report.Finalized)
	assert.Equal(t, 40, *report.Submission.Score)
}

func TestGradeRequiresGrader(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quiz, answers, essay := mixedQuiz(t, f)
	sub, err := f.svc.Submit(ctx, student, quiz.ID, answers)
	require.NoError(t, err)
	in := []GradeInput{{AnswerID: answerFor(t, sub, essay.ID).ID, AwardedPoints: pts(2)}}

	_, err = f.svc.Grade(ctx, student, sub.ID, in)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	elsewhere := uint(5)
	centerAdmin := actor.Actor{UserID: 50, Roles: []string{actor.RoleCenterAdmin}, CenterID: &elsewhere}
	_, err = f.svc.Grade(ctx, centerAdmin, sub.ID, in)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.svc.Grade(ctx, admin, 4242, in)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	instructor := actor.Actor{UserID: 7, Roles: []string{actor.RoleInstructor}}
	report, err := f.svc.Grade(ctx, instructor, sub.ID, in)
	require.NoError(t, err)
	assert.True(t, report.Finalized)
}

func TestGetMySubmissionsMasksUntilGraded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quiz, answers, essay := mixedQuiz(t, f)
	sub, err := f.svc.Submit(ctx, student, quiz.ID, answers)
	require.NoError(t, err)

	mine, err := f.svc.GetMySubmissions(ctx, student, &quiz.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	for _, a := range mine[0].Answers {
		assert.Nil(t, a.IsCorrect)
		assert.Nil(t, a.AwardedPoints)
	}

	_, err = f.svc.Grade(ctx, admin, sub.ID, []GradeInput{{AnswerID: answerFor(t, sub, essay.ID).ID, AwardedPoints: pts(2)}})
	require.NoError(t, err)
	mine, err = f.svc.GetMySubmissions(ctx, student, nil)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	for _, a := range mine[0].Answers {
		assert.NotNil(t, a.IsCorrect)
	}

	theirs, err := f.svc.GetMySubmissions(ctx, other, nil)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestGetAllSubmissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	center := uint(3)
	centerCourse := dbtest.Course(t, f.db, func(c *courseModels.Course) { c.CenterID = &center })
	dbtest.Enroll(t, f.db, student.UserID, centerCourse.ID)

	quizA, answersA, _ := mixedQuiz(t, f)
	_, err := f.svc.Submit(ctx, student, quizA.ID, answersA)
	require.NoError(t, err)
	quizB := dbtest.Quiz(t, f.db, centerCourse.ID, nil)
	q, right, _ := dbtest.MCQ(t, f.db, quizB.ID, 1, 1)
	_, err = f.svc.Submit(ctx, student, quizB.ID, []Answer{MCQAnswer{QuestionID: q.ID, ChoiceID: right.ID}})
	require.NoError(t, err)

	page, err := f.svc.GetAllSubmissions(ctx, admin, SubmissionFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)

	page, err = f.svc.GetAllSubmissions(ctx, admin, SubmissionFilter{Status: courseModels.SubmissionOpen})
	require.NoError(t, err)
	require.Len(t, page.Submissions, 1)
	assert.Equal(t, quizA.ID, page.Submissions[0].QuizID)

	centerAdmin := actor.Actor{UserID: 50, Roles: []string{actor.RoleCenterAdmin}, CenterID: &center}
	page, err = f.svc.GetAllSubmissions(ctx, centerAdmin, SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, page.Submissions, 1)
	assert.Equal(t, quizB.ID, page.Submissions[0].QuizID)

	_, err = f.svc.GetAllSubmissions(ctx, centerAdmin, SubmissionFilter{QuizID: &quizA.ID})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	instructor := actor.Actor{UserID: 7, Roles: []string{actor.RoleInstructor}}
	page, err = f.svc.GetAllSubmissions(ctx, instructor, SubmissionFilter{QuizID: &quizA.ID, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	_, err = f.svc.GetAllSubmissions(ctx, student, SubmissionFilter{})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestDecodeAnswers(t *testing.T) {
	text := "essay"
	answers, err := DecodeAnswers([]AnswerInput{
		{Type: "mcq", QuestionID: 1, ChoiceID: dbtest.Uint(4)},
		{Type: AnswerTypeEssay, QuestionID: 2, Text: &text},
	})
	require.NoError(t, err)
	assert.Equal(t, []Answer{MCQAnswer{QuestionID: 1, ChoiceID: 4}, EssayAnswer{QuestionID: 2, Text: "essay"}}, answers)

	bad := [][]AnswerInput{
		{{Type: AnswerTypeMCQ, QuestionID: 1}},
		{{Type: AnswerTypeMCQ, QuestionID: 1, ChoiceID: dbtest.Uint(4), Text: &text}},
		{{Type: AnswerTypeEssay, QuestionID: 2, ChoiceID: dbtest.Uint(4)}},
		{{Type: "TRUE_FALSE", QuestionID: 3}},
	}
	for _, in := range bad {
		_, err := DecodeAnswers(in)
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	}
}

func TestScore(t *testing.T) {
	assert.Equal(t, 0, score(0, 0))
	assert.Equal(t, 67, score(2, 3))
	assert.Equal(t, 100, score(5, 5))
}
