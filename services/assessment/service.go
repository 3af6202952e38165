// Package assessment stores quiz attempts and grades them: objective answers
// at submission time, essays through asynchronous manual grading.
package assessment

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"time"

	"coursehub/models"
	courseModels "coursehub/models/course"
	"coursehub/services/access"
	"coursehub/services/actor"
	"coursehub/services/apperr"
	"coursehub/services/notify"
	"coursehub/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizCompleter marks the content wrapping a quiz as completed once an
// attempt passes. It runs inside the grading transaction.
type QuizCompleter interface {
	CompleteQuizContent(tx *gorm.DB, userID, quizID uint) error
}

// notifyTimeout bounds one post-commit notification, retries included.
const notifyTimeout = 15 * time.Second

type Service struct {
	db        *gorm.DB
	completer QuizCompleter
	notifier  notify.Notifier
	now       func() time.Time
	pending   sync.WaitGroup
}

func NewService(db *gorm.DB, completer QuizCompleter, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Service{db: db, completer: completer, notifier: notifier, now: time.Now}
}

// Flush waits for in-flight notifications.
func (s *Service) Flush() {
	s.pending.Wait()
}

// WithClock replaces the time source, used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// score is round(awarded/total*100), 0 for a pointless quiz.
func score(awarded, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(awarded) / float64(total) * 100))
}

type logEntry struct {
	At            time.Time `json:"at"`
	Event         string    `json:"event"` // auto, manual, finalized
	AnswerID      uint      `json:"answer_id,omitempty"`
	QuestionID    uint      `json:"question_id,omitempty"`
	AwardedPoints *int      `json:"awarded_points,omitempty"`
	GradedBy      uint      `json:"graded_by,omitempty"`
	Score         *int      `json:"score,omitempty"`
}

func appendLog(existing datatypes.JSON, entries ...logEntry) datatypes.JSON {
	var all []logEntry
	if len(existing) > 0 {
		_ = json.Unmarshal(existing, &all)
	}
	all = append(all, entries...)
	raw, err := json.Marshal(all)
	if err != nil {
		return existing
	}
	return datatypes.JSON(raw)
}

func loadQuiz(tx *gorm.DB, quizID uint) (*courseModels.Quiz, error) {
	var quiz courseModels.Quiz
	if err := tx.Where("id = ? AND is_deleted = ?", quizID, false).First(&quiz).Error; err != nil {
		return nil, apperr.FromDB(err, "quiz")
	}
	return &quiz, nil
}

func loadQuestions(tx *gorm.DB, quizID uint) ([]courseModels.Question, error) {
	var questions []courseModels.Question
	if err := tx.Where("quiz_id = ? AND is_deleted = ?", quizID, false).
		Order("order_index asc, id asc").Find(&questions).Error; err != nil {
		return nil, apperr.Internal(err, "failed to load questions")
	}
	return questions, nil
}

// Submit records one attempt by the actor. MCQ answers are graded at once;
// with no essay questions the attempt is GRADED before Submit returns.
func (s *Service) Submit(ctx context.Context, a actor.Actor, quizID uint, answers []Answer) (*courseModels.QuizSubmission, error) {
	var (
		sub    *courseModels.QuizSubmission
		quiz   *courseModels.Quiz
		graded bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if quiz, err = loadQuiz(tx, quizID); err != nil {
			return err
		}
		g, err := access.Resolve(tx, a, a.UserID, quiz.CourseID, access.Options{LessonID: quiz.LessonID, Lock: true})
		if err != nil {
			return err
		}
		if !quiz.IsPublished && !g.Admin {
			return apperr.NotFound("quiz not found")
		}
		if !g.Allowed() {
			return apperr.Forbidden("User not enrolled in this course!")
		}

		var attempts int64
		if err := tx.Model(&courseModels.QuizSubmission{}).
			Where("quiz_id = ? AND user_id = ?", quiz.ID, a.UserID).Count(&attempts).Error; err != nil {
			return apperr.Internal(err, "failed to count attempts")
		}
		if quiz.MaxAttempts > 0 && attempts >= int64(quiz.MaxAttempts) {
			return apperr.BadRequest("Maximum attempts reached! (%d)", quiz.MaxAttempts)
		}

		questions, err := loadQuestions(tx, quiz.ID)
		if err != nil {
			return err
		}
		if len(questions) == 0 {
			return apperr.BadRequest("Quiz has no questions!")
		}
		byQuestion, err := matchAnswers(questions, answers)
		if err != nil {
			return err
		}
		choices, err := loadChoices(tx, byQuestion)
		if err != nil {
			return err
		}

		now := s.now()
		sub = &courseModels.QuizSubmission{
			QuizID:        quiz.ID,
			UserID:        a.UserID,
			AttemptNumber: int(attempts) + 1,
			CourseID:      quiz.CourseID,
			Status:        courseModels.SubmissionOpen,
			StartedAt:     now,
			CompletedAt:   &now,
		}
		if g.Enrollment != nil {
			sub.EnrollmentID = &g.Enrollment.ID
		}

		var entries []logEntry
		awarded, pending := 0, 0
		for _, q := range questions {
			sub.TotalPoints += q.Points
			qa := courseModels.QuizAnswer{QuestionID: q.ID}
			switch ans := byQuestion[q.ID].(type) {
			case MCQAnswer:
				choice := choices[ans.ChoiceID]
				points := 0
				if choice.IsCorrect {
					points = q.Points
				}
				correct := choice.IsCorrect
				qa.SelectedChoiceID = &choice.ID
				qa.IsCorrect = &correct
				qa.AwardedPoints = &points
				qa.GradedAt = &now
				awarded += points
				entries = append(entries, logEntry{At: now, Event: "auto", QuestionID: q.ID, AwardedPoints: &points})
			case EssayAnswer:
				text := ans.Text
				qa.TextAnswer = &text
				pending++
			}
			sub.Answers = append(sub.Answers, qa)
		}
		if pending == 0 {
			final := score(awarded, sub.TotalPoints)
			sub.Status = courseModels.SubmissionGraded
			sub.Score = &final
			sub.GradedAt = &now
			entries = append(entries, logEntry{At: now, Event: "finalized", Score: &final})
			graded = true
		}
		sub.GradingLog = appendLog(nil, entries...)

		if err := tx.Create(sub).Error; err != nil {
			return apperr.FromDB(err, "submission")
		}
		if graded && *sub.Score >= quiz.PassingScore && s.completer != nil {
			return s.completer.CompleteQuizContent(tx, a.UserID, quiz.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if graded {
		s.notifyGraded(ctx, sub, quiz, false)
	}
	return sub, nil
}

// matchAnswers checks the answer set against the quiz: every question
// answered once, with the variant its type requires.
func matchAnswers(questions []courseModels.Question, answers []Answer) (map[uint]Answer, error) {
	byID := make(map[uint]courseModels.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	out := make(map[uint]Answer, len(answers))
	for _, ans := range answers {
		q, ok := byID[ans.Question()]
		if !ok {
			return nil, apperr.NotFound("question %d not found in this quiz", ans.Question())
		}
		if _, dup := out[q.ID]; dup {
			return nil, apperr.BadRequest("Question %d answered more than once!", q.ID)
		}
		if !ans.matches(q) {
			return nil, apperr.BadRequest("Question %d expects a %s answer!", q.ID, q.Type)
		}
		if essay, ok := ans.(EssayAnswer); ok && strings.TrimSpace(essay.Text) == "" {
			return nil, apperr.BadRequest("Question %d: essay answer is empty!", q.ID)
		}
		out[q.ID] = ans
	}
	if len(out) != len(questions) {
		return nil, apperr.BadRequest("Every question must be answered! (%d of %d)", len(out), len(questions))
	}
	return out, nil
}

// loadChoices resolves the selected choices and checks that each belongs to
// the question it answers.
func loadChoices(tx *gorm.DB, answers map[uint]Answer) (map[uint]courseModels.Choice, error) {
	var ids []uint
	for _, ans := range answers {
		if mcq, ok := ans.(MCQAnswer); ok {
			ids = append(ids, mcq.ChoiceID)
		}
	}
	out := make(map[uint]courseModels.Choice, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var choices []courseModels.Choice
	if err := tx.Where("id IN ? AND is_deleted = ?", ids, false).Find(&choices).Error; err != nil {
		return nil, apperr.Internal(err, "failed to load choices")
	}
	for _, c := range choices {
		out[c.ID] = c
	}
	for _, ans := range answers {
		mcq, ok := ans.(MCQAnswer)
		if !ok {
			continue
		}
		c, found := out[mcq.ChoiceID]
		if !found {
			return nil, apperr.NotFound("choice %d not found", mcq.ChoiceID)
		}
		if c.QuestionID != mcq.QuestionID {
			return nil, apperr.BadRequest("Choice %d does not belong to question %d!", c.ID, mcq.QuestionID)
		}
	}
	return out, nil
}

// notifyGraded fires the post-commit notifications of a GRADED submission
// in the background, detached from the request context. Failures are logged
// and never reach the caller.
func (s *Service) notifyGraded(ctx context.Context, sub *courseModels.QuizSubmission, quiz *courseModels.Quiz, manual bool) {
	ev := notify.SubmissionGraded{
		SubmissionID: sub.ID,
		QuizID:       sub.QuizID,
		QuizTitle:    quiz.Title,
		CourseID:     sub.CourseID,
		UserID:       sub.UserID,
		Attempt:      sub.AttemptNumber,
		TotalPoints:  sub.TotalPoints,
		Manual:       manual,
	}
	if sub.Score != nil {
		ev.Score = *sub.Score
		ev.Passed = *sub.Score >= quiz.PassingScore
	}
	if sub.GradedAt != nil {
		ev.GradedAt = *sub.GradedAt
	}
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", sub.UserID, false).Limit(1).Find(&user).Error; err == nil {
		ev.UserName, ev.UserEmail = user.Name, user.Email
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.notifier.SubmissionGraded(nctx, ev); err != nil {
			utils.Logger.Warn("Submission notification failed", "submission_id", ev.SubmissionID, "error", err)
		}
	}()
}
