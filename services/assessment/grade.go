package assessment

import (
	"context"

	courseModels "coursehub/models/course"
	"coursehub/services/access"
	"coursehub/services/actor"
	"coursehub/services/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GradeInput awards points to one answer.
type GradeInput struct {
	AnswerID      uint   `json:"answer_id" validate:"required"`
	AwardedPoints *int   `json:"awarded_points" validate:"required"`
	Feedback      string `json:"feedback" validate:"max=5000"`
}

// GradeError reports why one answer of a grading call was not applied.
type GradeError struct {
	AnswerID uint        `json:"answer_id"`
	Kind     apperr.Kind `json:"kind"`
	Message  string      `json:"message"`
}

// GradeReport is the partial-success outcome of a grading call.
type GradeReport struct {
	Applied    []uint                       `json:"applied"`
	Skipped    []uint                       `json:"skipped"`
	Errors     []GradeError                 `json:"errors"`
	Finalized  bool                         `json:"finalized"`
	Submission *courseModels.QuizSubmission `json:"submission"`
}

// Grade applies manual grades to a submission. Answers already graded are
// skipped; every other answer is applied or rejected on its own, so one bad
// grade never undoes its siblings. The submission row is locked for the
// duration so only one call can finalize it.
func (s *Service) Grade(ctx context.Context, a actor.Actor, submissionID uint, grades []GradeInput) (*GradeReport, error) {
	report := &GradeReport{Applied: []uint{}, Skipped: []uint{}, Errors: []GradeError{}}
	var quiz *courseModels.Quiz
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub courseModels.QuizSubmission
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", submissionID).First(&sub).Error; err != nil {
			return apperr.FromDB(err, "submission")
		}
		course, err := access.LoadCourse(tx, sub.CourseID)
		if err != nil {
			return err
		}
		if !access.CanGrade(a, course) {
			return apperr.Forbidden("Only course admins and the instructor can grade!")
		}
		var qErr error
		if quiz, qErr = loadQuizUnscoped(tx, sub.QuizID); qErr != nil {
			return qErr
		}

		var answers []courseModels.QuizAnswer
		if err := tx.Where("submission_id = ?", sub.ID).Find(&answers).Error; err != nil {
			return apperr.Internal(err, "failed to load answers")
		}
		questionIDs := make([]uint, len(answers))
		byID := make(map[uint]*courseModels.QuizAnswer, len(answers))
		for i := range answers {
			questionIDs[i] = answers[i].QuestionID
			byID[answers[i].ID] = &answers[i]
		}
		var questions []courseModels.Question
		if err := tx.Unscoped().Where("id IN ?", questionIDs).Find(&questions).Error; err != nil {
			return apperr.Internal(err, "failed to load questions")
		}
		questionByID := make(map[uint]courseModels.Question, len(questions))
		for _, q := range questions {
			questionByID[q.ID] = q
		}

		now := s.now()
		var entries []logEntry
		for _, in := range grades {
			ans, ok := byID[in.AnswerID]
			if !ok {
				report.Errors = append(report.Errors, GradeError{AnswerID: in.AnswerID, Kind: apperr.KindNotFound,
					Message: "answer not found on this submission"})
				continue
			}
			if ans.IsGraded() {
				report.Skipped = append(report.Skipped, ans.ID)
				continue
			}
			q := questionByID[ans.QuestionID]
			if in.AwardedPoints == nil {
				report.Errors = append(report.Errors, GradeError{AnswerID: ans.ID, Kind: apperr.KindBadRequest,
					Message: "awarded points are required"})
				continue
			}
			if *in.AwardedPoints < 0 || *in.AwardedPoints > q.Points {
				report.Errors = append(report.Errors, GradeError{AnswerID: ans.ID, Kind: apperr.KindBadRequest,
					Message: apperr.BadRequest("awarded points must be between 0 and %d", q.Points).Message})
				continue
			}

			points := *in.AwardedPoints
			correct := points == q.Points
			graderID := a.UserID
			err := tx.Transaction(func(sp *gorm.DB) error {
				res := sp.Model(&courseModels.QuizAnswer{}).
					Where("id = ? AND awarded_points IS NULL", ans.ID).
					Updates(map[string]interface{}{
						"awarded_points": points,
						"is_correct":     correct,
						"feedback":       in.Feedback,
						"graded_by":      graderID,
						"graded_at":      now,
					})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return gorm.ErrRecordNotFound
				}
				return nil
			})
			if err != nil {
				report.Errors = append(report.Errors, GradeError{AnswerID: ans.ID, Kind: apperr.KindOf(apperr.FromDB(err, "answer")),
					Message: "failed to apply grade"})
				continue
			}
			ans.AwardedPoints = &points
			ans.IsCorrect = &correct
			ans.Feedback = in.Feedback
			ans.GradedBy = &graderID
			ans.GradedAt = &now
			report.Applied = append(report.Applied, ans.ID)
			entries = append(entries, logEntry{At: now, Event: "manual", AnswerID: ans.ID, QuestionID: ans.QuestionID,
				AwardedPoints: &points, GradedBy: graderID})
		}

		updates := map[string]interface{}{}
		if sub.Status != courseModels.SubmissionGraded {
			awarded, ungraded := 0, 0
			for _, ans := range answers {
				if ans.IsGraded() {
					awarded += *ans.AwardedPoints
				} else {
					ungraded++
				}
			}
			switch {
			case ungraded == 0:
				final := score(awarded, sub.TotalPoints)
				sub.Status = courseModels.SubmissionGraded
				sub.Score = &final
				sub.GradedAt = &now
				updates["score"] = final
				updates["graded_at"] = now
				entries = append(entries, logEntry{At: now, Event: "finalized", Score: &final})
				report.Finalized = true
			case len(report.Applied) > 0:
				sub.Status = courseModels.SubmissionPartiallyGraded
			}
			updates["status"] = sub.Status
		}
		if len(entries) > 0 {
			sub.GradingLog = appendLog(sub.GradingLog, entries...)
			updates["grading_log"] = sub.GradingLog
		}
		if len(updates) > 0 {
			if err := tx.Model(&courseModels.QuizSubmission{}).Where("id = ?", sub.ID).Updates(updates).Error; err != nil {
				return apperr.Internal(err, "failed to update submission")
			}
		}
		if report.Finalized && *sub.Score >= quiz.PassingScore && s.completer != nil {
			if err := s.completer.CompleteQuizContent(tx, sub.UserID, sub.QuizID); err != nil {
				return err
			}
		}

		sub.Answers = answers
		report.Submission = &sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	if report.Finalized {
		s.notifyGraded(ctx, report.Submission, quiz, true)
	}
	return report, nil
}

// loadQuizUnscoped finds the quiz of an existing submission even if the quiz
// has since been removed.
func loadQuizUnscoped(tx *gorm.DB, quizID uint) (*courseModels.Quiz, error) {
	var quiz courseModels.Quiz
	if err := tx.Unscoped().Where("id = ?", quizID).First(&quiz).Error; err != nil {
		return nil, apperr.FromDB(err, "quiz")
	}
	return &quiz, nil
}
