package assessment

import (
	"strings"

	courseModels "coursehub/models/course"
	"coursehub/services/apperr"
)

const (
	AnswerTypeMCQ   = "MCQ"
	AnswerTypeEssay = "ESSAY"
)

// Answer is one response in a submission: an MCQAnswer or an EssayAnswer.
type Answer interface {
	Question() uint
	matches(q courseModels.Question) bool
}

type MCQAnswer struct {
	QuestionID uint
	ChoiceID   uint
}

func (a MCQAnswer) Question() uint {
	return a.QuestionID
}

func (a MCQAnswer) matches(q courseModels.Question) bool {
	return q.IsMCQ()
}

type EssayAnswer struct {
	QuestionID uint
	Text       string
}

func (a EssayAnswer) Question() uint {
	return a.QuestionID
}

func (a EssayAnswer) matches(q courseModels.Question) bool {
	return q.IsEssay()
}

// AnswerInput is the wire shape of an answer, tagged by Type.
type AnswerInput struct {
	Type       string  `json:"type" validate:"required,oneof=MCQ ESSAY"`
	QuestionID uint    `json:"question_id" validate:"required"`
	ChoiceID   *uint   `json:"choice_id"`
	Text       *string `json:"text"`
}

// DecodeAnswers turns wire answers into the tagged union, rejecting payloads
// that mix the two shapes.
func DecodeAnswers(in []AnswerInput) ([]Answer, error) {
	out := make([]Answer, 0, len(in))
	for _, a := range in {
		switch strings.ToUpper(a.Type) {
		case AnswerTypeMCQ:
			if a.Text != nil {
				return nil, apperr.BadRequest("Question %d: MCQ answers carry a choice, not text!", a.QuestionID)
			}
			if a.ChoiceID == nil || *a.ChoiceID == 0 {
				return nil, apperr.BadRequest("Question %d: a choice is required!", a.QuestionID)
			}
			out = append(out, MCQAnswer{QuestionID: a.QuestionID, ChoiceID: *a.ChoiceID})
		case AnswerTypeEssay:
			if a.ChoiceID != nil {
				return nil, apperr.BadRequest("Question %d: essay answers cannot select choices!", a.QuestionID)
			}
			text := ""
			if a.Text != nil {
				text = *a.Text
			}
			out = append(out, EssayAnswer{QuestionID: a.QuestionID, Text: text})
		default:
			return nil, apperr.BadRequest("Question %d: unknown answer type %q!", a.QuestionID, a.Type)
		}
	}
	return out, nil
}
