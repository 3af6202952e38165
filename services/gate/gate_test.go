package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func score(v int) *int { return &v }

func TestEvaluateLessonWithoutQuiz(t *testing.T) {
	items := []Item{{ContentID: 1}, {ContentID: 2}}
	d := Evaluate(items, nil, nil)

	assert.False(t, d.HasQuizzes)
	assert.True(t, d.Accessible(items[0]))
	assert.False(t, d.RequiresQuizPass(items[1]))
}

func TestEvaluateLocksUntilPassingAttempt(t *testing.T) {
	video := Item{ContentID: 1}
	quiz := Item{ContentID: 2, IsQuiz: true}
	items := []Item{video, quiz}
	passing := map[uint]int{7: 60}

	d := Evaluate(items, passing, nil)
	assert.True(t, d.HasQuizzes)
	assert.False(t, d.Accessible(video))
	assert.True(t, d.Accessible(quiz))
	assert.True(t, d.RequiresQuizPass(video))
	assert.False(t, d.RequiresQuizPass(quiz))

	d = Evaluate(items, passing, []Attempt{{QuizID: 7, Graded: true, Score: score(59)}})
	assert.False(t, d.Accessible(video))

	d = Evaluate(items, passing, []Attempt{{QuizID: 7, Graded: true, Score: score(60)}})
	assert.True(t, d.HasPassedQuiz)
	assert.True(t, d.Accessible(video))
}

func TestEvaluateIgnoresPendingAndForeignAttempts(t *testing.T) {
	items := []Item{{ContentID: 1}, {ContentID: 2, IsQuiz: true}}
	passing := map[uint]int{7: 50}

	attempts := []Attempt{
		{QuizID: 7, Graded: false, Score: nil},
		{QuizID: 8, Graded: true, Score: score(100)},
	}
	d := Evaluate(items, passing, attempts)
	assert.False(t, d.HasPassedQuiz)
	assert.False(t, d.Accessible(items[0]))
}
