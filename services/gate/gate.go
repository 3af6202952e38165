// Package gate decides whether content in a lesson is unlocked for a user.
// Decisions are derived on every read and never stored.
package gate

// Item is one content row of the lesson being viewed.
type Item struct {
	ContentID uint
	IsQuiz    bool
}

// Attempt summarises one submission by the viewing user.
type Attempt struct {
	QuizID uint
	Graded bool
	Score  *int
}

// Decision is the gate state of one lesson.
type Decision struct {
	HasQuizzes    bool
	HasPassedQuiz bool
}

// Evaluate computes the gate for a lesson. passingScores holds the passing
// score of every quiz that belongs to the lesson; attempts may include
// submissions for other quizzes, they are ignored.
func Evaluate(items []Item, passingScores map[uint]int, attempts []Attempt) Decision {
	var d Decision
	for _, it := range items {
		if it.IsQuiz {
			d.HasQuizzes = true
			break
		}
	}
	if !d.HasQuizzes {
		return d
	}
	for _, a := range attempts {
		passing, ok := passingScores[a.QuizID]
		if !ok || !a.Graded || a.Score == nil {
			continue
		}
		if *a.Score >= passing {
			d.HasPassedQuiz = true
			break
		}
	}
	return d
}

// Accessible reports whether item may be opened. Quiz items are always open.
func (d Decision) Accessible(item Item) bool {
	if item.IsQuiz {
		return true
	}
	return !d.HasQuizzes || d.HasPassedQuiz
}

// RequiresQuizPass reports whether item is gated behind a quiz in its lesson.
func (d Decision) RequiresQuizPass(item Item) bool {
	return !item.IsQuiz && d.HasQuizzes
}
