package progress

import (
	"context"
	"time"

	courseModels "coursehub/models/course"
	"coursehub/services/access"
	"coursehub/services/actor"
	"coursehub/services/apperr"
	"coursehub/services/gate"

	"gorm.io/gorm"
)

// ContentView is one content item as the viewing user sees it. Body fields
// are blanked while the item is locked.
type ContentView struct {
	courseModels.Content
	Completed        bool       `json:"completed"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	IsAccessible     bool       `json:"is_accessible"`
	RequiresQuizPass bool       `json:"requires_quiz_pass"`
}

type LessonView struct {
	courseModels.Lesson
	Progress      int           `json:"progress"`
	Completed     bool          `json:"completed"`
	HasQuizzes    bool          `json:"has_quizzes"`
	HasPassedQuiz bool          `json:"has_passed_quiz"`
	Contents      []ContentView `json:"contents"`
}

type CourseContentView struct {
	Course     courseModels.Course      `json:"course"`
	Enrollment *courseModels.Enrollment `json:"enrollment,omitempty"`
	Progress   int                      `json:"progress"`
	Lessons    []LessonView             `json:"lessons"`
	Contents   []ContentView            `json:"contents"`
}

// courseSnapshot is everything a read of one course needs for one user.
type courseSnapshot struct {
	grant      *access.Grant
	lessons    []courseModels.Lesson
	contents   []courseModels.Content
	standalone map[uint]courseModels.LessonEnrollment
	progress   map[uint]courseModels.ContentProgress
	lessonRows []courseModels.LessonProgress
}

func (s *Service) loadSnapshot(db *gorm.DB, a actor.Actor, userID, courseID uint) (*courseSnapshot, error) {
	g, err := access.Resolve(db, a, userID, courseID, access.Options{})
	if err != nil {
		return nil, err
	}
	if !g.Course.IsPublished && !g.Admin {
		return nil, apperr.NotFound("course not found")
	}
	snap := &courseSnapshot{
		grant:      g,
		standalone: map[uint]courseModels.LessonEnrollment{},
		progress:   map[uint]courseModels.ContentProgress{},
	}

	if err := db.Where("course_id = ? AND is_published = ? AND is_deleted = ?", courseID, true, false).
		Order("order_index asc, id asc").Find(&snap.lessons).Error; err != nil {
		return nil, apperr.Internal(err, "failed to load lessons")
	}
	if err := db.Where("course_id = ? AND is_published = ? AND is_deleted = ?", courseID, true, false).
		Where("(lesson_id IS NULL OR lesson_id IN (?))", publishedLessonIDs(db, courseID)).
		Order("order_index asc, id asc").Find(&snap.contents).Error; err != nil {
		return nil, apperr.Internal(err, "failed to load course content")
	}

	var standalone []courseModels.LessonEnrollment
	if err := db.Where("user_id = ? AND course_id = ? AND status = ? AND is_deleted = ?",
		userID, courseID, courseModels.EnrollmentActive, false).Find(&standalone).Error; err != nil {
		return nil, apperr.Internal(err, "failed to load lesson enrollments")
	}
	for _, le := range standalone {
		snap.standalone[le.LessonID] = le
	}

	var rows []courseModels.ContentProgress
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).Find(&rows).Error; err != nil {
		return nil, apperr.Internal(err, "failed to load content progress")
	}
	for _, row := range rows {
		snap.progress[row.ContentID] = row
	}

	if err := db.Where("user_id = ? AND lesson_id IN (?)", userID, publishedLessonIDs(db, courseID)).
		Find(&snap.lessonRows).Error; err != nil {
		return nil, apperr.Internal(err, "failed to load lesson progress")
	}
	return snap, nil
}

// lessonRow returns the stored progress of a lesson under the purchase path
// that grants it, preferring the whole-course enrollment.
func (snap *courseSnapshot) lessonRow(lessonID uint) (courseModels.LessonProgress, bool) {
	enrollmentID := snap.grant.EnrollmentID()
	var standaloneID uint
	if le, ok := snap.standalone[lessonID]; ok {
		standaloneID = le.ID
	}
	for _, key := range [][2]uint{{enrollmentID, 0}, {0, standaloneID}} {
		if key[0] == 0 && key[1] == 0 {
			continue
		}
		for _, row := range snap.lessonRows {
			if row.LessonID == lessonID && row.EnrollmentID == key[0] && row.LessonEnrollmentID == key[1] {
				return row, true
			}
		}
	}
	return courseModels.LessonProgress{}, false
}

// gateInputs loads the passing scores of every quiz reachable from the
// course's lessons and the user's graded attempts on them.
func gateInputs(db *gorm.DB, userID uint, snap *courseSnapshot) (map[uint]map[uint]int, []gate.Attempt, error) {
	lessonIDs := make([]uint, 0, len(snap.lessons))
	for _, l := range snap.lessons {
		lessonIDs = append(lessonIDs, l.ID)
	}
	var referenced []uint
	for _, c := range snap.contents {
		if c.IsQuiz() && c.QuizID != nil && c.LessonID != nil {
			referenced = append(referenced, *c.QuizID)
		}
	}

	scores := map[uint]map[uint]int{}
	if len(lessonIDs) == 0 {
		return scores, nil, nil
	}
	var quizzes []courseModels.Quiz
	q := db.Where("is_deleted = ?", false)
	if len(referenced) > 0 {
		q = q.Where("(lesson_id IN ? OR id IN ?)", lessonIDs, referenced)
	} else {
		q = q.Where("lesson_id IN ?", lessonIDs)
	}
	if err := q.Find(&quizzes).Error; err != nil {
		return nil, nil, apperr.Internal(err, "failed to load quizzes")
	}
	byID := make(map[uint]courseModels.Quiz, len(quizzes))
	quizIDs := make([]uint, 0, len(quizzes))
	for _, quiz := range quizzes {
		byID[quiz.ID] = quiz
		quizIDs = append(quizIDs, quiz.ID)
		if quiz.LessonID != nil {
			put(scores, *quiz.LessonID, quiz.ID, quiz.PassingScore)
		}
	}
	for _, c := range snap.contents {
		if !c.IsQuiz() || c.QuizID == nil || c.LessonID == nil {
			continue
		}
		if quiz, ok := byID[*c.QuizID]; ok {
			put(scores, *c.LessonID, quiz.ID, quiz.PassingScore)
		}
	}
	if len(quizIDs) == 0 {
		return scores, nil, nil
	}

	var submissions []courseModels.QuizSubmission
	if err := db.Select("quiz_id", "status", "score").
		Where("user_id = ? AND quiz_id IN ? AND status = ?", userID, quizIDs, courseModels.SubmissionGraded).
		Find(&submissions).Error; err != nil {
		return nil, nil, apperr.Internal(err, "failed to load quiz submissions")
	}
	attempts := make([]gate.Attempt, len(submissions))
	for i, sub := range submissions {
		attempts[i] = gate.Attempt{QuizID: sub.QuizID, Graded: sub.Status == courseModels.SubmissionGraded, Score: sub.Score}
	}
	return scores, attempts, nil
}

func put(m map[uint]map[uint]int, lessonID, quizID uint, passing int) {
	if m[lessonID] == nil {
		m[lessonID] = map[uint]int{}
	}
	m[lessonID][quizID] = passing
}

func (snap *courseSnapshot) contentView(c courseModels.Content, d gate.Decision, lessonFree, lessonCovered bool) ContentView {
	item := gate.Item{ContentID: c.ID, IsQuiz: c.IsQuiz()}
	v := ContentView{Content: c}
	if row, ok := snap.progress[c.ID]; ok {
		v.Completed = row.Completed
		v.CompletedAt = row.CompletedAt
	}
	entitled := snap.grant.Allowed() || lessonCovered || c.IsFree || lessonFree
	v.RequiresQuizPass = d.RequiresQuizPass(item)
	v.IsAccessible = entitled && d.Accessible(item)
	if !v.IsAccessible {
		v.TextContent = ""
		v.VideoURL = ""
		v.ImageURL = ""
	}
	return v
}

// GetCourseContent returns the published hierarchy of a course with the
// user's completion state and the quiz gate applied to every lesson.
func (s *Service) GetCourseContent(ctx context.Context, a actor.Actor, userID, courseID uint) (*CourseContentView, error) {
	db := s.db.WithContext(ctx)
	snap, err := s.loadSnapshot(db, a, userID, courseID)
	if err != nil {
		return nil, err
	}
	scores, attempts, err := gateInputs(db, userID, snap)
	if err != nil {
		return nil, err
	}

	byLesson := map[uint][]courseModels.Content{}
	var courseLevel []courseModels.Content
	for _, c := range snap.contents {
		if c.LessonID == nil {
			courseLevel = append(courseLevel, c)
			continue
		}
		byLesson[*c.LessonID] = append(byLesson[*c.LessonID], c)
	}

	view := &CourseContentView{
		Course:     snap.grant.Course,
		Enrollment: snap.grant.Enrollment,
		Lessons:    make([]LessonView, 0, len(snap.lessons)),
		Contents:   make([]ContentView, 0, len(courseLevel)),
	}
	var done, total int64
	for _, lesson := range snap.lessons {
		contents := byLesson[lesson.ID]
		items := make([]gate.Item, len(contents))
		for i, c := range contents {
			items[i] = gate.Item{ContentID: c.ID, IsQuiz: c.IsQuiz()}
		}
		d := gate.Evaluate(items, scores[lesson.ID], attempts)
		_, covered := snap.standalone[lesson.ID]

		lv := LessonView{
			Lesson:        lesson,
			HasQuizzes:    d.HasQuizzes,
			HasPassedQuiz: d.HasPassedQuiz,
			Contents:      make([]ContentView, 0, len(contents)),
		}
		var lessonDone int64
		for _, c := range contents {
			cv := snap.contentView(c, d, lesson.IsFree, covered)
			if cv.Completed {
				lessonDone++
			}
			lv.Contents = append(lv.Contents, cv)
		}
		if row, ok := snap.lessonRow(lesson.ID); ok {
			lv.Progress, lv.Completed = row.Progress, row.Completed
		} else {
			lv.Progress = percent(lessonDone, int64(len(contents)))
			lv.Completed = lv.Progress == 100
		}
		done += lessonDone
		total += int64(len(contents))
		view.Lessons = append(view.Lessons, lv)
	}

	for _, c := range courseLevel {
		cv := snap.contentView(c, gate.Decision{}, false, false)
		if cv.Completed {
			done++
		}
		total++
		view.Contents = append(view.Contents, cv)
	}

	if snap.grant.Enrollment != nil {
		view.Progress = snap.grant.Enrollment.Progress
	} else {
		view.Progress = percent(done, total)
	}
	return view, nil
}

type CourseProgressView struct {
	Enrollment          *courseModels.Enrollment      `json:"enrollment,omitempty"`
	Lessons             []courseModels.LessonProgress `json:"lessons"`
	CompletedContentIDs []uint                        `json:"completed_content_ids"`
}

// GetCourseProgress returns the stored rollups of a user in a course.
func (s *Service) GetCourseProgress(ctx context.Context, a actor.Actor, userID, courseID uint) (*CourseProgressView, error) {
	db := s.db.WithContext(ctx)
	snap, err := s.loadSnapshot(db, a, userID, courseID)
	if err != nil {
		return nil, err
	}
	if !snap.grant.Covered() && len(snap.standalone) == 0 {
		if snap.grant.Admin {
			return nil, apperr.NotFound("active enrollment not found")
		}
		return nil, apperr.Forbidden("User not enrolled in this course!")
	}

	view := &CourseProgressView{
		Enrollment:          snap.grant.Enrollment,
		Lessons:             snap.lessonRows,
		CompletedContentIDs: []uint{},
	}
	for _, c := range snap.contents {
		if row, ok := snap.progress[c.ID]; ok && row.Completed {
			view.CompletedContentIDs = append(view.CompletedContentIDs, c.ID)
		}
	}
	if view.Lessons == nil {
		view.Lessons = []courseModels.LessonProgress{}
	}
	return view, nil
}
