package exam

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/educert/backend/core"
)

var (
	// ErrNotFound is returned when a requested exam does not exist.
	ErrNotFound = core.NewNotFoundError("exam not found")
	// ErrQuestionNotFound is returned when a requested question does not exist.
	ErrQuestionNotFound = core.NewNotFoundError("question not found")
	// ErrAttemptNotFound is returned when a requested attempt does not exist.
	ErrAttemptNotFound = core.NewNotFoundError("attempt not found")
	// ErrQuestionAttached is returned when a question is added to the same exam twice.
	ErrQuestionAttached = core.NewConflictError("question already attached to this exam")
	// ErrAttemptOpen is returned when the student already has an attempt in progress.
	ErrAttemptOpen = core.NewConflictError("an attempt is already in progress for this exam")
	// ErrAttemptClosed is returned when submitting an attempt that is not in progress.
	ErrAttemptClosed = core.NewConflictError("attempt already completed")
)

type (
	Repository interface {
		CreateExam(ctx context.Context, exm Exam) (Exam, error)
		GetExamByID(ctx context.Context, id int) (Exam, error)
		QueryCourseExams(ctx context.Context, courseID int) ([]Exam, error)
		UpdateExam(ctx context.Context, exm Exam) (Exam, error)
		DeleteExam(ctx context.Context, id int) error

		CreateQuestion(ctx context.Context, qst Question) (Question, error)
		GetQuestionByID(ctx context.Context, id int) (Question, error)
		AttachQuestion(ctx context.Context, examID, questionID, orderNumber int) error
		QueryExamQuestions(ctx context.Context, examID int) ([]Question, error)
		DetachQuestion(ctx context.Context, examID, questionID int) error

		CreateAttempt(ctx context.Context, att Attempt) (Attempt, error)
		GetAttemptByID(ctx context.Context, id int) (Attempt, error)
		GetOpenAttempt(ctx context.Context, studentID, examID int) (Attempt, error)
		QueryStudentAttempts(ctx context.Context, studentID, examID int) ([]Attempt, error)
		QueryExamAttempts(ctx context.Context, examID int) ([]Attempt, error)
		UpdateAttempt(ctx context.Context, att Attempt) (Attempt, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ne NewExam) (Exam, error) {
	now := time.Now().UTC()
	exm := Exam{
		Title:           ne.Title,
		DurationMinutes: ne.DurationMinutes,
		TotalPoints:     ne.TotalPoints,
		PassingScore:    ne.PassingScore,
		CourseID:        ne.CourseID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	exm, err := svc.repo.CreateExam(ctx, exm)
	return exm, errors.Wrap(err, "creating exam")
}

func (svc *Service) GetByID(ctx context.Context, id int) (Exam, error) {
	return svc.repo.GetExamByID(ctx, id)
}

func (svc *Service) QueryByCourse(ctx context.Context, courseID int) ([]Exam, error) {
	exams, err := svc.repo.QueryCourseExams(ctx, courseID)
	return exams, errors.Wrap(err, "querying course exams")
}

func (svc *Service) Update(ctx context.Context, orig Exam, ue UpdateExam) (Exam, error) {
	orig.Title = ue.Title
	orig.DurationMinutes = ue.DurationMinutes
	orig.TotalPoints = ue.TotalPoints
	orig.PassingScore = ue.PassingScore
	orig.UpdatedAt = time.Now().UTC()
	exm, err := svc.repo.UpdateExam(ctx, orig)
	return exm, errors.Wrap(err, "updating exam")
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return errors.Wrap(svc.repo.DeleteExam(ctx, id), "deleting exam")
}

func (svc *Service) CreateQuestion(ctx context.Context, nq NewQuestion) (Question, error) {
	qst := Question{
		Text:          nq.Text,
		Type:          nq.Type,
		Points:        nq.Points,
		CorrectAnswer: nq.CorrectAnswer,
	}
	qst, err := svc.repo.CreateQuestion(ctx, qst)
	return qst, errors.Wrap(err, "creating question")
}

// AttachQuestion adds an existing question to an exam. A question appears at
// most once per exam; a second attach is a conflict.
func (svc *Service) AttachQuestion(ctx context.Context, examID int, aq AddExamQuestion) error {
	exm, err := svc.repo.GetExamByID(ctx, examID)
	if err != nil {
		return err
	}
	if _, err = svc.repo.GetQuestionByID(ctx, aq.QuestionID); err != nil {
		return err
	}
	if err = svc.repo.AttachQuestion(ctx, examID, aq.QuestionID, aq.OrderNumber); err != nil {
		return errors.Wrap(err, "attaching question")
	}
	exm.NumQuestions++
	exm.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateExam(ctx, exm)
	return errors.Wrap(err, "updating exam question count")
}

func (svc *Service) QueryQuestions(ctx context.Context, examID int) ([]Question, error) {
	if _, err := svc.repo.GetExamByID(ctx, examID); err != nil {
		return nil, err
	}
	qsts, err := svc.repo.QueryExamQuestions(ctx, examID)
	return qsts, errors.Wrap(err, "querying exam questions")
}

func (svc *Service) DetachQuestion(ctx context.Context, examID, questionID int) error {
	exm, err := svc.repo.GetExamByID(ctx, examID)
	if err != nil {
		return err
	}
	if err = svc.repo.DetachQuestion(ctx, examID, questionID); err != nil {
		return err
	}
	if exm.NumQuestions > 0 {
		exm.NumQuestions--
	}
	exm.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateExam(ctx, exm)
	return errors.Wrap(err, "updating exam question count")
}

// StartAttempt opens a new attempt for the student. At most one attempt per
// (student, exam) may be in progress at a time; completed attempts do not
// limit how many times a student may retake the exam.
func (svc *Service) StartAttempt(ctx context.Context, studentID, examID int) (Attempt, error) {
	if _, err := svc.repo.GetExamByID(ctx, examID); err != nil {
		return Attempt{}, err
	}
	if _, err := svc.repo.GetOpenAttempt(ctx, studentID, examID); err == nil {
		return Attempt{}, ErrAttemptOpen
	} else if !core.IsNotFound(err) {
		return Attempt{}, errors.Wrap(err, "checking open attempt")
	}
	att := Attempt{
		AttemptDate: time.Now().UTC(),
		Status:      StatusInProgress,
		StudentID:   studentID,
		ExamID:      examID,
	}
	att, err := svc.repo.CreateAttempt(ctx, att)
	return att, errors.Wrap(err, "creating attempt")
}

func (svc *Service) GetAttempt(ctx context.Context, id int) (Attempt, error) {
	return svc.repo.GetAttemptByID(ctx, id)
}

func (svc *Service) QueryAttempts(ctx context.Context, studentID, examID int) ([]Attempt, error) {
	atts, err := svc.repo.QueryStudentAttempts(ctx, studentID, examID)
	return atts, errors.Wrap(err, "querying attempts")
}

// QueryExamAttempts lists every student's attempts on an exam.
func (svc *Service) QueryExamAttempts(ctx context.Context, examID int) ([]Attempt, error) {
	if _, err := svc.repo.GetExamByID(ctx, examID); err != nil {
		return nil, err
	}
	atts, err := svc.repo.QueryExamAttempts(ctx, examID)
	return atts, errors.Wrap(err, "querying exam attempts")
}

// SubmitAttempt closes an in-progress attempt, scores the answers and reports
// whether the exam's passing score was reached. The transition to Completed
// happens exactly once per attempt.
func (svc *Service) SubmitAttempt(ctx context.Context, att Attempt, sa SubmitAttempt) (AttemptResult, error) {
	if att.Status != StatusInProgress {
		return AttemptResult{}, ErrAttemptClosed
	}
	exm, err := svc.repo.GetExamByID(ctx, att.ExamID)
	if err != nil {
		return AttemptResult{}, err
	}
	qsts, err := svc.repo.QueryExamQuestions(ctx, att.ExamID)
	if err != nil {
		return AttemptResult{}, errors.Wrap(err, "querying exam questions")
	}

	score := scoreAnswers(qsts, sa.Answers, exm.TotalPoints)
	att.Score = null.IntFrom(score)
	att.TimeSpentMinutes = sa.TimeSpentMinutes
	att.Status = StatusCompleted

	att, err = svc.repo.UpdateAttempt(ctx, att)
	if err != nil {
		return AttemptResult{}, errors.Wrap(err, "updating attempt")
	}
	return AttemptResult{Attempt: att, Passed: score >= exm.PassingScore}, nil
}

// scoreAnswers sums the points of every question whose submitted answer
// matches its stored correct answer, capped at the exam's total points.
// Matching is case-insensitive and ignores surrounding whitespace.
func scoreAnswers(qsts []Question, answers []Answer, totalPoints int) int {
	byQuestion := make(map[int]string, len(answers))
	for _, ans := range answers {
		byQuestion[ans.QuestionID] = normalizeAnswer(ans.Answer)
	}
	var score int
	for _, qst := range qsts {
		given, ok := byQuestion[qst.ID]
		if !ok || given == "" {
			continue
		}
		if given == normalizeAnswer(qst.CorrectAnswer) {
			score += qst.Points
		}
	}
	if totalPoints > 0 && score > totalPoints {
		score = totalPoints
	}
	return score
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
