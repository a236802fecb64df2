package exam

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/educert/backend/core"
)

// Attempt statuses
const (
	StatusInProgress = "InProgress"
	StatusCompleted  = "Completed"
)

type (
	Exam struct {
		ID              int       `json:"id" db:"id"`
		Title           string    `json:"title" db:"title"`
		DurationMinutes int       `json:"durationMinutes" db:"duration_minutes"`
		TotalPoints     int       `json:"totalPoints" db:"total_points"`
		PassingScore    int       `json:"passingScore" db:"passing_score"`
		NumQuestions    int       `json:"numQuestions" db:"num_questions"`
		CourseID        int       `json:"courseId" db:"course_id"`
		CreatedAt       time.Time `json:"createdAt" db:"created_at"` // UTC
		UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"` // UTC

		Questions []Question `json:"questions,omitempty" db:"-"`
	}

	Question struct {
		ID            int    `json:"id" db:"id"`
		Text          string `json:"text" db:"text"`
		Type          string `json:"type" db:"type"`
		Points        int    `json:"points" db:"points"`
		CorrectAnswer string `json:"-" db:"correct_answer"`
		OrderNumber   int    `json:"orderNumber,omitempty" db:"order_number"`
	}

	Attempt struct {
		ID               int       `json:"id" db:"id"`
		AttemptDate      time.Time `json:"attemptDate" db:"attempt_date"` // UTC
		Score            null.Int  `json:"score" db:"score"`
		TimeSpentMinutes int       `json:"timeSpentMinutes" db:"time_spent_minutes"`
		Status           string    `json:"status" db:"status"`
		StudentID        int       `json:"studentId" db:"student_id"`
		ExamID           int       `json:"examId" db:"exam_id"`
	}
)

type NewExam struct {
	Title           string `json:"title" validate:"required"`
	DurationMinutes int    `json:"durationMinutes" validate:"omitempty,gte=0"`
	TotalPoints     int    `json:"totalPoints" validate:"required,gt=0"`
	PassingScore    int    `json:"passingScore" validate:"gte=0,ltefield=TotalPoints"`
	CourseID        int    `json:"courseId" validate:"required"`
}

func (ne *NewExam) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	return validate.Struct(ne)
}

type UpdateExam struct {
	Title           string `json:"title"`
	DurationMinutes int    `json:"durationMinutes" validate:"omitempty,gte=0"`
	TotalPoints     int    `json:"totalPoints" validate:"omitempty,gt=0"`
	PassingScore    int    `json:"passingScore" validate:"gte=0,ltefield=TotalPoints"`
}

func (ue *UpdateExam) Validate(orig Exam, validate *validator.Validate) error {
	if title := core.CleanString(ue.Title); title != "" {
		ue.Title = title
	} else {
		ue.Title = orig.Title
	}
	if ue.DurationMinutes == 0 {
		ue.DurationMinutes = orig.DurationMinutes
	}
	if ue.TotalPoints == 0 {
		ue.TotalPoints = orig.TotalPoints
	}
	if ue.PassingScore == 0 {
		ue.PassingScore = orig.PassingScore
	}
	return validate.Struct(ue)
}

type NewQuestion struct {
	Text          string `json:"text" validate:"required"`
	Type          string `json:"type"`
	Points        int    `json:"points" validate:"required,gt=0"`
	CorrectAnswer string `json:"correctAnswer" validate:"required"`
}

func (nq *NewQuestion) Validate(validate *validator.Validate) error {
	nq.Text = core.CleanString(nq.Text)
	nq.Type = core.CleanString(nq.Type)
	return validate.Struct(nq)
}

// AddExamQuestion attaches an existing question to an exam at a position.
type AddExamQuestion struct {
	QuestionID  int `json:"questionId" validate:"required"`
	OrderNumber int `json:"orderNumber" validate:"gte=0"`
}

func (aq *AddExamQuestion) Validate(validate *validator.Validate) error {
	return validate.Struct(aq)
}

// Answer is a student's response to one question of an attempt.
type Answer struct {
	QuestionID int    `json:"questionId" validate:"required"`
	Answer     string `json:"answer"`
}

type SubmitAttempt struct {
	Answers          []Answer `json:"answers" validate:"required,dive"`
	TimeSpentMinutes int      `json:"timeSpent" validate:"gte=0"`
}

func (sa *SubmitAttempt) Validate(validate *validator.Validate) error {
	return validate.Struct(sa)
}

// AttemptResult is the outcome of a completed attempt.
type AttemptResult struct {
	Attempt
	Passed bool `json:"passed"`
}
