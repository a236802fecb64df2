package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/educert/backend/core"
)

type (
	Assignment struct {
		ID        int       `json:"id" db:"id"`
		Title     string    `json:"title" db:"title"`
		DueDate   null.Time `json:"dueDate" db:"due_date"`
		MaxPoints int       `json:"maxPoints" db:"max_points"`
		Weight    float64   `json:"weight" db:"weight"`
		LectureID int       `json:"lectureId" db:"lecture_id"`
		CreatedAt time.Time `json:"createdAt" db:"created_at"` // UTC
		UpdatedAt time.Time `json:"updatedAt" db:"updated_at"` // UTC
	}

	Submission struct {
		ID                int       `json:"id" db:"id"`
		SubmissionContent string    `json:"submissionContent" db:"submission_content"`
		SubmissionDate    time.Time `json:"submissionDate" db:"submission_date"` // UTC
		Grade             null.Int  `json:"grade" db:"grade"`
		FeedbackText      string    `json:"feedbackText" db:"feedback_text"`
		StudentID         int       `json:"studentId" db:"student_id"`
		AssignmentID      int       `json:"assignmentId" db:"assignment_id"`

		StudentName string `json:"studentName,omitempty" db:"student_name"`
	}
)

type NewAssignment struct {
	Title     string    `json:"title" validate:"required"`
	DueDate   null.Time `json:"dueDate"`
	MaxPoints int       `json:"maxPoints" validate:"omitempty,gte=0"`
	Weight    float64   `json:"weight" validate:"omitempty,gte=0"`
	LectureID int       `json:"lectureId" validate:"required"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	return validate.Struct(na)
}

type UpdateAssignment struct {
	Title     string    `json:"title"`
	DueDate   null.Time `json:"dueDate"`
	MaxPoints int       `json:"maxPoints" validate:"omitempty,gte=0"`
	Weight    float64   `json:"weight" validate:"omitempty,gte=0"`
}

func (ua *UpdateAssignment) Validate(orig Assignment, validate *validator.Validate) error {
	if title := core.CleanString(ua.Title); title != "" {
		ua.Title = title
	} else {
		ua.Title = orig.Title
	}
	if !ua.DueDate.Valid {
		ua.DueDate = orig.DueDate
	}
	if ua.MaxPoints == 0 {
		ua.MaxPoints = orig.MaxPoints
	}
	if ua.Weight == 0 {
		ua.Weight = orig.Weight
	}
	return validate.Struct(ua)
}

type NewSubmission struct {
	SubmissionContent string `json:"submissionContent" validate:"required"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	return validate.Struct(ns)
}

type GradeSubmission struct {
	Grade        int    `json:"grade" validate:"gte=0"`
	FeedbackText string `json:"feedbackText"`
}

func (gs *GradeSubmission) Validate(validate *validator.Validate) error {
	gs.FeedbackText = core.CleanString(gs.FeedbackText)
	return validate.Struct(gs)
}
