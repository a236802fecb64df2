package enrollment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
)

type Enrollment struct {
	ID             int       `json:"id" db:"id"`
	EnrollmentDate time.Time `json:"enrollmentDate" db:"enrollment_date"` // UTC
	Status         string    `json:"status" db:"status"`
	Progress       int       `json:"progress" db:"progress"` // 0..100
	CompletionDate null.Time `json:"completionDate" db:"completion_date"`
	StudentID      int       `json:"studentId" db:"student_id"`
	CourseID       int       `json:"courseId" db:"course_id"`

	// populated on joined reads
	CourseTitle string `json:"courseTitle,omitempty" db:"course_title"`
	StudentName string `json:"studentName,omitempty" db:"student_name"`
}

// Enrollment statuses
const (
	StatusActive    = "Active"
	StatusCompleted = "Completed"
)

type NewEnrollment struct {
	CourseID int `json:"courseId" validate:"required"`
}

func (ne *NewEnrollment) Validate(validate *validator.Validate) error {
	return validate.Struct(ne)
}

type UpdateProgress struct {
	Progress int `json:"progress" validate:"gte=0,lte=100"`
}

func (up *UpdateProgress) Validate(validate *validator.Validate) error {
	return validate.Struct(up)
}
