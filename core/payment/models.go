package payment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/educert/backend/core"
)

// Payment statuses
const (
	StatusCompleted = "Completed"
	StatusRefunded  = "Refunded"
)

type Payment struct {
	ID            int       `json:"id" db:"id"`
	Amount        float64   `json:"amount" db:"amount"`
	Method        string    `json:"method" db:"method"`
	Date          time.Time `json:"date" db:"date"` // UTC
	Status        string    `json:"status" db:"status"`
	TransactionID string    `json:"transactionId" db:"transaction_id"`
	StudentID     int       `json:"studentId" db:"student_id"`
	CourseID      int       `json:"courseId" db:"course_id"`

	CourseTitle string `json:"courseTitle,omitempty" db:"course_title"`
}

type NewPayment struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Method   string  `json:"method" validate:"required"`
	CourseID int     `json:"courseId" validate:"required"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.Method = core.CleanString(np.Method)
	return validate.Struct(np)
}
