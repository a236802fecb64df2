package report

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
)

// Report types
const (
	TypeCoursePopularity = "CoursePopularity"
	TypeCourseRating     = "CourseRating"
	TypeStudentProgress  = "StudentProgress"
)

// Report is an immutable record of a generated report. Rows are only ever
// created and deleted, never updated.
type Report struct {
	ID              int       `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	GeneratedDate   time.Time `json:"generatedDate" db:"generated_date"` // UTC
	ReportType      string    `json:"reportType" db:"report_type"`
	Format          string    `json:"format" db:"format"`
	Parameters      []byte    `json:"-" db:"parameters"` // JSON blob of the generation inputs
	AdministratorID int       `json:"administratorId" db:"administrator_id"`
}

// PopularityParams bounds the enrollment count report. A missing range
// defaults to the last month.
type PopularityParams struct {
	StartDate null.Time `json:"startDate"`
	EndDate   null.Time `json:"endDate"`
}

func (pp *PopularityParams) Validate(validate *validator.Validate) error {
	return validate.Struct(pp)
}

type ProgressParams struct {
	CourseID int `json:"courseId" validate:"required"`
}

func (pp *ProgressParams) Validate(validate *validator.Validate) error {
	return validate.Struct(pp)
}
