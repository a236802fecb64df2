package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/educert/backend/core"
)

// Course statuses
const (
	StatusActive   = "Active"
	StatusArchived = "Archived"
)

type (
	Course struct {
		ID                  int       `json:"id" db:"id"`
		Title               string    `json:"title" db:"title"`
		Description         string    `json:"description" db:"description"`
		Difficulty          string    `json:"difficulty" db:"difficulty"`
		Language            string    `json:"language" db:"language"`
		DurationMinutes     int       `json:"durationMinutes" db:"duration_minutes"`
		InstructorID        int       `json:"instructorId" db:"instructor_id"`
		CertificationOption bool      `json:"certificationOption" db:"certification_option"`
		Status              string    `json:"status" db:"status"`
		CreatedAt           time.Time `json:"createdAt" db:"created_at"` // UTC
		UpdatedAt           time.Time `json:"updatedAt" db:"updated_at"` // UTC

		// derived
		InstructorName string  `json:"instructorName,omitempty" db:"instructor_name"`
		AverageRating  float64 `json:"averageRating" db:"average_rating"`
		ReviewCount    int     `json:"reviewCount" db:"review_count"`

		// populated on detail reads only
		Modules []Module `json:"modules,omitempty" db:"-"`
		Reviews []Review `json:"reviews,omitempty" db:"-"`
	}

	Module struct {
		ID          int       `json:"id" db:"id"`
		Title       string    `json:"title" db:"title"`
		Description string    `json:"description" db:"description"`
		OrderNumber int       `json:"orderNumber" db:"order_number"`
		CourseID    int       `json:"courseId" db:"course_id"`
		CreatedAt   time.Time `json:"createdAt" db:"created_at"`
		UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

		Lectures []Lecture `json:"lectures,omitempty" db:"-"`
	}

	Lecture struct {
		ID              int       `json:"id" db:"id"`
		Title           string    `json:"title" db:"title"`
		Description     string    `json:"description" db:"description"`
		DurationMinutes int       `json:"durationMinutes" db:"duration_minutes"`
		OrderNumber     int       `json:"orderNumber" db:"order_number"`
		ModuleID        int       `json:"moduleId" db:"module_id"`
		CreatedAt       time.Time `json:"createdAt" db:"created_at"`
		UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`

		Contents []Content `json:"contents,omitempty" db:"-"`
	}

	Content struct {
		ID         int       `json:"id" db:"id"`
		Title      string    `json:"title" db:"title"`
		Type       string    `json:"type" db:"type"`
		Data       string    `json:"data" db:"data"`
		UploadDate time.Time `json:"uploadDate" db:"upload_date"`
		LectureID  int       `json:"lectureId" db:"lecture_id"`
	}

	Review struct {
		ID          int       `json:"id" db:"id"`
		Rating      int       `json:"rating" db:"rating"`
		Comment     string    `json:"comment" db:"comment"`
		Date        time.Time `json:"date" db:"date"`
		StudentID   int       `json:"studentId" db:"student_id"`
		CourseID    int       `json:"courseId" db:"course_id"`
		StudentName string    `json:"studentName,omitempty" db:"student_name"`
	}
)

// NewCourse contains information needed to create a new Course.
// The owning instructor is always the authenticated caller.
type NewCourse struct {
	Title               string `json:"title" validate:"required"`
	Description         string `json:"description"`
	Difficulty          string `json:"difficulty"`
	Language            string `json:"language"`
	DurationMinutes     int    `json:"durationMinutes" validate:"omitempty,gte=0"`
	CertificationOption bool   `json:"certificationOption"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Difficulty = core.CleanString(nc.Difficulty)
	nc.Language = core.CleanString(nc.Language)
	return validate.Struct(nc)
}

type UpdateCourse struct {
	Title               string `json:"title"`
	Description         string `json:"description"`
	Difficulty          string `json:"difficulty"`
	Language            string `json:"language"`
	DurationMinutes     int    `json:"durationMinutes" validate:"omitempty,gte=0"`
	CertificationOption *bool  `json:"certificationOption"`
	Status              string `json:"status"`
}

func (uc *UpdateCourse) Validate(orig Course, validate *validator.Validate) error {
	if title := core.CleanString(uc.Title); title != "" {
		uc.Title = title
	} else {
		uc.Title = orig.Title
	}
	if uc.Description == "" {
		uc.Description = orig.Description
	}
	if uc.Difficulty == "" {
		uc.Difficulty = orig.Difficulty
	}
	if uc.Language == "" {
		uc.Language = orig.Language
	}
	if uc.DurationMinutes == 0 {
		uc.DurationMinutes = orig.DurationMinutes
	}
	if uc.Status == "" {
		uc.Status = orig.Status
	}
	return validate.Struct(uc)
}

type NewModule struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	OrderNumber int    `json:"orderNumber" validate:"gte=0"`
	CourseID    int    `json:"courseId" validate:"required"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	return validate.Struct(nm)
}

type NewLecture struct {
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"durationMinutes" validate:"omitempty,gte=0"`
	OrderNumber     int    `json:"orderNumber" validate:"gte=0"`
	ModuleID        int    `json:"moduleId" validate:"required"`
}

func (nl *NewLecture) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	return validate.Struct(nl)
}

type NewContent struct {
	Title     string `json:"title" validate:"required"`
	Type      string `json:"type" validate:"required"`
	Data      string `json:"data" validate:"required"`
	LectureID int    `json:"lectureId" validate:"required"`
}

func (nc *NewContent) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Type = core.CleanString(nc.Type)
	return validate.Struct(nc)
}

type NewReview struct {
	Rating   int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment  string `json:"comment"`
	CourseID int    `json:"courseId" validate:"required"`
}

func (nr *NewReview) Validate(validate *validator.Validate) error {
	nr.Comment = core.CleanString(nr.Comment)
	return validate.Struct(nr)
}

// QueryFilter narrows course listings. All fields are optional and ANDed.
type QueryFilter struct {
	Title          string `query:"title"`
	Difficulty     string `query:"difficulty"`
	Language       string `query:"language"`
	InstructorID   int    `query:"instructorId"`
	InstructorName string `query:"instructorName"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Title == "" && qf.Difficulty == "" && qf.Language == "" && qf.InstructorID == 0 && qf.InstructorName == ""
}

func (qf *QueryFilter) Clean() {
	qf.Title = core.CleanString(qf.Title)
	qf.Difficulty = core.CleanString(qf.Difficulty)
	qf.Language = core.CleanString(qf.Language)
	qf.InstructorName = core.CleanString(qf.InstructorName)
}
