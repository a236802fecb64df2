package certification

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/educert/backend/core"
)

type (
	Certification struct {
		ID          int       `json:"id" db:"id"`
		Title       string    `json:"title" db:"title"`
		IssueDate   null.Time `json:"issueDate" db:"issue_date"`
		ExpiryDate  null.Time `json:"expiryDate" db:"expiry_date"`
		IssuingBody string    `json:"issuingBody" db:"issuing_body"`
		CreatedAt   time.Time `json:"createdAt" db:"created_at"` // UTC
		UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"` // UTC
	}

	// Issuance records that a student holds a certification.
	Issuance struct {
		StudentID       int       `json:"studentId" db:"student_id"`
		CertificationID int       `json:"certificationId" db:"certification_id"`
		IssueDate       time.Time `json:"issueDate" db:"issue_date"` // UTC

		CertificationTitle string `json:"certificationTitle,omitempty" db:"certification_title"`
		StudentName        string `json:"studentName,omitempty" db:"student_name"`
	}

	// Verification is the public answer to "does this student hold this
	// certification, and is it still valid".
	Verification struct {
		Verified  bool `json:"verified"`
		IsExpired bool `json:"isExpired"`
	}
)

type NewCertification struct {
	Title       string    `json:"title" validate:"required"`
	IssueDate   null.Time `json:"issueDate"`
	ExpiryDate  null.Time `json:"expiryDate"`
	IssuingBody string    `json:"issuingBody"`
}

func (nc *NewCertification) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.IssuingBody = core.CleanString(nc.IssuingBody)
	return validate.Struct(nc)
}

type UpdateCertification struct {
	Title       string    `json:"title"`
	IssueDate   null.Time `json:"issueDate"`
	ExpiryDate  null.Time `json:"expiryDate"`
	IssuingBody string    `json:"issuingBody"`
}

func (uc *UpdateCertification) Validate(orig Certification, validate *validator.Validate) error {
	if title := core.CleanString(uc.Title); title != "" {
		uc.Title = title
	} else {
		uc.Title = orig.Title
	}
	if !uc.IssueDate.Valid {
		uc.IssueDate = orig.IssueDate
	}
	if !uc.ExpiryDate.Valid {
		uc.ExpiryDate = orig.ExpiryDate
	}
	if uc.IssuingBody == "" {
		uc.IssuingBody = orig.IssuingBody
	}
	return validate.Struct(uc)
}

type NewIssuance struct {
	StudentID       int `json:"studentId" validate:"required"`
	CertificationID int `json:"certificationId" validate:"required"`
}

func (ni *NewIssuance) Validate(validate *validator.Validate) error {
	return validate.Struct(ni)
}
