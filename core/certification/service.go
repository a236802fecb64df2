package certification

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/educert/backend/core"
)

var (
	// ErrNotFound is returned when a requested certification does not exist.
	ErrNotFound = core.NewNotFoundError("certification not found")
	// ErrIssuanceNotFound is returned when the student does not hold the certification.
	ErrIssuanceNotFound = core.NewNotFoundError("certification not issued to this student")
	// ErrAlreadyIssued is returned on a duplicate issuance.
	ErrAlreadyIssued = core.NewConflictError("certification already issued to this student")
	// ErrAlreadyAssociated is returned when a certification is linked to the same course twice.
	ErrAlreadyAssociated = core.NewConflictError("certification already associated with this course")
	// ErrAssociationNotFound is returned when unlinking a course that is not linked.
	ErrAssociationNotFound = core.NewNotFoundError("certification not associated with this course")
)

type (
	Repository interface {
		CreateCertification(ctx context.Context, cert Certification) (Certification, error)
		QueryAllCertifications(ctx context.Context) ([]Certification, error)
		GetCertificationByID(ctx context.Context, id int) (Certification, error)
		UpdateCertification(ctx context.Context, cert Certification) (Certification, error)
		DeleteCertification(ctx context.Context, id int) error

		AssociateCourse(ctx context.Context, certificationID, courseID int) error
		DissociateCourse(ctx context.Context, certificationID, courseID int) error
		QueryCourseCertifications(ctx context.Context, courseID int) ([]Certification, error)

		CreateIssuance(ctx context.Context, iss Issuance) (Issuance, error)
		GetIssuance(ctx context.Context, studentID, certificationID int) (Issuance, error)
		QueryStudentIssuances(ctx context.Context, studentID int) ([]Issuance, error)
	}

	Service struct {
		repo    Repository
		nowFunc func() time.Time // mocked in tests
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, nowFunc: time.Now}
}

func (svc *Service) Create(ctx context.Context, nc NewCertification) (Certification, error) {
	now := time.Now().UTC()
	cert := Certification{
		Title:       nc.Title,
		IssueDate:   nc.IssueDate,
		ExpiryDate:  nc.ExpiryDate,
		IssuingBody: nc.IssuingBody,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	cert, err := svc.repo.CreateCertification(ctx, cert)
	return cert, errors.Wrap(err, "creating certification")
}

func (svc *Service) QueryAll(ctx context.Context) ([]Certification, error) {
	certs, err := svc.repo.QueryAllCertifications(ctx)
	return certs, errors.Wrap(err, "querying certifications")
}

func (svc *Service) GetByID(ctx context.Context, id int) (Certification, error) {
	return svc.repo.GetCertificationByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, orig Certification, uc UpdateCertification) (Certification, error) {
	orig.Title = uc.Title
	orig.IssueDate = uc.IssueDate
	orig.ExpiryDate = uc.ExpiryDate
	orig.IssuingBody = uc.IssuingBody
	orig.UpdatedAt = time.Now().UTC()
	cert, err := svc.repo.UpdateCertification(ctx, orig)
	return cert, errors.Wrap(err, "updating certification")
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return errors.Wrap(svc.repo.DeleteCertification(ctx, id), "deleting certification")
}

func (svc *Service) AssociateCourse(ctx context.Context, certificationID, courseID int) error {
	if _, err := svc.repo.GetCertificationByID(ctx, certificationID); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.AssociateCourse(ctx, certificationID, courseID), "associating course")
}

func (svc *Service) DissociateCourse(ctx context.Context, certificationID, courseID int) error {
	if _, err := svc.repo.GetCertificationByID(ctx, certificationID); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DissociateCourse(ctx, certificationID, courseID), "dissociating course")
}

func (svc *Service) QueryByCourse(ctx context.Context, courseID int) ([]Certification, error) {
	certs, err := svc.repo.QueryCourseCertifications(ctx, courseID)
	return certs, errors.Wrap(err, "querying course certifications")
}

// Issue grants a certification to a student. A student holds at most one
// issuance per certification.
func (svc *Service) Issue(ctx context.Context, ni NewIssuance) (Issuance, error) {
	if _, err := svc.repo.GetCertificationByID(ctx, ni.CertificationID); err != nil {
		return Issuance{}, err
	}
	if _, err := svc.repo.GetIssuance(ctx, ni.StudentID, ni.CertificationID); err == nil {
		return Issuance{}, ErrAlreadyIssued
	} else if !core.IsNotFound(err) {
		return Issuance{}, errors.Wrap(err, "checking existing issuance")
	}
	iss := Issuance{
		StudentID:       ni.StudentID,
		CertificationID: ni.CertificationID,
		IssueDate:       time.Now().UTC(),
	}
	iss, err := svc.repo.CreateIssuance(ctx, iss)
	return iss, errors.Wrap(err, "creating issuance")
}

func (svc *Service) QueryStudentIssuances(ctx context.Context, studentID int) ([]Issuance, error) {
	isss, err := svc.repo.QueryStudentIssuances(ctx, studentID)
	return isss, errors.Wrap(err, "querying student issuances")
}

// Verify reports whether the student holds the certification and whether it
// has expired. It is a pure read meant to be publicly accessible so third
// parties can check a claimed certification.
func (svc *Service) Verify(ctx context.Context, studentID, certificationID int) (Verification, error) {
	cert, err := svc.repo.GetCertificationByID(ctx, certificationID)
	if err != nil {
		return Verification{}, err
	}
	if _, err = svc.repo.GetIssuance(ctx, studentID, certificationID); err != nil {
		return Verification{}, err
	}
	expired := cert.ExpiryDate.Valid && cert.ExpiryDate.Time.Before(svc.nowFunc().UTC())
	return Verification{Verified: !expired, IsExpired: expired}, nil
}
