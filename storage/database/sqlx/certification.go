package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/educert/backend/core/certification"
)

type certificationRepository struct {
	db *sqlx.DB
}

var _ certification.Repository = (*certificationRepository)(nil) // interface compliance check

func NewCertificationRepository(db *sqlx.DB) *certificationRepository {
	return &certificationRepository{db: db}
}

func (repo certificationRepository) CreateCertification(ctx context.Context, cert certification.Certification) (certification.Certification, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO certification (title, issue_date, expiry_date, issuing_body, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		cert.Title, cert.IssueDate, cert.ExpiryDate, cert.IssuingBody, cert.CreatedAt, cert.UpdatedAt,
	).Scan(&cert.ID)
	if err != nil {
		return certification.Certification{}, errors.Wrap(err, "inserting certification")
	}
	return cert, nil
}

func (repo certificationRepository) QueryAllCertifications(ctx context.Context) ([]certification.Certification, error) {
	var certs []certification.Certification
	if err := repo.db.SelectContext(ctx, &certs, `SELECT * FROM certification ORDER BY title`); err != nil {
		return nil, errors.Wrap(err, "querying certifications")
	}
	return certs, nil
}

func (repo certificationRepository) GetCertificationByID(ctx context.Context, id int) (certification.Certification, error) {
	var cert certification.Certification
	if err := repo.db.GetContext(ctx, &cert, `SELECT * FROM certification WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return certification.Certification{}, certification.ErrNotFound
		}
		return certification.Certification{}, errors.Wrap(err, "finding certification by ID")
	}
	return cert, nil
}

func (repo certificationRepository) UpdateCertification(ctx context.Context, cert certification.Certification) (certification.Certification, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE certification SET title = $1, issue_date = $2, expiry_date = $3, issuing_body = $4, updated_at = $5
		 WHERE id = $6`,
		cert.Title, cert.IssueDate, cert.ExpiryDate, cert.IssuingBody, cert.UpdatedAt, cert.ID)
	if err != nil {
		return certification.Certification{}, errors.Wrap(err, "updating certification")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return certification.Certification{}, certification.ErrNotFound
	}
	return cert, nil
}

func (repo certificationRepository) DeleteCertification(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM certification WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting certification")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return certification.ErrNotFound
	}
	return nil
}

func (repo certificationRepository) AssociateCourse(ctx context.Context, certificationID, courseID int) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO course_certification (course_id, certification_id) VALUES ($1, $2)`,
		courseID, certificationID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return certification.ErrAlreadyAssociated
		}
		return errors.Wrap(err, "associating course")
	}
	return nil
}

func (repo certificationRepository) DissociateCourse(ctx context.Context, certificationID, courseID int) error {
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM course_certification WHERE course_id = $1 AND certification_id = $2`,
		courseID, certificationID)
	if err != nil {
		return errors.Wrap(err, "dissociating course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return certification.ErrAssociationNotFound
	}
	return nil
}

func (repo certificationRepository) QueryCourseCertifications(ctx context.Context, courseID int) ([]certification.Certification, error) {
	var certs []certification.Certification
	err := repo.db.SelectContext(ctx, &certs,
		`SELECT c.* FROM certification c
		 JOIN course_certification cc ON cc.certification_id = c.id
		 WHERE cc.course_id = $1 ORDER BY c.title`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course certifications")
	}
	return certs, nil
}

func (repo certificationRepository) CreateIssuance(ctx context.Context, iss certification.Issuance) (certification.Issuance, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO student_certification (student_id, certification_id, issue_date) VALUES ($1, $2, $3)`,
		iss.StudentID, iss.CertificationID, iss.IssueDate)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return certification.Issuance{}, certification.ErrAlreadyIssued
		}
		return certification.Issuance{}, errors.Wrap(err, "inserting issuance")
	}
	return iss, nil
}

func (repo certificationRepository) GetIssuance(ctx context.Context, studentID, certificationID int) (certification.Issuance, error) {
	var iss certification.Issuance
	err := repo.db.GetContext(ctx, &iss,
		`SELECT student_id, certification_id, issue_date FROM student_certification
		 WHERE student_id = $1 AND certification_id = $2`, studentID, certificationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return certification.Issuance{}, certification.ErrIssuanceNotFound
		}
		return certification.Issuance{}, errors.Wrap(err, "finding issuance")
	}
	return iss, nil
}

func (repo certificationRepository) QueryStudentIssuances(ctx context.Context, studentID int) ([]certification.Issuance, error) {
	var isss []certification.Issuance
	err := repo.db.SelectContext(ctx, &isss,
		`SELECT sc.student_id, sc.certification_id, sc.issue_date, c.title AS certification_title
		 FROM student_certification sc
		 JOIN certification c ON c.id = sc.certification_id
		 WHERE sc.student_id = $1 ORDER BY sc.issue_date DESC`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying student issuances")
	}
	return isss, nil
}
