package dummydb

import (
	"context"
	"sort"

	"github.com/educert/backend/core/certification"
)

var certificationPKCount int

type certificationRepository struct {
	db *certificationTable
}

var _ certification.Repository = (*certificationRepository)(nil) // interface compliance check

func NewCertificationRepository(db *DB) *certificationRepository {
	return &certificationRepository{db: db.certification}
}

func (repo *certificationRepository) CreateCertification(ctx context.Context, cert certification.Certification) (certification.Certification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	certificationPKCount++
	cert.ID = certificationPKCount
	repo.db.certifications[cert.ID] = &cert
	return cert, nil
}

func (repo *certificationRepository) QueryAllCertifications(ctx context.Context) ([]certification.Certification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	certs := make([]certification.Certification, 0, len(repo.db.certifications))
	for _, cert := range repo.db.certifications {
		certs = append(certs, *cert)
	}
	sort.Slice(certs, func(i, j int) bool { return certs[i].Title < certs[j].Title })
	return certs, nil
}

func (repo *certificationRepository) GetCertificationByID(ctx context.Context, id int) (certification.Certification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cert, ok := repo.db.certifications[id]; ok {
		return *cert, nil
	}
	return certification.Certification{}, certification.ErrNotFound
}

func (repo *certificationRepository) UpdateCertification(ctx context.Context, cert certification.Certification) (certification.Certification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.certifications[cert.ID]; !ok {
		return certification.Certification{}, certification.ErrNotFound
	}
	repo.db.certifications[cert.ID] = &cert
	return cert, nil
}

func (repo *certificationRepository) DeleteCertification(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.certifications[id]; !ok {
		return certification.ErrNotFound
	}
	delete(repo.db.certifications, id)

	rows := repo.db.courseCerts[:0]
	for _, row := range repo.db.courseCerts {
		if row.certificationID != id {
			rows = append(rows, row)
		}
	}
	repo.db.courseCerts = rows

	isss := repo.db.issuances[:0]
	for _, iss := range repo.db.issuances {
		if iss.CertificationID != id {
			isss = append(isss, iss)
		}
	}
	repo.db.issuances = isss
	return nil
}

func (repo *certificationRepository) AssociateCourse(ctx context.Context, certificationID, courseID int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, row := range repo.db.courseCerts {
		if row.certificationID == certificationID && row.courseID == courseID {
			return certification.ErrAlreadyAssociated
		}
	}
	repo.db.courseCerts = append(repo.db.courseCerts, courseCertRow{courseID, certificationID})
	return nil
}

func (repo *certificationRepository) DissociateCourse(ctx context.Context, certificationID, courseID int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, row := range repo.db.courseCerts {
		if row.certificationID == certificationID && row.courseID == courseID {
			repo.db.courseCerts = append(repo.db.courseCerts[:i], repo.db.courseCerts[i+1:]...)
			return nil
		}
	}
	return certification.ErrAssociationNotFound
}

func (repo *certificationRepository) QueryCourseCertifications(ctx context.Context, courseID int) ([]certification.Certification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var certs []certification.Certification
	for _, row := range repo.db.courseCerts {
		if row.courseID != courseID {
			continue
		}
		if cert, ok := repo.db.certifications[row.certificationID]; ok {
			certs = append(certs, *cert)
		}
	}
	sort.Slice(certs, func(i, j int) bool { return certs[i].Title < certs[j].Title })
	return certs, nil
}

func (repo *certificationRepository) CreateIssuance(ctx context.Context, iss certification.Issuance) (certification.Issuance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.issuances {
		if existing.StudentID == iss.StudentID && existing.CertificationID == iss.CertificationID {
			return certification.Issuance{}, certification.ErrAlreadyIssued
		}
	}
	repo.db.issuances = append(repo.db.issuances, &iss)
	return iss, nil
}

func (repo *certificationRepository) GetIssuance(ctx context.Context, studentID, certificationID int) (certification.Issuance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, iss := range repo.db.issuances {
		if iss.StudentID == studentID && iss.CertificationID == certificationID {
			return *iss, nil
		}
	}
	return certification.Issuance{}, certification.ErrIssuanceNotFound
}

func (repo *certificationRepository) QueryStudentIssuances(ctx context.Context, studentID int) ([]certification.Issuance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var isss []certification.Issuance
	for _, iss := range repo.db.issuances {
		if iss.StudentID != studentID {
			continue
		}
		i := *iss
		if cert, ok := repo.db.certifications[iss.CertificationID]; ok {
			i.CertificationTitle = cert.Title
		}
		isss = append(isss, i)
	}
	sort.Slice(isss, func(i, j int) bool { return isss[i].IssueDate.After(isss[j].IssueDate) })
	return isss, nil
}
