package dummydb

import (
	"context"
	"sort"

	"github.com/educert/backend/core/payment"
)

var paymentPKCount int

type paymentRepository struct {
	db      *paymentTable
	courses *courseTable
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *DB) *paymentRepository {
	return &paymentRepository{db: db.payment, courses: db.course}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, pmt payment.Payment) (payment.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	paymentPKCount++
	pmt.ID = paymentPKCount
	repo.db.table[pmt.ID] = &pmt
	return pmt, nil
}

func (repo *paymentRepository) GetPaymentByID(ctx context.Context, id int) (payment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if pmt, ok := repo.db.table[id]; ok {
		return *pmt, nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) QueryStudentPayments(ctx context.Context, studentID int) ([]payment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var pmts []payment.Payment
	for _, pmt := range repo.db.table {
		if pmt.StudentID != studentID {
			continue
		}
		p := *pmt
		repo.courses.RLock()
		if crs, ok := repo.courses.courses[p.CourseID]; ok {
			p.CourseTitle = crs.Title
		}
		repo.courses.RUnlock()
		pmts = append(pmts, p)
	}
	sort.Slice(pmts, func(i, j int) bool { return pmts[i].Date.After(pmts[j].Date) })
	return pmts, nil
}

func (repo *paymentRepository) QueryCoursePayments(ctx context.Context, courseID int) ([]payment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var pmts []payment.Payment
	for _, pmt := range repo.db.table {
		if pmt.CourseID == courseID {
			pmts = append(pmts, *pmt)
		}
	}
	sort.Slice(pmts, func(i, j int) bool { return pmts[i].Date.After(pmts[j].Date) })
	return pmts, nil
}

func (repo *paymentRepository) UpdatePayment(ctx context.Context, pmt payment.Payment) (payment.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[pmt.ID]; !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	repo.db.table[pmt.ID] = &pmt
	return pmt, nil
}
