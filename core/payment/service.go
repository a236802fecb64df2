package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/educert/backend/core"
)

// ErrNotFound is returned when a requested payment does not exist.
var ErrNotFound = core.NewNotFoundError("payment not found")

type (
	Repository interface {
		CreatePayment(ctx context.Context, pmt Payment) (Payment, error)
		GetPaymentByID(ctx context.Context, id int) (Payment, error)
		QueryStudentPayments(ctx context.Context, studentID int) ([]Payment, error)
		QueryCoursePayments(ctx context.Context, courseID int) ([]Payment, error)
		UpdatePayment(ctx context.Context, pmt Payment) (Payment, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record captures a completed payment with a fresh transaction reference.
func (svc *Service) Record(ctx context.Context, np NewPayment, studentID int) (Payment, error) {
	pmt := Payment{
		Amount:        np.Amount,
		Method:        np.Method,
		Date:          time.Now().UTC(),
		Status:        StatusCompleted,
		TransactionID: uuid.New().String(),
		StudentID:     studentID,
		CourseID:      np.CourseID,
	}
	pmt, err := svc.repo.CreatePayment(ctx, pmt)
	return pmt, errors.Wrap(err, "creating payment")
}

func (svc *Service) GetByID(ctx context.Context, id int) (Payment, error) {
	return svc.repo.GetPaymentByID(ctx, id)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID int) ([]Payment, error) {
	pmts, err := svc.repo.QueryStudentPayments(ctx, studentID)
	return pmts, errors.Wrap(err, "querying student payments")
}

func (svc *Service) QueryByCourse(ctx context.Context, courseID int) ([]Payment, error) {
	pmts, err := svc.repo.QueryCoursePayments(ctx, courseID)
	return pmts, errors.Wrap(err, "querying course payments")
}

// Refund marks a payment refunded. Refunding twice is harmless.
func (svc *Service) Refund(ctx context.Context, id int) (Payment, error) {
	pmt, err := svc.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	pmt.Status = StatusRefunded
	pmt, err = svc.repo.UpdatePayment(ctx, pmt)
	return pmt, errors.Wrap(err, "refunding payment")
}
