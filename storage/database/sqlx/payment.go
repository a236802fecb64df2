package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/educert/backend/core/payment"
)

type paymentRepository struct {
	db *sqlx.DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *sqlx.DB) *paymentRepository {
	return &paymentRepository{db: db}
}

func (repo paymentRepository) CreatePayment(ctx context.Context, pmt payment.Payment) (payment.Payment, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO payment (amount, method, date, status, transaction_id, student_id, course_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		pmt.Amount, pmt.Method, pmt.Date, pmt.Status, pmt.TransactionID, pmt.StudentID, pmt.CourseID,
	).Scan(&pmt.ID)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return pmt, nil
}

func (repo paymentRepository) GetPaymentByID(ctx context.Context, id int) (payment.Payment, error) {
	var pmt payment.Payment
	if err := repo.db.GetContext(ctx, &pmt, `SELECT * FROM payment WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return payment.Payment{}, payment.ErrNotFound
		}
		return payment.Payment{}, errors.Wrap(err, "finding payment by ID")
	}
	return pmt, nil
}

func (repo paymentRepository) QueryStudentPayments(ctx context.Context, studentID int) ([]payment.Payment, error) {
	var pmts []payment.Payment
	err := repo.db.SelectContext(ctx, &pmts,
		`SELECT p.*, c.title AS course_title FROM payment p
		 JOIN course c ON c.id = p.course_id
		 WHERE p.student_id = $1 ORDER BY p.date DESC`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying student payments")
	}
	return pmts, nil
}

func (repo paymentRepository) QueryCoursePayments(ctx context.Context, courseID int) ([]payment.Payment, error) {
	var pmts []payment.Payment
	err := repo.db.SelectContext(ctx, &pmts,
		`SELECT * FROM payment WHERE course_id = $1 ORDER BY date DESC`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course payments")
	}
	return pmts, nil
}

func (repo paymentRepository) UpdatePayment(ctx context.Context, pmt payment.Payment) (payment.Payment, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE payment SET status = $1 WHERE id = $2`, pmt.Status, pmt.ID)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "updating payment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payment.Payment{}, payment.ErrNotFound
	}
	return pmt, nil
}
