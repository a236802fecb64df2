package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/educert/backend/core/enrollment"
)

type enrollmentRepository struct {
	db *sqlx.DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *sqlx.DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (repo enrollmentRepository) CreateEnrollment(ctx context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO enrollment (enrollment_date, status, progress, completion_date, student_id, course_id)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		enr.EnrollmentDate, enr.Status, enr.Progress, enr.CompletionDate, enr.StudentID, enr.CourseID,
	).Scan(&enr.ID)
	if err != nil {
		return enrollment.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo enrollmentRepository) GetEnrollment(ctx context.Context, studentID, courseID int) (enrollment.Enrollment, error) {
	var enr enrollment.Enrollment
	err := repo.db.GetContext(ctx, &enr,
		`SELECT * FROM enrollment WHERE student_id = $1 AND course_id = $2`, studentID, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return enrollment.Enrollment{}, enrollment.ErrNotFound
		}
		return enrollment.Enrollment{}, errors.Wrap(err, "finding enrollment")
	}
	return enr, nil
}

func (repo enrollmentRepository) QueryStudentEnrollments(ctx context.Context, studentID int) ([]enrollment.Enrollment, error) {
	var enrs []enrollment.Enrollment
	err := repo.db.SelectContext(ctx, &enrs,
		`SELECT e.*, c.title AS course_title FROM enrollment e
		 JOIN course c ON c.id = e.course_id
		 WHERE e.student_id = $1 ORDER BY e.enrollment_date DESC`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying student enrollments")
	}
	return enrs, nil
}

func (repo enrollmentRepository) QueryCourseEnrollments(ctx context.Context, courseID int) ([]enrollment.Enrollment, error) {
	var enrs []enrollment.Enrollment
	err := repo.db.SelectContext(ctx, &enrs,
		`SELECT e.*, u.name AS student_name FROM enrollment e
		 JOIN "user" u ON u.id = e.student_id
		 WHERE e.course_id = $1 ORDER BY e.enrollment_date`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course enrollments")
	}
	return enrs, nil
}

func (repo enrollmentRepository) UpdateEnrollment(ctx context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE enrollment SET status = $1, progress = $2, completion_date = $3 WHERE id = $4`,
		enr.Status, enr.Progress, enr.CompletionDate, enr.ID)
	if err != nil {
		return enrollment.Enrollment{}, errors.Wrap(err, "updating enrollment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return enrollment.Enrollment{}, enrollment.ErrNotFound
	}
	return enr, nil
}

func (repo enrollmentRepository) DeleteEnrollment(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM enrollment WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return enrollment.ErrNotFound
	}
	return nil
}

func (repo enrollmentRepository) QueryPopularityStats(ctx context.Context, from, to time.Time) ([]enrollment.PopularityStat, error) {
	var stats []enrollment.PopularityStat
	err := repo.db.SelectContext(ctx, &stats,
		`SELECT c.id AS course_id, c.title, COUNT(e.id) AS enrollment_count
		 FROM course c
		 LEFT JOIN enrollment e ON e.course_id = c.id AND e.enrollment_date BETWEEN $1 AND $2
		 GROUP BY c.id, c.title
		 ORDER BY enrollment_count DESC`, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "querying popularity stats")
	}
	return stats, nil
}

func (repo enrollmentRepository) QueryProgressStats(ctx context.Context, courseID int) ([]enrollment.ProgressStat, error) {
	var stats []enrollment.ProgressStat
	err := repo.db.SelectContext(ctx, &stats,
		`SELECT e.student_id, u.name AS student_name, e.course_id, c.title AS course_title,
		        e.progress, e.status, e.enrollment_date
		 FROM enrollment e
		 JOIN "user" u ON u.id = e.student_id
		 JOIN course c ON c.id = e.course_id
		 WHERE e.course_id = $1
		 ORDER BY u.name`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying progress stats")
	}
	return stats, nil
}
