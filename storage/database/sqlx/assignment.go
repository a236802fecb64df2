package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/educert/backend/core/assignment"
)

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo assignmentRepository) CreateAssignment(ctx context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO assignment (title, due_date, max_points, weight, lecture_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		asg.Title, asg.DueDate, asg.MaxPoints, asg.Weight, asg.LectureID, asg.CreatedAt, asg.UpdatedAt,
	).Scan(&asg.ID)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asg, nil
}

func (repo assignmentRepository) GetAssignmentByID(ctx context.Context, id int) (assignment.Assignment, error) {
	var asg assignment.Assignment
	if err := repo.db.GetContext(ctx, &asg, `SELECT * FROM assignment WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "finding assignment by ID")
	}
	return asg, nil
}

func (repo assignmentRepository) QueryLectureAssignments(ctx context.Context, lectureID int) ([]assignment.Assignment, error) {
	var asgs []assignment.Assignment
	err := repo.db.SelectContext(ctx, &asgs,
		`SELECT * FROM assignment WHERE lecture_id = $1 ORDER BY due_date NULLS LAST`, lectureID)
	if err != nil {
		return nil, errors.Wrap(err, "querying lecture assignments")
	}
	return asgs, nil
}

func (repo assignmentRepository) UpdateAssignment(ctx context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE assignment SET title = $1, due_date = $2, max_points = $3, weight = $4, updated_at = $5 WHERE id = $6`,
		asg.Title, asg.DueDate, asg.MaxPoints, asg.Weight, asg.UpdatedAt, asg.ID)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return asg, nil
}

func (repo assignmentRepository) DeleteAssignment(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM assignment WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

func (repo assignmentRepository) CreateSubmission(ctx context.Context, sub assignment.Submission) (assignment.Submission, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO submission (submission_content, submission_date, grade, feedback_text, student_id, assignment_id)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		sub.SubmissionContent, sub.SubmissionDate, sub.Grade, sub.FeedbackText, sub.StudentID, sub.AssignmentID,
	).Scan(&sub.ID)
	if err != nil {
		return assignment.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return sub, nil
}

func (repo assignmentRepository) GetSubmissionByID(ctx context.Context, id int) (assignment.Submission, error) {
	var sub assignment.Submission
	if err := repo.db.GetContext(ctx, &sub, `SELECT * FROM submission WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return assignment.Submission{}, assignment.ErrSubmissionNotFound
		}
		return assignment.Submission{}, errors.Wrap(err, "finding submission by ID")
	}
	return sub, nil
}

func (repo assignmentRepository) GetSubmission(ctx context.Context, studentID, assignmentID int) (assignment.Submission, error) {
	var sub assignment.Submission
	err := repo.db.GetContext(ctx, &sub,
		`SELECT * FROM submission WHERE student_id = $1 AND assignment_id = $2`, studentID, assignmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return assignment.Submission{}, assignment.ErrSubmissionNotFound
		}
		return assignment.Submission{}, errors.Wrap(err, "finding submission")
	}
	return sub, nil
}

func (repo assignmentRepository) QueryAssignmentSubmissions(ctx context.Context, assignmentID int) ([]assignment.Submission, error) {
	var subs []assignment.Submission
	err := repo.db.SelectContext(ctx, &subs,
		`SELECT s.*, u.name AS student_name FROM submission s
		 JOIN "user" u ON u.id = s.student_id
		 WHERE s.assignment_id = $1 ORDER BY s.submission_date`, assignmentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignment submissions")
	}
	return subs, nil
}

func (repo assignmentRepository) QueryStudentSubmissions(ctx context.Context, studentID int) ([]assignment.Submission, error) {
	var subs []assignment.Submission
	err := repo.db.SelectContext(ctx, &subs,
		`SELECT * FROM submission WHERE student_id = $1 ORDER BY submission_date DESC`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying student submissions")
	}
	return subs, nil
}

func (repo assignmentRepository) UpdateSubmission(ctx context.Context, sub assignment.Submission) (assignment.Submission, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE submission SET submission_content = $1, submission_date = $2, grade = $3, feedback_text = $4
		 WHERE id = $5`,
		sub.SubmissionContent, sub.SubmissionDate, sub.Grade, sub.FeedbackText, sub.ID)
	if err != nil {
		return assignment.Submission{}, errors.Wrap(err, "updating submission")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	return sub, nil
}
