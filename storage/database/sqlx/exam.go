package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/educert/backend/core/exam"
)

type examRepository struct {
	db *sqlx.DB
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *sqlx.DB) *examRepository {
	return &examRepository{db: db}
}

func (repo examRepository) CreateExam(ctx context.Context, exm exam.Exam) (exam.Exam, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO exam (title, duration_minutes, total_points, passing_score, num_questions, course_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		exm.Title, exm.DurationMinutes, exm.TotalPoints, exm.PassingScore, exm.NumQuestions,
		exm.CourseID, exm.CreatedAt, exm.UpdatedAt,
	).Scan(&exm.ID)
	if err != nil {
		return exam.Exam{}, errors.Wrap(err, "inserting exam")
	}
	return exm, nil
}

func (repo examRepository) GetExamByID(ctx context.Context, id int) (exam.Exam, error) {
	var exm exam.Exam
	if err := repo.db.GetContext(ctx, &exm, `SELECT * FROM exam WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return exam.Exam{}, exam.ErrNotFound
		}
		return exam.Exam{}, errors.Wrap(err, "finding exam by ID")
	}
	return exm, nil
}

func (repo examRepository) QueryCourseExams(ctx context.Context, courseID int) ([]exam.Exam, error) {
	var exams []exam.Exam
	err := repo.db.SelectContext(ctx, &exams,
		`SELECT * FROM exam WHERE course_id = $1 ORDER BY created_at`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course exams")
	}
	return exams, nil
}

func (repo examRepository) UpdateExam(ctx context.Context, exm exam.Exam) (exam.Exam, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE exam SET title = $1, duration_minutes = $2, total_points = $3, passing_score = $4,
		 num_questions = $5, updated_at = $6 WHERE id = $7`,
		exm.Title, exm.DurationMinutes, exm.TotalPoints, exm.PassingScore, exm.NumQuestions, exm.UpdatedAt, exm.ID)
	if err != nil {
		return exam.Exam{}, errors.Wrap(err, "updating exam")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return exam.Exam{}, exam.ErrNotFound
	}
	return exm, nil
}

func (repo examRepository) DeleteExam(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM exam WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return exam.ErrNotFound
	}
	return nil
}

func (repo examRepository) CreateQuestion(ctx context.Context, qst exam.Question) (exam.Question, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO question (text, type, points, correct_answer) VALUES ($1, $2, $3, $4) RETURNING id`,
		qst.Text, qst.Type, qst.Points, qst.CorrectAnswer,
	).Scan(&qst.ID)
	if err != nil {
		return exam.Question{}, errors.Wrap(err, "inserting question")
	}
	return qst, nil
}

func (repo examRepository) GetQuestionByID(ctx context.Context, id int) (exam.Question, error) {
	var qst exam.Question
	err := repo.db.GetContext(ctx, &qst,
		`SELECT id, text, type, points, correct_answer FROM question WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return exam.Question{}, exam.ErrQuestionNotFound
		}
		return exam.Question{}, errors.Wrap(err, "finding question by ID")
	}
	return qst, nil
}

func (repo examRepository) AttachQuestion(ctx context.Context, examID, questionID, orderNumber int) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO exam_question (exam_id, question_id, order_number) VALUES ($1, $2, $3)`,
		examID, questionID, orderNumber)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return exam.ErrQuestionAttached
		}
		return errors.Wrap(err, "attaching question")
	}
	return nil
}

func (repo examRepository) QueryExamQuestions(ctx context.Context, examID int) ([]exam.Question, error) {
	var qsts []exam.Question
	err := repo.db.SelectContext(ctx, &qsts,
		`SELECT q.id, q.text, q.type, q.points, q.correct_answer, eq.order_number
		 FROM question q
		 JOIN exam_question eq ON eq.question_id = q.id
		 WHERE eq.exam_id = $1 ORDER BY eq.order_number`, examID)
	if err != nil {
		return nil, errors.Wrap(err, "querying exam questions")
	}
	return qsts, nil
}

func (repo examRepository) DetachQuestion(ctx context.Context, examID, questionID int) error {
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM exam_question WHERE exam_id = $1 AND question_id = $2`, examID, questionID)
	if err != nil {
		return errors.Wrap(err, "detaching question")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return exam.ErrQuestionNotFound
	}
	return nil
}

func (repo examRepository) CreateAttempt(ctx context.Context, att exam.Attempt) (exam.Attempt, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO attempt (attempt_date, score, time_spent_minutes, status, student_id, exam_id)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		att.AttemptDate, att.Score, att.TimeSpentMinutes, att.Status, att.StudentID, att.ExamID,
	).Scan(&att.ID)
	if err != nil {
		return exam.Attempt{}, errors.Wrap(err, "inserting attempt")
	}
	return att, nil
}

func (repo examRepository) GetAttemptByID(ctx context.Context, id int) (exam.Attempt, error) {
	var att exam.Attempt
	if err := repo.db.GetContext(ctx, &att, `SELECT * FROM attempt WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return exam.Attempt{}, exam.ErrAttemptNotFound
		}
		return exam.Attempt{}, errors.Wrap(err, "finding attempt by ID")
	}
	return att, nil
}

func (repo examRepository) GetOpenAttempt(ctx context.Context, studentID, examID int) (exam.Attempt, error) {
	var att exam.Attempt
	err := repo.db.GetContext(ctx, &att,
		`SELECT * FROM attempt WHERE student_id = $1 AND exam_id = $2 AND status = $3 LIMIT 1`,
		studentID, examID, exam.StatusInProgress)
	if err != nil {
		if err == sql.ErrNoRows {
			return exam.Attempt{}, exam.ErrAttemptNotFound
		}
		return exam.Attempt{}, errors.Wrap(err, "finding open attempt")
	}
	return att, nil
}

func (repo examRepository) QueryStudentAttempts(ctx context.Context, studentID, examID int) ([]exam.Attempt, error) {
	var atts []exam.Attempt
	err := repo.db.SelectContext(ctx, &atts,
		`SELECT * FROM attempt WHERE student_id = $1 AND exam_id = $2 ORDER BY attempt_date DESC`,
		studentID, examID)
	if err != nil {
		return nil, errors.Wrap(err, "querying student attempts")
	}
	return atts, nil
}

func (repo examRepository) QueryExamAttempts(ctx context.Context, examID int) ([]exam.Attempt, error) {
	var atts []exam.Attempt
	err := repo.db.SelectContext(ctx, &atts,
		`SELECT * FROM attempt WHERE exam_id = $1 ORDER BY attempt_date DESC`, examID)
	if err != nil {
		return nil, errors.Wrap(err, "querying exam attempts")
	}
	return atts, nil
}

func (repo examRepository) UpdateAttempt(ctx context.Context, att exam.Attempt) (exam.Attempt, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE attempt SET score = $1, time_spent_minutes = $2, status = $3 WHERE id = $4`,
		att.Score, att.TimeSpentMinutes, att.Status, att.ID)
	if err != nil {
		return exam.Attempt{}, errors.Wrap(err, "updating attempt")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return exam.Attempt{}, exam.ErrAttemptNotFound
	}
	return att, nil
}
