package dummydb

import (
	"context"
	"sort"

	"github.com/educert/backend/core/exam"
)

var (
	examPKCount     int
	questionPKCount int
	attemptPKCount  int
)

type examRepository struct {
	db *examTable
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *DB) *examRepository {
	return &examRepository{db: db.exam}
}

func (repo *examRepository) CreateExam(ctx context.Context, exm exam.Exam) (exam.Exam, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	examPKCount++
	exm.ID = examPKCount
	repo.db.exams[exm.ID] = &exm
	return exm, nil
}

func (repo *examRepository) GetExamByID(ctx context.Context, id int) (exam.Exam, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if exm, ok := repo.db.exams[id]; ok {
		return *exm, nil
	}
	return exam.Exam{}, exam.ErrNotFound
}

func (repo *examRepository) QueryCourseExams(ctx context.Context, courseID int) ([]exam.Exam, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var exams []exam.Exam
	for _, exm := range repo.db.exams {
		if exm.CourseID == courseID {
			exams = append(exams, *exm)
		}
	}
	sort.Slice(exams, func(i, j int) bool { return exams[i].ID < exams[j].ID })
	return exams, nil
}

func (repo *examRepository) UpdateExam(ctx context.Context, exm exam.Exam) (exam.Exam, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.exams[exm.ID]; !ok {
		return exam.Exam{}, exam.ErrNotFound
	}
	repo.db.exams[exm.ID] = &exm
	return exm, nil
}

func (repo *examRepository) DeleteExam(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.exams[id]; !ok {
		return exam.ErrNotFound
	}
	delete(repo.db.exams, id)

	rows := repo.db.examQuestions[:0]
	for _, row := range repo.db.examQuestions {
		if row.examID != id {
			rows = append(rows, row)
		}
	}
	repo.db.examQuestions = rows
	for aid, att := range repo.db.attempts {
		if att.ExamID == id {
			delete(repo.db.attempts, aid)
		}
	}
	return nil
}

func (repo *examRepository) CreateQuestion(ctx context.Context, qst exam.Question) (exam.Question, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	questionPKCount++
	qst.ID = questionPKCount
	repo.db.questions[qst.ID] = &qst
	return qst, nil
}

func (repo *examRepository) GetQuestionByID(ctx context.Context, id int) (exam.Question, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if qst, ok := repo.db.questions[id]; ok {
		return *qst, nil
	}
	return exam.Question{}, exam.ErrQuestionNotFound
}

func (repo *examRepository) AttachQuestion(ctx context.Context, examID, questionID, orderNumber int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, row := range repo.db.examQuestions {
		if row.examID == examID && row.questionID == questionID {
			return exam.ErrQuestionAttached
		}
	}
	repo.db.examQuestions = append(repo.db.examQuestions, examQuestionRow{examID, questionID, orderNumber})
	return nil
}

func (repo *examRepository) QueryExamQuestions(ctx context.Context, examID int) ([]exam.Question, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var qsts []exam.Question
	for _, row := range repo.db.examQuestions {
		if row.examID != examID {
			continue
		}
		if qst, ok := repo.db.questions[row.questionID]; ok {
			q := *qst
			q.OrderNumber = row.orderNumber
			qsts = append(qsts, q)
		}
	}
	sort.Slice(qsts, func(i, j int) bool { return qsts[i].OrderNumber < qsts[j].OrderNumber })
	return qsts, nil
}

func (repo *examRepository) DetachQuestion(ctx context.Context, examID, questionID int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, row := range repo.db.examQuestions {
		if row.examID == examID && row.questionID == questionID {
			repo.db.examQuestions = append(repo.db.examQuestions[:i], repo.db.examQuestions[i+1:]...)
			return nil
		}
	}
	return exam.ErrQuestionNotFound
}

func (repo *examRepository) CreateAttempt(ctx context.Context, att exam.Attempt) (exam.Attempt, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	attemptPKCount++
	att.ID = attemptPKCount
	repo.db.attempts[att.ID] = &att
	return att, nil
}

func (repo *examRepository) GetAttemptByID(ctx context.Context, id int) (exam.Attempt, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if att, ok := repo.db.attempts[id]; ok {
		return *att, nil
	}
	return exam.Attempt{}, exam.ErrAttemptNotFound
}

func (repo *examRepository) GetOpenAttempt(ctx context.Context, studentID, examID int) (exam.Attempt, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, att := range repo.db.attempts {
		if att.StudentID == studentID && att.ExamID == examID && att.Status == exam.StatusInProgress {
			return *att, nil
		}
	}
	return exam.Attempt{}, exam.ErrAttemptNotFound
}

func (repo *examRepository) QueryStudentAttempts(ctx context.Context, studentID, examID int) ([]exam.Attempt, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var atts []exam.Attempt
	for _, att := range repo.db.attempts {
		if att.StudentID == studentID && att.ExamID == examID {
			atts = append(atts, *att)
		}
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].AttemptDate.After(atts[j].AttemptDate) })
	return atts, nil
}

func (repo *examRepository) QueryExamAttempts(ctx context.Context, examID int) ([]exam.Attempt, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var atts []exam.Attempt
	for _, att := range repo.db.attempts {
		if att.ExamID == examID {
			atts = append(atts, *att)
		}
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].AttemptDate.After(atts[j].AttemptDate) })
	return atts, nil
}

func (repo *examRepository) UpdateAttempt(ctx context.Context, att exam.Attempt) (exam.Attempt, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.attempts[att.ID]; !ok {
		return exam.Attempt{}, exam.ErrAttemptNotFound
	}
	repo.db.attempts[att.ID] = &att
	return att, nil
}
