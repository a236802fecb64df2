package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/educert/backend/core"
	"github.com/educert/backend/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

// courseSelect joins the owning instructor and the review aggregates; a course
// without reviews gets an average of 0, not NULL.
const courseSelect = `
SELECT c.*, u.name AS instructor_name,
       COALESCE(r.average_rating, 0) AS average_rating,
       COALESCE(r.review_count, 0)   AS review_count
FROM course c
JOIN "user" u ON u.id = c.instructor_id
LEFT JOIN (
    SELECT course_id, AVG(rating) AS average_rating, COUNT(*) AS review_count
    FROM review GROUP BY course_id
) r ON r.course_id = c.id`

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO course (title, description, difficulty, language, duration_minutes,
		                     instructor_id, certification_option, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		crs.Title, crs.Description, crs.Difficulty, crs.Language, crs.DurationMinutes,
		crs.InstructorID, crs.CertificationOption, crs.Status, crs.CreatedAt, crs.UpdatedAt,
	).Scan(&crs.ID)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) FilterCourses(ctx context.Context, filter course.QueryFilter, ordering ...core.DBOrdering) ([]course.Course, error) {
	var conds []string
	var args []interface{}

	if filter.Title != "" {
		conds = append(conds, "c.title ILIKE ?")
		args = append(args, "%"+filter.Title+"%")
	}
	if filter.Difficulty != "" {
		conds = append(conds, "c.difficulty = ?")
		args = append(args, filter.Difficulty)
	}
	if filter.Language != "" {
		conds = append(conds, "c.language = ?")
		args = append(args, filter.Language)
	}
	if filter.InstructorID != 0 {
		conds = append(conds, "c.instructor_id = ?")
		args = append(args, filter.InstructorID)
	}
	if filter.InstructorName != "" {
		conds = append(conds, "u.name ILIKE ?")
		args = append(args, "%"+filter.InstructorName+"%")
	}

	query := courseSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		query += " ORDER BY " + strings.Join(orderList, ", ")
	}

	var courses []course.Course
	if err := repo.db.SelectContext(ctx, &courses, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "filtering courses")
	}
	return courses, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id int) (course.Course, error) {
	var crs course.Course
	if err := repo.db.GetContext(ctx, &crs, courseSelect+" WHERE c.id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "finding course by ID")
	}
	return crs, nil
}

func (repo courseRepository) GetCourseDetail(ctx context.Context, id int) (course.Course, error) {
	crs, err := repo.GetCourseByID(ctx, id)
	if err != nil {
		return course.Course{}, err
	}
	if crs.Modules, err = repo.QueryCourseModules(ctx, id); err != nil {
		return course.Course{}, err
	}
	for i := range crs.Modules {
		if crs.Modules[i].Lectures, err = repo.QueryModuleLectures(ctx, crs.Modules[i].ID); err != nil {
			return course.Course{}, err
		}
		for j := range crs.Modules[i].Lectures {
			lec := &crs.Modules[i].Lectures[j]
			if lec.Contents, err = repo.QueryLectureContents(ctx, lec.ID); err != nil {
				return course.Course{}, err
			}
		}
	}
	if crs.Reviews, err = repo.QueryCourseReviews(ctx, id); err != nil {
		return course.Course{}, err
	}
	return crs, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE course SET title = $1, description = $2, difficulty = $3, language = $4,
		 duration_minutes = $5, certification_option = $6, status = $7, updated_at = $8 WHERE id = $9`,
		crs.Title, crs.Description, crs.Difficulty, crs.Language,
		crs.DurationMinutes, crs.CertificationOption, crs.Status, crs.UpdatedAt, crs.ID)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo courseRepository) DeleteCourse(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo courseRepository) CreateModule(ctx context.Context, mod course.Module) (course.Module, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO module (title, description, order_number, course_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		mod.Title, mod.Description, mod.OrderNumber, mod.CourseID, mod.CreatedAt, mod.UpdatedAt,
	).Scan(&mod.ID)
	if err != nil {
		return course.Module{}, errors.Wrap(err, "inserting module")
	}
	return mod, nil
}

func (repo courseRepository) GetModuleByID(ctx context.Context, id int) (course.Module, error) {
	var mod course.Module
	if err := repo.db.GetContext(ctx, &mod, `SELECT * FROM module WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return course.Module{}, course.ErrModuleNotFound
		}
		return course.Module{}, errors.Wrap(err, "finding module by ID")
	}
	return mod, nil
}

func (repo courseRepository) QueryCourseModules(ctx context.Context, courseID int) ([]course.Module, error) {
	var mods []course.Module
	err := repo.db.SelectContext(ctx, &mods,
		`SELECT * FROM module WHERE course_id = $1 ORDER BY order_number`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course modules")
	}
	return mods, nil
}

func (repo courseRepository) UpdateModule(ctx context.Context, mod course.Module) (course.Module, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE module SET title = $1, description = $2, order_number = $3, updated_at = $4 WHERE id = $5`,
		mod.Title, mod.Description, mod.OrderNumber, mod.UpdatedAt, mod.ID)
	if err != nil {
		return course.Module{}, errors.Wrap(err, "updating module")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.Module{}, course.ErrModuleNotFound
	}
	return mod, nil
}

func (repo courseRepository) DeleteModule(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM module WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting module")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.ErrModuleNotFound
	}
	return nil
}

func (repo courseRepository) CreateLecture(ctx context.Context, lec course.Lecture) (course.Lecture, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO lecture (title, description, duration_minutes, order_number, module_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		lec.Title, lec.Description, lec.DurationMinutes, lec.OrderNumber, lec.ModuleID, lec.CreatedAt, lec.UpdatedAt,
	).Scan(&lec.ID)
	if err != nil {
		return course.Lecture{}, errors.Wrap(err, "inserting lecture")
	}
	return lec, nil
}

func (repo courseRepository) GetLectureByID(ctx context.Context, id int) (course.Lecture, error) {
	var lec course.Lecture
	if err := repo.db.GetContext(ctx, &lec, `SELECT * FROM lecture WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return course.Lecture{}, course.ErrLectureNotFound
		}
		return course.Lecture{}, errors.Wrap(err, "finding lecture by ID")
	}
	return lec, nil
}

func (repo courseRepository) QueryModuleLectures(ctx context.Context, moduleID int) ([]course.Lecture, error) {
	var lecs []course.Lecture
	err := repo.db.SelectContext(ctx, &lecs,
		`SELECT * FROM lecture WHERE module_id = $1 ORDER BY order_number`, moduleID)
	if err != nil {
		return nil, errors.Wrap(err, "querying module lectures")
	}
	return lecs, nil
}

func (repo courseRepository) UpdateLecture(ctx context.Context, lec course.Lecture) (course.Lecture, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE lecture SET title = $1, description = $2, duration_minutes = $3, order_number = $4, updated_at = $5
		 WHERE id = $6`,
		lec.Title, lec.Description, lec.DurationMinutes, lec.OrderNumber, lec.UpdatedAt, lec.ID)
	if err != nil {
		return course.Lecture{}, errors.Wrap(err, "updating lecture")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.Lecture{}, course.ErrLectureNotFound
	}
	return lec, nil
}

func (repo courseRepository) DeleteLecture(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM lecture WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting lecture")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.ErrLectureNotFound
	}
	return nil
}

func (repo courseRepository) CreateContent(ctx context.Context, cnt course.Content) (course.Content, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO content (title, type, data, upload_date, lecture_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		cnt.Title, cnt.Type, cnt.Data, cnt.UploadDate, cnt.LectureID,
	).Scan(&cnt.ID)
	if err != nil {
		return course.Content{}, errors.Wrap(err, "inserting content")
	}
	return cnt, nil
}

func (repo courseRepository) GetContentByID(ctx context.Context, id int) (course.Content, error) {
	var cnt course.Content
	if err := repo.db.GetContext(ctx, &cnt, `SELECT * FROM content WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return course.Content{}, course.ErrContentNotFound
		}
		return course.Content{}, errors.Wrap(err, "finding content by ID")
	}
	return cnt, nil
}

func (repo courseRepository) QueryLectureContents(ctx context.Context, lectureID int) ([]course.Content, error) {
	var cnts []course.Content
	err := repo.db.SelectContext(ctx, &cnts,
		`SELECT * FROM content WHERE lecture_id = $1 ORDER BY upload_date`, lectureID)
	if err != nil {
		return nil, errors.Wrap(err, "querying lecture contents")
	}
	return cnts, nil
}

func (repo courseRepository) UpdateContent(ctx context.Context, cnt course.Content) (course.Content, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE content SET title = $1, type = $2, data = $3 WHERE id = $4`,
		cnt.Title, cnt.Type, cnt.Data, cnt.ID)
	if err != nil {
		return course.Content{}, errors.Wrap(err, "updating content")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.Content{}, course.ErrContentNotFound
	}
	return cnt, nil
}

func (repo courseRepository) DeleteContent(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting content")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.ErrContentNotFound
	}
	return nil
}

func (repo courseRepository) CreateReview(ctx context.Context, rev course.Review) (course.Review, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO review (rating, comment, date, student_id, course_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		rev.Rating, rev.Comment, rev.Date, rev.StudentID, rev.CourseID,
	).Scan(&rev.ID)
	if err != nil {
		return course.Review{}, errors.Wrap(err, "inserting review")
	}
	return rev, nil
}

func (repo courseRepository) CheckReviewUniqueness(ctx context.Context, studentID, courseID int) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM review WHERE student_id = $1 AND course_id = $2)`, studentID, courseID)
	if err != nil {
		return errors.Wrap(err, "checking review uniqueness")
	}
	if exists {
		return course.ErrReviewExists
	}
	return nil
}

func (repo courseRepository) QueryCourseReviews(ctx context.Context, courseID int) ([]course.Review, error) {
	var revs []course.Review
	err := repo.db.SelectContext(ctx, &revs,
		`SELECT r.*, u.name AS student_name FROM review r
		 JOIN "user" u ON u.id = r.student_id
		 WHERE r.course_id = $1 ORDER BY r.date DESC`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course reviews")
	}
	return revs, nil
}

func (repo courseRepository) QueryRatingStats(ctx context.Context) ([]course.RatingStat, error) {
	var stats []course.RatingStat
	err := repo.db.SelectContext(ctx, &stats,
		`SELECT c.id AS course_id, c.title,
		        COALESCE(AVG(r.rating), 0) AS average_rating,
		        COUNT(r.id)                AS review_count
		 FROM course c
		 LEFT JOIN review r ON r.course_id = c.id
		 GROUP BY c.id, c.title
		 ORDER BY average_rating DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying rating stats")
	}
	return stats, nil
}
