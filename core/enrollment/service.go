package enrollment

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/educert/backend/core"
	"github.com/educert/backend/core/course"
)

var (
	// ErrNotFound is returned when the student has no enrollment for the course.
	ErrNotFound = core.NewNotFoundError("enrollment not found")
	// ErrAlreadyEnrolled is returned on a duplicate enrollment attempt.
	ErrAlreadyEnrolled = core.NewConflictError("already enrolled in this course")
)

type (
	// ProgressStat is a single row of the student progress report.
	ProgressStat struct {
		StudentID   int       `json:"studentId" db:"student_id"`
		StudentName string    `json:"studentName" db:"student_name"`
		CourseID    int       `json:"courseId" db:"course_id"`
		CourseTitle string    `json:"courseTitle" db:"course_title"`
		Progress    int       `json:"progress" db:"progress"`
		Status      string    `json:"status" db:"status"`
		EnrolledAt  time.Time `json:"enrolledAt" db:"enrollment_date"`
	}

	// PopularityStat counts enrollments per course over a period.
	PopularityStat struct {
		CourseID        int    `json:"courseId" db:"course_id"`
		Title           string `json:"title" db:"title"`
		EnrollmentCount int    `json:"enrollmentCount" db:"enrollment_count"`
	}

	// CourseGetter looks up the course a student enrolls on. Satisfied by
	// course.Service.
	CourseGetter interface {
		GetByID(ctx context.Context, id int) (course.Course, error)
		GetDetail(ctx context.Context, id int) (course.Course, error)
	}

	// EnrollmentDetail pairs an enrollment with the full course tree so a
	// student can see their position in the material.
	EnrollmentDetail struct {
		Enrollment
		Course course.Course `json:"course"`
	}

	Repository interface {
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		GetEnrollment(ctx context.Context, studentID, courseID int) (Enrollment, error)
		QueryStudentEnrollments(ctx context.Context, studentID int) ([]Enrollment, error)
		QueryCourseEnrollments(ctx context.Context, courseID int) ([]Enrollment, error)
		UpdateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		DeleteEnrollment(ctx context.Context, id int) error
		QueryPopularityStats(ctx context.Context, from, to time.Time) ([]PopularityStat, error)
		QueryProgressStats(ctx context.Context, courseID int) ([]ProgressStat, error)
	}

	Service struct {
		repo    Repository
		courses CourseGetter
	}
)

func NewService(repo Repository, courses CourseGetter) *Service {
	return &Service{repo: repo, courses: courses}
}

// Enroll registers the student on a course. A student can hold at most one
// enrollment per course; repeats are rejected without touching the original row.
func (svc *Service) Enroll(ctx context.Context, studentID, courseID int) (Enrollment, error) {
	if _, err := svc.courses.GetByID(ctx, courseID); err != nil {
		return Enrollment{}, err
	}
	if _, err := svc.repo.GetEnrollment(ctx, studentID, courseID); err == nil {
		return Enrollment{}, ErrAlreadyEnrolled
	} else if !core.IsNotFound(err) {
		return Enrollment{}, errors.Wrap(err, "checking existing enrollment")
	}
	enr := Enrollment{
		EnrollmentDate: time.Now().UTC(),
		Status:         StatusActive,
		Progress:       0,
		StudentID:      studentID,
		CourseID:       courseID,
	}
	enr, err := svc.repo.CreateEnrollment(ctx, enr)
	return enr, errors.Wrap(err, "creating enrollment")
}

func (svc *Service) Get(ctx context.Context, studentID, courseID int) (Enrollment, error) {
	return svc.repo.GetEnrollment(ctx, studentID, courseID)
}

// GetDetail returns the student's enrollment together with the course's
// modules, lectures, contents and reviews.
func (svc *Service) GetDetail(ctx context.Context, studentID, courseID int) (EnrollmentDetail, error) {
	enr, err := svc.repo.GetEnrollment(ctx, studentID, courseID)
	if err != nil {
		return EnrollmentDetail{}, err
	}
	crs, err := svc.courses.GetDetail(ctx, courseID)
	if err != nil {
		return EnrollmentDetail{}, err
	}
	return EnrollmentDetail{Enrollment: enr, Course: crs}, nil
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID int) ([]Enrollment, error) {
	enrs, err := svc.repo.QueryStudentEnrollments(ctx, studentID)
	return enrs, errors.Wrap(err, "querying student enrollments")
}

func (svc *Service) QueryByCourse(ctx context.Context, courseID int) ([]Enrollment, error) {
	enrs, err := svc.repo.QueryCourseEnrollments(ctx, courseID)
	return enrs, errors.Wrap(err, "querying course enrollments")
}

// UpdateProgress moves the student's progress on a course. Reaching 100 marks
// the enrollment Completed and stamps the completion date; moving back below
// 100 reverts the status and clears the date.
func (svc *Service) UpdateProgress(ctx context.Context, studentID, courseID, progress int) (Enrollment, error) {
	enr, err := svc.repo.GetEnrollment(ctx, studentID, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	enr.Progress = progress
	if progress == 100 {
		if enr.Status != StatusCompleted {
			enr.Status = StatusCompleted
			enr.CompletionDate = null.TimeFrom(time.Now().UTC())
		}
	} else {
		enr.Status = StatusActive
		enr.CompletionDate = null.Time{}
	}
	enr, err = svc.repo.UpdateEnrollment(ctx, enr)
	return enr, errors.Wrap(err, "updating enrollment progress")
}

// Unenroll removes the student's enrollment from a course.
func (svc *Service) Unenroll(ctx context.Context, studentID, courseID int) error {
	enr, err := svc.repo.GetEnrollment(ctx, studentID, courseID)
	if err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteEnrollment(ctx, enr.ID), "deleting enrollment")
}

func (svc *Service) QueryPopularityStats(ctx context.Context, from, to time.Time) ([]PopularityStat, error) {
	stats, err := svc.repo.QueryPopularityStats(ctx, from, to)
	return stats, errors.Wrap(err, "querying popularity stats")
}

func (svc *Service) QueryProgressStats(ctx context.Context, courseID int) ([]ProgressStat, error) {
	stats, err := svc.repo.QueryProgressStats(ctx, courseID)
	return stats, errors.Wrap(err, "querying progress stats")
}
