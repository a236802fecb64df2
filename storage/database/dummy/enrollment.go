package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/educert/backend/core/enrollment"
)

var enrollmentPKCount int

type enrollmentRepository struct {
	db      *enrollmentTable
	users   *userTable
	courses *courseTable
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) *enrollmentRepository {
	return &enrollmentRepository{db: db.enrollment, users: db.user, courses: db.course}
}

func (repo *enrollmentRepository) courseTitle(id int) string {
	repo.courses.RLock()
	defer repo.courses.RUnlock()
	if crs, ok := repo.courses.courses[id]; ok {
		return crs.Title
	}
	return ""
}

func (repo *enrollmentRepository) studentName(id int) string {
	repo.users.RLock()
	defer repo.users.RUnlock()
	if usr, ok := repo.users.table[id]; ok {
		return usr.Name
	}
	return ""
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	enrollmentPKCount++
	enr.ID = enrollmentPKCount
	repo.db.table[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, studentID, courseID int) (enrollment.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, enr := range repo.db.table {
		if enr.StudentID == studentID && enr.CourseID == courseID {
			return *enr, nil
		}
	}
	return enrollment.Enrollment{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) QueryStudentEnrollments(ctx context.Context, studentID int) ([]enrollment.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var enrs []enrollment.Enrollment
	for _, enr := range repo.db.table {
		if enr.StudentID == studentID {
			e := *enr
			e.CourseTitle = repo.courseTitle(e.CourseID)
			enrs = append(enrs, e)
		}
	}
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].EnrollmentDate.After(enrs[j].EnrollmentDate) })
	return enrs, nil
}

func (repo *enrollmentRepository) QueryCourseEnrollments(ctx context.Context, courseID int) ([]enrollment.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var enrs []enrollment.Enrollment
	for _, enr := range repo.db.table {
		if enr.CourseID == courseID {
			e := *enr
			e.StudentName = repo.studentName(e.StudentID)
			enrs = append(enrs, e)
		}
	}
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].EnrollmentDate.Before(enrs[j].EnrollmentDate) })
	return enrs, nil
}

func (repo *enrollmentRepository) UpdateEnrollment(ctx context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[enr.ID]; !ok {
		return enrollment.Enrollment{}, enrollment.ErrNotFound
	}
	repo.db.table[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollmentRepository) DeleteEnrollment(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return enrollment.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *enrollmentRepository) QueryPopularityStats(ctx context.Context, from, to time.Time) ([]enrollment.PopularityStat, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := make(map[int]int)
	for _, enr := range repo.db.table {
		if enr.EnrollmentDate.Before(from) || enr.EnrollmentDate.After(to) {
			continue
		}
		counts[enr.CourseID]++
	}

	repo.courses.RLock()
	defer repo.courses.RUnlock()
	stats := make([]enrollment.PopularityStat, 0, len(repo.courses.courses))
	for _, crs := range repo.courses.courses {
		stats = append(stats, enrollment.PopularityStat{
			CourseID:        crs.ID,
			Title:           crs.Title,
			EnrollmentCount: counts[crs.ID],
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].EnrollmentCount > stats[j].EnrollmentCount })
	return stats, nil
}

func (repo *enrollmentRepository) QueryProgressStats(ctx context.Context, courseID int) ([]enrollment.ProgressStat, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var stats []enrollment.ProgressStat
	for _, enr := range repo.db.table {
		if enr.CourseID != courseID {
			continue
		}
		stats = append(stats, enrollment.ProgressStat{
			StudentID:   enr.StudentID,
			StudentName: repo.studentName(enr.StudentID),
			CourseID:    enr.CourseID,
			CourseTitle: repo.courseTitle(enr.CourseID),
			Progress:    enr.Progress,
			Status:      enr.Status,
			EnrolledAt:  enr.EnrollmentDate,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].StudentName < stats[j].StudentName })
	return stats, nil
}
