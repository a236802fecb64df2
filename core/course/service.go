package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/educert/backend/core"
)

var (
	// ErrNotFound is returned when a requested course does not exist.
	ErrNotFound = core.NewNotFoundError("course not found")
	// ErrModuleNotFound is returned when a requested module does not exist.
	ErrModuleNotFound = core.NewNotFoundError("module not found")
	// ErrLectureNotFound is returned when a requested lecture does not exist.
	ErrLectureNotFound = core.NewNotFoundError("lecture not found")
	// ErrContentNotFound is returned when a requested content item does not exist.
	ErrContentNotFound = core.NewNotFoundError("content not found")
	// ErrReviewExists is returned when a student reviews the same course twice.
	ErrReviewExists = core.NewConflictError("course already reviewed")
)

type (
	// RatingStat aggregates review scores for a single course.
	RatingStat struct {
		CourseID      int     `json:"courseId" db:"course_id"`
		Title         string  `json:"title" db:"title"`
		AverageRating float64 `json:"averageRating" db:"average_rating"`
		ReviewCount   int     `json:"reviewCount" db:"review_count"`
	}

	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		FilterCourses(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Course, error)
		GetCourseByID(ctx context.Context, id int) (Course, error)
		GetCourseDetail(ctx context.Context, id int) (Course, error) // with modules, lectures, contents and reviews
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCourse(ctx context.Context, id int) error

		CreateModule(ctx context.Context, mod Module) (Module, error)
		GetModuleByID(ctx context.Context, id int) (Module, error)
		QueryCourseModules(ctx context.Context, courseID int) ([]Module, error)
		UpdateModule(ctx context.Context, mod Module) (Module, error)
		DeleteModule(ctx context.Context, id int) error

		CreateLecture(ctx context.Context, lec Lecture) (Lecture, error)
		GetLectureByID(ctx context.Context, id int) (Lecture, error)
		QueryModuleLectures(ctx context.Context, moduleID int) ([]Lecture, error)
		UpdateLecture(ctx context.Context, lec Lecture) (Lecture, error)
		DeleteLecture(ctx context.Context, id int) error

		CreateContent(ctx context.Context, cnt Content) (Content, error)
		GetContentByID(ctx context.Context, id int) (Content, error)
		QueryLectureContents(ctx context.Context, lectureID int) ([]Content, error)
		UpdateContent(ctx context.Context, cnt Content) (Content, error)
		DeleteContent(ctx context.Context, id int) error

		CreateReview(ctx context.Context, rev Review) (Review, error)
		CheckReviewUniqueness(ctx context.Context, studentID, courseID int) error
		QueryCourseReviews(ctx context.Context, courseID int) ([]Review, error)
		QueryRatingStats(ctx context.Context) ([]RatingStat, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewCourse, instructorID int) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Title:               nc.Title,
		Description:         nc.Description,
		Difficulty:          nc.Difficulty,
		Language:            nc.Language,
		DurationMinutes:     nc.DurationMinutes,
		InstructorID:        instructorID,
		CertificationOption: nc.CertificationOption,
		Status:              StatusActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	crs, err := svc.repo.CreateCourse(ctx, crs)
	return crs, errors.Wrap(err, "creating course")
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Course, error) {
	filter.Clean()
	courses, err := svc.repo.FilterCourses(ctx, filter, ordering...)
	return courses, errors.Wrap(err, "filtering courses")
}

func (svc *Service) GetByID(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) GetDetail(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourseDetail(ctx, id)
}

func (svc *Service) Update(ctx context.Context, orig Course, uc UpdateCourse) (Course, error) {
	orig.Title = uc.Title
	orig.Description = uc.Description
	orig.Difficulty = uc.Difficulty
	orig.Language = uc.Language
	orig.DurationMinutes = uc.DurationMinutes
	if uc.CertificationOption != nil {
		orig.CertificationOption = *uc.CertificationOption
	}
	orig.Status = uc.Status
	orig.UpdatedAt = time.Now().UTC()
	crs, err := svc.repo.UpdateCourse(ctx, orig)
	return crs, errors.Wrap(err, "updating course")
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return errors.Wrap(svc.repo.DeleteCourse(ctx, id), "deleting course")
}

func (svc *Service) CreateModule(ctx context.Context, nm NewModule) (Module, error) {
	if _, err := svc.repo.GetCourseByID(ctx, nm.CourseID); err != nil {
		return Module{}, err
	}
	now := time.Now().UTC()
	mod := Module{
		Title:       nm.Title,
		Description: nm.Description,
		OrderNumber: nm.OrderNumber,
		CourseID:    nm.CourseID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	mod, err := svc.repo.CreateModule(ctx, mod)
	return mod, errors.Wrap(err, "creating module")
}

func (svc *Service) GetModule(ctx context.Context, id int) (Module, error) {
	return svc.repo.GetModuleByID(ctx, id)
}

func (svc *Service) QueryCourseModules(ctx context.Context, courseID int) ([]Module, error) {
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	mods, err := svc.repo.QueryCourseModules(ctx, courseID)
	return mods, errors.Wrap(err, "querying course modules")
}

func (svc *Service) UpdateModule(ctx context.Context, mod Module) (Module, error) {
	mod.UpdatedAt = time.Now().UTC()
	mod, err := svc.repo.UpdateModule(ctx, mod)
	return mod, errors.Wrap(err, "updating module")
}

func (svc *Service) DeleteModule(ctx context.Context, id int) error {
	return errors.Wrap(svc.repo.DeleteModule(ctx, id), "deleting module")
}

func (svc *Service) CreateLecture(ctx context.Context, nl NewLecture) (Lecture, error) {
	if _, err := svc.repo.GetModuleByID(ctx, nl.ModuleID); err != nil {
		return Lecture{}, err
	}
	now := time.Now().UTC()
	lec := Lecture{
		Title:           nl.Title,
		Description:     nl.Description,
		DurationMinutes: nl.DurationMinutes,
		OrderNumber:     nl.OrderNumber,
		ModuleID:        nl.ModuleID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	lec, err := svc.repo.CreateLecture(ctx, lec)
	return lec, errors.Wrap(err, "creating lecture")
}

func (svc *Service) GetLecture(ctx context.Context, id int) (Lecture, error) {
	return svc.repo.GetLectureByID(ctx, id)
}

func (svc *Service) QueryModuleLectures(ctx context.Context, moduleID int) ([]Lecture, error) {
	if _, err := svc.repo.GetModuleByID(ctx, moduleID); err != nil {
		return nil, err
	}
	lecs, err := svc.repo.QueryModuleLectures(ctx, moduleID)
	return lecs, errors.Wrap(err, "querying module lectures")
}

func (svc *Service) UpdateLecture(ctx context.Context, lec Lecture) (Lecture, error) {
	lec.UpdatedAt = time.Now().UTC()
	lec, err := svc.repo.UpdateLecture(ctx, lec)
	return lec, errors.Wrap(err, "updating lecture")
}

func (svc *Service) DeleteLecture(ctx context.Context, id int) error {
	return errors.Wrap(svc.repo.DeleteLecture(ctx, id), "deleting lecture")
}

func (svc *Service) CreateContent(ctx context.Context, nc NewContent) (Content, error) {
	if _, err := svc.repo.GetLectureByID(ctx, nc.LectureID); err != nil {
		return Content{}, err
	}
	cnt := Content{
		Title:      nc.Title,
		Type:       nc.Type,
		Data:       nc.Data,
		UploadDate: time.Now().UTC(),
		LectureID:  nc.LectureID,
	}
	cnt, err := svc.repo.CreateContent(ctx, cnt)
	return cnt, errors.Wrap(err, "creating content")
}

func (svc *Service) GetContent(ctx context.Context, id int) (Content, error) {
	return svc.repo.GetContentByID(ctx, id)
}

func (svc *Service) QueryLectureContents(ctx context.Context, lectureID int) ([]Content, error) {
	if _, err := svc.repo.GetLectureByID(ctx, lectureID); err != nil {
		return nil, err
	}
	cnts, err := svc.repo.QueryLectureContents(ctx, lectureID)
	return cnts, errors.Wrap(err, "querying lecture contents")
}

func (svc *Service) UpdateContent(ctx context.Context, cnt Content) (Content, error) {
	cnt, err := svc.repo.UpdateContent(ctx, cnt)
	return cnt, errors.Wrap(err, "updating content")
}

func (svc *Service) DeleteContent(ctx context.Context, id int) error {
	return errors.Wrap(svc.repo.DeleteContent(ctx, id), "deleting content")
}

func (svc *Service) CreateReview(ctx context.Context, nr NewReview, studentID int) (Review, error) {
	if _, err := svc.repo.GetCourseByID(ctx, nr.CourseID); err != nil {
		return Review{}, err
	}
	if err := svc.repo.CheckReviewUniqueness(ctx, studentID, nr.CourseID); err != nil {
		return Review{}, err
	}
	rev := Review{
		Rating:    nr.Rating,
		Comment:   nr.Comment,
		Date:      time.Now().UTC(),
		StudentID: studentID,
		CourseID:  nr.CourseID,
	}
	rev, err := svc.repo.CreateReview(ctx, rev)
	return rev, errors.Wrap(err, "creating review")
}

func (svc *Service) QueryCourseReviews(ctx context.Context, courseID int) ([]Review, error) {
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	revs, err := svc.repo.QueryCourseReviews(ctx, courseID)
	return revs, errors.Wrap(err, "querying course reviews")
}

func (svc *Service) QueryRatingStats(ctx context.Context) ([]RatingStat, error) {
	stats, err := svc.repo.QueryRatingStats(ctx)
	return stats, errors.Wrap(err, "querying rating stats")
}
