package report

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/educert/backend/core"
	"github.com/educert/backend/core/course"
	"github.com/educert/backend/core/enrollment"
)

// ErrNotFound is returned when a requested report does not exist.
var ErrNotFound = core.NewNotFoundError("report not found")

type (
	Repository interface {
		CreateReport(ctx context.Context, rpt Report) (Report, error)
		QueryAllReports(ctx context.Context) ([]Report, error)
		GetReportByID(ctx context.Context, id int) (Report, error)
		DeleteReport(ctx context.Context, id int) error
	}

	// popularityProvider and ratingProvider expose the aggregate queries the
	// reports are built from. Satisfied by the enrollment and course services.
	popularityProvider interface {
		QueryPopularityStats(ctx context.Context, from, to time.Time) ([]enrollment.PopularityStat, error)
		QueryProgressStats(ctx context.Context, courseID int) ([]enrollment.ProgressStat, error)
	}
	ratingProvider interface {
		QueryRatingStats(ctx context.Context) ([]course.RatingStat, error)
	}

	Service struct {
		repo      Repository
		enrollSvc popularityProvider
		courseSvc ratingProvider
	}

	// PopularityReport couples the stored report row with its computed data.
	PopularityReport struct {
		Report Report                      `json:"report"`
		Data   []enrollment.PopularityStat `json:"data"`
	}

	RatingReport struct {
		Report Report              `json:"report"`
		Data   []course.RatingStat `json:"data"`
	}

	ProgressReport struct {
		Report Report                    `json:"report"`
		Data   []enrollment.ProgressStat `json:"data"`
	}
)

func NewService(repo Repository, enrollSvc *enrollment.Service, courseSvc *course.Service) *Service {
	return &Service{repo: repo, enrollSvc: enrollSvc, courseSvc: courseSvc}
}

func (svc *Service) QueryAll(ctx context.Context) ([]Report, error) {
	rpts, err := svc.repo.QueryAllReports(ctx)
	return rpts, errors.Wrap(err, "querying reports")
}

func (svc *Service) GetByID(ctx context.Context, id int) (Report, error) {
	return svc.repo.GetReportByID(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetReportByID(ctx, id); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteReport(ctx, id), "deleting report")
}

// GenerateCoursePopularity counts enrollments per course over the requested
// period (defaulting to the last month) and persists the report row.
func (svc *Service) GenerateCoursePopularity(ctx context.Context, params PopularityParams, adminID int) (PopularityReport, error) {
	now := time.Now().UTC()
	from, to := now.AddDate(0, -1, 0), now
	if params.StartDate.Valid {
		from = params.StartDate.Time
	}
	if params.EndDate.Valid {
		to = params.EndDate.Time
	}

	data, err := svc.enrollSvc.QueryPopularityStats(ctx, from, to)
	if err != nil {
		return PopularityReport{}, err
	}
	rpt, err := svc.save(ctx, "Course Popularity", TypeCoursePopularity, params, adminID)
	if err != nil {
		return PopularityReport{}, err
	}
	return PopularityReport{Report: rpt, Data: data}, nil
}

// GenerateCourseRating reports average rating and review count per course.
func (svc *Service) GenerateCourseRating(ctx context.Context, adminID int) (RatingReport, error) {
	data, err := svc.courseSvc.QueryRatingStats(ctx)
	if err != nil {
		return RatingReport{}, err
	}
	rpt, err := svc.save(ctx, "Course Rating", TypeCourseRating, struct{}{}, adminID)
	if err != nil {
		return RatingReport{}, err
	}
	return RatingReport{Report: rpt, Data: data}, nil
}

// GenerateStudentProgress lists every enrolled student's progress on a course.
func (svc *Service) GenerateStudentProgress(ctx context.Context, params ProgressParams, adminID int) (ProgressReport, error) {
	data, err := svc.enrollSvc.QueryProgressStats(ctx, params.CourseID)
	if err != nil {
		return ProgressReport{}, err
	}
	rpt, err := svc.save(ctx, "Student Progress", TypeStudentProgress, params, adminID)
	if err != nil {
		return ProgressReport{}, err
	}
	return ProgressReport{Report: rpt, Data: data}, nil
}

func (svc *Service) save(ctx context.Context, title, rptType string, params interface{}, adminID int) (Report, error) {
	blob, err := json.Marshal(params)
	if err != nil {
		return Report{}, errors.Wrap(err, "marshalling report parameters")
	}
	rpt := Report{
		Title:           title,
		GeneratedDate:   time.Now().UTC(),
		ReportType:      rptType,
		Format:          "json",
		Parameters:      blob,
		AdministratorID: adminID,
	}
	rpt, err = svc.repo.CreateReport(ctx, rpt)
	return rpt, errors.Wrap(err, "creating report")
}
